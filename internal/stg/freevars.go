package stg

// ExprFreeVars computes the set of names an STG expression references
// that are not bound within it — used to populate an enclosing
// lambda-form's Free set once its body (possibly several nested lets and
// case alternatives deep) is fully built.
func ExprFreeVars(e Expr) []string {
	switch e := e.(type) {
	case AtomExpr:
		return atomVarNames([]Atom{e.Atom})
	case AppExpr:
		return dedupeStrings(append([]string{e.Fun}, atomVarNames(e.Args)...))
	case ConExpr:
		return dedupeStrings(atomVarNames(e.Args))
	case PrimOpExpr:
		var atoms []Atom
		if e.Left != nil {
			atoms = append(atoms, e.Left)
		}
		atoms = append(atoms, e.Right)
		return dedupeStrings(atomVarNames(atoms))
	case PrimCaseExpr:
		names := atomVarNames([]Atom{e.Scrutinee})
		for _, alt := range e.Alts {
			names = append(names, ExprFreeVars(alt.Body)...)
		}
		defBound := map[string]bool{}
		if e.DefaultBinder != "" {
			defBound[e.DefaultBinder] = true
		}
		names = append(names, freeMinusParams(ExprFreeVars(e.Default), defBound)...)
		return dedupeStrings(names)
	case AlgCaseExpr:
		names := atomVarNames([]Atom{e.Scrutinee})
		for _, alt := range e.Alts {
			bound := map[string]bool{}
			for _, p := range alt.Params {
				bound[p] = true
			}
			names = append(names, freeMinusParams(ExprFreeVars(alt.Body), bound)...)
		}
		defBound := map[string]bool{}
		if e.DefaultBinder != "" {
			defBound[e.DefaultBinder] = true
		}
		names = append(names, freeMinusParams(ExprFreeVars(e.Default), defBound)...)
		return dedupeStrings(names)
	case *LetExpr:
		bound := map[string]bool{}
		for _, n := range e.Order {
			bound[n] = true
		}
		names := freeMinusParams(ExprFreeVars(e.Body), bound)
		for _, n := range e.Order {
			names = append(names, freeMinusParams(e.Bindings[n].Free, bound)...)
		}
		return dedupeStrings(names)
	default:
		return nil
	}
}

func atomVarNames(atoms []Atom) []string {
	var names []string
	for _, a := range atoms {
		if a == nil {
			continue
		}
		if v, ok := a.(AtomVar); ok {
			names = append(names, v.Name)
		}
	}
	return names
}
