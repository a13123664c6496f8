package kinds

import (
	"github.com/htlc-project/htlc/internal/ast"
	"github.com/htlc-project/htlc/internal/depgraph"
	"github.com/htlc-project/htlc/internal/diagnostics"
)

// InferTypeConstructors assigns a kind to every user-declared type
// constructor in program, ordered by an SCC dependency analysis over the
// type constructors referenced in each other's data-constructor field
// types (§4.2). It returns the resulting name -> Kind map, or the first
// diagnostic raised.
func InferTypeConstructors(program *ast.Program) (map[string]Kind, *diagnostics.Error) {
	gen := &VarGen{}
	result := map[string]Kind{}

	names := make([]string, 0, len(program.TypeCons))
	for name := range program.TypeCons {
		names = append(names, name)
	}
	// Deterministic input order (§5): iterate declaration names sorted, so
	// SCC grouping is reproducible across runs with identical input.
	sortStrings(names)

	deps := map[string]map[string]bool{}
	for _, name := range names {
		tc := program.TypeCons[name]
		refs := map[string]bool{}
		for _, dc := range tc.Constructors {
			for _, field := range dc.Fields {
				collectTypeConRefs(field, program, refs)
			}
		}
		deps[name] = refs
	}

	groups := depgraph.Analyze(names, deps)

	for _, group := range groups {
		if err := inferGroup(group, program, result, gen); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// collectTypeConRefs walks a surface type expression, recording every
// reference to a user type constructor name (ignoring type variables and
// built-ins not present in program.TypeCons).
func collectTypeConRefs(t ast.Type, program *ast.Program, out map[string]bool) {
	switch t := t.(type) {
	case *ast.TyCon:
		if _, ok := program.TypeCons[t.Name]; ok {
			out[t.Name] = true
		}
	case *ast.TyApp:
		collectTypeConRefs(t.Left, program, out)
		collectTypeConRefs(t.Right, program, out)
	}
}

func inferGroup(group []string, program *ast.Program, result map[string]Kind, gen *VarGen) *diagnostics.Error {
	// Fresh kind variable per argument of every type constructor in the
	// group, and a k1 -> ... -> kn -> * kind for the constructor itself.
	argKinds := map[string]map[string]Kind{} // typeCon -> paramName -> kind var
	selfKinds := map[string]Kind{}

	for _, name := range group {
		tc := program.TypeCons[name]
		params := map[string]Kind{}
		argKindList := make([]Kind, len(tc.Params))
		for i, p := range tc.Params {
			kv := gen.Fresh()
			params[p] = kv
			argKindList[i] = kv
		}
		argKinds[name] = params
		selfKinds[name] = MakeArrow(append(argKindList, Star{})...)
	}

	subst := Subst{}
	applyBoth := func(k Kind) Kind { return Apply(subst, k) }

	for _, name := range group {
		tc := program.TypeCons[name]
		for _, dc := range tc.Constructors {
			for _, field := range dc.Fields {
				fk, err := inferFieldKind(field, argKinds[name], result, selfKinds, gen, subst)
				if err != nil {
					return diagnostics.New(diagnostics.KindError, ast.Position{Line: dc.Pos.Line}, "%s", err.Error())
				}
				s, uerr := Unify(applyBoth(fk), Star{})
				if uerr != nil {
					return diagnostics.New(diagnostics.KindError, ast.Position{Line: dc.Pos.Line},
						"data constructor %s: %s", dc.Name, uerr.Error())
				}
				subst = Compose(subst, s)
			}
		}
	}

	for _, name := range group {
		result[name] = Generalize(Apply(subst, selfKinds[name]))
	}
	return nil
}

// inferFieldKind computes the kind of a field type expression within a
// data-constructor declaration: variable lookup against the group's
// argument kinds, constructor lookup against already-resolved type
// constructors (outside the group) or the group's own self-kinds (for
// recursive/mutually-recursive types), and application unifying the
// left side with (argKind -> result).
func inferFieldKind(t ast.Type, vars map[string]Kind, resolved map[string]Kind, selfKinds map[string]Kind, gen *VarGen, subst Subst) (Kind, error) {
	switch t := t.(type) {
	case *ast.TyVar:
		if k, ok := vars[t.Name]; ok {
			return k, nil
		}
		// Unbound variable not declared as a parameter: treat as Star,
		// consistent with defaulting.
		return Star{}, nil
	case *ast.TyCon:
		if k, ok := selfKinds[t.Name]; ok {
			return k, nil
		}
		if k, ok := resolved[t.Name]; ok {
			return k, nil
		}
		return builtinKind(t.Name), nil
	case *ast.TyApp:
		lk, err := inferFieldKind(t.Left, vars, resolved, selfKinds, gen, subst)
		if err != nil {
			return nil, err
		}
		rk, err := inferFieldKind(t.Right, vars, resolved, selfKinds, gen, subst)
		if err != nil {
			return nil, err
		}
		resultKind := gen.Fresh()
		s, err := Unify(Apply(subst, lk), Apply(subst, Arrow{Left: rk, Right: resultKind}))
		if err != nil {
			return nil, err
		}
		for k, v := range Compose(subst, s) {
			subst[k] = v
		}
		return Apply(subst, resultKind), nil
	default:
		return Star{}, nil
	}
}

func builtinKind(name string) Kind {
	switch name {
	case "Int", "Char", "Bool", "()":
		return Star{}
	case "[]":
		return Arrow{Left: Star{}, Right: Star{}}
	case "(->)":
		return Arrow{Left: Star{}, Right: Arrow{Left: Star{}, Right: Star{}}}
	case "(,)":
		return Arrow{Left: Star{}, Right: Arrow{Left: Star{}, Right: Star{}}}
	default:
		return Star{}
	}
}

// CheckSignature validates a user type signature's kind: build a fresh kind
// variable per quantified name, kind-infer the type, and unify the result
// with Star.
func CheckSignature(name string, scheme *ast.Scheme, typeConKinds map[string]Kind) *diagnostics.Error {
	gen := &VarGen{}
	vars := map[string]Kind{}
	quantified := scheme.Quantified
	if len(quantified) == 0 {
		quantified = freeTyVarNames(scheme.Type, map[string]bool{})
	}
	for _, q := range quantified {
		vars[q] = gen.Fresh()
	}
	subst := Subst{}
	k, err := inferSignatureKind(scheme.Type, vars, typeConKinds, gen, subst)
	if err != nil {
		return diagnostics.Unpositioned(diagnostics.KindError,
			"type signature for %q with invalid type: %s", name, err.Error())
	}
	if _, err := Unify(Apply(subst, k), Star{}); err != nil {
		return diagnostics.Unpositioned(diagnostics.KindError,
			"type signature for %q with invalid type", name)
	}
	return nil
}

func inferSignatureKind(t ast.Type, vars map[string]Kind, typeConKinds map[string]Kind, gen *VarGen, subst Subst) (Kind, error) {
	switch t := t.(type) {
	case *ast.TyVar:
		if k, ok := vars[t.Name]; ok {
			return k, nil
		}
		return Star{}, nil
	case *ast.TyCon:
		if k, ok := typeConKinds[t.Name]; ok {
			return k, nil
		}
		return builtinKind(t.Name), nil
	case *ast.TyApp:
		lk, err := inferSignatureKind(t.Left, vars, typeConKinds, gen, subst)
		if err != nil {
			return nil, err
		}
		rk, err := inferSignatureKind(t.Right, vars, typeConKinds, gen, subst)
		if err != nil {
			return nil, err
		}
		resultKind := gen.Fresh()
		s, err := Unify(Apply(subst, lk), Apply(subst, Arrow{Left: rk, Right: resultKind}))
		if err != nil {
			return nil, err
		}
		for k, v := range Compose(subst, s) {
			subst[k] = v
		}
		return Apply(subst, resultKind), nil
	default:
		return Star{}, nil
	}
}

func freeTyVarNames(t ast.Type, seen map[string]bool) []string {
	var names []string
	var walk func(ast.Type)
	walk = func(t ast.Type) {
		switch t := t.(type) {
		case *ast.TyVar:
			if !seen[t.Name] {
				seen[t.Name] = true
				names = append(names, t.Name)
			}
		case *ast.TyApp:
			walk(t.Left)
			walk(t.Right)
		}
	}
	walk(t)
	return names
}

func sortStrings(ss []string) {
	for i := 1; i < len(ss); i++ {
		for j := i; j > 0 && ss[j-1] > ss[j]; j-- {
			ss[j-1], ss[j] = ss[j], ss[j-1]
		}
	}
}
