package types

import (
	"fmt"
	"strconv"
)

// VarGen produces fresh unification variables with globally unique names
// within a single inference pass.
type VarGen struct{ n int }

// Fresh returns a new, previously unused type variable.
func (g *VarGen) Fresh() Var {
	g.n++
	return Var{Name: "t" + strconv.Itoa(g.n)}
}

// Unify finds the most general substitution making t1 and t2 equal,
// failing with an occurs-check error on infinite types.
func Unify(t1, t2 Type) (Subst, error) {
	s := Subst{}
	if err := unify(s, t1, t2); err != nil {
		return nil, err
	}
	return s, nil
}

func unify(s Subst, t1, t2 Type) error {
	t1, t2 = t1.Apply(s), t2.Apply(s)

	if v, ok := t1.(Var); ok {
		return bind(s, v, t2)
	}
	if v, ok := t2.(Var); ok {
		return bind(s, v, t1)
	}
	if c1, ok := t1.(Con); ok {
		if c2, ok := t2.(Con); ok && c1.Name == c2.Name {
			return nil
		}
		return fmt.Errorf("cannot unify %s with %s", t1, t2)
	}
	if a1, ok := t1.(App); ok {
		a2, ok := t2.(App)
		if !ok {
			return fmt.Errorf("cannot unify %s with %s", t1, t2)
		}
		if err := unify(s, a1.Left, a2.Left); err != nil {
			return err
		}
		return unify(s, a1.Right.Apply(s), a2.Right.Apply(s))
	}
	return fmt.Errorf("cannot unify %s with %s", t1, t2)
}

func bind(s Subst, v Var, t Type) error {
	if tv, ok := t.(Var); ok && tv.Name == v.Name {
		return nil
	}
	if occurs(v.Name, t) {
		return fmt.Errorf("occurs check failed: %s occurs in %s", v.Name, t)
	}
	for k, existing := range s {
		s[k] = existing.Apply(Subst{v.Name: t})
	}
	s[v.Name] = t
	return nil
}

func occurs(name string, t Type) bool {
	for _, fv := range t.FreeVars() {
		if fv == name {
			return true
		}
	}
	return false
}

// Instantiate replaces every Gen variable quantified by scheme with a fresh
// unification Var, producing a monomorphic instance of the scheme usable
// at a single occurrence (§4.3, "a use of a let-bound name is instantiated
// with fresh unification variables per occurrence").
func Instantiate(scheme *Scheme, gen *VarGen) Type {
	mapping := make(map[string]Type, len(scheme.Quantified))
	for _, q := range scheme.Quantified {
		mapping[q] = gen.Fresh()
	}
	return instantiate(scheme.Type, mapping)
}

func instantiate(t Type, mapping map[string]Type) Type {
	switch t := t.(type) {
	case Gen:
		if repl, ok := mapping[t.Name]; ok {
			return repl
		}
		return t
	case App:
		return App{Left: instantiate(t.Left, mapping), Right: instantiate(t.Right, mapping)}
	default:
		return t
	}
}

// Generalize quantifies every free Var in t that is not free in any scheme
// of the ambient assumptions, turning it into a Gen and producing the
// principal type scheme for a let-binding group (§4.3's let-generalization).
func Generalize(assumptions map[string]*Scheme, t Type) *Scheme {
	envFree := map[string]bool{}
	for _, sch := range assumptions {
		for _, fv := range sch.Type.FreeVars() {
			envFree[fv] = true
		}
	}
	var quantified []string
	for _, fv := range dedupe(t.FreeVars()) {
		if !envFree[fv] {
			quantified = append(quantified, fv)
		}
	}
	mapping := make(map[string]Type, len(quantified))
	for _, q := range quantified {
		mapping[q] = Gen{Name: q}
	}
	return &Scheme{Quantified: quantified, Type: genSubst(t, mapping)}
}

func genSubst(t Type, mapping map[string]Type) Type {
	switch t := t.(type) {
	case Var:
		if repl, ok := mapping[t.Name]; ok {
			return repl
		}
		return t
	case App:
		return App{Left: genSubst(t.Left, mapping), Right: genSubst(t.Right, mapping)}
	default:
		return t
	}
}
