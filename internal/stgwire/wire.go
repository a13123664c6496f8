// Package stgwire is the YAML-serializable mirror of internal/stg's STG
// program, used by internal/cache to persist and reload a compiled
// program without re-running kind/type inference and translation. Like
// internal/astwire on the input side, every sum-typed node gets an
// explicit "kind" discriminator since YAML has no native variant support.
package stgwire

import (
	"fmt"

	"github.com/htlc-project/htlc/internal/ast"
	"github.com/htlc-project/htlc/internal/stg"
)

// Program is the wire form of stg.Program.
type Program struct {
	Bindings    map[string]*LambdaForm `yaml:"bindings"`
	Order       []string               `yaml:"order"`
	Descriptors map[string]*Descriptor `yaml:"descriptors"`
}

// Descriptor mirrors stg.Descriptor.
type Descriptor struct {
	Tag      int `yaml:"tag"`
	Arity    int `yaml:"arity"`
	Siblings int `yaml:"siblings"`
}

// LambdaForm mirrors stg.LambdaForm.
type LambdaForm struct {
	Free      []string `yaml:"free,omitempty"`
	Params    []string `yaml:"params,omitempty"`
	Updatable bool     `yaml:"updatable"`
	Body      Expr     `yaml:"body"`
}

// Atom is the wire form of stg.Atom: exactly one of Var/Lit is set.
type Atom struct {
	Var  string `yaml:"var,omitempty"`
	Lit  *Lit   `yaml:"lit,omitempty"`
}

// Lit mirrors stg.AtomLit.
type Lit struct {
	Kind ast.LitKind `yaml:"kind"`
	Int  int64       `yaml:"int,omitempty"`
	Char string      `yaml:"char,omitempty"`
}

// PrimAlt mirrors stg.PrimAlt.
type PrimAlt struct {
	Kind ast.LitKind `yaml:"kind"`
	Int  int64       `yaml:"int,omitempty"`
	Char string      `yaml:"char,omitempty"`
	Body Expr        `yaml:"body"`
}

// AlgAlt mirrors stg.AlgAlt.
type AlgAlt struct {
	Con    string   `yaml:"con"`
	Params []string `yaml:"params,omitempty"`
	Body   Expr     `yaml:"body"`
}

// Expr is the wire form of stg.Expr, discriminated by Kind:
// atom|let|app|con|primcase|algcase|primop.
type Expr struct {
	Kind string `yaml:"kind"`

	Atom *Atom `yaml:"atom,omitempty"` // atom

	Bindings  map[string]*LambdaForm `yaml:"bindings,omitempty"` // let
	Order     []string               `yaml:"order,omitempty"`    // let
	Recursive bool                   `yaml:"recursive,omitempty"`
	Body      *Expr                  `yaml:"body,omitempty"` // let

	Fun  string `yaml:"fun,omitempty"` // app
	Args []Atom `yaml:"args,omitempty"` // app/con

	Name string `yaml:"name,omitempty"` // con

	Scrutinee     *Atom     `yaml:"scrutinee,omitempty"` // primcase/algcase
	PrimAlts      []PrimAlt `yaml:"primAlts,omitempty"`
	AlgAlts       []AlgAlt  `yaml:"algAlts,omitempty"`
	DefaultBinder string    `yaml:"defaultBinder,omitempty"`
	Default       *Expr     `yaml:"default,omitempty"`

	Op    ast.BuiltinOp `yaml:"op,omitempty"` // primop
	Left  *Atom         `yaml:"left,omitempty"`
	Right *Atom         `yaml:"right,omitempty"`
}

// FromProgram converts a translated stg.Program into its wire form.
func FromProgram(p *stg.Program) *Program {
	out := &Program{Bindings: map[string]*LambdaForm{}, Order: append([]string{}, p.Order...), Descriptors: map[string]*Descriptor{}}
	for name, lf := range p.Bindings {
		out.Bindings[name] = fromLambdaForm(lf)
	}
	for name, d := range p.Descriptors {
		out.Descriptors[name] = &Descriptor{Tag: d.Tag, Arity: d.Arity, Siblings: d.Siblings}
	}
	return out
}

func fromLambdaForm(lf *stg.LambdaForm) *LambdaForm {
	return &LambdaForm{Free: lf.Free, Params: lf.Params, Updatable: lf.Updatable, Body: fromExpr(lf.Body)}
}

func fromAtom(a stg.Atom) Atom {
	switch v := a.(type) {
	case stg.AtomVar:
		return Atom{Var: v.Name}
	case stg.AtomLit:
		return Atom{Lit: &Lit{Kind: v.Kind, Int: v.Int, Char: string(v.Char)}}
	default:
		return Atom{}
	}
}

func fromAtoms(atoms []stg.Atom) []Atom {
	out := make([]Atom, len(atoms))
	for i, a := range atoms {
		out[i] = fromAtom(a)
	}
	return out
}

func fromExpr(e stg.Expr) Expr {
	switch expr := e.(type) {
	case stg.AtomExpr:
		a := fromAtom(expr.Atom)
		return Expr{Kind: "atom", Atom: &a}
	case *stg.LetExpr:
		bindings := map[string]*LambdaForm{}
		for name, lf := range expr.Bindings {
			bindings[name] = fromLambdaForm(lf)
		}
		body := fromExpr(expr.Body)
		return Expr{Kind: "let", Bindings: bindings, Order: expr.Order, Recursive: expr.Recursive, Body: &body}
	case stg.AppExpr:
		return Expr{Kind: "app", Fun: expr.Fun, Args: fromAtoms(expr.Args)}
	case stg.ConExpr:
		return Expr{Kind: "con", Name: expr.Name, Args: fromAtoms(expr.Args)}
	case stg.PrimCaseExpr:
		alts := make([]PrimAlt, len(expr.Alts))
		for i, alt := range expr.Alts {
			alts[i] = PrimAlt{Kind: alt.Kind, Int: alt.Int, Char: string(alt.Char), Body: fromExpr(alt.Body)}
		}
		scr := fromAtom(expr.Scrutinee)
		def := fromExpr(expr.Default)
		return Expr{Kind: "primcase", Scrutinee: &scr, PrimAlts: alts, DefaultBinder: expr.DefaultBinder, Default: &def}
	case stg.AlgCaseExpr:
		alts := make([]AlgAlt, len(expr.Alts))
		for i, alt := range expr.Alts {
			alts[i] = AlgAlt{Con: alt.Con, Params: alt.Params, Body: fromExpr(alt.Body)}
		}
		scr := fromAtom(expr.Scrutinee)
		def := fromExpr(expr.Default)
		return Expr{Kind: "algcase", Scrutinee: &scr, AlgAlts: alts, DefaultBinder: expr.DefaultBinder, Default: &def}
	case stg.PrimOpExpr:
		var left *Atom
		if expr.Left != nil {
			l := fromAtom(expr.Left)
			left = &l
		}
		right := fromAtom(expr.Right)
		return Expr{Kind: "primop", Op: expr.Op, Left: left, Right: &right}
	default:
		return Expr{Kind: "atom"}
	}
}

// ToProgram converts a wire Program back into an stg.Program.
func ToProgram(p *Program) (*stg.Program, error) {
	out := &stg.Program{Bindings: map[string]*stg.LambdaForm{}, Order: append([]string{}, p.Order...), Descriptors: map[string]*stg.Descriptor{}}
	for name, lf := range p.Bindings {
		converted, err := toLambdaForm(lf)
		if err != nil {
			return nil, fmt.Errorf("binding %q: %w", name, err)
		}
		out.Bindings[name] = converted
	}
	for name, d := range p.Descriptors {
		out.Descriptors[name] = &stg.Descriptor{Tag: d.Tag, Arity: d.Arity, Siblings: d.Siblings}
	}
	return out, nil
}

func toLambdaForm(lf *LambdaForm) (*stg.LambdaForm, error) {
	body, err := toExpr(&lf.Body)
	if err != nil {
		return nil, err
	}
	return &stg.LambdaForm{Free: lf.Free, Params: lf.Params, Updatable: lf.Updatable, Body: body}, nil
}

func toAtom(a *Atom) stg.Atom {
	if a == nil {
		return nil
	}
	if a.Lit != nil {
		r := []rune(a.Lit.Char)
		var c rune
		if len(r) > 0 {
			c = r[0]
		}
		return stg.AtomLit{Kind: a.Lit.Kind, Int: a.Lit.Int, Char: c}
	}
	return stg.AtomVar{Name: a.Var}
}

func toAtoms(atoms []Atom) []stg.Atom {
	out := make([]stg.Atom, len(atoms))
	for i, a := range atoms {
		out[i] = toAtom(&a)
	}
	return out
}

func toExpr(e *Expr) (stg.Expr, error) {
	switch e.Kind {
	case "atom":
		return stg.AtomExpr{Atom: toAtom(e.Atom)}, nil
	case "let":
		bindings := map[string]*stg.LambdaForm{}
		for name, lf := range e.Bindings {
			converted, err := toLambdaForm(lf)
			if err != nil {
				return nil, err
			}
			bindings[name] = converted
		}
		body, err := toExpr(e.Body)
		if err != nil {
			return nil, err
		}
		return &stg.LetExpr{Bindings: bindings, Order: e.Order, Recursive: e.Recursive, Body: body}, nil
	case "app":
		return stg.AppExpr{Fun: e.Fun, Args: toAtoms(e.Args)}, nil
	case "con":
		return stg.ConExpr{Name: e.Name, Args: toAtoms(e.Args)}, nil
	case "primcase":
		alts := make([]stg.PrimAlt, len(e.PrimAlts))
		for i, alt := range e.PrimAlts {
			body, err := toExpr(&alt.Body)
			if err != nil {
				return nil, err
			}
			r := []rune(alt.Char)
			var c rune
			if len(r) > 0 {
				c = r[0]
			}
			alts[i] = stg.PrimAlt{Kind: alt.Kind, Int: alt.Int, Char: c, Body: body}
		}
		def, err := toExpr(e.Default)
		if err != nil {
			return nil, err
		}
		return stg.PrimCaseExpr{Scrutinee: toAtom(e.Scrutinee), Alts: alts, DefaultBinder: e.DefaultBinder, Default: def}, nil
	case "algcase":
		alts := make([]stg.AlgAlt, len(e.AlgAlts))
		for i, alt := range e.AlgAlts {
			body, err := toExpr(&alt.Body)
			if err != nil {
				return nil, err
			}
			alts[i] = stg.AlgAlt{Con: alt.Con, Params: alt.Params, Body: body}
		}
		def, err := toExpr(e.Default)
		if err != nil {
			return nil, err
		}
		return stg.AlgCaseExpr{Scrutinee: toAtom(e.Scrutinee), Alts: alts, DefaultBinder: e.DefaultBinder, Default: def}, nil
	case "primop":
		right := toAtom(e.Right)
		var left stg.Atom
		if e.Left != nil {
			left = toAtom(e.Left)
		}
		return stg.PrimOpExpr{Left: left, Right: right, Op: e.Op}, nil
	default:
		return nil, fmt.Errorf("unknown STG expression kind %q", e.Kind)
	}
}
