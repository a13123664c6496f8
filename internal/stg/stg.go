// Package stg implements the Spineless Tagless G-machine intermediate
// representation this compiler lowers typed surface expressions to (§3,
// §4.4): lambda-forms with explicit free-variable sets and an updatable
// flag, atoms, lets, saturated constructor applications, and primitive or
// algebraic case trees compiled from nested surface pattern matches.
package stg

import (
	"fmt"
	"sort"
	"strings"

	"github.com/htlc-project/htlc/internal/ast"
)

// Atom is either a variable name or a literal value — the only two things
// an STG application's arguments, or a case's scrutinee, may be.
type Atom interface {
	String() string
	atomNode()
}

// AtomVar references a name already bound in scope (a lambda-form
// parameter, a let binding, or a top-level supercombinator).
type AtomVar struct{ Name string }

func (a AtomVar) String() string { return a.Name }
func (AtomVar) atomNode()        {}

// AtomLit is an immediate integer or character value.
type AtomLit struct {
	Kind ast.LitKind
	Int  int64
	Char rune
}

func (a AtomLit) String() string {
	if a.Kind == ast.LitChar {
		return fmt.Sprintf("'%c'", a.Char)
	}
	return fmt.Sprintf("%d", a.Int)
}
func (AtomLit) atomNode() {}

// LambdaForm is a supercombinator closure description: the free variables
// it must capture, its ordered parameters, whether the closure is a thunk
// the runtime overwrites with its value on first evaluation, and its body.
type LambdaForm struct {
	Free      []string
	Params    []string
	Updatable bool
	Body      Expr
}

func (lf *LambdaForm) String() string {
	upd := "\\n"
	if lf.Updatable {
		upd = "\\u"
	}
	return fmt.Sprintf("{%s} %s [%s] -> %s", strings.Join(lf.Free, ","), upd, strings.Join(lf.Params, ","), lf.Body)
}

// Expr is the STG expression variant.
type Expr interface {
	String() string
	stgNode()
}

// AtomExpr evaluates to the value of a single atom.
type AtomExpr struct{ Atom Atom }

func (e AtomExpr) String() string { return e.Atom.String() }
func (AtomExpr) stgNode()         {}

// LetExpr introduces one SCC-group of bindings in scope for Body. Recursive
// is set precisely (computed from dependency analysis, per the redesign
// the source's conservative always-true flag calls for), never
// conservatively defaulted.
type LetExpr struct {
	Bindings  map[string]*LambdaForm
	Order     []string
	Recursive bool
	Body      Expr
}

func (e *LetExpr) String() string {
	kind := "let"
	if e.Recursive {
		kind = "letrec"
	}
	return fmt.Sprintf("%s {%s} in %s", kind, strings.Join(e.Order, ","), e.Body)
}
func (*LetExpr) stgNode() {}

// AppExpr is a function application; the head is always a name already in
// scope, never an expression.
type AppExpr struct {
	Fun  string
	Args []Atom
}

func (e AppExpr) String() string {
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s %s", e.Fun, strings.Join(parts, " "))
}
func (AppExpr) stgNode() {}

// ConExpr is a saturated data-constructor application.
type ConExpr struct {
	Name string
	Args []Atom
}

func (e ConExpr) String() string {
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s{%s}", e.Name, strings.Join(parts, " "))
}
func (ConExpr) stgNode() {}

// PrimAlt matches a scrutinee literal by value.
type PrimAlt struct {
	Kind ast.LitKind
	Int  int64
	Char rune
	Body Expr
}

// PrimCaseExpr dispatches on a primitive (Int/Char) scrutinee value.
type PrimCaseExpr struct {
	Scrutinee     Atom
	Alts          []PrimAlt
	DefaultBinder string
	Default       Expr
}

func (e PrimCaseExpr) String() string {
	return fmt.Sprintf("case/prim %s of {...%d alts...}", e.Scrutinee, len(e.Alts))
}
func (PrimCaseExpr) stgNode() {}

// AlgAlt matches a scrutinee against a fully-applied constructor pattern;
// Params are the fresh names bound to the constructor's fields.
type AlgAlt struct {
	Con    string
	Params []string
	Body   Expr
}

// AlgCaseExpr dispatches on an algebraic (constructor-headed) scrutinee.
type AlgCaseExpr struct {
	Scrutinee     Atom
	Alts          []AlgAlt
	DefaultBinder string
	Default       Expr
}

func (e AlgCaseExpr) String() string {
	return fmt.Sprintf("case/alg %s of {...%d alts...}", e.Scrutinee, len(e.Alts))
}
func (AlgCaseExpr) stgNode() {}

// PrimOpExpr is a flat primitive operation; Left is nil for the unary
// negate operator.
type PrimOpExpr struct {
	Left  Atom
	Right Atom
	Op    ast.BuiltinOp
}

func (e PrimOpExpr) String() string {
	if e.Left == nil {
		return fmt.Sprintf("%s %s", e.Op, e.Right)
	}
	return fmt.Sprintf("%s %s %s", e.Left, e.Op, e.Right)
}
func (PrimOpExpr) stgNode() {}

// Descriptor records a data constructor's runtime shape: its tag (fixed
// exceptions per §3: []=0, (:)=1, False=0, True=1; otherwise declaration
// index), arity, and sibling count within its owning type.
type Descriptor struct {
	Tag      int
	Arity    int
	Siblings int
}

// Program is the fully translated, but not yet cleaned-up, output of the
// translator: every binding (top-level and lifted) in a single flat
// namespace, plus the order they were produced in (for deterministic
// dumps).
type Program struct {
	Bindings    map[string]*LambdaForm
	Order       []string
	Descriptors map[string]*Descriptor

	// TopLevel names the bindings that came from the surface program's own
	// declarations, as opposed to names synthesized by lifting during
	// translation. Global cleanup does not read it: it treats every key of
	// Bindings as statically addressable.
	TopLevel map[string]bool
}

// CaseErrorName is the runtime-provided free variable used as the default
// arm whenever a compiled case has no surface default (§4.6).
const CaseErrorName = "case_error"

// String renders a cleaned-up program as an ordered list of supercombinator
// definitions followed by its descriptor table, for local inspection
// (cmd/htlc's default output when no emitter address is configured).
func (p *Program) String() string {
	var sb strings.Builder
	for _, name := range p.Order {
		lf, ok := p.Bindings[name]
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "%s = %s\n", name, lf.String())
	}
	if len(p.Descriptors) > 0 {
		sb.WriteString("\n")
		names := make([]string, 0, len(p.Descriptors))
		for name := range p.Descriptors {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			d := p.Descriptors[name]
			fmt.Fprintf(&sb, "descriptor %s: tag=%d arity=%d siblings=%d\n", name, d.Tag, d.Arity, d.Siblings)
		}
	}
	return sb.String()
}
