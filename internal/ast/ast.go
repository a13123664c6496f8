// Package ast defines the surface syntax tree consumed by the core compiler
// stages (kind inference, type inference, STG translation). Nodes are built
// by the external parser and are never mutated by the stages that walk them.
package ast

// Position identifies a location in source text for diagnostics.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	if p.Line == 0 {
		return "<unknown>"
	}
	return itoa(p.Line) + ":" + itoa(p.Column)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// BuiltinOp identifies a primitive binary (or unary) operator.
type BuiltinOp int

const (
	OpAdd BuiltinOp = iota
	OpSub
	OpMul
	OpDiv
	OpNegate
	OpEq
	OpNeq
	OpLt
	OpLe
	OpGt
	OpGe
)

func (op BuiltinOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpNegate:
		return "negate"
	case OpEq:
		return "=="
	case OpNeq:
		return "/="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	default:
		return "?"
	}
}

// IsComparison reports whether op produces a Bool from Int operands (<,<=,>,>=).
func (op BuiltinOp) IsComparison() bool {
	switch op {
	case OpLt, OpLe, OpGt, OpGe:
		return true
	default:
		return false
	}
}

// IsEquality reports whether op is == or /=.
func (op BuiltinOp) IsEquality() bool {
	return op == OpEq || op == OpNeq
}

// IsArithmetic reports whether op is one of + - * / or unary negate.
func (op BuiltinOp) IsArithmetic() bool {
	switch op {
	case OpAdd, OpSub, OpMul, OpDiv, OpNegate:
		return true
	default:
		return false
	}
}

// LitKind distinguishes the three literal forms the surface language has.
type LitKind int

const (
	LitInt LitKind = iota
	LitChar
	LitString
)

// Expr is the surface expression variant. Every concrete type below
// implements it; the set is closed (sealed via the unexported exprNode
// method) so that type switches over Expr can be exhaustive.
type Expr interface {
	Line() int
	exprNode()
}

type base struct{ Pos Position }

func (b base) Line() int { return b.Pos.Line }

// Lit is an integer, character, or string literal.
type Lit struct {
	base
	Kind LitKind
	Int  int64
	Char rune
	Str  string
}

func (*Lit) exprNode() {}

// Var is a reference to a let/lambda/top-level-bound name.
type Var struct {
	base
	Name string
}

func (*Var) exprNode() {}

// Con is a reference to a data constructor by name.
type Con struct {
	base
	Name string
}

func (*Con) exprNode() {}

// Lambda is a multi-argument lambda abstraction, params bound left to right.
type Lambda struct {
	base
	Params []string
	Body   Expr
}

func (*Lambda) exprNode() {}

// App is a single-argument application; curried application is represented
// as nested Apps, left-associatively, matching surface syntax `f x y`.
type App struct {
	base
	Fun Expr
	Arg Expr
}

func (*App) exprNode() {}

// Let holds a group of name -> Expr bindings, each with an optional
// explicit scheme, and the body they scope over. 'recursive' is implicit: the language's lets are
// always (potentially) recursive; the precise recursive/non-recursive flag
// per group is computed downstream by dependency analysis, not stored here.
type Let struct {
	base
	Bindings    map[string]Expr
	Signatures  map[string]*Scheme // explicit type schemes, subset of Bindings' keys
	Body        Expr
}

func (*Let) exprNode() {}

// Alt is one case alternative: a pattern plus its right-hand-side expression.
type Alt struct {
	Pattern Pattern
	Body    Expr
}

// Case is a pattern-match expression over a scrutinee.
type Case struct {
	base
	Scrutinee Expr
	Alts      []Alt
}

func (*Case) exprNode() {}

// BinOp is a built-in binary (or, for OpNegate, unary with Left == nil) op.
type BinOp struct {
	base
	Left  Expr // nil for unary negate
	Right Expr
	Op    BuiltinOp
}

func (*BinOp) exprNode() {}

// Pattern is the surface pattern variant, sealed via patNode.
type Pattern interface {
	Line() int
	AsNames() []string
	patNode()
}

type patBase struct {
	Pos Position
	As  []string // optional `pat@name` aliases bound to the whole matched value
}

func (p patBase) Line() int         { return p.Pos.Line }
func (p patBase) AsNames() []string { return p.As }

// BoundNames returns every name a pattern binds: a PVar's own name, any
// `pat@name` as-alias at any level, and (recursively) every name bound by a
// PCon's sub-patterns. AsNames alone only reports as-aliases, which undercounts
// for PVar and nested PCon patterns — callers computing free variables or
// checking for duplicate pattern bindings need this full set, not AsNames.
func BoundNames(pat Pattern) []string {
	var names []string
	collectBoundNames(pat, &names)
	return names
}

func collectBoundNames(pat Pattern, out *[]string) {
	if pat == nil {
		return
	}
	*out = append(*out, pat.AsNames()...)
	switch p := pat.(type) {
	case *PVar:
		*out = append(*out, p.Name)
	case *PCon:
		for _, arg := range p.Args {
			collectBoundNames(arg, out)
		}
	}
}

// PWildcard matches anything, binds nothing.
type PWildcard struct{ patBase }

func (*PWildcard) patNode() {}

// PVar matches anything, binds Name.
type PVar struct {
	patBase
	Name string
}

func (*PVar) patNode() {}

// PLit matches by value equality against an integer or character literal.
type PLit struct {
	patBase
	Kind LitKind
	Int  int64
	Char rune
}

func (*PLit) patNode() {}

// PCon matches a fully-applied data constructor application.
type PCon struct {
	patBase
	Name string
	Args []Pattern
}

func (*PCon) patNode() {}

// Type is the surface syntax for a type expression, as written in a data
// declaration's constructor fields or a programmer's type signature. It is
// deliberately simpler than the internal unification Type (package types):
// no unification variables, just names and applications. A lowercase name
// is a (to-be-quantified) type variable; an uppercase name is a type
// constructor reference, including the built-ins `(->)`, `[]`, and `Int`,
// `Char`, `Bool`.
type Type interface {
	Line() int
	typeNode()
}

type typeBase struct{ Pos Position }

func (t typeBase) Line() int { return t.Pos.Line }

// TyVar is a reference to a (universally quantified, once generalized)
// type-variable name occurring in surface syntax.
type TyVar struct {
	typeBase
	Name string
}

func (*TyVar) typeNode() {}

// TyCon is a reference to a type-constructor name occurring in surface
// syntax, e.g. `Int`, `Bool`, `T`, or the built-ins `(->)`/`[]`.
type TyCon struct {
	typeBase
	Name string
}

func (*TyCon) typeNode() {}

// TyApp is a type application `Left Right`, e.g. `T a` or `(->) a b`
// (curried: `(->) a b` parses as `TyApp{TyApp{(->), a}, b}`).
type TyApp struct {
	typeBase
	Left  Type
	Right Type
}

func (*TyApp) typeNode() {}

// Scheme is a surface type signature: a set of (implicitly or explicitly)
// quantified variable names plus the type expression itself. Quantified may
// be left empty and inferred as "every TyVar name free in Type" — the
// convention this compiler follows, matching standard Haskell signatures.
type Scheme struct {
	Quantified []string
	Type       Type
}

// DataConstructor is one alternative of a `data` declaration.
type DataConstructor struct {
	Pos    Position
	Name   string
	Fields []Type // field type expressions, in declared order
	Arity  int
}

// TypeCon is a single user-defined type constructor (`data T a b = ...`).
type TypeCon struct {
	Pos          Position
	Name         string
	Params       []string // type-variable parameter names, in declaration order
	Constructors []*DataConstructor
}

// Program is the whole compilation unit handed to the core stages.
type Program struct {
	// Bindings maps top-level binding name to its defining expression
	// (the map itself has no ordering guarantee; declaration order is kept
	// separately in Order).
	Bindings map[string]Expr
	Order    []string // declaration order of Bindings' keys, for deterministic output

	// Signatures holds explicit top-level type signatures.
	Signatures map[string]*Scheme

	// TypeCons maps type-constructor name -> its declaration.
	TypeCons map[string]*TypeCon

	// DataCons maps data-constructor name -> its declaration and the type
	// constructor it belongs to.
	DataCons map[string]*DataConsInfo

	// DataConArity maps data-constructor name -> declared arity, mirrored
	// from DataCons for call sites that only need the count.
	DataConArity map[string]int
}

// DataConsInfo associates a data constructor with its owning type and its
// position (index) among that type's siblings.
type DataConsInfo struct {
	Decl       *DataConstructor
	TypeName   string
	Index      int // position among siblings in declaration order
	NumSibling int // total number of constructors in the owning type
}
