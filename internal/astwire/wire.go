// Package astwire defines the YAML wire shape the CLI reads a Program from
// (§6, "Input ... out of scope" — lexing, layout, and LALR parsing are
// external collaborators; this package is the boundary that replaces them:
// a serialized AST value rather than source text, decoded with
// gopkg.in/yaml.v3 the way the teacher's own config-shaped data travels).
// Every surface node gets a `kind` discriminator field since YAML
// has no native sum-type support; DecodeProgram converts the wire tree into
// the real internal/ast types the compiler stages consume.
package astwire

import (
	"fmt"

	"github.com/htlc-project/htlc/internal/ast"
)

// Program is the root document a `-i` file must contain.
type Program struct {
	Bindings   map[string]Expr    `yaml:"bindings"`
	Order      []string           `yaml:"order"`
	Signatures map[string]*Scheme `yaml:"signatures,omitempty"`
	TypeCons   []*TypeCon         `yaml:"typeCons,omitempty"`
}

// TypeCon mirrors ast.TypeCon.
type TypeCon struct {
	Name         string             `yaml:"name"`
	Params       []string           `yaml:"params,omitempty"`
	Constructors []*DataConstructor `yaml:"constructors"`
}

// DataConstructor mirrors ast.DataConstructor; Arity is derived from
// len(Fields) rather than repeated in the wire form.
type DataConstructor struct {
	Name   string `yaml:"name"`
	Fields []Type `yaml:"fields,omitempty"`
}

// Scheme mirrors ast.Scheme.
type Scheme struct {
	Quantified []string `yaml:"quantified,omitempty"`
	Type       Type     `yaml:"type"`
}

// Type is the wire form of a surface type expression, discriminated by
// Kind: "var" and "con" set Name, "app" sets Left and Right.
type Type struct {
	Kind string `yaml:"kind"` // "var" | "con" | "app"
	Name string `yaml:"name,omitempty"`
	Left *Type  `yaml:"left,omitempty"`
	Right *Type `yaml:"right,omitempty"`
}

// Pattern is the wire form of a surface pattern.
type Pattern struct {
	Kind string    `yaml:"kind"` // "wildcard" | "var" | "lit" | "con"
	As   []string  `yaml:"as,omitempty"`
	Name string    `yaml:"name,omitempty"`
	Lit  *Lit      `yaml:"lit,omitempty"`
	Args []Pattern `yaml:"args,omitempty"`
}

// Lit is the wire form of a literal value: exactly one of Int/Char/Str is
// meaningful, selected by Kind.
type Lit struct {
	Kind string `yaml:"kind"` // "int" | "char" | "string"
	Int  int64  `yaml:"int,omitempty"`
	Char string `yaml:"char,omitempty"` // single rune, as a string for YAML readability
	Str  string `yaml:"str,omitempty"`
}

// Alt is one case alternative.
type Alt struct {
	Pattern Pattern `yaml:"pattern"`
	Body    Expr    `yaml:"body"`
}

// Expr is the wire form of a surface expression. Exactly the fields the
// Kind names are populated.
type Expr struct {
	Kind string `yaml:"kind"` // lit|var|con|lambda|app|let|case|binop

	Lit *Lit `yaml:"lit,omitempty"`

	Name string `yaml:"name,omitempty"` // var/con

	Params []string `yaml:"params,omitempty"` // lambda
	Body   *Expr    `yaml:"body,omitempty"`   // lambda/let

	Fun *Expr `yaml:"fun,omitempty"` // app
	Arg *Expr `yaml:"arg,omitempty"` // app

	Bindings   map[string]Expr   `yaml:"bindings,omitempty"`   // let
	Signatures map[string]Scheme `yaml:"signatures,omitempty"` // let

	Scrutinee *Expr `yaml:"scrutinee,omitempty"` // case
	Alts      []Alt  `yaml:"alts,omitempty"`      // case

	Op    string `yaml:"op,omitempty"` // binop: "+","-","*","/","negate","==","/=","<","<=",">",">="
	Left  *Expr  `yaml:"left,omitempty"`
	Right *Expr  `yaml:"right,omitempty"`
}

var binOps = map[string]ast.BuiltinOp{
	"+": ast.OpAdd, "-": ast.OpSub, "*": ast.OpMul, "/": ast.OpDiv, "negate": ast.OpNegate,
	"==": ast.OpEq, "/=": ast.OpNeq, "<": ast.OpLt, "<=": ast.OpLe, ">": ast.OpGt, ">=": ast.OpGe,
}

// DecodeProgram converts a decoded wire Program into the ast.Program the
// compiler pipeline consumes, validating discriminators and filling in
// DataCons/DataConArity the way the (out-of-scope) parser would.
func DecodeProgram(p *Program) (*ast.Program, error) {
	out := &ast.Program{
		Bindings:     map[string]ast.Expr{},
		Order:        append([]string{}, p.Order...),
		Signatures:   map[string]*ast.Scheme{},
		TypeCons:     map[string]*ast.TypeCon{},
		DataCons:     map[string]*ast.DataConsInfo{},
		DataConArity: map[string]int{},
	}

	for name, e := range p.Bindings {
		expr, err := decodeExpr(&e)
		if err != nil {
			return nil, fmt.Errorf("binding %q: %w", name, err)
		}
		out.Bindings[name] = expr
	}

	for name, sig := range p.Signatures {
		scheme, err := decodeScheme(sig)
		if err != nil {
			return nil, fmt.Errorf("signature %q: %w", name, err)
		}
		out.Signatures[name] = scheme
	}

	for _, tc := range p.TypeCons {
		decl := &ast.TypeCon{Name: tc.Name, Params: append([]string{}, tc.Params...)}
		for i, dc := range tc.Constructors {
			fields := make([]ast.Type, len(dc.Fields))
			for j, f := range dc.Fields {
				ty, err := decodeType(&f)
				if err != nil {
					return nil, fmt.Errorf("type constructor %q, constructor %q: %w", tc.Name, dc.Name, err)
				}
				fields[j] = ty
			}
			d := &ast.DataConstructor{Name: dc.Name, Fields: fields, Arity: len(fields)}
			decl.Constructors = append(decl.Constructors, d)
			out.DataCons[dc.Name] = &ast.DataConsInfo{
				Decl:       d,
				TypeName:   tc.Name,
				Index:      i,
				NumSibling: len(tc.Constructors),
			}
			out.DataConArity[dc.Name] = len(fields)
		}
		out.TypeCons[tc.Name] = decl
	}

	return out, nil
}

func decodeExpr(e *Expr) (ast.Expr, error) {
	switch e.Kind {
	case "lit":
		lit, err := decodeLit(e.Lit)
		if err != nil {
			return nil, err
		}
		return lit, nil
	case "var":
		return &ast.Var{Name: e.Name}, nil
	case "con":
		return &ast.Con{Name: e.Name}, nil
	case "lambda":
		body, err := decodeExpr(e.Body)
		if err != nil {
			return nil, err
		}
		return &ast.Lambda{Params: e.Params, Body: body}, nil
	case "app":
		fun, err := decodeExpr(e.Fun)
		if err != nil {
			return nil, err
		}
		arg, err := decodeExpr(e.Arg)
		if err != nil {
			return nil, err
		}
		return &ast.App{Fun: fun, Arg: arg}, nil
	case "let":
		bindings := map[string]ast.Expr{}
		for name, rhs := range e.Bindings {
			expr, err := decodeExpr(&rhs)
			if err != nil {
				return nil, fmt.Errorf("let binding %q: %w", name, err)
			}
			bindings[name] = expr
		}
		sigs := map[string]*ast.Scheme{}
		for name, sig := range e.Signatures {
			scheme, err := decodeScheme(&sig)
			if err != nil {
				return nil, fmt.Errorf("let signature %q: %w", name, err)
			}
			sigs[name] = scheme
		}
		body, err := decodeExpr(e.Body)
		if err != nil {
			return nil, err
		}
		return &ast.Let{Bindings: bindings, Signatures: sigs, Body: body}, nil
	case "case":
		scrutinee, err := decodeExpr(e.Scrutinee)
		if err != nil {
			return nil, err
		}
		alts := make([]ast.Alt, len(e.Alts))
		for i, a := range e.Alts {
			pat, err := decodePattern(&a.Pattern)
			if err != nil {
				return nil, err
			}
			body, err := decodeExpr(&a.Body)
			if err != nil {
				return nil, err
			}
			alts[i] = ast.Alt{Pattern: pat, Body: body}
		}
		return &ast.Case{Scrutinee: scrutinee, Alts: alts}, nil
	case "binop":
		op, ok := binOps[e.Op]
		if !ok {
			return nil, fmt.Errorf("unknown operator %q", e.Op)
		}
		var left ast.Expr
		if e.Left != nil {
			l, err := decodeExpr(e.Left)
			if err != nil {
				return nil, err
			}
			left = l
		}
		right, err := decodeExpr(e.Right)
		if err != nil {
			return nil, err
		}
		return &ast.BinOp{Left: left, Right: right, Op: op}, nil
	default:
		return nil, fmt.Errorf("unknown expression kind %q", e.Kind)
	}
}

func decodeLit(l *Lit) (*ast.Lit, error) {
	switch l.Kind {
	case "int":
		return &ast.Lit{Kind: ast.LitInt, Int: l.Int}, nil
	case "char":
		r := []rune(l.Char)
		if len(r) != 1 {
			return nil, fmt.Errorf("char literal must be exactly one rune, got %q", l.Char)
		}
		return &ast.Lit{Kind: ast.LitChar, Char: r[0]}, nil
	case "string":
		return &ast.Lit{Kind: ast.LitString, Str: l.Str}, nil
	default:
		return nil, fmt.Errorf("unknown literal kind %q", l.Kind)
	}
}

func decodePattern(p *Pattern) (ast.Pattern, error) {
	switch p.Kind {
	case "wildcard":
		pat := &ast.PWildcard{}
		pat.As = p.As
		return pat, nil
	case "var":
		pat := &ast.PVar{Name: p.Name}
		pat.As = p.As
		return pat, nil
	case "lit":
		lit, err := decodeLit(p.Lit)
		if err != nil {
			return nil, err
		}
		pat := &ast.PLit{Kind: lit.Kind, Int: lit.Int, Char: lit.Char}
		pat.As = p.As
		return pat, nil
	case "con":
		args := make([]ast.Pattern, len(p.Args))
		for i := range p.Args {
			arg, err := decodePattern(&p.Args[i])
			if err != nil {
				return nil, err
			}
			args[i] = arg
		}
		pat := &ast.PCon{Name: p.Name, Args: args}
		pat.As = p.As
		return pat, nil
	default:
		return nil, fmt.Errorf("unknown pattern kind %q", p.Kind)
	}
}

func decodeType(t *Type) (ast.Type, error) {
	switch t.Kind {
	case "var":
		return &ast.TyVar{Name: t.Name}, nil
	case "con":
		return &ast.TyCon{Name: t.Name}, nil
	case "app":
		left, err := decodeType(t.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeType(t.Right)
		if err != nil {
			return nil, err
		}
		return &ast.TyApp{Left: left, Right: right}, nil
	default:
		return nil, fmt.Errorf("unknown type kind %q", t.Kind)
	}
}

func decodeScheme(s *Scheme) (*ast.Scheme, error) {
	ty, err := decodeType(&s.Type)
	if err != nil {
		return nil, err
	}
	return &ast.Scheme{Quantified: s.Quantified, Type: ty}, nil
}
