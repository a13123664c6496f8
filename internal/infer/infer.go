// Package infer implements the Hindley-Milner type inferencer (§4.3): it
// validates signature kinds, partitions bindings by dependency, and infers
// a principal type scheme for every top-level name, checking any
// programmer-declared signature against what was actually inferred.
package infer

import (
	"github.com/htlc-project/htlc/internal/ast"
	"github.com/htlc-project/htlc/internal/depgraph"
	"github.com/htlc-project/htlc/internal/diagnostics"
	"github.com/htlc-project/htlc/internal/kinds"
	"github.com/htlc-project/htlc/internal/types"
)

// state carries the mutable pieces of a single inference run: the program
// being checked, the fresh-variable source, the constructor schemes built
// once up front, and the current best-known scheme per top-level name.
type state struct {
	program      *ast.Program
	gen          *types.VarGen
	typeConKinds map[string]kinds.Kind
	conSchemes   map[string]*types.Scheme
	assumptions  assumptions
	schemes      map[string]*types.Scheme
}

// InferProgram runs the full typing procedure over program and returns the
// resulting scheme for every top-level binding, or the first diagnostic
// raised.
func InferProgram(program *ast.Program, typeConKinds map[string]kinds.Kind) (map[string]*types.Scheme, *diagnostics.Error) {
	for _, name := range types.SortedKeys(program.Signatures) {
		if _, ok := program.Bindings[name]; !ok {
			return nil, diagnostics.Unpositioned(diagnostics.TypeError, "type signature for %q with no matching binding", name)
		}
	}
	for _, name := range program.Order {
		if sig, ok := program.Signatures[name]; ok {
			if err := kinds.CheckSignature(name, sig, typeConKinds); err != nil {
				return nil, err
			}
		}
	}

	s := &state{
		program:      program,
		gen:          &types.VarGen{},
		typeConKinds: typeConKinds,
		conSchemes:   map[string]*types.Scheme{},
		schemes:      map[string]*types.Scheme{},
	}

	base := assumptions{}
	for name, info := range program.DataCons {
		s.conSchemes[name] = s.schemeFromDataCon(info)
		base[name] = s.conSchemes[name]
	}
	s.assumptions = base

	deps := map[string]map[string]bool{}
	for _, name := range program.Order {
		refs := FreeVars(program.Bindings[name])
		d := map[string]bool{}
		for ref := range refs {
			if _, ok := program.Bindings[ref]; ok {
				d[ref] = true
			}
		}
		deps[name] = d
	}

	groups := depgraph.Analyze(program.Order, deps)
	for _, group := range groups {
		if err := s.inferGroup(group); err != nil {
			return nil, err
		}
	}

	return s.schemes, nil
}

func (s *state) inferGroup(group []string) *diagnostics.Error {
	local := s.assumptions
	placeholders := map[string]types.Type{}
	for _, name := range group {
		if sig, ok := s.program.Signatures[name]; ok {
			local = local.extend(name, s.schemeFromAST(sig))
			continue
		}
		v := s.gen.Fresh()
		placeholders[name] = v
		local = local.extend(name, mono(v))
	}

	sub := types.Subst{}
	inferred := map[string]types.Type{}
	for _, name := range group {
		bsub, t, err := s.InferExpr(local.apply(sub), s.program.Bindings[name])
		if err != nil {
			return err
		}
		sub = types.Compose(sub, bsub)
		inferred[name] = t

		if v, isImplicit := placeholders[name]; isImplicit {
			usub, uerr := types.Unify(v.Apply(sub), t)
			if uerr != nil {
				return diagnostics.New(diagnostics.TypeError, ast.Position{Line: s.program.Bindings[name].Line()},
					"insufficient type information for recursive binding %q: %s", name, uerr.Error())
			}
			sub = types.Compose(sub, usub)
		} else {
			declared := s.schemeFromAST(s.program.Signatures[name])
			instDeclared := types.Instantiate(declared, s.gen)
			usub, uerr := types.Unify(instDeclared, t)
			if uerr != nil {
				return diagnostics.New(diagnostics.TypeError, ast.Position{Line: s.program.Bindings[name].Line()},
					"binding %q does not match its declared type %s: %s", name, declared, uerr.Error())
			}
			sub = types.Compose(sub, usub)
		}
	}

	s.assumptions = s.assumptions.apply(sub)
	for _, name := range group {
		final := inferred[name].Apply(sub)
		if sig, ok := s.program.Signatures[name]; ok {
			declared := s.schemeFromAST(sig)
			generalizedInferred := types.Generalize(s.assumptions, final)
			if !MatchesSignature(declared, generalizedInferred, s.gen) {
				return diagnostics.New(diagnostics.TypeError, ast.Position{Line: s.program.Bindings[name].Line()},
					"declared type signature for %q (%s) is more general than its inferred type (%s)", name, declared, generalizedInferred)
			}
			s.schemes[name] = declared
			s.assumptions = s.assumptions.extend(name, declared)
		} else {
			scheme := types.Generalize(s.assumptions, final)
			s.schemes[name] = scheme
			s.assumptions = s.assumptions.extend(name, scheme)
		}
	}
	return nil
}

// schemeFromAST converts a surface type scheme (all type variables spelled
// out as ast.TyVar nodes) into the internal representation, quantifying
// every name not already marked bound elsewhere.
func (s *state) schemeFromAST(sig *ast.Scheme) *types.Scheme {
	quantified := sig.Quantified
	if len(quantified) == 0 {
		quantified = freeTyVarNames(sig.Type, map[string]bool{})
	}
	genSet := map[string]bool{}
	for _, q := range quantified {
		genSet[q] = true
	}
	return &types.Scheme{Quantified: quantified, Type: s.convertAstType(sig.Type, genSet)}
}

func (s *state) convertAstType(t ast.Type, genSet map[string]bool) types.Type {
	switch t := t.(type) {
	case *ast.TyVar:
		if genSet[t.Name] {
			return types.Gen{Name: t.Name}
		}
		return types.Var{Name: t.Name}
	case *ast.TyCon:
		return types.Con{Name: t.Name, Kind: s.resolveKind(t.Name)}
	case *ast.TyApp:
		return types.App{Left: s.convertAstType(t.Left, genSet), Right: s.convertAstType(t.Right, genSet)}
	default:
		return types.Con{Name: "?"}
	}
}

func (s *state) resolveKind(name string) kinds.Kind {
	if k, ok := s.typeConKinds[name]; ok {
		return k
	}
	return kinds.Star{}
}

// schemeFromDataCon builds the type scheme of a data constructor:
// field_1 -> ... -> field_n -> T p_1 ... p_m, universally quantified over
// the owning type's declared parameters.
func (s *state) schemeFromDataCon(info *ast.DataConsInfo) *types.Scheme {
	tc := s.program.TypeCons[info.TypeName]
	genSet := map[string]bool{}
	for _, p := range tc.Params {
		genSet[p] = true
	}

	result := types.Type(types.Con{Name: info.TypeName, Kind: s.resolveKind(info.TypeName)})
	for _, p := range tc.Params {
		result = types.App{Left: result, Right: types.Gen{Name: p}}
	}

	t := result
	for i := len(info.Decl.Fields) - 1; i >= 0; i-- {
		t = types.Arrow(s.convertAstType(info.Decl.Fields[i], genSet), t)
	}

	return &types.Scheme{Quantified: tc.Params, Type: t}
}

func (s *state) instantiateConstructor(name string) types.Type {
	return types.Instantiate(s.conSchemes[name], s.gen)
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
