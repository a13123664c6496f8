package infer

import (
	"fmt"

	"github.com/htlc-project/htlc/internal/ast"
	"github.com/htlc-project/htlc/internal/diagnostics"
	"github.com/htlc-project/htlc/internal/types"
)

// InferPattern unifies scrutType against the shape pat demands and returns
// the bindings pat introduces for its body, plus the accumulated
// substitution. A pattern with a repeated variable name is rejected (edge
// case 9); a constructor pattern applied to the wrong number of
// sub-patterns is rejected (edge case 10).
func (s *state) InferPattern(pat ast.Pattern, scrType types.Type) (map[string]types.Type, types.Subst, *diagnostics.Error) {
	seen := map[string]bool{}
	for _, name := range ast.BoundNames(pat) {
		if seen[name] {
			return nil, nil, diagnostics.New(diagnostics.TypeError, ast.Position{Line: pat.Line()},
				"pattern binds %q more than once", name)
		}
		seen[name] = true
	}
	return s.inferPattern(pat, scrType)
}

func (s *state) inferPattern(pat ast.Pattern, scrType types.Type) (map[string]types.Type, types.Subst, *diagnostics.Error) {
	switch p := pat.(type) {
	case *ast.PWildcard:
		return map[string]types.Type{}, types.Subst{}, nil

	case *ast.PVar:
		return map[string]types.Type{p.Name: scrType}, types.Subst{}, nil

	case *ast.PLit:
		var litType types.Type
		switch p.Kind {
		case ast.LitInt:
			litType = types.Int
		case ast.LitChar:
			litType = types.Char
		default:
			return nil, nil, diagnostics.New(diagnostics.InvariantViolation, ast.Position{Line: p.Line()},
				"string literal pattern should have been desugared to a cons/[] match")
		}
		sub, err := types.Unify(scrType, litType)
		if err != nil {
			return nil, nil, diagnostics.New(diagnostics.TypeError, ast.Position{Line: p.Line()}, "%s", err.Error())
		}
		return map[string]types.Type{}, sub, nil

	case *ast.PCon:
		info, ok := s.program.DataCons[p.Name]
		if !ok {
			return nil, nil, diagnostics.New(diagnostics.TypeError, ast.Position{Line: p.Line()},
				"unknown data constructor %q in pattern", p.Name)
		}
		if info.Decl.Arity != len(p.Args) {
			return nil, nil, diagnostics.New(diagnostics.TypeError, ast.Position{Line: p.Line()},
				"constructor %q expects %d argument(s), pattern supplies %d", p.Name, info.Decl.Arity, len(p.Args))
		}

		conType := s.instantiateConstructor(p.Name)
		fieldTypes, resultType := uncurryN(conType, len(p.Args))

		sub, err := types.Unify(scrType, resultType)
		if err != nil {
			return nil, nil, diagnostics.New(diagnostics.TypeError, ast.Position{Line: p.Line()}, "%s", err.Error())
		}

		bindings := map[string]types.Type{}
		for i, sub2 := range p.Args {
			fieldBindings, s2, err := s.inferPattern(sub2, fieldTypes[i].Apply(sub))
			if err != nil {
				return nil, nil, err
			}
			sub = types.Compose(sub, s2)
			for k, v := range fieldBindings {
				bindings[k] = v.Apply(s2)
			}
		}
		return bindings, sub, nil

	default:
		return nil, nil, diagnostics.New(diagnostics.InvariantViolation, ast.Position{Line: pat.Line()},
			"unexpected pattern node %T", pat)
	}
}

// uncurryN peels n arrows off t (a constructor's instantiated type),
// returning the argument types and the final result type.
func uncurryN(t types.Type, n int) ([]types.Type, types.Type) {
	args := make([]types.Type, 0, n)
	for i := 0; i < n; i++ {
		from, to, ok := types.AsArrow(t)
		if !ok {
			panic(fmt.Sprintf("constructor type %s has fewer than %d arguments", t, n))
		}
		args = append(args, from)
		t = to
	}
	return args, t
}
