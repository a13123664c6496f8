package infer

import (
	"github.com/htlc-project/htlc/internal/ast"
	"github.com/htlc-project/htlc/internal/diagnostics"
	"github.com/htlc-project/htlc/internal/types"
)

// inferLet types a surface let expression. The data model fixes its
// bindings as always mutually recursive (§3), so — unlike the top-level
// program, which is first partitioned by the dependency analyzer — every
// name bound by one Let node is inferred as a single group.
func (s *state) inferLet(env assumptions, e *ast.Let) (types.Subst, types.Type, *diagnostics.Error) {
	names := make([]string, 0, len(e.Bindings))
	for name := range e.Bindings {
		names = append(names, name)
	}

	inner := env
	placeholders := map[string]types.Type{}
	for _, name := range names {
		if sig, ok := e.Signatures[name]; ok {
			inner = inner.extend(name, s.schemeFromAST(sig))
			continue
		}
		v := s.gen.Fresh()
		placeholders[name] = v
		inner = inner.extend(name, mono(v))
	}

	sub := types.Subst{}
	inferred := map[string]types.Type{}
	for _, name := range names {
		bsub, t, err := s.InferExpr(inner.apply(sub), e.Bindings[name])
		if err != nil {
			return nil, nil, err
		}
		sub = types.Compose(sub, bsub)
		inferred[name] = t

		if v, isImplicit := placeholders[name]; isImplicit {
			usub, uerr := types.Unify(v.Apply(sub), t)
			if uerr != nil {
				return nil, nil, diagnostics.New(diagnostics.TypeError, ast.Position{Line: e.Bindings[name].Line()},
					"insufficient type information for recursive binding %q: %s", name, uerr.Error())
			}
			sub = types.Compose(sub, usub)
		} else {
			declared := s.schemeFromAST(e.Signatures[name])
			instDeclared := types.Instantiate(declared, s.gen)
			usub, uerr := types.Unify(instDeclared, t)
			if uerr != nil {
				return nil, nil, diagnostics.New(diagnostics.TypeError, ast.Position{Line: e.Bindings[name].Line()},
					"binding %q does not match its declared type: %s", name, uerr.Error())
			}
			sub = types.Compose(sub, usub)
		}
	}

	bodyEnv := env.apply(sub)
	for _, name := range names {
		final := inferred[name].Apply(sub)
		if sig, ok := e.Signatures[name]; ok {
			declared := s.schemeFromAST(sig)
			generalizedInferred := types.Generalize(bodyEnv, final)
			if !MatchesSignature(declared, generalizedInferred, s.gen) {
				return nil, nil, diagnostics.New(diagnostics.TypeError, ast.Position{Line: e.Bindings[name].Line()},
					"declared type signature for %q (%s) is more general than its inferred type (%s)", name, declared, generalizedInferred)
			}
			bodyEnv = bodyEnv.extend(name, declared)
		} else {
			bodyEnv = bodyEnv.extend(name, types.Generalize(bodyEnv, final))
		}
	}

	bsub, bodyType, err := s.InferExpr(bodyEnv, e.Body)
	if err != nil {
		return nil, nil, err
	}
	return types.Compose(sub, bsub), bodyType, nil
}
