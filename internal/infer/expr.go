package infer

import (
	"github.com/htlc-project/htlc/internal/ast"
	"github.com/htlc-project/htlc/internal/diagnostics"
	"github.com/htlc-project/htlc/internal/types"
)

// assumptions maps a name in scope to its type scheme. Monomorphic
// bindings (lambda parameters, pattern variables, and implicit let-bound
// names mid-inference) are represented as a Scheme with no Quantified
// names, so Instantiate returns the type unchanged.
type assumptions map[string]*types.Scheme

func mono(t types.Type) *types.Scheme { return &types.Scheme{Type: t} }

func (a assumptions) extend(name string, sch *types.Scheme) assumptions {
	out := make(assumptions, len(a)+1)
	for k, v := range a {
		out[k] = v
	}
	out[name] = sch
	return out
}

func (a assumptions) apply(s types.Subst) assumptions {
	out := make(assumptions, len(a))
	for k, v := range a {
		out[k] = &types.Scheme{Quantified: v.Quantified, Type: v.Type.Apply(s)}
	}
	return out
}

// InferExpr implements the expression typing rules of the inferencer
// (§4.3): algorithm-W style, threading a substitution outward through each
// subexpression and applying it to the environment before descending into
// the next.
func (s *state) InferExpr(env assumptions, expr ast.Expr) (types.Subst, types.Type, *diagnostics.Error) {
	switch e := expr.(type) {
	case *ast.Lit:
		switch e.Kind {
		case ast.LitInt:
			return types.Subst{}, types.Int, nil
		case ast.LitChar:
			return types.Subst{}, types.Char, nil
		case ast.LitString:
			// A string literal is sugar for a list of Char, consistent with
			// its STG desugaring into nested (:) applications over [] (s3).
			return types.Subst{}, types.List(types.Char), nil
		}
		return nil, nil, diagnostics.New(diagnostics.InvariantViolation, ast.Position{Line: e.Line()}, "literal with unknown kind")

	case *ast.Var:
		sch, ok := env[e.Name]
		if !ok {
			return nil, nil, diagnostics.New(diagnostics.TypeError, ast.Position{Line: e.Line()}, "unbound variable %q", e.Name)
		}
		return types.Subst{}, types.Instantiate(sch, s.gen), nil

	case *ast.Con:
		sch, ok := s.conSchemes[e.Name]
		if !ok {
			return nil, nil, diagnostics.New(diagnostics.TypeError, ast.Position{Line: e.Line()}, "unknown data constructor %q", e.Name)
		}
		return types.Subst{}, types.Instantiate(sch, s.gen), nil

	case *ast.Lambda:
		inner := env
		paramVars := make([]types.Type, len(e.Params))
		for i, p := range e.Params {
			v := s.gen.Fresh()
			paramVars[i] = v
			inner = inner.extend(p, mono(v))
		}
		sub, bodyType, err := s.InferExpr(inner, e.Body)
		if err != nil {
			return nil, nil, err
		}
		result := bodyType
		for i := len(paramVars) - 1; i >= 0; i-- {
			result = types.Arrow(paramVars[i].Apply(sub), result)
		}
		return sub, result, nil

	case *ast.App:
		s1, funType, err := s.InferExpr(env, e.Fun)
		if err != nil {
			return nil, nil, err
		}
		s2, argType, err := s.InferExpr(env.apply(s1), e.Arg)
		if err != nil {
			return nil, nil, err
		}
		composed := types.Compose(s1, s2)
		resultVar := s.gen.Fresh()
		s3, uerr := types.Unify(funType.Apply(s2), types.Arrow(argType, resultVar))
		if uerr != nil {
			return nil, nil, diagnostics.New(diagnostics.TypeError, ast.Position{Line: e.Line()}, "%s", uerr.Error())
		}
		return types.Compose(composed, s3), resultVar.Apply(s3), nil

	case *ast.Let:
		return s.inferLet(env, e)

	case *ast.Case:
		return s.inferCase(env, e)

	case *ast.BinOp:
		return s.inferBinOp(env, e)

	default:
		return nil, nil, diagnostics.New(diagnostics.InvariantViolation, ast.Position{Line: expr.Line()}, "unexpected expression node %T", expr)
	}
}

func (s *state) inferBinOp(env assumptions, e *ast.BinOp) (types.Subst, types.Type, *diagnostics.Error) {
	if e.Op == ast.OpNegate {
		sub, rt, err := s.InferExpr(env, e.Right)
		if err != nil {
			return nil, nil, err
		}
		s2, uerr := types.Unify(rt, types.Int)
		if uerr != nil {
			return nil, nil, diagnostics.New(diagnostics.TypeError, ast.Position{Line: e.Line()}, "%s", uerr.Error())
		}
		return types.Compose(sub, s2), types.Int, nil
	}

	s1, lt, err := s.InferExpr(env, e.Left)
	if err != nil {
		return nil, nil, err
	}
	s2, rt, err := s.InferExpr(env.apply(s1), e.Right)
	if err != nil {
		return nil, nil, err
	}
	composed := types.Compose(s1, s2)

	if e.Op.IsEquality() {
		s3, uerr := types.Unify(lt.Apply(s2), rt)
		if uerr != nil {
			return nil, nil, diagnostics.New(diagnostics.TypeError, ast.Position{Line: e.Line()}, "%s", uerr.Error())
		}
		return types.Compose(composed, s3), types.Bool, nil
	}

	s3, uerr := types.Unify(lt.Apply(s2), types.Int)
	if uerr != nil {
		return nil, nil, diagnostics.New(diagnostics.TypeError, ast.Position{Line: e.Line()}, "%s", uerr.Error())
	}
	composed = types.Compose(composed, s3)
	s4, uerr := types.Unify(rt.Apply(s3), types.Int)
	if uerr != nil {
		return nil, nil, diagnostics.New(diagnostics.TypeError, ast.Position{Line: e.Line()}, "%s", uerr.Error())
	}
	composed = types.Compose(composed, s4)

	if e.Op.IsArithmetic() {
		return composed, types.Int, nil
	}
	return composed, types.Bool, nil
}

func (s *state) inferCase(env assumptions, e *ast.Case) (types.Subst, types.Type, *diagnostics.Error) {
	sub, scrType, err := s.InferExpr(env, e.Scrutinee)
	if err != nil {
		return nil, nil, err
	}

	var resultType types.Type
	for i, alt := range e.Alts {
		bindings, psub, perr := s.InferPattern(alt.Pattern, scrType.Apply(sub))
		if perr != nil {
			return nil, nil, perr
		}
		sub = types.Compose(sub, psub)

		altEnv := env.apply(sub)
		for name, t := range bindings {
			altEnv = altEnv.extend(name, mono(t.Apply(sub)))
		}

		bsub, bodyType, berr := s.InferExpr(altEnv, alt.Body)
		if berr != nil {
			return nil, nil, berr
		}
		sub = types.Compose(sub, bsub)

		if i == 0 {
			resultType = bodyType
			continue
		}
		usub, uerr := types.Unify(resultType.Apply(bsub), bodyType)
		if uerr != nil {
			return nil, nil, diagnostics.New(diagnostics.TypeError, ast.Position{Line: alt.Body.Line()},
				"case alternatives have incompatible types: %s", uerr.Error())
		}
		sub = types.Compose(sub, usub)
		resultType = resultType.Apply(usub)
	}

	if resultType == nil {
		return nil, nil, diagnostics.New(diagnostics.InvariantViolation, ast.Position{Line: e.Line()}, "case expression with no alternatives")
	}
	return sub, resultType, nil
}
