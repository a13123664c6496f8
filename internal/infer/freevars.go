package infer

import "github.com/htlc-project/htlc/internal/ast"

// FreeVars computes the set of unbound variable references in expr, used
// for dependency analysis (which top-level bindings call which) by
// InferProgram and the pipeline's DependencyStage; the STG translator
// keeps its own free-variable computation.
func FreeVars(expr ast.Expr) map[string]bool {
	free := map[string]bool{}
	collectExprVars(expr, map[string]bool{}, free)
	return free
}

func collectExprVars(expr ast.Expr, bound map[string]bool, out map[string]bool) {
	switch e := expr.(type) {
	case *ast.Lit:
	case *ast.Var:
		if !bound[e.Name] {
			out[e.Name] = true
		}
	case *ast.Con:
		// Data constructors are resolved against the constructor table, not
		// the value-level assumption environment; they are never "free
		// variables" in the closure-capture sense.
	case *ast.Lambda:
		inner := extend(bound, e.Params...)
		collectExprVars(e.Body, inner, out)
	case *ast.App:
		collectExprVars(e.Fun, bound, out)
		collectExprVars(e.Arg, bound, out)
	case *ast.Let:
		inner := bound
		names := make([]string, 0, len(e.Bindings))
		for name := range e.Bindings {
			names = append(names, name)
		}
		inner = extend(bound, names...)
		for _, rhs := range e.Bindings {
			collectExprVars(rhs, inner, out)
		}
		collectExprVars(e.Body, inner, out)
	case *ast.Case:
		collectExprVars(e.Scrutinee, bound, out)
		for _, alt := range e.Alts {
			inner := extend(bound, ast.BoundNames(alt.Pattern)...)
			collectExprVars(alt.Body, inner, out)
		}
	case *ast.BinOp:
		if e.Left != nil {
			collectExprVars(e.Left, bound, out)
		}
		collectExprVars(e.Right, bound, out)
	}
}

func extend(bound map[string]bool, names ...string) map[string]bool {
	out := make(map[string]bool, len(bound)+len(names))
	for k := range bound {
		out[k] = true
	}
	for _, n := range names {
		out[n] = true
	}
	return out
}
