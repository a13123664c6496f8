package stg

import (
	"github.com/htlc-project/htlc/internal/ast"
	"github.com/htlc-project/htlc/internal/depgraph"
	"github.com/htlc-project/htlc/internal/diagnostics"
)

// translateLet lowers a surface let expression (§4.4, "Let"): every binder
// is alpha-renamed to a fresh dot-name, the binders' own mutual
// dependencies are SCC-grouped (so the recursive flag is computed
// precisely, per the design notes, instead of the source's always-true
// default), and each group's extra-definitions are either folded into its
// own binding map (if they depend on the group) or bubbled further out.
func (t *translator) translateLet(rename map[string]string, e *ast.Let) (*LambdaForm, []group, *diagnostics.Error) {
	names := make([]string, 0, len(e.Bindings))
	for name := range e.Bindings {
		names = append(names, name)
	}

	inner := copyRename(rename)
	allBound := map[string]bool{}
	freshOf := map[string]string{}
	for _, name := range names {
		fresh := t.freshName()
		freshOf[name] = fresh
		inner[name] = fresh
		allBound[fresh] = true
	}

	deps := map[string]map[string]bool{}
	for _, name := range names {
		refs := surfaceFreeNames(e.Bindings[name])
		d := map[string]bool{}
		for r := range refs {
			if _, ok := e.Bindings[r]; ok {
				d[freshOf[r]] = true
			}
		}
		deps[freshOf[name]] = d
	}
	freshNames := make([]string, len(names))
	for i, n := range names {
		freshNames[i] = freshOf[n]
	}
	byFresh := map[string]string{}
	for orig, fresh := range freshOf {
		byFresh[fresh] = orig
	}

	groups := depgraph.Analyze(freshNames, deps)

	var letGroups []group
	var outerExtras []group

	for _, g := range groups {
		bound := map[string]bool{}
		for _, n := range g {
			bound[n] = true
		}

		bindings := map[string]*LambdaForm{}
		var extras []group
		for _, fresh := range g {
			orig := byFresh[fresh]
			lf, es, err := t.translateExpr(inner, e.Bindings[orig])
			if err != nil {
				return nil, nil, err
			}
			bindings[fresh] = lf
			extras = append(extras, es...)
		}

		captured, bubbled := partitionExtras(extras, bound)
		for _, cg := range captured {
			for _, n := range cg.order {
				bindings[n] = cg.bindings[n]
			}
		}
		outerExtras = append(outerExtras, bubbled...)

		recursive := len(g) > 1
		if !recursive && len(g) == 1 {
			recursive = bindings[g[0]].Free != nil && containsName(bindings[g[0]].Free, g[0])
		}

		letGroups = append(letGroups, group{order: g, bindings: bindings, recursive: recursive})
	}

	bodyLF, bodyExtras, err := t.translateExpr(inner, e.Body)
	if err != nil {
		return nil, nil, err
	}
	captured, bubbled := partitionExtras(bodyExtras, allBound)
	outerExtras = append(outerExtras, bubbled...)

	body := wrapLets(bodyLF.Body, captured)
	body = wrapLets(body, letGroups)

	free := freeMinusParams(ExprFreeVars(body), allBound)
	lf := &LambdaForm{Free: free, Updatable: true, Body: body}
	return lf, outerExtras, nil
}

func containsName(names []string, target string) bool {
	for _, n := range names {
		if n == target {
			return true
		}
	}
	return false
}

// surfaceFreeNames computes the free variable references of a surface
// expression (ignoring names bound within it), used to dependency-analyze
// a let's own binders.
func surfaceFreeNames(expr ast.Expr) map[string]bool {
	out := map[string]bool{}
	collectSurfaceVars(expr, map[string]bool{}, out)
	return out
}

func collectSurfaceVars(expr ast.Expr, bound map[string]bool, out map[string]bool) {
	switch e := expr.(type) {
	case *ast.Var:
		if !bound[e.Name] {
			out[e.Name] = true
		}
	case *ast.Lambda:
		inner := extendBound(bound, e.Params...)
		collectSurfaceVars(e.Body, inner, out)
	case *ast.App:
		collectSurfaceVars(e.Fun, bound, out)
		collectSurfaceVars(e.Arg, bound, out)
	case *ast.Let:
		names := make([]string, 0, len(e.Bindings))
		for n := range e.Bindings {
			names = append(names, n)
		}
		inner := extendBound(bound, names...)
		for _, rhs := range e.Bindings {
			collectSurfaceVars(rhs, inner, out)
		}
		collectSurfaceVars(e.Body, inner, out)
	case *ast.Case:
		collectSurfaceVars(e.Scrutinee, bound, out)
		for _, alt := range e.Alts {
			inner := extendBound(bound, ast.BoundNames(alt.Pattern)...)
			collectSurfaceVars(alt.Body, inner, out)
		}
	case *ast.BinOp:
		if e.Left != nil {
			collectSurfaceVars(e.Left, bound, out)
		}
		collectSurfaceVars(e.Right, bound, out)
	}
}

func extendBound(bound map[string]bool, names ...string) map[string]bool {
	out := make(map[string]bool, len(bound)+len(names))
	for k := range bound {
		out[k] = true
	}
	for _, n := range names {
		out[n] = true
	}
	return out
}
