// Package cleanup implements the global cleanup pass (§4.5) that runs once
// translation to STG is complete: it prunes statically-addressable names
// out of nested closures' free-variable sets, forces partial applications
// non-updatable, discards anything unreachable from `main`, and builds the
// descriptor table for every data constructor the surviving program
// actually uses.
package cleanup

import (
	"github.com/htlc-project/htlc/internal/ast"
	"github.com/htlc-project/htlc/internal/diagnostics"
	"github.com/htlc-project/htlc/internal/stg"
)

// Run mutates prog in place and returns it, pruned to the bindings
// reachable from `main` with a populated descriptor table. program is the
// surface AST the translator lowered, needed for data-constructor arity,
// declaration index, and sibling counts.
func Run(prog *stg.Program, program *ast.Program) (*stg.Program, *diagnostics.Error) {
	g := map[string]bool{}
	for name := range prog.Bindings {
		g[name] = true
	}
	arities := map[string]int{}
	for name, lf := range prog.Bindings {
		arities[name] = len(lf.Params)
	}

	for _, lf := range prog.Bindings {
		processLambdaForm(lf, true, arities, g)
	}

	if _, ok := prog.Bindings["main"]; !ok {
		return nil, diagnostics.Unpositioned(diagnostics.InvariantViolation, "program has no main binding")
	}

	reachable := map[string]bool{}
	queue := []string{"main"}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if reachable[name] {
			continue
		}
		reachable[name] = true
		lf, ok := prog.Bindings[name]
		if !ok {
			continue
		}
		for _, free := range lf.Free {
			if prog.Bindings[free] != nil && !reachable[free] {
				queue = append(queue, free)
			}
		}
	}

	usedCons := map[string]bool{}
	newOrder := make([]string, 0, len(prog.Order))
	newBindings := make(map[string]*stg.LambdaForm, len(reachable))
	for _, name := range prog.Order {
		if !reachable[name] {
			continue
		}
		newOrder = append(newOrder, name)
		newBindings[name] = prog.Bindings[name]
		collectConstructors(prog.Bindings[name].Body, usedCons)
	}
	prog.Order = newOrder
	prog.Bindings = newBindings

	descriptors := map[string]*stg.Descriptor{}
	for name := range usedCons {
		info, ok := program.DataCons[name]
		if !ok {
			return nil, diagnostics.Unpositioned(diagnostics.InvariantViolation, "used data constructor %q has no declaration", name)
		}
		descriptors[name] = &stg.Descriptor{
			Tag:      tagFor(name, info),
			Arity:    info.Decl.Arity,
			Siblings: info.NumSibling,
		}
	}
	prog.Descriptors = descriptors

	return prog, nil
}

// tagFor assigns a constructor's runtime tag: the four built-in
// constructors get the fixed tags §3 specifies; everything else gets its
// declaration-order index among siblings.
func tagFor(name string, info *ast.DataConsInfo) int {
	switch name {
	case "[]":
		return 0
	case ":":
		return 1
	case "False":
		return 0
	case "True":
		return 1
	default:
		return info.Index
	}
}

// processLambdaForm applies steps 1 and 2 of global cleanup to lf and
// recurses into any lambda-forms nested within its body via let
// expressions.
func processLambdaForm(lf *stg.LambdaForm, isTopLevel bool, arities map[string]int, g map[string]bool) {
	if !isTopLevel {
		if _, isCon := lf.Body.(stg.ConExpr); !isCon {
			lf.Free = removeAll(lf.Free, g)
		}
	}
	processExpr(lf.Body, lf, arities, g)
}

// processExpr walks e looking for under-saturated applications (forcing
// the nearest enclosing lambda-form non-updatable) and nested let
// bindings (recursively cleaned up as non-top-level lambda-forms).
func processExpr(e stg.Expr, enclosing *stg.LambdaForm, arities map[string]int, g map[string]bool) {
	switch expr := e.(type) {
	case stg.AppExpr:
		if arity, ok := arities[expr.Fun]; ok && len(expr.Args) < arity {
			enclosing.Updatable = false
		}
	case *stg.LetExpr:
		for _, name := range expr.Order {
			processLambdaForm(expr.Bindings[name], false, arities, g)
		}
		processExpr(expr.Body, enclosing, arities, g)
	case stg.PrimCaseExpr:
		for _, alt := range expr.Alts {
			processExpr(alt.Body, enclosing, arities, g)
		}
		processExpr(expr.Default, enclosing, arities, g)
	case stg.AlgCaseExpr:
		for _, alt := range expr.Alts {
			processExpr(alt.Body, enclosing, arities, g)
		}
		processExpr(expr.Default, enclosing, arities, g)
	}
}

// collectConstructors records every data-constructor name appearing as a
// saturated constructor application anywhere within e, including inside
// nested let-bound lambda-forms.
func collectConstructors(e stg.Expr, used map[string]bool) {
	switch expr := e.(type) {
	case stg.ConExpr:
		used[expr.Name] = true
	case *stg.LetExpr:
		for _, name := range expr.Order {
			collectConstructors(expr.Bindings[name].Body, used)
		}
		collectConstructors(expr.Body, used)
	case stg.PrimCaseExpr:
		for _, alt := range expr.Alts {
			collectConstructors(alt.Body, used)
		}
		collectConstructors(expr.Default, used)
	case stg.AlgCaseExpr:
		for _, alt := range expr.Alts {
			collectConstructors(alt.Body, used)
		}
		collectConstructors(expr.Default, used)
	}
}

func removeAll(names []string, remove map[string]bool) []string {
	out := names[:0:0]
	for _, n := range names {
		if !remove[n] {
			out = append(out, n)
		}
	}
	return out
}
