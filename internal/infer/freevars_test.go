package infer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/htlc-project/htlc/internal/ast"
)

// case y of x -> x — a bare PVar pattern shadows any outer binding named
// "x"; the body's reference to x must resolve to the pattern, not escape
// as a free variable.
func TestFreeVarsCasePVarShadowsOuterName(t *testing.T) {
	expr := &ast.Case{
		Scrutinee: &ast.Var{Name: "y"},
		Alts: []ast.Alt{
			{Pattern: &ast.PVar{Name: "x"}, Body: &ast.Var{Name: "x"}},
		},
	}
	free := FreeVars(expr)
	assert.Contains(t, free, "y")
	assert.NotContains(t, free, "x", "a PVar's own bound name must not leak out as a free reference")
}

// case p of Pair a b -> a + b — names bound by a PCon's nested sub-patterns
// must also be excluded from the alt's free variables, not just as-aliases.
func TestFreeVarsCaseNestedPConArgsAreBound(t *testing.T) {
	expr := &ast.Case{
		Scrutinee: &ast.Var{Name: "p"},
		Alts: []ast.Alt{
			{
				Pattern: &ast.PCon{Name: "Pair", Args: []ast.Pattern{&ast.PVar{Name: "a"}, &ast.PVar{Name: "b"}}},
				Body:    &ast.BinOp{Op: ast.OpAdd, Left: &ast.Var{Name: "a"}, Right: &ast.Var{Name: "b"}},
			},
		},
	}
	free := FreeVars(expr)
	assert.Contains(t, free, "p")
	assert.NotContains(t, free, "a")
	assert.NotContains(t, free, "b")
}

// case v of whole@(Just n) -> n — an as-alias plus the nested PVar must both
// be excluded.
func TestFreeVarsCaseAsPatternAndNestedVar(t *testing.T) {
	pat := &ast.PCon{Name: "Just", Args: []ast.Pattern{&ast.PVar{Name: "n"}}}
	pat.As = []string{"whole"}
	expr := &ast.Case{
		Scrutinee: &ast.Var{Name: "v"},
		Alts: []ast.Alt{
			{Pattern: pat, Body: &ast.Var{Name: "n"}},
		},
	}
	free := FreeVars(expr)
	assert.NotContains(t, free, "n")
	assert.NotContains(t, free, "whole")
}
