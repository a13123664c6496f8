package astwire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/htlc-project/htlc/internal/ast"
)

// const five = 5
func TestDecodeProgramSimpleBinding(t *testing.T) {
	p := &Program{
		Bindings: map[string]Expr{
			"five": {Kind: "lit", Lit: &Lit{Kind: "int", Int: 5}},
		},
		Order: []string{"five"},
	}

	out, err := DecodeProgram(p)
	require.NoError(t, err)

	lit, ok := out.Bindings["five"].(*ast.Lit)
	require.True(t, ok)
	assert.Equal(t, ast.LitInt, lit.Kind)
	assert.EqualValues(t, 5, lit.Int)
}

// data Bool = False | True, plus a binding `negb = \x -> case x of True -> False; False -> True`
func TestDecodeProgramDataDeclAndPattern(t *testing.T) {
	p := &Program{
		Bindings: map[string]Expr{
			"negb": {
				Kind:   "lambda",
				Params: []string{"x"},
				Body: &Expr{
					Kind:      "case",
					Scrutinee: &Expr{Kind: "var", Name: "x"},
					Alts: []Alt{
						{Pattern: Pattern{Kind: "con", Name: "True"}, Body: Expr{Kind: "con", Name: "False"}},
						{Pattern: Pattern{Kind: "con", Name: "False", As: []string{"whole"}}, Body: Expr{Kind: "con", Name: "True"}},
					},
				},
			},
		},
		Order: []string{"negb"},
		TypeCons: []*TypeCon{
			{
				Name: "Bool",
				Constructors: []*DataConstructor{
					{Name: "False"},
					{Name: "True"},
				},
			},
		},
	}

	out, err := DecodeProgram(p)
	require.NoError(t, err)

	assert.Equal(t, 0, out.DataConArity["True"])
	require.Contains(t, out.DataCons, "True")
	assert.Equal(t, 1, out.DataCons["True"].Index)
	assert.Equal(t, 2, out.DataCons["True"].NumSibling)

	lam, ok := out.Bindings["negb"].(*ast.Lambda)
	require.True(t, ok)
	caseExpr, ok := lam.Body.(*ast.Case)
	require.True(t, ok)
	require.Len(t, caseExpr.Alts, 2)

	secondPat, ok := caseExpr.Alts[1].Pattern.(*ast.PCon)
	require.True(t, ok)
	assert.Equal(t, "False", secondPat.Name)
	assert.Equal(t, []string{"whole"}, secondPat.AsNames())
}

func TestDecodeProgramUnknownExprKindErrors(t *testing.T) {
	p := &Program{
		Bindings: map[string]Expr{"bad": {Kind: "nonsense"}},
		Order:    []string{"bad"},
	}
	_, err := DecodeProgram(p)
	assert.Error(t, err)
}
