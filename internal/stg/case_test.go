package stg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/htlc-project/htlc/internal/ast"
)

func boolProgram() *ast.Program {
	return &ast.Program{
		TypeCons: map[string]*ast.TypeCon{
			"Bool": {
				Name: "Bool",
				Constructors: []*ast.DataConstructor{
					{Name: "False", Arity: 0},
					{Name: "True", Arity: 0},
				},
			},
		},
		DataCons: map[string]*ast.DataConsInfo{
			"False": {TypeName: "Bool", Index: 0, NumSibling: 2},
			"True":  {TypeName: "Bool", Index: 1, NumSibling: 2},
		},
		DataConArity: map[string]int{"False": 0, "True": 0},
	}
}

// not x = case x of { True -> False ; False -> True }
func notExpr() ast.Expr {
	return &ast.Case{
		Scrutinee: &ast.Var{Name: "x"},
		Alts: []ast.Alt{
			{Pattern: &ast.PCon{Name: "True"}, Body: &ast.Con{Name: "False"}},
			{Pattern: &ast.PCon{Name: "False"}, Body: &ast.Con{Name: "True"}},
		},
	}
}

func TestTranslateCaseOverNullaryConstructors(t *testing.T) {
	prog := boolProgram()
	tr := &translator{program: prog, topNames: map[string]bool{"not": true}}

	lf, extras, err := tr.translateExpr(map[string]string{"x": "x"}, notExpr())
	require.Nil(t, err)

	alg, ok := lf.Body.(AlgCaseExpr)
	require.True(t, ok, "case over constructors should compile to an AlgCaseExpr, got %T", lf.Body)
	assert.Equal(t, AtomVar{Name: "x"}, alg.Scrutinee)
	require.Len(t, alg.Alts, 2)

	byCon := map[string]AlgAlt{}
	for _, a := range alg.Alts {
		byCon[a.Con] = a
	}
	require.Contains(t, byCon, "True")
	require.Contains(t, byCon, "False")
	assert.Empty(t, byCon["True"].Params)
	assert.Empty(t, byCon["False"].Params)

	trueBody, ok := byCon["True"].Body.(ConExpr)
	require.True(t, ok)
	assert.Equal(t, "False", trueBody.Name)

	falseBody, ok := byCon["False"].Body.(ConExpr)
	require.True(t, ok)
	assert.Equal(t, "True", falseBody.Name)

	assert.Contains(t, lf.Free, "x")
	_ = extras
}

// TestTranslateCaseDefaultArm exercises a trailing catch-all row: matching
// on Bool where only True is named and a variable pattern catches the rest.
func TestTranslateCaseDefaultArm(t *testing.T) {
	prog := boolProgram()
	tr := &translator{program: prog, topNames: map[string]bool{"isTrue": true}}

	expr := &ast.Case{
		Scrutinee: &ast.Var{Name: "x"},
		Alts: []ast.Alt{
			{Pattern: &ast.PCon{Name: "True"}, Body: &ast.Con{Name: "True"}},
			{Pattern: &ast.PVar{Name: "other"}, Body: &ast.Con{Name: "False"}},
		},
	}

	lf, _, err := tr.translateExpr(map[string]string{"x": "x"}, expr)
	require.Nil(t, err)

	alg, ok := lf.Body.(AlgCaseExpr)
	require.True(t, ok)
	require.Len(t, alg.Alts, 1)
	assert.Equal(t, "True", alg.Alts[0].Con)
	require.NotNil(t, alg.Default)
	def, ok := alg.Default.(ConExpr)
	require.True(t, ok)
	assert.Equal(t, "False", def.Name)
}

// TestTranslateCaseLiteralScrutineeIsLifted confirms a literal scrutinee
// (not already a bound variable) is materialized into a fresh binding
// before the match, per translateCase's stated invariant.
func TestTranslateCaseLiteralScrutineeIsLifted(t *testing.T) {
	prog := boolProgram()
	tr := &translator{program: prog, topNames: map[string]bool{"k": true}}

	expr := &ast.Case{
		Scrutinee: &ast.Lit{Kind: ast.LitInt, Int: 1},
		Alts: []ast.Alt{
			{Pattern: &ast.PLit{Kind: ast.LitInt, Int: 1}, Body: &ast.Con{Name: "True"}},
			{Pattern: &ast.PVar{Name: "n"}, Body: &ast.Con{Name: "False"}},
		},
	}

	_, extras, err := tr.translateExpr(map[string]string{}, expr)
	require.Nil(t, err)
	require.NotEmpty(t, extras, "a literal scrutinee must be lifted into its own binding group")
}
