package kinds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/htlc-project/htlc/internal/ast"
)

func tyVar(name string) ast.Type { return &ast.TyVar{Name: name} }
func tyCon(name string) ast.Type { return &ast.TyCon{Name: name} }
func tyApp(l, r ast.Type) ast.Type { return &ast.TyApp{Left: l, Right: r} }

// data Bool = False | True — a nullary type constructor gets kind *.
func TestInferTypeConstructorsNullaryIsStar(t *testing.T) {
	program := &ast.Program{
		TypeCons: map[string]*ast.TypeCon{
			"Bool": {
				Name: "Bool",
				Constructors: []*ast.DataConstructor{
					{Name: "False"},
					{Name: "True"},
				},
			},
		},
	}
	result, err := InferTypeConstructors(program)
	require.Nil(t, err)
	assert.Equal(t, Star{}, result["Bool"])
}

// data List a = Nil | Cons a (List a) — one parameter, self-referential:
// kind should be * -> *.
func TestInferTypeConstructorsUnaryRecursive(t *testing.T) {
	program := &ast.Program{
		TypeCons: map[string]*ast.TypeCon{
			"List": {
				Name:   "List",
				Params: []string{"a"},
				Constructors: []*ast.DataConstructor{
					{Name: "Nil"},
					{Name: "Cons", Fields: []ast.Type{tyVar("a"), tyApp(tyCon("List"), tyVar("a"))}},
				},
			},
		},
	}
	result, err := InferTypeConstructors(program)
	require.Nil(t, err)
	assert.Equal(t, Arrow{Left: Star{}, Right: Star{}}, result["List"])
}

// data Pair a b = MkPair a b — two parameters, neither used as a type
// constructor applied to an argument: kind * -> * -> *.
func TestInferTypeConstructorsBinaryParams(t *testing.T) {
	program := &ast.Program{
		TypeCons: map[string]*ast.TypeCon{
			"Pair": {
				Name:   "Pair",
				Params: []string{"a", "b"},
				Constructors: []*ast.DataConstructor{
					{Name: "MkPair", Fields: []ast.Type{tyVar("a"), tyVar("b")}},
				},
			},
		},
	}
	result, err := InferTypeConstructors(program)
	require.Nil(t, err)
	assert.Equal(t, MakeArrow(Star{}, Star{}, Star{}), result["Pair"])
}

// data Fix f = In (f (Fix f)) — a higher-kinded parameter: f must unify to
// kind * -> *, so Fix itself has kind (* -> *) -> *.
func TestInferTypeConstructorsHigherKindedParam(t *testing.T) {
	program := &ast.Program{
		TypeCons: map[string]*ast.TypeCon{
			"Fix": {
				Name:   "Fix",
				Params: []string{"f"},
				Constructors: []*ast.DataConstructor{
					{Name: "In", Fields: []ast.Type{tyApp(tyVar("f"), tyApp(tyCon("Fix"), tyVar("f")))}},
				},
			},
		},
	}
	result, err := InferTypeConstructors(program)
	require.Nil(t, err)
	assert.Equal(t, MakeArrow(Arrow{Left: Star{}, Right: Star{}}, Star{}), result["Fix"])
}

// A signature using a type constructor whose declared kind is * -> * but
// applied with zero arguments (`f :: List -> Int`) should fail to kind-check.
func TestCheckSignatureRejectsUnsaturatedTypeConApplication(t *testing.T) {
	typeConKinds := map[string]Kind{"List": Arrow{Left: Star{}, Right: Star{}}}
	sig := &ast.Scheme{Type: &ast.TyApp{
		Left:  &ast.TyApp{Left: tyCon("(->)"), Right: tyCon("List")},
		Right: tyCon("Int"),
	}}
	err := CheckSignature("bad", sig, typeConKinds)
	assert.NotNil(t, err)
}

func TestCheckSignatureAcceptsSaturatedApplication(t *testing.T) {
	typeConKinds := map[string]Kind{"List": Arrow{Left: Star{}, Right: Star{}}}
	sig := &ast.Scheme{Quantified: []string{"a"}, Type: &ast.TyApp{
		Left:  &ast.TyApp{Left: tyCon("(->)"), Right: tyApp(tyCon("List"), tyVar("a"))},
		Right: tyVar("a"),
	}}
	err := CheckSignature("head", sig, typeConKinds)
	assert.Nil(t, err)
}
