package stg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/htlc-project/htlc/internal/ast"
)

func newTranslator(top ...string) *translator {
	tn := map[string]bool{}
	for _, n := range top {
		tn[n] = true
	}
	return &translator{program: &ast.Program{DataConArity: map[string]int{}}, topNames: tn}
}

// id = \x -> x
func TestTranslateLambdaProducesParamsAndNoFree(t *testing.T) {
	tr := newTranslator("id")
	lf, extras, err := tr.translateExpr(map[string]string{}, &ast.Lambda{
		Params: []string{"x"},
		Body:   &ast.Var{Name: "x"},
	})
	require.Nil(t, err)
	assert.Empty(t, extras)
	require.Len(t, lf.Params, 1)
	assert.Empty(t, lf.Free, "a lambda referencing only its own parameter captures nothing")
	assert.False(t, lf.Updatable, "a lambda closure is never updatable, only thunks are")

	atom, ok := lf.Body.(AtomExpr)
	require.True(t, ok)
	assert.Equal(t, AtomVar{Name: lf.Params[0]}, atom.Atom)
}

// const = \x y -> x — y is a parameter but never referenced, so Free must
// still exclude both params even though only one is used.
func TestTranslateLambdaMultiParamUnusedIsNotFree(t *testing.T) {
	tr := newTranslator("const")
	lf, _, err := tr.translateExpr(map[string]string{}, &ast.Lambda{
		Params: []string{"x", "y"},
		Body:   &ast.Var{Name: "x"},
	})
	require.Nil(t, err)
	require.Len(t, lf.Params, 2)
	assert.Empty(t, lf.Free)
}

// addOne = \x -> x + y, with y bound outside the lambda
func TestTranslateLambdaCapturesOuterFree(t *testing.T) {
	tr := newTranslator("addOne")
	lf, _, err := tr.translateExpr(map[string]string{}, &ast.Lambda{
		Params: []string{"x"},
		Body: &ast.BinOp{
			Op:    ast.OpAdd,
			Left:  &ast.Var{Name: "x"},
			Right: &ast.Var{Name: "y"}, // not a param: free in the enclosing scope
		},
	})
	require.Nil(t, err)
	assert.Contains(t, lf.Free, "y")
	assert.NotContains(t, lf.Free, lf.Params[0])
}

// App over a constructor: Just v (arity 1, saturated)
// translates to a ConExpr directly, not an AppExpr.
func TestTranslateAppSaturatedConstructor(t *testing.T) {
	tr := newTranslator("mkJust")
	tr.program.DataConArity["Just"] = 1

	lf, _, err := tr.translateExpr(map[string]string{"v": "v"}, &ast.App{
		Fun: &ast.Con{Name: "Just"},
		Arg: &ast.Var{Name: "v"},
	})
	require.Nil(t, err)
	con, ok := lf.Body.(ConExpr)
	require.True(t, ok)
	assert.Equal(t, "Just", con.Name)
	require.Len(t, con.Args, 1)
	assert.Equal(t, AtomVar{Name: "v"}, con.Args[0])
	assert.False(t, lf.Updatable)
}

// A bare reference to a 1-ary constructor with no arguments applied yet
// becomes a 1-parameter lambda-form whose body saturates it (translateConRef).
func TestTranslateConRefUnappliedBuildsWrapperLambda(t *testing.T) {
	tr := newTranslator()
	tr.program.DataConArity["Just"] = 1

	lf, extras, err := tr.translateExpr(map[string]string{}, &ast.Con{Name: "Just"})
	require.Nil(t, err)
	assert.Empty(t, extras)
	require.Len(t, lf.Params, 1)
	con, ok := lf.Body.(ConExpr)
	require.True(t, ok)
	assert.Equal(t, "Just", con.Name)
	assert.False(t, lf.Updatable)
}

// f a b, where f is an ordinary (non-constructor) application, lowers to an
// AppExpr naming the head and passing each variable argument as an atom.
func TestTranslateAppOrdinaryFunction(t *testing.T) {
	tr := newTranslator("apply")
	expr := &ast.App{
		Fun: &ast.App{Fun: &ast.Var{Name: "f"}, Arg: &ast.Var{Name: "a"}},
		Arg: &ast.Var{Name: "b"},
	}
	lf, _, err := tr.translateExpr(map[string]string{"f": "f", "a": "a", "b": "b"}, expr)
	require.Nil(t, err)
	app, ok := lf.Body.(AppExpr)
	require.True(t, ok)
	assert.Equal(t, "f", app.Fun)
	require.Len(t, app.Args, 2)
	assert.Equal(t, AtomVar{Name: "a"}, app.Args[0])
	assert.Equal(t, AtomVar{Name: "b"}, app.Args[1])
	assert.ElementsMatch(t, []string{"f", "a", "b"}, lf.Free)
}

// A string literal "ab" lowers to two lifted cons cells plus a nil tail,
// with the binding itself aliasing the outermost cons cell (s3).
func TestTranslateStringLitLiftsConsChain(t *testing.T) {
	tr := newTranslator("greeting")
	lf, extras, err := tr.translateExpr(map[string]string{}, &ast.Lit{Kind: ast.LitString, Str: "ab"})
	require.Nil(t, err)
	require.Len(t, extras, 3, "nil cell plus one cons cell per character")

	alias, ok := lf.Body.(AtomExpr)
	require.True(t, ok)
	aliasVar, ok := alias.Atom.(AtomVar)
	require.True(t, ok)

	nilGroup := extras[0]
	require.Len(t, nilGroup.order, 1)
	nilLF := nilGroup.bindings[nilGroup.order[0]]
	nilCon, ok := nilLF.Body.(ConExpr)
	require.True(t, ok)
	assert.Equal(t, "[]", nilCon.Name)

	outerCons := extras[2]
	require.Len(t, outerCons.order, 1)
	outerLF := outerCons.bindings[outerCons.order[0]]
	outerCon, ok := outerLF.Body.(ConExpr)
	require.True(t, ok)
	assert.Equal(t, ":", outerCon.Name)
	require.Len(t, outerCon.Args, 2)
	assert.Equal(t, AtomLit{Kind: ast.LitChar, Char: 'a'}, outerCon.Args[0])

	assert.Equal(t, outerCons.order[0], aliasVar.Name, "enclosing binding aliases the outermost cons cell")
}

// let x = 1; y = x + 1 in y — neither binder refers to itself, so each
// lands in its own group in dependency order (x's group outermost), with
// the recursive flag left false.
func TestTranslateLetNonRecursiveGroup(t *testing.T) {
	tr := newTranslator("withLet")
	expr := &ast.Let{
		Bindings: map[string]ast.Expr{
			"x": &ast.Lit{Kind: ast.LitInt, Int: 1},
			"y": &ast.BinOp{Op: ast.OpAdd, Left: &ast.Var{Name: "x"}, Right: &ast.Lit{Kind: ast.LitInt, Int: 1}},
		},
		Body: &ast.Var{Name: "y"},
	}
	lf, extras, err := tr.translateExpr(map[string]string{}, expr)
	require.Nil(t, err)
	assert.Empty(t, extras, "nothing here depends on an outer scope, so nothing should bubble past the let")

	letExpr, ok := lf.Body.(*LetExpr)
	require.True(t, ok)
	assert.False(t, letExpr.Recursive)
}

// let ones = 1 : ones in ones — a single self-referential binder must form
// its own recursive group.
func TestTranslateLetSelfReferenceIsRecursive(t *testing.T) {
	tr := newTranslator("onesUser")
	tr.program.DataConArity["(:)"] = 2

	expr := &ast.Let{
		Bindings: map[string]ast.Expr{
			"ones": &ast.App{
				Fun: &ast.App{Fun: &ast.Con{Name: "(:)"}, Arg: &ast.Lit{Kind: ast.LitInt, Int: 1}},
				Arg: &ast.Var{Name: "ones"},
			},
		},
		Body: &ast.Var{Name: "ones"},
	}
	lf, _, err := tr.translateExpr(map[string]string{}, expr)
	require.Nil(t, err)

	letExpr, ok := lf.Body.(*LetExpr)
	require.True(t, ok)
	assert.True(t, letExpr.Recursive)
}

// TranslateProgram over `main = True` flattens the single binding into the
// output program with no lifted extras.
func TestTranslateProgramSimpleBinding(t *testing.T) {
	prog := &ast.Program{
		Bindings:     map[string]ast.Expr{"main": &ast.Con{Name: "True"}},
		Order:        []string{"main"},
		DataConArity: map[string]int{"True": 0},
	}
	out, err := TranslateProgram(prog)
	require.Nil(t, err)
	require.Contains(t, out.Bindings, "main")
	assert.True(t, out.TopLevel["main"])
	con, ok := out.Bindings["main"].Body.(ConExpr)
	require.True(t, ok)
	assert.Equal(t, "True", con.Name)
}
