package cleanup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/htlc-project/htlc/internal/ast"
	"github.com/htlc-project/htlc/internal/stg"
)

func boolAST() *ast.Program {
	return &ast.Program{
		DataCons: map[string]*ast.DataConsInfo{
			"True":  {Decl: &ast.DataConstructor{Name: "True", Arity: 0}, TypeName: "Bool", Index: 1, NumSibling: 2},
			"False": {Decl: &ast.DataConstructor{Name: "False", Arity: 0}, TypeName: "Bool", Index: 0, NumSibling: 2},
		},
	}
}

func TestRunPrunesUnreachableBindings(t *testing.T) {
	prog := &stg.Program{
		Order: []string{"main", "dead", "True"},
		Bindings: map[string]*stg.LambdaForm{
			"main": {Body: stg.AtomExpr{Atom: stg.AtomVar{Name: "True"}}, Free: []string{"True"}, Updatable: true},
			"dead": {Body: stg.ConExpr{Name: "True"}, Updatable: false},
			"True": {Body: stg.ConExpr{Name: "True"}, Updatable: false},
		},
	}

	out, err := Run(prog, boolAST())
	require.Nil(t, err)
	assert.ElementsMatch(t, []string{"main", "True"}, out.Order)
	_, stillPresent := out.Bindings["dead"]
	assert.False(t, stillPresent, "dead should be pruned: nothing reachable from main references it")
}

func TestRunBuildsDescriptorsOnlyForUsedConstructors(t *testing.T) {
	prog := &stg.Program{
		Order: []string{"main", "True", "False"},
		Bindings: map[string]*stg.LambdaForm{
			"main":  {Body: stg.AtomExpr{Atom: stg.AtomVar{Name: "True"}}, Free: []string{"True"}, Updatable: true},
			"True":  {Body: stg.ConExpr{Name: "True"}, Updatable: false},
			"False": {Body: stg.ConExpr{Name: "False"}, Updatable: false},
		},
	}

	out, err := Run(prog, boolAST())
	require.Nil(t, err)
	require.Contains(t, out.Descriptors, "True")
	assert.Equal(t, 1, out.Descriptors["True"].Tag)
	assert.NotContains(t, out.Descriptors, "False", "False is unreachable from main, its descriptor should not be built")
}

func TestRunErrorsWithoutMain(t *testing.T) {
	prog := &stg.Program{
		Order:    []string{"notMain"},
		Bindings: map[string]*stg.LambdaForm{"notMain": {Body: stg.ConExpr{Name: "True"}}},
	}
	_, err := Run(prog, boolAST())
	require.NotNil(t, err)
}

func TestProcessLambdaFormStripsTopLevelNamesFromNestedFree(t *testing.T) {
	g := map[string]bool{"helper": true}
	nested := &stg.LambdaForm{
		Free:      []string{"helper", "local"},
		Updatable: true,
		Body:      stg.AtomExpr{Atom: stg.AtomVar{Name: "local"}},
	}
	processLambdaForm(nested, false, map[string]int{}, g)
	assert.Equal(t, []string{"local"}, nested.Free, "a nested lambda-form must drop statically-addressable top-level names from its Free set")
}

func TestProcessLambdaFormKeepsFreeOnConstructorBody(t *testing.T) {
	g := map[string]bool{"helper": true}
	nested := &stg.LambdaForm{
		Free: []string{"helper"},
		Body: stg.ConExpr{Name: "Pair", Args: []stg.Atom{stg.AtomVar{Name: "helper"}}},
	}
	processLambdaForm(nested, false, map[string]int{}, g)
	assert.Equal(t, []string{"helper"}, nested.Free, "a saturated constructor body is exempted from free-variable pruning")
}

func TestProcessExprForcesNonUpdatableOnUnderSaturatedApp(t *testing.T) {
	enclosing := &stg.LambdaForm{Updatable: true, Body: stg.AppExpr{Fun: "f", Args: []stg.Atom{stg.AtomVar{Name: "a"}}}}
	arities := map[string]int{"f": 2}
	processExpr(enclosing.Body, enclosing, arities, map[string]bool{})
	assert.False(t, enclosing.Updatable, "an under-saturated application must force its enclosing lambda-form non-updatable")
}
