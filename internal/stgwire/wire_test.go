package stgwire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/htlc-project/htlc/internal/ast"
	"github.com/htlc-project/htlc/internal/stg"
)

func samplePogram() *stg.Program {
	return &stg.Program{
		Order: []string{"main"},
		Bindings: map[string]*stg.LambdaForm{
			"main": {
				Free:      nil,
				Params:    nil,
				Updatable: true,
				Body: stg.AlgCaseExpr{
					Scrutinee: stg.AtomVar{Name: "x"},
					Alts: []stg.AlgAlt{
						{Con: "True", Params: nil, Body: stg.ConExpr{Name: "False"}},
					},
					Default: stg.AtomExpr{Atom: stg.AtomVar{Name: "case_error"}},
				},
			},
		},
		Descriptors: map[string]*stg.Descriptor{
			"True":  {Tag: 1, Arity: 0, Siblings: 2},
			"False": {Tag: 0, Arity: 0, Siblings: 2},
		},
	}
}

func TestRoundTripThroughYAML(t *testing.T) {
	prog := samplePogram()

	wire := FromProgram(prog)
	blob, err := yaml.Marshal(wire)
	require.NoError(t, err)

	var decoded Program
	require.NoError(t, yaml.Unmarshal(blob, &decoded))

	back, err := ToProgram(&decoded)
	require.NoError(t, err)

	assert.Equal(t, prog.Order, back.Order)
	assert.Equal(t, prog.Descriptors, back.Descriptors)

	mainLF := back.Bindings["main"]
	require.NotNil(t, mainLF)
	assert.True(t, mainLF.Updatable)

	alg, ok := mainLF.Body.(stg.AlgCaseExpr)
	require.True(t, ok)
	assert.Equal(t, stg.AtomVar{Name: "x"}, alg.Scrutinee)
	require.Len(t, alg.Alts, 1)
	assert.Equal(t, "True", alg.Alts[0].Con)

	defAtom, ok := alg.Default.(stg.AtomExpr)
	require.True(t, ok)
	assert.Equal(t, "case_error", defAtom.Atom.(stg.AtomVar).Name)
}

func TestAtomLitRoundTrip(t *testing.T) {
	prog := &stg.Program{
		Order: []string{"k"},
		Bindings: map[string]*stg.LambdaForm{
			"k": {Body: stg.AtomExpr{Atom: stg.AtomLit{Kind: ast.LitChar, Char: 'x'}}},
		},
	}
	wire := FromProgram(prog)
	back, err := ToProgram(wire)
	require.NoError(t, err)

	atomExpr, ok := back.Bindings["k"].Body.(stg.AtomExpr)
	require.True(t, ok)
	lit, ok := atomExpr.Atom.(stg.AtomLit)
	require.True(t, ok)
	assert.Equal(t, 'x', lit.Char)
}
