package infer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/htlc-project/htlc/internal/ast"
	"github.com/htlc-project/htlc/internal/kinds"
	"github.com/htlc-project/htlc/internal/types"
)

// Foo a a -> a must be rejected: "a" is bound twice by the same pattern,
// violating the §3 invariant that every pattern-bound name occurs at most
// once (edge case 9).
func TestInferPatternRejectsDuplicateVarAcrossPConArgs(t *testing.T) {
	s := &state{}
	pat := &ast.PCon{Name: "Foo", Args: []ast.Pattern{
		&ast.PVar{Name: "a"},
		&ast.PVar{Name: "a"},
	}}
	_, _, err := s.InferPattern(pat, types.Int)
	assert.NotNil(t, err, "a pattern binding the same name twice must be rejected")
}

// Foo (Bar a) a -> a duplicates "a" across nesting depths, not just within
// one immediate argument list — must still be caught.
func TestInferPatternRejectsDuplicateVarAcrossNestingDepths(t *testing.T) {
	s := &state{}
	pat := &ast.PCon{Name: "Foo", Args: []ast.Pattern{
		&ast.PCon{Name: "Bar", Args: []ast.Pattern{&ast.PVar{Name: "a"}}},
		&ast.PVar{Name: "a"},
	}}
	_, _, err := s.InferPattern(pat, types.Int)
	assert.NotNil(t, err)
}

// whole@a duplicates the as-alias against the pattern's own bound variable.
func TestInferPatternRejectsDuplicateAsAndVarName(t *testing.T) {
	s := &state{}
	pat := &ast.PVar{Name: "whole"}
	pat.As = []string{"whole"}
	_, _, err := s.InferPattern(pat, types.Int)
	assert.NotNil(t, err)
}

// Foo a b -> a distinct names at every position must be accepted (no false
// positive from the duplicate check).
func TestInferPatternAcceptsDistinctNames(t *testing.T) {
	decl := &ast.DataConstructor{Name: "Foo", Arity: 2, Fields: []ast.Type{&ast.TyCon{Name: "Int"}, &ast.TyCon{Name: "Int"}}}
	program := &ast.Program{
		TypeCons: map[string]*ast.TypeCon{"T": {Name: "T", Constructors: []*ast.DataConstructor{decl}}},
		DataCons: map[string]*ast.DataConsInfo{"Foo": {Decl: decl, TypeName: "T", Index: 0, NumSibling: 1}},
	}
	s := &state{program: program, gen: &types.VarGen{}, typeConKinds: map[string]kinds.Kind{}, conSchemes: map[string]*types.Scheme{}}
	s.conSchemes["Foo"] = s.schemeFromDataCon(program.DataCons["Foo"])

	pat := &ast.PCon{Name: "Foo", Args: []ast.Pattern{
		&ast.PVar{Name: "a"},
		&ast.PVar{Name: "b"},
	}}
	_, _, err := s.InferPattern(pat, types.Con{Name: "T"})
	assert.Nil(t, err, "distinct names across pattern positions must not be rejected")
}
