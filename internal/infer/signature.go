package infer

import "github.com/htlc-project/htlc/internal/types"

// MatchesSignature reports whether inferred is at least as general as
// declared — i.e. every instance of declared is an instance of inferred
// (§8, s6: a declared signature more general than the principal type is
// rejected). Declared's quantified variables are instantiated with rigid
// skolem constants rather than fresh unification variables: unification
// then only succeeds if every skolem can be matched exactly, which is
// precisely the condition for declared not being strictly more general
// than inferred.
func MatchesSignature(declared, inferred *types.Scheme, gen *types.VarGen) bool {
	skolems := make(map[string]types.Type, len(declared.Quantified))
	for _, q := range declared.Quantified {
		skolems[q] = types.Con{Name: "$rigid$" + q}
	}
	declaredType := substGen(declared.Type, skolems)
	inferredType := types.Instantiate(inferred, gen)
	_, err := types.Unify(declaredType, inferredType)
	return err == nil
}

func substGen(t types.Type, mapping map[string]types.Type) types.Type {
	switch t := t.(type) {
	case types.Gen:
		if repl, ok := mapping[t.Name]; ok {
			return repl
		}
		return t
	case types.App:
		return types.App{Left: substGen(t.Left, mapping), Right: substGen(t.Right, mapping)}
	default:
		return t
	}
}
