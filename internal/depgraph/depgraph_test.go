package depgraph

import "testing"

func deps(pairs ...[2]string) map[string]map[string]bool {
	m := map[string]map[string]bool{}
	for _, p := range pairs {
		if m[p[0]] == nil {
			m[p[0]] = map[string]bool{}
		}
		m[p[0]][p[1]] = true
	}
	return m
}

func containsGroup(groups [][]string, names ...string) bool {
	for _, g := range groups {
		if len(g) != len(names) {
			continue
		}
		set := map[string]bool{}
		for _, n := range g {
			set[n] = true
		}
		ok := true
		for _, n := range names {
			if !set[n] {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

func TestAnalyzeNoDependencies(t *testing.T) {
	names := []string{"a", "b", "c"}
	d := map[string]map[string]bool{"a": {}, "b": {}, "c": {}}
	groups := Analyze(names, d)
	if len(groups) != 3 {
		t.Fatalf("expected 3 singleton groups, got %d: %v", len(groups), groups)
	}
}

func TestAnalyzeLinearChain(t *testing.T) {
	// a depends on b, b depends on c: must order c, b, a.
	names := []string{"a", "b", "c"}
	d := deps([2]string{"a", "b"}, [2]string{"b", "c"})
	for _, n := range names {
		if d[n] == nil {
			d[n] = map[string]bool{}
		}
	}
	groups := Analyze(names, d)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d: %v", len(groups), groups)
	}
	index := map[string]int{}
	for i, g := range groups {
		index[g[0]] = i
	}
	if !(index["c"] < index["b"] && index["b"] < index["a"]) {
		t.Fatalf("expected order c < b < a, got %v", groups)
	}
}

func TestAnalyzeMutualRecursion(t *testing.T) {
	// a and b call each other: one SCC group of size 2.
	names := []string{"a", "b"}
	d := deps([2]string{"a", "b"}, [2]string{"b", "a"})
	groups := Analyze(names, d)
	if len(groups) != 1 {
		t.Fatalf("expected 1 merged group, got %d: %v", len(groups), groups)
	}
	if !containsGroup(groups, "a", "b") {
		t.Fatalf("expected group {a,b}, got %v", groups)
	}
}

func TestAnalyzeExternalReferencesIgnored(t *testing.T) {
	names := []string{"a"}
	d := map[string]map[string]bool{"a": {"undefined_external": true}}
	groups := Analyze(names, d)
	if len(groups) != 1 || len(groups[0]) != 1 || groups[0][0] != "a" {
		t.Fatalf("expected single group {a}, got %v", groups)
	}
}

func TestAnalyzeSelfRecursion(t *testing.T) {
	names := []string{"fact"}
	d := map[string]map[string]bool{"fact": {"fact": true}}
	groups := Analyze(names, d)
	if len(groups) != 1 || len(groups[0]) != 1 {
		t.Fatalf("expected one group containing fact, got %v", groups)
	}
}

func TestAnalyzeStableUnderReanalysis(t *testing.T) {
	// Property 7: re-running on an input already ordered/grouped by a prior
	// run returns the same grouping.
	names := []string{"f", "g", "h"}
	d := deps([2]string{"f", "g"}, [2]string{"g", "h"}, [2]string{"h", "f"})
	groups := Analyze(names, d)
	if len(groups) != 1 {
		t.Fatalf("expected single 3-cycle group, got %v", groups)
	}
	// Re-analyze using the already-grouped order.
	again := Analyze(groups[0], d)
	if len(again) != 1 || len(again[0]) != 3 {
		t.Fatalf("expected stable regrouping, got %v", again)
	}
}

func TestAnalyzeDiamond(t *testing.T) {
	// a -> b, a -> c, b -> d, c -> d: no cycles, d must come first, a last.
	names := []string{"a", "b", "c", "d"}
	d := deps([2]string{"a", "b"}, [2]string{"a", "c"}, [2]string{"b", "d"}, [2]string{"c", "d"})
	d["d"] = map[string]bool{}
	groups := Analyze(names, d)
	if len(groups) != 4 {
		t.Fatalf("expected 4 singleton groups for a DAG, got %d: %v", len(groups), groups)
	}
	index := map[string]int{}
	for i, g := range groups {
		index[g[0]] = i
	}
	if index["d"] >= index["b"] || index["d"] >= index["c"] || index["b"] >= index["a"] || index["c"] >= index["a"] {
		t.Fatalf("expected d before b,c before a, got %v", groups)
	}
}
