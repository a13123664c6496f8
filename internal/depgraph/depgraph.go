// Package depgraph partitions a set of mutually-dependent names into
// strongly-connected groups, topologically ordered so that each group only
// references names in earlier groups or outside the set (§4.1). The
// algorithm is a direct port of the path-based stack search used by the
// upstream implementation this specification was distilled from
// (original_source/src/types/types.cpp: dependency_analysis), rather than a
// textbook Tarjan index/lowlink pass — the two are equivalent in the
// groups/ordering they produce, but this shape makes the "merge frames
// back down to the first occurrence" step (needed for property 7, stability
// under re-analysis) easy to follow against the source it was grounded on.
package depgraph

// Analyze partitions names into dependency-ordered groups. deps maps each
// name in names to the set of other names it references; references to
// names outside the `names` set are silently ignored (treated as external —
// callers resolve their meaning, per §4.1's failure policy of "none").
//
// The returned groups are ordered so that every group only depends on
// earlier groups or names outside the input set. Order within a group is
// unspecified by the algorithm but is produced deterministically here by
// processing `names` in the order given.
func Analyze(names []string, deps map[string]map[string]bool) [][]string {
	var groups [][]string

	// pending holds the names not yet assigned to a group, in the order
	// they will be popped (back of the slice = next to process).
	pending := make([]string, len(names))
	copy(pending, names)

	// stack holds open groups being expanded; each frame is itself a set of
	// names already known to be mutually dependent.
	var stack [][]string

	popPending := func(name string) bool {
		for i, n := range pending {
			if n == name {
				pending = append(pending[:i], pending[i+1:]...)
				return true
			}
		}
		return false
	}

	for len(pending) > 0 {
		last := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		stack = append(stack, []string{last})

		for len(stack) > 0 {
			current := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			dependsOn := map[string]bool{}
			for _, name := range current {
				for dep := range deps[name] {
					dependsOn[dep] = true
				}
			}

			// Deterministic order (§5): a bare `range` over dependsOn would
			// let Go's randomized map iteration reorder sibling groups with
			// no relation to each other across runs on identical input,
			// breaking property 7 (stability under re-analysis).
			sortedDeps := make([]string, 0, len(dependsOn))
			for dep := range dependsOn {
				sortedDeps = append(sortedDeps, dep)
			}
			sortStrings(sortedDeps)

			resolved := true
			for _, dep := range sortedDeps {
				if popPending(dep) {
					// dep is still unprocessed: push current back, then
					// push a new singleton frame for dep, and resume
					// expanding dep first.
					stack = append(stack, current, []string{dep})
					resolved = false
					break
				}
				if idx := findFrame(stack, dep); idx >= 0 {
					// dep is already being explored somewhere on the
					// stack: everything from idx upward (plus current) is
					// mutually recursive — merge it all into one frame.
					merged := append([]string{}, current...)
					for i := len(stack) - 1; i >= idx; i-- {
						merged = append(merged, stack[i]...)
						stack = stack[:i]
					}
					stack = append(stack, merged)
					resolved = false
					break
				}
			}

			if resolved {
				groups = append(groups, current)
			}
		}
	}

	return groups
}

func findFrame(stack [][]string, name string) int {
	for i := len(stack) - 1; i >= 0; i-- {
		for _, n := range stack[i] {
			if n == name {
				return i
			}
		}
	}
	return -1
}

func sortStrings(ss []string) {
	for i := 1; i < len(ss); i++ {
		for j := i; j > 0 && ss[j-1] > ss[j]; j-- {
			ss[j-1], ss[j] = ss[j], ss[j-1]
		}
	}
}
