package reaper

import "chaiinline/callgraph"

// DefaultComdatFilter returns a ComdatFilter that retains a candidate only
// if every function in g sharing its COMDAT group is itself trivially dead,
// matching spec §4.5's "retain only those whose groups are entirely dead".
// The real linker-level liveness algorithm this stands in for (spec §4.5
// "COMDAT filter (external utility)") may have more to say about a group
// than a single module's call graph does (e.g. cross-module references);
// this default only ever sees what g knows about, which is sufficient for a
// single-module caller and for tests, but a caller embedding chaiinline
// alongside a real linker view should supply its own ComdatFilter instead.
func DefaultComdatFilter(g *callgraph.Graph) ComdatFilter {
	return func(candidates []*callgraph.Function) []*callgraph.Function {
		groups := make(map[string][]*callgraph.Function)
		for _, fn := range g.Functions() {
			if fn.HasComdat() {
				name := fn.ComdatName()
				groups[name] = append(groups[name], fn)
			}
		}

		var out []*callgraph.Function
		for _, c := range candidates {
			entirelyDead := true
			for _, member := range groups[c.ComdatName()] {
				if member.NumReferences() != 0 {
					entirelyDead = false
					break
				}
			}
			if entirelyDead {
				out = append(out, c)
			}
		}
		return out
	}
}
