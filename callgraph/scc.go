package callgraph

// SCC is a maximal strongly connected subgraph of the call graph (spec §3).
// It is the unit the SCC Driver (package `inline`) processes one at a time.
type SCC struct {
	Nodes []*Function
}

// Contains reports whether fn is a member of the SCC.
func (s *SCC) Contains(fn *Function) bool {
	for _, n := range s.Nodes {
		if n == fn {
			return true
		}
	}
	return false
}

// Singular reports whether the SCC contains exactly one node with no
// self-edge (spec §3). This governs whether the driver's worklist may use
// swap-pop removal (spec §4.1 step h, §5, §9).
func (s *SCC) Singular() bool {
	if len(s.Nodes) != 1 {
		return false
	}
	n := s.Nodes[0]
	for _, cs := range n.calls {
		if cs.Callee == n {
			return false
		}
	}
	return true
}

// ComputeSCCs partitions every function in g into strongly connected
// components via Tarjan's algorithm, in reverse topological order (callees'
// SCCs first) — the traversal order LazyCallGraph exposes to the pass
// manager (_examples/original_source/unittests/Analysis/LazyCallGraphTest.cpp).
// This is a convenience for callers that don't already have an outer
// pass-manager supplying SCCs; spec.md places SCC iteration order itself out
// of this core's scope, so the SCC Driver in package `inline` never calls
// this — it only ever consumes an *SCC someone else produced.
func ComputeSCCs(g *Graph) []*SCC {
	t := &tarjan{
		index:   make(map[*Function]int),
		lowlink: make(map[*Function]int),
		onStack: make(map[*Function]bool),
	}
	for _, fn := range g.Functions() {
		if _, seen := t.index[fn]; !seen {
			t.strongconnect(fn)
		}
	}
	return t.sccs
}

type tarjan struct {
	counter int
	index   map[*Function]int
	lowlink map[*Function]int
	onStack map[*Function]bool
	stack   []*Function
	sccs    []*SCC
}

func (t *tarjan) strongconnect(v *Function) {
	t.index[v] = t.counter
	t.lowlink[v] = t.counter
	t.counter++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, cs := range v.calls {
		w := cs.Callee
		if w == nil {
			continue // indirect or external call: no intra-graph edge to follow
		}
		if _, seen := t.index[w]; !seen {
			t.strongconnect(w)
			if t.lowlink[w] < t.lowlink[v] {
				t.lowlink[v] = t.lowlink[w]
			}
		} else if t.onStack[w] {
			if t.index[w] < t.lowlink[v] {
				t.lowlink[v] = t.index[w]
			}
		}
	}

	if t.lowlink[v] == t.index[v] {
		var scc SCC
		for {
			n := len(t.stack) - 1
			w := t.stack[n]
			t.stack = t.stack[:n]
			t.onStack[w] = false
			scc.Nodes = append(scc.Nodes, w)
			if w == v {
				break
			}
		}
		t.sccs = append(t.sccs, &scc)
	}
}
