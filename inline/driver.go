package inline

import (
	"chaiinline/callgraph"
	"chaiinline/clone"
	"chaiinline/history"
	"chaiinline/internal/assert"
	"chaiinline/observe"
)

// pendingCallSite is spec §3's "Pending call site": `(call_site,
// history_index)`, history_index = history.None for sites enumerated
// directly from the SCC.
type pendingCallSite struct {
	cs      *callgraph.CallSite
	history int
}

// RunSCC runs the fixed-point worklist over scc, mutating the call graph in
// place, and returns whether any change was made (spec §4.1 "Entry
// contract"). It propagates a non-nil error only when the body-cloner
// itself fails fatally; every other rejection (ineligible site, recursion
// guard, policy rejection, cloner refusal) is a silent or observed skip,
// never an error (spec §7).
func (s *Session) RunSCC(scc *callgraph.SCC) (bool, error) {
	members := make(map[*callgraph.Function]bool, len(scc.Nodes))
	for _, fn := range scc.Nodes {
		if !fn.IsDeclaration() {
			members[fn] = true
		}
	}

	w := s.enumerate(members)
	if len(w) == 0 {
		return false, nil
	}

	reorderIntraSCCToTail(w, members)

	var ledger history.Ledger
	changed := false

	for {
		localChange := false

		for i := 0; i < len(w); i++ {
			entry := w[i]
			cs := entry.cs
			caller := cs.Caller
			callee := cs.Callee
			assert.Invariant(caller != nil, "pending call site %s has no caller", cs.Instr.Ident())

			if s.DeadCall != nil && s.DeadCall.IsTriviallyDead(cs) {
				s.Graph.RemoveCallEdgeFor(cs)
				if s.Counters != nil {
					s.Counters.NumCallsDeleted.Add(1)
				}
			} else {
				if !cs.IsDirect() || callee == nil || callee.IsDeclaration() {
					continue // indirect, or a declaration: not eligible (spec I2)
				}

				if entry.history != history.None && ledger.Includes(callee, entry.history) {
					continue // recursion guard (spec I1)
				}

				if !s.Oracle.ShouldInline(cs) {
					s.Sink.Observe(observe.Event{Kind: observe.NotInlined, Caller: caller.Name(), Callee: callee.Name()})
					continue
				}

				info := &clone.Info{}
				ok, err := s.Cloner.InlineFunction(cs, info, s.Opts.InsertLifetime)
				if err != nil {
					return changed, err
				}
				if !ok {
					s.Sink.Observe(observe.Event{Kind: observe.NotInlined, Caller: caller.Name(), Callee: callee.Name()})
					continue
				}

				callgraph.MergeAttributesForInlining(caller, callee)

				if len(info.StaticAllocas) > 0 {
					// Static allocas contributed by a clone always land in the
					// caller's entry block, mirroring InlineFunction's own
					// alloca-hoisting behavior; the merger needs this back-link
					// since github.com/llir/llvm instructions carry none.
					entryBlock := caller.IR.Blocks[0]
					for _, a := range info.StaticAllocas {
						s.Merger.Register(a, entryBlock, caller.IR)
					}
					if !s.Opts.DisableInlinedAllocaMerging && entry.history == history.None {
						s.Merger.Merge(caller, info.StaticAllocas, entry.history, s.Counters)
					}
				}

				if len(info.InlinedCalls) > 0 {
					newHistory := ledger.Record(callee, entry.history)
					for _, newCS := range info.InlinedCalls {
						w = append(w, pendingCallSite{cs: newCS, history: newHistory})
					}
				}

				if s.Counters != nil {
					s.Counters.NumInlined.Add(1)
				}
				s.trackImport(caller, callee)
				s.Sink.Observe(observe.Event{Kind: observe.Inlined, Caller: caller.Name(), Callee: callee.Name()})
			}

			// Cleanup callee if dead (spec I4 / step g): local linkage, not an
			// SCC member, no remaining uses anywhere, zero call-graph references.
			// scc.Contains is used here rather than the declaration-filtered
			// members map, since I4's "not in the current SCC" means the SCC's
			// full node set, not just its non-declaration members.
			if callee != nil && callee.HasLocalLinkage() && !scc.Contains(callee) && callee.NumReferences() == 0 {
				s.Graph.RemoveAllCalledFunctions(callee)
				s.Graph.RemoveFunctionFromModule(callee)
				assert.Invariant(s.Graph.Lookup(callee.IR) == nil, "callee %s still present in graph after removal", callee.Name())
				if s.Counters != nil {
					s.Counters.NumDeleted.Add(1)
				}
			}

			// Remove this entry from the work list (step h). Swap-pop is only
			// safe for a singular SCC; otherwise it could move an intra-SCC site
			// ahead of the FirstCallInSCC barrier established above.
			if scc.Singular() {
				w[i] = w[len(w)-1]
				w = w[:len(w)-1]
			} else {
				w = append(w[:i], w[i+1:]...)
			}
			i--

			changed = true
			localChange = true
		}

		if !localChange {
			break
		}
	}

	return changed, nil
}

// enumerate walks every instruction of every function in members, building
// the initial work list (spec §4.1 step 2).
func (s *Session) enumerate(members map[*callgraph.Function]bool) []pendingCallSite {
	var w []pendingCallSite
	for fn := range members {
		for _, cs := range fn.Calls() {
			if cs.IsDirect() && cs.Callee != nil {
				if callgraph.IsIntrinsic(cs.Callee.Name()) {
					continue
				}
				if cs.Callee.IsDeclaration() {
					s.Sink.Observe(observe.Event{Kind: observe.NoDefinition, Caller: fn.Name(), Callee: cs.Callee.Name()})
					continue
				}
			}
			w = append(w, pendingCallSite{cs: cs, history: history.None})
		}
	}
	return w
}

// reorderIntraSCCToTail partitions w in place so that call sites whose
// statically-known callee is an SCC member end up after every other call
// site (spec §4.1 step 3), via the single mutating-index swap-scan
// Inliner.cpp uses: any call site found to target a member is swapped with
// the element just before the boundary and the boundary is decremented.
func reorderIntraSCCToTail(w []pendingCallSite, members map[*callgraph.Function]bool) {
	firstCallInSCC := len(w)
	for i := 0; i < firstCallInSCC; i++ {
		if w[i].cs.IsDirect() && w[i].cs.Callee != nil && members[w[i].cs.Callee] {
			firstCallInSCC--
			w[i], w[firstCallInSCC] = w[firstCallInSCC], w[i]
			i--
		}
	}
}
