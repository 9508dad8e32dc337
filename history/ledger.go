// Package history implements the History Ledger (spec.md §4.4): the
// append-only record of (callee, parent-index) pairs used to forbid
// inlining a callee into a call chain that already contains it (the
// recursion guard, spec §4.1 step d).
package history

import "chaiinline/callgraph"

// None is the parent/history index meaning "an original call site enumerated
// directly from the SCC" (spec §3 "Pending call site": history_index = -1).
const None = -1

// entry is one (callee, parent-index) pair (spec §3 "Inline history entry").
type entry struct {
	callee *callgraph.Function
	parent int
}

// Ledger is the per-SCC-pass append-only vector of entries. Its zero value
// is ready to use. A Ledger's lifetime is exactly one SCC pass (spec §3
// "Lifecycle": "discarded when the SCC completes").
type Ledger struct {
	entries []entry
}

// Record appends a new entry noting that callee was inlined along the chain
// rooted at parent, returning the new entry's index for use as the history
// index on any call sites the inlining revealed.
func (l *Ledger) Record(callee *callgraph.Function, parent int) int {
	l.entries = append(l.entries, entry{callee: callee, parent: parent})
	return len(l.entries) - 1
}

// Includes walks the chain starting at id (id -> parent -> parent -> ... ->
// None), returning true iff fn appears anywhere along it (spec §4.4
// `InlineHistoryIncludes`). The chain length is bounded by the number of
// successful inlinings recorded so far in this pass (spec I1), so this walk
// always terminates.
func (l *Ledger) Includes(fn *callgraph.Function, id int) bool {
	for id != None {
		e := l.entries[id]
		if e.callee == fn {
			return true
		}
		id = e.parent
	}
	return false
}

// Len reports how many entries have been recorded so far, equivalently the
// index the next Record call will return.
func (l *Ledger) Len() int {
	return len(l.entries)
}
