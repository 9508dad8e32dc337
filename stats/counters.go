// Package stats models the process-wide inlining counters spec.md §6/§9
// describes (LLVM's STATISTIC macros) as a small struct of atomically
// incremented integers rather than package-level globals, since chaiinline
// is a library entry point that may run several independent passes
// concurrently rather than a single pass-manager singleton.
package stats

import "sync/atomic"

// Counters accumulates the five counters spec §6 "Egress" names. The zero
// value is ready to use.
type Counters struct {
	NumInlined               atomic.Int64
	NumCallsDeleted          atomic.Int64
	NumDeleted               atomic.Int64
	NumMergedAllocas         atomic.Int64
	NumCallerCallersAnalyzed atomic.Int64
}

// Snapshot is a plain-value copy of Counters, suitable for printing or
// comparing in tests without racing against further atomic updates.
type Snapshot struct {
	NumInlined               int64
	NumCallsDeleted          int64
	NumDeleted               int64
	NumMergedAllocas         int64
	NumCallerCallersAnalyzed int64
}

// Snapshot reads every counter once and returns their current values.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		NumInlined:               c.NumInlined.Load(),
		NumCallsDeleted:          c.NumCallsDeleted.Load(),
		NumDeleted:               c.NumDeleted.Load(),
		NumMergedAllocas:         c.NumMergedAllocas.Load(),
		NumCallerCallersAnalyzed: c.NumCallerCallersAnalyzed.Load(),
	}
}
