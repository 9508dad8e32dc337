// Package inline is the SCC Driver (spec.md §4.1): the fixed-point worklist
// that ties the History Ledger, Alloca Merger, Policy Oracle and
// Dead-Function Reaper together. Ported from Inliner.cpp's
// `inlineCallsImpl`/`LegacyInlinerBase::inlineCalls`
// (_examples/original_source/lib/Transforms/IPO/Inliner.cpp).
package inline

import (
	"fmt"

	"github.com/pterm/pterm"

	"chaiinline/allocamerge"
	"chaiinline/callgraph"
	"chaiinline/clone"
	"chaiinline/config"
	"chaiinline/observe"
	"chaiinline/policy"
	"chaiinline/reaper"
	"chaiinline/stats"
)

// DeadCallDetector is the external collaborator spec §4.1 step (b) needs to
// answer "does cs have no side effects and an unused result": that
// determination depends on attribute data (readonly/readnone) and the use
// index, both of which spec §1 places out of this core's scope ("Alias
// analysis, assumption caches, profile summaries, target library info —
// opaque analyses threaded through"). A Session with no DeadCallDetector
// simply never takes the dead-call shortcut.
type DeadCallDetector interface {
	IsTriviallyDead(cs *callgraph.CallSite) bool
}

// Session is one embedding's inlining run: the module-scoped state that
// persists across every SCC the caller feeds it, split from per-SCC state
// (the History Ledger, which is reset per pass per spec §3 "Lifecycle").
// This mirrors the doInitialization/doFinalization split in Inliner.cpp:
// NewSession performs the "compute import stats" setup doInitialization
// does at module entry, and Finalize performs the dead-function reaping
// doFinalization does at module exit — both exposed as explicit entry
// points here since there is no ambient pass manager to call them for us.
type Session struct {
	Graph    *callgraph.Graph
	Oracle   *policy.Oracle
	Cloner   clone.BodyCloner
	Merger   *allocamerge.Merger
	Reaper   *reaper.Reaper
	Sink     observe.Sink
	Counters *stats.Counters
	Opts     *config.Options
	DeadCall DeadCallDetector

	importCounts map[string]int
}

// NewSession creates a Session ready to process SCCs. opts may be nil, in
// which case config.Default() is used.
func NewSession(graph *callgraph.Graph, oracle *policy.Oracle, cloner clone.BodyCloner, merger *allocamerge.Merger, rpr *reaper.Reaper, sink observe.Sink, counters *stats.Counters, opts *config.Options) *Session {
	if opts == nil {
		opts = config.Default()
	}
	if sink == nil {
		sink = observe.Discard{}
	}

	s := &Session{
		Graph:    graph,
		Oracle:   oracle,
		Cloner:   cloner,
		Merger:   merger,
		Reaper:   rpr,
		Sink:     sink,
		Counters: counters,
		Opts:     opts,
	}
	if opts.ImportStats != config.ImportStatsNone {
		s.importCounts = make(map[string]int)
	}
	return s
}

func (s *Session) trackImport(caller, callee *callgraph.Function) {
	if s.importCounts == nil {
		return
	}
	s.importCounts[callee.Name()]++
}

// Finalize runs the Dead-Function Reaper once across the whole graph (spec
// §4.5, "run once at SCC completion" generalized to "once the caller is
// done feeding SCCs") and, in verbose import-stats mode, dumps per-callee
// inlining counts. Returns the number of functions removed.
func (s *Session) Finalize() int {
	removed := 0
	if s.Reaper != nil {
		removed = s.Reaper.Reap(reaper.ModeNormal)
	}

	if s.Opts.ImportStats == config.ImportStatsVerbose {
		s.dumpImportStats()
	}

	return removed
}

// dumpImportStats prints the per-callee inlining counts gathered over the
// session's lifetime, the verbose-mode detail spec §6's
// "inliner-function-import-stats" option calls for.
func (s *Session) dumpImportStats() {
	pterm.DefaultSection.Println("Imported Function Stats")
	for name, n := range s.importCounts {
		fmt.Printf("  %-40s %d\n", name, n)
	}
}
