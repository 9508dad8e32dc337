package policy

import (
	"chaiinline/callgraph"
	"chaiinline/observe"
	"chaiinline/stats"
)

// Tuning constants carried over from InlineConstants in Inliner.cpp — these
// are not re-derived, since the cost model that would justify different
// values is itself out of scope (spec.md "Non-goals": "guaranteeing a
// particular numerical inlining threshold").
const (
	// CallPenalty is the notional cost of the call instruction itself, which
	// inlining would delete; used to compute CandidateCost.
	CallPenalty = 25
	// LastCallToStaticBonus discounts the secondary cost estimate when every
	// outer user of the caller would itself be inlined away, since the cost
	// model applies this bonus to only one of those outer sites.
	LastCallToStaticBonus = 15000
)

// Oracle is the Policy Oracle: it decides yes/no for a call site given a
// CostFunc and reports its reasoning to an observe.Sink.
type Oracle struct {
	graph    *callgraph.Graph
	cost     CostFunc
	sink     observe.Sink
	counters *stats.Counters
}

// New creates an Oracle bound to graph (for the deferral check's "caller's
// callers" lookup), a cost model, an observation sink, and a counters
// accumulator.
func New(graph *callgraph.Graph, cost CostFunc, sink observe.Sink, counters *stats.Counters) *Oracle {
	return &Oracle{graph: graph, cost: cost, sink: sink, counters: counters}
}

// ShouldInline decides whether cs should be inlined now, reproducing
// Inliner.cpp's shouldInline exactly, including the deferral check's
// non-local caller-of-caller scan.
func (o *Oracle) ShouldInline(cs *callgraph.CallSite) bool {
	ic := o.cost.GetInlineCost(cs)
	calleeName, callerName := calleeCallerNames(cs)

	switch ic.Kind {
	case AlwaysKind:
		o.sink.Observe(observe.Event{Kind: observe.AlwaysInline, Caller: callerName, Callee: calleeName})
		return true
	case NeverKind:
		o.sink.Observe(observe.Event{Kind: observe.NeverInline, Caller: callerName, Callee: calleeName})
		return false
	}

	// CostKind from here on.
	if ic.overThreshold() {
		o.sink.Observe(observe.Event{
			Kind: observe.TooCostly, Caller: callerName, Callee: calleeName,
			Cost: ic.Cost, Threshold: ic.Threshold(),
		})
		return false
	}

	if defer_, totalSecondaryCost := o.shouldBeDeferred(cs.Caller, ic); defer_ {
		o.sink.Observe(observe.Event{
			Kind: observe.IncreaseCostInOtherContexts, Caller: callerName, Callee: calleeName,
			Cost: ic.Cost, Threshold: totalSecondaryCost,
		})
		return false
	}

	return true
}

// shouldBeDeferred reports whether inlining cs's callee into caller would
// prevent a more valuable inlining of caller itself into caller's own
// callers (spec §4.3 "Deferral check"), mirroring Inliner.cpp's
// shouldBeDeferred line for line, including the seeding nuance documented in
// SPEC_FULL.md: callerWillBeRemoved starts at caller.HasLocalLinkage(), not
// unconditionally true.
func (o *Oracle) shouldBeDeferred(caller *callgraph.Function, ic Decision) (bool, int) {
	if !caller.Privileged() {
		return false, 0
	}

	candidateCost := ic.Cost - (CallPenalty + 1)
	callerWillBeRemoved := caller.HasLocalLinkage()
	inliningPreventsSomeOuterInline := false
	totalSecondaryCost := 0

	outerCalls := o.graph.CallersOf(caller)
	nonCallReferences := caller.NumReferences() - len(outerCalls)
	if nonCallReferences > 0 {
		// Some reference to caller isn't itself a call to it (spec: "if u is
		// not itself a direct call to the caller"); such references will
		// prevent caller from being removed regardless of what we decide here.
		callerWillBeRemoved = false
	}

	for _, outer := range outerCalls {
		ic2 := o.cost.GetInlineCost(outer)
		if o.counters != nil {
			o.counters.NumCallerCallersAnalyzed.Add(1)
		}

		if ic2.overThreshold() {
			callerWillBeRemoved = false
			continue
		}
		if ic2.Kind == AlwaysKind {
			continue
		}
		if ic2.Delta <= candidateCost {
			inliningPreventsSomeOuterInline = true
			totalSecondaryCost += ic2.Cost
		}
	}

	if callerWillBeRemoved && caller.NumReferences() > 1 {
		totalSecondaryCost -= LastCallToStaticBonus
	}

	return inliningPreventsSomeOuterInline && totalSecondaryCost < ic.Cost, totalSecondaryCost
}

func calleeCallerNames(cs *callgraph.CallSite) (callee, caller string) {
	caller = ""
	if cs.Caller != nil {
		caller = cs.Caller.Name()
	}
	if cs.Callee != nil {
		callee = cs.Callee.Name()
	}
	return
}
