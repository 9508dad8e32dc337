// Package policy implements the Policy Oracle (spec.md §4.3): a pure
// decision function combining an external cost estimate with a non-local
// deferral check that examines the caller's callers. Ported from
// Inliner.cpp's `shouldInline`/`shouldBeDeferred`
// (_examples/original_source/lib/Transforms/IPO/Inliner.cpp).
package policy

import "chaiinline/callgraph"

// Kind tags a cost-model verdict (spec §9 "represent the return as a tagged
// sum; avoid conflating 'never' with 'very high cost'").
type Kind int

const (
	// AlwaysKind means the cost model unconditionally approved the site.
	AlwaysKind Kind = iota
	// NeverKind means the cost model unconditionally rejected the site.
	NeverKind
	// CostKind carries an estimated cost and the signed distance from the
	// inlining threshold (negative means over budget).
	CostKind
)

// Decision is the external cost model's verdict for one call site: one of
// Always, Never, or Cost(c, delta) (spec §4.3 "Inputs").
type Decision struct {
	Kind  Kind
	Cost  int
	Delta int
}

// Always is the verdict meaning "inline unconditionally".
func Always() Decision { return Decision{Kind: AlwaysKind} }

// Never is the verdict meaning "never inline".
func Never() Decision { return Decision{Kind: NeverKind} }

// Cost is the verdict carrying an estimated cost c and threshold distance
// delta (negative delta means over budget).
func Cost(c, delta int) Decision { return Decision{Kind: CostKind, Cost: c, Delta: delta} }

// Threshold returns the effective threshold implied by a Cost verdict
// (c + delta), used when reporting a TooCostly observation.
func (d Decision) Threshold() int { return d.Cost + d.Delta }

// overThreshold reports whether d represents "will not be inlined": either
// an explicit Never, or a Cost verdict whose delta is negative. This mirrors
// the falsy `InlineCost::operator bool()` test in Inliner.cpp (`!IC`/`!IC2`).
func (d Decision) overThreshold() bool {
	return d.Kind == NeverKind || (d.Kind == CostKind && d.Delta < 0)
}

// CostFunc is the external cost-model capability (spec §6/§9's
// `GetInlineCost`): for a call site, return one of Always, Never, or
// Cost(c, delta). Modeled as a capability interface rather than a
// hard-wired function so tests can supply a table-driven fake.
type CostFunc interface {
	GetInlineCost(cs *callgraph.CallSite) Decision
}

// CostFuncOf adapts a plain function to CostFunc.
type CostFuncOf func(cs *callgraph.CallSite) Decision

func (f CostFuncOf) GetInlineCost(cs *callgraph.CallSite) Decision { return f(cs) }
