// Package clone defines the body-cloning boundary spec.md places out of
// scope: "the mechanical body-cloning primitive that actually substitutes a
// call site with a cloned callee body (referred to as InlineFunction)". The
// driver in package `inline` depends only on the BodyCloner interface below;
// chaiinline does not ship a concrete implementation of the substitution
// mechanics themselves, matching the external-collaborator boundary spec §6
// draws around `InlineFunction`.
package clone

import (
	"github.com/llir/llvm/ir"

	"chaiinline/callgraph"
)

// Info reports what a successful BodyCloner call did, per spec §6's
// post-conditions on InlineFunction: "info.StaticAllocas lists stack slots
// contributed by the inlining; info.InlinedCalls lists newly present call
// sites inside the inlined body."
type Info struct {
	// StaticAllocas lists the stack slots the cloned callee body
	// contributed to the caller, for the Alloca Merger (spec §4.2).
	StaticAllocas []*ir.InstAlloca

	// InlinedCalls lists call sites newly present in the caller as a result
	// of cloning the callee's body, for folding back into the SCC driver's
	// work list (spec §4.1 step f).
	InlinedCalls []*callgraph.CallSite
}

// BodyCloner is the external collaborator spec §6 calls InlineFunction:
// `InlineFunction(call_site, info, aa_results, insert_lifetime) -> bool`.
// Substitutes cs with a clone of its callee's body in place, reporting the
// result via info. Returns false (not an error) when the site cannot be
// physically inlined for IR reasons — spec §7 "Cloner refusal": "recorded
// skip, not retried".
type BodyCloner interface {
	InlineFunction(cs *callgraph.CallSite, info *Info, insertLifetime bool) (bool, error)
}
