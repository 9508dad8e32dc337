// Package callgraph models the data from spec.md §3 that the SCC driver
// operates on: functions, call sites, stack slots and the call graph that
// ties them together. It is built directly on github.com/llir/llvm's IR
// representation rather than re-inventing a parallel function/instruction
// model.
package callgraph

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"

	"chaiinline/common"
)

// Function is a call-graph node wrapping a single *ir.Func. Only functions
// with a body (Blocks != nil) are ever inlining candidates; a function
// without a body is a declaration (spec §3 "definition present flag").
type Function struct {
	IR *ir.Func

	// AlwaysInline mirrors the always-inline function attribute used by the
	// reaper's always-inline-only mode (SPEC_FULL.md §4); chaiinline does not
	// model a general attribute bag, just the one flag the reaper needs.
	AlwaysInline bool

	// calledFromExternal tracks whether the distinguished external node has
	// an edge to this function, i.e. whether the function may be entered
	// from outside the module (spec §3 "external node").
	calledFromExternal bool

	// calls lists this function's outgoing direct and indirect call sites.
	calls []*CallSite

	// g is the owning graph, whose use index (not a field on Function itself)
	// is the actual live bookkeeping for NumReferences; llir/llvm keeps no
	// built-in use-list the way LLVM's C++ Value class does, so the count has
	// to be asked of the graph that built it rather than cached locally.
	g *Graph
}

// ID returns a stable numeric identifier for the function, derived from its
// linkage name the way chai derives module/package IDs from a path
// (common.GenerateIDFromName).
func (f *Function) ID() uint {
	return common.GenerateIDFromName(f.IR.GlobalName)
}

// Name returns the function's linkage name.
func (f *Function) Name() string {
	return f.IR.GlobalName
}

// IsDeclaration reports whether the function has no body and can therefore
// never be inlined into (spec §3 "definition present flag").
func (f *Function) IsDeclaration() bool {
	return f.IR.Blocks == nil
}

// HasLocalLinkage reports whether the function has internal/private linkage,
// i.e. it is only visible within this module (spec §3, §4.3, §4.5).
func (f *Function) HasLocalLinkage() bool {
	switch f.IR.Linkage {
	case enum.LinkageInternal, enum.LinkagePrivate:
		return true
	default:
		return false
	}
}

// HasLinkOnceODRLinkage reports whether the function may be duplicated
// verbatim across translation units with the linker keeping one copy (spec
// §3, GLOSSARY "Link-once-ODR").
func (f *Function) HasLinkOnceODRLinkage() bool {
	return f.IR.Linkage == enum.LinkageLinkOnceODR
}

// Privileged reports whether the function's linkage is one of the two
// classes the Policy Oracle's deferral check privileges (spec §3: "only
// local and link-once-ODR are privileged by policy").
func (f *Function) Privileged() bool {
	return f.HasLocalLinkage() || f.HasLinkOnceODRLinkage()
}

// NumReferences returns the call graph node's reference count (spec §6
// "getNumReferences() -> int"): the number of operand slots, anywhere in the
// module, that still name this function, including the external-entry edge.
func (f *Function) NumReferences() int {
	n := f.g.UseCount(f.IR)
	if f.calledFromExternal {
		n++
	}
	return n
}

// CalledFromExternal reports whether the external node has a call edge to
// this function (spec §3's distinguished "external" node).
func (f *Function) CalledFromExternal() bool {
	return f.calledFromExternal
}

// Calls returns the function's outgoing call sites.
func (f *Function) Calls() []*CallSite {
	return f.calls
}

// HasComdat reports whether the function belongs to a COMDAT group (spec §3
// "COMDAT group membership (optional)").
func (f *Function) HasComdat() bool {
	return f.IR.Comdat != nil
}

// ComdatName returns the function's COMDAT group name, or "" if it has none.
func (f *Function) ComdatName() string {
	if f.IR.Comdat == nil {
		return ""
	}
	return f.IR.Comdat.Name
}
