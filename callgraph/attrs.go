package callgraph

// MergeAttributesForInlining approximates LLVM's
// `AttributeFuncs::mergeAttributesForInlining`: a narrow, explicitly-scoped
// merge of the handful of function-level attributes chaiinline models,
// applied to caller on a successful inline of callee (spec §4.1 step f,
// "Merge attributes from callee into caller (external contract)").
// chaiinline has no general attribute bag, so this only ORs the
// AlwaysInline flag the reaper's always-inline-only mode depends on.
func MergeAttributesForInlining(caller, callee *Function) {
	if callee.AlwaysInline {
		caller.AlwaysInline = true
	}
}
