package callgraph

import (
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
)

// buildChain constructs a three-function module: caller -> callee -> leaf,
// each a single-block void function. callee is given internal linkage so its
// reference count reflects only the call-graph edge, not the external node.
func buildChain() (mod *ir.Module, caller, callee, leaf *ir.Func) {
	mod = ir.NewModule()

	leaf = mod.NewFunc("leaf", types.Void)
	leaf.Linkage = enum.LinkageInternal
	leafBlock := leaf.NewBlock("entry")
	leafBlock.NewRet(nil)

	callee = mod.NewFunc("callee", types.Void)
	callee.Linkage = enum.LinkageInternal
	calleeBlock := callee.NewBlock("entry")
	calleeBlock.NewCall(leaf)
	calleeBlock.NewRet(nil)

	caller = mod.NewFunc("caller", types.Void)
	caller.Linkage = enum.LinkageInternal
	callerBlock := caller.NewBlock("entry")
	callerBlock.NewCall(callee)
	callerBlock.NewRet(nil)

	return mod, caller, callee, leaf
}

func TestBuildRegistersDirectCallSites(t *testing.T) {
	mod, caller, callee, leaf := buildChain()
	g := Build(mod)

	callerNode := g.Lookup(caller)
	calls := callerNode.Calls()
	if len(calls) != 1 {
		t.Fatalf("caller: got %d call sites, want 1", len(calls))
	}
	if !calls[0].IsDirect() {
		t.Fatalf("caller's call site should be direct")
	}
	if calls[0].Callee != g.Lookup(callee) {
		t.Fatalf("caller's call site should resolve to callee")
	}

	calleeNode := g.Lookup(callee)
	if len(calleeNode.Calls()) != 1 || calleeNode.Calls()[0].Callee != g.Lookup(leaf) {
		t.Fatalf("callee should have exactly one call site targeting leaf")
	}
}

func TestNumReferencesCountsCallUsesOnly(t *testing.T) {
	mod, _, callee, _ := buildChain()
	g := Build(mod)

	calleeNode := g.Lookup(callee)
	if got := calleeNode.NumReferences(); got != 1 {
		t.Fatalf("callee.NumReferences() = %d, want 1 (internal linkage, one call use)", got)
	}
	if calleeNode.CalledFromExternal() {
		t.Fatalf("internal-linkage callee should not be reachable from the external node")
	}
}

func TestCallersOfFindsEveryDirectCaller(t *testing.T) {
	mod := ir.NewModule()

	target := mod.NewFunc("target", types.Void)
	target.Linkage = enum.LinkageInternal
	target.NewBlock("entry").NewRet(nil)

	c1 := mod.NewFunc("c1", types.Void)
	c1.Linkage = enum.LinkageInternal
	b1 := c1.NewBlock("entry")
	b1.NewCall(target)
	b1.NewRet(nil)

	c2 := mod.NewFunc("c2", types.Void)
	c2.Linkage = enum.LinkageInternal
	b2 := c2.NewBlock("entry")
	b2.NewCall(target)
	b2.NewRet(nil)

	g := Build(mod)
	callers := g.CallersOf(g.Lookup(target))
	if len(callers) != 2 {
		t.Fatalf("CallersOf(target) returned %d call sites, want 2", len(callers))
	}
}

func TestRemoveCallEdgeForDropsUseAndEdge(t *testing.T) {
	mod, caller, callee, _ := buildChain()
	g := Build(mod)

	callerNode := g.Lookup(caller)
	calleeNode := g.Lookup(callee)
	cs := callerNode.Calls()[0]

	g.RemoveCallEdgeFor(cs)

	if len(callerNode.Calls()) != 0 {
		t.Fatalf("caller should have no outgoing call sites after RemoveCallEdgeFor")
	}
	// callee's only use was the erased call; leaf's use from within callee's
	// own body is unaffected, but callee's own reference count should now be
	// zero since its internal linkage grants no external edge.
	if got := calleeNode.NumReferences(); got != 0 {
		t.Fatalf("callee.NumReferences() = %d, want 0 after its sole call site was removed", got)
	}
}

func TestRemoveFunctionFromModuleDropsNodeAndIR(t *testing.T) {
	mod, _, _, leaf := buildChain()
	g := Build(mod)

	leafNode := g.Lookup(leaf)
	g.RemoveFunctionFromModule(leafNode)

	if g.Lookup(leaf) != nil {
		t.Fatalf("leaf should no longer be present in the graph")
	}
	for _, fn := range mod.Funcs {
		if fn == leaf {
			t.Fatalf("leaf should no longer be present in the module")
		}
	}
}
