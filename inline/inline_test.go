package inline

import (
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"

	"chaiinline/allocamerge"
	"chaiinline/callgraph"
	"chaiinline/clone"
	"chaiinline/observe"
	"chaiinline/policy"
	"chaiinline/reaper"
	"chaiinline/stats"
)

// fakeCloner is a real, if minimal, clone.BodyCloner: it copies a single-
// block callee's non-terminator instructions into the caller's block at the
// call site's block, wraps any newly inserted call as a callgraph.CallSite
// via Graph.NewDirectCallSite/AddCallSites (exercising the bookkeeping a
// production cloner would perform), and retires the original call edge.
// Unlike cmd/chaiinline's unavailableCloner it actually substitutes, so the
// fixed-point loop in RunSCC gets real coverage.
type fakeCloner struct {
	graph *callgraph.Graph
}

func (f *fakeCloner) InlineFunction(cs *callgraph.CallSite, info *clone.Info, insertLifetime bool) (bool, error) {
	callee := cs.Callee
	if callee == nil {
		return false, nil
	}
	calleeFn := callee.IR
	if len(calleeFn.Blocks) != 1 {
		return false, nil // fake only supports single-block bodies
	}

	caller := cs.Caller
	callerBlock := cs.Instr.Block()
	entryBlock := calleeFn.Blocks[0]

	var newAllocas []*ir.InstAlloca
	var newCalls []*callgraph.CallSite

	for _, inst := range entryBlock.Insts {
		switch v := inst.(type) {
		case *ir.InstAlloca:
			ac := callerBlock.NewAlloca(v.ElemType)
			ac.Align = v.Align
			newAllocas = append(newAllocas, ac)
		case *ir.InstCall:
			if fn, ok := v.Callee.(*ir.Func); ok {
				newCall := callerBlock.NewCall(fn)
				newCalls = append(newCalls, f.graph.NewDirectCallSite(caller, newCall, callerBlock))
			}
		}
	}

	f.graph.AddCallSites(caller, newCalls)
	f.graph.RemoveCallEdgeFor(cs)

	info.StaticAllocas = newAllocas
	info.InlinedCalls = newCalls
	return true, nil
}

// testABI is a minimal allocamerge.ABIAligner stand-in, local to this test.
type testABI struct{}

func (testABI) ABIAlign(types.Type) uint64 { return 4 }

func alwaysInline() policy.CostFunc {
	return policy.CostFuncOf(func(cs *callgraph.CallSite) policy.Decision { return policy.Always() })
}

func neverInline() policy.CostFunc {
	return policy.CostFuncOf(func(cs *callgraph.CallSite) policy.Decision { return policy.Never() })
}

func newTestSession(g *callgraph.Graph, cost policy.CostFunc, counters *stats.Counters) *Session {
	oracle := policy.New(g, cost, observe.Discard{}, counters)
	merger := allocamerge.New(testABI{})
	rpr := reaper.New(g, nil, counters)
	return NewSession(g, oracle, &fakeCloner{graph: g}, merger, rpr, observe.Discard{}, counters, nil)
}

func TestRunSCCInlinesDirectCallAndReapsDeadCallee(t *testing.T) {
	mod := ir.NewModule()

	callee := mod.NewFunc("callee", types.Void)
	callee.Linkage = enum.LinkageInternal
	cb := callee.NewBlock("entry")
	cb.NewAlloca(types.NewArray(4, types.I32))
	cb.NewRet(nil)

	caller := mod.NewFunc("caller", types.Void)
	callerBlock := caller.NewBlock("entry")
	callerBlock.NewCall(callee)
	callerBlock.NewRet(nil)

	g := callgraph.Build(mod)
	callerNode := g.Lookup(caller)

	counters := &stats.Counters{}
	session := newTestSession(g, alwaysInline(), counters)

	changed, err := session.RunSCC(&callgraph.SCC{Nodes: []*callgraph.Function{callerNode}})
	if err != nil {
		t.Fatalf("RunSCC returned an error: %v", err)
	}
	if !changed {
		t.Fatalf("RunSCC should report a change")
	}

	if got := counters.NumInlined.Load(); got != 1 {
		t.Fatalf("NumInlined = %d, want 1", got)
	}
	if got := counters.NumDeleted.Load(); got != 1 {
		t.Fatalf("NumDeleted = %d, want 1 (callee became unreferenced)", got)
	}
	if len(callerNode.Calls()) != 0 {
		t.Fatalf("caller should have no outgoing call sites left after a successful leaf inline")
	}
	if g.Lookup(callee) != nil {
		t.Fatalf("callee should have been removed from the graph once it had no remaining references")
	}
}

func TestRunSCCFoldsNestedInlinedCallsIntoTheWorklist(t *testing.T) {
	mod := ir.NewModule()

	leaf := mod.NewFunc("leaf", types.Void)
	leaf.Linkage = enum.LinkageInternal
	leaf.NewBlock("entry").NewRet(nil)

	mid := mod.NewFunc("mid", types.Void)
	mid.Linkage = enum.LinkageInternal
	midBlock := mid.NewBlock("entry")
	midBlock.NewCall(leaf)
	midBlock.NewRet(nil)

	caller := mod.NewFunc("caller", types.Void)
	callerBlock := caller.NewBlock("entry")
	callerBlock.NewCall(mid)
	callerBlock.NewRet(nil)

	g := callgraph.Build(mod)
	callerNode := g.Lookup(caller)

	counters := &stats.Counters{}
	session := newTestSession(g, alwaysInline(), counters)

	changed, err := session.RunSCC(&callgraph.SCC{Nodes: []*callgraph.Function{callerNode}})
	if err != nil {
		t.Fatalf("RunSCC returned an error: %v", err)
	}
	if !changed {
		t.Fatalf("RunSCC should report a change")
	}

	if got := counters.NumInlined.Load(); got != 2 {
		t.Fatalf("NumInlined = %d, want 2 (caller<-mid, then caller<-leaf)", got)
	}
	if got := counters.NumDeleted.Load(); got != 2 {
		t.Fatalf("NumDeleted = %d, want 2 (both mid and leaf became unreferenced)", got)
	}
	if len(callerNode.Calls()) != 0 {
		t.Fatalf("caller should end up with no outgoing call sites after both levels inline away")
	}
	if g.Lookup(mid) != nil || g.Lookup(leaf) != nil {
		t.Fatalf("both mid and leaf should have been removed from the graph")
	}
}

func TestRunSCCLeavesRejectedCallSiteInPlace(t *testing.T) {
	mod := ir.NewModule()

	callee := mod.NewFunc("callee", types.Void)
	callee.Linkage = enum.LinkageInternal
	callee.NewBlock("entry").NewRet(nil)

	caller := mod.NewFunc("caller", types.Void)
	callerBlock := caller.NewBlock("entry")
	callerBlock.NewCall(callee)
	callerBlock.NewRet(nil)

	g := callgraph.Build(mod)
	callerNode := g.Lookup(caller)

	counters := &stats.Counters{}
	session := newTestSession(g, neverInline(), counters)

	changed, err := session.RunSCC(&callgraph.SCC{Nodes: []*callgraph.Function{callerNode}})
	if err != nil {
		t.Fatalf("RunSCC returned an error: %v", err)
	}
	if changed {
		t.Fatalf("RunSCC should report no change when the only call site is rejected")
	}
	if counters.NumInlined.Load() != 0 {
		t.Fatalf("NumInlined should remain 0 when the cost model rejects every site")
	}
	if len(callerNode.Calls()) != 1 {
		t.Fatalf("the rejected call site must remain on the caller's outgoing edges")
	}
	if g.Lookup(callee) == nil {
		t.Fatalf("callee must not be removed: its call site was only rejected, not inlined")
	}
}

func TestRunSCCSkipsIndirectCallSites(t *testing.T) {
	mod := ir.NewModule()
	fnPtrType := types.NewPointer(types.NewFunc(types.Void))
	caller := mod.NewFunc("caller", types.Void, ir.NewParam("fp", fnPtrType))
	block := caller.NewBlock("entry")
	block.NewCall(caller.Params[0])
	block.NewRet(nil)

	g := callgraph.Build(mod)
	callerNode := g.Lookup(caller)

	counters := &stats.Counters{}
	session := newTestSession(g, alwaysInline(), counters)

	changed, err := session.RunSCC(&callgraph.SCC{Nodes: []*callgraph.Function{callerNode}})
	if err != nil {
		t.Fatalf("RunSCC returned an error: %v", err)
	}
	if changed {
		t.Fatalf("an indirect call site can never be inlined; RunSCC should report no change")
	}
	if len(callerNode.Calls()) != 1 {
		t.Fatalf("the indirect call site must be left untouched")
	}
}
