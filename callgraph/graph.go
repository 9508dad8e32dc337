package callgraph

import (
	"sort"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/value"
)

// hasOperands is implemented by every github.com/llir/llvm instruction and
// terminator; Operands returns pointers to each operand slot so callers can
// both inspect and, for in-place value replacement (used by the alloca
// merger's RAUW), rewrite an operand without rebuilding the instruction.
type hasOperands interface {
	Operands() []*value.Value
}

// Graph is the call graph spec §3 describes: a directed multigraph over
// Functions plus one distinguished External node. github.com/llir/llvm keeps
// no use-list on its values (unlike LLVM's C++ IR), so Graph also owns the
// reference-counting bookkeeping (the uses map behind UseCount) that spec §6's
// `getNumReferences()` egress point depends on.
type Graph struct {
	Module *ir.Module

	nodes map[*ir.Func]*Function
	uses  map[value.Value]int
}

// Build walks mod once, constructing a Function node per defined or declared
// function, a CallSite per call/invoke instruction, and the module-wide use
// index that NumReferences and the dead-call shortcut rely on.
func Build(mod *ir.Module) *Graph {
	g := &Graph{
		Module: mod,
		nodes:  make(map[*ir.Func]*Function, len(mod.Funcs)),
		uses:   make(map[value.Value]int),
	}

	for _, fn := range mod.Funcs {
		g.nodes[fn] = &Function{IR: fn, calledFromExternal: isExternallyVisible(fn), g: g}
	}

	for _, fn := range mod.Funcs {
		node := g.nodes[fn]
		if fn.Blocks == nil {
			continue // declaration: no instructions to walk
		}
		for _, block := range fn.Blocks {
			for _, inst := range block.Insts {
				g.countOperands(inst)
				if call, ok := inst.(*ir.InstCall); ok {
					node.calls = append(node.calls, g.newCallSite(node, callInstr{inst: call, block: block}))
				}
			}
			g.countOperands(block.Term)
			if inv, ok := block.Term.(*ir.TermInvoke); ok {
				node.calls = append(node.calls, g.newCallSite(node, invokeInstr{term: inv, block: block}))
			}
		}
	}

	return g
}

// isExternallyVisible is the conservative default for which functions the
// distinguished external node has an edge to. Only linkages that guarantee
// every real caller is visible within this module (local linkage) or whose
// module-wide liveness is instead decided by the reaper's COMDAT filter
// (link-once/weak, any ODR or not) are excluded; everything else — plain
// external linkage chief among them — may be entered from outside the
// module and so always keeps the external edge. Excluding the COMDAT-
// eligible linkages here is what lets the reaper's dead-in-comdat path
// (spec §4.5) ever see a NumReferences()==0 candidate in the first
// place: those functions are "locally dead" exactly when nothing inside
// this module still calls them, with their true module-wide liveness
// deferred to the ComdatFilter rather than assumed here.
func isExternallyVisible(fn *ir.Func) bool {
	switch fn.Linkage {
	case enum.LinkageInternal, enum.LinkagePrivate,
		enum.LinkageLinkOnceAny, enum.LinkageLinkOnceODR,
		enum.LinkageWeakAny, enum.LinkageWeakODR:
		return false
	default:
		return true
	}
}

func (g *Graph) countOperands(v interface{}) {
	ho, ok := v.(hasOperands)
	if !ok {
		return
	}
	for _, operand := range ho.Operands() {
		g.incUse(*operand)
	}
}

func (g *Graph) incUse(v value.Value) {
	if v == nil {
		return
	}
	g.uses[v]++
}

func (g *Graph) decUse(v value.Value) {
	if v == nil {
		return
	}
	if n := g.uses[v] - 1; n <= 0 {
		delete(g.uses, v)
	} else {
		g.uses[v] = n
	}
}

// UseCount returns the number of operand slots across the module that still
// name v. Used both for a function's NumReferences and for deciding whether
// a call's own result is unused (the dead-call shortcut, spec §4.1 step b).
func (g *Graph) UseCount(v value.Value) int {
	return g.uses[v]
}

func (g *Graph) newCallSite(caller *Function, instr Instr) *CallSite {
	calleeVal := instr.CalleeValue()
	if calleeFn, ok := calleeVal.(*ir.Func); ok {
		callee := g.nodes[calleeFn]
		return &CallSite{Instr: instr, Caller: caller, Kind: Direct, Callee: callee}
	}
	return &CallSite{Instr: instr, Caller: caller, Kind: Indirect}
}

// Lookup returns the Function node wrapping fn, if it belongs to this graph.
func (g *Graph) Lookup(fn *ir.Func) *Function {
	return g.nodes[fn]
}

// Functions returns every node in the graph, in module declaration order.
func (g *Graph) Functions() []*Function {
	out := make([]*Function, 0, len(g.Module.Funcs))
	for _, fn := range g.Module.Funcs {
		out = append(out, g.nodes[fn])
	}
	return out
}

// CallersOf returns every direct call site, anywhere in the module, whose
// statically-known callee is fn — the Go analogue of walking `fn->users()`
// and filtering to `CallSite(U).getCalledFunction() == fn` (Inliner.cpp's
// `shouldBeDeferred`). Only incoming edges are returned, not fn's other
// outgoing edges; a self-call of a recursive fn is an incoming edge too and
// is included.
// The scan itself walks the node map (iteration order unspecified), so the
// result is sorted by each call site's caller ID for a deterministic order
// the Policy Oracle's deferral check can rely on across runs.
func (g *Graph) CallersOf(fn *Function) []*CallSite {
	var out []*CallSite
	for _, caller := range g.nodes {
		for _, cs := range caller.calls {
			if cs.Callee == fn {
				out = append(out, cs)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Caller.ID() != out[j].Caller.ID() {
			return out[i].Caller.ID() < out[j].Caller.ID()
		}
		return out[i].Instr.Ident() < out[j].Instr.Ident()
	})
	return out
}

// RemoveCallEdgeFor erases cs's instruction from the IR and drops the use
// references it held on its operands, mirroring
// `CG[Caller]->removeCallEdgeFor(CS)` followed by
// `CS.getInstruction()->eraseFromParent()` in Inliner.cpp.
func (g *Graph) RemoveCallEdgeFor(cs *CallSite) {
	g.removeOperandUses(cs)
	cs.Instr.Erase()
	caller := cs.Caller
	for i, c := range caller.calls {
		if c == cs {
			caller.calls = append(caller.calls[:i], caller.calls[i+1:]...)
			break
		}
	}
}

func (g *Graph) removeOperandUses(cs *CallSite) {
	switch v := cs.Instr.(type) {
	case callInstr:
		g.countOperandsDelta(v.inst, -1)
	case invokeInstr:
		g.countOperandsDelta(v.term, -1)
	}
}

func (g *Graph) countOperandsDelta(v interface{}, delta int) {
	ho, ok := v.(hasOperands)
	if !ok {
		return
	}
	for _, operand := range ho.Operands() {
		if delta < 0 {
			g.decUse(*operand)
		} else {
			g.incUse(*operand)
		}
	}
}

// RemoveAllCalledFunctions drops every outgoing call-graph edge from fn,
// mirroring `CalleeNode->removeAllCalledFunctions()`. Used when a function's
// body is about to be deleted wholesale (spec §4.1 step g, §4.5).
func (g *Graph) RemoveAllCalledFunctions(fn *Function) {
	for _, cs := range fn.calls {
		g.countOperandsDelta(underlyingInstr(cs.Instr), -1)
	}
	fn.calls = nil
}

func underlyingInstr(instr Instr) interface{} {
	switch v := instr.(type) {
	case callInstr:
		return v.inst
	case invokeInstr:
		return v.term
	default:
		return nil
	}
}

// RemoveAnyCallEdgeTo removes the external node's edge to fn, mirroring
// `CG.getExternalCallingNode()->removeAnyCallEdgeTo(CGN)`.
func (g *Graph) RemoveAnyCallEdgeTo(fn *Function) {
	fn.calledFromExternal = false
}

// RemoveFunctionFromModule deletes fn's node from the graph and its body
// from the module, mirroring `CG.removeFunctionFromModule(CGN)`. Callers
// must have already dropped all outgoing/incoming edges to fn.
func (g *Graph) RemoveFunctionFromModule(fn *Function) {
	delete(g.nodes, fn.IR)
	for i, f := range g.Module.Funcs {
		if f == fn.IR {
			g.Module.Funcs = append(g.Module.Funcs[:i], g.Module.Funcs[i+1:]...)
			break
		}
	}
}

// AddCallSites registers newly revealed call sites (e.g. from a cloned
// callee body) on caller's outgoing edge list and accounts for their operand
// uses, mirroring the call-graph bookkeeping `InlineFunction` itself would
// perform for each cloned instruction.
func (g *Graph) AddCallSites(caller *Function, sites []*CallSite) {
	for _, cs := range sites {
		g.countOperandsDelta(underlyingInstr(cs.Instr), 1)
		caller.calls = append(caller.calls, cs)
	}
}

// NewDirectCallSite wraps a freshly cloned *ir.InstCall as a CallSite
// resolved against this graph, for use by a BodyCloner implementation when
// reporting InlinedCalls back to the driver.
func (g *Graph) NewDirectCallSite(caller *Function, inst *ir.InstCall, block *ir.Block) *CallSite {
	return g.newCallSite(caller, callInstr{inst: inst, block: block})
}
