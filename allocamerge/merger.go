// Package allocamerge implements the Alloca Merger (spec.md §4.2): after a
// successful top-level inlining, it reuses an already-available stack slot
// in the caller for each newly inlined array-typed, non-array-allocation
// stack slot, rather than letting every inlined copy of a callee keep its
// own frame allocation. Ported from Inliner.cpp's `mergeInlinedArrayAllocas`
// (_examples/original_source/lib/Transforms/IPO/Inliner.cpp).
package allocamerge

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"chaiinline/callgraph"
	"chaiinline/history"
	"chaiinline/stats"
)

// ABIAligner supplies the target's ABI-default alignment for a type, used
// when unifying a zero (unspecified) alignment against a nonzero one. This
// is the `DataLayout::getABITypeAlignment` external collaborator from
// Inliner.cpp, narrowed to the single query the merger needs.
type ABIAligner interface {
	ABIAlign(t types.Type) uint64
}

// Merger holds the per-caller state spec §4.2 describes: a memoized map from
// array-shaped stack-slot type to the list of reusable slots contributed by
// prior inlinings into that caller. The map is keyed per caller, so one
// Merger can serve every caller the driver visits. Its state is kept for the
// Merger's whole lifetime: an inline.Session holds one Merger across every
// SCC it runs, and nothing clears the map between RunSCC calls.
type Merger struct {
	abi   ABIAligner
	state map[*callgraph.Function]map[types.Type][]*ir.InstAlloca

	// sites backs blockOf/parentFunc below: github.com/llir/llvm instructions
	// carry no parent back-link, so the driver registers one for every
	// freshly cloned alloca via Register before calling Merge.
	sites map[*ir.InstAlloca]site
}

type site struct {
	block *ir.Block
	fn    *ir.Func
}

// New creates a Merger that resolves ABI-default alignments via abi.
func New(abi ABIAligner) *Merger {
	return &Merger{
		abi:   abi,
		state: make(map[*callgraph.Function]map[types.Type][]*ir.InstAlloca),
		sites: make(map[*ir.InstAlloca]site),
	}
}

// Register records the block and function that own a, so the merger can
// later answer "same block?" and walk the function to redirect uses. The
// `inline` package calls this once per freshly cloned alloca, immediately
// after the body-cloner reports it, before calling Merge.
func (m *Merger) Register(a *ir.InstAlloca, block *ir.Block, fn *ir.Func) {
	m.sites[a] = site{block: block, fn: fn}
}

// Forget drops a's registration. Merge calls it for each alloca it erases
// (merged away); nothing else calls it, so registrations of allocas that
// survive a merge are kept for the Merger's lifetime.
func (m *Merger) Forget(a *ir.InstAlloca) {
	delete(m.sites, a)
}

// Merge examines the stack slots contributed by one successful top-level
// inlining into caller and, where safe, replaces them with slots already
// available from prior inlinings into the same caller. historyIndex is the
// inlining's history index; per spec §4.2/I5, merging is only performed for
// top-level inlinings (historyIndex == history.None) — callers must check
// this themselves, but Merge re-asserts it defensively and is a no-op
// otherwise.
func (m *Merger) Merge(caller *callgraph.Function, allocas []*ir.InstAlloca, historyIndex int, counters *stats.Counters) {
	if historyIndex != history.None {
		return
	}

	perType := m.state[caller]
	if perType == nil {
		perType = make(map[types.Type][]*ir.InstAlloca)
		m.state[caller] = perType
	}

	used := make(map[*ir.InstAlloca]bool, len(allocas))

	for _, a := range allocas {
		aty, ok := a.ElemType.(*types.ArrayType)
		if !ok || a.NElems != nil {
			// Not array-typed, or itself an array allocation (a runtime
			// count): never merged (spec §4.2 "Why only array-typed,
			// non-array allocations").
			continue
		}

		candidates := perType[aty]
		merged := false
		for _, c := range candidates {
			if used[c] {
				continue
			}
			if m.blockOf(c) != m.blockOf(a) {
				continue // must live in the same block (spec §4.2)
			}

			m.reuse(a, c)
			used[c] = true
			if counters != nil {
				counters.NumMergedAllocas.Add(1)
			}
			merged = true
			break
		}

		if !merged {
			perType[aty] = append(perType[aty], a)
			used[a] = true
		}
	}
}

// reuse redirects every use of a to c, unifies their alignment, and erases
// a, per spec §4.2's reuse algorithm.
func (m *Merger) reuse(a, c *ir.InstAlloca) {
	m.redirectUses(a, c)
	c.Align = unifyAlign(a.Align, c.Align, m.abi.ABIAlign(a.ElemType))
	m.eraseAlloca(a)
}

// unifyAlign implements spec §4.2's alignment-unification rule: "if both
// slots have a non-zero alignment, pick the maximum; if exactly one is
// zero, substitute the target's ABI alignment for the element type before
// taking the max." Resolved per original_source/Inliner.cpp: substitution
// only happens inside the `Align1 != Align2` branch, so two equal zero
// alignments short-circuit and stay zero rather than being bumped to the
// ABI value (DESIGN.md "Open Question decisions").
func unifyAlign(newAlign, availAlign, abiAlign uint64) uint64 {
	if newAlign == availAlign {
		return availAlign
	}
	if newAlign == 0 {
		newAlign = abiAlign
	}
	if availAlign == 0 {
		availAlign = abiAlign
	}
	if newAlign > availAlign {
		return newAlign
	}
	return availAlign
}

// redirectUses rewrites every operand slot across a's parent function that
// names a so that it names c instead — github.com/llir/llvm keeps no
// use-list, so this walks every instruction's/terminator's Operands() the
// same way callgraph.Graph's use index does.
func (m *Merger) redirectUses(a, c *ir.InstAlloca) {
	fn := m.parentFunc(a)
	if fn == nil {
		return
	}
	for _, block := range fn.Blocks {
		for _, inst := range block.Insts {
			replaceOperand(inst, a, c)
		}
		replaceOperand(block.Term, a, c)
	}
}

func replaceOperand(v interface{}, old, new *ir.InstAlloca) {
	ho, ok := v.(interface{ Operands() []*value.Value })
	if !ok {
		return
	}
	for _, operand := range ho.Operands() {
		if *operand == value.Value(old) {
			*operand = new
		}
	}
}

func (m *Merger) blockOf(a *ir.InstAlloca) *ir.Block {
	return m.sites[a].block
}

func (m *Merger) parentFunc(a *ir.InstAlloca) *ir.Func {
	return m.sites[a].fn
}

func (m *Merger) eraseAlloca(a *ir.InstAlloca) {
	s, ok := m.sites[a]
	if !ok {
		return
	}
	for i, inst := range s.block.Insts {
		if inst == ir.Instruction(a) {
			s.block.Insts = append(s.block.Insts[:i], s.block.Insts[i+1:]...)
			break
		}
	}
	m.Forget(a)
}
