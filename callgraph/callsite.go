package callgraph

import (
	"strings"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/value"
)

// Kind distinguishes a direct call site (statically known callee) from an
// indirect one, per spec §3 "A call site is direct iff the callee is
// statically known." Modeled as the thin enumeration spec §9 recommends
// ("Dynamic dispatch on call-site value") instead of a runtime-checked
// downcast performed on every access.
type Kind int

const (
	Direct Kind = iota
	Indirect
)

// Instr is the call-site view spec §9 calls for: a thin wrapper that accepts
// both the `call` instruction and `invoke` terminator forms of a call in
// LLVM IR. github.com/llir/llvm represents these as distinct concrete types
// (*ir.InstCall inside a block's instruction list, *ir.TermInvoke as a
// block's terminator); Instr normalizes access to the handful of fields the
// driver actually needs and carries its own back-link to the owning block,
// since neither underlying type stores one.
type Instr interface {
	// Value is the call/invoke instruction's own SSA value (its result).
	Value() value.Value
	// CalleeValue is the raw callee operand, direct or indirect.
	CalleeValue() value.Value
	// Block is the basic block containing the call site.
	Block() *ir.Block
	// Erase removes the call site from its parent block.
	Erase()
	// Ident is a short human-readable identifier for diagnostics.
	Ident() string
}

type callInstr struct {
	inst  *ir.InstCall
	block *ir.Block
}

func (c callInstr) Value() value.Value       { return c.inst }
func (c callInstr) CalleeValue() value.Value { return c.inst.Callee }
func (c callInstr) Block() *ir.Block         { return c.block }
func (c callInstr) Ident() string            { return c.inst.Ident() }

func (c callInstr) Erase() {
	for i, in := range c.block.Insts {
		if in == ir.Instruction(c.inst) {
			c.block.Insts = append(c.block.Insts[:i], c.block.Insts[i+1:]...)
			return
		}
	}
}

type invokeInstr struct {
	term  *ir.TermInvoke
	block *ir.Block
}

func (c invokeInstr) Value() value.Value       { return c.term }
func (c invokeInstr) CalleeValue() value.Value { return c.term.Callee }
func (c invokeInstr) Block() *ir.Block         { return c.block }
func (c invokeInstr) Ident() string            { return c.term.Ident() }

func (c invokeInstr) Erase() {
	// An invoke is a block terminator; the driver never deletes it outright
	// (only InlineFunction, an external collaborator, may rewrite the
	// control flow around an invoke on a successful inline). Erase is a
	// no-op placeholder satisfying Instr: the dead-call shortcut (spec §4.1
	// step b) only ever actually fires for ordinary `call` instructions,
	// since a dead invoke still has observable control-flow effects
	// (unwinding) that a plain erase would not account for.
}

// CallSite is a pending call site's immutable instruction-level view: the
// instruction itself plus its resolved caller/callee nodes (spec §3 "Call
// site").
type CallSite struct {
	Instr  Instr
	Caller *Function
	Kind   Kind
	Callee *Function // nil when Kind == Indirect, or when the callee is external to this graph
}

// IsDirect reports whether the callee is statically known.
func (cs *CallSite) IsDirect() bool { return cs.Kind == Direct }

// IsIntrinsic reports whether a callee name targets an LLVM intrinsic (by
// convention, names prefixed "llvm."). Spec §4.1 step 2: "skip intrinsic
// calls and non-call instructions."
func IsIntrinsic(name string) bool {
	return strings.HasPrefix(name, "llvm.")
}
