// Package observe is the structured observation channel spec.md §6
// describes: "the core emits structured events but does not render them."
// It mirrors chai's logging package one-for-one in shape (a mutex-guarded
// Logger, pterm-rendered, with a three-level LogLevel) but the payload is
// the inliner's decision stream instead of compiler diagnostics.
package observe

// Kind enumerates the decision points spec §6 "Observation" names.
type Kind int

const (
	// AlwaysInline records that the cost model unconditionally approved a
	// call site.
	AlwaysInline Kind = iota
	// NeverInline records that the cost model unconditionally rejected a
	// call site.
	NeverInline
	// TooCostly records a Cost(c, delta) verdict with delta < 0.
	TooCostly
	// IncreaseCostInOtherContexts records a deferral: inlining was withheld
	// because it would make the caller too costly for its own callers.
	IncreaseCostInOtherContexts
	// NoDefinition records a direct call whose callee is a declaration.
	NoDefinition
	// Inlined records a call site that was successfully substituted.
	Inlined
	// NotInlined records a call site the driver decided, for any reason, not
	// to substitute this pass.
	NotInlined
)

func (k Kind) String() string {
	switch k {
	case AlwaysInline:
		return "AlwaysInline"
	case NeverInline:
		return "NeverInline"
	case TooCostly:
		return "TooCostly"
	case IncreaseCostInOtherContexts:
		return "IncreaseCostInOtherContexts"
	case NoDefinition:
		return "NoDefinition"
	case Inlined:
		return "Inlined"
	case NotInlined:
		return "NotInlined"
	default:
		return "Unknown"
	}
}

// Event is one observation, carrying at minimum the callee/caller names and,
// where applicable, the cost and threshold (spec §6).
type Event struct {
	Kind      Kind
	Caller    string
	Callee    string
	Cost      int
	Threshold int
	Reason    string
}

// Sink is the capability the SCC driver is handed to report observations —
// the inliner-side analogue of LLVM's OptimizationRemarkEmitter. Any type
// satisfying it, including a test's recording fake, may stand in for the
// default *Logger.
type Sink interface {
	Observe(Event)
}

// Discard is a Sink that drops every event; useful for callers (and tests)
// that only care about the returned `changed` flag and final counters.
type Discard struct{}

func (Discard) Observe(Event) {}
