package observe

import (
	"fmt"

	"github.com/pterm/pterm"
)

// Color styles keyed by event kind, the same palette chai's logging/display.go
// defines (SuccessStyleBG/WarnStyleBG/ErrorStyleBG) but applied to inlining
// decisions rather than compiler diagnostics.
var (
	inlinedStyleBG   = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	inlinedColorFG   = pterm.FgLightGreen
	deferredStyleBG  = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	deferredColorFG  = pterm.FgYellow
	rejectedStyleBG  = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	rejectedColorFG  = pterm.FgRed
	neutralColorFG   = pterm.FgLightCyan
)

func display(ev Event) {
	switch ev.Kind {
	case AlwaysInline, Inlined:
		inlinedStyleBG.Print(" " + ev.Kind.String() + " ")
		inlinedColorFG.Printf(" %s -> %s\n", ev.Callee, ev.Caller)
	case NeverInline, TooCostly, NotInlined:
		rejectedStyleBG.Print(" " + ev.Kind.String() + " ")
		if ev.Cost != 0 || ev.Threshold != 0 {
			rejectedColorFG.Printf(" %s -> %s (cost=%d, threshold=%d)\n", ev.Callee, ev.Caller, ev.Cost, ev.Threshold)
		} else {
			rejectedColorFG.Printf(" %s -> %s\n", ev.Callee, ev.Caller)
		}
	case IncreaseCostInOtherContexts:
		deferredStyleBG.Print(" " + ev.Kind.String() + " ")
		deferredColorFG.Printf(" %s -> %s deferred: %s\n", ev.Callee, ev.Caller, ev.Reason)
	case NoDefinition:
		neutralColorFG.Printf("%s: %s has no definition in this module\n", ev.Kind, ev.Callee)
	default:
		fmt.Printf("%s: %s -> %s\n", ev.Kind, ev.Callee, ev.Caller)
	}
}

func displaySummary(counted map[Kind]int) {
	pterm.DefaultSection.Println("Inlining Summary")
	for _, k := range []Kind{AlwaysInline, Inlined, NeverInline, TooCostly, IncreaseCostInOtherContexts, NoDefinition, NotInlined} {
		if n := counted[k]; n > 0 {
			fmt.Printf("  %-28s %d\n", k.String(), n)
		}
	}
}
