// Package assert provides the small panic-on-violation helper used for
// structural invariants that indicate a bug in chaiinline itself, as
// distinct from fallible user-facing errors returned with (T, error). spec.md
// §7 draws exactly this line: "the design assumes assertions rather than
// recovery" for conditions a caller cannot have triggered by passing bad
// input.
package assert

import "fmt"

// Invariant panics with a formatted message if cond is false. It is not a
// substitute for error handling at an API boundary — only for conditions
// that would mean an earlier step in the SCC driver already broke one of its
// own invariants.
func Invariant(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf("chaiinline: invariant violated: "+format, args...))
	}
}
