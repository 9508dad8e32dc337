package history

import (
	"testing"

	"chaiinline/callgraph"
)

func TestIncludesWalksChainToRoot(t *testing.T) {
	a := &callgraph.Function{}
	b := &callgraph.Function{}
	c := &callgraph.Function{}

	var l Ledger

	// Simulate: a inlined at top level, then b inlined into the a-chain, then
	// c inlined into the b-chain.
	idA := l.Record(a, None)
	idB := l.Record(b, idA)
	idC := l.Record(c, idB)

	if !l.Includes(a, idC) {
		t.Fatalf("a should be found by walking the chain rooted at c's entry")
	}
	if !l.Includes(b, idC) {
		t.Fatalf("b should be found by walking the chain rooted at c's entry")
	}
	if !l.Includes(c, idC) {
		t.Fatalf("c should be found at its own entry")
	}

	other := &callgraph.Function{}
	if l.Includes(other, idC) {
		t.Fatalf("a function never recorded along the chain must not be found")
	}
}

func TestIncludesStopsAtNone(t *testing.T) {
	var l Ledger
	a := &callgraph.Function{}
	id := l.Record(a, None)

	if l.Includes(a, None) {
		t.Fatalf("None never has any entries recorded against it")
	}
	if l.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", l.Len())
	}
	_ = id
}
