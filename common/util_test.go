package common

import "testing"

func TestGenerateIDFromNameIsDeterministic(t *testing.T) {
	a := GenerateIDFromName("chaiinline.core.inline")
	b := GenerateIDFromName("chaiinline.core.inline")
	if a != b {
		t.Fatalf("GenerateIDFromName is not deterministic: %d != %d", a, b)
	}
}

func TestGenerateIDFromNameDistinguishesNames(t *testing.T) {
	a := GenerateIDFromName("caller")
	b := GenerateIDFromName("callee")
	if a == b {
		t.Fatalf("distinct names hashed to the same ID: %d", a)
	}
}
