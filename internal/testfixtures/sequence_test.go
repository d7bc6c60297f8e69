package testfixtures

import "testing"

func TestSequenceProducesMonotonicIdentifiers(t *testing.T) {
	seq := NewSequence(0)
	if got := seq.Next(); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	if got := seq.Next(); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}

	seq.Reset(10)
	if got := seq.Next(); got != 11 {
		t.Fatalf("expected 11 after reset, got %d", got)
	}
}

func TestSequenceNextFunc(t *testing.T) {
	seq := NewSequence(5)
	next := seq.NextFunc()
	if got := next(); got != 6 {
		t.Fatalf("expected 6 from NextFunc, got %d", got)
	}
}
