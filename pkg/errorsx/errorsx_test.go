package errorsx

import "testing"

func TestWrapAndReason(t *testing.T) {
	err := Wrap(assertErr{}, ReasonSynthesis)
	if Reason(err) != ReasonSynthesis {
		t.Fatalf("expected reason %s, got %s", ReasonSynthesis, Reason(err))
	}
	if !HasReason(err, ReasonSynthesis) {
		t.Fatalf("expected HasReason true")
	}
}

func TestWrapPreservesExistingReason(t *testing.T) {
	first := Wrap(assertErr{}, ReasonSessionStore)
	second := Wrap(first, ReasonSynthesis)
	if Reason(second) != ReasonSessionStore {
		t.Fatalf("expected reason preserved, got %s", Reason(second))
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, ReasonSynthesis) != nil {
		t.Fatalf("expected nil passthrough")
	}
	if Reason(nil) != ReasonUnknown {
		t.Fatalf("expected unknown reason for nil")
	}
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }
