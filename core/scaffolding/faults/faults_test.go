package faults_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jrazmi/tasklists/core/scaffolding/faults"
)

func TestKindSurvivesWrapping(t *testing.T) {
	errTitle := faults.New(faults.Invalid, "title is required")
	wrapped := fmt.Errorf("tasklist repository create: %w", errTitle)

	kind, ok := faults.KindOf(wrapped)
	if !ok || kind != faults.Invalid {
		t.Fatalf("expected invalid kind, got %v (ok=%v)", kind, ok)
	}
	if !errors.Is(wrapped, errTitle) {
		t.Fatalf("expected errors.Is to match the sentinel")
	}
	if faults.Message(wrapped) != "title is required" {
		t.Fatalf("unexpected message %q", faults.Message(wrapped))
	}
	if !faults.Is(wrapped, faults.Invalid) || faults.Is(wrapped, faults.Forbidden) {
		t.Fatalf("faults.Is returned the wrong answer")
	}
}

func TestPlainErrorsHaveNoKind(t *testing.T) {
	if _, ok := faults.KindOf(errors.New("boom")); ok {
		t.Fatalf("plain errors must not report a kind")
	}
	if faults.Message(errors.New("boom")) != "" {
		t.Fatalf("plain errors must not expose a message")
	}
}
