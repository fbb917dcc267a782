package hberr

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := Config(CodeUnknownWorkflow, "no args file for workflow %q", "tool")
	wrapped := fmt.Errorf("load: %w", err)
	if !errors.Is(wrapped, ErrUnknownWorkflow) {
		t.Fatalf("expected wrapped error to match ErrUnknownWorkflow")
	}
	if errors.Is(wrapped, ErrUnknownArgKind) {
		t.Fatalf("unexpected match on a different code")
	}
	if got := CodeOf(wrapped); got != CodeUnknownWorkflow {
		t.Fatalf("CodeOf=%q want %q", got, CodeUnknownWorkflow)
	}
}

func TestExternalKeepsCause(t *testing.T) {
	cause := errors.New("exit status 1")
	err := External(CodeGnPhaseFailed, cause, "GN phase failed")
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable via Unwrap")
	}
	if err.Kind != KindExternalProcess {
		t.Fatalf("kind=%v", err.Kind)
	}
	if err.Error() != "[3000] GN phase failed: exit status 1" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestCodeOfForeignError(t *testing.T) {
	if CodeOf(errors.New("plain")) != "" {
		t.Fatalf("expected empty code for foreign error")
	}
}
