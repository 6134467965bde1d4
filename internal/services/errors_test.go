package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"drawdiff/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "pdfdiff", "compare", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"pdfdiff", "compare", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapNilMarkerDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, services.OutcomeOK},
		{"canceled", fmt.Errorf("run: %w", context.Canceled), services.OutcomeCanceled},
		{"deadline", context.DeadlineExceeded, services.OutcomeTimeout},
		{"timeout", services.Wrap(services.ErrTimeout, "viewer3d", "run", "slow", nil), services.OutcomeTimeout},
		{"access", services.Wrap(services.ErrAccess, "pdfdiff", "compare", "locked", nil), services.OutcomeAccess},
		{"validation", services.Wrap(services.ErrValidation, "compare", "inputs", "not a pdf", nil), services.OutcomeInvalid},
		{"config", services.Wrap(services.ErrConfiguration, "config", "load", "bad", nil), services.OutcomeInvalid},
		{"missing", services.Wrap(services.ErrNotFound, "compare", "inputs", "gone", nil), services.OutcomeMissing},
		{"tool", services.Wrap(services.ErrExternalTool, "pdfdiff", "compare", "crash", nil), services.OutcomeToolFailed},
		{"other", errors.New("mystery"), services.OutcomeFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.Classify(tt.err); got != tt.want {
				t.Fatalf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}
