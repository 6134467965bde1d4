package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrAccess        = errors.New("access denied")
	ErrTransient     = errors.New("transient failure")
)

// Outcome labels persisted with comparison runs.
const (
	OutcomeOK         = "ok"
	OutcomeInvalid    = "invalid"
	OutcomeMissing    = "missing"
	OutcomeTimeout    = "timeout"
	OutcomeAccess     = "access_denied"
	OutcomeToolFailed = "tool_failed"
	OutcomeCanceled   = "canceled"
	OutcomeFailed     = "failed"
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Classify maps an error to the outcome label recorded in run history.
// A nil error is OutcomeOK.
func Classify(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, context.Canceled):
		return OutcomeCanceled
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return OutcomeTimeout
	case errors.Is(err, ErrAccess):
		return OutcomeAccess
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConfiguration):
		return OutcomeInvalid
	case errors.Is(err, ErrNotFound):
		return OutcomeMissing
	case errors.Is(err, ErrExternalTool):
		return OutcomeToolFailed
	default:
		return OutcomeFailed
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
