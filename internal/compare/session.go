package compare

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"drawdiff/internal/logging"
	"drawdiff/internal/revision"
)

// Slot names one side of the comparison.
type Slot string

const (
	SlotA Slot = "a"
	SlotB Slot = "b"
)

// Status summarizes the effect of a session operation.
type Status string

const (
	StatusReady      Status = "ready"
	StatusAutoFilled Status = "auto_filled"
	StatusNoPair     Status = "no_pair"
	StatusSwapped    Status = "swapped"
	StatusCleared    Status = "cleared"
)

// Event reports what a session operation did.
type Event struct {
	Status  Status
	Message string
	// Filled is the slot written by a proposal (auto-fill only).
	Filled Slot
	Match  revision.Match
}

// Pairer proposes the companion of a reference file.
type Pairer interface {
	FindPair(reference string, mode revision.Mode) (revision.Match, bool)
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithAutofill sets the initial auto-fill flag.
func WithAutofill(enabled bool) SessionOption {
	return func(s *Session) {
		s.autofill = enabled
	}
}

// WithSessionLogger attaches a logger.
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver registers a callback invoked after a slot changes. The
// callback runs outside the session lock and may call back into the session;
// changes it makes while a proposal is being applied do not trigger further
// proposals.
func WithObserver(fn func(slot Slot, path string)) SessionOption {
	return func(s *Session) {
		s.observer = fn
	}
}

// Session holds the two comparison slots.
type Session struct {
	mu       sync.Mutex
	a, b     string
	autofill bool
	// internal is set while a proposal or swap writes the slots.
	internal bool
	pairer   Pairer
	observer func(Slot, string)
	logger   *slog.Logger
}

// NewSession constructs a session with auto-fill enabled.
func NewSession(pairer Pairer, opts ...SessionOption) *Session {
	s := &Session{
		autofill: true,
		pairer:   pairer,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "session")
	return s
}

// A returns the original slot.
func (s *Session) A() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a
}

// B returns the comparison slot.
func (s *Session) B() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b
}

// Ready reports whether both slots are set.
func (s *Session) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a != "" && s.b != ""
}

// Autofill reports whether proposals are enabled.
func (s *Session) Autofill() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autofill
}

// SetAutofill toggles proposals.
func (s *Session) SetAutofill(enabled bool) {
	s.mu.Lock()
	s.autofill = enabled
	s.mu.Unlock()
}

// SetA stores the original file and, when B is empty, proposes the next
// revision for B.
func (s *Session) SetA(path string) Event {
	return s.set(SlotA, path)
}

// SetB stores the comparison file and, when A is empty, proposes the
// previous revision for A.
func (s *Session) SetB(path string) Event {
	return s.set(SlotB, path)
}

// Swap exchanges the slots without proposals, then retries auto-fill when
// exactly one side is set.
func (s *Session) Swap() Event {
	s.mu.Lock()
	s.internal = true
	s.a, s.b = s.b, s.a
	a, b := s.a, s.b
	s.mu.Unlock()

	s.notify(SlotA, a)
	s.notify(SlotB, b)

	s.mu.Lock()
	s.internal = false
	s.mu.Unlock()

	event := Event{Status: StatusSwapped, Message: "Files swapped."}
	switch {
	case a != "" && b == "":
		if proposal, ok := s.propose(SlotA, a); ok {
			return proposal
		}
	case b != "" && a == "":
		if proposal, ok := s.propose(SlotB, b); ok {
			return proposal
		}
	}
	return event
}

// Clear empties both slots.
func (s *Session) Clear() Event {
	s.mu.Lock()
	s.internal = true
	s.a, s.b = "", ""
	s.mu.Unlock()

	s.notify(SlotA, "")
	s.notify(SlotB, "")

	s.mu.Lock()
	s.internal = false
	s.mu.Unlock()
	return Event{Status: StatusCleared, Message: "Cleared."}
}

func (s *Session) set(slot Slot, path string) Event {
	s.mu.Lock()
	if slot == SlotA {
		s.a = path
	} else {
		s.b = path
	}
	s.mu.Unlock()

	s.notify(slot, path)

	event := Event{Status: StatusReady, Message: "Ready to compare."}
	if path == "" {
		return event
	}
	if proposal, ok := s.propose(slot, path); ok {
		return proposal
	}
	return event
}

// propose fills the slot opposite to source when the preconditions hold. It
// reports false when no proposal was attempted.
func (s *Session) propose(source Slot, path string) (Event, bool) {
	s.mu.Lock()
	if !s.autofill || s.internal || s.pairer == nil {
		s.mu.Unlock()
		return Event{}, false
	}
	target, mode := SlotB, revision.Next
	occupied := s.b != ""
	if source == SlotB {
		target, mode = SlotA, revision.Prev
		occupied = s.a != ""
	}
	s.mu.Unlock()

	if occupied {
		return Event{}, false
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return Event{}, false
	}

	match, ok := s.pairer.FindPair(path, mode)
	if !ok {
		s.logger.Debug("no pair proposed", logging.Args(
			logging.String(logging.FieldSlot, string(target)),
			logging.String(logging.FieldMode, mode.String()),
			logging.String("reference", filepath.Base(path)),
		)...)
		return Event{Status: StatusNoPair, Message: "No matching pair found for auto-fill."}, true
	}

	// The lock was released during the lookup. Drop the proposal if the
	// target was filled or the reference replaced in the meantime.
	s.mu.Lock()
	src, dst := &s.a, &s.b
	if target == SlotA {
		src, dst = &s.b, &s.a
	}
	if *dst != "" || *src != path {
		s.mu.Unlock()
		s.logger.Debug("proposal superseded", logging.Args(
			logging.String(logging.FieldSlot, string(target)),
			logging.String("match", match.Name),
		)...)
		return Event{}, false
	}
	s.internal = true
	*dst = match.Path
	s.mu.Unlock()

	s.notify(target, match.Path)

	s.mu.Lock()
	s.internal = false
	s.mu.Unlock()

	s.logger.Info("auto-filled slot", logging.Args(
		logging.String(logging.FieldSlot, string(target)),
		logging.String(logging.FieldMode, mode.String()),
		logging.String("match", match.Name),
		logging.String("strategy", string(match.Strategy)),
	)...)
	return Event{
		Status:  StatusAutoFilled,
		Message: fmt.Sprintf("Auto-filled: %s", match.Name),
		Filled:  target,
		Match:   match,
	}, true
}

func (s *Session) notify(slot Slot, path string) {
	if s.observer != nil {
		s.observer(slot, path)
	}
}
