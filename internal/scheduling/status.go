package scheduling

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// transitions is the only place the appointment lifecycle is defined.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
	StatusCompleted: nil,
	StatusCancelled: nil,
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := transitions[st]; !ok {
		return "", fmt.Errorf("unknown appointment status %q", s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Blocking statuses hold their time slot.
func (s Status) Blocking() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Spanish returns the label used in client-facing messages.
func (s Status) Spanish() string {
	switch s {
	case StatusPending:
		return "pendiente"
	case StatusConfirmed:
		return "confirmada"
	case StatusCompleted:
		return "completada"
	case StatusCancelled:
		return "cancelada"
	}
	return strings.ToLower(string(s))
}

func AllowedTransitions(from Status) []Status {
	next := transitions[from]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// ValidateTransition checks a requested status change. Terminal
// appointments reject every request, even one naming their own status.
// Repeating a non-terminal status is a no-op and passes.
func ValidateTransition(current, requested Status) error {
	if current.Terminal() {
		return &TerminalStateError{Status: current}
	}
	if !current.Valid() || !requested.Valid() {
		return &InvalidTransitionError{From: current, To: requested}
	}
	if current == requested {
		return nil
	}
	for _, next := range transitions[current] {
		if next == requested {
			return nil
		}
	}
	return &InvalidTransitionError{From: current, To: requested}
}
