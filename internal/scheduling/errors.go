package scheduling

import (
	"errors"
	"fmt"
	"time"
)

const timeLayout = "15:04"

// DayNotEnabledError: the day is not on the salon's allow-list.
type DayNotEnabledError struct {
	Day Date
}

func (e *DayNotEnabledError) Error() string {
	return fmt.Sprintf("el día %s no está habilitado para citas", e.Day)
}

// ConflictError: the proposed interval overlaps a PENDING or CONFIRMED
// appointment.
type ConflictError struct {
	AppointmentID string
	ClientName    string
	Status        Status
	Start         time.Time
	End           time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("el horario se cruza con la cita %s de %s (%s-%s)",
		e.Status.Spanish(), e.ClientName,
		Local(e.Start).Format(timeLayout), Local(e.End).Format(timeLayout))
}

type TerminalStateError struct {
	Status Status
}

func (e *TerminalStateError) Error() string {
	return fmt.Sprintf("la cita está %s y ya no puede modificarse", e.Status.Spanish())
}

type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("no se puede pasar una cita de %s a %s", e.From, e.To)
}

type OutsideWorkingHoursError struct {
	Start time.Time
	End   time.Time
	Open  time.Time
	Close time.Time
}

func (e *OutsideWorkingHoursError) Error() string {
	return fmt.Sprintf("la cita de %s a %s está fuera del horario de atención (%s-%s)",
		Local(e.Start).Format(timeLayout), Local(e.End).Format(timeLayout),
		Local(e.Open).Format(timeLayout), Local(e.Close).Format(timeLayout))
}

// ErrorKind names a validation outcome for callers that render one
// message per kind.
type ErrorKind string

const (
	KindDayNotEnabled       ErrorKind = "day_not_enabled"
	KindConflict            ErrorKind = "schedule_conflict"
	KindTerminalState       ErrorKind = "terminal_state"
	KindInvalidTransition   ErrorKind = "invalid_transition"
	KindOutsideWorkingHours ErrorKind = "outside_working_hours"
)

// KindOf returns the kind of a scheduling validation error, and false for
// anything else.
func KindOf(err error) (ErrorKind, bool) {
	var (
		dayErr      *DayNotEnabledError
		conflictErr *ConflictError
		terminalErr *TerminalStateError
		invalidErr  *InvalidTransitionError
		hoursErr    *OutsideWorkingHoursError
	)
	switch {
	case errors.As(err, &dayErr):
		return KindDayNotEnabled, true
	case errors.As(err, &conflictErr):
		return KindConflict, true
	case errors.As(err, &terminalErr):
		return KindTerminalState, true
	case errors.As(err, &invalidErr):
		return KindInvalidTransition, true
	case errors.As(err, &hoursErr):
		return KindOutsideWorkingHours, true
	}
	return "", false
}

func IsValidationError(err error) bool {
	_, ok := KindOf(err)
	return ok
}
