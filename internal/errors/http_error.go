package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"nailsalon/internal/scheduling"
)

// HTTPError represents an error with an associated HTTP status code.
type HTTPError struct {
	Code    int
	Kind    string
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTPError with the given code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{
		Code:    code,
		Kind:    kindForCode(code),
		Message: message,
	}
}

// Helpers for common errors
var (
	ErrBadRequest   = func(msg string) *HTTPError { return NewHTTPError(http.StatusBadRequest, msg) }
	ErrUnauthorized = func(msg string) *HTTPError { return NewHTTPError(http.StatusUnauthorized, msg) }
	ErrNotFound     = func(msg string) *HTTPError { return NewHTTPError(http.StatusNotFound, msg) }
	ErrConflict     = func(msg string) *HTTPError { return NewHTTPError(http.StatusConflict, msg) }
)

// Response is the JSON body written for every failed request.
type Response struct {
	Error   string         `json:"error"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Resolve turns any error into a status code and a response body.
// Scheduling validation errors keep their kind and context; anything
// unknown becomes a 500 with a generic message.
func Resolve(err error) (int, Response) {
	var httpErr *HTTPError
	if stderrors.As(err, &httpErr) {
		return httpErr.Code, Response{Error: httpErr.Kind, Message: httpErr.Message}
	}

	kind, ok := scheduling.KindOf(err)
	if !ok {
		return http.StatusInternalServerError, Response{Error: "internal_error", Message: "Error interno del servidor"}
	}

	resp := Response{Error: string(kind), Message: err.Error(), Details: details(err)}
	var conflictErr *scheduling.ConflictError
	if stderrors.As(err, &conflictErr) {
		// The other client's name stays out of responses.
		resp.Message = fmt.Sprintf("el horario se cruza con otra cita %s (%s-%s)",
			conflictErr.Status.Spanish(),
			scheduling.Local(conflictErr.Start).Format("15:04"),
			scheduling.Local(conflictErr.End).Format("15:04"))
	}
	switch kind {
	case scheduling.KindConflict, scheduling.KindTerminalState:
		return http.StatusConflict, resp
	default:
		return http.StatusUnprocessableEntity, resp
	}
}

func details(err error) map[string]any {
	var (
		dayErr      *scheduling.DayNotEnabledError
		conflictErr *scheduling.ConflictError
		terminalErr *scheduling.TerminalStateError
		transErr    *scheduling.InvalidTransitionError
		hoursErr    *scheduling.OutsideWorkingHoursError
	)
	switch {
	case stderrors.As(err, &dayErr):
		return map[string]any{"date": dayErr.Day.String()}
	case stderrors.As(err, &conflictErr):
		return map[string]any{
			"appointment_id": conflictErr.AppointmentID,
			"status":         conflictErr.Status,
			"start":          conflictErr.Start,
			"end":            conflictErr.End,
		}
	case stderrors.As(err, &terminalErr):
		return map[string]any{"status": terminalErr.Status}
	case stderrors.As(err, &transErr):
		return map[string]any{
			"from":    transErr.From,
			"to":      transErr.To,
			"allowed": scheduling.AllowedTransitions(transErr.From),
		}
	case stderrors.As(err, &hoursErr):
		return map[string]any{
			"start": hoursErr.Start,
			"end":   hoursErr.End,
			"open":  hoursErr.Open,
			"close": hoursErr.Close,
		}
	}
	return nil
}

func kindForCode(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusTooManyRequests:
		return "rate_limited"
	default:
		return "error"
	}
}
