package scheduling

import (
	"fmt"
	"time"
)

const (
	DefaultOpenAt                 = 6 * time.Hour
	DefaultCloseAt                = 23 * time.Hour
	DefaultSlotInterval           = 30 * time.Minute
	DefaultServiceDurationMinutes = 60
)

// Policy holds the salon's booking rules. OpenAt and CloseAt are offsets
// from local midnight.
type Policy struct {
	OpenAt                 time.Duration
	CloseAt                time.Duration
	SlotInterval           time.Duration
	DefaultServiceDuration time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		OpenAt:                 DefaultOpenAt,
		CloseAt:                DefaultCloseAt,
		SlotInterval:           DefaultSlotInterval,
		DefaultServiceDuration: DefaultServiceDurationMinutes * time.Minute,
	}
}

func (p Policy) Validate() error {
	if p.SlotInterval <= 0 {
		return fmt.Errorf("slot interval must be positive, got %s", p.SlotInterval)
	}
	if p.DefaultServiceDuration <= 0 {
		return fmt.Errorf("default service duration must be positive, got %s", p.DefaultServiceDuration)
	}
	if p.OpenAt < 0 || p.CloseAt > 24*time.Hour || p.OpenAt >= p.CloseAt {
		return fmt.Errorf("working window %s-%s is not within one day", p.OpenAt, p.CloseAt)
	}
	return nil
}

// Window returns the opening and closing instants of day.
func (p Policy) Window(day Date) (opens, closes time.Time) {
	return day.At(p.OpenAt), day.At(p.CloseAt)
}

func (p Policy) duration(d time.Duration) time.Duration {
	if d <= 0 {
		return p.DefaultServiceDuration
	}
	return d
}

// withinHours reports whether [start, end) fits the working window of the
// day start falls on. An end past midnight is compared as an instant, so
// it never wraps back into the window.
func (p Policy) withinHours(start, end time.Time) bool {
	opens, closes := p.Window(DateOf(start))
	return !start.Before(opens) && !end.After(closes)
}
