package scheduling

import (
	"sort"
	"time"
)

// Interval is the half-open range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps uses strict comparison on both sides, so an interval ending at
// T does not overlap one starting at T.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// HasConflict reports whether [proposedStart, proposedEnd) overlaps any
// existing interval. Callers filter out the appointment being moved and
// terminal appointments beforehand.
func HasConflict(proposedStart, proposedEnd time.Time, existing []Interval) bool {
	proposed := Interval{Start: proposedStart, End: proposedEnd}
	for _, e := range existing {
		if proposed.Overlaps(e) {
			return true
		}
	}
	return false
}

// Booking is the part of a stored appointment the scheduler needs.
type Booking struct {
	ID         string
	ClientName string
	Status     Status
	Start      time.Time
	Duration   time.Duration
}

func (b Booking) End() time.Time {
	return b.Start.Add(b.Duration)
}

func (b Booking) Interval() Interval {
	return Interval{Start: b.Start, End: b.End()}
}

func (b Booking) Blocks() bool {
	return b.Status.Blocking()
}

// FindConflict returns the earliest blocking booking overlapping proposed,
// skipping excludeID, or nil.
func FindConflict(proposed Interval, bookings []Booking, excludeID string) *Booking {
	var found *Booking
	for i := range bookings {
		b := bookings[i]
		if !b.Blocks() || (excludeID != "" && b.ID == excludeID) {
			continue
		}
		if !proposed.Overlaps(b.Interval()) {
			continue
		}
		if found == nil || b.Start.Before(found.Start) {
			found = &b
		}
	}
	return found
}

// blockingBookings keeps only bookings that hold their slot, sorted by
// start.
func blockingBookings(bookings []Booking) []Booking {
	out := make([]Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.Blocks() {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}
