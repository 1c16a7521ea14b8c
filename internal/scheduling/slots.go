// Package scheduling computes bookable slots and validates appointment
// changes for the salon. Everything here is pure and stateless.
package scheduling

import (
	"fmt"
	"time"
)

type SlotReason string

const (
	ReasonDayNotEnabled       SlotReason = "day_not_enabled"
	ReasonScheduleConflict    SlotReason = "schedule_conflict"
	ReasonOutsideWorkingHours SlotReason = "outside_working_hours"
)

// Slot is one candidate start on the grid and the service interval it
// would occupy.
type Slot struct {
	Start          time.Time
	End            time.Time
	Available      bool
	Reason         SlotReason
	ConflictReason string
}

// SlotRequest describes the grid to compute. Existing should hold the
// PENDING and CONFIRMED appointments touching the range; anything else is
// ignored. A zero Policy means DefaultPolicy.
type SlotRequest struct {
	From            Date
	To              Date
	ServiceDuration time.Duration
	Existing        []Booking
	EnabledDays     DaySet
	Policy          Policy
}

type SlotSummary struct {
	Total     int
	Available int
	Booked    int
}

// GenerateSlots walks every day of [From, To] from opening time in
// SlotInterval steps while the start is before closing time, and marks
// each slot. Checks run in order: day enabled, conflicts, working hours.
// The output is chronological and depends only on the request.
func GenerateSlots(req SlotRequest) []Slot {
	p := req.Policy
	if p == (Policy{}) {
		p = DefaultPolicy()
	}
	if p.SlotInterval <= 0 {
		return nil
	}
	duration := p.duration(req.ServiceDuration)
	bookings := blockingBookings(req.Existing)

	var slots []Slot
	for _, day := range DatesBetween(req.From, req.To) {
		opens, closes := p.Window(day)
		enabled := req.EnabledDays.Contains(day)

		for start := opens; start.Before(closes); start = start.Add(p.SlotInterval) {
			slot := Slot{Start: start, End: start.Add(duration)}

			if !enabled {
				slot.Reason = ReasonDayNotEnabled
				slot.ConflictReason = "Día no habilitado para citas"
				slots = append(slots, slot)
				continue
			}

			if b := FindConflict(Interval{Start: slot.Start, End: slot.End}, bookings, ""); b != nil {
				slot.Reason = ReasonScheduleConflict
				slot.ConflictReason = fmt.Sprintf("Conflicto de horario con una cita %s", b.Status.Spanish())
				slots = append(slots, slot)
				continue
			}

			if slot.End.After(closes) {
				slot.Reason = ReasonOutsideWorkingHours
				slot.ConflictReason = fmt.Sprintf("Fuera del horario de atención (cierra a las %s)", Local(closes).Format(timeLayout))
				slots = append(slots, slot)
				continue
			}

			slot.Available = true
			slots = append(slots, slot)
		}
	}
	return slots
}

// Summarize counts a generated grid. Booked counts slots lost to an
// existing appointment.
func Summarize(slots []Slot) SlotSummary {
	s := SlotSummary{Total: len(slots)}
	for _, slot := range slots {
		switch {
		case slot.Available:
			s.Available++
		case slot.Reason == ReasonScheduleConflict:
			s.Booked++
		}
	}
	return s
}
