package scheduling

import "time"

// ValidateCreate checks a new appointment at proposedStart lasting
// duration against the allow-list and the existing appointments.
func ValidateCreate(proposedStart time.Time, duration time.Duration, enabled DaySet, existing []Booking, p Policy) error {
	return validateSchedule("", proposedStart, duration, enabled, existing, p)
}

// ValidateReschedule is ValidateCreate with the appointment being moved
// left out of the comparison.
func ValidateReschedule(appointmentID string, newStart time.Time, duration time.Duration, enabled DaySet, existing []Booking, p Policy) error {
	return validateSchedule(appointmentID, newStart, duration, enabled, existing, p)
}

func validateSchedule(excludeID string, start time.Time, duration time.Duration, enabled DaySet, existing []Booking, p Policy) error {
	if p == (Policy{}) {
		p = DefaultPolicy()
	}
	duration = p.duration(duration)
	proposed := Interval{Start: start, End: start.Add(duration)}

	day := DateOf(start)
	if !enabled.Contains(day) {
		return &DayNotEnabledError{Day: day}
	}

	if b := FindConflict(proposed, existing, excludeID); b != nil {
		return &ConflictError{
			AppointmentID: b.ID,
			ClientName:    b.ClientName,
			Status:        b.Status,
			Start:         b.Start,
			End:           b.End(),
		}
	}

	if !p.withinHours(proposed.Start, proposed.End) {
		opens, closes := p.Window(day)
		return &OutsideWorkingHoursError{Start: proposed.Start, End: proposed.End, Open: opens, Close: closes}
	}
	return nil
}
