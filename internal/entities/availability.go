package entities

import (
	"time"

	"nailsalon/internal/db"
	"nailsalon/internal/scheduling"
)

type TimeSlotAvailability struct {
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	Date           string    `json:"date"`
	Time           string    `json:"time"`
	IsAvailable    bool      `json:"is_available"`
	Reason         string    `json:"reason,omitempty"`
	ConflictReason string    `json:"conflict_reason,omitempty"`
}

type SlotSummary struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Booked    int `json:"booked"`
}

type AvailabilityResponse struct {
	From            string                 `json:"date"`
	To              string                 `json:"end_date"`
	ServiceID       string                 `json:"service_id,omitempty"`
	ServiceName     string                 `json:"service_name,omitempty"`
	Duration        string                 `json:"duration"`
	DurationMinutes int                    `json:"duration_minutes"`
	Summary         SlotSummary            `json:"summary"`
	Slots           []TimeSlotAvailability `json:"slots"`
}

func NewTimeSlots(slots []scheduling.Slot) []TimeSlotAvailability {
	out := make([]TimeSlotAvailability, 0, len(slots))
	for _, s := range slots {
		local := scheduling.Local(s.Start)
		out = append(out, TimeSlotAvailability{
			StartTime:      s.Start,
			EndTime:        s.End,
			Date:           scheduling.DateOf(s.Start).String(),
			Time:           local.Format("15:04"),
			IsAvailable:    s.Available,
			Reason:         string(s.Reason),
			ConflictReason: s.ConflictReason,
		})
	}
	return out
}

type DayAvailability struct {
	Date        string    `json:"date"`
	IsAvailable bool      `json:"is_available"`
	Note        string    `json:"note,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DayAvailabilityRequest sets one day of the allow-list.
type DayAvailabilityRequest struct {
	IsAvailable *bool  `json:"is_available" validate:"required"`
	Note        string `json:"note" validate:"max=255"`
}

func NewDayAvailability(b db.AvailabilityBlock) DayAvailability {
	return DayAvailability{
		Date:        b.Date.String(),
		IsAvailable: b.IsAvailable,
		Note:        b.Note,
		UpdatedAt:   b.UpdatedAt,
	}
}
