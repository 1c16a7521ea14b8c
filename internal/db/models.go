package db

import (
	"time"

	"nailsalon/internal/scheduling"
)

type Service struct {
	ID       string
	Name     string
	Duration int // minutes
	Price    float64
}

type Appointment struct {
	ID              string
	ClientName      string
	ClientPhone     string
	ClientEmail     string
	ServiceID       string
	ServiceName     string
	ServiceDuration int // minutes, from the joined service
	Date            time.Time
	Status          scheduling.Status
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (a Appointment) Duration() time.Duration {
	return time.Duration(a.ServiceDuration) * time.Minute
}

func (a Appointment) End() time.Time {
	return a.Date.Add(a.Duration())
}

// Booking is the view the scheduler checks conflicts against.
func (a Appointment) Booking() scheduling.Booking {
	return scheduling.Booking{
		ID:         a.ID,
		ClientName: a.ClientName,
		Status:     a.Status,
		Start:      a.Date,
		Duration:   a.Duration(),
	}
}

func Bookings(appts []Appointment) []scheduling.Booking {
	out := make([]scheduling.Booking, 0, len(appts))
	for _, a := range appts {
		out = append(out, a.Booking())
	}
	return out
}

type AvailabilityBlock struct {
	ID          int
	Date        scheduling.Date
	IsAvailable bool
	Note        string
	UpdatedAt   time.Time
}

func AvailabilityBlocks(rows []AvailabilityBlock) []scheduling.AvailabilityBlock {
	out := make([]scheduling.AvailabilityBlock, 0, len(rows))
	for _, r := range rows {
		out = append(out, scheduling.AvailabilityBlock{Date: r.Date, IsAvailable: r.IsAvailable})
	}
	return out
}

type Admin struct {
	ID           int
	Email        string
	PasswordHash string
}
