package entities

import (
	"time"

	"nailsalon/internal/db"
	"nailsalon/internal/scheduling"
)

type AppointmentResponse struct {
	ID                 string    `json:"id"`
	ClientName         string    `json:"client_name"`
	ClientPhone        string    `json:"client_phone"`
	ClientEmail        string    `json:"client_email,omitempty"`
	ServiceID          string    `json:"service_id"`
	ServiceName        string    `json:"service_name"`
	Duration           string    `json:"duration"`
	Date               time.Time `json:"date"`
	EndDate            time.Time `json:"end_date"`
	LocalDate          string    `json:"local_date"`
	Status             string    `json:"status"`
	StatusLabel        string    `json:"status_label"`
	AllowedTransitions []string  `json:"allowed_transitions"`
	Notes              string    `json:"notes,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type AppointmentsList struct {
	Count        int                   `json:"count"`
	Limit        int                   `json:"limit"`
	Offset       int                   `json:"offset"`
	Appointments []AppointmentResponse `json:"appointments"`
}

func NewAppointmentResponse(a db.Appointment) AppointmentResponse {
	allowed := make([]string, 0, 2)
	for _, st := range scheduling.AllowedTransitions(a.Status) {
		allowed = append(allowed, string(st))
	}
	return AppointmentResponse{
		ID:                 a.ID,
		ClientName:         a.ClientName,
		ClientPhone:        a.ClientPhone,
		ClientEmail:        a.ClientEmail,
		ServiceID:          a.ServiceID,
		ServiceName:        a.ServiceName,
		Duration:           scheduling.FormatDuration(a.ServiceDuration),
		Date:               a.Date,
		EndDate:            a.End(),
		LocalDate:          scheduling.Local(a.Date).Format("2006-01-02 15:04"),
		Status:             string(a.Status),
		StatusLabel:        a.Status.Spanish(),
		AllowedTransitions: allowed,
		Notes:              a.Notes,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

func NewAppointmentsList(appts []db.Appointment, limit, offset int) AppointmentsList {
	list := AppointmentsList{
		Count:        len(appts),
		Limit:        limit,
		Offset:       offset,
		Appointments: make([]AppointmentResponse, 0, len(appts)),
	}
	for _, a := range appts {
		list.Appointments = append(list.Appointments, NewAppointmentResponse(a))
	}
	return list
}
