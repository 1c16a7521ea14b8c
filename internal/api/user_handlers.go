package api

import (
	"context"
	"net/http"

	"nailsalon/internal/db"
	"nailsalon/internal/entities"
	apperr "nailsalon/internal/errors"
	"nailsalon/internal/scheduling"
	"nailsalon/internal/service"
)

type BookingService interface {
	ListServices(ctx context.Context) ([]db.Service, error)
	AvailableSlots(ctx context.Context, q service.SlotQuery) (*entities.AvailabilityResponse, error)
	Create(ctx context.Context, in service.NewAppointment) (*db.Appointment, error)
}

type UserAppointmentHandler struct {
	Service BookingService
}

func NewUserAppointmentHandler(svc BookingService) *UserAppointmentHandler {
	return &UserAppointmentHandler{Service: svc}
}

func (h *UserAppointmentHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.Service.ListServices(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.NewServiceResponses(services))
}

// AvailableSlots serves GET /api/availability/slots. duration accepts
// "H:MM" or decimal hours and is ignored when service_id is given.
func (h *UserAppointmentHandler) AvailableSlots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	from, err := scheduling.ParseDate(q.Get("date"))
	if err != nil {
		writeError(w, r, apperr.ErrBadRequest("date debe tener el formato YYYY-MM-DD"))
		return
	}
	query := service.SlotQuery{From: from, ServiceID: q.Get("service_id")}

	if v := q.Get("end_date"); v != "" {
		if query.To, err = scheduling.ParseDate(v); err != nil {
			writeError(w, r, apperr.ErrBadRequest("end_date debe tener el formato YYYY-MM-DD"))
			return
		}
	}
	if v := q.Get("duration"); v != "" && query.ServiceID == "" {
		if query.DurationMinutes, err = scheduling.ParseDuration(v); err != nil {
			writeError(w, r, apperr.ErrBadRequest("duration debe tener el formato H:MM"))
			return
		}
	}

	resp, err := h.Service.AvailableSlots(r.Context(), query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *UserAppointmentHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req entities.AppointmentRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	start, err := scheduling.ParseLocalDateTime(req.Date)
	if err != nil {
		writeError(w, r, apperr.ErrBadRequest("date debe tener el formato YYYY-MM-DDTHH:MM"))
		return
	}

	appt, err := h.Service.Create(r.Context(), service.NewAppointment{
		ClientName:  req.ClientName,
		ClientPhone: req.ClientPhone,
		ClientEmail: req.ClientEmail,
		ServiceID:   req.ServiceID,
		Start:       start,
		Notes:       req.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entities.NewAppointmentResponse(*appt))
}
