package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"nailsalon/internal/db"
	"nailsalon/internal/entities"
	apperr "nailsalon/internal/errors"
	"nailsalon/internal/repository"
	"nailsalon/internal/scheduling"
	"nailsalon/internal/service"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type AppointmentAdmin interface {
	Get(ctx context.Context, id string) (*db.Appointment, error)
	List(ctx context.Context, f repository.AppointmentFilter) ([]db.Appointment, error)
	Update(ctx context.Context, id string, patch service.AppointmentPatch) (*db.Appointment, error)
	Delete(ctx context.Context, id string) error
}

type AvailabilityAdmin interface {
	List(ctx context.Context, from, to scheduling.Date) ([]db.AvailabilityBlock, error)
	SetDay(ctx context.Context, day scheduling.Date, available bool, note string) (*db.AvailabilityBlock, error)
	RemoveDay(ctx context.Context, day scheduling.Date) error
}

type AdminHandler struct {
	Appointments AppointmentAdmin
	Availability AvailabilityAdmin
}

func NewAdminHandler(appts AppointmentAdmin, availability AvailabilityAdmin) *AdminHandler {
	return &AdminHandler{Appointments: appts, Availability: availability}
}

func (h *AdminHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.AppointmentFilter{Limit: defaultPageSize}

	if v := q.Get("date"); v != "" {
		day, err := scheduling.ParseDate(v)
		if err != nil {
			writeError(w, r, apperr.ErrBadRequest("date debe tener el formato YYYY-MM-DD"))
			return
		}
		filter.Date = day
	}
	if v := q.Get("status"); v != "" {
		st, err := scheduling.ParseStatus(v)
		if err != nil {
			writeError(w, r, apperr.ErrBadRequest("estado desconocido"))
			return
		}
		filter.Status = st
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxPageSize {
			writeError(w, r, apperr.ErrBadRequest("limit inválido"))
			return
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, r, apperr.ErrBadRequest("offset inválido"))
			return
		}
		filter.Offset = n
	}

	appts, err := h.Appointments.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.NewAppointmentsList(appts, filter.Limit, filter.Offset))
}

func (h *AdminHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	appt, err := h.Appointments.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.NewAppointmentResponse(*appt))
}

func (h *AdminHandler) UpdateAppointment(w http.ResponseWriter, r *http.Request) {
	var req entities.AppointmentUpdateRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	var patch service.AppointmentPatch
	if req.Status != nil {
		st, err := scheduling.ParseStatus(*req.Status)
		if err != nil {
			writeError(w, r, apperr.ErrBadRequest("estado desconocido"))
			return
		}
		patch.Status = &st
	}
	if req.Date != nil {
		start, err := scheduling.ParseLocalDateTime(*req.Date)
		if err != nil {
			writeError(w, r, apperr.ErrBadRequest("date debe tener el formato YYYY-MM-DDTHH:MM"))
			return
		}
		patch.Start = &start
	}
	patch.Notes = req.Notes

	appt, err := h.Appointments.Update(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.NewAppointmentResponse(*appt))
}

func (h *AdminHandler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	if err := h.Appointments.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) ListAvailability(w http.ResponseWriter, r *http.Request) {
	from, errFrom := scheduling.ParseDate(r.URL.Query().Get("from"))
	to, errTo := scheduling.ParseDate(r.URL.Query().Get("to"))
	if errFrom != nil || errTo != nil {
		writeError(w, r, apperr.ErrBadRequest("from y to deben tener el formato YYYY-MM-DD"))
		return
	}

	blocks, err := h.Availability.List(r.Context(), from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]entities.DayAvailability, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, entities.NewDayAvailability(b))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AdminHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	day, err := scheduling.ParseDate(mux.Vars(r)["date"])
	if err != nil {
		writeError(w, r, apperr.ErrBadRequest("la fecha debe tener el formato YYYY-MM-DD"))
		return
	}
	var req entities.DayAvailabilityRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	block, err := h.Availability.SetDay(r.Context(), day, *req.IsAvailable, req.Note)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.NewDayAvailability(*block))
}

func (h *AdminHandler) DeleteAvailability(w http.ResponseWriter, r *http.Request) {
	day, err := scheduling.ParseDate(mux.Vars(r)["date"])
	if err != nil {
		writeError(w, r, apperr.ErrBadRequest("la fecha debe tener el formato YYYY-MM-DD"))
		return
	}
	if err := h.Availability.RemoveDay(r.Context(), day); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
