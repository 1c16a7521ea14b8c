package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"nailsalon/internal/db"
	"nailsalon/internal/entities"
	apperr "nailsalon/internal/errors"
	"nailsalon/internal/repository"
	"nailsalon/internal/scheduling"
)

type AppointmentStore interface {
	Get(ctx context.Context, id string) (*db.Appointment, error)
	List(ctx context.Context, f repository.AppointmentFilter) ([]db.Appointment, error)
	ListActiveBetween(ctx context.Context, from, to time.Time) ([]db.Appointment, error)
	Delete(ctx context.Context, id string) error
	RunLocked(ctx context.Context, days []scheduling.Date, fn func(repository.AppointmentTx) error) error
}

type ServiceCatalog interface {
	GetByID(ctx context.Context, id string) (*db.Service, error)
	List(ctx context.Context) ([]db.Service, error)
}

type AvailabilityStore interface {
	ListBetween(ctx context.Context, from, to scheduling.Date) ([]db.AvailabilityBlock, error)
	Upsert(ctx context.Context, block *db.AvailabilityBlock) error
	Delete(ctx context.Context, day scheduling.Date) error
}

// SlotQuery selects the grid to show. ServiceID wins over
// DurationMinutes; with neither the default service duration is used.
type SlotQuery struct {
	From            scheduling.Date
	To              scheduling.Date
	ServiceID       string
	DurationMinutes int
}

type NewAppointment struct {
	ClientName  string
	ClientPhone string
	ClientEmail string
	ServiceID   string
	Start       time.Time
	Notes       string
}

// AppointmentPatch holds the fields an admin may change. Nil means keep.
type AppointmentPatch struct {
	Status *scheduling.Status
	Start  *time.Time
	Notes  *string
}

func (p AppointmentPatch) empty() bool {
	return p.Status == nil && p.Start == nil && p.Notes == nil
}

type AppointmentService struct {
	Appointments AppointmentStore
	Services     ServiceCatalog
	Availability AvailabilityStore

	notifier     Notifier
	metrics      *Metrics
	policy       scheduling.Policy
	maxRangeDays int
	now          func() time.Time
	newID        func() string
}

func NewAppointmentService(
	appts AppointmentStore,
	services ServiceCatalog,
	availability AvailabilityStore,
	notifier Notifier,
	m *Metrics,
	policy scheduling.Policy,
	maxRangeDays int,
) *AppointmentService {
	return &AppointmentService{
		Appointments: appts,
		Services:     services,
		Availability: availability,
		notifier:     notifier,
		metrics:      m,
		policy:       policy,
		maxRangeDays: maxRangeDays,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

func (s *AppointmentService) ListServices(ctx context.Context) ([]db.Service, error) {
	return s.Services.List(ctx)
}

// AvailableSlots reads the allow-list and the active appointments fresh
// and lays the slot grid over [From, To].
func (s *AppointmentService) AvailableSlots(ctx context.Context, q SlotQuery) (*entities.AvailabilityResponse, error) {
	if q.From.IsZero() {
		return nil, apperr.ErrBadRequest("el parámetro date es obligatorio")
	}
	if q.To.IsZero() {
		q.To = q.From
	}
	if q.To.Before(q.From) {
		return nil, apperr.ErrBadRequest("end_date no puede ser anterior a date")
	}
	if span := int(q.To.Ordinal()-q.From.Ordinal()) + 1; s.maxRangeDays > 0 && span > s.maxRangeDays {
		return nil, apperr.ErrBadRequest(fmt.Sprintf("el rango máximo es de %d días", s.maxRangeDays))
	}

	resp := &entities.AvailabilityResponse{From: q.From.String(), To: q.To.String()}
	minutes := q.DurationMinutes
	if q.ServiceID != "" {
		svc, err := s.service(ctx, q.ServiceID)
		if err != nil {
			return nil, err
		}
		minutes = svc.Duration
		resp.ServiceID = svc.ID
		resp.ServiceName = svc.Name
	}
	if minutes < 0 || minutes > scheduling.MaxDurationMinutes {
		return nil, apperr.ErrBadRequest("la duración debe estar entre 0:00 y 24:00")
	}
	if minutes == 0 {
		minutes = int(s.policy.DefaultServiceDuration / time.Minute)
	}
	duration := time.Duration(minutes) * time.Minute

	enabled, err := s.enabledDays(ctx, q.From, q.To)
	if err != nil {
		return nil, err
	}
	existing, err := s.Appointments.ListActiveBetween(ctx, q.From.Start(), q.To.AddDays(1).Start().Add(duration))
	if err != nil {
		return nil, fmt.Errorf("error loading appointments: %w", err)
	}

	slots := scheduling.GenerateSlots(scheduling.SlotRequest{
		From:            q.From,
		To:              q.To,
		ServiceDuration: duration,
		Existing:        db.Bookings(existing),
		EnabledDays:     enabled,
		Policy:          s.policy,
	})
	summary := scheduling.Summarize(slots)

	resp.Duration = scheduling.FormatDuration(minutes)
	resp.DurationMinutes = minutes
	resp.Summary = entities.SlotSummary{Total: summary.Total, Available: summary.Available, Booked: summary.Booked}
	resp.Slots = entities.NewTimeSlots(slots)
	return resp, nil
}

// Create books a PENDING appointment. The conflict check and the insert
// run under the day lock.
func (s *AppointmentService) Create(ctx context.Context, in NewAppointment) (*db.Appointment, error) {
	svc, err := s.service(ctx, in.ServiceID)
	if err != nil {
		return nil, err
	}
	start := in.Start.UTC()
	if !start.After(s.now()) {
		return nil, apperr.ErrBadRequest("no se pueden agendar citas en el pasado")
	}

	minutes := svc.Duration
	if minutes <= 0 {
		minutes = int(s.policy.DefaultServiceDuration / time.Minute)
	}
	appt := &db.Appointment{
		ID:              s.newID(),
		ClientName:      strings.TrimSpace(in.ClientName),
		ClientPhone:     strings.TrimSpace(in.ClientPhone),
		ClientEmail:     strings.TrimSpace(in.ClientEmail),
		ServiceID:       svc.ID,
		ServiceName:     svc.Name,
		ServiceDuration: minutes,
		Date:            start,
		Status:          scheduling.StatusPending,
		Notes:           strings.TrimSpace(in.Notes),
	}

	day := scheduling.DateOf(start)
	err = s.Appointments.RunLocked(ctx, []scheduling.Date{day}, func(tx repository.AppointmentTx) error {
		enabled, err := s.enabledDays(ctx, day, day)
		if err != nil {
			return err
		}
		existing, err := tx.ListActiveBetween(ctx, appt.Date, appt.End())
		if err != nil {
			return err
		}
		if err := scheduling.ValidateCreate(appt.Date, appt.Duration(), enabled, db.Bookings(existing), s.policy); err != nil {
			return err
		}
		return tx.Insert(ctx, appt)
	})
	if err != nil {
		s.metrics.rejected(err)
		return nil, err
	}

	s.metrics.created()
	log.Info().Str("appointment_id", appt.ID).Str("service_id", appt.ServiceID).Time("date", appt.Date).Msg("appointment created")
	s.notify(*appt, EventRequested)
	return appt, nil
}

func (s *AppointmentService) Get(ctx context.Context, id string) (*db.Appointment, error) {
	appt, err := s.Appointments.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "cita no encontrada")
	}
	return appt, nil
}

func (s *AppointmentService) List(ctx context.Context, f repository.AppointmentFilter) ([]db.Appointment, error) {
	return s.Appointments.List(ctx, f)
}

// Update applies an admin change. Completed and cancelled appointments
// reject every change; a new date is validated with the appointment
// itself left out of the conflict check.
func (s *AppointmentService) Update(ctx context.Context, id string, patch AppointmentPatch) (*db.Appointment, error) {
	if patch.empty() {
		return nil, apperr.ErrBadRequest("no se indicó ningún cambio")
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	days := []scheduling.Date{scheduling.DateOf(current.Date)}
	if patch.Start != nil {
		days = append(days, scheduling.DateOf(*patch.Start))
	}

	var (
		updated     *db.Appointment
		from        scheduling.Status
		rescheduled bool
	)
	err = s.Appointments.RunLocked(ctx, days, func(tx repository.AppointmentTx) error {
		appt, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if appt.Status.Terminal() {
			return &scheduling.TerminalStateError{Status: appt.Status}
		}
		from = appt.Status

		if patch.Status != nil {
			if err := scheduling.ValidateTransition(appt.Status, *patch.Status); err != nil {
				return err
			}
			appt.Status = *patch.Status
		}

		if patch.Start != nil && !patch.Start.Equal(appt.Date) {
			newStart := patch.Start.UTC()
			if !newStart.After(s.now()) {
				return apperr.ErrBadRequest("no se pueden agendar citas en el pasado")
			}
			if appt.Status.Blocking() {
				newDay := scheduling.DateOf(newStart)
				enabled, err := s.enabledDays(ctx, newDay, newDay)
				if err != nil {
					return err
				}
				existing, err := tx.ListActiveBetween(ctx, newStart, newStart.Add(appt.Duration()))
				if err != nil {
					return err
				}
				if err := scheduling.ValidateReschedule(appt.ID, newStart, appt.Duration(), enabled, db.Bookings(existing), s.policy); err != nil {
					return err
				}
			}
			appt.Date = newStart
			rescheduled = true
		}

		if patch.Notes != nil {
			appt.Notes = strings.TrimSpace(*patch.Notes)
		}

		if err := tx.Update(ctx, appt); err != nil {
			return err
		}
		updated = appt
		return nil
	})
	if err != nil {
		s.metrics.rejected(err)
		return nil, notFound(err, "cita no encontrada")
	}

	if updated.Status != from {
		s.metrics.transitioned(from, updated.Status, 1)
		log.Info().Str("appointment_id", id).Str("from", string(from)).Str("to", string(updated.Status)).Msg("appointment status changed")
	}
	switch {
	case updated.Status != from && updated.Status == scheduling.StatusConfirmed:
		s.notify(*updated, EventConfirmed)
	case updated.Status != from && updated.Status == scheduling.StatusCancelled:
		s.notify(*updated, EventCancelled)
	case rescheduled:
		s.notify(*updated, EventRescheduled)
	}
	return updated, nil
}

// Delete removes an appointment for good. Only cancelled ones may go;
// everything else keeps its history.
func (s *AppointmentService) Delete(ctx context.Context, id string) error {
	appt, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if appt.Status != scheduling.StatusCancelled {
		return apperr.ErrConflict("solo se pueden eliminar citas canceladas")
	}
	if err := s.Appointments.Delete(ctx, id); err != nil {
		return notFound(err, "cita no encontrada")
	}
	log.Info().Str("appointment_id", id).Msg("appointment deleted")
	return nil
}

func (s *AppointmentService) service(ctx context.Context, id string) (*db.Service, error) {
	svc, err := s.Services.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "servicio no encontrado")
	}
	return svc, nil
}

func (s *AppointmentService) enabledDays(ctx context.Context, from, to scheduling.Date) (scheduling.DaySet, error) {
	blocks, err := s.Availability.ListBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("error loading availability: %w", err)
	}
	return scheduling.EnabledDaysFrom(db.AvailabilityBlocks(blocks)), nil
}

func (s *AppointmentService) notify(appt db.Appointment, event Event) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(appt, event)
}

func notFound(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.ErrNotFound(msg)
	}
	return err
}
