package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nailsalon/internal/db"
	"nailsalon/internal/entities"
	apperr "nailsalon/internal/errors"
	"nailsalon/internal/repository"
	"nailsalon/internal/scheduling"
	"nailsalon/internal/service"
)

var testDay = scheduling.Date{Year: 2025, Month: time.March, Day: 14}

type fakeBooking struct {
	lastQuery  service.SlotQuery
	lastCreate service.NewAppointment
	createErr  error
}

func (f *fakeBooking) ListServices(context.Context) ([]db.Service, error) {
	return []db.Service{{ID: "gel", Name: "Uñas de gel", Duration: 90, Price: 30}}, nil
}

func (f *fakeBooking) AvailableSlots(_ context.Context, q service.SlotQuery) (*entities.AvailabilityResponse, error) {
	f.lastQuery = q
	return &entities.AvailabilityResponse{From: q.From.String(), To: q.To.String()}, nil
}

func (f *fakeBooking) Create(_ context.Context, in service.NewAppointment) (*db.Appointment, error) {
	f.lastCreate = in
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &db.Appointment{
		ID:              "new-id",
		ClientName:      in.ClientName,
		ClientPhone:     in.ClientPhone,
		ServiceID:       in.ServiceID,
		ServiceName:     "Uñas de gel",
		ServiceDuration: 90,
		Date:            in.Start,
		Status:          scheduling.StatusPending,
	}, nil
}

type fakeAdmin struct {
	appts     map[string]db.Appointment
	lastPatch service.AppointmentPatch
	lastList  repository.AppointmentFilter
	updateErr error
	days      map[scheduling.Date]db.AvailabilityBlock
}

func (f *fakeAdmin) Get(_ context.Context, id string) (*db.Appointment, error) {
	a, ok := f.appts[id]
	if !ok {
		return nil, apperr.ErrNotFound("cita no encontrada")
	}
	return &a, nil
}

func (f *fakeAdmin) List(_ context.Context, filter repository.AppointmentFilter) ([]db.Appointment, error) {
	f.lastList = filter
	var out []db.Appointment
	for _, a := range f.appts {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeAdmin) Update(ctx context.Context, id string, patch service.AppointmentPatch) (*db.Appointment, error) {
	f.lastPatch = patch
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	a, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Status != nil {
		a.Status = *patch.Status
	}
	return a, nil
}

func (f *fakeAdmin) Delete(_ context.Context, id string) error {
	delete(f.appts, id)
	return nil
}

func (f *fakeAdmin) SetDay(_ context.Context, day scheduling.Date, available bool, note string) (*db.AvailabilityBlock, error) {
	b := db.AvailabilityBlock{ID: 1, Date: day, IsAvailable: available, Note: note}
	f.days[day] = b
	return &b, nil
}

func (f *fakeAdmin) RemoveDay(_ context.Context, day scheduling.Date) error {
	if _, ok := f.days[day]; !ok {
		return apperr.ErrNotFound("no hay disponibilidad registrada para esa fecha")
	}
	delete(f.days, day)
	return nil
}

// availabilityLister adapts fakeAdmin to AvailabilityAdmin, whose List
// differs from the appointment List.
type availabilityLister struct{ *fakeAdmin }

func (a availabilityLister) List(_ context.Context, from, to scheduling.Date) ([]db.AvailabilityBlock, error) {
	var out []db.AvailabilityBlock
	for _, d := range scheduling.DatesBetween(from, to) {
		if b, ok := a.days[d]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeAuth struct{}

func (fakeAuth) Login(_ context.Context, email, password string) (string, error) {
	if email == "admin@salon.ec" && password == "secreto123" {
		return "token", nil
	}
	return "", service.ErrInvalidCredentials
}

func (fakeAuth) CreateAdmin(context.Context, string, string) error { return nil }

type fixture struct {
	booking *fakeBooking
	admin   *fakeAdmin
	router  http.Handler
}

func newFixture() *fixture {
	f := &fixture{
		booking: &fakeBooking{},
		admin: &fakeAdmin{
			appts: map[string]db.Appointment{
				"a1": {ID: "a1", ClientName: "Ana", ServiceDuration: 60, Date: testDay.At(10 * time.Hour), Status: scheduling.StatusPending},
			},
			days: map[scheduling.Date]db.AvailabilityBlock{},
		},
	}
	f.router = NewRouter(Routes{
		User:      NewUserAppointmentHandler(f.booking),
		Admin:     NewAdminHandler(f.admin, availabilityLister{f.admin}),
		Auth:      NewAdminAuthHandler(fakeAuth{}),
		AdminAuth: func(next http.Handler) http.Handler { return next },
	})
	return f
}

func (f *fixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestListServices(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodGet, "/api/services", "")

	require.Equal(t, http.StatusOK, rec.Code)
	services := decodeBody[[]entities.ServiceResponse](t, rec)
	require.Len(t, services, 1)
	assert.Equal(t, "1:30", services[0].Duration)
}

func TestAvailableSlotsQuery(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodGet, "/api/availability/slots?date=2025-03-14&end_date=2025-03-16&duration=1:30", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testDay, f.booking.lastQuery.From)
	assert.Equal(t, testDay.AddDays(2), f.booking.lastQuery.To)
	assert.Equal(t, 90, f.booking.lastQuery.DurationMinutes)
}

func TestAvailableSlotsServiceWinsOverDuration(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodGet, "/api/availability/slots?date=2025-03-14&service_id=gel&duration=abc", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gel", f.booking.lastQuery.ServiceID)
	assert.Zero(t, f.booking.lastQuery.DurationMinutes)
}

func TestAvailableSlotsBadInput(t *testing.T) {
	f := newFixture()

	for _, target := range []string{
		"/api/availability/slots",
		"/api/availability/slots?date=14-03-2025",
		"/api/availability/slots?date=2025-03-14&end_date=manana",
		"/api/availability/slots?date=2025-03-14&duration=1:75",
		"/api/availability/slots?date=2025-03-14&duration=1e13",
		"/api/availability/slots?date=2025-03-14&duration=-0:30",
	} {
		rec := f.do(t, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Equal(t, "bad_request", decodeBody[apperr.Response](t, rec).Error)
	}
}

func TestCreateAppointmentLocalTime(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPost, "/api/appointments", `{
		"client_name": "María",
		"client_phone": "0991234567",
		"client_email": "maria@example.com",
		"service_id": "gel",
		"date": "2025-03-14T10:00"
	}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, f.booking.lastCreate.Start.Equal(time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)))
	resp := decodeBody[entities.AppointmentResponse](t, rec)
	assert.Equal(t, "new-id", resp.ID)
	assert.Equal(t, "PENDING", resp.Status)
	assert.Equal(t, "pendiente", resp.StatusLabel)
	assert.Equal(t, "2025-03-14 10:00", resp.LocalDate)
	assert.ElementsMatch(t, []string{"CONFIRMED", "CANCELLED"}, resp.AllowedTransitions)
}

func TestCreateAppointmentValidation(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPost, "/api/appointments", `{"client_name": "M", "client_email": "nope", "service_id": "gel", "date": "2025-03-14T10:00"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	msg := decodeBody[apperr.Response](t, rec).Message
	assert.Contains(t, msg, "client_name")
	assert.Contains(t, msg, "client_phone")
	assert.Contains(t, msg, "client_email")
}

func TestCreateAppointmentSchedulingErrors(t *testing.T) {
	start := testDay.At(10 * time.Hour)
	tests := []struct {
		name string
		err  error
		code int
		kind string
	}{
		{"conflict", &scheduling.ConflictError{AppointmentID: "a1", ClientName: "Ana", Status: scheduling.StatusConfirmed, Start: start, End: start.Add(time.Hour)}, http.StatusConflict, "schedule_conflict"},
		{"day", &scheduling.DayNotEnabledError{Day: testDay}, http.StatusUnprocessableEntity, "day_not_enabled"},
		{"hours", &scheduling.OutsideWorkingHoursError{Start: start, End: start}, http.StatusUnprocessableEntity, "outside_working_hours"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.booking.createErr = tt.err

			rec := f.do(t, http.MethodPost, "/api/appointments", `{"client_name": "María", "client_phone": "0991234567", "service_id": "gel", "date": "2025-03-14T10:00"}`)

			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.kind, decodeBody[apperr.Response](t, rec).Error)
		})
	}
}

func TestLogin(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPost, "/api/admin/login", `{"email": "admin@salon.ec", "password": "secreto123"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "token", decodeBody[entities.LoginResponse](t, rec).Token)

	rec = f.do(t, http.MethodPost, "/api/admin/login", `{"email": "admin@salon.ec", "password": "nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminListAppointments(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodGet, "/admin/appointments?date=2025-03-14&status=pending&limit=10&offset=20", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, repository.AppointmentFilter{Date: testDay, Status: scheduling.StatusPending, Limit: 10, Offset: 20}, f.admin.lastList)
	list := decodeBody[entities.AppointmentsList](t, rec)
	assert.Equal(t, 1, list.Count)

	rec = f.do(t, http.MethodGet, "/admin/appointments?status=done", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminUpdateAppointment(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPut, "/admin/appointments/a1", `{"status": "confirmed", "date": "2025-03-14T11:00", "notes": "vip"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, f.admin.lastPatch.Status)
	assert.Equal(t, scheduling.StatusConfirmed, *f.admin.lastPatch.Status)
	assert.True(t, f.admin.lastPatch.Start.Equal(testDay.At(11*time.Hour)))
	assert.Equal(t, "vip", *f.admin.lastPatch.Notes)
	assert.Equal(t, "CONFIRMED", decodeBody[entities.AppointmentResponse](t, rec).Status)
}

func TestAdminUpdateTerminal(t *testing.T) {
	f := newFixture()
	f.admin.updateErr = &scheduling.TerminalStateError{Status: scheduling.StatusCompleted}

	rec := f.do(t, http.MethodPut, "/admin/appointments/a1", `{"status": "CANCELLED"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "terminal_state", decodeBody[apperr.Response](t, rec).Error)
}

func TestAdminUpdateRejectsUnknownFields(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPut, "/admin/appointments/a1", `{"stauts": "CANCELLED"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminGetAndDeleteAppointment(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodGet, "/admin/appointments/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodDelete, "/admin/appointments/a1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, f.admin.appts)
}

func TestAdminAvailability(t *testing.T) {
	f := newFixture()

	rec := f.do(t, http.MethodPut, "/admin/availability/2025-03-14", `{"is_available": true, "note": "abierto"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, f.admin.days[testDay].IsAvailable)

	rec = f.do(t, http.MethodPut, "/admin/availability/2025-03-15", `{"note": "sin flag"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/admin/availability?from=2025-03-10&to=2025-03-20", "")
	require.Equal(t, http.StatusOK, rec.Code)
	days := decodeBody[[]entities.DayAvailability](t, rec)
	require.Len(t, days, 1)
	assert.Equal(t, "2025-03-14", days[0].Date)

	rec = f.do(t, http.MethodDelete, "/admin/availability/2025-03-14", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(t, http.MethodDelete, "/admin/availability/2025-03-14", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
