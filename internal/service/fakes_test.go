package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"nailsalon/internal/db"
	"nailsalon/internal/repository"
	"nailsalon/internal/scheduling"
)

var (
	testDay = scheduling.Date{Year: 2025, Month: time.March, Day: 14}
	testNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
)

func at(h, m int) time.Time {
	return testDay.At(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

// fakeAppointments is an in-memory AppointmentStore. It also serves as
// the transactional view handed to RunLocked callbacks.
type fakeAppointments struct {
	mu      sync.Mutex
	appts   map[string]db.Appointment
	locked  [][]scheduling.Date
	updates int
}

func newFakeAppointments(appts ...db.Appointment) *fakeAppointments {
	f := &fakeAppointments{appts: map[string]db.Appointment{}}
	for _, a := range appts {
		f.appts[a.ID] = a
	}
	return f
}

func (f *fakeAppointments) Get(_ context.Context, id string) (*db.Appointment, error) {
	a, ok := f.appts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (f *fakeAppointments) GetForUpdate(ctx context.Context, id string) (*db.Appointment, error) {
	return f.Get(ctx, id)
}

func (f *fakeAppointments) List(_ context.Context, filter repository.AppointmentFilter) ([]db.Appointment, error) {
	var out []db.Appointment
	for _, a := range f.appts {
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (f *fakeAppointments) ListActiveBetween(_ context.Context, from, to time.Time) ([]db.Appointment, error) {
	var out []db.Appointment
	for _, a := range f.appts {
		if a.Status.Blocking() && a.Date.Before(to) && a.End().After(from) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (f *fakeAppointments) Insert(_ context.Context, appt *db.Appointment) error {
	appt.CreatedAt = testNow
	appt.UpdatedAt = testNow
	f.appts[appt.ID] = *appt
	return nil
}

func (f *fakeAppointments) Update(_ context.Context, appt *db.Appointment) error {
	if _, ok := f.appts[appt.ID]; !ok {
		return repository.ErrNotFound
	}
	f.updates++
	f.appts[appt.ID] = *appt
	return nil
}

func (f *fakeAppointments) Delete(_ context.Context, id string) error {
	if _, ok := f.appts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.appts, id)
	return nil
}

func (f *fakeAppointments) RunLocked(_ context.Context, days []scheduling.Date, fn func(repository.AppointmentTx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locked = append(f.locked, days)
	return fn(f)
}

type fakeCatalog map[string]db.Service

func (c fakeCatalog) GetByID(_ context.Context, id string) (*db.Service, error) {
	s, ok := c[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (c fakeCatalog) List(_ context.Context) ([]db.Service, error) {
	var out []db.Service
	for _, s := range c {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type fakeAvailability map[scheduling.Date]db.AvailabilityBlock

func enabledOn(days ...scheduling.Date) fakeAvailability {
	f := fakeAvailability{}
	for _, d := range days {
		f[d] = db.AvailabilityBlock{Date: d, IsAvailable: true}
	}
	return f
}

func (f fakeAvailability) ListBetween(_ context.Context, from, to scheduling.Date) ([]db.AvailabilityBlock, error) {
	var out []db.AvailabilityBlock
	for _, d := range scheduling.DatesBetween(from, to) {
		if b, ok := f[d]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f fakeAvailability) Upsert(_ context.Context, block *db.AvailabilityBlock) error {
	block.ID = len(f) + 1
	block.UpdatedAt = testNow
	f[block.Date] = *block
	return nil
}

func (f fakeAvailability) Delete(_ context.Context, day scheduling.Date) error {
	if _, ok := f[day]; !ok {
		return repository.ErrNotFound
	}
	delete(f, day)
	return nil
}

type sentEvent struct {
	ID    string
	Event Event
}

type fakeNotifier struct {
	events []sentEvent
}

func (n *fakeNotifier) Notify(appt db.Appointment, event Event) {
	n.events = append(n.events, sentEvent{ID: appt.ID, Event: event})
}

var testCatalog = fakeCatalog{
	"manicure": {ID: "manicure", Name: "Manicure", Duration: 60, Price: 15},
	"gel":      {ID: "gel", Name: "Uñas de gel", Duration: 90, Price: 30},
	"retouch":  {ID: "retouch", Name: "Retoque", Duration: 30, Price: 8},
}

func appointment(id string, status scheduling.Status, start time.Time, minutes int) db.Appointment {
	return db.Appointment{
		ID:              id,
		ClientName:      "Cliente " + id,
		ClientPhone:     "0991234567",
		ServiceID:       "manicure",
		ServiceName:     "Manicure",
		ServiceDuration: minutes,
		Date:            start,
		Status:          status,
	}
}
