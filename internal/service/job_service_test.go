package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nailsalon/internal/repository"
	"nailsalon/internal/scheduling"
)

type statusUpdate struct {
	IDs  []string
	From scheduling.Status
	To   scheduling.Status
}

type fakeJobStore struct {
	confirmed []repository.AppointmentRef
	pending   []repository.AppointmentRef
	listErr   error
	updates   []statusUpdate
	cutoffs   []time.Time
}

func (f *fakeJobStore) ListConfirmedEndedBefore(_ context.Context, t time.Time) ([]repository.AppointmentRef, error) {
	f.cutoffs = append(f.cutoffs, t)
	return f.confirmed, f.listErr
}

func (f *fakeJobStore) ListPendingStartedBefore(_ context.Context, t time.Time) ([]repository.AppointmentRef, error) {
	f.cutoffs = append(f.cutoffs, t)
	return f.pending, f.listErr
}

func (f *fakeJobStore) UpdateStatuses(_ context.Context, ids []string, from, to scheduling.Status) (int64, error) {
	f.updates = append(f.updates, statusUpdate{IDs: ids, From: from, To: to})
	return int64(len(ids)), nil
}

func TestCompleteFinishedAppointments(t *testing.T) {
	store := &fakeJobStore{confirmed: []repository.AppointmentRef{
		{ID: "a1", Status: scheduling.StatusConfirmed},
		{ID: "a2", Status: scheduling.StatusConfirmed},
		{ID: "a3", Status: scheduling.StatusCancelled},
	}}
	m := NewMetrics(prometheus.NewRegistry())
	svc := NewJobService(store, m)

	n, err := svc.CompleteFinishedAppointments(context.Background(), testNow)
	require.NoError(t, err)

	assert.EqualValues(t, 2, n)
	assert.Equal(t, []time.Time{testNow}, store.cutoffs)
	require.Len(t, store.updates, 1)
	assert.Equal(t, statusUpdate{IDs: []string{"a1", "a2"}, From: scheduling.StatusConfirmed, To: scheduling.StatusCompleted}, store.updates[0])
	assert.Equal(t, 2.0, testutil.ToFloat64(m.StatusTransitions.WithLabelValues("CONFIRMED", "COMPLETED")))
}

func TestCancelExpiredPending(t *testing.T) {
	store := &fakeJobStore{pending: []repository.AppointmentRef{
		{ID: "p1", Status: scheduling.StatusPending},
	}}
	svc := NewJobService(store, nil)

	n, err := svc.CancelExpiredPending(context.Background(), testNow)
	require.NoError(t, err)

	assert.EqualValues(t, 1, n)
	assert.Equal(t, scheduling.StatusCancelled, store.updates[0].To)
}

func TestJobNothingToDo(t *testing.T) {
	store := &fakeJobStore{}
	svc := NewJobService(store, nil)

	n, err := svc.CompleteFinishedAppointments(context.Background(), testNow)
	require.NoError(t, err)

	assert.Zero(t, n)
	assert.Empty(t, store.updates)
}

func TestJobListError(t *testing.T) {
	store := &fakeJobStore{listErr: errors.New("db down")}
	svc := NewJobService(store, nil)

	_, err := svc.CancelExpiredPending(context.Background(), testNow)
	assert.ErrorContains(t, err, "db down")
}
