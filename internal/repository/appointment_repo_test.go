package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nailsalon/internal/db"
	"nailsalon/internal/scheduling"
)

var appointmentColumns = []string{
	"id", "client_name", "client_phone", "client_email", "service_id", "name", "duration",
	"date", "status", "notes", "created_at", "updated_at",
}

var testDay = scheduling.Date{Year: 2025, Month: time.March, Day: 14}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn, mock
}

func TestAppointmentGet(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewAppointmentRepository(conn)
	start := testDay.At(10 * time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE a.id = $1")).
		WithArgs("a1").
		WillReturnRows(sqlmock.NewRows(appointmentColumns).AddRow(
			"a1", "Ana", "0991234567", "", "manicure", "Manicure", 60,
			start.In(scheduling.Location), "CONFIRMED", "", start, start,
		))

	appt, err := repo.Get(context.Background(), "a1")
	require.NoError(t, err)

	assert.Equal(t, scheduling.StatusConfirmed, appt.Status)
	assert.Equal(t, time.UTC, appt.Date.Location())
	assert.True(t, appt.Date.Equal(start))
	assert.WithinDuration(t, start.Add(time.Hour), appt.End(), 0)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentGetNotFound(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewAppointmentRepository(conn)

	mock.ExpectQuery("FROM appointments").WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAppointmentListFilters(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewAppointmentRepository(conn)

	mock.ExpectQuery(regexp.QuoteMeta("AND a.date >= $1 AND a.date < $2 AND a.status = $3 ORDER BY a.date DESC LIMIT $4 OFFSET $5")).
		WithArgs(testDay.Start(), testDay.AddDays(1).Start(), "PENDING", 20, 40).
		WillReturnRows(sqlmock.NewRows(appointmentColumns))

	appts, err := repo.List(context.Background(), AppointmentFilter{
		Date:   testDay,
		Status: scheduling.StatusPending,
		Limit:  20,
		Offset: 40,
	})
	require.NoError(t, err)
	assert.Empty(t, appts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentDelete(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewAppointmentRepository(conn)

	mock.ExpectExec("DELETE FROM appointments").WithArgs("a1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM appointments").WithArgs("a2").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "a1"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "a2"), ErrNotFound)
}

func TestRunLockedTakesSortedDayLocks(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewAppointmentRepository(conn)
	later := testDay.AddDays(3)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock($1, $2)")).
		WithArgs(appointmentLockSpace, int32(testDay.Ordinal())).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock($1, $2)")).
		WithArgs(appointmentLockSpace, int32(later.Ordinal())).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("INSERT INTO appointments").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(time.Now(), time.Now()))
	mock.ExpectCommit()

	err := repo.RunLocked(context.Background(), []scheduling.Date{later, testDay, later}, func(tx AppointmentTx) error {
		return tx.Insert(context.Background(), &db.Appointment{
			ID:          "a1",
			ClientName:  "Ana",
			ClientPhone: "0991234567",
			ServiceID:   "manicure",
			Date:        testDay.At(10 * time.Hour),
			Status:      scheduling.StatusPending,
		})
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunLockedRollsBackOnError(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewAppointmentRepository(conn)
	boom := errors.New("conflict")

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.RunLocked(context.Background(), []scheduling.Date{testDay}, func(AppointmentTx) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListActiveBetweenOnlyBlockingStatuses(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewAppointmentRepository(conn)
	from, to := testDay.Start(), testDay.AddDays(1).Start()

	mock.ExpectQuery(regexp.QuoteMeta("a.status IN ('PENDING', 'CONFIRMED')")).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows(appointmentColumns))

	_, err := repo.ListActiveBetween(context.Background(), from, to)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateNotFound(t *testing.T) {
	conn, mock := newMock(t)

	mock.ExpectQuery("UPDATE appointments").WillReturnError(sql.ErrNoRows)

	err := appointmentQueries{q: conn}.Update(context.Background(), &db.Appointment{ID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDayLockKeys(t *testing.T) {
	keys := dayLockKeys([]scheduling.Date{testDay.AddDays(1), testDay, testDay.AddDays(1)})
	assert.Equal(t, []int32{int32(testDay.Ordinal()), int32(testDay.Ordinal()) + 1}, keys)
}
