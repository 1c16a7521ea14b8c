package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"nailsalon/internal/db"
	"nailsalon/internal/scheduling"
)

var ErrNotFound = errors.New("not found")

// appointmentLockSpace namespaces the per-day advisory locks
// (pg_advisory_xact_lock(int, int)).
const appointmentLockSpace int32 = 4201

const appointmentSelect = `
	SELECT a.id, a.client_name, a.client_phone, COALESCE(a.client_email, ''),
		a.service_id, s.name, s.duration,
		a.date, a.status, COALESCE(a.notes, ''), a.created_at, a.updated_at
	FROM appointments a
	JOIN services s ON s.id = a.service_id`

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// AppointmentTx is what a caller holding the day lock may do.
type AppointmentTx interface {
	GetForUpdate(ctx context.Context, id string) (*db.Appointment, error)
	ListActiveBetween(ctx context.Context, from, to time.Time) ([]db.Appointment, error)
	Insert(ctx context.Context, appt *db.Appointment) error
	Update(ctx context.Context, appt *db.Appointment) error
}

type AppointmentFilter struct {
	Date   scheduling.Date
	Status scheduling.Status
	Limit  int
	Offset int
}

type AppointmentRepository struct {
	DB *sql.DB
}

func NewAppointmentRepository(db *sql.DB) *AppointmentRepository {
	return &AppointmentRepository{DB: db}
}

func (r *AppointmentRepository) Get(ctx context.Context, id string) (*db.Appointment, error) {
	row := r.DB.QueryRowContext(ctx, appointmentSelect+` WHERE a.id = $1`, id)
	appt, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("appointment %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("error querying appointment %s: %w", id, err)
	}
	return appt, nil
}

func (r *AppointmentRepository) List(ctx context.Context, f AppointmentFilter) ([]db.Appointment, error) {
	query := appointmentSelect + ` WHERE 1=1`
	args := []any{}
	idx := 1

	if !f.Date.IsZero() {
		query += " AND a.date >= $" + strconv.Itoa(idx) + " AND a.date < $" + strconv.Itoa(idx+1)
		args = append(args, f.Date.Start(), f.Date.AddDays(1).Start())
		idx += 2
	}
	if f.Status != "" {
		query += " AND a.status = $" + strconv.Itoa(idx)
		args = append(args, string(f.Status))
		idx++
	}
	query += " ORDER BY a.date DESC"
	if f.Limit > 0 {
		query += " LIMIT $" + strconv.Itoa(idx) + " OFFSET $" + strconv.Itoa(idx+1)
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing appointments: %w", err)
	}
	return collectAppointments(rows)
}

func (r *AppointmentRepository) ListActiveBetween(ctx context.Context, from, to time.Time) ([]db.Appointment, error) {
	return appointmentQueries{q: r.DB}.ListActiveBetween(ctx, from, to)
}

func (r *AppointmentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting appointment %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("appointment %s: %w", id, ErrNotFound)
	}
	return nil
}

// RunLocked runs fn in a transaction holding the advisory lock of every
// given day. Two writers touching the same day are serialized, which
// closes the read-then-write window of the conflict check.
func (r *AppointmentRepository) RunLocked(ctx context.Context, days []scheduling.Date, fn func(AppointmentTx) error) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Warn().Err(rbErr).Msg("rollback failed")
		}
	}()

	for _, key := range dayLockKeys(days) {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1, $2)`, appointmentLockSpace, key); err != nil {
			return fmt.Errorf("error locking day %d: %w", key, err)
		}
	}

	if err := fn(appointmentQueries{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

// dayLockKeys dedups and sorts so concurrent multi-day locks are always
// taken in the same order.
func dayLockKeys(days []scheduling.Date) []int32 {
	seen := make(map[int32]bool, len(days))
	keys := make([]int32, 0, len(days))
	for _, d := range days {
		k := int32(d.Ordinal())
		if seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

type appointmentQueries struct {
	q querier
}

func (a appointmentQueries) GetForUpdate(ctx context.Context, id string) (*db.Appointment, error) {
	row := a.q.QueryRowContext(ctx, appointmentSelect+` WHERE a.id = $1 FOR UPDATE OF a`, id)
	appt, err := scanAppointment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("appointment %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("error locking appointment %s: %w", id, err)
	}
	return appt, nil
}

// ListActiveBetween returns PENDING and CONFIRMED appointments whose
// interval touches [from, to).
func (a appointmentQueries) ListActiveBetween(ctx context.Context, from, to time.Time) ([]db.Appointment, error) {
	rows, err := a.q.QueryContext(ctx, appointmentSelect+`
		WHERE a.status IN ('PENDING', 'CONFIRMED')
			AND a.date < $2
			AND a.date + make_interval(mins => s.duration) > $1
		ORDER BY a.date ASC`, from, to)
	if err != nil {
		return nil, fmt.Errorf("error querying active appointments: %w", err)
	}
	return collectAppointments(rows)
}

func (a appointmentQueries) Insert(ctx context.Context, appt *db.Appointment) error {
	err := a.q.QueryRowContext(ctx, `
		INSERT INTO appointments
			(id, client_name, client_phone, client_email, service_id, date, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, NULLIF($8, ''), now(), now())
		RETURNING created_at, updated_at`,
		appt.ID,
		appt.ClientName,
		appt.ClientPhone,
		appt.ClientEmail,
		appt.ServiceID,
		appt.Date,
		string(appt.Status),
		appt.Notes,
	).Scan(&appt.CreatedAt, &appt.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error inserting appointment: %w", err)
	}
	return nil
}

func (a appointmentQueries) Update(ctx context.Context, appt *db.Appointment) error {
	err := a.q.QueryRowContext(ctx, `
		UPDATE appointments
		SET client_name = $2,
			client_phone = $3,
			client_email = NULLIF($4, ''),
			date = $5,
			status = $6,
			notes = NULLIF($7, ''),
			updated_at = now()
		WHERE id = $1
		RETURNING updated_at`,
		appt.ID,
		appt.ClientName,
		appt.ClientPhone,
		appt.ClientEmail,
		appt.Date,
		string(appt.Status),
		appt.Notes,
	).Scan(&appt.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("appointment %s: %w", appt.ID, ErrNotFound)
		}
		return fmt.Errorf("error updating appointment %s: %w", appt.ID, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAppointment(s scanner) (*db.Appointment, error) {
	var appt db.Appointment
	var status string
	err := s.Scan(
		&appt.ID, &appt.ClientName, &appt.ClientPhone, &appt.ClientEmail,
		&appt.ServiceID, &appt.ServiceName, &appt.ServiceDuration,
		&appt.Date, &status, &appt.Notes, &appt.CreatedAt, &appt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	appt.Status = scheduling.Status(status)
	appt.Date = appt.Date.UTC()
	return &appt, nil
}

func collectAppointments(rows *sql.Rows) ([]db.Appointment, error) {
	defer rows.Close()

	var appts []db.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning appointment: %w", err)
		}
		appts = append(appts, *appt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating appointment rows: %w", err)
	}
	return appts, nil
}
