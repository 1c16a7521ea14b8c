package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"nailsalon/internal/scheduling"
)

// AppointmentRef is the id and status of an appointment picked up by a job.
type AppointmentRef struct {
	ID     string
	Status scheduling.Status
}

type JobRepository struct {
	DB *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{DB: db}
}

// ListConfirmedEndedBefore finds confirmed appointments whose service
// interval finished before t.
func (r *JobRepository) ListConfirmedEndedBefore(ctx context.Context, t time.Time) ([]AppointmentRef, error) {
	return r.listRefs(ctx, `
		SELECT a.id, a.status
		FROM appointments a
		JOIN services s ON s.id = a.service_id
		WHERE a.status = 'CONFIRMED'
			AND a.date + make_interval(mins => s.duration) < $1`, t)
}

// ListPendingStartedBefore finds requests nobody confirmed before their
// start time.
func (r *JobRepository) ListPendingStartedBefore(ctx context.Context, t time.Time) ([]AppointmentRef, error) {
	return r.listRefs(ctx, `
		SELECT a.id, a.status
		FROM appointments a
		WHERE a.status = 'PENDING' AND a.date < $1`, t)
}

func (r *JobRepository) listRefs(ctx context.Context, query string, t time.Time) ([]AppointmentRef, error) {
	rows, err := r.DB.QueryContext(ctx, query, t)
	if err != nil {
		return nil, fmt.Errorf("error querying appointments for job: %w", err)
	}
	defer rows.Close()

	var refs []AppointmentRef
	for rows.Next() {
		var ref AppointmentRef
		var status string
		if err := rows.Scan(&ref.ID, &status); err != nil {
			return nil, fmt.Errorf("error scanning appointment ref: %w", err)
		}
		ref.Status = scheduling.Status(status)
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rows: %w", err)
	}
	return refs, nil
}

// UpdateStatuses moves the given appointments from one status to
// another. Rows whose status changed in the meantime are left alone.
func (r *JobRepository) UpdateStatuses(ctx context.Context, ids []string, from, to scheduling.Status) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE appointments SET status = $1, updated_at = now() WHERE id = ANY($2) AND status = $3`,
		string(to), pq.Array(ids), string(from))
	if err != nil {
		return 0, fmt.Errorf("error updating appointment statuses: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		log.Warn().Err(err).Msg("could not get rows affected")
		return 0, nil
	}
	log.Info().Int64("count", n).Str("from", string(from)).Str("to", string(to)).Msg("updated appointment statuses")
	return n, nil
}
