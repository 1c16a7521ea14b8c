package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"nailsalon/internal/db"
	"nailsalon/internal/scheduling"
)

// AvailabilityRepository stores the day allow-list. Days are DATE values
// in salon time and travel as YYYY-MM-DD strings.
type AvailabilityRepository struct {
	DB *sql.DB
}

func NewAvailabilityRepository(db *sql.DB) *AvailabilityRepository {
	return &AvailabilityRepository{DB: db}
}

func (r *AvailabilityRepository) ListBetween(ctx context.Context, from, to scheduling.Date) ([]db.AvailabilityBlock, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, date, is_available, COALESCE(note, ''), updated_at
		FROM availability
		WHERE date BETWEEN $1::date AND $2::date
		ORDER BY date`, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("error querying availability: %w", err)
	}
	defer rows.Close()

	var blocks []db.AvailabilityBlock
	for rows.Next() {
		var b db.AvailabilityBlock
		var day time.Time
		if err := rows.Scan(&b.ID, &day, &b.IsAvailable, &b.Note, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning availability: %w", err)
		}
		b.Date = scheduling.CalendarDate(day)
		blocks = append(blocks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating availability rows: %w", err)
	}
	return blocks, nil
}

func (r *AvailabilityRepository) Upsert(ctx context.Context, block *db.AvailabilityBlock) error {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO availability (date, is_available, note, updated_at)
		VALUES ($1::date, $2, NULLIF($3, ''), now())
		ON CONFLICT (date) DO UPDATE
		SET is_available = EXCLUDED.is_available,
			note = EXCLUDED.note,
			updated_at = now()
		RETURNING id, updated_at`,
		block.Date.String(), block.IsAvailable, block.Note,
	).Scan(&block.ID, &block.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error saving availability for %s: %w", block.Date, err)
	}
	return nil
}

func (r *AvailabilityRepository) Delete(ctx context.Context, day scheduling.Date) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM availability WHERE date = $1::date`, day.String())
	if err != nil {
		return fmt.Errorf("error deleting availability for %s: %w", day, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("availability %s: %w", day, ErrNotFound)
	}
	return nil
}
