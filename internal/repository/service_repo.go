package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"nailsalon/internal/db"
)

// ServiceRepository reads the service catalogue. Services are managed
// elsewhere; booking only needs their duration.
type ServiceRepository struct {
	DB *sql.DB
}

func NewServiceRepository(db *sql.DB) *ServiceRepository {
	return &ServiceRepository{DB: db}
}

func (r *ServiceRepository) GetByID(ctx context.Context, id string) (*db.Service, error) {
	var s db.Service
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name, duration, price FROM services WHERE id = $1`, id,
	).Scan(&s.ID, &s.Name, &s.Duration, &s.Price)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("service %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("error querying service %s: %w", id, err)
	}
	return &s, nil
}

func (r *ServiceRepository) List(ctx context.Context) ([]db.Service, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, name, duration, price FROM services ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("error listing services: %w", err)
	}
	defer rows.Close()

	var services []db.Service
	for rows.Next() {
		var s db.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Duration, &s.Price); err != nil {
			return nil, fmt.Errorf("error scanning service: %w", err)
		}
		services = append(services, s)
	}
	return services, rows.Err()
}
