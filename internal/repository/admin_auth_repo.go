package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"nailsalon/internal/db"
)

type AdminAuthRepository interface {
	GetByEmail(ctx context.Context, email string) (*db.Admin, error)
	CreateNewUser(ctx context.Context, email, password string) error
}

type adminAuthRepository struct {
	db *sql.DB
}

func NewAdminAuthRepository(db *sql.DB) AdminAuthRepository {
	return &adminAuthRepository{db: db}
}

// GetByEmail returns nil, nil when no admin has that email.
func (r *adminAuthRepository) GetByEmail(ctx context.Context, email string) (*db.Admin, error) {
	var admin db.Admin
	err := r.db.QueryRowContext(ctx, `SELECT id, email, password_hash FROM admins WHERE email = $1`, email).
		Scan(&admin.ID, &admin.Email, &admin.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying admin: %w", err)
	}
	return &admin, nil
}

func (r *adminAuthRepository) CreateNewUser(ctx context.Context, email, password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `INSERT INTO admins (email, password_hash) VALUES ($1, $2)`, email, string(hashed)); err != nil {
		return fmt.Errorf("error creating admin: %w", err)
	}
	return nil
}
