package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"nailsalon/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingJWTSecret   = errors.New("JWT_SECRET not set")
)

const tokenTTL = time.Hour

type AdminAuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
	CreateAdmin(ctx context.Context, email, password string) error
}

type adminAuthService struct {
	repo   repository.AdminAuthRepository
	secret []byte
	now    func() time.Time
}

func NewAdminAuthService(repo repository.AdminAuthRepository, secret string) AdminAuthService {
	return &adminAuthService{repo: repo, secret: []byte(secret), now: time.Now}
}

func (s *adminAuthService) Login(ctx context.Context, email, password string) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrMissingJWTSecret
	}
	admin, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", err
	}
	if admin == nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	claims := jwt.MapClaims{
		"admin_id": admin.ID,
		"email":    admin.Email,
		"exp":      s.now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *adminAuthService) CreateAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return errors.New("email and password cannot be empty")
	}
	return s.repo.CreateNewUser(ctx, email, password)
}
