package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"nailsalon/internal/db"
	apperr "nailsalon/internal/errors"
	"nailsalon/internal/scheduling"
)

// AvailabilityService manages the day allow-list. A day with no row, or
// with is_available=false, takes no bookings.
type AvailabilityService struct {
	Repo AvailabilityStore
}

// maxListDays bounds one admin calendar query to about a year.
const maxListDays = 366

func NewAvailabilityService(repo AvailabilityStore) *AvailabilityService {
	return &AvailabilityService{Repo: repo}
}

func (s *AvailabilityService) List(ctx context.Context, from, to scheduling.Date) ([]db.AvailabilityBlock, error) {
	if from.IsZero() || to.IsZero() {
		return nil, apperr.ErrBadRequest("los parámetros from y to son obligatorios")
	}
	if to.Before(from) {
		return nil, apperr.ErrBadRequest("to no puede ser anterior a from")
	}
	if span := int(to.Ordinal()-from.Ordinal()) + 1; span > maxListDays {
		return nil, apperr.ErrBadRequest("rango de fechas demasiado amplio")
	}
	return s.Repo.ListBetween(ctx, from, to)
}

// SetDay enables or blocks one day. Existing appointments on a blocked
// day are left alone; only new bookings are refused.
func (s *AvailabilityService) SetDay(ctx context.Context, day scheduling.Date, available bool, note string) (*db.AvailabilityBlock, error) {
	if day.IsZero() {
		return nil, apperr.ErrBadRequest("fecha inválida")
	}
	block := &db.AvailabilityBlock{Date: day, IsAvailable: available, Note: strings.TrimSpace(note)}
	if err := s.Repo.Upsert(ctx, block); err != nil {
		return nil, fmt.Errorf("error setting availability: %w", err)
	}
	log.Info().Str("date", day.String()).Bool("is_available", available).Msg("availability updated")
	return block, nil
}

func (s *AvailabilityService) RemoveDay(ctx context.Context, day scheduling.Date) error {
	if err := s.Repo.Delete(ctx, day); err != nil {
		return notFound(err, "no hay disponibilidad registrada para esa fecha")
	}
	log.Info().Str("date", day.String()).Msg("availability removed")
	return nil
}
