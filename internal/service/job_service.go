package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"nailsalon/internal/repository"
	"nailsalon/internal/scheduling"
)

type JobStore interface {
	ListConfirmedEndedBefore(ctx context.Context, t time.Time) ([]repository.AppointmentRef, error)
	ListPendingStartedBefore(ctx context.Context, t time.Time) ([]repository.AppointmentRef, error)
	UpdateStatuses(ctx context.Context, ids []string, from, to scheduling.Status) (int64, error)
}

type JobService struct {
	Repo    JobStore
	metrics *Metrics
}

func NewJobService(repo JobStore, m *Metrics) *JobService {
	return &JobService{Repo: repo, metrics: m}
}

// CompleteFinishedAppointments marks confirmed appointments whose service
// ended before now as completed.
func (s *JobService) CompleteFinishedAppointments(ctx context.Context, now time.Time) (int64, error) {
	refs, err := s.Repo.ListConfirmedEndedBefore(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("cron job: failed to get finished appointments: %w", err)
	}
	return s.advance(ctx, refs, scheduling.StatusConfirmed, scheduling.StatusCompleted)
}

// CancelExpiredPending cancels requests that were never confirmed and
// whose start time has passed.
func (s *JobService) CancelExpiredPending(ctx context.Context, now time.Time) (int64, error) {
	refs, err := s.Repo.ListPendingStartedBefore(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("cron job: failed to get expired pending appointments: %w", err)
	}
	return s.advance(ctx, refs, scheduling.StatusPending, scheduling.StatusCancelled)
}

func (s *JobService) advance(ctx context.Context, refs []repository.AppointmentRef, from, to scheduling.Status) (int64, error) {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref.Status != from {
			continue
		}
		if err := scheduling.ValidateTransition(ref.Status, to); err != nil {
			log.Warn().Err(err).Str("appointment_id", ref.ID).Msg("cron job: skipping appointment")
			continue
		}
		ids = append(ids, ref.ID)
	}
	if len(ids) == 0 {
		log.Debug().Str("to", string(to)).Msg("cron job: nothing to update")
		return 0, nil
	}

	n, err := s.Repo.UpdateStatuses(ctx, ids, from, to)
	if err != nil {
		return 0, fmt.Errorf("cron job: failed to update appointment statuses: %w", err)
	}
	s.metrics.transitioned(from, to, int(n))
	log.Info().Int64("count", n).Str("from", string(from)).Str("to", string(to)).Msg("cron job: appointments updated")
	return n, nil
}
