package booking

import (
	"context"
	"errors"

	"go.uber.org/zap"

	participantRepo "crewbook/database/repository/participant"
	"crewbook/models"
	"crewbook/services/cache"
)

// Get returns a booking the actor participates in, served from cache when warm.
func (s *Service) Get(ctx context.Context, actor models.Actor, id string) (*models.Booking, error) {
	var b models.Booking
	found, err := s.cache.Get(ctx, detailsKey(id), &b)
	if err != nil || !found {
		loaded, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, mapRepoError(err)
		}
		b = s.cacheDetails(ctx, *loaded)
	}
	if err := s.authorize(ctx, &b, actor); err != nil {
		return nil, err
	}
	return &b, nil
}

// cacheDetails stores b under its details key unless the cache already holds a later
// copy, and returns the later of the two. A read that loaded b before a concurrent
// transition committed cannot overwrite the copy the transition's subscriber wrote.
func (s *Service) cacheDetails(ctx context.Context, b models.Booking) models.Booking {
	mu := s.detailsLock(b.ID)
	mu.Lock()
	defer mu.Unlock()

	var cached models.Booking
	found, err := s.cache.Get(ctx, detailsKey(b.ID), &cached)
	if err == nil && found && supersedes(cached, b) {
		return cached
	}
	if err := s.cache.Set(ctx, detailsKey(b.ID), b, s.bookingTTL); err != nil {
		s.logger.Warn("Failed to cache booking", zap.String("bookingId", b.ID), zap.Error(err))
	}
	return b
}

// supersedes reports whether a is a later version of the same booking than b. Status
// only moves forward, so it breaks ties between writes in the same instant.
func supersedes(a, b models.Booking) bool {
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.UpdatedAt.After(b.UpdatedAt)
	}
	return statusRank(a.Status) > statusRank(b.Status)
}

func statusRank(status models.BookingStatus) int {
	switch status {
	case models.StatusPending:
		return 0
	case models.StatusConfirmed:
		return 1
	case models.StatusInProgress:
		return 2
	default:
		return 3
	}
}

// ListForProfessional lists the professional's bookings, optionally by status. Only the
// professional's own user may list them.
func (s *Service) ListForProfessional(ctx context.Context, actor models.Actor, professionalID string, status *models.BookingStatus) ([]models.Booking, error) {
	if err := s.requireSelf(ctx, actor, models.RoleProfessional, professionalID); err != nil {
		return nil, err
	}
	return cache.Wrap(ctx, s.cache, professionalListKey(professionalID, status), s.bookingTTL, func(ctx context.Context) ([]models.Booking, error) {
		return s.repo.List(ctx, models.BookingFilter{Status: status, ProfessionalID: &professionalID})
	})
}

// ListForPlanner lists the planner's bookings, optionally by status.
func (s *Service) ListForPlanner(ctx context.Context, actor models.Actor, plannerID string, status *models.BookingStatus) ([]models.Booking, error) {
	if err := s.requireSelf(ctx, actor, models.RolePlanner, plannerID); err != nil {
		return nil, err
	}
	return cache.Wrap(ctx, s.cache, plannerListKey(plannerID, status), s.bookingTTL, func(ctx context.Context) ([]models.Booking, error) {
		return s.repo.List(ctx, models.BookingFilter{Status: status, EventPlannerID: &plannerID})
	})
}

func (s *Service) requireSelf(ctx context.Context, actor models.Actor, role models.Role, id string) error {
	if actor.Role != role {
		return ErrUnauthorized
	}
	p, err := s.participant(ctx, role, id)
	if errors.Is(err, participantRepo.ErrNotFound) {
		return ErrUnauthorized
	}
	if err != nil {
		return err
	}
	if p.UserID != actor.UserID {
		return ErrUnauthorized
	}
	return nil
}
