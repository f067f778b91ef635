package booking

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"crewbook/models"
)

// UpdateStatus applies one state machine step on behalf of actor. Requesting the current
// status returns the booking unchanged. Confirming re-runs conflict detection so two
// overlapping requests cannot both be accepted. A concurrent write between the read and
// the conditional update yields ErrConflictingUpdate.
func (s *Service) UpdateStatus(ctx context.Context, actor models.Actor, id string, in models.UpdateStatusInput) (*models.Booking, error) {
	if !in.Status.IsValid() {
		inputErr := newInputError()
		inputErr.addError("status", "unknown status")
		return nil, inputErr
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if err := s.authorize(ctx, current, actor); err != nil {
		return nil, err
	}

	next, fields, changed, err := Transition(*current, actor.Role, in.Status, in.CancellationReason, s.now())
	if err != nil {
		return nil, err
	}
	if !changed {
		return current, nil
	}

	var updated = &next
	persist := func(ctx context.Context) error {
		var err error
		updated, err = s.repo.UpdateStatusIfCurrent(ctx, id, current.Status, next.Status, fields)
		return err
	}

	if next.Status == models.StatusConfirmed {
		err = s.repo.RunForProfessional(ctx, current.ProfessionalID, func(ctx context.Context) error {
			conflict, err := s.detector.FindConflict(ctx, current.ProfessionalID, current.StartDate, current.EndDate, current.ID)
			if err != nil {
				return err
			}
			if conflict != nil {
				return &ConflictDetectedError{BookingID: conflict.ID, StartDate: conflict.StartDate, EndDate: conflict.EndDate}
			}
			return persist(ctx)
		})
	} else {
		err = persist(ctx)
	}
	if err != nil {
		return nil, mapRepoError(err)
	}

	s.logger.Info("Booking status changed",
		zap.String("bookingId", id),
		zap.String("from", current.Status.String()),
		zap.String("to", updated.Status.String()),
		zap.String("role", string(actor.Role)),
	)
	s.publish(models.EventBookingStatusChanged, models.BookingStatusChanged{
		BookingID: id,
		OldStatus: current.Status,
		NewStatus: updated.Status,
		ActorRole: actor.Role,
		Booking:   *updated,
	})
	return updated, nil
}

// UpdateStatusWithRetry calls UpdateStatus again against fresh state while it loses the
// optimistic race, up to the configured number of retries.
func (s *Service) UpdateStatusWithRetry(ctx context.Context, actor models.Actor, id string, in models.UpdateStatusInput) (*models.Booking, error) {
	for attempt := 0; ; attempt++ {
		updated, err := s.UpdateStatus(ctx, actor, id, in)
		if !errors.Is(err, ErrConflictingUpdate) || attempt >= s.retries {
			return updated, err
		}
		s.logger.Debug("Retrying status update after concurrent write",
			zap.String("bookingId", id),
			zap.Int("attempt", attempt+1),
		)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
}
