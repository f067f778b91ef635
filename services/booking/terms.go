package booking

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	bookingRepo "crewbook/database/repository/booking"
	"crewbook/models"
)

// UpdateTerms changes rate and currency. Either participant may renegotiate while the
// booking is PENDING; afterwards the terms are fixed.
func (s *Service) UpdateTerms(ctx context.Context, actor models.Actor, id string, terms models.Terms) (*models.Booking, error) {
	terms.Currency = strings.ToUpper(strings.TrimSpace(terms.Currency))
	inputErr := newInputError()
	validateTerms(inputErr, terms)
	if !inputErr.empty() {
		return nil, inputErr
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if err := s.authorize(ctx, current, actor); err != nil {
		return nil, err
	}
	if current.Status != models.StatusPending {
		return nil, ErrTermsLocked
	}

	old := models.Terms{Rate: current.Rate, Currency: current.Currency}
	if old == terms {
		return current, nil
	}

	updated, err := s.repo.UpdateTermsIfCurrent(ctx, id, models.StatusPending, terms, s.now())
	if errors.Is(err, bookingRepo.ErrStaleStatus) {
		return nil, ErrTermsLocked
	}
	if err != nil {
		return nil, mapRepoError(err)
	}

	s.logger.Info("Booking terms changed",
		zap.String("bookingId", id),
		zap.Float64("rate", terms.Rate),
		zap.String("currency", terms.Currency),
	)
	s.publish(models.EventBookingTermsChanged, models.BookingTermsChanged{
		BookingID: id,
		Old:       old,
		New:       terms,
		ActorRole: actor.Role,
		Booking:   *updated,
	})
	return updated, nil
}
