package booking

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap"

	participantRepo "crewbook/database/repository/participant"
	"crewbook/models"
)

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Create books a professional for the planner acting as actor. The booking starts
// PENDING. The duplicate-event check, the conflict check and the insert run as one unit
// per professional.
func (s *Service) Create(ctx context.Context, actor models.Actor, in models.CreateBookingInput) (*models.Booking, error) {
	in = normalizeCreateInput(in)
	if err := validateCreateInput(in); err != nil {
		return nil, err
	}
	if actor.Role != models.RolePlanner || actor.UserID == "" {
		return nil, ErrUnauthorized
	}

	planner, err := s.participant(ctx, models.RolePlanner, in.EventPlannerID)
	if errors.Is(err, participantRepo.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if planner.UserID != actor.UserID {
		return nil, ErrUnauthorized
	}

	if _, err := s.participant(ctx, models.RoleProfessional, in.ProfessionalID); err != nil {
		if errors.Is(err, participantRepo.ErrNotFound) {
			inputErr := newInputError()
			inputErr.addError("professionalId", "unknown professional")
			return nil, inputErr
		}
		return nil, err
	}

	now := s.now()
	booking := &models.Booking{
		ID:             s.newID(),
		ProfessionalID: in.ProfessionalID,
		EventPlannerID: in.EventPlannerID,
		EventID:        in.EventID,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		Status:         models.StatusPending,
		Rate:           in.Rate,
		Currency:       in.Currency,
		Notes:          in.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	var created *models.Booking
	err = s.repo.RunForProfessional(ctx, in.ProfessionalID, func(ctx context.Context) error {
		eventID := in.EventID
		professionalID := in.ProfessionalID
		sameEvent, err := s.repo.List(ctx, models.BookingFilter{ProfessionalID: &professionalID, EventID: &eventID})
		if err != nil {
			return err
		}
		for _, b := range sameEvent {
			if b.Status.IsActive() {
				return ErrDuplicateEventBooking
			}
		}

		conflict, err := s.detector.FindConflict(ctx, in.ProfessionalID, in.StartDate, in.EndDate, "")
		if err != nil {
			return err
		}
		if conflict != nil {
			return &ConflictDetectedError{BookingID: conflict.ID, StartDate: conflict.StartDate, EndDate: conflict.EndDate}
		}

		created, err = s.repo.Insert(ctx, booking)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Booking created",
		zap.String("bookingId", created.ID),
		zap.String("professionalId", created.ProfessionalID),
		zap.String("eventPlannerId", created.EventPlannerID),
	)
	s.publish(models.EventBookingCreated, models.BookingCreated{Booking: *created, Actor: actor})
	return created, nil
}

func normalizeCreateInput(in models.CreateBookingInput) models.CreateBookingInput {
	in.ProfessionalID = strings.TrimSpace(in.ProfessionalID)
	in.EventPlannerID = strings.TrimSpace(in.EventPlannerID)
	in.EventID = strings.TrimSpace(in.EventID)
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	in.StartDate = in.StartDate.UTC()
	in.EndDate = in.EndDate.UTC()
	return in
}

func validateCreateInput(in models.CreateBookingInput) error {
	inputErr := newInputError()
	if in.ProfessionalID == "" {
		inputErr.addError("professionalId", "is required")
	}
	if in.EventPlannerID == "" {
		inputErr.addError("eventPlannerId", "is required")
	}
	if in.EventID == "" {
		inputErr.addError("eventId", "is required")
	}
	if in.StartDate.IsZero() {
		inputErr.addError("startDate", "is required")
	}
	if in.EndDate.IsZero() {
		inputErr.addError("endDate", "is required")
	}
	if !in.StartDate.IsZero() && !in.EndDate.IsZero() && !in.StartDate.Before(in.EndDate) {
		inputErr.addError("endDate", "must be after startDate")
	}
	validateTerms(inputErr, models.Terms{Rate: in.Rate, Currency: in.Currency})
	if inputErr.empty() {
		return nil
	}
	return inputErr
}

func validateTerms(inputErr *InputError, terms models.Terms) {
	if terms.Rate < 0 {
		inputErr.addError("rate", "must not be negative")
	}
	if !currencyPattern.MatchString(terms.Currency) {
		inputErr.addError("currency", "must be a 3-letter ISO code")
	}
}
