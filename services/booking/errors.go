package booking

import (
	"errors"
	"fmt"
	"time"

	"crewbook/models"
)

var (
	ErrBookingNotFound       = errors.New("booking not found")
	ErrUnauthorized          = errors.New("actor is not a participant of this booking")
	ErrConflictingUpdate     = errors.New("booking was updated concurrently, please retry")
	ErrDuplicateEventBooking = errors.New("professional already has an active booking for this event")
	ErrTermsLocked           = errors.New("booking terms can only change while the booking is pending")
)

// InvalidTransitionError is returned when the actor's role may not move a booking from
// Current to Requested.
type InvalidTransitionError struct {
	Current   models.BookingStatus
	Requested models.BookingStatus
	Role      models.Role
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s may not move a booking from %s to %s", e.Role, e.Current, e.Requested)
}

func IsInvalidTransition(err error) *InvalidTransitionError {
	if err == nil {
		return nil
	}
	var transitionErr *InvalidTransitionError
	if errors.As(err, &transitionErr) {
		return transitionErr
	}
	return nil
}

// ConflictDetectedError reports the existing booking that overlaps a requested range.
type ConflictDetectedError struct {
	BookingID string
	StartDate time.Time
	EndDate   time.Time
}

func (e *ConflictDetectedError) Error() string {
	return fmt.Sprintf("professional is already booked from %s to %s",
		e.StartDate.UTC().Format(time.RFC3339), e.EndDate.UTC().Format(time.RFC3339))
}

func IsConflictDetected(err error) *ConflictDetectedError {
	if err == nil {
		return nil
	}
	var conflictErr *ConflictDetectedError
	if errors.As(err, &conflictErr) {
		return conflictErr
	}
	return nil
}

// InputError collects validation failures per field.
type InputError struct {
	fields map[string][]string
}

func newInputError() *InputError {
	return &InputError{fields: make(map[string][]string)}
}

func IsInputError(err error) *InputError {
	if err == nil {
		return nil
	}
	var inputErr *InputError
	if errors.As(err, &inputErr) {
		return inputErr
	}
	return nil
}

func (e *InputError) addError(field, msg string) {
	e.fields[field] = append(e.fields[field], msg)
}

func (e *InputError) empty() bool {
	return len(e.fields) == 0
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input: %+v", e.fields)
}

func (e *InputError) Fields() map[string][]string {
	return e.fields
}
