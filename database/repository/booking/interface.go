// File: database/repository/booking/interface.go
package bookingRepo

import (
	"context"
	"errors"
	"time"

	"crewbook/models"
)

var (
	// ErrNotFound is returned when no booking has the requested id.
	ErrNotFound = errors.New("booking not found")
	// ErrStaleStatus is returned by the conditional writes when the stored status no
	// longer matches the expected one.
	ErrStaleStatus = errors.New("booking status changed concurrently")
)

type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// FindActiveBookingsForProfessional returns the professional's bookings in any of
	// statuses, or in any active status when none are given.
	FindActiveBookingsForProfessional(ctx context.Context, professionalID string, statuses ...models.BookingStatus) ([]models.Booking, error)
	Insert(ctx context.Context, booking *models.Booking) (*models.Booking, error)
	UpdateStatusIfCurrent(ctx context.Context, id string, expected, next models.BookingStatus, fields models.StatusFields) (*models.Booking, error)
	UpdateTermsIfCurrent(ctx context.Context, id string, expected models.BookingStatus, terms models.Terms, updatedAt time.Time) (*models.Booking, error)
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error)
	// RunForProfessional runs fn so that no other RunForProfessional call for the same
	// professional interleaves with it. Repository calls inside fn must use the ctx it
	// is given.
	RunForProfessional(ctx context.Context, professionalID string, fn func(ctx context.Context) error) error
}

func statusesOrActive(statuses []models.BookingStatus) []models.BookingStatus {
	if len(statuses) == 0 {
		return models.ActiveStatuses
	}
	return statuses
}
