package booking

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"crewbook/models"
)

type mockBookingRepo struct {
	mock.Mock
}

func (m *mockBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*models.Booking)
	return b, args.Error(1)
}

func (m *mockBookingRepo) FindActiveBookingsForProfessional(ctx context.Context, professionalID string, statuses ...models.BookingStatus) ([]models.Booking, error) {
	args := m.Called(ctx, professionalID, statuses)
	bookings, _ := args.Get(0).([]models.Booking)
	return bookings, args.Error(1)
}

func (m *mockBookingRepo) Insert(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	args := m.Called(ctx, booking)
	b, _ := args.Get(0).(*models.Booking)
	return b, args.Error(1)
}

func (m *mockBookingRepo) UpdateStatusIfCurrent(ctx context.Context, id string, expected, next models.BookingStatus, fields models.StatusFields) (*models.Booking, error) {
	args := m.Called(ctx, id, expected, next, fields)
	b, _ := args.Get(0).(*models.Booking)
	return b, args.Error(1)
}

func (m *mockBookingRepo) UpdateTermsIfCurrent(ctx context.Context, id string, expected models.BookingStatus, terms models.Terms, updatedAt time.Time) (*models.Booking, error) {
	args := m.Called(ctx, id, expected, terms, updatedAt)
	b, _ := args.Get(0).(*models.Booking)
	return b, args.Error(1)
}

func (m *mockBookingRepo) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	args := m.Called(ctx, filter)
	bookings, _ := args.Get(0).([]models.Booking)
	return bookings, args.Error(1)
}

func (m *mockBookingRepo) RunForProfessional(ctx context.Context, professionalID string, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, professionalID)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Dispatch(ctx context.Context, n models.Notification) error {
	return m.Called(ctx, n).Error(0)
}

type mockReminders struct {
	mock.Mock
}

func (m *mockReminders) ScheduleReminder(ctx context.Context, r models.ReminderPayload) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockReminders) CancelReminders(ctx context.Context, bookingID string) error {
	return m.Called(ctx, bookingID).Error(0)
}
