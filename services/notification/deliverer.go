package notification

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	bookingRepo "crewbook/database/repository/booking"
	participantRepo "crewbook/database/repository/participant"
	"crewbook/models"
)

// BookingLookup reads the current state of a booking.
type BookingLookup interface {
	GetByID(ctx context.Context, id string) (*models.Booking, error)
}

// Deliverer turns queued notifications and reminders into pushes to the recipient's
// registered device.
type Deliverer struct {
	devices  participantRepo.ParticipantRepository
	bookings BookingLookup
	push     PushSender
	logger   *zap.Logger
}

func NewDeliverer(devices participantRepo.ParticipantRepository, bookings BookingLookup, push PushSender, logger *zap.Logger) *Deliverer {
	return &Deliverer{devices: devices, bookings: bookings, push: push, logger: logger}
}

func (d *Deliverer) DeliverNotification(ctx context.Context, n models.Notification) error {
	data := make(map[string]string, len(n.Metadata)+2)
	for k, v := range n.Metadata {
		data[k] = v
	}
	data["notificationId"] = n.ID
	data["type"] = n.Type
	return d.deliver(ctx, n.RecipientUserID, n.Title, n.Message, data)
}

// DeliverReminder pushes a start reminder if its booking is still confirmed.
func (d *Deliverer) DeliverReminder(ctx context.Context, r models.ReminderPayload) error {
	if r.BookingID != "" {
		b, err := d.bookings.GetByID(ctx, r.BookingID)
		if errors.Is(err, bookingRepo.ErrNotFound) {
			d.logger.Info("Dropping reminder for unknown booking", zap.String("bookingId", r.BookingID))
			return nil
		}
		if err != nil {
			return fmt.Errorf("could not load booking %s: %w", r.BookingID, err)
		}
		if b.Status != models.StatusConfirmed {
			d.logger.Info("Dropping reminder, booking no longer confirmed",
				zap.String("bookingId", r.BookingID),
				zap.String("status", b.Status.String()),
			)
			return nil
		}
	}

	data := map[string]string{
		"reminderId": r.ReminderID,
		"bookingId":  r.BookingID,
		"type":       "booking_reminder",
	}
	return d.deliver(ctx, r.RecipientUserID, r.Title, r.Body, data)
}

func (d *Deliverer) deliver(ctx context.Context, userID, title, body string, data map[string]string) error {
	token, err := d.devices.GetDeviceToken(ctx, userID)
	if err != nil {
		return fmt.Errorf("could not look up device for user %s: %w", userID, err)
	}
	if token == "" {
		d.logger.Info("Skipping push, user has no device", zap.String("userId", userID))
		return nil
	}
	return d.push.Send(ctx, token, title, body, data)
}
