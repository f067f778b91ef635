package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"crewbook/models"
	"crewbook/services/events"
	"crewbook/services/tasks"
)

// Subscriber is the side of the event bus subscribers are registered on.
type Subscriber interface {
	Subscribe(eventType, name string, handler events.Handler)
}

// Notifier hands a notification to the delivery pipeline.
type Notifier interface {
	Dispatch(ctx context.Context, n models.Notification) error
}

// ReminderScheduler queues a reminder for delivery at r.FireAt and drops the reminders
// of a booking that will no longer take place.
type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, r models.ReminderPayload) error
	CancelReminders(ctx context.Context, bookingID string) error
}

// RegisterSubscribers wires the booking side effects onto bus. Cache invalidation is
// registered first so later handlers never re-read a stale entry. reminders may be nil.
func (s *Service) RegisterSubscribers(bus Subscriber, notifier Notifier, reminders ReminderScheduler, reminderLead time.Duration) {
	bus.Subscribe(models.EventBookingCreated, "cache-invalidation", s.invalidateOnEvent)
	bus.Subscribe(models.EventBookingStatusChanged, "cache-invalidation", s.invalidateOnEvent)
	bus.Subscribe(models.EventBookingTermsChanged, "cache-invalidation", s.invalidateOnEvent)

	if notifier != nil {
		n := &notificationSubscriber{svc: s, notifier: notifier}
		bus.Subscribe(models.EventBookingCreated, "notify-created", n.onCreated)
		bus.Subscribe(models.EventBookingStatusChanged, "notify-status", n.onStatusChanged)
		bus.Subscribe(models.EventBookingTermsChanged, "notify-terms", n.onTermsChanged)
	}

	if reminders != nil {
		r := &reminderSubscriber{svc: s, scheduler: reminders, lead: reminderLead}
		bus.Subscribe(models.EventBookingStatusChanged, "schedule-reminders", r.onStatusChanged)
	}
}

func (s *Service) invalidateOnEvent(ctx context.Context, payload any) error {
	var b models.Booking
	switch e := payload.(type) {
	case models.BookingCreated:
		b = e.Booking
	case models.BookingStatusChanged:
		b = e.Booking
	case models.BookingTermsChanged:
		b = e.Booking
	default:
		return fmt.Errorf("unexpected payload %T", payload)
	}
	s.InvalidateBooking(ctx, &b)
	return nil
}

// InvalidateBooking refreshes the cached details of b and drops every cached listing
// that may contain it.
func (s *Service) InvalidateBooking(ctx context.Context, b *models.Booking) {
	s.cacheDetails(ctx, *b)
	removed := s.cache.DeletePattern(ctx, professionalListPattern(b.ProfessionalID))
	removed += s.cache.DeletePattern(ctx, plannerListPattern(b.EventPlannerID))
	s.logger.Debug("Invalidated booking cache",
		zap.String("bookingId", b.ID),
		zap.Int("listsRemoved", removed),
	)
}

type notificationSubscriber struct {
	svc      *Service
	notifier Notifier
}

func (n *notificationSubscriber) onCreated(ctx context.Context, payload any) error {
	e, ok := payload.(models.BookingCreated)
	if !ok {
		return fmt.Errorf("unexpected payload %T", payload)
	}
	return n.send(ctx, &e.Booking, models.RoleProfessional, "booking_created",
		"New booking request",
		fmt.Sprintf("You have a new booking request for %s.", formatRange(&e.Booking)),
		map[string]string{"status": string(e.Booking.Status)},
	)
}

func (n *notificationSubscriber) onStatusChanged(ctx context.Context, payload any) error {
	e, ok := payload.(models.BookingStatusChanged)
	if !ok {
		return fmt.Errorf("unexpected payload %T", payload)
	}
	return n.send(ctx, &e.Booking, counterparty(e.ActorRole), "booking_status_changed",
		statusTitle(e.NewStatus),
		fmt.Sprintf("Your booking for %s moved from %s to %s.", formatRange(&e.Booking), e.OldStatus, e.NewStatus),
		map[string]string{"oldStatus": string(e.OldStatus), "newStatus": string(e.NewStatus)},
	)
}

func (n *notificationSubscriber) onTermsChanged(ctx context.Context, payload any) error {
	e, ok := payload.(models.BookingTermsChanged)
	if !ok {
		return fmt.Errorf("unexpected payload %T", payload)
	}
	return n.send(ctx, &e.Booking, counterparty(e.ActorRole), "booking_terms_changed",
		"Booking terms updated",
		fmt.Sprintf("The rate for %s is now %.2f %s.", formatRange(&e.Booking), e.New.Rate, e.New.Currency),
		map[string]string{"rate": fmt.Sprintf("%.2f", e.New.Rate), "currency": e.New.Currency},
	)
}

func (n *notificationSubscriber) send(ctx context.Context, b *models.Booking, recipient models.Role, kind, title, message string, metadata map[string]string) error {
	userID, err := n.svc.linkedUser(ctx, b, recipient)
	if err != nil {
		return fmt.Errorf("resolve %s for booking %s: %w", recipient, b.ID, err)
	}
	metadata["bookingId"] = b.ID
	metadata["eventId"] = b.EventID
	return n.notifier.Dispatch(ctx, models.Notification{
		ID:              uuid.New().String(),
		RecipientUserID: userID,
		Type:            kind,
		Title:           title,
		Message:         message,
		Metadata:        metadata,
		CreatedAt:       n.svc.now(),
	})
}

type reminderSubscriber struct {
	svc       *Service
	scheduler ReminderScheduler
	lead      time.Duration
}

// onStatusChanged schedules a start reminder for both sides once a booking is confirmed
// and drops them again when a confirmed booking is cancelled.
func (r *reminderSubscriber) onStatusChanged(ctx context.Context, payload any) error {
	e, ok := payload.(models.BookingStatusChanged)
	if !ok {
		return fmt.Errorf("unexpected payload %T", payload)
	}
	switch {
	case e.NewStatus == models.StatusConfirmed:
		return r.schedule(ctx, e)
	case e.NewStatus == models.StatusCancelled && e.OldStatus.IsBlocking():
		return r.scheduler.CancelReminders(ctx, e.BookingID)
	default:
		return nil
	}
}

func (r *reminderSubscriber) schedule(ctx context.Context, e models.BookingStatusChanged) error {
	fireAt := e.Booking.StartDate.Add(-r.lead)
	if !fireAt.After(r.svc.now()) {
		r.svc.logger.Debug("Skipping reminder already due", zap.String("bookingId", e.BookingID))
		return nil
	}

	for _, role := range []models.Role{models.RolePlanner, models.RoleProfessional} {
		userID, err := r.svc.linkedUser(ctx, &e.Booking, role)
		if err != nil {
			return fmt.Errorf("resolve %s for booking %s: %w", role, e.BookingID, err)
		}
		err = r.scheduler.ScheduleReminder(ctx, models.ReminderPayload{
			ReminderID:      tasks.ReminderTaskID(e.BookingID, role),
			BookingID:       e.BookingID,
			RecipientUserID: userID,
			Title:           "Upcoming booking",
			Body:            fmt.Sprintf("Your booking starts %s.", e.Booking.StartDate.UTC().Format(time.RFC1123)),
			FireAt:          fireAt,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func counterparty(role models.Role) models.Role {
	if role == models.RolePlanner {
		return models.RoleProfessional
	}
	return models.RolePlanner
}

func statusTitle(status models.BookingStatus) string {
	switch status {
	case models.StatusConfirmed:
		return "Booking confirmed"
	case models.StatusInProgress:
		return "Booking started"
	case models.StatusCompleted:
		return "Booking completed"
	case models.StatusCancelled:
		return "Booking cancelled"
	default:
		return "Booking updated"
	}
}

func formatRange(b *models.Booking) string {
	return fmt.Sprintf("%s - %s", b.StartDate.UTC().Format("Mon Jan 2 15:04"), b.EndDate.UTC().Format("15:04 MST"))
}
