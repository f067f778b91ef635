package booking

import (
	"time"

	"crewbook/models"
)

type transitionTable map[models.BookingStatus][]models.BookingStatus

// Graph of every legal move regardless of who asks.
var lifecycle = transitionTable{
	models.StatusPending:    {models.StatusConfirmed, models.StatusCancelled},
	models.StatusConfirmed:  {models.StatusInProgress, models.StatusCancelled},
	models.StatusInProgress: {models.StatusCompleted, models.StatusCancelled},
}

var roleTransitions = map[models.Role]transitionTable{
	models.RolePlanner: {
		models.StatusPending:    {models.StatusCancelled},
		models.StatusConfirmed:  {models.StatusInProgress, models.StatusCancelled},
		models.StatusInProgress: {models.StatusCompleted, models.StatusCancelled},
	},
	models.RoleProfessional: {
		models.StatusPending:    {models.StatusConfirmed, models.StatusCancelled},
		models.StatusConfirmed:  {models.StatusInProgress, models.StatusCancelled},
		models.StatusInProgress: {models.StatusCompleted},
	},
}

func (t transitionTable) allows(from, to models.BookingStatus) bool {
	for _, next := range t[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AllowedTransitions lists the statuses role may move a booking to from current.
func AllowedTransitions(role models.Role, current models.BookingStatus) []models.BookingStatus {
	return append([]models.BookingStatus(nil), roleTransitions[role][current]...)
}

// Transition is the pure state machine step. It returns the booking as it should be
// persisted and changed=false when target is already the current status, in which case
// the booking is returned untouched.
func Transition(b models.Booking, role models.Role, target models.BookingStatus, reason string, now time.Time) (models.Booking, models.StatusFields, bool, error) {
	if b.Status == target {
		return b, models.StatusFields{}, false, nil
	}

	table, ok := roleTransitions[role]
	if !ok || !lifecycle.allows(b.Status, target) || !table.allows(b.Status, target) {
		return b, models.StatusFields{}, false, &InvalidTransitionError{Current: b.Status, Requested: target, Role: role}
	}

	fields := models.StatusFields{UpdatedAt: now}
	switch target {
	case models.StatusConfirmed:
		if b.ConfirmedAt == nil {
			fields.ConfirmedAt = &now
			b.ConfirmedAt = &now
		}
	case models.StatusCompleted:
		if b.CompletedAt == nil {
			fields.CompletedAt = &now
			b.CompletedAt = &now
		}
	case models.StatusCancelled:
		if b.CancelledAt == nil {
			fields.CancelledAt = &now
			b.CancelledAt = &now
		}
		if reason == "" {
			reason = defaultCancellationReason(role)
		}
		fields.CancellationReason = reason
		b.CancellationReason = reason
	}

	b.Status = target
	b.UpdatedAt = now
	return b, fields, true, nil
}

func defaultCancellationReason(role models.Role) string {
	switch role {
	case models.RolePlanner:
		return "cancelled by planner"
	case models.RoleProfessional:
		return "cancelled by professional"
	default:
		return "cancelled"
	}
}
