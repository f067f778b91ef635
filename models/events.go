package models

// Event bus topics.
const (
	EventBookingCreated       = "booking.created"
	EventBookingStatusChanged = "booking.status_changed"
	EventBookingTermsChanged  = "booking.terms_changed"
)

// BookingCreated is published after a new booking is persisted.
type BookingCreated struct {
	Booking Booking `json:"booking"`
	Actor   Actor   `json:"actor"`
}

// BookingStatusChanged is published after a status transition is persisted.
type BookingStatusChanged struct {
	BookingID string        `json:"bookingId"`
	OldStatus BookingStatus `json:"oldStatus"`
	NewStatus BookingStatus `json:"newStatus"`
	ActorRole Role          `json:"actorRole"`
	Booking   Booking       `json:"booking"`
}

// BookingTermsChanged is published after rate or currency change on a pending booking.
type BookingTermsChanged struct {
	BookingID string  `json:"bookingId"`
	Old       Terms   `json:"old"`
	New       Terms   `json:"new"`
	ActorRole Role    `json:"actorRole"`
	Booking   Booking `json:"booking"`
}
