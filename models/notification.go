package models

import "time"

// Notification is what the notification dispatcher delivers to a single recipient.
type Notification struct {
	ID              string            `json:"id"`
	RecipientUserID string            `json:"recipientUserId"`
	Type            string            `json:"type"`
	Title           string            `json:"title"`
	Message         string            `json:"message"`
	Metadata        map[string]string `json:"metadata"`
	CreatedAt       time.Time         `json:"createdAt"`
}

// ReminderPayload is scheduled ahead of a confirmed booking's start.
type ReminderPayload struct {
	ReminderID      string    `json:"reminderId"`
	BookingID       string    `json:"bookingId"`
	RecipientUserID string    `json:"recipientUserId"`
	Title           string    `json:"title"`
	Body            string    `json:"body"`
	FireAt          time.Time `json:"fireAt"`
}
