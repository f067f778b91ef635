package models

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusPending    BookingStatus = "PENDING"
	StatusConfirmed  BookingStatus = "CONFIRMED"
	StatusInProgress BookingStatus = "IN_PROGRESS"
	StatusCompleted  BookingStatus = "COMPLETED"
	StatusCancelled  BookingStatus = "CANCELLED"
)

// ActiveStatuses are the statuses that hold a professional's time.
var ActiveStatuses = []BookingStatus{StatusPending, StatusConfirmed, StatusInProgress}

// BlockingStatuses are the statuses considered by conflict detection. PENDING requests
// do not block other requests until accepted.
var BlockingStatuses = []BookingStatus{StatusConfirmed, StatusInProgress}

// IsActive reports whether the status is PENDING, CONFIRMED or IN_PROGRESS.
func (s BookingStatus) IsActive() bool {
	for _, a := range ActiveStatuses {
		if s == a {
			return true
		}
	}
	return false
}

// IsBlocking reports whether a booking in this status blocks overlapping bookings.
func (s BookingStatus) IsBlocking() bool {
	return s == StatusConfirmed || s == StatusInProgress
}

// IsTerminal reports whether no transitions leave this status.
func (s BookingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// IsValid reports whether s is a known status.
func (s BookingStatus) IsValid() bool {
	return s.IsActive() || s.IsTerminal()
}

func (s BookingStatus) String() string {
	return string(s)
}

// Role is the side of the marketplace an actor is acting for.
type Role string

const (
	RolePlanner      Role = "PLANNER"
	RoleProfessional Role = "PROFESSIONAL"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	return r == RolePlanner || r == RoleProfessional
}

// Actor identifies who is requesting an operation.
type Actor struct {
	UserID string `json:"userId"`
	Role   Role   `json:"role"`
}

// Booking is an event planner's engagement of a professional for a time range.
type Booking struct {
	ID                 string        `bson:"id" json:"id"`
	ProfessionalID     string        `bson:"professional_id" json:"professionalId"`
	EventPlannerID     string        `bson:"event_planner_id" json:"eventPlannerId"`
	EventID            string        `bson:"event_id" json:"eventId"`
	StartDate          time.Time     `bson:"start_date" json:"startDate"`
	EndDate            time.Time     `bson:"end_date" json:"endDate"`
	Status             BookingStatus `bson:"status" json:"status"`
	Rate               float64       `bson:"rate" json:"rate"`
	Currency           string        `bson:"currency" json:"currency"`
	Notes              string        `bson:"notes,omitempty" json:"notes,omitempty"`
	ConfirmedAt        *time.Time    `bson:"confirmed_at,omitempty" json:"confirmedAt,omitempty"`
	CompletedAt        *time.Time    `bson:"completed_at,omitempty" json:"completedAt,omitempty"`
	CancelledAt        *time.Time    `bson:"cancelled_at,omitempty" json:"cancelledAt,omitempty"`
	CancellationReason string        `bson:"cancellation_reason,omitempty" json:"cancellationReason,omitempty"`
	CreatedAt          time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt          time.Time     `bson:"updated_at" json:"updatedAt"`
}

// Overlaps reports whether the booking's half-open range [StartDate, EndDate) intersects
// [start, end). Back-to-back ranges do not overlap.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartDate.Before(end) && b.EndDate.After(start)
}

// StatusFields carries the columns written together with a status change.
type StatusFields struct {
	ConfirmedAt        *time.Time
	CompletedAt        *time.Time
	CancelledAt        *time.Time
	CancellationReason string
	UpdatedAt          time.Time
}

// Terms are the monetary terms of a booking.
type Terms struct {
	Rate     float64 `json:"rate"`
	Currency string  `json:"currency"`
}

// BookingFilter selects bookings for listing. Nil fields are not filtered on.
type BookingFilter struct {
	Status         *BookingStatus
	ProfessionalID *string
	EventPlannerID *string
	EventID        *string
}

// CreateBookingInput is the planner-initiated booking request.
type CreateBookingInput struct {
	ProfessionalID string    `json:"professionalId"`
	EventPlannerID string    `json:"eventPlannerId"`
	EventID        string    `json:"eventId"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	Rate           float64   `json:"rate"`
	Currency       string    `json:"currency"`
	Notes          string    `json:"notes"`
}

// UpdateStatusInput is a requested status transition.
type UpdateStatusInput struct {
	Status             BookingStatus `json:"status"`
	CancellationReason string        `json:"cancellationReason"`
}
