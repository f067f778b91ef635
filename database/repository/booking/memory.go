package bookingRepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"crewbook/models"
)

var _ BookingRepository = (*MemoryBookingRepo)(nil)

// MemoryBookingRepo keeps bookings in process. It backs BOOKING_STORE=memory and the
// service tests.
type MemoryBookingRepo struct {
	mu       sync.RWMutex
	bookings map[string]models.Booking

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func NewMemoryBookingRepo() *MemoryBookingRepo {
	return &MemoryBookingRepo{
		bookings: make(map[string]models.Booking),
		locks:    make(map[string]*sync.Mutex),
	}
}

func (r *MemoryBookingRepo) GetByID(_ context.Context, id string) (*models.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (r *MemoryBookingRepo) FindActiveBookingsForProfessional(_ context.Context, professionalID string, statuses ...models.BookingStatus) ([]models.Booking, error) {
	wanted := statusesOrActive(statuses)
	return r.filter(func(b *models.Booking) bool {
		if b.ProfessionalID != professionalID {
			return false
		}
		for _, s := range wanted {
			if b.Status == s {
				return true
			}
		}
		return false
	}), nil
}

func (r *MemoryBookingRepo) Insert(_ context.Context, booking *models.Booking) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.bookings[booking.ID] = *booking
	stored := r.bookings[booking.ID]
	return &stored, nil
}

func (r *MemoryBookingRepo) UpdateStatusIfCurrent(_ context.Context, id string, expected, next models.BookingStatus, fields models.StatusFields) (*models.Booking, error) {
	return r.update(id, expected, func(b *models.Booking) {
		b.Status = next
		b.UpdatedAt = fields.UpdatedAt
		if fields.ConfirmedAt != nil {
			b.ConfirmedAt = fields.ConfirmedAt
		}
		if fields.CompletedAt != nil {
			b.CompletedAt = fields.CompletedAt
		}
		if fields.CancelledAt != nil {
			b.CancelledAt = fields.CancelledAt
		}
		if fields.CancellationReason != "" {
			b.CancellationReason = fields.CancellationReason
		}
	})
}

func (r *MemoryBookingRepo) UpdateTermsIfCurrent(_ context.Context, id string, expected models.BookingStatus, terms models.Terms, updatedAt time.Time) (*models.Booking, error) {
	return r.update(id, expected, func(b *models.Booking) {
		b.Rate = terms.Rate
		b.Currency = terms.Currency
		b.UpdatedAt = updatedAt
	})
}

func (r *MemoryBookingRepo) List(_ context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	return r.filter(func(b *models.Booking) bool {
		if filter.Status != nil && b.Status != *filter.Status {
			return false
		}
		if filter.ProfessionalID != nil && b.ProfessionalID != *filter.ProfessionalID {
			return false
		}
		if filter.EventPlannerID != nil && b.EventPlannerID != *filter.EventPlannerID {
			return false
		}
		if filter.EventID != nil && b.EventID != *filter.EventID {
			return false
		}
		return true
	}), nil
}

func (r *MemoryBookingRepo) RunForProfessional(ctx context.Context, professionalID string, fn func(ctx context.Context) error) error {
	r.locksMu.Lock()
	lock, ok := r.locks[professionalID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[professionalID] = lock
	}
	r.locksMu.Unlock()

	lock.Lock()
	defer lock.Unlock()
	return fn(ctx)
}

func (r *MemoryBookingRepo) update(id string, expected models.BookingStatus, apply func(b *models.Booking)) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	if b.Status != expected {
		return nil, ErrStaleStatus
	}
	apply(&b)
	r.bookings[id] = b
	return &b, nil
}

func (r *MemoryBookingRepo) filter(keep func(b *models.Booking) bool) []models.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.Booking{}
	for _, b := range r.bookings {
		if keep(&b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartDate.Before(out[j].StartDate)
	})
	return out
}
