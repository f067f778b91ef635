package bookingRepo

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crewbook/models"
)

func seed(t *testing.T, r *MemoryBookingRepo, id, professionalID string, status models.BookingStatus, start time.Time) {
	t.Helper()
	_, err := r.Insert(context.Background(), &models.Booking{
		ID:             id,
		ProfessionalID: professionalID,
		EventPlannerID: "planner-1",
		EventID:        "event-" + id,
		StartDate:      start,
		EndDate:        start.Add(time.Hour),
		Status:         status,
	})
	require.NoError(t, err)
}

func TestMemoryRepo_UpdateStatusIfCurrent(t *testing.T) {
	r := NewMemoryBookingRepo()
	ctx := context.Background()
	start := time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC)
	seed(t, r, "b1", "pro-1", models.StatusPending, start)

	now := start.Add(-time.Hour)
	updated, err := r.UpdateStatusIfCurrent(ctx, "b1", models.StatusPending, models.StatusConfirmed, models.StatusFields{ConfirmedAt: &now, UpdatedAt: now})
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, updated.Status)
	require.NotNil(t, updated.ConfirmedAt)

	_, err = r.UpdateStatusIfCurrent(ctx, "b1", models.StatusPending, models.StatusCancelled, models.StatusFields{UpdatedAt: now})
	assert.ErrorIs(t, err, ErrStaleStatus)

	_, err = r.UpdateStatusIfCurrent(ctx, "missing", models.StatusPending, models.StatusCancelled, models.StatusFields{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepo_ConcurrentCASHasOneWinner(t *testing.T) {
	r := NewMemoryBookingRepo()
	seed(t, r, "b1", "pro-1", models.StatusConfirmed, time.Now())

	var wins atomic.Int32
	var wg sync.WaitGroup
	for _, next := range []models.BookingStatus{models.StatusInProgress, models.StatusCancelled, models.StatusInProgress, models.StatusCancelled} {
		wg.Add(1)
		go func(next models.BookingStatus) {
			defer wg.Done()
			if _, err := r.UpdateStatusIfCurrent(context.Background(), "b1", models.StatusConfirmed, next, models.StatusFields{}); err == nil {
				wins.Add(1)
			}
		}(next)
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func TestMemoryRepo_FindAndList(t *testing.T) {
	r := NewMemoryBookingRepo()
	ctx := context.Background()
	base := time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC)
	seed(t, r, "b3", "pro-1", models.StatusInProgress, base.Add(2*time.Hour))
	seed(t, r, "b1", "pro-1", models.StatusPending, base)
	seed(t, r, "b2", "pro-1", models.StatusConfirmed, base.Add(time.Hour))
	seed(t, r, "b4", "pro-1", models.StatusCancelled, base)
	seed(t, r, "b5", "pro-2", models.StatusConfirmed, base)

	active, err := r.FindActiveBookingsForProfessional(ctx, "pro-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"b1", "b2", "b3"}, ids(active))

	blocking, err := r.FindActiveBookingsForProfessional(ctx, "pro-1", models.BlockingStatuses...)
	require.NoError(t, err)
	assert.Equal(t, []string{"b2", "b3"}, ids(blocking))

	status := models.StatusConfirmed
	listed, err := r.List(ctx, models.BookingFilter{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, []string{"b5", "b2"}, ids(listed))
}

func TestMemoryRepo_RunForProfessionalSerializes(t *testing.T) {
	r := NewMemoryBookingRepo()
	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.RunForProfessional(context.Background(), "pro-1", func(context.Context) error {
				n := inside.Add(1)
				if n > maxInside.Load() {
					maxInside.Store(n)
				}
				time.Sleep(time.Millisecond)
				inside.Add(-1)
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside.Load())
}

func ids(bookings []models.Booking) []string {
	out := make([]string, len(bookings))
	for i, b := range bookings {
		out[i] = b.ID
	}
	return out
}
