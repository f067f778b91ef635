package booking

import (
	"context"
	"time"

	bookingRepo "crewbook/database/repository/booking"
	"crewbook/models"
)

// ConflictDetector checks a professional's calendar against the blocking bookings in
// the repository.
type ConflictDetector struct {
	repo bookingRepo.BookingRepository
}

func NewConflictDetector(repo bookingRepo.BookingRepository) *ConflictDetector {
	return &ConflictDetector{repo: repo}
}

// HasConflict reports whether [start, end) overlaps a CONFIRMED or IN_PROGRESS booking
// of the professional. Repository errors are returned unchanged.
func (d *ConflictDetector) HasConflict(ctx context.Context, professionalID string, start, end time.Time) (bool, error) {
	conflict, err := d.FindConflict(ctx, professionalID, start, end, "")
	return conflict != nil, err
}

// FindConflict returns the first blocking booking overlapping [start, end), skipping
// excludeID, or nil when the range is free.
func (d *ConflictDetector) FindConflict(ctx context.Context, professionalID string, start, end time.Time, excludeID string) (*models.Booking, error) {
	existing, err := d.repo.FindActiveBookingsForProfessional(ctx, professionalID, models.BlockingStatuses...)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		b := &existing[i]
		if b.ID == excludeID || !b.Status.IsBlocking() {
			continue
		}
		if b.Overlaps(start, end) {
			return b, nil
		}
	}
	return nil, nil
}
