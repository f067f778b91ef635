package participantRepo

import (
	"context"
	"errors"

	"crewbook/models"
)

var ErrNotFound = errors.New("participant not found")

// ParticipantRepository resolves marketplace profiles to the user accounts that act for
// them, and users to their push devices.
type ParticipantRepository interface {
	// GetParticipant returns the professional or planner profile with the given id.
	GetParticipant(ctx context.Context, role models.Role, id string) (*models.Participant, error)
	// GetDeviceToken returns the user's registered push token, or "" when none is set.
	GetDeviceToken(ctx context.Context, userID string) (string, error)
}
