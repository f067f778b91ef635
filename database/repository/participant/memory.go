package participantRepo

import (
	"context"
	"sync"

	"crewbook/models"
)

type MemoryParticipantRepo struct {
	mu           sync.RWMutex
	participants map[models.Role]map[string]models.Participant
	devices      map[string]string
}

var _ ParticipantRepository = (*MemoryParticipantRepo)(nil)

func NewMemoryParticipantRepo() *MemoryParticipantRepo {
	return &MemoryParticipantRepo{
		participants: map[models.Role]map[string]models.Participant{
			models.RoleProfessional: {},
			models.RolePlanner:      {},
		},
		devices: make(map[string]string),
	}
}

// Add registers a profile under p.Role.
func (r *MemoryParticipantRepo) Add(p models.Participant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.participants[p.Role] == nil {
		r.participants[p.Role] = make(map[string]models.Participant)
	}
	r.participants[p.Role][p.ID] = p
}

func (r *MemoryParticipantRepo) SetDeviceToken(userID, token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.devices[userID] = token
}

func (r *MemoryParticipantRepo) GetParticipant(_ context.Context, role models.Role, id string) (*models.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.participants[role][id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *MemoryParticipantRepo) GetDeviceToken(_ context.Context, userID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.devices[userID], nil
}
