package booking

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingRepo "crewbook/database/repository/booking"
	participantRepo "crewbook/database/repository/participant"
	"crewbook/models"
	"crewbook/services/cache"
)

// Publisher is the side of the event bus the service writes to.
type Publisher interface {
	Publish(eventType string, payload any)
}

type Options struct {
	BookingTTL    time.Duration
	ProfileTTL    time.Duration
	StatusRetries int
	Now           func() time.Time
	NewID         func() string
}

// Service owns the booking lifecycle: creation, status transitions, terms changes and
// cached reads. Side effects are left to event subscribers.
type Service struct {
	repo         bookingRepo.BookingRepository
	participants participantRepo.ParticipantRepository
	detector     *ConflictDetector
	cache        *cache.Store
	bus          Publisher
	logger       *zap.Logger

	bookingTTL time.Duration
	profileTTL time.Duration
	retries    int
	now        func() time.Time
	newID      func() string

	// detailsLocks serialize check-then-set on cached booking details, striped by id.
	detailsLocks [32]sync.Mutex
}

func NewService(
	repo bookingRepo.BookingRepository,
	participants participantRepo.ParticipantRepository,
	store *cache.Store,
	bus Publisher,
	opts Options,
	logger *zap.Logger,
) *Service {
	if opts.BookingTTL <= 0 {
		opts.BookingTTL = 5 * time.Minute
	}
	if opts.ProfileTTL <= 0 {
		opts.ProfileTTL = 30 * time.Minute
	}
	if opts.StatusRetries < 0 {
		opts.StatusRetries = 0
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.New().String() }
	}
	return &Service{
		repo:         repo,
		participants: participants,
		detector:     NewConflictDetector(repo),
		cache:        store,
		bus:          bus,
		logger:       logger.With(zap.String("component", "booking")),
		bookingTTL:   opts.BookingTTL,
		profileTTL:   opts.ProfileTTL,
		retries:      opts.StatusRetries,
		now:          opts.Now,
		newID:        opts.NewID,
	}
}

// Detector exposes the conflict detector used by the service.
func (s *Service) Detector() *ConflictDetector {
	return s.detector
}

// participant resolves a profile through the cache.
func (s *Service) participant(ctx context.Context, role models.Role, id string) (*models.Participant, error) {
	p, err := cache.Wrap(ctx, s.cache, profileKey(role, id), s.profileTTL, func(ctx context.Context) (models.Participant, error) {
		p, err := s.participants.GetParticipant(ctx, role, id)
		if err != nil {
			return models.Participant{}, err
		}
		return *p, nil
	})
	if err != nil {
		return nil, err
	}
	p.Role = role
	return &p, nil
}

// linkedUser returns the user id acting for the booking's side played by role.
func (s *Service) linkedUser(ctx context.Context, b *models.Booking, role models.Role) (string, error) {
	id := b.EventPlannerID
	if role == models.RoleProfessional {
		id = b.ProfessionalID
	}
	p, err := s.participant(ctx, role, id)
	if err != nil {
		return "", err
	}
	return p.UserID, nil
}

// authorize checks that actor is the linked user of the side of b named by actor.Role.
func (s *Service) authorize(ctx context.Context, b *models.Booking, actor models.Actor) error {
	if !actor.Role.IsValid() || actor.UserID == "" {
		return ErrUnauthorized
	}
	userID, err := s.linkedUser(ctx, b, actor.Role)
	if errors.Is(err, participantRepo.ErrNotFound) {
		return ErrUnauthorized
	}
	if err != nil {
		return err
	}
	if userID != actor.UserID {
		return ErrUnauthorized
	}
	return nil
}

func (s *Service) publish(eventType string, payload any) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(eventType, payload)
}

func mapRepoError(err error) error {
	switch {
	case errors.Is(err, bookingRepo.ErrNotFound):
		return ErrBookingNotFound
	case errors.Is(err, bookingRepo.ErrStaleStatus):
		return ErrConflictingUpdate
	default:
		return err
	}
}

func (s *Service) detailsLock(id string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return &s.detailsLocks[h.Sum32()%uint32(len(s.detailsLocks))]
}
