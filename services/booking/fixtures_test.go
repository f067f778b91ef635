package booking

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	bookingRepo "crewbook/database/repository/booking"
	participantRepo "crewbook/database/repository/participant"
	"crewbook/models"
	"crewbook/services/cache"
)

var (
	plannerActor      = models.Actor{UserID: "u-planner", Role: models.RolePlanner}
	professionalActor = models.Actor{UserID: "u-pro", Role: models.RoleProfessional}
	strangerPlanner   = models.Actor{UserID: "u-stranger", Role: models.RolePlanner}

	monday = time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
)

func at(hour int) time.Time {
	return monday.Add(time.Duration(hour) * time.Hour)
}

type recordedEvent struct {
	Type    string
	Payload any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(eventType string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Type: eventType, Payload: payload})
}

func (p *recordingPublisher) ofType(eventType string) []any {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []any
	for _, e := range p.events {
		if e.Type == eventType {
			out = append(out, e.Payload)
		}
	}
	return out
}

type fixture struct {
	repo         *bookingRepo.MemoryBookingRepo
	participants *participantRepo.MemoryParticipantRepo
	store        *cache.Store
	events       *recordingPublisher
	svc          *Service
	clock        *testClock
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newFixture(t *testing.T, repo bookingRepo.BookingRepository) *fixture {
	t.Helper()
	memRepo := bookingRepo.NewMemoryBookingRepo()
	if repo == nil {
		repo = memRepo
	}

	participants := participantRepo.NewMemoryParticipantRepo()
	participants.Add(models.Participant{ID: "planner-1", UserID: "u-planner", Name: "Pat Planner", Role: models.RolePlanner})
	participants.Add(models.Participant{ID: "planner-2", UserID: "u-stranger", Name: "Sam Stranger", Role: models.RolePlanner})
	participants.Add(models.Participant{ID: "pro-x", UserID: "u-pro", Name: "Xena Pro", Role: models.RoleProfessional})

	store := cache.New(nil, cache.Options{}, zaptest.NewLogger(t))
	t.Cleanup(store.Close)

	clock := &testClock{now: monday.Add(-7 * 24 * time.Hour)}
	seq := 0
	publisher := &recordingPublisher{}
	svc := NewService(repo, participants, store, publisher, Options{
		StatusRetries: 2,
		Now:           clock.Now,
		NewID: func() string {
			seq++
			return fmt.Sprintf("b%d", seq)
		},
	}, zap.NewNop())

	return &fixture{
		repo:         memRepo,
		participants: participants,
		store:        store,
		events:       publisher,
		svc:          svc,
		clock:        clock,
	}
}

func (f *fixture) create(t *testing.T, eventID string, start, end time.Time) *models.Booking {
	t.Helper()
	b, err := f.svc.Create(context.Background(), plannerActor, models.CreateBookingInput{
		ProfessionalID: "pro-x",
		EventPlannerID: "planner-1",
		EventID:        eventID,
		StartDate:      start,
		EndDate:        end,
		Rate:           450,
		Currency:       "usd",
	})
	require.NoError(t, err)
	return b
}

func (f *fixture) transition(t *testing.T, actor models.Actor, id string, status models.BookingStatus) *models.Booking {
	t.Helper()
	b, err := f.svc.UpdateStatus(context.Background(), actor, id, models.UpdateStatusInput{Status: status})
	require.NoError(t, err)
	return b
}
