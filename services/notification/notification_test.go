package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	bookingRepo "crewbook/database/repository/booking"
	participantRepo "crewbook/database/repository/participant"
	"crewbook/models"
	"crewbook/services/tasks"
)

type mockEnqueuer struct {
	mock.Mock
}

func (m *mockEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task.Type(), len(opts))
	info, _ := args.Get(0).(*asynq.TaskInfo)
	return info, args.Error(1)
}

type mockPush struct {
	mock.Mock
}

func (m *mockPush) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	return m.Called(ctx, token, title, body, data).Error(0)
}

func TestQueueDispatcher(t *testing.T) {
	enq := new(mockEnqueuer)
	enq.On("EnqueueContext", mock.Anything, tasks.TypeSendNotification, 2).
		Return(&asynq.TaskInfo{ID: "n-1"}, nil).Once()
	enq.On("EnqueueContext", mock.Anything, tasks.TypeSendReminder, 3).
		Return(nil, asynq.ErrTaskIDConflict).Once()

	q := NewQueueDispatcher(enq, nil, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, q.Dispatch(ctx, models.Notification{ID: "n-1", RecipientUserID: "u-1"}))
	// a reminder already queued under the same id is not an error
	require.NoError(t, q.ScheduleReminder(ctx, models.ReminderPayload{ReminderID: "r-1", FireAt: time.Now().Add(time.Hour)}))
	enq.AssertExpectations(t)
}

func TestQueueDispatcher_EnqueueFailure(t *testing.T) {
	enq := new(mockEnqueuer)
	enq.On("EnqueueContext", mock.Anything, tasks.TypeSendNotification, 1).Return(nil, errors.New("redis down"))

	err := NewQueueDispatcher(enq, nil, zap.NewNop()).Dispatch(context.Background(), models.Notification{})
	assert.ErrorContains(t, err, "redis down")
}

func TestDeliverer(t *testing.T) {
	devices := participantRepo.NewMemoryParticipantRepo()
	devices.SetDeviceToken("u-1", "tok-1")

	push := new(mockPush)
	push.On("Send", mock.Anything, "tok-1", "Booking confirmed", "See you Monday", mock.MatchedBy(func(data map[string]string) bool {
		return data["bookingId"] == "b-1" && data["type"] == "booking_status_changed" && data["notificationId"] == "n-1"
	})).Return(nil).Once()
	push.On("Send", mock.Anything, "tok-1", "Upcoming booking", "Tomorrow", mock.MatchedBy(func(data map[string]string) bool {
		return data["reminderId"] == "r-1"
	})).Return(nil).Once()

	d := NewDeliverer(devices, bookingRepo.NewMemoryBookingRepo(), push, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, d.DeliverNotification(ctx, models.Notification{
		ID:              "n-1",
		RecipientUserID: "u-1",
		Type:            "booking_status_changed",
		Title:           "Booking confirmed",
		Message:         "See you Monday",
		Metadata:        map[string]string{"bookingId": "b-1"},
	}))
	require.NoError(t, d.DeliverReminder(ctx, models.ReminderPayload{
		ReminderID: "r-1", RecipientUserID: "u-1", Title: "Upcoming booking", Body: "Tomorrow",
	}))

	// no device registered: skipped quietly
	require.NoError(t, d.DeliverReminder(ctx, models.ReminderPayload{RecipientUserID: "u-2"}))
	push.AssertExpectations(t)
}

type mockDeleter struct {
	mock.Mock
}

func (m *mockDeleter) DeleteTask(queue, id string) error {
	return m.Called(queue, id).Error(0)
}

func TestQueueDispatcher_CancelReminders(t *testing.T) {
	deleter := new(mockDeleter)
	deleter.On("DeleteTask", tasks.DefaultQueue, "reminder:b-1:PLANNER").Return(nil).Once()
	// the professional's reminder already ran
	deleter.On("DeleteTask", tasks.DefaultQueue, "reminder:b-1:PROFESSIONAL").Return(asynq.ErrTaskNotFound).Once()

	q := NewQueueDispatcher(new(mockEnqueuer), deleter, zap.NewNop())
	require.NoError(t, q.CancelReminders(context.Background(), "b-1"))
	deleter.AssertExpectations(t)

	failing := new(mockDeleter)
	failing.On("DeleteTask", tasks.DefaultQueue, mock.Anything).Return(errors.New("redis down"))
	err := NewQueueDispatcher(new(mockEnqueuer), failing, zap.NewNop()).CancelReminders(context.Background(), "b-2")
	assert.ErrorContains(t, err, "reminder:b-2:PLANNER")
	assert.ErrorContains(t, err, "reminder:b-2:PROFESSIONAL")
}

func TestDeliverer_ReminderOnlyForConfirmedBooking(t *testing.T) {
	ctx := context.Background()
	devices := participantRepo.NewMemoryParticipantRepo()
	devices.SetDeviceToken("u-1", "tok-1")

	bookings := bookingRepo.NewMemoryBookingRepo()
	start := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	for id, status := range map[string]models.BookingStatus{
		"b-confirmed": models.StatusConfirmed,
		"b-cancelled": models.StatusCancelled,
	} {
		_, err := bookings.Insert(ctx, &models.Booking{
			ID:             id,
			ProfessionalID: "pro-1",
			EventPlannerID: "planner-1",
			EventID:        "gala",
			StartDate:      start,
			EndDate:        start.Add(2 * time.Hour),
			Status:         status,
		})
		require.NoError(t, err)
	}

	push := new(mockPush)
	push.On("Send", mock.Anything, "tok-1", "Upcoming booking", mock.Anything, mock.MatchedBy(func(data map[string]string) bool {
		return data["bookingId"] == "b-confirmed"
	})).Return(nil).Once()

	d := NewDeliverer(devices, bookings, push, zap.NewNop())
	for _, id := range []string{"b-confirmed", "b-cancelled", "b-missing"} {
		require.NoError(t, d.DeliverReminder(ctx, models.ReminderPayload{
			ReminderID:      tasks.ReminderTaskID(id, models.RolePlanner),
			BookingID:       id,
			RecipientUserID: "u-1",
			Title:           "Upcoming booking",
		}))
	}
	push.AssertExpectations(t)
	push.AssertNumberOfCalls(t, "Send", 1)
}
