package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"crewbook/models"
	"crewbook/services/tasks"
)

// Enqueuer is the part of *asynq.Client the dispatcher uses.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// TaskDeleter is the part of *asynq.Inspector used to drop scheduled reminders.
type TaskDeleter interface {
	DeleteTask(queue, id string) error
}

// QueueDispatcher hands notifications and reminders to the asynq queue; the worker in
// package cron delivers them.
type QueueDispatcher struct {
	client  Enqueuer
	deleter TaskDeleter
	logger  *zap.Logger
}

// NewQueueDispatcher builds a dispatcher. deleter may be nil, in which case cancelled
// bookings keep their reminders queued and rely on the delivery-time status check.
func NewQueueDispatcher(client Enqueuer, deleter TaskDeleter, logger *zap.Logger) *QueueDispatcher {
	return &QueueDispatcher{client: client, deleter: deleter, logger: logger}
}

func (q *QueueDispatcher) Dispatch(ctx context.Context, n models.Notification) error {
	task, opts, err := tasks.NewNotificationTask(n)
	if err != nil {
		return err
	}
	return q.enqueue(ctx, task, opts)
}

func (q *QueueDispatcher) ScheduleReminder(ctx context.Context, r models.ReminderPayload) error {
	task, opts, err := tasks.NewReminderTask(r)
	if err != nil {
		return err
	}
	return q.enqueue(ctx, task, opts)
}

// CancelReminders drops the start reminders still queued for bookingID. Reminders that
// already ran or were never scheduled are ignored.
func (q *QueueDispatcher) CancelReminders(ctx context.Context, bookingID string) error {
	if q.deleter == nil {
		return nil
	}
	var errs []error
	for _, role := range []models.Role{models.RolePlanner, models.RoleProfessional} {
		id := tasks.ReminderTaskID(bookingID, role)
		err := q.deleter.DeleteTask(tasks.DefaultQueue, id)
		switch {
		case err == nil:
			q.logger.Debug("Reminder cancelled", zap.String("id", id))
		case errors.Is(err, asynq.ErrTaskNotFound), errors.Is(err, asynq.ErrQueueNotFound):
		default:
			errs = append(errs, fmt.Errorf("failed to cancel reminder %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func (q *QueueDispatcher) enqueue(ctx context.Context, task *asynq.Task, opts []asynq.Option) error {
	info, err := q.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to enqueue %s: %w", task.Type(), err)
	}
	q.logger.Debug("Task enqueued",
		zap.String("type", task.Type()),
		zap.String("id", info.ID),
		zap.Time("processAt", info.NextProcessAt),
	)
	return nil
}
