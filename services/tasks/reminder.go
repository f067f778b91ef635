package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"crewbook/models"
)

const (
	TypeSendNotification = "notification:send"
	TypeSendReminder     = "reminder:send"

	// DefaultQueue is where tasks land when no queue option is given.
	DefaultQueue = "default"
)

// ReminderTaskID is the task id of the start reminder for one side of a booking.
func ReminderTaskID(bookingID string, role models.Role) string {
	return "reminder:" + bookingID + ":" + string(role)
}

// NewNotificationTask wraps a notification for immediate delivery by the worker.
func NewNotificationTask(n models.Notification) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(n)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendNotification, b)
	opts := []asynq.Option{asynq.MaxRetry(5)}
	if n.ID != "" {
		opts = append(opts, asynq.TaskID(n.ID))
	}
	return task, opts, nil
}

// NewReminderTask wraps a reminder to be processed at payload.FireAt.
func NewReminderTask(payload models.ReminderPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendReminder, b)
	opts := []asynq.Option{asynq.ProcessAt(payload.FireAt), asynq.MaxRetry(3)}
	if payload.ReminderID != "" {
		opts = append(opts, asynq.TaskID(payload.ReminderID))
	}
	return task, opts, nil
}

func ParseNotificationTask(task *asynq.Task) (models.Notification, error) {
	var n models.Notification
	if err := json.Unmarshal(task.Payload(), &n); err != nil {
		return n, fmt.Errorf("invalid notification payload: %v: %w", err, asynq.SkipRetry)
	}
	return n, nil
}

func ParseReminderTask(task *asynq.Task) (models.ReminderPayload, error) {
	var p models.ReminderPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, fmt.Errorf("invalid reminder payload: %v: %w", err, asynq.SkipRetry)
	}
	return p, nil
}
