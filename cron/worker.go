package cron

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"crewbook/models"
	"crewbook/services/tasks"
)

// Delivery is what the worker hands dequeued tasks to.
type Delivery interface {
	DeliverNotification(ctx context.Context, n models.Notification) error
	DeliverReminder(ctx context.Context, r models.ReminderPayload) error
}

// Worker consumes the notification and reminder queues.
type Worker struct {
	srv    *asynq.Server
	mux    *asynq.ServeMux
	logger *zap.Logger
}

// NewWorker builds the asynq server; call Start to begin processing.
func NewWorker(redisOpts asynq.RedisClientOpt, concurrency int, delivery Delivery, logger *zap.Logger) *Worker {
	if concurrency <= 0 {
		concurrency = 10
	}
	logger = logger.With(zap.String("component", "worker"))

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				"default": 1,
			},
			Logger:   logger.Sugar(),
			LogLevel: asynq.WarnLevel,
		},
	)

	return &Worker{
		srv:    srv,
		mux:    NewServeMux(delivery, logger),
		logger: logger,
	}
}

// NewServeMux routes task types to delivery.
func NewServeMux(delivery Delivery, logger *zap.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSendNotification, handleNotificationTask(delivery, logger))
	mux.HandleFunc(tasks.TypeSendReminder, handleReminderTask(delivery, logger))
	return mux
}

// Start runs the worker in the background, retrying startup with backoff.
func (w *Worker) Start() {
	go func() {
		w.logger.Info("Starting async worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := w.srv.Start(w.mux)
			if err == nil {
				return
			}
			w.logger.Warn("Worker failed to start",
				zap.Int("attempt", attempts),
				zap.Int("maxAttempts", maxAttempts),
				zap.Error(err),
			)
			if attempts == maxAttempts {
				w.logger.Error("Worker gave up starting; queued notifications will wait")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
}

// Shutdown stops pulling tasks and waits for active ones to finish.
func (w *Worker) Shutdown() {
	w.srv.Shutdown()
}

func handleNotificationTask(delivery Delivery, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		n, err := tasks.ParseNotificationTask(task)
		if err != nil {
			logger.Error("Invalid notification payload", zap.Error(err))
			return err
		}
		if err := delivery.DeliverNotification(ctx, n); err != nil {
			logger.Warn("Failed to deliver notification",
				zap.String("notificationId", n.ID),
				zap.String("userId", n.RecipientUserID),
				zap.Error(err),
			)
			return err
		}
		return nil
	}
}

func handleReminderTask(delivery Delivery, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		r, err := tasks.ParseReminderTask(task)
		if err != nil {
			logger.Error("Invalid reminder payload", zap.Error(err))
			return err
		}
		logger.Debug("Triggering reminder",
			zap.String("bookingId", r.BookingID),
			zap.String("userId", r.RecipientUserID),
		)
		if err := delivery.DeliverReminder(ctx, r); err != nil {
			logger.Warn("Failed to deliver reminder",
				zap.String("reminderId", r.ReminderID),
				zap.Error(err),
			)
			return err
		}
		return nil
	}
}
