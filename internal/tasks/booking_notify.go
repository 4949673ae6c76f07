// Package tasks defines background jobs processed by the worker through asynq.
package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/djnacci/backend/internal/models"
	"github.com/hibiken/asynq"
)

const (
	// TypeBookingNotify announces a new booking request by email
	TypeBookingNotify = "booking:notify"

	// QueueImmediate is the queue for jobs triggered by user actions
	QueueImmediate = "immediate"

	bookingNotifyMaxRetry = 5
	bookingNotifyTimeout  = time.Minute
)

// BookingNotifyPayload is the JSON payload of a booking:notify task
type BookingNotifyPayload struct {
	Booking models.BookingRequest `json:"booking"`
}

// NewBookingNotifyTask builds the task announcing booking
func NewBookingNotifyTask(booking *models.BookingRequest) (*asynq.Task, error) {
	payload, err := json.Marshal(BookingNotifyPayload{Booking: *booking})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal booking payload: %w", err)
	}

	return asynq.NewTask(TypeBookingNotify, payload,
		asynq.Queue(QueueImmediate),
		asynq.MaxRetry(bookingNotifyMaxRetry),
		asynq.Timeout(bookingNotifyTimeout),
	), nil
}

// taskEnqueuer is satisfied by *asynq.Client
type taskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type bookingNotifier struct {
	client taskEnqueuer
}

// NewBookingNotifier creates a notifier that schedules booking:notify tasks
func NewBookingNotifier(client taskEnqueuer) *bookingNotifier {
	return &bookingNotifier{client: client}
}

// NotifyBookingCreated enqueues the notification of a new booking request
func (n *bookingNotifier) NotifyBookingCreated(ctx context.Context, booking *models.BookingRequest) error {
	task, err := NewBookingNotifyTask(booking)
	if err != nil {
		return err
	}

	if _, err := n.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue booking notification: %w", err)
	}

	return nil
}
