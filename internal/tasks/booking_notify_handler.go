package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

var bookingEmailTemplate = template.Must(template.New("booking").Parse(`<h2>New booking request</h2>
<table>
<tr><td><b>Name</b></td><td>{{.Name}}</td></tr>
<tr><td><b>Email</b></td><td>{{.Email}}</td></tr>
<tr><td><b>Phone</b></td><td>{{.Phone}}</td></tr>
<tr><td><b>Date</b></td><td>{{.Date}}</td></tr>
<tr><td><b>Event type</b></td><td>{{.EventType}}</td></tr>
<tr><td><b>Received</b></td><td>{{.CreatedAt.Format "2006-01-02 15:04 MST"}}</td></tr>
</table>
<p>{{.Details}}</p>
`))

// BookingNotifyHandler emails the site owner about new booking requests
type BookingNotifyHandler struct {
	mailer    Mailer
	recipient string
	logger    *zap.Logger
}

// NewBookingNotifyHandler creates a handler sending notifications to recipient.
// With an empty recipient tasks are acknowledged without sending anything.
func NewBookingNotifyHandler(mailer Mailer, recipient string, logger *zap.Logger) *BookingNotifyHandler {
	return &BookingNotifyHandler{
		mailer:    mailer,
		recipient: recipient,
		logger:    logger,
	}
}

// ProcessTask implements asynq.Handler
func (h *BookingNotifyHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload BookingNotifyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to parse booking payload: %v: %w", err, asynq.SkipRetry)
	}

	booking := payload.Booking
	if h.recipient == "" {
		h.logger.Warn("booking notification skipped, no recipient configured", zap.String("booking_id", booking.ID))
		return nil
	}

	var body bytes.Buffer
	if err := bookingEmailTemplate.Execute(&body, booking); err != nil {
		return fmt.Errorf("failed to render booking email: %v: %w", err, asynq.SkipRetry)
	}

	subject := fmt.Sprintf("Booking request from %s", booking.Name)
	if booking.EventType != "" {
		subject = fmt.Sprintf("%s: %s", subject, booking.EventType)
	}

	if err := h.mailer.Send(h.recipient, subject, body.String()); err != nil {
		return err
	}

	h.logger.Info("booking notification sent", zap.String("booking_id", booking.ID))
	return nil
}
