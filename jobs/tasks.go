package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/indiepro/indiepro/internal/jobs"
	"github.com/indiepro/indiepro/internal/platform/mail"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"

	loginCodeSubject = "Your Independent Pro sign-in code"
	mailMaxRetry     = 5
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data, asynq.MaxRetry(mailMaxRetry)), nil
}

// LoginCodeEmail renders the plain-text sign-in message.
func LoginCodeEmail(email, code string, expiresAt time.Time) SendEmailPayload {
	body := fmt.Sprintf("Your sign-in code is %s\n\nIt expires at %s. If you did not ask for it, ignore this email.\n",
		code, expiresAt.UTC().Format("15:04 MST"))
	return SendEmailPayload{To: email, Subject: loginCodeSubject, Body: body}
}

// MailSender delivers a rendered message.
type MailSender interface {
	Send(ctx context.Context, msg mail.Message) error
}

// NewSendEmailHandler returns the handler for TaskTypeSendEmail tasks.
func NewSendEmailHandler(sender MailSender, metrics *jobmetrics.Metrics, logger *slog.Logger) asynq.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, t *asynq.Task) error {
		var payload SendEmailPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			metrics.Skip(TaskTypeSendEmail, "payload")
			logger.Warn("mail task payload rejected", slog.Any("error", err))
			return fmt.Errorf("decode payload: %w", asynq.SkipRetry)
		}
		tracker := metrics.Track(TaskTypeSendEmail)
		err := sender.Send(ctx, mail.Message{To: payload.To, Subject: payload.Subject, Body: payload.Body})
		if err != nil {
			logger.Error("mail delivery failed", slog.String("to", payload.To), slog.Any("error", err))
		}
		return tracker.End(err)
	}
}
