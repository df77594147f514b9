package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/PauloRoberto1224/gestaocontratopy/internal/infra"

	"github.com/rs/zerolog/log"
)

// ReminderEmailPayload is the job envelope sent to QueueReminderEmail.
type ReminderEmailPayload struct {
	ReminderID     string `json:"reminder_id"`
	ContractNumber string `json:"contract_number"`
	Company        string `json:"company"`
	Title          string `json:"title"`
	Description    string `json:"description,omitempty"`
	DueDate        string `json:"due_date"` // YYYY-MM-DD
	ToEmail        string `json:"to_email"`
	ToName         string `json:"to_name"`
}

// Sender delivers plain-text mail. *infra.Mailer satisfies it.
type Sender interface {
	Configured() bool
	Send(to, subject, body string) error
}

// EmailWorker sends reminder notifications through SMTP behind a circuit
// breaker.
type EmailWorker struct {
	mailer Sender
	cb     *infra.CircuitBreaker
}

func NewEmailWorker(mailer Sender, cb *infra.CircuitBreaker) *EmailWorker {
	return &EmailWorker{mailer: mailer, cb: cb}
}

// Process sends one reminder email. Invalid payloads and an unconfigured
// mailer are dropped, not retried.
func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload ReminderEmailPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return nil
	}
	if payload.ToEmail == "" {
		log.Warn().Str("reminder_id", payload.ReminderID).Msg("email_worker: empty to_email, skipping")
		return nil
	}
	if !w.mailer.Configured() {
		log.Warn().Str("reminder_id", payload.ReminderID).Msg("email_worker: SMTP not configured, skipping")
		return nil
	}

	subject, body := reminderMessage(payload)
	err := w.cb.Execute(func() error {
		return w.mailer.Send(payload.ToEmail, subject, body)
	})
	if err != nil {
		if errors.Is(err, infra.ErrCircuitOpen) {
			log.Debug().Str("reminder_id", payload.ReminderID).Msg("email_worker: circuit open")
		}
		return fmt.Errorf("send reminder %s: %w", payload.ReminderID, err)
	}
	log.Info().Str("to", payload.ToEmail).Str("reminder_id", payload.ReminderID).Msg("email_worker: reminder sent")
	return nil
}

func reminderMessage(p ReminderEmailPayload) (subject, body string) {
	subject = fmt.Sprintf("[%s] Reminder due %s: %s", p.ContractNumber, p.DueDate, p.Title)

	var b strings.Builder
	name := p.ToName
	if name == "" {
		name = "there"
	}
	fmt.Fprintf(&b, "Hello %s,\n\n", name)
	fmt.Fprintf(&b, "The reminder %q for contract %s (%s) is due on %s.\n", p.Title, p.ContractNumber, p.Company, p.DueDate)
	if p.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", p.Description)
	}
	b.WriteString("\nMark it as completed once it has been handled.\n")
	return subject, b.String()
}
