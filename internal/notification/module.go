// Package notification provides event handlers for alerting the coordinator
// in response to domain events. Domain modules publish events and stay
// unaware of email delivery.
package notification

import (
	"context"
	"fmt"

	"fieldservice_backend/internal/events"
	"fieldservice_backend/internal/notification/email"
	"fieldservice_backend/platform/config"
	"fieldservice_backend/platform/logger"
)

// Module wires coordinator email notifications to the event bus.
type Module struct {
	sender           email.Sender
	coordinatorEmail string
	baseURL          string
	log              *logger.Logger
}

// NewModule creates the notification module. When email is disabled the
// module still subscribes, but drops every message.
func NewModule(cfg interface {
	config.EmailConfig
	config.NotificationConfig
}, log *logger.Logger) *Module {
	var sender email.Sender = email.NoopSender{}
	if cfg.GetEmailEnabled() {
		sender = email.NewSMTPSender(cfg)
	}

	return &Module{
		sender:           sender,
		coordinatorEmail: cfg.GetCoordinatorEmail(),
		baseURL:          cfg.GetAppBaseURL(),
		log:              log,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "notification"
}

// Subscribe registers the module's event handlers on the bus.
func (m *Module) Subscribe(bus events.Bus) {
	bus.Subscribe(events.ConfirmationDeadlineMissed{}.EventName(), events.HandlerFunc(m.onConfirmationMissed))
	bus.Subscribe(events.MaintenanceCancelled{}.EventName(), events.HandlerFunc(m.onCancelled))
}

func (m *Module) onConfirmationMissed(ctx context.Context, event events.Event) error {
	e, ok := event.(events.ConfirmationDeadlineMissed)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	err := m.sender.SendConfirmationMissed(ctx, m.coordinatorEmail, e.ClientName, m.recordURL(e.RecordID.String()), e.Deadline)
	if err != nil {
		m.log.Error("failed to send confirmation-missed email", "record_id", e.RecordID, "error", err)
		return err
	}

	m.log.Info("coordinator notified of missed confirmation", "record_id", e.RecordID)
	return nil
}

func (m *Module) onCancelled(ctx context.Context, event events.Event) error {
	e, ok := event.(events.MaintenanceCancelled)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	// Cancellation emails are informational; a delivery failure is logged
	// but never retried.
	err := m.sender.SendVisitCancelled(ctx, m.coordinatorEmail, e.ClientName, m.recordURL(e.RecordID.String()))
	if err != nil {
		m.log.Warn("failed to send cancellation email", "record_id", e.RecordID, "error", err)
	}
	return nil
}

func (m *Module) recordURL(recordID string) string {
	return fmt.Sprintf("%s/maintenance/%s", m.baseURL, recordID)
}
