package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"fieldservice_backend/internal/events"
	"fieldservice_backend/internal/notification/email"
	"fieldservice_backend/platform/logger"
)

type testSender struct {
	missedCalls    int
	cancelledCalls int
	lastTo         string
	lastClient     string
	lastURL        string
	err            error
}

func (s *testSender) SendConfirmationMissed(_ context.Context, toEmail, clientName, recordURL string, _ time.Time) error {
	s.missedCalls++
	s.lastTo = toEmail
	s.lastClient = clientName
	s.lastURL = recordURL
	return s.err
}

func (s *testSender) SendVisitCancelled(_ context.Context, toEmail, clientName, recordURL string) error {
	s.cancelledCalls++
	s.lastTo = toEmail
	s.lastClient = clientName
	s.lastURL = recordURL
	return s.err
}

var _ email.Sender = (*testSender)(nil)

func newTestModule(sender email.Sender) *Module {
	return &Module{
		sender:           sender,
		coordinatorEmail: "coordinator@example.com",
		baseURL:          "https://portal.example.com",
		log:              logger.New("test"),
	}
}

func TestOnConfirmationMissed(t *testing.T) {
	sender := &testSender{}
	m := newTestModule(sender)

	recordID := uuid.New()
	err := m.onConfirmationMissed(context.Background(), events.ConfirmationDeadlineMissed{
		RecordID:   recordID,
		ClientName: "Ana Torres",
		Deadline:   time.Now().Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sender.missedCalls != 1 {
		t.Fatalf("expected 1 email, got %d", sender.missedCalls)
	}
	if sender.lastTo != "coordinator@example.com" {
		t.Errorf("wrong recipient: %s", sender.lastTo)
	}
	wantURL := "https://portal.example.com/maintenance/" + recordID.String()
	if sender.lastURL != wantURL {
		t.Errorf("record url = %s, want %s", sender.lastURL, wantURL)
	}
}

func TestOnConfirmationMissedDeliveryFailure(t *testing.T) {
	sender := &testSender{err: errors.New("smtp down")}
	m := newTestModule(sender)

	err := m.onConfirmationMissed(context.Background(), events.ConfirmationDeadlineMissed{
		RecordID:   uuid.New(),
		ClientName: "Ana Torres",
		Deadline:   time.Now(),
	})
	if err == nil {
		t.Fatal("expected delivery error to propagate")
	}
}

func TestOnConfirmationMissedWrongEventType(t *testing.T) {
	sender := &testSender{}
	m := newTestModule(sender)

	err := m.onConfirmationMissed(context.Background(), events.MaintenanceCompleted{RecordID: uuid.New()})
	if err == nil {
		t.Fatal("expected type mismatch error")
	}
	if sender.missedCalls != 0 {
		t.Fatal("no email should be sent for mismatched events")
	}
}

func TestOnCancelled(t *testing.T) {
	sender := &testSender{}
	m := newTestModule(sender)

	err := m.onCancelled(context.Background(), events.MaintenanceCancelled{
		RecordID:   uuid.New(),
		ClientName: "Ana Torres",
		Reason:     "client request",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sender.cancelledCalls != 1 {
		t.Fatalf("expected 1 email, got %d", sender.cancelledCalls)
	}
	if sender.lastClient != "Ana Torres" {
		t.Errorf("wrong client name: %s", sender.lastClient)
	}
}

func TestOnCancelledDeliveryFailureIsSwallowed(t *testing.T) {
	sender := &testSender{err: errors.New("smtp down")}
	m := newTestModule(sender)

	err := m.onCancelled(context.Background(), events.MaintenanceCancelled{
		RecordID:   uuid.New(),
		ClientName: "Ana Torres",
	})
	if err != nil {
		t.Fatalf("cancellation email failures must not fail the event: %v", err)
	}
}

func TestSubscribeDelivers(t *testing.T) {
	sender := &testSender{}
	m := newTestModule(sender)

	bus := events.NewInMemoryBus(logger.New("test"))
	m.Subscribe(bus)

	if err := bus.PublishSync(context.Background(), events.ConfirmationDeadlineMissed{
		RecordID:   uuid.New(),
		ClientName: "Ana Torres",
		Deadline:   time.Now(),
	}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if sender.missedCalls != 1 {
		t.Fatalf("expected subscribed handler to run, got %d calls", sender.missedCalls)
	}
}
