package domain

import "fmt"

// Guard identifies the specific precondition that rejected a transition.
// Guards are part of the API contract: the UI maps each one to a distinct,
// user-correctable message.
type Guard string

const (
	GuardNonPositiveValue      Guard = "NonPositiveValue"
	GuardMissingPriceSupport   Guard = "MissingPriceSupport"
	GuardMissingPaymentProof   Guard = "MissingPaymentProof"
	GuardPaymentNotVerified    Guard = "PaymentNotVerified"
	GuardTechnicianUnavailable Guard = "TechnicianUnavailable"
	GuardDevicesIncomplete     Guard = "DevicesIncomplete"
	GuardConfirmationClosed    Guard = "ConfirmationClosed"
)

// GuardViolation is returned when a transition was attempted in a legal state
// but a precondition failed. The record is left unchanged.
type GuardViolation struct {
	Guard   Guard
	Message string
}

func (e *GuardViolation) Error() string {
	return fmt.Sprintf("guard %s: %s", e.Guard, e.Message)
}

func violation(guard Guard, message string) *GuardViolation {
	return &GuardViolation{Guard: guard, Message: message}
}

// IllegalTransition is returned when the requested event is not defined for
// the record's current status. Repeated occurrences indicate a caller bug,
// not a retryable user error.
type IllegalTransition struct {
	Current Status
	Event   string
}

func (e *IllegalTransition) Error() string {
	return fmt.Sprintf("event %s not allowed in status %s", e.Event, e.Current)
}

func illegal(current Status, event string) *IllegalTransition {
	return &IllegalTransition{Current: current, Event: event}
}
