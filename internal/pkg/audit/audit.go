package audit

import (
	"time"

	"github.com/google/uuid"
)

// Severity classifies security events for monitoring.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Event types recorded by the cancellation flow.
const (
	EventCancellationAttempt = "transaction.cancellation.attempt"
	EventCancellationSuccess = "transaction.cancellation.success"
	EventCancellationFailed  = "transaction.cancellation.failed"
)

// Event is an immutable security/audit record.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Severity  Severity               `json:"severity"`
	Payload   map[string]interface{} `json:"payload"`
	Timestamp time.Time              `json:"timestamp"`
}

// Sink receives audit events. Record must be synchronous, non-blocking and
// must never fail the caller: a logging failure must never abort a
// cancellation.
type Sink interface {
	Record(eventType string, severity Severity, payload map[string]interface{})
}

func newEvent(eventType string, severity Severity, payload map[string]interface{}) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Severity:  severity,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}
