package models

import (
	"encoding/json"
	"time"
)

// WebhookEventType enumerates the events delivered to integrators.
type WebhookEventType string

const (
	EventTransactionCancelled WebhookEventType = "transaction.cancelled"
	EventTransactionCompleted WebhookEventType = "transaction.completed"
	EventTransactionFailed    WebhookEventType = "transaction.failed"
)

// WebhookDeliveryStatus enumerates delivery record states.
type WebhookDeliveryStatus string

const (
	DeliveryPending   WebhookDeliveryStatus = "pending"
	DeliveryDelivered WebhookDeliveryStatus = "delivered"
	DeliveryFailed    WebhookDeliveryStatus = "failed"
	DeliveryRetrying  WebhookDeliveryStatus = "retrying"
)

// WebhookDelivery is the at-least-once delivery record for one notification
// event. delivered implies DeliveredAt set and NextRetryAt nil; retrying
// implies NextRetryAt in the future.
type WebhookDelivery struct {
	ID            string                `json:"id" db:"id"`
	IntegratorID  string                `json:"integrator_id" db:"integrator_id"`
	TransactionID string                `json:"transaction_id,omitempty" db:"transaction_id"`
	EventType     WebhookEventType      `json:"event_type" db:"event_type"`
	Payload       json.RawMessage       `json:"payload" db:"payload"`
	Status        WebhookDeliveryStatus `json:"delivery_status" db:"status"`
	Attempts      int                   `json:"delivery_attempts" db:"attempts"`
	LastAttemptAt *time.Time            `json:"last_attempt_at,omitempty" db:"last_attempt_at"`
	NextRetryAt   *time.Time            `json:"next_retry_at,omitempty" db:"next_retry_at"`
	DeliveredAt   *time.Time            `json:"delivered_at,omitempty" db:"delivered_at"`
	CreatedAt     time.Time             `json:"created_at" db:"created_at"`
}

// WebhookPayload is the envelope POSTed to the integrator's endpoint.
type WebhookPayload struct {
	EventType     WebhookEventType       `json:"event_type"`
	Timestamp     time.Time              `json:"timestamp"`
	TransactionID string                 `json:"transaction_id"`
	IntegratorID  string                 `json:"integrator_id"`
	Data          map[string]interface{} `json:"data"`
}

// CancellationEventData is the data block of a transaction.cancelled webhook.
type CancellationEventData struct {
	PreviousStatus     TransactionStatus  `json:"previous_status"`
	CancellationReason CancellationReason `json:"cancellation_reason"`
	CancelledBy        string             `json:"cancelled_by"`
	RefundRequired     bool               `json:"refund_required"`
	CancellationNotes  string             `json:"cancellation_notes,omitempty"`
}
