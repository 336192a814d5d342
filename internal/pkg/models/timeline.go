package models

import (
	"time"

	"github.com/gbawo/finance-core/internal/pkg/converter"
)

// TimelineStep enumerates the named steps of a transaction timeline.
type TimelineStep string

const (
	StepTransactionCreated     TimelineStep = "transaction_created"
	StepPaymentReceived        TimelineStep = "payment_received"
	StepCryptoSent             TimelineStep = "crypto_sent"
	StepCryptoReceived         TimelineStep = "crypto_received"
	StepProcessingExchange     TimelineStep = "processing_exchange"
	StepProcessingDisbursement TimelineStep = "processing_disbursement"
	StepWaitingPayment         TimelineStep = "waiting_payment"
	StepTransactionCancelled   TimelineStep = "transaction_cancelled"
)

// TimelineStepStatus enumerates the states of a single timeline step.
type TimelineStepStatus string

const (
	StepStatusPending    TimelineStepStatus = "pending"
	StepStatusInProgress TimelineStepStatus = "in_progress"
	StepStatusCompleted  TimelineStepStatus = "completed"
	StepStatusFailed     TimelineStepStatus = "failed"
)

// IsFinal reports whether the step status admits no further change.
func (s TimelineStepStatus) IsFinal() bool {
	return s == StepStatusCompleted || s == StepStatusFailed
}

// TimelineEntry is one append-only step record attached to a transaction.
// Entries are ordered by StartedAt and a step never regresses from a final
// status.
type TimelineEntry struct {
	ID            string             `json:"id" db:"id"`
	TransactionID string             `json:"transaction_id" db:"transaction_id"`
	Step          TimelineStep       `json:"step" db:"step"`
	Status        TimelineStepStatus `json:"status" db:"status"`
	StartedAt     time.Time          `json:"timestamp" db:"started_at"`
	CompletedAt   *time.Time         `json:"completed_at,omitempty" db:"completed_at"`
	DurationMS    *int64             `json:"duration_ms,omitempty" db:"duration_ms"`
	Details       converter.JSONMap  `json:"details,omitempty" db:"details"`
	ErrorMessage  string             `json:"error_message,omitempty" db:"error_message"`
}
