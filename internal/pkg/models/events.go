package models

import "time"

// TransactionCancelledEvent is published on the internal bus when a
// cancellation commits. It carries everything the webhook payload needs so
// the consumer does not have to re-read the transaction.
type TransactionCancelledEvent struct {
	TransactionID      string             `json:"transaction_id"`
	IntegratorID       string             `json:"integrator_id"`
	PreviousStatus     TransactionStatus  `json:"previous_status"`
	CancellationReason CancellationReason `json:"cancellation_reason"`
	CancelledBy        string             `json:"cancelled_by"`
	CancellationNotes  string             `json:"cancellation_notes,omitempty"`
	CancelledAt        time.Time          `json:"cancelled_at"`
}

// PaymentReceivedEvent is the inbound provider notification that fiat funds
// arrived for a transaction.
type PaymentReceivedEvent struct {
	TransactionID string    `json:"transaction_id"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	ProviderRef   string    `json:"provider_ref,omitempty"`
	ReceivedAt    time.Time `json:"received_at"`
}
