package transaction

import "errors"

// Sentinel errors shared across the transaction service layers.
var (
	// ErrTransactionNotFound is returned by repositories when no row exists
	// for the requested transaction id.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrReceiptNotAvailable is returned when a receipt is requested for a
	// transaction that has not completed.
	ErrReceiptNotAvailable = errors.New("receipt available only for completed transactions")

	// ErrInvalidTransition is returned when a status change is not permitted
	// by the transition table.
	ErrInvalidTransition = errors.New("invalid status transition")
)
