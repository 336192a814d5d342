package constants

// Subjects used on the internal NATS event bus.
const (
	// SubjectTransactionCancelled carries committed cancellation events that
	// wake the webhook dispatcher.
	SubjectTransactionCancelled = "transaction.cancelled"

	// SubjectPaymentReceived carries provider notifications that funds
	// arrived for a transaction.
	SubjectPaymentReceived = "payment.received"
)
