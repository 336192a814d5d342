package transaction

import (
	"context"

	"github.com/gbawo/finance-core/internal/pkg/models"
)

// TransactionGW defines the interface for transaction gateway operations
type TransactionGW interface {
	// PublishTransactionCancelled announces a committed cancellation on the
	// internal event bus. The webhook service consumes it as a dispatch
	// wake-up.
	PublishTransactionCancelled(ctx context.Context, event models.TransactionCancelledEvent) error
}

// WebhookEnqueuer creates the outbox delivery record for an integrator
// notification. Implemented by the webhook service usecase.
type WebhookEnqueuer interface {
	Enqueue(ctx context.Context, integratorID, transactionID string, eventType models.WebhookEventType, data map[string]interface{}) error
}
