package webhook

import (
	"context"

	"github.com/gbawo/finance-core/internal/pkg/models"
)

// WebhookUC defines the interface for webhook dispatch business logic
type WebhookUC interface {
	// Enqueue writes the durable delivery record for one notification event.
	// It is idempotent per (transaction, event type): re-enqueueing the same
	// transition event reuses the existing record.
	Enqueue(ctx context.Context, integratorID, transactionID string, eventType models.WebhookEventType, data map[string]interface{}) error

	// ProcessDue attempts delivery for every due record and returns how many
	// were picked up.
	ProcessDue(ctx context.Context) (int, error)

	// Run drives the polling worker loop until the context is cancelled.
	Run(ctx context.Context)
}
