package webhook

import (
	"context"
	"errors"
	"time"

	"github.com/gbawo/finance-core/internal/pkg/models"
)

// ErrIntegratorNotFound is returned when no integrator exists for the
// requested id.
var ErrIntegratorNotFound = errors.New("integrator not found")

// WebhookRepo defines the interface for webhook delivery data access
type WebhookRepo interface {
	// CreateDelivery inserts the delivery record, reporting false when a
	// record for the same (transaction, event type) already exists.
	CreateDelivery(ctx context.Context, delivery *models.WebhookDelivery) (bool, error)

	// GetDueDeliveries returns pending records plus retrying records whose
	// next_retry_at has passed, oldest first.
	GetDueDeliveries(ctx context.Context, now time.Time, limit int) ([]models.WebhookDelivery, error)

	MarkDelivered(ctx context.Context, deliveryID string, deliveredAt time.Time) error
	MarkRetrying(ctx context.Context, deliveryID string, attempts int, lastAttemptAt, nextRetryAt time.Time) error
	MarkFailed(ctx context.Context, deliveryID string, attempts int, lastAttemptAt time.Time) error

	GetIntegrator(ctx context.Context, integratorID string) (*models.Integrator, error)
}
