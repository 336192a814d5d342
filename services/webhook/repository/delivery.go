package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gbawo/finance-core/internal/pkg/models"
	"github.com/gbawo/finance-core/services/webhook"
)

// WebhookRepo is the sqlx-backed webhook delivery store.
type WebhookRepo struct {
	cfg *models.Config
	db  *sqlx.DB
}

// NewWebhookRepository creates a new webhook delivery repository
func NewWebhookRepository(cfg *models.Config, db *sqlx.DB) *WebhookRepo {
	return &WebhookRepo{
		cfg: cfg,
		db:  db,
	}
}

// CreateDelivery inserts the delivery record. A unique index on
// (transaction_id, event_type) makes the enqueue idempotent per transition
// event: conflicting inserts are dropped and reported as not created.
func (r *WebhookRepo) CreateDelivery(ctx context.Context, delivery *models.WebhookDelivery) (bool, error) {
	if delivery.ID == "" {
		delivery.ID = uuid.New().String()
	}
	if delivery.CreatedAt.IsZero() {
		delivery.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO webhook_deliveries (
			id, integrator_id, transaction_id, event_type, payload,
			status, attempts, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (transaction_id, event_type) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query,
		delivery.ID,
		delivery.IntegratorID,
		delivery.TransactionID,
		delivery.EventType,
		[]byte(delivery.Payload),
		models.DeliveryPending,
		0,
		delivery.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert webhook delivery: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected == 1, nil
}

// GetDueDeliveries returns all records ready for an attempt: pending ones and
// retrying ones whose schedule has passed.
func (r *WebhookRepo) GetDueDeliveries(ctx context.Context, now time.Time, limit int) ([]models.WebhookDelivery, error) {
	query := `
		SELECT id, integrator_id, transaction_id, event_type, payload,
			status, attempts, last_attempt_at, next_retry_at, delivered_at, created_at
		FROM webhook_deliveries
		WHERE status = $1 OR (status = $2 AND next_retry_at <= $3)
		ORDER BY created_at ASC
		LIMIT $4`

	deliveries := []models.WebhookDelivery{}
	err := r.db.SelectContext(ctx, &deliveries, query,
		models.DeliveryPending, models.DeliveryRetrying, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query due deliveries: %w", err)
	}
	return deliveries, nil
}

// MarkDelivered finalizes a successful delivery. delivered_at is set and the
// retry schedule cleared in the same statement.
func (r *WebhookRepo) MarkDelivered(ctx context.Context, deliveryID string, deliveredAt time.Time) error {
	query := `
		UPDATE webhook_deliveries
		SET status = $1, attempts = attempts + 1, last_attempt_at = $2,
			delivered_at = $2, next_retry_at = NULL
		WHERE id = $3`

	_, err := r.db.ExecContext(ctx, query, models.DeliveryDelivered, deliveredAt, deliveryID)
	if err != nil {
		return fmt.Errorf("failed to mark delivery delivered: %w", err)
	}
	return nil
}

// MarkRetrying records a failed attempt and its backoff schedule.
func (r *WebhookRepo) MarkRetrying(ctx context.Context, deliveryID string, attempts int, lastAttemptAt, nextRetryAt time.Time) error {
	query := `
		UPDATE webhook_deliveries
		SET status = $1, attempts = $2, last_attempt_at = $3, next_retry_at = $4
		WHERE id = $5`

	_, err := r.db.ExecContext(ctx, query, models.DeliveryRetrying, attempts, lastAttemptAt, nextRetryAt, deliveryID)
	if err != nil {
		return fmt.Errorf("failed to mark delivery retrying: %w", err)
	}
	return nil
}

// MarkFailed finalizes a delivery whose retry policy is exhausted.
func (r *WebhookRepo) MarkFailed(ctx context.Context, deliveryID string, attempts int, lastAttemptAt time.Time) error {
	query := `
		UPDATE webhook_deliveries
		SET status = $1, attempts = $2, last_attempt_at = $3, next_retry_at = NULL
		WHERE id = $4`

	_, err := r.db.ExecContext(ctx, query, models.DeliveryFailed, attempts, lastAttemptAt, deliveryID)
	if err != nil {
		return fmt.Errorf("failed to mark delivery failed: %w", err)
	}
	return nil
}

// GetIntegrator retrieves the delivery target for one integrator.
func (r *WebhookRepo) GetIntegrator(ctx context.Context, integratorID string) (*models.Integrator, error) {
	query := `
		SELECT id, name, webhook_url, webhook_secret, active, created_at
		FROM integrators
		WHERE id = $1`

	var integrator models.Integrator
	if err := r.db.GetContext(ctx, &integrator, query, integratorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, webhook.ErrIntegratorNotFound
		}
		return nil, fmt.Errorf("failed to query integrator: %w", err)
	}
	return &integrator, nil
}
