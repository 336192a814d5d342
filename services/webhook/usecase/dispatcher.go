package usecase

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gbawo/finance-core/internal/pkg/logger"
	"github.com/gbawo/finance-core/internal/pkg/models"
	"github.com/gbawo/finance-core/internal/pkg/retry"
	"github.com/gbawo/finance-core/services/webhook"
)

// Signature headers attached to every delivery.
const (
	SignatureHeader = "X-Gbawo-Signature"
	EventHeader     = "X-Gbawo-Event"
	DeliveryHeader  = "X-Gbawo-Delivery"
)

// HTTPPoster posts a JSON body to an endpoint. Satisfied by the shared
// outbound HTTP client.
type HTTPPoster interface {
	PostJSON(ctx context.Context, url string, headers map[string]string, body []byte) (int, error)
}

// WebhookUC implements the webhook.WebhookUC interface
type webhookUC struct {
	cfg         *models.Config
	repo        webhook.WebhookRepo
	poster      HTTPPoster
	policy      retry.Policy
	maxAttempts int
	maxElapsed  time.Duration
	pollEvery   time.Duration
	batchSize   int
}

// NewWebhookUC creates a new webhook dispatch use case
func NewWebhookUC(cfg *models.Config, repo webhook.WebhookRepo, poster HTTPPoster) (webhook.WebhookUC, error) {
	if repo == nil || poster == nil {
		return nil, errors.New("webhook usecase requires a repository and an HTTP poster")
	}

	policy := retry.DefaultPolicy()
	if cfg.Webhook.BaseDelaySeconds > 0 {
		policy.BaseDelay = time.Duration(cfg.Webhook.BaseDelaySeconds) * time.Second
	}
	if cfg.Webhook.MaxDelaySeconds > 0 {
		policy.MaxDelay = time.Duration(cfg.Webhook.MaxDelaySeconds) * time.Second
	}
	if cfg.Webhook.Multiplier > 1 {
		policy.Multiplier = cfg.Webhook.Multiplier
	}

	uc := &webhookUC{
		cfg:         cfg,
		repo:        repo,
		poster:      poster,
		policy:      policy,
		maxAttempts: cfg.Webhook.MaxAttempts,
		maxElapsed:  time.Duration(cfg.Webhook.MaxElapsedMinutes) * time.Minute,
		pollEvery:   time.Duration(cfg.Webhook.PollIntervalSeconds) * time.Second,
		batchSize:   cfg.Webhook.BatchSize,
	}
	if uc.maxAttempts <= 0 {
		uc.maxAttempts = 8
	}
	if uc.maxElapsed <= 0 {
		uc.maxElapsed = 24 * time.Hour
	}
	if uc.pollEvery <= 0 {
		uc.pollEvery = 15 * time.Second
	}
	if uc.batchSize <= 0 {
		uc.batchSize = 50
	}
	return uc, nil
}

// Enqueue writes the durable delivery record for one notification event.
func (uc *webhookUC) Enqueue(ctx context.Context, integratorID, transactionID string, eventType models.WebhookEventType, data map[string]interface{}) error {
	payload := models.WebhookPayload{
		EventType:     eventType,
		Timestamp:     time.Now().UTC(),
		TransactionID: transactionID,
		IntegratorID:  integratorID,
		Data:          data,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	delivery := &models.WebhookDelivery{
		IntegratorID:  integratorID,
		TransactionID: transactionID,
		EventType:     eventType,
		Payload:       body,
		Status:        models.DeliveryPending,
	}

	created, err := uc.repo.CreateDelivery(ctx, delivery)
	if err != nil {
		return fmt.Errorf("failed to enqueue webhook delivery: %w", err)
	}
	if !created {
		logger.Debug("Webhook delivery already enqueued for this event",
			logger.String("transaction_id", transactionID),
			logger.String("event_type", string(eventType)))
		return nil
	}

	logger.Info("Webhook delivery enqueued",
		logger.String("delivery_id", delivery.ID),
		logger.String("transaction_id", transactionID),
		logger.String("integrator_id", integratorID),
		logger.String("event_type", string(eventType)))
	return nil
}

// ProcessDue attempts delivery for every due record.
func (uc *webhookUC) ProcessDue(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	due, err := uc.repo.GetDueDeliveries(ctx, now, uc.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to load due deliveries: %w", err)
	}

	for i := range due {
		uc.attemptDelivery(ctx, &due[i])
	}
	return len(due), nil
}

// Run drives the polling worker loop until the context is cancelled. The
// poller is the delivery guarantee: wake-up events only shorten the wait.
func (uc *webhookUC) Run(ctx context.Context) {
	logger.Info("Webhook dispatcher started",
		logger.Duration("poll_interval", uc.pollEvery),
		logger.Int("batch_size", uc.batchSize),
		logger.Int("max_attempts", uc.maxAttempts))

	ticker := time.NewTicker(uc.pollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Webhook dispatcher stopping")
			return
		case <-ticker.C:
			processed, err := uc.ProcessDue(ctx)
			if err != nil {
				logger.Error("Webhook dispatch cycle failed", logger.ErrorField(err))
				continue
			}
			if processed > 0 {
				logger.Info("Webhook dispatch cycle completed",
					logger.Int("processed", processed))
			}
		}
	}
}

// attemptDelivery makes exactly one delivery attempt and records the outcome.
// A record never leaves this function unaccounted: it ends up delivered,
// retrying on a schedule, or terminally failed.
func (uc *webhookUC) attemptDelivery(ctx context.Context, delivery *models.WebhookDelivery) {
	now := time.Now().UTC()
	attempts := delivery.Attempts + 1

	integrator, err := uc.repo.GetIntegrator(ctx, delivery.IntegratorID)
	if err != nil {
		if errors.Is(err, webhook.ErrIntegratorNotFound) {
			// Retrying cannot help an unknown integrator.
			logger.Error("Failing delivery to unknown integrator",
				logger.String("delivery_id", delivery.ID),
				logger.String("integrator_id", delivery.IntegratorID))
			if markErr := uc.repo.MarkFailed(ctx, delivery.ID, attempts, now); markErr != nil {
				logger.Error("Failed to mark delivery as failed",
					logger.String("delivery_id", delivery.ID),
					logger.ErrorField(markErr))
			}
			return
		}
		logger.Error("Failed to load integrator, will retry",
			logger.String("delivery_id", delivery.ID),
			logger.ErrorField(err))
		uc.recordFailure(ctx, delivery, attempts, now, err)
		return
	}
	if !integrator.Active || integrator.WebhookURL == "" {
		logger.Warn("Integrator has no active webhook endpoint",
			logger.String("delivery_id", delivery.ID),
			logger.String("integrator_id", integrator.ID))
		uc.recordFailure(ctx, delivery, attempts, now, errors.New("integrator webhook inactive"))
		return
	}

	headers := map[string]string{
		SignatureHeader: SignPayload(integrator.WebhookSecret, delivery.Payload),
		EventHeader:     string(delivery.EventType),
		DeliveryHeader:  delivery.ID,
	}

	statusCode, err := uc.poster.PostJSON(ctx, integrator.WebhookURL, headers, delivery.Payload)
	if err != nil {
		logger.Warn("Webhook delivery attempt failed",
			logger.String("delivery_id", delivery.ID),
			logger.String("url", integrator.WebhookURL),
			logger.Int("status_code", statusCode),
			logger.Int("attempt", attempts),
			logger.ErrorField(err))
		uc.recordFailure(ctx, delivery, attempts, now, err)
		return
	}

	if err := uc.repo.MarkDelivered(ctx, delivery.ID, now); err != nil {
		logger.Error("Failed to mark delivery as delivered",
			logger.String("delivery_id", delivery.ID),
			logger.ErrorField(err))
		return
	}

	logger.Info("Webhook delivered",
		logger.String("delivery_id", delivery.ID),
		logger.String("transaction_id", delivery.TransactionID),
		logger.Int("status_code", statusCode),
		logger.Int("attempts", attempts))
}

// recordFailure schedules the next retry, or finalizes the record once the
// attempt cap or the maximum elapsed time is exhausted.
func (uc *webhookUC) recordFailure(ctx context.Context, delivery *models.WebhookDelivery, attempts int, now time.Time, cause error) {
	elapsed := now.Sub(delivery.CreatedAt)
	if attempts >= uc.maxAttempts || elapsed > uc.maxElapsed {
		logger.Error("Webhook delivery exhausted its retry policy",
			logger.String("delivery_id", delivery.ID),
			logger.String("transaction_id", delivery.TransactionID),
			logger.Int("attempts", attempts),
			logger.Duration("elapsed", elapsed),
			logger.ErrorField(cause))
		if err := uc.repo.MarkFailed(ctx, delivery.ID, attempts, now); err != nil {
			logger.Error("Failed to mark delivery as failed",
				logger.String("delivery_id", delivery.ID),
				logger.ErrorField(err))
		}
		return
	}

	nextRetryAt := uc.policy.NextRetryAt(now, attempts)
	if err := uc.repo.MarkRetrying(ctx, delivery.ID, attempts, now, nextRetryAt); err != nil {
		logger.Error("Failed to schedule delivery retry",
			logger.String("delivery_id", delivery.ID),
			logger.ErrorField(err))
	}
}

// SignPayload computes the HMAC-SHA256 signature the integrator verifies the
// request body against.
func SignPayload(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
