package handler

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"

	"github.com/gbawo/finance-core/internal/pkg/constants"
	"github.com/gbawo/finance-core/internal/pkg/logger"
	"github.com/gbawo/finance-core/internal/pkg/models"
	natspkg "github.com/gbawo/finance-core/internal/pkg/nats"
	"github.com/gbawo/finance-core/services/webhook"
)

// WebhookHandler consumes internal bus events for the webhook service
type WebhookHandler struct {
	webhookUC  webhook.WebhookUC
	natsClient *natspkg.Client
	subs       []*nats.Subscription
}

// NewWebhookHandler creates a new webhook NATS handler
func NewWebhookHandler(webhookUC webhook.WebhookUC, natsClient *natspkg.Client) *WebhookHandler {
	return &WebhookHandler{
		webhookUC:  webhookUC,
		natsClient: natsClient,
		subs:       make([]*nats.Subscription, 0),
	}
}

// InitConsumers subscribes to the transition event subjects
func (h *WebhookHandler) InitConsumers() error {
	logger.Info("Initializing NATS consumers for webhook service",
		logger.String("subject", constants.SubjectTransactionCancelled))

	sub, err := h.natsClient.Subscribe(constants.SubjectTransactionCancelled, h.handleTransactionCancelled)
	if err != nil {
		return err
	}
	h.subs = append(h.subs, sub)
	return nil
}

// handleTransactionCancelled enqueues the integrator notification for a
// committed cancellation. The cancellation flow also enqueues inline, so the
// unique delivery index absorbs the duplicate; this consumer mainly shortens
// the wait for transactions cancelled by other processes.
func (h *WebhookHandler) handleTransactionCancelled(msg *nats.Msg) {
	var event models.TransactionCancelledEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		logger.Error("Failed to decode transaction cancelled event",
			logger.ErrorField(err))
		return
	}

	data := map[string]interface{}{
		"previous_status":     string(event.PreviousStatus),
		"cancellation_reason": string(event.CancellationReason),
		"cancelled_by":        event.CancelledBy,
		"refund_required":     false,
		"cancellation_notes":  event.CancellationNotes,
	}

	if err := h.webhookUC.Enqueue(context.Background(), event.IntegratorID, event.TransactionID,
		models.EventTransactionCancelled, data); err != nil {
		logger.Error("Failed to enqueue delivery from cancelled event",
			logger.String("transaction_id", event.TransactionID),
			logger.ErrorField(err))
	}
}

// Close drains all subscriptions
func (h *WebhookHandler) Close() {
	for _, sub := range h.subs {
		_ = sub.Unsubscribe()
	}
}
