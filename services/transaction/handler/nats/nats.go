package nats

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"

	"github.com/gbawo/finance-core/internal/pkg/constants"
	"github.com/gbawo/finance-core/internal/pkg/logger"
	"github.com/gbawo/finance-core/internal/pkg/models"
	natspkg "github.com/gbawo/finance-core/internal/pkg/nats"
	"github.com/gbawo/finance-core/services/transaction"
)

// TransactionHandler consumes provider events for the transaction service
type TransactionHandler struct {
	transactionUC transaction.TransactionUC
	natsClient    *natspkg.Client
	subs          []*nats.Subscription
}

// NewTransactionHandler creates a new transaction NATS handler
func NewTransactionHandler(transactionUC transaction.TransactionUC, natsClient *natspkg.Client) *TransactionHandler {
	return &TransactionHandler{
		transactionUC: transactionUC,
		natsClient:    natsClient,
		subs:          make([]*nats.Subscription, 0),
	}
}

// InitConsumers subscribes to the provider notification subjects
func (h *TransactionHandler) InitConsumers() error {
	logger.Info("Initializing NATS consumers for transaction service",
		logger.String("subject", constants.SubjectPaymentReceived))

	sub, err := h.natsClient.Subscribe(constants.SubjectPaymentReceived, h.handlePaymentReceived)
	if err != nil {
		return err
	}
	h.subs = append(h.subs, sub)
	return nil
}

func (h *TransactionHandler) handlePaymentReceived(msg *nats.Msg) {
	var event models.PaymentReceivedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		logger.Error("Failed to decode payment received event",
			logger.ErrorField(err))
		return
	}

	logger.Info("Received payment notification",
		logger.String("transaction_id", event.TransactionID),
		logger.Float64("amount", event.Amount),
		logger.String("currency", event.Currency))

	if err := h.transactionUC.ProcessPaymentReceived(context.Background(), event); err != nil {
		logger.Error("Failed to process payment received event",
			logger.String("transaction_id", event.TransactionID),
			logger.ErrorField(err))
	}
}

// Close drains all subscriptions
func (h *TransactionHandler) Close() {
	for _, sub := range h.subs {
		_ = sub.Unsubscribe()
	}
}
