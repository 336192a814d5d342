package gateway

import (
	"context"
	"fmt"

	"github.com/gbawo/finance-core/internal/pkg/constants"
	"github.com/gbawo/finance-core/internal/pkg/logger"
	"github.com/gbawo/finance-core/internal/pkg/models"
	natspkg "github.com/gbawo/finance-core/internal/pkg/nats"
)

// TransactionGW publishes transaction events on the internal NATS bus.
type TransactionGW struct {
	natsClient *natspkg.Client
}

// NewTransactionGW creates a new transaction gateway
func NewTransactionGW(natsClient *natspkg.Client) *TransactionGW {
	return &TransactionGW{natsClient: natsClient}
}

// PublishTransactionCancelled announces a committed cancellation. The webhook
// service consumes it as a dispatch wake-up; the durable delivery record is
// written separately, so a lost message delays delivery but never loses it.
func (g *TransactionGW) PublishTransactionCancelled(_ context.Context, event models.TransactionCancelledEvent) error {
	logger.Info("Publishing transaction cancelled event",
		logger.String("transaction_id", event.TransactionID),
		logger.String("integrator_id", event.IntegratorID))

	if err := g.natsClient.PublishJSON(constants.SubjectTransactionCancelled, event); err != nil {
		return fmt.Errorf("failed to publish transaction cancelled event: %w", err)
	}
	return nil
}
