package transaction

import (
	"context"

	"github.com/gbawo/finance-core/internal/pkg/models"
)

// TransactionUC defines the interface for transaction business logic
type TransactionUC interface {
	// CancelTransaction runs the standard cancellation flow: eligibility
	// evaluation, the guarded status transition, timeline append and
	// integrator notification. A denied cancellation is returned as a
	// Decision, not an error.
	CancelTransaction(ctx context.Context, req models.CancelTransactionRequest) (*models.CancelTransactionResponse, models.Decision, error)

	// CancelSuspendedTransaction is the admin-only path for transactions
	// frozen by compliance review.
	CancelSuspendedTransaction(ctx context.Context, req models.CancelTransactionRequest) (*models.CancelTransactionResponse, models.Decision, error)

	// GetTransactionStatus returns the transaction with its timeline.
	GetTransactionStatus(ctx context.Context, transactionID string) (*models.TransactionStatusResponse, error)

	// ListTransactions returns a filtered, paginated transaction listing.
	ListTransactions(ctx context.Context, query models.TransactionListQuery) (*models.TransactionList, error)

	// GetTransactionReceipt builds the receipt for a completed transaction.
	GetTransactionReceipt(ctx context.Context, transactionID string) (*models.TransactionReceipt, error)

	// ProcessPaymentReceived records that provider funds arrived and moves
	// the transaction into processing.
	ProcessPaymentReceived(ctx context.Context, event models.PaymentReceivedEvent) error
}
