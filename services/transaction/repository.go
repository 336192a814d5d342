package transaction

import (
	"context"
	"time"

	"github.com/gbawo/finance-core/internal/pkg/models"
)

// TransactionRepo defines the interface for transaction data access operations
type TransactionRepo interface {
	GetTransaction(ctx context.Context, transactionID string) (*models.Transaction, error)
	ListTransactions(ctx context.Context, query models.TransactionListQuery) (*models.TransactionList, error)

	// MarkCancelled moves the transaction to cancelled with reason, notes and
	// cancelled_at in one statement, guarded by a pending-family status
	// predicate. It reports whether this call won the transition.
	MarkCancelled(ctx context.Context, transactionID string, reason models.CancellationReason, notes string, cancelledAt time.Time) (bool, error)

	// MarkSuspendedCancelled is the admin path: same write, guarded by
	// status = suspended.
	MarkSuspendedCancelled(ctx context.Context, transactionID string, reason models.CancellationReason, notes string, cancelledAt time.Time) (bool, error)

	// TransitionStatus performs a guarded status update: the row changes only
	// if its current status is one of the listed from statuses.
	TransitionStatus(ctx context.Context, transactionID string, from []models.TransactionStatus, to models.TransactionStatus) (bool, error)

	AppendTimelineStep(ctx context.Context, entry *models.TimelineEntry) error
	GetTimeline(ctx context.Context, transactionID string) ([]models.TimelineEntry, error)

	// RecordPaymentReceived stores an inbound provider payment against the
	// transaction.
	RecordPaymentReceived(ctx context.Context, transactionID string, amount float64, currency string, receivedAt time.Time) error
}

// FundsReader reports whether and how much money has been received for a
// transaction.
type FundsReader interface {
	FundsReceived(ctx context.Context, transactionID string) (received bool, amount float64, err error)
}

// RateLockReader reports whether the quoted exchange rate has been locked by
// downstream settlement.
type RateLockReader interface {
	RateLocked(ctx context.Context, transactionID string) (bool, error)
}

// ComplianceReader reports whether compliance checks have completed for a
// transaction.
type ComplianceReader interface {
	ComplianceCompleted(ctx context.Context, transactionID string) (bool, error)
}
