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
	"github.com/gbawo/finance-core/services/transaction"
)

// TransactionRepo is the sqlx-backed transaction store.
type TransactionRepo struct {
	cfg *models.Config
	db  *sqlx.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(cfg *models.Config, db *sqlx.DB) *TransactionRepo {
	return &TransactionRepo{
		cfg: cfg,
		db:  db,
	}
}

const transactionColumns = `
	id, integrator_id, user_id, integrator_transaction_id, reference_code,
	activity_type, status, priority,
	fiat_amount, fiat_currency, crypto_amount, crypto_currency, crypto_network,
	exchange_rate, fees, fee_breakdown,
	recipient_address, recipient_bank_details,
	created_at, updated_at, completed_at, expires_at, cancelled_at,
	cancellation_reason, cancellation_notes,
	metadata, external_transaction_id`

// GetTransaction retrieves a transaction by ID
func (r *TransactionRepo) GetTransaction(ctx context.Context, transactionID string) (*models.Transaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE id = $1`, transactionColumns)

	var tx models.Transaction
	if err := r.db.GetContext(ctx, &tx, query, transactionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to query transaction: %w", err)
	}
	return &tx, nil
}

// ListTransactions retrieves a filtered, paginated transaction page
func (r *TransactionRepo) ListTransactions(ctx context.Context, q models.TransactionListQuery) (*models.TransactionList, error) {
	where := "WHERE 1=1"
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.IntegratorID != "" {
		where += " AND integrator_id = " + arg(q.IntegratorID)
	}
	if q.UserID != "" {
		where += " AND user_id = " + arg(q.UserID)
	}
	if q.Status != "" {
		where += " AND status = " + arg(q.Status)
	}
	if q.Type != "" {
		where += " AND activity_type = " + arg(q.Type)
	}
	if q.ReferenceCode != "" {
		where += " AND reference_code = " + arg(q.ReferenceCode)
	}
	if q.StartDate != nil {
		where += " AND created_at >= " + arg(*q.StartDate)
	}
	if q.EndDate != nil {
		where += " AND created_at <= " + arg(*q.EndDate)
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM transactions " + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	sortColumn := map[string]string{
		"created_at":  "created_at",
		"updated_at":  "updated_at",
		"fiat_amount": "fiat_amount",
		"status":      "status",
	}[q.SortBy]
	if sortColumn == "" {
		sortColumn = "created_at"
	}
	direction := "DESC"
	if q.SortOrder == "asc" {
		direction = "ASC"
	}

	offset := (q.Page - 1) * q.Limit
	listQuery := fmt.Sprintf(`SELECT %s FROM transactions %s ORDER BY %s %s LIMIT %s OFFSET %s`,
		transactionColumns, where, sortColumn, direction, arg(q.Limit), arg(offset))

	transactions := []models.Transaction{}
	if err := r.db.SelectContext(ctx, &transactions, listQuery, args...); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	totalPages := 0
	if q.Limit > 0 {
		totalPages = (total + q.Limit - 1) / q.Limit
	}

	return &models.TransactionList{
		Data: transactions,
		Pagination: models.PaginationMeta{
			Page:         q.Page,
			Limit:        q.Limit,
			TotalRecords: total,
			TotalPages:   totalPages,
			HasNext:      q.Page < totalPages,
			HasPrevious:  q.Page > 1,
		},
	}, nil
}

// MarkCancelled moves the transaction to cancelled in a single statement
// guarded by the pending-family predicate. The guard is what serializes
// concurrent cancellations: only one caller observes an affected row.
func (r *TransactionRepo) MarkCancelled(ctx context.Context, transactionID string, reason models.CancellationReason, notes string, cancelledAt time.Time) (bool, error) {
	return r.guardedCancel(ctx, transactionID, reason, notes, cancelledAt, models.PendingFamilyStatuses)
}

// MarkSuspendedCancelled is the admin path: the same write guarded by
// status = suspended.
func (r *TransactionRepo) MarkSuspendedCancelled(ctx context.Context, transactionID string, reason models.CancellationReason, notes string, cancelledAt time.Time) (bool, error) {
	return r.guardedCancel(ctx, transactionID, reason, notes, cancelledAt,
		[]models.TransactionStatus{models.StatusSuspended})
}

func (r *TransactionRepo) guardedCancel(ctx context.Context, transactionID string, reason models.CancellationReason, notes string, cancelledAt time.Time, from []models.TransactionStatus) (bool, error) {
	query, args, err := sqlx.In(`
		UPDATE transactions
		SET status = ?, cancellation_reason = ?, cancellation_notes = ?, cancelled_at = ?, updated_at = ?
		WHERE id = ? AND status IN (?)`,
		models.StatusCancelled, reason, notes, cancelledAt, cancelledAt, transactionID, from)
	if err != nil {
		return false, fmt.Errorf("failed to build cancellation query: %w", err)
	}
	query = r.db.Rebind(query)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to execute cancellation update: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected == 1, nil
}

// TransitionStatus performs a guarded status update and reports whether the
// row actually moved.
func (r *TransactionRepo) TransitionStatus(ctx context.Context, transactionID string, from []models.TransactionStatus, to models.TransactionStatus) (bool, error) {
	query, args, err := sqlx.In(`
		UPDATE transactions
		SET status = ?, updated_at = ?
		WHERE id = ? AND status IN (?)`,
		to, time.Now().UTC(), transactionID, from)
	if err != nil {
		return false, fmt.Errorf("failed to build transition query: %w", err)
	}
	query = r.db.Rebind(query)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to execute transition update: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected == 1, nil
}

// RecordPaymentReceived stores an inbound provider payment against the
// transaction.
func (r *TransactionRepo) RecordPaymentReceived(ctx context.Context, transactionID string, amount float64, currency string, receivedAt time.Time) error {
	query := `
		INSERT INTO transaction_payments (id, transaction_id, amount, currency, received_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query, uuid.New().String(), transactionID, amount, currency, receivedAt)
	if err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}
	return nil
}
