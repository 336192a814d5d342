package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/gbawo/finance-core/internal/pkg/constants"
	"github.com/gbawo/finance-core/internal/pkg/database"
)

// FundsRepo answers the funds-received eligibility check from the payments
// already materialized against a transaction. No live provider call happens
// on the decision path.
type FundsRepo struct {
	db *sqlx.DB
}

// NewFundsRepository creates a new funds reader
func NewFundsRepository(db *sqlx.DB) *FundsRepo {
	return &FundsRepo{db: db}
}

// FundsReceived reports whether any payment has been recorded for the
// transaction and the total amount received so far.
func (r *FundsRepo) FundsReceived(ctx context.Context, transactionID string) (bool, float64, error) {
	var total float64
	err := r.db.GetContext(ctx, &total,
		`SELECT COALESCE(SUM(amount), 0) FROM transaction_payments WHERE transaction_id = $1`,
		transactionID)
	if err != nil {
		return false, 0, fmt.Errorf("failed to sum received payments: %w", err)
	}
	return total > 0, total, nil
}

// RateLockRepo answers the rate-lock eligibility check from the Redis flag
// set by downstream settlement when it claims a quoted rate.
type RateLockRepo struct {
	redisClient *database.RedisClient
}

// NewRateLockRepository creates a new rate-lock reader
func NewRateLockRepository(redisClient *database.RedisClient) *RateLockRepo {
	return &RateLockRepo{redisClient: redisClient}
}

// RateLocked reports whether the transaction's exchange rate is claimed.
func (r *RateLockRepo) RateLocked(ctx context.Context, transactionID string) (bool, error) {
	locked, err := r.redisClient.Exists(ctx, constants.RateLockKey(transactionID))
	if err != nil {
		return false, fmt.Errorf("failed to check rate lock flag: %w", err)
	}
	return locked, nil
}

// ComplianceRepo answers the compliance eligibility check from recorded
// screening sign-offs.
type ComplianceRepo struct {
	db *sqlx.DB
}

// NewComplianceRepository creates a new compliance reader
func NewComplianceRepository(db *sqlx.DB) *ComplianceRepo {
	return &ComplianceRepo{db: db}
}

// ComplianceCompleted reports whether a completed screening exists for the
// transaction.
func (r *ComplianceRepo) ComplianceCompleted(ctx context.Context, transactionID string) (bool, error) {
	var completed bool
	err := r.db.GetContext(ctx, &completed,
		`SELECT EXISTS (
			SELECT 1 FROM compliance_checks
			WHERE transaction_id = $1 AND status = 'completed'
		)`,
		transactionID)
	if err != nil {
		return false, fmt.Errorf("failed to check compliance status: %w", err)
	}
	return completed, nil
}
