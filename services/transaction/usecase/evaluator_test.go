package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gbawo/finance-core/internal/pkg/models"
)

func pendingTransaction(id string, status models.TransactionStatus, age time.Duration, now time.Time) *models.Transaction {
	amount := 1000.0
	return &models.Transaction{
		ID:           id,
		Status:       status,
		FiatAmount:   &amount,
		FiatCurrency: "USD",
		CreatedAt:    now.Add(-age),
	}
}

func cancelRequest(id string) models.CancelTransactionRequest {
	return models.CancelTransactionRequest{
		TransactionID: id,
		Reason:        models.CancelReasonUserRequest,
	}
}

func TestEvaluateCancellation_ApprovesPendingWithinWindow(t *testing.T) {
	now := time.Now().UTC()
	tx := pendingTransaction("txn_abc123", models.StatusPendingPayment, 10*time.Minute, now)

	decision := EvaluateCancellation(tx, cancelRequest(tx.ID), now, DefaultCancellationWindows(), EligibilitySnapshot{FundsExpected: 1000})

	require.True(t, decision.Allowed)
	assert.Equal(t, "txn_abc123", decision.TransactionID)
	assert.Empty(t, decision.Reason)
}

func TestEvaluateCancellation_DeniesNonPendingStatuses(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		status models.TransactionStatus
	}{
		{models.StatusProcessing},
		{models.StatusCompleted},
		{models.StatusFailed},
		{models.StatusCancelled},
		{models.StatusExpired},
	}

	for _, tc := range tests {
		t.Run(string(tc.status), func(t *testing.T) {
			tx := pendingTransaction("txn_def456", tc.status, time.Minute, now)

			decision := EvaluateCancellation(tx, cancelRequest(tx.ID), now, DefaultCancellationWindows(), EligibilitySnapshot{})

			require.False(t, decision.Allowed)
			assert.Equal(t, models.DenyCancellationNotAllowed, decision.Reason)
			assert.Equal(t, tc.status, decision.CurrentStatus)
			assert.Contains(t, decision.Message, string(tc.status))
		})
	}
}

func TestEvaluateCancellation_SuspendedRequiresAdminApproval(t *testing.T) {
	now := time.Now().UTC()
	tx := pendingTransaction("txn_susp123", models.StatusSuspended, time.Minute, now)

	decision := EvaluateCancellation(tx, cancelRequest(tx.ID), now, DefaultCancellationWindows(), EligibilitySnapshot{})

	require.False(t, decision.Allowed)
	assert.Equal(t, models.DenyAdminApprovalRequired, decision.Reason)
	assert.Contains(t, decision.Details, "support_reference")
	assert.Equal(t, "CASE-txn_susp123", decision.Details["support_reference"])
}

func TestEvaluateCancellation_DeniesPastMaxWindow(t *testing.T) {
	now := time.Now().UTC()
	tx := pendingTransaction("txn_old", models.StatusPending, 31*time.Minute, now)

	decision := EvaluateCancellation(tx, cancelRequest(tx.ID), now, DefaultCancellationWindows(), EligibilitySnapshot{})

	require.False(t, decision.Allowed)
	assert.Equal(t, models.DenyCancellationNotAllowed, decision.Reason)
	assert.Contains(t, decision.Message, "Maximum cancellation time exceeded")
	assert.Equal(t, 31, decision.Details["transaction_age_minutes"])
	assert.Equal(t, 30, decision.Details["max_window_minutes"])
}

func TestEvaluateCancellation_AllowsAtExactMaxWindow(t *testing.T) {
	now := time.Now().UTC()
	tx := pendingTransaction("txn_edge", models.StatusPending, 30*time.Minute, now)

	decision := EvaluateCancellation(tx, cancelRequest(tx.ID), now, DefaultCancellationWindows(), EligibilitySnapshot{})

	assert.True(t, decision.Allowed)
}

func TestEvaluateCancellation_DeniesOnPartialFunds(t *testing.T) {
	now := time.Now().UTC()
	tx := pendingTransaction("txn_ghi789", models.StatusPendingPayment, 15*time.Minute, now)

	decision := EvaluateCancellation(tx, cancelRequest(tx.ID), now, DefaultCancellationWindows(), EligibilitySnapshot{
		FundsReceived: true,
		FundsAmount:   500,
		FundsExpected: 1000,
	})

	require.False(t, decision.Allowed)
	assert.Equal(t, models.DenyFundsReceived, decision.Reason)
	assert.Equal(t, 500.0, decision.Details["funds_received"])
	assert.Equal(t, 1000.0, decision.Details["total_expected"])
	assert.Contains(t, decision.AlternativeActions, "process_refund")
}

func TestEvaluateCancellation_GracePeriodDoesNotBypassFundsCheck(t *testing.T) {
	now := time.Now().UTC()
	tx := pendingTransaction("txn_fresh", models.StatusPending, 2*time.Minute, now)

	decision := EvaluateCancellation(tx, cancelRequest(tx.ID), now, DefaultCancellationWindows(), EligibilitySnapshot{
		FundsReceived: true,
		FundsAmount:   200,
		FundsExpected: 1000,
	})

	require.False(t, decision.Allowed)
	assert.Equal(t, models.DenyFundsReceived, decision.Reason)
}

func TestEvaluateCancellation_GracePeriodOverridesMaxWindow(t *testing.T) {
	// A shrunken max window makes a 2-minute-old transaction older than the
	// window while still inside the grace period.
	now := time.Now().UTC()
	tx := pendingTransaction("txn_fresh", models.StatusPending, 2*time.Minute, now)
	windows := CancellationWindows{GracePeriod: 5 * time.Minute, MaxCancelWindow: time.Minute}

	decision := EvaluateCancellation(tx, cancelRequest(tx.ID), now, windows, EligibilitySnapshot{})

	assert.True(t, decision.Allowed)
}

func TestEvaluateCancellation_DeniesOnRateLock(t *testing.T) {
	now := time.Now().UTC()
	tx := pendingTransaction("txn_rate", models.StatusPendingCryptoDeposit, 10*time.Minute, now)

	decision := EvaluateCancellation(tx, cancelRequest(tx.ID), now, DefaultCancellationWindows(), EligibilitySnapshot{RateLocked: true})

	require.False(t, decision.Allowed)
	assert.Equal(t, models.DenyRateLocked, decision.Reason)
}

func TestEvaluateCancellation_DeniesOnCompletedCompliance(t *testing.T) {
	now := time.Now().UTC()
	tx := pendingTransaction("txn_kyc", models.StatusWaitingForPayment, 10*time.Minute, now)

	decision := EvaluateCancellation(tx, cancelRequest(tx.ID), now, DefaultCancellationWindows(), EligibilitySnapshot{ComplianceCompleted: true})

	require.False(t, decision.Allowed)
	assert.Equal(t, models.DenyComplianceCompleted, decision.Reason)
}

func TestEvaluateCancellation_CheckOrderIsStatusThenWindowThenFunds(t *testing.T) {
	now := time.Now().UTC()

	// Everything wrong at once: status wins.
	tx := pendingTransaction("txn_multi", models.StatusProcessing, time.Hour, now)
	decision := EvaluateCancellation(tx, cancelRequest(tx.ID), now, DefaultCancellationWindows(), EligibilitySnapshot{
		FundsReceived: true, FundsAmount: 100, RateLocked: true, ComplianceCompleted: true,
	})
	require.False(t, decision.Allowed)
	assert.Equal(t, models.DenyCancellationNotAllowed, decision.Reason)

	// Pending but old and funded: the window denial wins over funds.
	tx = pendingTransaction("txn_multi", models.StatusPending, time.Hour, now)
	decision = EvaluateCancellation(tx, cancelRequest(tx.ID), now, DefaultCancellationWindows(), EligibilitySnapshot{
		FundsReceived: true, FundsAmount: 100,
	})
	require.False(t, decision.Allowed)
	assert.Contains(t, decision.Message, "Maximum cancellation time exceeded")

	// In window, funded and rate locked: funds wins over rate lock.
	tx = pendingTransaction("txn_multi", models.StatusPending, 10*time.Minute, now)
	decision = EvaluateCancellation(tx, cancelRequest(tx.ID), now, DefaultCancellationWindows(), EligibilitySnapshot{
		FundsReceived: true, FundsAmount: 100, RateLocked: true, ComplianceCompleted: true,
	})
	require.False(t, decision.Allowed)
	assert.Equal(t, models.DenyFundsReceived, decision.Reason)
}

func TestDeniedNotFound(t *testing.T) {
	decision := DeniedNotFound("txn_zzz")

	require.False(t, decision.Allowed)
	assert.Equal(t, models.DenyTransactionNotFound, decision.Reason)
	assert.Equal(t, "txn_zzz", decision.TransactionID)
	assert.Contains(t, decision.AlternativeActions, "verify_transaction_id")
}

func TestWindowsFromConfig(t *testing.T) {
	windows := WindowsFromConfig(models.CancellationConfig{GracePeriodMinutes: 10, MaxWindowMinutes: 60})
	assert.Equal(t, 10*time.Minute, windows.GracePeriod)
	assert.Equal(t, time.Hour, windows.MaxCancelWindow)

	windows = WindowsFromConfig(models.CancellationConfig{})
	assert.Equal(t, DefaultGracePeriod, windows.GracePeriod)
	assert.Equal(t, DefaultMaxCancelWindow, windows.MaxCancelWindow)
}
