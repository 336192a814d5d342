package usecase

import (
	"fmt"
	"time"

	"github.com/gbawo/finance-core/internal/pkg/models"
)

// Default time-window rule parameters, overridable through configuration.
const (
	DefaultGracePeriod     = 5 * time.Minute
	DefaultMaxCancelWindow = 30 * time.Minute
)

// CancellationWindows carries the time-window rule parameters.
type CancellationWindows struct {
	GracePeriod     time.Duration
	MaxCancelWindow time.Duration
}

// DefaultCancellationWindows returns the standard 5m grace / 30m max window.
func DefaultCancellationWindows() CancellationWindows {
	return CancellationWindows{
		GracePeriod:     DefaultGracePeriod,
		MaxCancelWindow: DefaultMaxCancelWindow,
	}
}

// WindowsFromConfig builds the time-window parameters from configuration,
// falling back to the defaults for unset values.
func WindowsFromConfig(cfg models.CancellationConfig) CancellationWindows {
	w := DefaultCancellationWindows()
	if cfg.GracePeriodMinutes > 0 {
		w.GracePeriod = time.Duration(cfg.GracePeriodMinutes) * time.Minute
	}
	if cfg.MaxWindowMinutes > 0 {
		w.MaxCancelWindow = time.Duration(cfg.MaxWindowMinutes) * time.Minute
	}
	return w
}

// EligibilitySnapshot is the pre-gathered external state the evaluator
// consults. The usecase materializes it through the funds/rate-lock/compliance
// readers before evaluation, so the evaluator itself performs no I/O.
type EligibilitySnapshot struct {
	FundsReceived       bool
	FundsAmount         float64
	FundsExpected       float64
	RateLocked          bool
	ComplianceCompleted bool
}

// EvaluateCancellation decides whether the transaction may be cancelled. It is
// a pure function over its inputs: checks run in a fixed order and the first
// failing check wins.
//
// Order: status gate, time window (grace period overrides only the max-window
// denial), funds received, rate lock, compliance sign-off. The grace period
// does not bypass the funds, rate-lock or compliance checks.
func EvaluateCancellation(tx *models.Transaction, req models.CancelTransactionRequest, now time.Time, windows CancellationWindows, checks EligibilitySnapshot) models.Decision {
	// Status gate
	if tx.Status == models.StatusSuspended {
		d := models.Denied(tx.ID, tx.Status, models.DenyAdminApprovalRequired,
			"Transaction is suspended and requires administrative approval to cancel")
		d.AlternativeActions = []string{"contact_support"}
		d.Details = map[string]interface{}{
			"support_reference": supportReference(tx.ID),
		}
		return d
	}
	if !tx.Status.IsPendingFamily() {
		d := models.Denied(tx.ID, tx.Status, models.DenyCancellationNotAllowed,
			fmt.Sprintf("Transaction in status %s cannot be cancelled", tx.Status))
		d.AlternativeActions = []string{"contact_support"}
		return d
	}

	// Time-window rule: inside the grace period the max-window denial never
	// applies; past it, age must stay within the cancellation window.
	age := tx.Age(now)
	if age > windows.GracePeriod && age > windows.MaxCancelWindow {
		d := models.Denied(tx.ID, tx.Status, models.DenyCancellationNotAllowed,
			"Maximum cancellation time exceeded")
		d.AlternativeActions = []string{"contact_support"}
		d.Details = map[string]interface{}{
			"transaction_age_minutes": int(age.Minutes()),
			"max_window_minutes":      int(windows.MaxCancelWindow.Minutes()),
		}
		return d
	}

	// Funds-received safety check: cancelling after partial settlement would
	// require a refund workflow this engine does not perform.
	if checks.FundsReceived || checks.FundsAmount > 0 {
		d := models.Denied(tx.ID, tx.Status, models.DenyFundsReceived,
			"Funds have already been received for this transaction")
		d.AlternativeActions = []string{"contact_support", "process_refund"}
		d.Details = map[string]interface{}{
			"funds_received": checks.FundsAmount,
			"total_expected": checks.FundsExpected,
		}
		return d
	}

	if checks.RateLocked {
		d := models.Denied(tx.ID, tx.Status, models.DenyRateLocked,
			"The exchange rate for this transaction is locked for execution")
		d.AlternativeActions = []string{"contact_support"}
		return d
	}

	// Cancellation after compliance sign-off creates an auditability gap.
	if checks.ComplianceCompleted {
		d := models.Denied(tx.ID, tx.Status, models.DenyComplianceCompleted,
			"Compliance checks have already been completed for this transaction")
		d.AlternativeActions = []string{"contact_support"}
		return d
	}

	return models.Approved(tx.ID)
}

// DeniedNotFound builds the denial for an unknown transaction id.
func DeniedNotFound(transactionID string) models.Decision {
	d := models.Denied(transactionID, "", models.DenyTransactionNotFound,
		"Transaction not found")
	d.AlternativeActions = []string{"verify_transaction_id", "contact_support"}
	return d
}

func supportReference(transactionID string) string {
	return "CASE-" + transactionID
}
