package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gbawo/finance-core/internal/pkg/audit"
	"github.com/gbawo/finance-core/internal/pkg/logger"
	"github.com/gbawo/finance-core/internal/pkg/models"
	"github.com/gbawo/finance-core/services/transaction"
)

// TransactionUC implements the transaction.TransactionUC interface
type transactionUC struct {
	cfg        *models.Config
	repo       transaction.TransactionRepo
	funds      transaction.FundsReader
	rateLock   transaction.RateLockReader
	compliance transaction.ComplianceReader
	gw         transaction.TransactionGW
	webhooks   transaction.WebhookEnqueuer
	auditSink  audit.Sink
	windows    CancellationWindows
}

// NewTransactionUC creates a new transaction use case
func NewTransactionUC(
	cfg *models.Config,
	repo transaction.TransactionRepo,
	funds transaction.FundsReader,
	rateLock transaction.RateLockReader,
	compliance transaction.ComplianceReader,
	gw transaction.TransactionGW,
	webhooks transaction.WebhookEnqueuer,
	auditSink audit.Sink,
) (transaction.TransactionUC, error) {
	if repo == nil || auditSink == nil {
		return nil, errors.New("transaction usecase requires a repository and an audit sink")
	}
	return &transactionUC{
		cfg:        cfg,
		repo:       repo,
		funds:      funds,
		rateLock:   rateLock,
		compliance: compliance,
		gw:         gw,
		webhooks:   webhooks,
		auditSink:  auditSink,
		windows:    WindowsFromConfig(cfg.Cancellation),
	}, nil
}

// CancelTransaction runs the standard cancellation flow.
func (uc *transactionUC) CancelTransaction(ctx context.Context, req models.CancelTransactionRequest) (*models.CancelTransactionResponse, models.Decision, error) {
	uc.recordAttempt(req)

	tx, err := uc.repo.GetTransaction(ctx, req.TransactionID)
	if err != nil {
		if errors.Is(err, transaction.ErrTransactionNotFound) {
			decision := DeniedNotFound(req.TransactionID)
			uc.recordDenied(decision)
			return nil, decision, nil
		}
		uc.recordFault(req.TransactionID, err)
		return nil, models.Decision{}, fmt.Errorf("failed to load transaction: %w", err)
	}

	now := time.Now().UTC()

	// The snapshot only matters once the status gate passes; a transaction
	// outside the pending family is denied before any check reads it.
	var checks EligibilitySnapshot
	if tx.Status.IsPendingFamily() {
		checks, err = uc.gatherSnapshot(ctx, tx)
		if err != nil {
			uc.recordFault(req.TransactionID, err)
			return nil, models.Decision{}, err
		}
	}

	decision := EvaluateCancellation(tx, req, now, uc.windows, checks)
	if !decision.Allowed {
		uc.recordDenied(decision)
		return nil, decision, nil
	}

	won, err := uc.repo.MarkCancelled(ctx, tx.ID, req.Reason, req.Notes, now)
	if err != nil {
		uc.recordFault(tx.ID, err)
		return nil, models.Decision{}, fmt.Errorf("failed to cancel transaction: %w", err)
	}
	if !won {
		// Lost the race: another writer moved the transaction first. Re-read
		// and let the status gate produce the denial.
		return uc.denyAfterLostRace(ctx, req, checks)
	}

	uc.finishCancellation(ctx, tx, req, now)

	resp := &models.CancelTransactionResponse{
		TransactionID:  tx.ID,
		PreviousStatus: tx.Status,
		NewStatus:      models.StatusCancelled,
		CancelledAt:    now,
		Reason:         req.Reason,
		RefundDetails: models.RefundDetails{
			RefundRequired: false,
			RefundAmount:   0,
			RefundCurrency: tx.FiatCurrency,
		},
	}
	uc.recordSuccess(tx, req)
	return resp, models.Approved(tx.ID), nil
}

// CancelSuspendedTransaction cancels a compliance-frozen transaction. Only the
// admin surface reaches this path.
func (uc *transactionUC) CancelSuspendedTransaction(ctx context.Context, req models.CancelTransactionRequest) (*models.CancelTransactionResponse, models.Decision, error) {
	uc.recordAttempt(req)

	tx, err := uc.repo.GetTransaction(ctx, req.TransactionID)
	if err != nil {
		if errors.Is(err, transaction.ErrTransactionNotFound) {
			decision := DeniedNotFound(req.TransactionID)
			uc.recordDenied(decision)
			return nil, decision, nil
		}
		uc.recordFault(req.TransactionID, err)
		return nil, models.Decision{}, fmt.Errorf("failed to load transaction: %w", err)
	}

	if tx.Status != models.StatusSuspended {
		decision := models.Denied(tx.ID, tx.Status, models.DenyCancellationNotAllowed,
			fmt.Sprintf("Administrative cancellation applies only to suspended transactions, current status is %s", tx.Status))
		decision.AlternativeActions = []string{"contact_support"}
		uc.recordDenied(decision)
		return nil, decision, nil
	}

	now := time.Now().UTC()
	won, err := uc.repo.MarkSuspendedCancelled(ctx, tx.ID, req.Reason, req.Notes, now)
	if err != nil {
		uc.recordFault(tx.ID, err)
		return nil, models.Decision{}, fmt.Errorf("failed to cancel suspended transaction: %w", err)
	}
	if !won {
		return uc.denyAfterLostRace(ctx, req, EligibilitySnapshot{})
	}

	uc.finishCancellation(ctx, tx, req, now)

	resp := &models.CancelTransactionResponse{
		TransactionID:  tx.ID,
		PreviousStatus: tx.Status,
		NewStatus:      models.StatusCancelled,
		CancelledAt:    now,
		Reason:         req.Reason,
		RefundDetails: models.RefundDetails{
			RefundRequired: false,
			RefundAmount:   0,
			RefundCurrency: tx.FiatCurrency,
		},
	}
	uc.recordSuccess(tx, req)
	return resp, models.Approved(tx.ID), nil
}

// denyAfterLostRace re-reads the transaction and produces the standard
// status-gate denial against its post-race state.
func (uc *transactionUC) denyAfterLostRace(ctx context.Context, req models.CancelTransactionRequest, checks EligibilitySnapshot) (*models.CancelTransactionResponse, models.Decision, error) {
	tx, err := uc.repo.GetTransaction(ctx, req.TransactionID)
	if err != nil {
		uc.recordFault(req.TransactionID, err)
		return nil, models.Decision{}, fmt.Errorf("failed to reload transaction after lost transition: %w", err)
	}

	decision := EvaluateCancellation(tx, req, time.Now().UTC(), uc.windows, checks)
	if decision.Allowed {
		// The guarded update refused but the re-read still looks eligible;
		// report the conflict rather than looping.
		decision = models.Denied(tx.ID, tx.Status, models.DenyCancellationNotAllowed,
			"Transaction was modified concurrently, please retry")
		decision.AlternativeActions = []string{"contact_support"}
	}
	uc.recordDenied(decision)
	return nil, decision, nil
}

// finishCancellation appends the timeline step and fans out notifications.
// None of these failures roll back the committed transition.
func (uc *transactionUC) finishCancellation(ctx context.Context, tx *models.Transaction, req models.CancelTransactionRequest, cancelledAt time.Time) {
	entry := &models.TimelineEntry{
		TransactionID: tx.ID,
		Step:          models.StepTransactionCancelled,
		Status:        models.StepStatusCompleted,
		StartedAt:     cancelledAt,
		CompletedAt:   &cancelledAt,
		Details: map[string]interface{}{
			"reason":       string(req.Reason),
			"cancelled_by": cancelledBy(req),
		},
	}
	if err := uc.repo.AppendTimelineStep(ctx, entry); err != nil {
		logger.Error("Failed to append cancellation timeline step",
			logger.String("transaction_id", tx.ID),
			logger.ErrorField(err))
	}

	event := models.TransactionCancelledEvent{
		TransactionID:      tx.ID,
		IntegratorID:       tx.IntegratorID,
		PreviousStatus:     tx.Status,
		CancellationReason: req.Reason,
		CancelledBy:        cancelledBy(req),
		CancellationNotes:  req.Notes,
		CancelledAt:        cancelledAt,
	}

	if uc.webhooks != nil {
		data := map[string]interface{}{
			"previous_status":     string(tx.Status),
			"cancellation_reason": string(req.Reason),
			"cancelled_by":        cancelledBy(req),
			"refund_required":     false,
			"cancellation_notes":  req.Notes,
		}
		if err := uc.webhooks.Enqueue(ctx, tx.IntegratorID, tx.ID, models.EventTransactionCancelled, data); err != nil {
			logger.Error("Failed to enqueue cancellation webhook",
				logger.String("transaction_id", tx.ID),
				logger.String("integrator_id", tx.IntegratorID),
				logger.ErrorField(err))
		}
	}

	if uc.gw != nil {
		if err := uc.gw.PublishTransactionCancelled(ctx, event); err != nil {
			logger.Error("Failed to publish transaction cancelled event",
				logger.String("transaction_id", tx.ID),
				logger.ErrorField(err))
		}
	}
}

// gatherSnapshot materializes the external state the evaluator consults.
func (uc *transactionUC) gatherSnapshot(ctx context.Context, tx *models.Transaction) (EligibilitySnapshot, error) {
	var snapshot EligibilitySnapshot

	received, amount, err := uc.funds.FundsReceived(ctx, tx.ID)
	if err != nil {
		return snapshot, fmt.Errorf("failed to check received funds: %w", err)
	}
	snapshot.FundsReceived = received
	snapshot.FundsAmount = amount
	if tx.FiatAmount != nil {
		snapshot.FundsExpected = *tx.FiatAmount
	}

	locked, err := uc.rateLock.RateLocked(ctx, tx.ID)
	if err != nil {
		return snapshot, fmt.Errorf("failed to check rate lock: %w", err)
	}
	snapshot.RateLocked = locked

	completed, err := uc.compliance.ComplianceCompleted(ctx, tx.ID)
	if err != nil {
		return snapshot, fmt.Errorf("failed to check compliance status: %w", err)
	}
	snapshot.ComplianceCompleted = completed

	return snapshot, nil
}

// GetTransactionStatus returns the transaction with its full timeline.
func (uc *transactionUC) GetTransactionStatus(ctx context.Context, transactionID string) (*models.TransactionStatusResponse, error) {
	tx, err := uc.repo.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	timeline, err := uc.repo.GetTimeline(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction timeline: %w", err)
	}

	return &models.TransactionStatusResponse{
		Transaction: *tx,
		Timeline:    timeline,
	}, nil
}

// ListTransactions returns a filtered, paginated transaction listing.
func (uc *transactionUC) ListTransactions(ctx context.Context, query models.TransactionListQuery) (*models.TransactionList, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit < 1 || query.Limit > 100 {
		query.Limit = 20
	}
	if query.SortBy == "" {
		query.SortBy = "created_at"
	}
	if query.SortOrder != "asc" {
		query.SortOrder = "desc"
	}
	return uc.repo.ListTransactions(ctx, query)
}

// GetTransactionReceipt builds the receipt for a completed transaction.
func (uc *transactionUC) GetTransactionReceipt(ctx context.Context, transactionID string) (*models.TransactionReceipt, error) {
	tx, err := uc.repo.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if tx.Status != models.StatusCompleted {
		return nil, transaction.ErrReceiptNotAvailable
	}

	receiptDate := tx.UpdatedAt
	if tx.CompletedAt != nil {
		receiptDate = *tx.CompletedAt
	}

	fiat := "-"
	if tx.FiatAmount != nil {
		fiat = fmt.Sprintf("%.2f %s", *tx.FiatAmount, tx.FiatCurrency)
	}
	crypto := "-"
	if tx.CryptoAmount != "" {
		crypto = fmt.Sprintf("%s %s", tx.CryptoAmount, tx.CryptoCurrency)
	}
	rate := "-"
	if tx.ExchangeRate != nil {
		rate = fmt.Sprintf("%.6f", *tx.ExchangeRate)
	}

	return &models.TransactionReceipt{
		ReceiptID:     "RCP-" + tx.ReferenceCode,
		TransactionID: tx.ID,
		ReceiptDate:   receiptDate,
		Summary: models.ReceiptSummary{
			Description:    fmt.Sprintf("%s transaction", tx.ActivityType),
			AmountPaid:     fiat,
			AmountReceived: crypto,
			ExchangeRate:   rate,
			ProcessingFee:  fmt.Sprintf("%.2f %s", tx.Fees, tx.FiatCurrency),
		},
		Parties: models.ReceiptParties{
			Payer:           tx.UserID,
			ServiceProvider: "Gbawo",
		},
		Compliance: models.ReceiptCompliance{
			ReceiptNumber:  "RCP-" + tx.ReferenceCode,
			RegulatoryNote: "Retain this receipt for your records",
		},
		DownloadLinks: models.ReceiptDownloadLinks{
			PDF:  fmt.Sprintf("/transactions/%s/receipt.pdf", tx.ID),
			HTML: fmt.Sprintf("/transactions/%s/receipt.html", tx.ID),
		},
	}, nil
}

// ProcessPaymentReceived records inbound provider funds and advances the
// transaction into processing through the transition table.
func (uc *transactionUC) ProcessPaymentReceived(ctx context.Context, event models.PaymentReceivedEvent) error {
	tx, err := uc.repo.GetTransaction(ctx, event.TransactionID)
	if err != nil {
		return err
	}

	if !tx.Status.IsPendingFamily() {
		// Late or duplicate notification; funds against a settled transaction
		// are an operator concern, not a transition.
		logger.Warn("Ignoring payment for transaction outside the pending family",
			logger.String("transaction_id", tx.ID),
			logger.String("status", string(tx.Status)))
		return nil
	}

	if err := AssertTransition(tx.Status, models.StatusProcessing); err != nil {
		return err
	}

	receivedAt := event.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now().UTC()
	}

	if err := uc.repo.RecordPaymentReceived(ctx, tx.ID, event.Amount, event.Currency, receivedAt); err != nil {
		return fmt.Errorf("failed to record received payment: %w", err)
	}

	entry := &models.TimelineEntry{
		TransactionID: tx.ID,
		Step:          models.StepPaymentReceived,
		Status:        models.StepStatusCompleted,
		StartedAt:     receivedAt,
		CompletedAt:   &receivedAt,
		Details: map[string]interface{}{
			"amount":   event.Amount,
			"currency": event.Currency,
		},
	}
	if err := uc.repo.AppendTimelineStep(ctx, entry); err != nil {
		logger.Error("Failed to append payment timeline step",
			logger.String("transaction_id", tx.ID),
			logger.ErrorField(err))
	}

	moved, err := uc.repo.TransitionStatus(ctx, tx.ID, models.PendingFamilyStatuses, models.StatusProcessing)
	if err != nil {
		return fmt.Errorf("failed to transition transaction to processing: %w", err)
	}
	if !moved {
		logger.Warn("Transaction left the pending family before payment transition",
			logger.String("transaction_id", tx.ID))
	}
	return nil
}

func (uc *transactionUC) recordAttempt(req models.CancelTransactionRequest) {
	uc.auditSink.Record(audit.EventCancellationAttempt, audit.SeverityLow, map[string]interface{}{
		"transaction_id": req.TransactionID,
		"reason":         string(req.Reason),
		"requested_by":   req.RequestedBy,
	})
}

func (uc *transactionUC) recordSuccess(tx *models.Transaction, req models.CancelTransactionRequest) {
	uc.auditSink.Record(audit.EventCancellationSuccess, audit.SeverityMedium, map[string]interface{}{
		"transaction_id":  tx.ID,
		"previous_status": string(tx.Status),
		"reason":          string(req.Reason),
	})
}

func (uc *transactionUC) recordDenied(decision models.Decision) {
	uc.auditSink.Record(audit.EventCancellationFailed, audit.SeverityMedium, map[string]interface{}{
		"transaction_id": decision.TransactionID,
		"deny_reason":    string(decision.Reason),
		"current_status": string(decision.CurrentStatus),
	})
}

func (uc *transactionUC) recordFault(transactionID string, err error) {
	uc.auditSink.Record(audit.EventCancellationFailed, audit.SeverityMedium, map[string]interface{}{
		"transaction_id": transactionID,
		"error":          err.Error(),
	})
}

func cancelledBy(req models.CancelTransactionRequest) string {
	if req.RequestedBy != "" {
		return req.RequestedBy
	}
	return "user"
}
