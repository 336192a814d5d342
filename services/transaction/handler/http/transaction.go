package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gbawo/finance-core/internal/pkg/audit"
	"github.com/gbawo/finance-core/internal/pkg/logger"
	"github.com/gbawo/finance-core/internal/pkg/models"
	nrpkg "github.com/gbawo/finance-core/internal/pkg/newrelic"
	"github.com/gbawo/finance-core/internal/utils"
	"github.com/gbawo/finance-core/services/transaction"
)

// TransactionHandler handles HTTP requests for transaction operations
type TransactionHandler struct {
	transactionUC transaction.TransactionUC
	auditLog      *audit.RingBuffer
}

// NewTransactionHandler creates a new transaction HTTP handler
func NewTransactionHandler(transactionUC transaction.TransactionUC, auditLog *audit.RingBuffer) *TransactionHandler {
	return &TransactionHandler{
		transactionUC: transactionUC,
		auditLog:      auditLog,
	}
}

// CancelTransaction handles the standard cancellation request
func (h *TransactionHandler) CancelTransaction(c echo.Context) error {
	txn := nrpkg.FromEchoContext(c)
	nrpkg.SetTransactionName(txn, "Transaction.Cancel")

	req, err := h.bindCancelRequest(c)
	if err != nil {
		nrpkg.NoticeTransactionError(txn, err)
		return utils.BadRequestResponse(c, err.Error())
	}

	resp, decision, err := h.transactionUC.CancelTransaction(c.Request().Context(), req)
	if err != nil {
		logger.Error("Cancellation failed",
			logger.String("transaction_id", req.TransactionID),
			logger.ErrorField(err))
		nrpkg.NoticeTransactionError(txn, err)
		return utils.InternalServerErrorResponse(c, "Failed to cancel transaction")
	}
	if !decision.Allowed {
		return utils.DecisionResponse(c, decision)
	}

	logger.Info("Transaction cancelled",
		logger.String("transaction_id", resp.TransactionID),
		logger.String("previous_status", string(resp.PreviousStatus)),
		logger.String("reason", string(resp.Reason)))

	return utils.SuccessResponse(c, http.StatusOK, "Transaction cancelled successfully", resp)
}

// AdminCancelTransaction handles the suspended-transaction cancellation path.
// The admin API key middleware guards the route.
func (h *TransactionHandler) AdminCancelTransaction(c echo.Context) error {
	txn := nrpkg.FromEchoContext(c)
	nrpkg.SetTransactionName(txn, "Transaction.AdminCancel")

	req, err := h.bindCancelRequest(c)
	if err != nil {
		nrpkg.NoticeTransactionError(txn, err)
		return utils.BadRequestResponse(c, err.Error())
	}
	if req.RequestedBy == "" {
		req.RequestedBy = "admin"
	}

	resp, decision, err := h.transactionUC.CancelSuspendedTransaction(c.Request().Context(), req)
	if err != nil {
		logger.Error("Admin cancellation failed",
			logger.String("transaction_id", req.TransactionID),
			logger.ErrorField(err))
		nrpkg.NoticeTransactionError(txn, err)
		return utils.InternalServerErrorResponse(c, "Failed to cancel transaction")
	}
	if !decision.Allowed {
		return utils.DecisionResponse(c, decision)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Suspended transaction cancelled successfully", resp)
}

// GetTransactionStatus returns the transaction with its timeline
func (h *TransactionHandler) GetTransactionStatus(c echo.Context) error {
	txn := nrpkg.FromEchoContext(c)
	nrpkg.SetTransactionName(txn, "Transaction.GetStatus")

	transactionID := c.Param("transactionID")
	if transactionID == "" {
		return utils.BadRequestResponse(c, "Transaction ID is required")
	}

	resp, err := h.transactionUC.GetTransactionStatus(c.Request().Context(), transactionID)
	if err != nil {
		if errors.Is(err, transaction.ErrTransactionNotFound) {
			return utils.NotFoundResponse(c, "Transaction not found")
		}
		nrpkg.NoticeTransactionError(txn, err)
		return utils.InternalServerErrorResponse(c, "Failed to load transaction")
	}

	return utils.SuccessResponse(c, http.StatusOK, "Transaction retrieved successfully", resp)
}

// ListTransactions returns a filtered, paginated transaction listing
func (h *TransactionHandler) ListTransactions(c echo.Context) error {
	txn := nrpkg.FromEchoContext(c)
	nrpkg.SetTransactionName(txn, "Transaction.List")

	var query models.TransactionListQuery
	if err := c.Bind(&query); err != nil {
		nrpkg.NoticeTransactionError(txn, err)
		return utils.BadRequestResponse(c, "Invalid query parameters: "+err.Error())
	}

	if raw := c.QueryParam("start_date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return utils.BadRequestResponse(c, "Invalid start_date, expected RFC3339")
		}
		query.StartDate = &t
	}
	if raw := c.QueryParam("end_date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return utils.BadRequestResponse(c, "Invalid end_date, expected RFC3339")
		}
		query.EndDate = &t
	}

	list, err := h.transactionUC.ListTransactions(c.Request().Context(), query)
	if err != nil {
		nrpkg.NoticeTransactionError(txn, err)
		return utils.InternalServerErrorResponse(c, "Failed to list transactions")
	}

	return utils.SuccessResponse(c, http.StatusOK, "Transactions retrieved successfully", list)
}

// GetTransactionReceipt returns the receipt of a completed transaction
func (h *TransactionHandler) GetTransactionReceipt(c echo.Context) error {
	txn := nrpkg.FromEchoContext(c)
	nrpkg.SetTransactionName(txn, "Transaction.GetReceipt")

	transactionID := c.Param("transactionID")
	if transactionID == "" {
		return utils.BadRequestResponse(c, "Transaction ID is required")
	}

	receipt, err := h.transactionUC.GetTransactionReceipt(c.Request().Context(), transactionID)
	if err != nil {
		if errors.Is(err, transaction.ErrTransactionNotFound) {
			return utils.NotFoundResponse(c, "Transaction not found")
		}
		if errors.Is(err, transaction.ErrReceiptNotAvailable) {
			return utils.BadRequestResponse(c, "Receipt is available only for completed transactions")
		}
		nrpkg.NoticeTransactionError(txn, err)
		return utils.InternalServerErrorResponse(c, "Failed to build receipt")
	}

	return utils.SuccessResponse(c, http.StatusOK, "Receipt generated successfully", receipt)
}

// GetAuditEvents returns the most recent audit events from the in-process
// ring buffer, newest first.
func (h *TransactionHandler) GetAuditEvents(c echo.Context) error {
	txn := nrpkg.FromEchoContext(c)
	nrpkg.SetTransactionName(txn, "Transaction.AuditEvents")

	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return utils.BadRequestResponse(c, "Invalid limit, expected a positive integer")
		}
		limit = n
	}

	events := h.auditLog.Recent(limit)
	return utils.SuccessResponse(c, http.StatusOK, "Audit events retrieved successfully", map[string]interface{}{
		"events": events,
		"count":  len(events),
	})
}

func (h *TransactionHandler) bindCancelRequest(c echo.Context) (models.CancelTransactionRequest, error) {
	var req models.CancelTransactionRequest
	if err := c.Bind(&req); err != nil {
		return req, errors.New("invalid request body: " + err.Error())
	}

	req.TransactionID = c.Param("transactionID")
	if req.TransactionID == "" {
		return req, errors.New("transaction ID is required")
	}
	if req.Reason == "" {
		req.Reason = models.CancelReasonUserRequest
	}
	if !req.Reason.Valid() {
		return req, errors.New("invalid cancellation reason: " + string(req.Reason))
	}
	return req, nil
}
