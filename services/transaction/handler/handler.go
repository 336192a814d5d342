package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/gbawo/finance-core/internal/pkg/audit"
	"github.com/gbawo/finance-core/internal/pkg/middleware"
	natspkg "github.com/gbawo/finance-core/internal/pkg/nats"
	"github.com/gbawo/finance-core/services/transaction"
	httpHandler "github.com/gbawo/finance-core/services/transaction/handler/http"
	natsHandler "github.com/gbawo/finance-core/services/transaction/handler/nats"
)

// Handler combines all handlers for the transaction service
type Handler struct {
	transactionHTTP *httpHandler.TransactionHandler
	transactionNATS *natsHandler.TransactionHandler
}

// NewHandler creates a new combined handler
func NewHandler(
	transactionUC transaction.TransactionUC,
	natsClient *natspkg.Client,
	auditLog *audit.RingBuffer,
) *Handler {
	return &Handler{
		transactionHTTP: httpHandler.NewTransactionHandler(transactionUC, auditLog),
		transactionNATS: natsHandler.NewTransactionHandler(transactionUC, natsClient),
	}
}

// RegisterRoutes registers all HTTP routes
func (h *Handler) RegisterRoutes(e *echo.Echo, apiKey *middleware.APIKeyMiddleware) {
	// Integrator-facing endpoints
	transactions := e.Group("/transactions", apiKey.ValidateIntegrator())
	transactions.POST("/:transactionID/cancel", h.transactionHTTP.CancelTransaction)
	transactions.GET("/:transactionID", h.transactionHTTP.GetTransactionStatus)
	transactions.GET("", h.transactionHTTP.ListTransactions)
	transactions.GET("/:transactionID/receipt", h.transactionHTTP.GetTransactionReceipt)

	// Administrative endpoints
	admin := e.Group("/admin", apiKey.ValidateAdmin())
	admin.POST("/transactions/:transactionID/cancel", h.transactionHTTP.AdminCancelTransaction)

	// Audit trail inspection, admin key required
	auditGroup := e.Group("/audit", apiKey.ValidateAdmin())
	auditGroup.GET("/events", h.transactionHTTP.GetAuditEvents)
}

// InitNATSConsumers initializes all NATS consumers
func (h *Handler) InitNATSConsumers() error {
	return h.transactionNATS.InitConsumers()
}

// Close releases NATS subscriptions
func (h *Handler) Close() {
	h.transactionNATS.Close()
}
