package utils

import (
	"net/http"

	"github.com/gbawo/finance-core/internal/pkg/models"
	"github.com/labstack/echo/v4"
)

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success bool                   `json:"success"`
	Error   string                 `json:"error"`
	Message string                 `json:"message,omitempty"`
	Code    int                    `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// SuccessResponse sends a success response with data
func SuccessResponse(c echo.Context, statusCode int, message string, data interface{}) error {
	return c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponseHandler sends an error response
func ErrorResponseHandler(c echo.Context, statusCode int, errorMessage string) error {
	return c.JSON(statusCode, ErrorResponse{
		Success: false,
		Error:   errorMessage,
		Code:    statusCode,
	})
}

// BadRequestResponse sends a 400 Bad Request response
func BadRequestResponse(c echo.Context, errorMessage string) error {
	return ErrorResponseHandler(c, http.StatusBadRequest, errorMessage)
}

// NotFoundResponse sends a 404 Not Found response
func NotFoundResponse(c echo.Context, errorMessage string) error {
	if errorMessage == "" {
		errorMessage = "Resource not found"
	}
	return ErrorResponseHandler(c, http.StatusNotFound, errorMessage)
}

// InternalServerErrorResponse sends a 500 Internal Server Error response
func InternalServerErrorResponse(c echo.Context, errorMessage string) error {
	if errorMessage == "" {
		errorMessage = "Internal server error"
	}
	return ErrorResponseHandler(c, http.StatusInternalServerError, errorMessage)
}

// DecisionResponse maps a denied cancellation decision onto the client error
// contract: a stable error code, a message, and a details object carrying the
// current status, transaction id, the denial reason and the advisory
// alternative actions.
func DecisionResponse(c echo.Context, decision models.Decision) error {
	statusCode := http.StatusBadRequest
	if decision.Reason == models.DenyTransactionNotFound {
		statusCode = http.StatusNotFound
	}

	details := map[string]interface{}{
		"transaction_id": decision.TransactionID,
		"reason":         string(decision.Reason),
	}
	if decision.CurrentStatus != "" {
		details["current_status"] = string(decision.CurrentStatus)
	}
	if len(decision.AlternativeActions) > 0 {
		details["alternative_actions"] = decision.AlternativeActions
	}
	for k, v := range decision.Details {
		details[k] = v
	}

	return c.JSON(statusCode, ErrorResponse{
		Success: false,
		Error:   string(decision.Reason),
		Message: decision.Message,
		Code:    statusCode,
		Details: details,
	})
}
