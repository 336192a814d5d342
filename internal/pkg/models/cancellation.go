package models

import "time"

// CancelDenyReason is the stable error code attached to a denied cancellation.
type CancelDenyReason string

const (
	DenyTransactionNotFound    CancelDenyReason = "transaction_not_found"
	DenyCancellationNotAllowed CancelDenyReason = "cancellation_not_allowed"
	DenyAdminApprovalRequired  CancelDenyReason = "admin_approval_required"
	DenyFundsReceived          CancelDenyReason = "funds_received"
	DenyRateLocked             CancelDenyReason = "rate_locked"
	DenyComplianceCompleted    CancelDenyReason = "compliance_completed"
)

// CancelTransactionRequest is the inbound cancellation request body.
type CancelTransactionRequest struct {
	TransactionID string             `json:"transaction_id" param:"transactionID"`
	Reason        CancellationReason `json:"reason"`
	Notes         string             `json:"notes,omitempty"`
	RequestedBy   string             `json:"requested_by,omitempty"`
}

// Decision is the outcome of the cancellation eligibility evaluation: either
// approved, or denied with a structured reason. Denial is an expected business
// outcome, not an error in the control-flow sense.
type Decision struct {
	Allowed            bool                   `json:"allowed"`
	Reason             CancelDenyReason       `json:"reason,omitempty"`
	Message            string                 `json:"message,omitempty"`
	CurrentStatus      TransactionStatus      `json:"current_status,omitempty"`
	TransactionID      string                 `json:"transaction_id"`
	AlternativeActions []string               `json:"alternative_actions,omitempty"`
	Details            map[string]interface{} `json:"details,omitempty"`
}

// Approved builds an allow decision.
func Approved(transactionID string) Decision {
	return Decision{Allowed: true, TransactionID: transactionID}
}

// Denied builds a deny decision with the given reason code.
func Denied(transactionID string, status TransactionStatus, reason CancelDenyReason, message string) Decision {
	return Decision{
		Allowed:       false,
		Reason:        reason,
		Message:       message,
		CurrentStatus: status,
		TransactionID: transactionID,
	}
}

// RefundDetails reports whether the cancellation requires a refund. Always
// refund_required=false for transactions approved by this engine: the
// funds-received check guarantees no settled money exists.
type RefundDetails struct {
	RefundRequired      bool    `json:"refund_required"`
	RefundAmount        float64 `json:"refund_amount"`
	RefundCurrency      string  `json:"refund_currency,omitempty"`
	EstimatedRefundTime string  `json:"estimated_refund_time,omitempty"`
}

// CancelTransactionResponse is the success response of a cancellation.
type CancelTransactionResponse struct {
	TransactionID  string             `json:"transaction_id"`
	PreviousStatus TransactionStatus  `json:"previous_status"`
	NewStatus      TransactionStatus  `json:"new_status"`
	CancelledAt    time.Time          `json:"cancelled_at"`
	Reason         CancellationReason `json:"reason"`
	RefundDetails  RefundDetails      `json:"refund_details"`
}
