package models

import (
	"time"

	"github.com/gbawo/finance-core/internal/pkg/converter"
)

// TransactionStatus enumerates the lifecycle states of a transaction.
type TransactionStatus string

const (
	StatusPending    TransactionStatus = "pending"
	StatusProcessing TransactionStatus = "processing"
	StatusCompleted  TransactionStatus = "completed"
	StatusFailed     TransactionStatus = "failed"
	StatusCancelled  TransactionStatus = "cancelled"
	StatusSuspended  TransactionStatus = "suspended"
	StatusExpired    TransactionStatus = "expired"

	// Waiting sub-states: semantically pending, but they tell the UI and
	// telemetry what the transaction is waiting on.
	StatusWaitingForPayment    TransactionStatus = "waiting_for_payment"
	StatusPendingPayment       TransactionStatus = "pending_payment"
	StatusPendingCryptoDeposit TransactionStatus = "pending_crypto_deposit"
	StatusPendingSourcePayment TransactionStatus = "pending_source_payment"
	StatusPendingSourceDeposit TransactionStatus = "pending_source_deposit"
)

// PendingFamilyStatuses lists every status that counts as "still in flight,
// nothing settled yet". Only these are cancellable through the standard path.
var PendingFamilyStatuses = []TransactionStatus{
	StatusPending,
	StatusWaitingForPayment,
	StatusPendingPayment,
	StatusPendingCryptoDeposit,
	StatusPendingSourcePayment,
	StatusPendingSourceDeposit,
}

// IsPendingFamily reports whether the status is in the pending family.
func (s TransactionStatus) IsPendingFamily() bool {
	for _, ps := range PendingFamilyStatuses {
		if s == ps {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (s TransactionStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// Valid reports whether the status is a known enumeration value.
func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed,
		StatusCancelled, StatusSuspended, StatusExpired,
		StatusWaitingForPayment, StatusPendingPayment, StatusPendingCryptoDeposit,
		StatusPendingSourcePayment, StatusPendingSourceDeposit:
		return true
	}
	return false
}

// ActivityType enumerates the supported transaction flows.
type ActivityType string

const (
	ActivityOnramp         ActivityType = "onramp"
	ActivityOfframp        ActivityType = "offramp"
	ActivityFiatExchange   ActivityType = "fiat_exchange"
	ActivityCryptoExchange ActivityType = "crypto_exchange"
)

// TransactionPriority enumerates processing priorities.
type TransactionPriority string

const (
	PriorityLow      TransactionPriority = "low"
	PriorityStandard TransactionPriority = "standard"
	PriorityHigh     TransactionPriority = "high"
)

// CancellationReason is the caller-supplied reason code on a cancel request.
type CancellationReason string

const (
	CancelReasonUserRequest          CancellationReason = "user_request"
	CancelReasonDuplicateTransaction CancellationReason = "duplicate_transaction"
	CancelReasonIncorrectDetails     CancellationReason = "incorrect_details"
	CancelReasonRateExpired          CancellationReason = "rate_expired"
	CancelReasonComplianceConcern    CancellationReason = "compliance_concern"
	CancelReasonOther                CancellationReason = "other"
)

// Valid reports whether the reason is a known enumeration value.
func (r CancellationReason) Valid() bool {
	switch r {
	case CancelReasonUserRequest, CancelReasonDuplicateTransaction,
		CancelReasonIncorrectDetails, CancelReasonRateExpired,
		CancelReasonComplianceConcern, CancelReasonOther:
		return true
	}
	return false
}

// Transaction represents a financial transaction record. Integrator and user
// ownership never change after creation; status changes only through the
// state machine.
type Transaction struct {
	ID                      string              `json:"transaction_id" db:"id"`
	IntegratorID            string              `json:"integrator_id" db:"integrator_id"`
	UserID                  string              `json:"user_id" db:"user_id"`
	IntegratorTransactionID string              `json:"integrator_transaction_id,omitempty" db:"integrator_transaction_id"`
	ReferenceCode           string              `json:"reference_code" db:"reference_code"`
	ActivityType            ActivityType        `json:"activity_type" db:"activity_type"`
	Status                  TransactionStatus   `json:"status" db:"status"`
	Priority                TransactionPriority `json:"priority" db:"priority"`

	FiatAmount     *float64 `json:"fiat_amount,omitempty" db:"fiat_amount"`
	FiatCurrency   string   `json:"fiat_currency,omitempty" db:"fiat_currency"`
	CryptoAmount   string   `json:"crypto_amount,omitempty" db:"crypto_amount"` // string-encoded for precision
	CryptoCurrency string   `json:"crypto_currency,omitempty" db:"crypto_currency"`
	CryptoNetwork  string   `json:"crypto_network,omitempty" db:"crypto_network"`

	ExchangeRate *float64          `json:"exchange_rate,omitempty" db:"exchange_rate"`
	Fees         float64           `json:"fees" db:"fees"`
	FeeBreakdown converter.JSONMap `json:"fee_breakdown" db:"fee_breakdown"`

	RecipientAddress     string            `json:"recipient_address,omitempty" db:"recipient_address"`
	RecipientBankDetails converter.JSONMap `json:"recipient_bank_details,omitempty" db:"recipient_bank_details"`

	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty" db:"cancelled_at"`

	CancellationReason *CancellationReason `json:"cancellation_reason,omitempty" db:"cancellation_reason"`
	CancellationNotes  string              `json:"cancellation_notes,omitempty" db:"cancellation_notes"`

	Metadata              converter.JSONMap `json:"metadata,omitempty" db:"metadata"`
	ExternalTransactionID string            `json:"external_transaction_id,omitempty" db:"external_transaction_id"`
}

// Age returns how long the transaction has existed relative to now.
func (t *Transaction) Age(now time.Time) time.Duration {
	return now.Sub(t.CreatedAt)
}

// TransactionListQuery carries filter, sort and pagination parameters for
// transaction listing.
type TransactionListQuery struct {
	IntegratorID  string            `query:"integrator_id"`
	UserID        string            `query:"user_id"`
	Status        TransactionStatus `query:"status"`
	Type          ActivityType      `query:"type"`
	ReferenceCode string            `query:"reference_code"`
	StartDate     *time.Time        `query:"-"`
	EndDate       *time.Time        `query:"-"`
	SortBy        string            `query:"sort_by"`
	SortOrder     string            `query:"sort_order"`
	Page          int               `query:"page"`
	Limit         int               `query:"limit"`
}

// TransactionList is a paginated listing response.
type TransactionList struct {
	Data       []Transaction  `json:"data"`
	Pagination PaginationMeta `json:"pagination"`
}

// PaginationMeta describes the page window of a listing response.
type PaginationMeta struct {
	Page         int  `json:"page"`
	Limit        int  `json:"limit"`
	TotalRecords int  `json:"total_records"`
	TotalPages   int  `json:"total_pages"`
	HasNext      bool `json:"has_next"`
	HasPrevious  bool `json:"has_previous"`
}
