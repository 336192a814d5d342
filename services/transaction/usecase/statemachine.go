package usecase

import (
	"fmt"

	"github.com/gbawo/finance-core/internal/pkg/models"
	"github.com/gbawo/finance-core/services/transaction"
)

// transitionTable declares every legal status change. Terminal statuses have
// no entry: nothing leaves completed, failed, cancelled or expired.
// suspended -> cancelled is listed here but only the admin path drives it.
var transitionTable = map[models.TransactionStatus][]models.TransactionStatus{
	models.StatusPending:              {models.StatusProcessing, models.StatusCancelled, models.StatusExpired},
	models.StatusWaitingForPayment:    {models.StatusProcessing, models.StatusCancelled, models.StatusExpired},
	models.StatusPendingPayment:       {models.StatusProcessing, models.StatusCancelled, models.StatusExpired},
	models.StatusPendingCryptoDeposit: {models.StatusProcessing, models.StatusCancelled, models.StatusExpired},
	models.StatusPendingSourcePayment: {models.StatusProcessing, models.StatusCancelled, models.StatusExpired},
	models.StatusPendingSourceDeposit: {models.StatusProcessing, models.StatusCancelled, models.StatusExpired},
	models.StatusProcessing:           {models.StatusCompleted, models.StatusFailed},
	models.StatusSuspended:            {models.StatusCancelled},
}

// CanTransition reports whether the status change is permitted.
func CanTransition(from, to models.TransactionStatus) bool {
	for _, allowed := range transitionTable[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// AssertTransition returns a typed error when the status change is not
// permitted by the transition table.
func AssertTransition(from, to models.TransactionStatus) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", transaction.ErrInvalidTransition, from, to)
	}
	return nil
}
