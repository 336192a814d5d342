package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gbawo/finance-core/internal/pkg/models"
	"github.com/gbawo/finance-core/services/transaction"
)

func TestCanTransition_PendingFamilyEdges(t *testing.T) {
	for _, from := range models.PendingFamilyStatuses {
		assert.True(t, CanTransition(from, models.StatusCancelled), "from %s", from)
		assert.True(t, CanTransition(from, models.StatusProcessing), "from %s", from)
		assert.True(t, CanTransition(from, models.StatusExpired), "from %s", from)
		assert.False(t, CanTransition(from, models.StatusCompleted), "from %s", from)
		assert.False(t, CanTransition(from, models.StatusSuspended), "from %s", from)
	}
}

func TestCanTransition_ProcessingEdges(t *testing.T) {
	assert.True(t, CanTransition(models.StatusProcessing, models.StatusCompleted))
	assert.True(t, CanTransition(models.StatusProcessing, models.StatusFailed))
	assert.False(t, CanTransition(models.StatusProcessing, models.StatusCancelled))
	assert.False(t, CanTransition(models.StatusProcessing, models.StatusPending))
}

func TestCanTransition_SuspendedOnlyToCancelled(t *testing.T) {
	assert.True(t, CanTransition(models.StatusSuspended, models.StatusCancelled))
	assert.False(t, CanTransition(models.StatusSuspended, models.StatusProcessing))
	assert.False(t, CanTransition(models.StatusSuspended, models.StatusCompleted))
}

func TestCanTransition_TerminalStatesAbsorb(t *testing.T) {
	terminals := []models.TransactionStatus{
		models.StatusCompleted,
		models.StatusFailed,
		models.StatusCancelled,
		models.StatusExpired,
	}
	targets := []models.TransactionStatus{
		models.StatusPending,
		models.StatusProcessing,
		models.StatusCompleted,
		models.StatusFailed,
		models.StatusCancelled,
		models.StatusSuspended,
		models.StatusExpired,
	}

	for _, from := range terminals {
		for _, to := range targets {
			assert.False(t, CanTransition(from, to), "%s -> %s must be rejected", from, to)
		}
	}
}

func TestAssertTransition(t *testing.T) {
	assert.NoError(t, AssertTransition(models.StatusPending, models.StatusCancelled))

	err := AssertTransition(models.StatusCancelled, models.StatusPending)
	assert.ErrorIs(t, err, transaction.ErrInvalidTransition)
	assert.Contains(t, err.Error(), "cancelled -> pending")
}
