package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gbawo/finance-core/internal/pkg/models"
)

func TestAppendTimelineStep(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTransactionRepository(&models.Config{}, db)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT MAX\(started_at\) FROM transaction_timeline`).
		WithArgs("txn_abc123").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(now.Add(-time.Minute)))

	mock.ExpectExec(`INSERT INTO transaction_timeline`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	entry := &models.TimelineEntry{
		TransactionID: "txn_abc123",
		Step:          models.StepTransactionCancelled,
		Status:        models.StepStatusCompleted,
		StartedAt:     now,
	}
	err := repo.AppendTimelineStep(context.Background(), entry)

	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendTimelineStep_FirstEntry(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTransactionRepository(&models.Config{}, db)

	mock.ExpectQuery(`SELECT MAX\(started_at\) FROM transaction_timeline`).
		WithArgs("txn_new").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))

	mock.ExpectExec(`INSERT INTO transaction_timeline`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.AppendTimelineStep(context.Background(), &models.TimelineEntry{
		TransactionID: "txn_new",
		Step:          models.StepTransactionCreated,
		Status:        models.StepStatusCompleted,
		StartedAt:     time.Now().UTC(),
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendTimelineStep_PanicsOnOutOfOrderTimestamp(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTransactionRepository(&models.Config{}, db)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT MAX\(started_at\) FROM transaction_timeline`).
		WithArgs("txn_abc123").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(now))

	assert.Panics(t, func() {
		_ = repo.AppendTimelineStep(context.Background(), &models.TimelineEntry{
			TransactionID: "txn_abc123",
			Step:          models.StepPaymentReceived,
			Status:        models.StepStatusCompleted,
			StartedAt:     now.Add(-time.Hour),
		})
	})
}

func TestGetTimeline(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewTransactionRepository(&models.Config{}, db)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"id", "transaction_id", "step", "status",
		"started_at", "completed_at", "duration_ms", "details", "error_message",
	}).
		AddRow("tl_1", "txn_abc123", "transaction_created", "completed", now.Add(-10*time.Minute), nil, nil, []byte(`{}`), "").
		AddRow("tl_2", "txn_abc123", "transaction_cancelled", "completed", now, nil, nil, []byte(`{"reason":"user_request"}`), "")

	mock.ExpectQuery(`SELECT(.+)FROM transaction_timeline(.+)ORDER BY started_at ASC`).
		WithArgs("txn_abc123").
		WillReturnRows(rows)

	timeline, err := repo.GetTimeline(context.Background(), "txn_abc123")

	require.NoError(t, err)
	require.Len(t, timeline, 2)
	assert.Equal(t, models.StepTransactionCreated, timeline[0].Step)
	assert.Equal(t, models.StepTransactionCancelled, timeline[1].Step)
	assert.Equal(t, "user_request", timeline[1].Details["reason"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
