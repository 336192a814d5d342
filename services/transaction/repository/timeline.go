package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gbawo/finance-core/internal/pkg/models"
)

// AppendTimelineStep inserts one timeline entry. Entries are append-only and
// ordered by start timestamp; handing this method a timestamp earlier than
// the last appended entry is a programmer error and panics rather than
// corrupting the ordering.
func (r *TransactionRepo) AppendTimelineStep(ctx context.Context, entry *models.TimelineEntry) error {
	var last sql.NullTime
	err := r.db.GetContext(ctx, &last,
		`SELECT MAX(started_at) FROM transaction_timeline WHERE transaction_id = $1`,
		entry.TransactionID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to read last timeline timestamp: %w", err)
	}
	if last.Valid && entry.StartedAt.Before(last.Time) {
		panic(fmt.Sprintf("timeline append out of order for transaction %s: %s is before %s",
			entry.TransactionID, entry.StartedAt.Format("2006-01-02T15:04:05.000Z07:00"),
			last.Time.Format("2006-01-02T15:04:05.000Z07:00")))
	}

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	query := `
		INSERT INTO transaction_timeline (
			id, transaction_id, step, status,
			started_at, completed_at, duration_ms, details, error_message
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = r.db.ExecContext(ctx, query,
		entry.ID,
		entry.TransactionID,
		entry.Step,
		entry.Status,
		entry.StartedAt,
		entry.CompletedAt,
		entry.DurationMS,
		entry.Details,
		entry.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to insert timeline entry: %w", err)
	}
	return nil
}

// GetTimeline retrieves all timeline entries of a transaction, oldest first.
func (r *TransactionRepo) GetTimeline(ctx context.Context, transactionID string) ([]models.TimelineEntry, error) {
	query := `
		SELECT id, transaction_id, step, status,
			started_at, completed_at, duration_ms, details, error_message
		FROM transaction_timeline
		WHERE transaction_id = $1
		ORDER BY started_at ASC`

	entries := []models.TimelineEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, transactionID); err != nil {
		return nil, fmt.Errorf("failed to query timeline: %w", err)
	}
	return entries, nil
}
