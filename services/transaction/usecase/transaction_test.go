package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gbawo/finance-core/internal/pkg/audit"
	"github.com/gbawo/finance-core/internal/pkg/models"
	"github.com/gbawo/finance-core/services/transaction"
)

type capturedEvent struct {
	Type     string
	Severity audit.Severity
	Payload  map[string]interface{}
}

type captureSink struct {
	events []capturedEvent
}

func (s *captureSink) Record(eventType string, severity audit.Severity, payload map[string]interface{}) {
	s.events = append(s.events, capturedEvent{Type: eventType, Severity: severity, Payload: payload})
}

func (s *captureSink) ofType(eventType string) []capturedEvent {
	var out []capturedEvent
	for _, e := range s.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type fakeRepo struct {
	tx          *models.Transaction
	getErr      error
	getCalls    int
	reloaded    *models.Transaction
	markWon     bool
	markErr     error
	markCalls   int
	suspCalls   int
	timeline    []*models.TimelineEntry
	transitions int
	payments    int
}

func (r *fakeRepo) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	r.getCalls++
	if r.getErr != nil {
		return nil, r.getErr
	}
	if r.getCalls > 1 && r.reloaded != nil {
		return r.reloaded, nil
	}
	return r.tx, nil
}

func (r *fakeRepo) ListTransactions(ctx context.Context, q models.TransactionListQuery) (*models.TransactionList, error) {
	return &models.TransactionList{Data: []models.Transaction{}, Pagination: models.PaginationMeta{Page: q.Page, Limit: q.Limit}}, nil
}

func (r *fakeRepo) MarkCancelled(ctx context.Context, id string, reason models.CancellationReason, notes string, at time.Time) (bool, error) {
	r.markCalls++
	return r.markWon, r.markErr
}

func (r *fakeRepo) MarkSuspendedCancelled(ctx context.Context, id string, reason models.CancellationReason, notes string, at time.Time) (bool, error) {
	r.suspCalls++
	return r.markWon, r.markErr
}

func (r *fakeRepo) TransitionStatus(ctx context.Context, id string, from []models.TransactionStatus, to models.TransactionStatus) (bool, error) {
	r.transitions++
	return true, nil
}

func (r *fakeRepo) AppendTimelineStep(ctx context.Context, entry *models.TimelineEntry) error {
	r.timeline = append(r.timeline, entry)
	return nil
}

func (r *fakeRepo) GetTimeline(ctx context.Context, id string) ([]models.TimelineEntry, error) {
	out := make([]models.TimelineEntry, 0, len(r.timeline))
	for _, e := range r.timeline {
		out = append(out, *e)
	}
	return out, nil
}

func (r *fakeRepo) RecordPaymentReceived(ctx context.Context, id string, amount float64, currency string, at time.Time) error {
	r.payments++
	return nil
}

type fakeChecks struct {
	received  bool
	amount    float64
	locked    bool
	completed bool
	err       error
}

func (f *fakeChecks) FundsReceived(ctx context.Context, id string) (bool, float64, error) {
	return f.received, f.amount, f.err
}

func (f *fakeChecks) RateLocked(ctx context.Context, id string) (bool, error) {
	return f.locked, f.err
}

func (f *fakeChecks) ComplianceCompleted(ctx context.Context, id string) (bool, error) {
	return f.completed, f.err
}

type fakeGateway struct {
	published []models.TransactionCancelledEvent
	err       error
}

func (g *fakeGateway) PublishTransactionCancelled(ctx context.Context, event models.TransactionCancelledEvent) error {
	g.published = append(g.published, event)
	return g.err
}

type fakeEnqueuer struct {
	calls []models.WebhookEventType
	err   error
}

func (e *fakeEnqueuer) Enqueue(ctx context.Context, integratorID, transactionID string, eventType models.WebhookEventType, data map[string]interface{}) error {
	e.calls = append(e.calls, eventType)
	return e.err
}

type fixture struct {
	uc       transaction.TransactionUC
	repo     *fakeRepo
	checks   *fakeChecks
	gw       *fakeGateway
	enqueuer *fakeEnqueuer
	sink     *captureSink
}

func newFixture(t *testing.T, repo *fakeRepo, checks *fakeChecks) *fixture {
	t.Helper()
	gw := &fakeGateway{}
	enqueuer := &fakeEnqueuer{}
	sink := &captureSink{}
	cfg := &models.Config{}

	uc, err := NewTransactionUC(cfg, repo, checks, checks, checks, gw, enqueuer, sink)
	require.NoError(t, err)

	return &fixture{uc: uc, repo: repo, checks: checks, gw: gw, enqueuer: enqueuer, sink: sink}
}

func assertAuditComplete(t *testing.T, sink *captureSink, terminal string) {
	t.Helper()
	assert.Len(t, sink.ofType(audit.EventCancellationAttempt), 1)
	assert.Len(t, sink.ofType(terminal), 1)
	assert.Len(t, sink.events, 2)
}

func TestCancelTransaction_Success(t *testing.T) {
	now := time.Now().UTC()
	tx := pendingTransaction("txn_abc123", models.StatusPendingPayment, 10*time.Minute, now)
	tx.IntegratorID = "int_001"
	repo := &fakeRepo{tx: tx, markWon: true}
	f := newFixture(t, repo, &fakeChecks{})

	resp, decision, err := f.uc.CancelTransaction(context.Background(), cancelRequest(tx.ID))

	require.NoError(t, err)
	require.True(t, decision.Allowed)
	require.NotNil(t, resp)
	assert.Equal(t, "txn_abc123", resp.TransactionID)
	assert.Equal(t, models.StatusPendingPayment, resp.PreviousStatus)
	assert.Equal(t, models.StatusCancelled, resp.NewStatus)
	assert.False(t, resp.RefundDetails.RefundRequired)
	assert.Equal(t, 1, repo.markCalls)

	require.Len(t, repo.timeline, 1)
	assert.Equal(t, models.StepTransactionCancelled, repo.timeline[0].Step)
	assert.Equal(t, models.StepStatusCompleted, repo.timeline[0].Status)

	require.Len(t, f.enqueuer.calls, 1)
	assert.Equal(t, models.EventTransactionCancelled, f.enqueuer.calls[0])
	require.Len(t, f.gw.published, 1)
	assert.Equal(t, "int_001", f.gw.published[0].IntegratorID)

	assertAuditComplete(t, f.sink, audit.EventCancellationSuccess)
}

func TestCancelTransaction_DeniedOutsidePendingFamily(t *testing.T) {
	now := time.Now().UTC()
	tx := pendingTransaction("txn_def456", models.StatusProcessing, time.Minute, now)
	repo := &fakeRepo{tx: tx, markWon: true}
	f := newFixture(t, repo, &fakeChecks{})

	resp, decision, err := f.uc.CancelTransaction(context.Background(), cancelRequest(tx.ID))

	require.NoError(t, err)
	assert.Nil(t, resp)
	require.False(t, decision.Allowed)
	assert.Equal(t, models.DenyCancellationNotAllowed, decision.Reason)
	assert.Contains(t, decision.Message, "processing")
	assert.Zero(t, repo.markCalls)
	assert.Empty(t, f.enqueuer.calls)

	assertAuditComplete(t, f.sink, audit.EventCancellationFailed)
}

func TestCancelTransaction_NotFound(t *testing.T) {
	repo := &fakeRepo{getErr: transaction.ErrTransactionNotFound}
	f := newFixture(t, repo, &fakeChecks{})

	resp, decision, err := f.uc.CancelTransaction(context.Background(), cancelRequest("txn_zzz"))

	require.NoError(t, err)
	assert.Nil(t, resp)
	require.False(t, decision.Allowed)
	assert.Equal(t, models.DenyTransactionNotFound, decision.Reason)

	assertAuditComplete(t, f.sink, audit.EventCancellationFailed)
}

func TestCancelTransaction_DeniedOnFundsWithinGracePeriod(t *testing.T) {
	now := time.Now().UTC()
	tx := pendingTransaction("txn_fresh", models.StatusPending, 2*time.Minute, now)
	repo := &fakeRepo{tx: tx, markWon: true}
	f := newFixture(t, repo, &fakeChecks{received: true, amount: 500})

	_, decision, err := f.uc.CancelTransaction(context.Background(), cancelRequest(tx.ID))

	require.NoError(t, err)
	require.False(t, decision.Allowed)
	assert.Equal(t, models.DenyFundsReceived, decision.Reason)
	assert.Zero(t, repo.markCalls)
}

func TestCancelTransaction_LostRaceDeniedOnPostTransitionStatus(t *testing.T) {
	now := time.Now().UTC()
	tx := pendingTransaction("txn_race", models.StatusPending, 10*time.Minute, now)
	after := pendingTransaction("txn_race", models.StatusCancelled, 10*time.Minute, now)
	repo := &fakeRepo{tx: tx, reloaded: after, markWon: false}
	f := newFixture(t, repo, &fakeChecks{})

	resp, decision, err := f.uc.CancelTransaction(context.Background(), cancelRequest(tx.ID))

	require.NoError(t, err)
	assert.Nil(t, resp)
	require.False(t, decision.Allowed)
	assert.Equal(t, models.DenyCancellationNotAllowed, decision.Reason)
	assert.Equal(t, models.StatusCancelled, decision.CurrentStatus)
	assert.Empty(t, f.enqueuer.calls)
	assert.Empty(t, f.gw.published)

	assertAuditComplete(t, f.sink, audit.EventCancellationFailed)
}

func TestCancelTransaction_NotificationFailureDoesNotFailCancellation(t *testing.T) {
	now := time.Now().UTC()
	tx := pendingTransaction("txn_hook", models.StatusPending, 10*time.Minute, now)
	repo := &fakeRepo{tx: tx, markWon: true}
	f := newFixture(t, repo, &fakeChecks{})
	f.enqueuer.err = errors.New("outbox unavailable")
	f.gw.err = errors.New("nats down")

	resp, decision, err := f.uc.CancelTransaction(context.Background(), cancelRequest(tx.ID))

	require.NoError(t, err)
	require.True(t, decision.Allowed)
	require.NotNil(t, resp)
	assertAuditComplete(t, f.sink, audit.EventCancellationSuccess)
}

func TestCancelTransaction_RepoFaultRecordsFailedEvent(t *testing.T) {
	repo := &fakeRepo{getErr: errors.New("connection refused")}
	f := newFixture(t, repo, &fakeChecks{})

	_, _, err := f.uc.CancelTransaction(context.Background(), cancelRequest("txn_err"))

	require.Error(t, err)
	assertAuditComplete(t, f.sink, audit.EventCancellationFailed)
}

func TestCancelSuspendedTransaction(t *testing.T) {
	now := time.Now().UTC()
	tx := pendingTransaction("txn_susp123", models.StatusSuspended, time.Hour, now)
	repo := &fakeRepo{tx: tx, markWon: true}
	f := newFixture(t, repo, &fakeChecks{})

	req := cancelRequest(tx.ID)
	req.Reason = models.CancelReasonComplianceConcern
	req.RequestedBy = "ops-admin"

	resp, decision, err := f.uc.CancelSuspendedTransaction(context.Background(), req)

	require.NoError(t, err)
	require.True(t, decision.Allowed)
	require.NotNil(t, resp)
	assert.Equal(t, models.StatusSuspended, resp.PreviousStatus)
	assert.Equal(t, 1, repo.suspCalls)
	assert.Zero(t, repo.markCalls)
	assertAuditComplete(t, f.sink, audit.EventCancellationSuccess)
}

func TestCancelSuspendedTransaction_RejectsNonSuspended(t *testing.T) {
	now := time.Now().UTC()
	tx := pendingTransaction("txn_pend", models.StatusPending, time.Minute, now)
	repo := &fakeRepo{tx: tx, markWon: true}
	f := newFixture(t, repo, &fakeChecks{})

	_, decision, err := f.uc.CancelSuspendedTransaction(context.Background(), cancelRequest(tx.ID))

	require.NoError(t, err)
	require.False(t, decision.Allowed)
	assert.Equal(t, models.DenyCancellationNotAllowed, decision.Reason)
	assert.Zero(t, repo.suspCalls)
}

func TestProcessPaymentReceived(t *testing.T) {
	now := time.Now().UTC()
	tx := pendingTransaction("txn_pay", models.StatusWaitingForPayment, time.Minute, now)
	repo := &fakeRepo{tx: tx}
	f := newFixture(t, repo, &fakeChecks{})

	err := f.uc.ProcessPaymentReceived(context.Background(), models.PaymentReceivedEvent{
		TransactionID: tx.ID,
		Amount:        1000,
		Currency:      "USD",
		ReceivedAt:    now,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, repo.payments)
	assert.Equal(t, 1, repo.transitions)
	require.Len(t, repo.timeline, 1)
	assert.Equal(t, models.StepPaymentReceived, repo.timeline[0].Step)
}

func TestProcessPaymentReceived_IgnoresSettledTransaction(t *testing.T) {
	now := time.Now().UTC()
	tx := pendingTransaction("txn_done", models.StatusCompleted, time.Hour, now)
	repo := &fakeRepo{tx: tx}
	f := newFixture(t, repo, &fakeChecks{})

	err := f.uc.ProcessPaymentReceived(context.Background(), models.PaymentReceivedEvent{TransactionID: tx.ID})

	require.NoError(t, err)
	assert.Zero(t, repo.payments)
	assert.Zero(t, repo.transitions)
}

func TestGetTransactionReceipt(t *testing.T) {
	now := time.Now().UTC()
	tx := pendingTransaction("txn_rcpt", models.StatusCompleted, time.Hour, now)
	tx.ReferenceCode = "GBW-2024-0001"
	tx.ActivityType = models.ActivityOnramp
	tx.CryptoAmount = "0.015"
	tx.CryptoCurrency = "BTC"
	repo := &fakeRepo{tx: tx}
	f := newFixture(t, repo, &fakeChecks{})

	receipt, err := f.uc.GetTransactionReceipt(context.Background(), tx.ID)

	require.NoError(t, err)
	assert.Equal(t, "RCP-GBW-2024-0001", receipt.ReceiptID)
	assert.Equal(t, "1000.00 USD", receipt.Summary.AmountPaid)
	assert.Equal(t, "0.015 BTC", receipt.Summary.AmountReceived)
}

func TestGetTransactionReceipt_RequiresCompletedStatus(t *testing.T) {
	now := time.Now().UTC()
	tx := pendingTransaction("txn_rcpt", models.StatusPending, time.Minute, now)
	repo := &fakeRepo{tx: tx}
	f := newFixture(t, repo, &fakeChecks{})

	_, err := f.uc.GetTransactionReceipt(context.Background(), tx.ID)

	assert.ErrorIs(t, err, transaction.ErrReceiptNotAvailable)
}

func TestGetTransactionStatus(t *testing.T) {
	now := time.Now().UTC()
	tx := pendingTransaction("txn_status", models.StatusPending, time.Minute, now)
	repo := &fakeRepo{tx: tx}
	repo.timeline = append(repo.timeline, &models.TimelineEntry{
		TransactionID: tx.ID,
		Step:          models.StepTransactionCreated,
		Status:        models.StepStatusCompleted,
		StartedAt:     tx.CreatedAt,
	})
	f := newFixture(t, repo, &fakeChecks{})

	resp, err := f.uc.GetTransactionStatus(context.Background(), tx.ID)

	require.NoError(t, err)
	assert.Equal(t, tx.ID, resp.Transaction.ID)
	require.Len(t, resp.Timeline, 1)
	assert.Equal(t, models.StepTransactionCreated, resp.Timeline[0].Step)
}
