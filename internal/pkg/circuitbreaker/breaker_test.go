package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errEndpoint = errors.New("endpoint unavailable")

func testConfig() Config {
	return Config{
		Name:             "integrator-test",
		FailureThreshold: 3,
		SuccessThreshold: 1,
		MaxProbes:        1,
		Cooldown:         10 * time.Millisecond,
		ResetInterval:    time.Minute,
	}
}

func fail(context.Context) error { return errEndpoint }

func succeed(context.Context) error { return nil }

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	cb := New(testConfig(), nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := cb.Execute(ctx, fail)
		assert.ErrorIs(t, err, errEndpoint)
	}
	assert.Equal(t, StateOpen, cb.State())

	err := cb.Execute(ctx, succeed)
	assert.ErrorIs(t, err, ErrCircuitBreakerOpen)
}

func TestBreakerClosesAfterSuccessfulProbe(t *testing.T) {
	cb := New(testConfig(), nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_ = cb.Execute(ctx, fail)
	}
	require.Equal(t, StateOpen, cb.State())

	time.Sleep(15 * time.Millisecond)

	err := cb.Execute(ctx, succeed)
	assert.NoError(t, err)
	assert.Equal(t, StateClosed, cb.State())
}

func TestBreakerReopensOnFailedProbe(t *testing.T) {
	cb := New(testConfig(), nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_ = cb.Execute(ctx, fail)
	}
	time.Sleep(15 * time.Millisecond)

	err := cb.Execute(ctx, fail)
	assert.ErrorIs(t, err, errEndpoint)
	assert.Equal(t, StateOpen, cb.State())
}

func TestBreakerSuccessResetsFailureStreak(t *testing.T) {
	cb := New(testConfig(), nil)
	ctx := context.Background()

	_ = cb.Execute(ctx, fail)
	_ = cb.Execute(ctx, fail)
	_ = cb.Execute(ctx, succeed)
	_ = cb.Execute(ctx, fail)
	_ = cb.Execute(ctx, fail)

	assert.Equal(t, StateClosed, cb.State())
}

func TestManagerIsolatesEndpoints(t *testing.T) {
	m := NewManager(nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_ = m.Execute(ctx, "dead-endpoint", fail)
	}

	err := m.Execute(ctx, "healthy-endpoint", succeed)
	assert.NoError(t, err)

	err = m.Execute(ctx, "dead-endpoint", succeed)
	assert.ErrorIs(t, err, ErrCircuitBreakerOpen)
}
