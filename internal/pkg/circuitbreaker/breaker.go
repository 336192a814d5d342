package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gbawo/finance-core/internal/pkg/logger"
)

// State is the breaker position for one endpoint.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

var (
	// ErrCircuitBreakerOpen is returned without attempting the call while
	// the endpoint is cooling down.
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open")
	// ErrTooManyRequests is returned when a half-open probe slot is taken.
	ErrTooManyRequests = errors.New("too many requests in half-open state")
)

// Config tunes a single breaker.
type Config struct {
	Name             string
	FailureThreshold uint32        // consecutive failures before opening
	SuccessThreshold uint32        // consecutive half-open successes before closing
	MaxProbes        uint32        // concurrent probes allowed while half-open
	Cooldown         time.Duration // open duration before probing again
	ResetInterval    time.Duration // closed-state window for clearing the failure streak
}

// DefaultConfig suits webhook endpoints: open after 5 straight failures,
// probe once a minute, close on the first good response.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		FailureThreshold: 5,
		SuccessThreshold: 1,
		MaxProbes:        1,
		Cooldown:         60 * time.Second,
		ResetInterval:    30 * time.Second,
	}
}

// CircuitBreaker guards one integrator endpoint so a dead endpoint cannot
// stall the whole dispatch worker.
type CircuitBreaker struct {
	config Config
	logger *logger.ZapLogger

	mu        sync.Mutex
	state     State
	failures  uint32
	successes uint32
	probes    uint32
	deadline  time.Time
}

func New(config Config, l *logger.ZapLogger) *CircuitBreaker {
	if l == nil {
		l = logger.GetGlobalLogger()
	}
	return &CircuitBreaker{
		config:   config,
		logger:   l,
		state:    StateClosed,
		deadline: time.Now().Add(config.ResetInterval),
	}
}

// Execute runs fn unless the breaker rejects the call. The result of fn
// feeds the breaker state.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := cb.admit(); err != nil {
		return err
	}

	err := fn(ctx)
	cb.record(err)
	return err
}

func (cb *CircuitBreaker) admit() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := time.Now()

	switch cb.state {
	case StateClosed:
		if cb.deadline.Before(now) {
			cb.failures = 0
			cb.deadline = now.Add(cb.config.ResetInterval)
		}
	case StateOpen:
		if !cb.deadline.Before(now) {
			return ErrCircuitBreakerOpen
		}
		cb.transition(StateHalfOpen)
		cb.probes = 0
		cb.successes = 0
	case StateHalfOpen:
		if cb.probes >= cb.config.MaxProbes {
			return ErrTooManyRequests
		}
	}

	if cb.state == StateHalfOpen {
		cb.probes++
	}
	return nil
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.failures++
		cb.successes = 0

		if cb.state == StateHalfOpen || (cb.state == StateClosed && cb.failures >= cb.config.FailureThreshold) {
			cb.transition(StateOpen)
			cb.deadline = time.Now().Add(cb.config.Cooldown)
		}
		return
	}

	cb.successes++
	cb.failures = 0

	if cb.state == StateHalfOpen && cb.successes >= cb.config.SuccessThreshold {
		cb.transition(StateClosed)
		cb.deadline = time.Now().Add(cb.config.ResetInterval)
	}
}

func (cb *CircuitBreaker) transition(next State) {
	if cb.state == next {
		return
	}

	prev := cb.state
	cb.state = next

	cb.logger.Info("Circuit breaker state changed",
		logger.String("name", cb.config.Name),
		logger.String("from", prev.String()),
		logger.String("to", next.String()))
}

// State reports the current breaker position.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Manager keeps one breaker per endpoint name.
type Manager struct {
	mu       sync.Mutex
	breakers map[string]*CircuitBreaker
	logger   *logger.ZapLogger
}

func NewManager(l *logger.ZapLogger) *Manager {
	return &Manager{
		breakers: make(map[string]*CircuitBreaker),
		logger:   l,
	}
}

func (m *Manager) get(name string) *CircuitBreaker {
	m.mu.Lock()
	defer m.mu.Unlock()

	cb, ok := m.breakers[name]
	if !ok {
		cb = New(DefaultConfig(name), m.logger)
		m.breakers[name] = cb
	}
	return cb
}

// Execute runs fn through the breaker registered for name, creating it on
// first use.
func (m *Manager) Execute(ctx context.Context, name string, fn func(context.Context) error) error {
	return m.get(name).Execute(ctx, fn)
}
