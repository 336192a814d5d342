package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gbawo/finance-core/internal/pkg/database"
	"github.com/gbawo/finance-core/internal/pkg/logger"
	natspkg "github.com/gbawo/finance-core/internal/pkg/nats"
	"github.com/labstack/echo/v4"
)

// Checker verifies that one dependency is reachable.
type Checker interface {
	Check(ctx context.Context) error
}

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Check(ctx context.Context) error { return f(ctx) }

// NewPostgresHealthChecker checks database connectivity.
func NewPostgresHealthChecker(client *database.PostgresClient) Checker {
	return CheckerFunc(func(ctx context.Context) error {
		return client.GetDB().PingContext(ctx)
	})
}

// NewRedisHealthChecker checks Redis connectivity.
func NewRedisHealthChecker(client *database.RedisClient) Checker {
	return CheckerFunc(func(ctx context.Context) error {
		return client.GetClient().Ping(ctx).Err()
	})
}

// NewNATSHealthChecker checks the NATS connection.
func NewNATSHealthChecker(client *natspkg.Client) Checker {
	return CheckerFunc(func(ctx context.Context) error {
		if !client.IsConnected() {
			return context.DeadlineExceeded
		}
		return nil
	})
}

// HealthService aggregates dependency checkers.
type HealthService struct {
	logger   *logger.ZapLogger
	checkers map[string]Checker
}

// NewHealthService creates a new health service.
func NewHealthService(zapLogger *logger.ZapLogger) *HealthService {
	return &HealthService{
		logger:   zapLogger,
		checkers: make(map[string]Checker),
	}
}

// AddChecker registers a named dependency checker.
func (s *HealthService) AddChecker(name string, checker Checker) {
	s.checkers[name] = checker
}

// CheckAll runs every checker with a short timeout and reports per-dependency
// status.
func (s *HealthService) CheckAll(ctx context.Context) (bool, map[string]string) {
	results := make(map[string]string, len(s.checkers))
	healthy := true

	for name, checker := range s.checkers {
		checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := checker.Check(checkCtx)
		cancel()

		if err != nil {
			healthy = false
			results[name] = "unhealthy: " + err.Error()
			s.logger.Warn("Dependency health check failed",
				logger.String("dependency", name),
				logger.Err(err))
		} else {
			results[name] = "healthy"
		}
	}

	return healthy, results
}

// RegisterHealthEndpoints exposes liveness and readiness endpoints.
func RegisterHealthEndpoints(e *echo.Echo, appName, version string, svc *HealthService) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":  "ok",
			"service": appName,
			"version": version,
		})
	})

	e.GET("/health/ready", func(c echo.Context) error {
		healthy, results := svc.CheckAll(c.Request().Context())

		status := http.StatusOK
		overall := "ready"
		if !healthy {
			status = http.StatusServiceUnavailable
			overall = "not_ready"
		}

		return c.JSON(status, map[string]interface{}{
			"status":       overall,
			"service":      appName,
			"version":      version,
			"dependencies": results,
		})
	})
}
