package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gbawo/finance-core/internal/pkg/logger"
	"github.com/labstack/echo/v4"
)

// drainTimeout bounds how long in-flight cancellation requests may run
// after a shutdown signal before the listener is forced closed.
const drainTimeout = 30 * time.Second

// GracefulServer runs an Echo server and drains it on SIGINT/SIGTERM.
type GracefulServer struct {
	echo   *echo.Echo
	logger *logger.ZapLogger
	port   int
}

func NewGracefulServer(e *echo.Echo, zapLogger *logger.ZapLogger, port int) *GracefulServer {
	return &GracefulServer{
		echo:   e,
		logger: zapLogger,
		port:   port,
	}
}

// Start serves until an interrupt or SIGTERM arrives, then drains and returns.
func (s *GracefulServer) Start() error {
	go func() {
		addr := fmt.Sprintf(":%d", s.port)
		s.logger.Info("Starting HTTP server", logger.String("address", addr))

		if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("Failed to start server", logger.Err(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	sig := <-quit
	s.logger.Info("Received shutdown signal", logger.String("signal", sig.String()))

	return s.Shutdown()
}

// Shutdown stops accepting connections and waits for in-flight requests
// up to drainTimeout.
func (s *GracefulServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	if err := s.echo.Shutdown(ctx); err != nil {
		s.logger.Error("Server forced to shutdown", logger.Err(err))
		return err
	}

	s.logger.Info("Server shutdown completed")
	return nil
}

type shutdownHook struct {
	name string
	fn   func(context.Context) error
}

// ShutdownManager closes infrastructure components after the HTTP server
// has drained. Hooks run in registration order; a failing hook is logged
// and does not stop the remaining ones.
type ShutdownManager struct {
	logger *logger.ZapLogger
	hooks  []shutdownHook
}

func NewShutdownManager(zapLogger *logger.ZapLogger) *ShutdownManager {
	return &ShutdownManager{logger: zapLogger}
}

// Register adds a named cleanup hook to run during shutdown.
func (sm *ShutdownManager) Register(name string, fn func(context.Context) error) {
	sm.hooks = append(sm.hooks, shutdownHook{name: name, fn: fn})
}

// Shutdown runs every registered hook and returns the first error seen.
func (sm *ShutdownManager) Shutdown(ctx context.Context) error {
	sm.logger.Info("Shutting down components", logger.Int("components", len(sm.hooks)))

	var firstErr error
	for _, hook := range sm.hooks {
		if err := hook.fn(ctx); err != nil {
			sm.logger.Error("Component shutdown failed",
				logger.String("component", hook.name),
				logger.Err(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	sm.logger.Info("Component shutdown completed")
	return firstErr
}
