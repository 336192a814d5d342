package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gbawo/finance-core/internal/pkg/logger"
	"github.com/gbawo/finance-core/internal/utils"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// PanicRecoveryMiddleware recovers from handler panics, logs the stack trace
// and reports the panic to New Relic when a transaction is active. The client
// receives a generic 500 with no internal detail.
func PanicRecoveryMiddleware(zapLogger *logger.ZapLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				if r := recover(); r != nil {
					err := fmt.Errorf("panic recovered: %v", r)

					zapLogger.Error("Panic recovered in HTTP handler",
						logger.Err(err),
						logger.String("method", c.Request().Method),
						logger.String("path", c.Request().URL.Path),
						logger.String("client_ip", c.RealIP()),
						logger.String("stacktrace", string(debug.Stack())))

					if txn := newrelic.FromContext(c.Request().Context()); txn != nil {
						txn.NoticeError(err)
					}

					if !c.Response().Committed {
						_ = utils.ErrorResponseHandler(c, http.StatusInternalServerError, "Internal server error")
					}
				}
			}()

			return next(c)
		}
	}
}
