package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gbawo/finance-core/internal/pkg/models"
	"github.com/gbawo/finance-core/internal/utils"
	"github.com/labstack/echo/v4"
)

const (
	// APIKeyHeader is the header integrators authenticate with.
	APIKeyHeader = "X-API-Key"
)

// APIKeyMiddleware validates API keys for integrator-facing and
// administrative endpoints.
type APIKeyMiddleware struct {
	cfg *models.APIKeyConfig
}

// NewAPIKeyMiddleware creates a new API key middleware.
func NewAPIKeyMiddleware(cfg *models.APIKeyConfig) *APIKeyMiddleware {
	return &APIKeyMiddleware{cfg: cfg}
}

// ValidateIntegrator accepts the integrator key or the admin key.
func (m *APIKeyMiddleware) ValidateIntegrator() echo.MiddlewareFunc {
	return m.validate(func(key string) bool {
		return keyMatches(key, m.cfg.IntegratorKey) || keyMatches(key, m.cfg.AdminKey)
	})
}

// ValidateAdmin accepts only the admin key. The suspended-transaction
// cancellation path is gated behind this.
func (m *APIKeyMiddleware) ValidateAdmin() echo.MiddlewareFunc {
	return m.validate(func(key string) bool {
		return keyMatches(key, m.cfg.AdminKey)
	})
}

func (m *APIKeyMiddleware) validate(accept func(string) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			apiKey := c.Request().Header.Get(APIKeyHeader)
			if apiKey == "" {
				return utils.ErrorResponseHandler(c, http.StatusUnauthorized, "API key is required")
			}

			if !accept(apiKey) {
				return utils.ErrorResponseHandler(c, http.StatusUnauthorized, "Invalid API key")
			}

			return next(c)
		}
	}
}

func keyMatches(got, want string) bool {
	if want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
