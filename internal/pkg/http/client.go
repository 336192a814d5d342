package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gbawo/finance-core/internal/pkg/circuitbreaker"
	"github.com/gbawo/finance-core/internal/pkg/logger"
	nrpkg "github.com/gbawo/finance-core/internal/pkg/newrelic"
)

// Client posts JSON payloads to external endpoints with per-host circuit
// breaker protection. Webhook delivery is its only caller; retries are
// scheduled by the dispatcher, so the client itself makes exactly one attempt.
type Client struct {
	httpClient     *http.Client
	circuitManager *circuitbreaker.Manager
	logger         *logger.ZapLogger
}

// NewClient creates a new outbound HTTP client
func NewClient(log *logger.ZapLogger, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		circuitManager: circuitbreaker.NewManager(log),
		logger:         log,
	}
}

// PostJSON sends a JSON body to the URL with the given headers. Any transport
// error or non-2xx response is returned as an error so the circuit breaker
// counts it as a failure. The response status code is returned when a
// response was received, 0 otherwise.
func (c *Client) PostJSON(ctx context.Context, url string, headers map[string]string, body []byte) (int, error) {
	var statusCode int

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	serviceName := req.URL.Host
	if serviceName == "" {
		serviceName = "unknown"
	}

	err = c.circuitManager.Execute(ctx, serviceName, func(ctx context.Context) error {
		resp, doErr := nrpkg.InstrumentHTTPRequest(ctx, req, func() (*http.Response, error) {
			return c.httpClient.Do(req)
		})
		if doErr != nil {
			return doErr
		}
		defer resp.Body.Close()

		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

		statusCode = resp.StatusCode
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("endpoint returned status %d", resp.StatusCode)
		}
		return nil
	})

	return statusCode, err
}
