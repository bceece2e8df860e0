package backend

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"irms/cli/internal/config"
)

// HTTP implements API client over REST endpoints.
type HTTP struct {
	// baseURL is the base URL for all HTTP requests (e.g., "http://localhost:8000")
	baseURL string
	// endpoints contains the URL paths for the token and profile endpoints
	endpoints config.Endpoints
	// client is the shared HTTP client; its transport injects the bearer token
	client *http.Client
}

// newHTTP creates a new HTTP client with the given base URL and endpoints.
// A nil client gets a 10-second timeout and the default transport.
func newHTTP(baseURL string, endpoints config.Endpoints, client *http.Client) *HTTP {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTP{
		baseURL:   strings.TrimRight(baseURL, "/"),
		endpoints: endpoints,
		client:    client,
	}
}

// StatusError reports a non-2xx response from the service.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s failed: %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s failed: %d %s", e.Op, e.StatusCode, e.Body)
}

// Unauthorized reports whether the service rejected the credentials or token.
func (e *StatusError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// newStatusError drains at most 1 KiB of the body into the error.
func newStatusError(op string, resp *http.Response) *StatusError {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
}

func isSuccess(code int) bool { return code >= 200 && code < 300 }
