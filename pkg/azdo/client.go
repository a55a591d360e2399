// Package azdo provides the Azure DevOps REST client the dashboard is built on.
package azdo

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/azdash-dev/azdash/pkg/cache"
)

const (
	apiVersion            = "7.0"
	suggestionsAPIVersion = "5.0-preview.1"
	defaultHTTPTimeout    = 30 * time.Second
	repoCacheTTL          = 5 * time.Minute
)

// HTTPDoer abstracts the HTTP transport so tests can substitute a mock.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client handles all Azure DevOps API interactions for one organization.
// The credential is the only cross-request mutable value: it is read at
// request time and replaced wholesale by SetCredential, so a write takes
// effect for every subsequent call.
type Client struct {
	httpClient HTTPDoer
	notifier   *Notifier
	repoCache  *cache.Cache
	baseURL    string
	org        string
	credential string
	credMutex  sync.RWMutex
}

// Config holds configuration for creating a new client.
type Config struct {
	HTTPClient   HTTPDoer // optional; defaults to a timeout-bounded http.Client
	BaseURL      string   // optional; defaults to https://dev.azure.com
	Organization string
	Credential   string // personal access token
	HTTPTimeout  time.Duration
}

// New creates a new Azure DevOps API client.
func New(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://dev.azure.com"
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.HTTPTimeout
		if timeout == 0 {
			timeout = defaultHTTPTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		org:        cfg.Organization,
		credential: cfg.Credential,
		httpClient: httpClient,
		notifier:   NewNotifier(),
		repoCache:  cache.New(repoCacheTTL),
	}
}

// SetCredential replaces the personal access token used for all subsequent
// calls, including ones already queued but not yet issued.
func (c *Client) SetCredential(token string) {
	c.credMutex.Lock()
	defer c.credMutex.Unlock()
	c.credential = token
}

// Credential returns the personal access token currently in use.
func (c *Client) Credential() string {
	c.credMutex.RLock()
	defer c.credMutex.RUnlock()
	return c.credential
}

// Notifications returns the shared error notification stream. Every classified
// failure of every operation is published here.
func (c *Client) Notifications() *Notifier { return c.notifier }

// orgURL builds an organization-scoped API URL.
func (c *Client) orgURL(path string) string {
	return fmt.Sprintf("%s/%s%s", c.baseURL, url.PathEscape(c.org), path)
}

// projectURL builds a project-scoped API URL.
func (c *Client) projectURL(project, path string) string {
	return fmt.Sprintf("%s/%s/%s%s", c.baseURL, url.PathEscape(c.org), url.PathEscape(project), path)
}

// drainAndCloseBody drains and closes an HTTP response body to prevent
// connection churn.
func drainAndCloseBody(body io.ReadCloser) {
	if _, err := io.Copy(io.Discard, body); err != nil {
		slog.Warn("Failed to drain response body", "error", err)
	}
	if err := body.Close(); err != nil {
		slog.Warn("Failed to close response body", "error", err)
	}
}

// getJSON issues one GET and decodes the response into out.
//
// Failures are classified (401, 403, transport, other) and published on the
// notification stream before being returned; callers absorb them by keeping
// the zero value. A body that fails to decode is an upstream contract break,
// not a transient outage, and is returned unclassified so it surfaces as a
// hard "failed to load".
func (c *Client) getJSON(ctx context.Context, operation, apiURL string, out any) error {
	slog.Debug("HTTP request", "component", "http", "operation", operation, "url", apiURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", operation, err)
	}
	req.Header.Set("Authorization", "Basic "+basicAuth(c.Credential()))
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.fail(operation, 0, err)
	}
	defer drainAndCloseBody(resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return c.fail(operation, resp.StatusCode, nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", operation, err)
	}
	return nil
}

// fail classifies a failure, logs it, and publishes it on the notification
// stream. It always returns a non-nil *APIError.
func (c *Client) fail(operation string, status int, cause error) error {
	apiErr := classify(operation, status, cause)
	slog.Warn("API call failed", "component", "api", "operation", operation,
		"kind", apiErr.Kind, "status", status, "error", cause)
	c.notifier.Publish(*apiErr)
	return apiErr
}

// basicAuth encodes the PAT the way the vendor expects: empty username, token
// as password.
func basicAuth(token string) string {
	return base64.StdEncoding.EncodeToString([]byte(":" + token))
}

// listEnvelope is the vendor's {count, value} collection wrapper.
type listEnvelope[T any] struct {
	Value []T `json:"value"`
	Count int `json:"count"`
}
