// Package testutil provides mock implementations and canned payloads for the
// dashboard tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// MockHTTPDoer implements azdo.HTTPDoer for testing. Responses and transport
// errors are configured per method+URL; unconfigured requests get a 404.
type MockHTTPDoer struct {
	responses map[string]mockResponse
	errors    map[string]error
	calls     []HTTPCall
	mu        sync.RWMutex
}

type mockResponse struct {
	body       []byte
	statusCode int
}

// HTTPCall records a single HTTP call.
type HTTPCall struct {
	Method string
	URL    string
	Auth   string
}

// NewMockHTTPDoer creates a new MockHTTPDoer.
func NewMockHTTPDoer() *MockHTTPDoer {
	return &MockHTTPDoer{
		responses: make(map[string]mockResponse),
		errors:    make(map[string]error),
	}
}

// Do executes the request against the configured responses.
func (m *MockHTTPDoer) Do(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, HTTPCall{
		Method: req.Method,
		URL:    req.URL.String(),
		Auth:   req.Header.Get("Authorization"),
	})

	key := makeKey(req.Method, req.URL.String())
	if err, ok := m.errors[key]; ok {
		return nil, err
	}
	if resp, ok := m.responses[key]; ok {
		return &http.Response{
			StatusCode: resp.statusCode,
			Status:     fmt.Sprintf("%d %s", resp.statusCode, http.StatusText(resp.statusCode)),
			Body:       io.NopCloser(bytes.NewReader(resp.body)),
			Header:     make(http.Header),
		}, nil
	}
	return &http.Response{
		StatusCode: http.StatusNotFound,
		Status:     "404 Not Found",
		Body:       io.NopCloser(strings.NewReader(`{"message":"not found"}`)),
		Header:     make(http.Header),
	}, nil
}

// SetResponse configures a JSON response for a method and URL.
func (m *MockHTTPDoer) SetResponse(method, url string, statusCode int, body any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var bodyBytes []byte
	if body != nil {
		var err error
		bodyBytes, err = json.Marshal(body)
		if err != nil {
			panic(fmt.Sprintf("failed to marshal response body: %v", err))
		}
	}
	m.responses[makeKey(method, url)] = mockResponse{statusCode: statusCode, body: bodyBytes}
}

// SetRawResponse configures a literal response body for a method and URL.
func (m *MockHTTPDoer) SetRawResponse(method, url string, statusCode int, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[makeKey(method, url)] = mockResponse{statusCode: statusCode, body: []byte(body)}
}

// SetError configures a transport error for a method and URL.
func (m *MockHTTPDoer) SetError(method, url string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[makeKey(method, url)] = err
}

// Calls returns all recorded HTTP calls.
func (m *MockHTTPDoer) Calls() []HTTPCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	calls := make([]HTTPCall, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// CallCount returns how many requests hit a method and URL.
func (m *MockHTTPDoer) CallCount(method, url string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, call := range m.calls {
		if call.Method == method && call.URL == url {
			count++
		}
	}
	return count
}

func makeKey(method, url string) string {
	return method + " " + url
}
