package azdo

import (
	"fmt"
	"net/http"
	"sync"
)

// Kind is the failure classification every operation funnels through.
type Kind string

// The four failure classes. Every failed call maps to exactly one of them
// regardless of which operation failed.
const (
	AuthInvalid        Kind = "auth_invalid"      // 401: credential invalid or expired
	AuthForbidden      Kind = "auth_forbidden"    // 403: credential lacks required scope
	NetworkUnavailable Kind = "network_error"     // no status: transport failure
	UpstreamError      Kind = "operation_failure" // any other non-2xx status
)

// APIError is a classified upstream failure.
type APIError struct {
	wrapped   error
	Operation string
	Kind      Kind
	Status    int
}

func (e *APIError) Error() string {
	switch e.Kind {
	case AuthInvalid:
		return fmt.Sprintf("%s: credential invalid or expired (status 401)", e.Operation)
	case AuthForbidden:
		return fmt.Sprintf("%s: credential lacks required scope (status 403)", e.Operation)
	case NetworkUnavailable:
		return fmt.Sprintf("%s: network error: %v", e.Operation, e.wrapped)
	default:
		return fmt.Sprintf("%s: operation failed (status %d)", e.Operation, e.Status)
	}
}

func (e *APIError) Unwrap() error { return e.wrapped }

// classify maps an HTTP status (or transport error) to its failure class.
func classify(operation string, status int, cause error) *APIError {
	e := &APIError{Operation: operation, Status: status, wrapped: cause}
	switch {
	case cause != nil && status == 0:
		e.Kind = NetworkUnavailable
	case status == http.StatusUnauthorized:
		e.Kind = AuthInvalid
	case status == http.StatusForbidden:
		e.Kind = AuthForbidden
	default:
		e.Kind = UpstreamError
	}
	return e
}

const notifyBufferSize = 16 // per-subscriber buffer before dropped notifications

// Notifier is the shared error notification stream. Subscribers receive every
// classified failure; a slow subscriber drops notifications rather than
// blocking the request path.
type Notifier struct {
	subscribers map[chan APIError]struct{}
	mu          sync.RWMutex
}

// NewNotifier creates an empty notification stream.
func NewNotifier() *Notifier {
	return &Notifier{subscribers: make(map[chan APIError]struct{})}
}

// Subscribe registers a new listener. The caller must eventually Unsubscribe
// the returned channel.
func (n *Notifier) Subscribe() <-chan APIError {
	ch := make(chan APIError, notifyBufferSize)
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subscribers[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a listener and closes its channel.
func (n *Notifier) Unsubscribe(ch <-chan APIError) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for sub := range n.subscribers {
		if sub == ch {
			delete(n.subscribers, sub)
			close(sub)
			return
		}
	}
}

// Publish delivers a classified failure to all current subscribers.
func (n *Notifier) Publish(err APIError) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for sub := range n.subscribers {
		select {
		case sub <- err:
		default:
		}
	}
}
