package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// sseHeaders prepares a response for Server-Sent Events and returns the
// flusher, or nil when the connection cannot stream.
func sseHeaders(w http.ResponseWriter) http.Flusher {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return nil
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	return flusher
}

// writeSSE frames one event. Data is JSON-encoded, which also keeps it to a
// single line.
func writeSSE(w http.ResponseWriter, flusher http.Flusher, event string, data any) {
	encoded, err := json.Marshal(data)
	if err != nil {
		slog.Error("Failed to encode SSE event", "event", event, "error", err)
		return
	}
	if _, err := w.Write([]byte("event: " + event + "\ndata: " + string(encoded) + "\n\n")); err != nil {
		slog.Debug("SSE write failed, consumer likely gone", "error", err)
		return
	}
	flusher.Flush()
}

// handleCredentialRefresh runs the credential helper once and relays its
// console output to the consumer. Disconnecting cancels the request context,
// which signals the helper to terminate (escalating to a kill after the grace
// period).
func (s *server) handleCredentialRefresh(w http.ResponseWriter, r *http.Request) {
	flusher := sseHeaders(w)
	if flusher == nil {
		return
	}

	for event := range s.relay.Run(r.Context()) {
		writeSSE(w, flusher, event.Type, event)
	}
	writeSSE(w, flusher, "closed", map[string]string{"reason": "helper exited"})
}

// handleErrorEvents streams the client's classified failure notifications so
// the dashboard can prompt for a new credential the moment a 401 appears.
func (s *server) handleErrorEvents(w http.ResponseWriter, r *http.Request) {
	flusher := sseHeaders(w)
	if flusher == nil {
		return
	}

	notifier := s.client.Notifications()
	events := notifier.Subscribe()
	defer notifier.Unsubscribe(events)

	for {
		select {
		case <-r.Context().Done():
			return
		case apiErr, ok := <-events:
			if !ok {
				return
			}
			writeSSE(w, flusher, "apierror", map[string]any{
				"kind":      apiErr.Kind,
				"operation": apiErr.Operation,
				"status":    apiErr.Status,
				"message":   apiErr.Error(),
			})
		}
	}
}
