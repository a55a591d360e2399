// Package authrelay runs the local credential-refresh helper and streams its
// console output back to the dashboard as a sequence of events.
package authrelay

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/codeGROOVE-dev/retry"
)

// Helper launch retry policy. API calls are single-shot per refresh cycle,
// but a helper that fails to start (transient PATH/lock issues) is retried
// with backoff before the run is reported failed.
const (
	defaultGracePeriod = 5 * time.Second
	launchAttempts     = 3
	launchDelay        = 2 * time.Second
	launchMaxDelay     = 15 * time.Second
	eventBufferSize    = 64
)

// tokenPrefix marks the helper output line that carries the refreshed
// credential. The line is consumed, never relayed.
const tokenPrefix = "AZDASH_TOKEN="

// Event is one relayed item of helper output.
type Event struct {
	Expiry *time.Time `json:"expiry,omitempty"`
	Type   string     `json:"type"` // "line", "credential", "done", "error"
	Data   string     `json:"data,omitempty"`
}

// Config holds the helper command and callbacks.
type Config struct {
	OnCredential func(token string) // called with each refreshed token
	Command      []string
	GracePeriod  time.Duration // SIGTERM→SIGKILL escalation window
}

// Relay launches the helper process and fans its output out to one consumer
// per run.
type Relay struct {
	cfg     Config
	mu      sync.Mutex
	running bool
}

// New creates a relay for the configured helper command.
func New(cfg Config) *Relay {
	if cfg.GracePeriod == 0 {
		cfg.GracePeriod = defaultGracePeriod
	}
	return &Relay{cfg: cfg}
}

// Run starts one helper run and returns the channel its events arrive on.
// The channel is closed when the helper exits. Cancelling ctx (the consumer
// disconnecting) sends the helper SIGTERM, escalating to SIGKILL after the
// grace period.
//
// Only one run may be active at a time; a second Run while one is in flight
// yields a single "error" event.
func (r *Relay) Run(ctx context.Context) <-chan Event {
	events := make(chan Event, eventBufferSize)

	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		events <- Event{Type: "error", Data: "credential refresh already in progress"}
		close(events)
		return events
	}
	r.running = true
	r.mu.Unlock()

	go func() {
		defer close(events)
		defer func() {
			r.mu.Lock()
			r.running = false
			r.mu.Unlock()
		}()
		r.run(ctx, events)
	}()
	return events
}

func (r *Relay) run(ctx context.Context, events chan<- Event) {
	if len(r.cfg.Command) == 0 {
		events <- Event{Type: "error", Data: "no credential helper configured"}
		return
	}

	cmd, stdout, err := r.launchWithBackoff(ctx)
	if err != nil {
		events <- Event{Type: "error", Data: fmt.Sprintf("helper failed to start: %v", err)}
		return
	}
	slog.Info("Credential helper started", "component", "authrelay", "command", r.cfg.Command[0], "pid", cmd.Process.Pid)

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Text()
		if token, ok := strings.CutPrefix(line, tokenPrefix); ok {
			r.deliverCredential(strings.TrimSpace(token), events)
			continue
		}
		events <- Event{Type: "line", Data: line}
	}

	if err := cmd.Wait(); err != nil {
		slog.Warn("Credential helper exited with error", "component", "authrelay", "error", err)
		events <- Event{Type: "error", Data: fmt.Sprintf("helper exited: %v", err)}
		return
	}
	events <- Event{Type: "done"}
}

// deliverCredential pushes the refreshed token to the configured sink and
// reports its expiry (when it parses as a JWT) without ever relaying the
// token itself.
func (r *Relay) deliverCredential(token string, events chan<- Event) {
	if token == "" {
		return
	}
	if r.cfg.OnCredential != nil {
		r.cfg.OnCredential(token)
	}
	event := Event{Type: "credential", Data: "credential refreshed"}
	if expiry, ok := TokenExpiry(token); ok {
		event.Expiry = &expiry
	}
	slog.Info("Credential refreshed by helper", "component", "authrelay", "has_expiry", event.Expiry != nil)
	events <- event
}

// launchWithBackoff retries transient launch failures with exponential
// backoff and jitter. A failed Start tears its pipes down, so each attempt
// builds a fresh command.
func (r *Relay) launchWithBackoff(ctx context.Context) (cmd *exec.Cmd, stdout io.ReadCloser, err error) {
	err = retry.Do(
		func() error {
			c := exec.CommandContext(ctx, r.cfg.Command[0], r.cfg.Command[1:]...) //nolint:gosec // command comes from the operator's own config
			c.Cancel = func() error {
				slog.Info("Consumer gone, signalling helper", "component", "authrelay", "signal", "SIGTERM")
				return c.Process.Signal(syscall.SIGTERM)
			}
			c.WaitDelay = r.cfg.GracePeriod

			pipe, pipeErr := c.StdoutPipe()
			if pipeErr != nil {
				return fmt.Errorf("helper pipe: %w", pipeErr)
			}
			c.Stderr = c.Stdout

			if startErr := c.Start(); startErr != nil {
				return startErr
			}
			cmd, stdout = c, pipe
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(launchAttempts),
		retry.Delay(launchDelay),
		retry.MaxDelay(launchMaxDelay),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.MaxJitter(launchDelay/4),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			slog.Info("Retrying helper launch", "component", "authrelay", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return nil, nil, err
	}
	return cmd, stdout, nil
}
