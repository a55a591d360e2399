package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/azdash-dev/azdash/pkg/aggregator"
	"github.com/azdash-dev/azdash/pkg/authrelay"
	"github.com/azdash-dev/azdash/pkg/azdo"
	"github.com/azdash-dev/azdash/pkg/settings"
	"github.com/azdash-dev/azdash/pkg/view"
)

const (
	serverReadTimeout  = 60 * time.Second
	serverWriteTimeout = 0 // SSE endpoints hold their response open
	serverIdleTimeout  = 120 * time.Second
	staleAfter         = 15 * time.Minute
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address (default from config, then :8080)")
	rootCmd.AddCommand(serveCmd)
}

// server wires the aggregation pipeline, settings store, and credential relay
// behind the dashboard HTTP API.
type server struct {
	client  *azdo.Client
	agg     *aggregator.Service
	store   *settings.Store
	relay   *authrelay.Relay
	colors  *view.ColorAssigner
	metrics *metricsCollector
	cfg     *Config
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if listenAddr != "" {
		cfg.Listen = listenAddr
	}

	store, err := settings.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening settings store: %w", err)
	}
	defer store.Close()

	client := newClient(cfg)
	if stored, err := store.Credential(); err == nil && stored != "" {
		client.SetCredential(stored)
	}

	grace := time.Duration(cfg.GraceSeconds) * time.Second
	srv := &server{
		client:  client,
		agg:     aggregator.New(client),
		store:   store,
		colors:  view.NewColorAssigner(),
		metrics: newMetricsCollector(),
		cfg:     cfg,
	}
	srv.relay = authrelay.New(authrelay.Config{
		Command:      cfg.HelperCommand,
		GracePeriod:  grace,
		OnCredential: srv.adoptCredential,
	})

	slog.Info("Starting dashboard server", "listen", cfg.Listen, "organization", cfg.Organization)
	httpServer := &http.Server{
		Addr:         cfg.Listen,
		Handler:      srv.router(),
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
		IdleTimeout:  serverIdleTimeout,
	}
	return httpServer.ListenAndServe()
}

func (s *server) router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/pullrequests", s.handlePullRequests)
	r.Get("/api/suggestions", s.handleSuggestions)
	r.Post("/api/credential", s.handleSetCredential)
	r.Get("/api/settings/pinned-authors", s.handleGetPinnedAuthors)
	r.Put("/api/settings/pinned-authors", s.handleSetPinnedAuthors)
	r.Get("/api/settings/selectors", s.handleGetSelectors)
	r.Put("/api/settings/selectors", s.handleSetSelectors)
	r.Get("/api/pipelines/{definitionID}/builds", s.handlePipelineBuilds)
	r.Get("/api/builds/{buildID}/timeline", s.handleBuildTimeline)
	r.Get("/events/errors", s.handleErrorEvents)
	r.Get("/events/credential", s.handleCredentialRefresh)
	r.Get("/healthz", s.handleHealthz)

	return r
}

// adoptCredential is the relay's sink: every refreshed token immediately
// becomes the credential of all subsequent API calls and is persisted.
func (s *server) adoptCredential(token string) {
	s.client.SetCredential(token)
	if err := s.store.SetCredential(token); err != nil {
		slog.Warn("Failed to persist refreshed credential", "error", err)
	}
}

func (s *server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	stats := s.metrics.stats()

	status := "ok"
	statusCode := http.StatusOK
	if stats.TotalRefreshes > 0 && time.Since(stats.LastRefresh) > staleAfter {
		status = "stale"
		statusCode = http.StatusServiceUnavailable
	}

	w.WriteHeader(statusCode)
	fmt.Fprintf(w, "%s - %d projects, %d PRs seen (last refresh: %s, total refreshes: %d)\n",
		status, stats.Projects, stats.PRsSeen, stats.LastRefresh.Format(time.RFC3339), stats.TotalRefreshes)
}
