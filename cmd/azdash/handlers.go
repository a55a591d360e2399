package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/azdash-dev/azdash/pkg/types"
	"github.com/azdash-dev/azdash/pkg/view"
)

// credentialHeader optionally overrides the stored credential per request.
const credentialHeader = "X-Azdash-Pat"

// respondJSON writes a JSON response with the given status code and payload.
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			slog.Error("Failed to encode response", "error", err)
		}
	}
}

// respondError writes a JSON error response.
func respondError(w http.ResponseWriter, status int, message string) {
	slog.Error("Request failed", "status", status, "message", message)
	respondJSON(w, status, map[string]string{"error": message})
}

// selectors returns the stored selector list, falling back to the config
// file's.
func (s *server) selectors() []types.ProjectSelector {
	stored, err := s.store.Selectors()
	if err != nil {
		slog.Warn("Failed to read stored selectors, using config", "error", err)
	}
	if len(stored) > 0 {
		return stored
	}
	return s.cfg.Selectors
}

// pinnedAuthors returns the stored pinned author list, falling back to the
// config file's.
func (s *server) pinnedAuthors() []string {
	stored, err := s.store.PinnedAuthors()
	if err != nil {
		slog.Warn("Failed to read pinned authors, using config", "error", err)
	}
	if len(stored) > 0 {
		return stored
	}
	return s.cfg.PinnedAuthors
}

// pullRequestsResponse is the dashboard's refresh payload: the filtered view
// plus the state the frontend mirrors (effective author selection, avatar
// colors).
type pullRequestsResponse struct {
	Colors          map[string]string           `json:"colors"`
	Items           []types.EnrichedPullRequest `json:"items"`
	SelectedAuthors []string                    `json:"selectedAuthors"`
	Count           int                         `json:"count"`
	Total           int                         `json:"total"`
}

func (s *server) handlePullRequests(w http.ResponseWriter, r *http.Request) {
	selectors := s.selectors()
	if len(selectors) == 0 {
		respondError(w, http.StatusBadRequest, "no project selectors configured")
		return
	}

	result := s.agg.ActivePullRequests(r.Context(), selectors, r.Header.Get(credentialHeader))

	projects := make([]string, 0, len(selectors))
	for _, sel := range selectors {
		projects = append(projects, sel.Name)
	}
	keys := make([]string, 0, len(result.Items))
	for _, pr := range result.Items {
		keys = append(keys, prKey(pr.ProjectName, pr.Repository.Name, pr.PullRequestID))
	}
	s.metrics.recordRefresh(projects, keys)

	query := r.URL.Query()
	selected := view.SeedPinnedAuthors(result.Items, s.pinnedAuthors(), query["author"])
	shown := view.Apply(result.Items, view.Options{
		ShowDrafts:   query.Get("drafts") == "true" || query.Get("drafts") == "1",
		Repositories: query["repository"],
		Authors:      selected,
	})

	colors := make(map[string]string, len(shown))
	for _, pr := range shown {
		author := pr.CreatedBy.DisplayName
		if _, ok := colors[author]; !ok {
			colors[author] = s.colors.Color(author)
		}
	}

	respondJSON(w, http.StatusOK, pullRequestsResponse{
		Items:           shown,
		Count:           len(shown),
		Total:           result.Count,
		SelectedAuthors: selected,
		Colors:          colors,
	})
}

func (s *server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	suggestions := s.agg.Suggestions(r.Context(), s.selectors(), r.Header.Get(credentialHeader))
	respondJSON(w, http.StatusOK, map[string]any{
		"suggestions": suggestions,
		"count":       len(suggestions),
	})
}

func (s *server) handleSetCredential(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Token == "" {
		respondError(w, http.StatusBadRequest, "expected body {\"token\": \"...\"}")
		return
	}
	s.adoptCredential(body.Token)
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *server) handleGetPinnedAuthors(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.pinnedAuthors())
}

func (s *server) handleSetPinnedAuthors(w http.ResponseWriter, r *http.Request) {
	var authors []string
	if err := json.NewDecoder(r.Body).Decode(&authors); err != nil {
		respondError(w, http.StatusBadRequest, "expected a JSON array of author names")
		return
	}
	if err := s.store.SetPinnedAuthors(authors); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to persist pinned authors")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *server) handleGetSelectors(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.selectors())
}

func (s *server) handleSetSelectors(w http.ResponseWriter, r *http.Request) {
	var selectors []types.ProjectSelector
	if err := json.NewDecoder(r.Body).Decode(&selectors); err != nil {
		respondError(w, http.StatusBadRequest, "expected a JSON array of {name, repository?}")
		return
	}
	for _, sel := range selectors {
		if sel.Name == "" {
			respondError(w, http.StatusBadRequest, "selector name must not be empty")
			return
		}
	}
	if err := s.store.SetSelectors(selectors); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to persist selectors")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *server) handlePipelineBuilds(w http.ResponseWriter, r *http.Request) {
	definitionID, err := strconv.Atoi(chi.URLParam(r, "definitionID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "definition id must be numeric")
		return
	}
	project := r.URL.Query().Get("project")
	if project == "" {
		respondError(w, http.StatusBadRequest, "project query parameter is required")
		return
	}
	count := 10
	if raw := r.URL.Query().Get("count"); raw != "" {
		if count, err = strconv.Atoi(raw); err != nil || count < 1 {
			respondError(w, http.StatusBadRequest, "count must be a positive integer")
			return
		}
	}

	builds, err := s.client.PipelineBuilds(r.Context(), project, definitionID, count, r.URL.Query().Get("branch"))
	if err != nil {
		respondError(w, http.StatusBadGateway, "failed to load pipeline builds")
		return
	}
	respondJSON(w, http.StatusOK, builds)
}

func (s *server) handleBuildTimeline(w http.ResponseWriter, r *http.Request) {
	buildID, err := strconv.Atoi(chi.URLParam(r, "buildID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "build id must be numeric")
		return
	}
	project := r.URL.Query().Get("project")
	if project == "" {
		respondError(w, http.StatusBadRequest, "project query parameter is required")
		return
	}

	timeline, err := s.client.BuildTimeline(r.Context(), project, buildID)
	if err != nil {
		respondError(w, http.StatusBadGateway, "failed to load build timeline")
		return
	}
	respondJSON(w, http.StatusOK, timeline)
}
