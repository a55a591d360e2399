// Package aggregator fans the Azure DevOps client out across configured
// project selectors and merges the per-pull-request enrichment results into
// one unified collection.
package aggregator

import (
	"context"
	"log/slog"
	"sync"

	"github.com/azdash-dev/azdash/pkg/azdo"
	"github.com/azdash-dev/azdash/pkg/types"
)

// API is the subset of the Azure DevOps client the aggregator consumes.
type API interface {
	SetCredential(token string)
	ActivePullRequests(ctx context.Context, project, repositoryID string) ([]types.RawPullRequest, error)
	Threads(ctx context.Context, project, repositoryID string, pullRequestID int) ([]types.Thread, error)
	Statuses(ctx context.Context, project, repositoryID string, pullRequestID int) ([]types.StatusEvent, error)
	BuildsByBranch(ctx context.Context, project, repositoryID, sourceBranch string) ([]types.BuildResult, error)
	PullRequestDetail(ctx context.Context, project, repositoryID string, pullRequestID int) (*azdo.PullRequestDetail, error)
	Repositories(ctx context.Context, project string) ([]types.Repository, error)
	Suggestions(ctx context.Context, repositoryID string) ([]types.PullRequestSuggestion, error)
}

// Result is the unified aggregation output.
type Result struct {
	Items []types.EnrichedPullRequest `json:"items"`
	Count int                         `json:"count"`
}

// Service runs the aggregation pipeline over one API client.
type Service struct {
	client API
}

// New creates an aggregation service.
func New(client API) *Service {
	return &Service{client: client}
}

// ActivePullRequests fetches, enriches, and joins the active pull requests of
// every selector. An optional non-empty credential replaces the client's
// stored one before any call is issued.
//
// All selector fetches start together; within one selector all pull requests
// enrich together. A failed or empty selector is skipped with a warning and
// never aborts the others. Final order is whatever the fan-out join produces.
func (s *Service) ActivePullRequests(ctx context.Context, selectors []types.ProjectSelector, credential string) Result {
	if credential != "" {
		s.client.SetCredential(credential)
	}

	perSelector := make([][]types.EnrichedPullRequest, len(selectors))
	var wg sync.WaitGroup
	for i, selector := range selectors {
		wg.Add(1)
		go func(i int, selector types.ProjectSelector) {
			defer wg.Done()
			perSelector[i] = s.fetchSelector(ctx, selector)
		}(i, selector)
	}
	wg.Wait()

	var items []types.EnrichedPullRequest
	for _, batch := range perSelector {
		items = append(items, batch...)
	}
	return Result{Items: items, Count: len(items)}
}

// fetchSelector fetches and enriches one selector's pull requests, stamping
// each result with the selector's project name.
func (s *Service) fetchSelector(ctx context.Context, selector types.ProjectSelector) []types.EnrichedPullRequest {
	raws, err := s.client.ActivePullRequests(ctx, selector.Name, selector.Repository)
	if err != nil {
		slog.Warn("Skipping selector after failed fetch", "component", "aggregator",
			"project", selector.Name, "repository", selector.Repository, "error", err)
		return nil
	}
	if len(raws) == 0 {
		return nil
	}

	enriched := make([]types.EnrichedPullRequest, len(raws))
	var wg sync.WaitGroup
	for i, raw := range raws {
		wg.Add(1)
		go func(i int, raw types.RawPullRequest) {
			defer wg.Done()
			pr := s.enrich(ctx, selector.Name, raw)
			pr.ProjectName = selector.Name
			enriched[i] = pr
		}(i, raw)
	}
	wg.Wait()
	return enriched
}
