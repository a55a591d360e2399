package azdo

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/azdash-dev/azdash/pkg/types"
)

// PullRequestDetail is the per-PR detail record enrichment draws merge state
// from.
type PullRequestDetail struct {
	Status      string `json:"status"`
	MergeStatus string `json:"mergeStatus"`
	IsDraft     bool   `json:"isDraft"`
}

// ActivePullRequests fetches the active pull requests for a project, scoped to
// one repository when repositoryID is non-empty.
func (c *Client) ActivePullRequests(ctx context.Context, project, repositoryID string) ([]types.RawPullRequest, error) {
	var apiURL string
	if repositoryID != "" {
		apiURL = c.projectURL(project, fmt.Sprintf("/_apis/git/repositories/%s/pullrequests?searchCriteria.status=active&api-version=%s",
			url.PathEscape(repositoryID), apiVersion))
	} else {
		apiURL = c.projectURL(project, "/_apis/git/pullrequests?searchCriteria.status=active&api-version="+apiVersion)
	}

	slog.Info("Fetching active pull requests", "component", "api", "project", project, "repository", repositoryID)
	var envelope listEnvelope[types.RawPullRequest]
	if err := c.getJSON(ctx, "listActivePullRequests", apiURL, &envelope); err != nil {
		return nil, err
	}
	return envelope.Value, nil
}

// Threads fetches the review threads of one pull request.
func (c *Client) Threads(ctx context.Context, project, repositoryID string, pullRequestID int) ([]types.Thread, error) {
	apiURL := c.projectURL(project, fmt.Sprintf("/_apis/git/repositories/%s/pullRequests/%d/threads?api-version=%s",
		url.PathEscape(repositoryID), pullRequestID, apiVersion))

	var envelope listEnvelope[types.Thread]
	if err := c.getJSON(ctx, "listThreads", apiURL, &envelope); err != nil {
		return nil, err
	}
	return envelope.Value, nil
}

// PullRequestDetail fetches the detailed record of one pull request, the only
// source of its merge status and draft flag.
func (c *Client) PullRequestDetail(ctx context.Context, project, repositoryID string, pullRequestID int) (*PullRequestDetail, error) {
	apiURL := c.projectURL(project, fmt.Sprintf("/_apis/git/repositories/%s/pullRequests/%d?api-version=%s",
		url.PathEscape(repositoryID), pullRequestID, apiVersion))

	var detail PullRequestDetail
	if err := c.getJSON(ctx, "getPullRequestDetail", apiURL, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Repositories lists the repositories of a project. Results are cached
// briefly: selector fan-out and suggestion resolution hit the same project in
// one refresh cycle.
func (c *Client) Repositories(ctx context.Context, project string) ([]types.Repository, error) {
	cacheKey := "repos:" + project
	if cached, ok := c.repoCache.Get(cacheKey); ok {
		if repos, ok := cached.([]types.Repository); ok {
			slog.Debug("Repository list served from cache", "project", project)
			return repos, nil
		}
	}

	apiURL := c.projectURL(project, "/_apis/git/repositories?api-version="+apiVersion)
	slog.Info("Fetching repositories", "component", "api", "project", project)

	var envelope listEnvelope[types.Repository]
	if err := c.getJSON(ctx, "listRepositories", apiURL, &envelope); err != nil {
		return nil, err
	}
	c.repoCache.Set(cacheKey, envelope.Value)
	return envelope.Value, nil
}

// Suggestions fetches the "create pull request" suggestions for a repository.
func (c *Client) Suggestions(ctx context.Context, repositoryID string) ([]types.PullRequestSuggestion, error) {
	apiURL := c.orgURL(fmt.Sprintf("/_apis/git/repositories/%s/suggestions?api-version=%s",
		url.PathEscape(repositoryID), suggestionsAPIVersion))

	var envelope listEnvelope[types.PullRequestSuggestion]
	if err := c.getJSON(ctx, "listSuggestions", apiURL, &envelope); err != nil {
		return nil, err
	}
	return envelope.Value, nil
}
