package aggregator

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/azdash-dev/azdash/pkg/types"
)

// Suggestions fetches the "create pull request" suggestions for every selector
// that names an explicit repository. Selectors without one are skipped; there
// is no enumeration fallback. A missing repository name or any sub-call
// failure yields an empty list for that selector, never a pipeline failure.
func (s *Service) Suggestions(ctx context.Context, selectors []types.ProjectSelector, credential string) []types.PullRequestSuggestion {
	if credential != "" {
		s.client.SetCredential(credential)
	}

	perSelector := make([][]types.PullRequestSuggestion, len(selectors))
	var wg sync.WaitGroup
	for i, selector := range selectors {
		if selector.Repository == "" {
			continue
		}
		wg.Add(1)
		go func(i int, selector types.ProjectSelector) {
			defer wg.Done()
			perSelector[i] = s.suggestionsForSelector(ctx, selector)
		}(i, selector)
	}
	wg.Wait()

	suggestions := []types.PullRequestSuggestion{}
	for _, batch := range perSelector {
		suggestions = append(suggestions, batch...)
	}
	return suggestions
}

// suggestionsForSelector resolves the selector's repository name to its vendor
// id, then fetches suggestions for it.
func (s *Service) suggestionsForSelector(ctx context.Context, selector types.ProjectSelector) []types.PullRequestSuggestion {
	repos, err := s.client.Repositories(ctx, selector.Name)
	if err != nil {
		return nil
	}

	repositoryID := ""
	for _, repo := range repos {
		if strings.EqualFold(repo.Name, selector.Repository) {
			repositoryID = repo.ID
			break
		}
	}
	if repositoryID == "" {
		slog.Debug("Repository not found in project, no suggestions", "component", "aggregator",
			"project", selector.Name, "repository", selector.Repository)
		return nil
	}

	suggestions, err := s.client.Suggestions(ctx, repositoryID)
	if err != nil {
		return nil
	}
	for i := range suggestions {
		if suggestions[i].RepositoryName == "" {
			suggestions[i].RepositoryName = selector.Repository
		}
		if suggestions[i].RepositoryID == "" {
			suggestions[i].RepositoryID = repositoryID
		}
	}
	return suggestions
}
