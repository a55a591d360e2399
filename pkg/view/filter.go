// Package view derives the displayed pull request collection: repository,
// author, and draft filtering, pinned-author auto-selection, and the
// relatedness scoring used by the detail cards.
package view

import (
	"github.com/azdash-dev/azdash/pkg/types"
)

// Options is the filter state. It is pure view state, recomputed from the full
// collection on every change.
type Options struct {
	Repositories []string // empty = all repositories
	Authors      []string // author display names; empty = all authors
	ShowDrafts   bool
}

// Apply filters the aggregated collection down to the displayed subset.
// It is a pure function and idempotent for a fixed Options value.
func Apply(prs []types.EnrichedPullRequest, opts Options) []types.EnrichedPullRequest {
	repos := toSet(opts.Repositories)
	authors := toSet(opts.Authors)

	filtered := make([]types.EnrichedPullRequest, 0, len(prs))
	for _, pr := range prs {
		if pr.IsDraft && !opts.ShowDrafts {
			continue
		}
		if len(repos) > 0 && !repos[pr.Repository.Name] {
			continue
		}
		if len(authors) > 0 && !authors[pr.CreatedBy.DisplayName] {
			continue
		}
		filtered = append(filtered, pr)
	}
	return filtered
}

// SeedPinnedAuthors computes the author selection after a refresh: if no
// authors are currently selected and any pinned author appears in the new
// collection, the selection is seeded with that intersection. A non-empty
// existing selection is never overridden. Pinned order is preserved.
func SeedPinnedAuthors(prs []types.EnrichedPullRequest, pinned, selected []string) []string {
	if len(selected) > 0 {
		return selected
	}

	present := make(map[string]bool, len(prs))
	for _, pr := range prs {
		present[pr.CreatedBy.DisplayName] = true
	}

	var seeded []string
	for _, author := range pinned {
		if present[author] {
			seeded = append(seeded, author)
		}
	}
	if len(seeded) == 0 {
		return selected
	}
	return seeded
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
