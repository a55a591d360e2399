package view

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/azdash-dev/azdash/pkg/types"
)

func pr(repo, author string, draft bool) types.EnrichedPullRequest {
	var p types.EnrichedPullRequest
	p.Repository.Name = repo
	p.CreatedBy.DisplayName = author
	p.CreatedBy.UniqueName = author + "@example.com"
	p.IsDraft = draft
	return p
}

func TestApplyDropsDraftsByDefault(t *testing.T) {
	prs := []types.EnrichedPullRequest{
		pr("web-app", "Alice", false),
		pr("web-app", "Bob", true),
	}

	shown := Apply(prs, Options{})
	require.Len(t, shown, 1)
	require.Equal(t, "Alice", shown[0].CreatedBy.DisplayName)

	withDrafts := Apply(prs, Options{ShowDrafts: true})
	require.Len(t, withDrafts, 2)
}

func TestApplyRepositoryAndAuthorFilters(t *testing.T) {
	prs := []types.EnrichedPullRequest{
		pr("web-app", "Alice", false),
		pr("api", "Alice", false),
		pr("api", "Bob", false),
	}

	byRepo := Apply(prs, Options{Repositories: []string{"api"}})
	require.Len(t, byRepo, 2)

	byAuthor := Apply(prs, Options{Authors: []string{"Bob"}})
	require.Len(t, byAuthor, 1)
	require.Equal(t, "api", byAuthor[0].Repository.Name)

	both := Apply(prs, Options{Repositories: []string{"api"}, Authors: []string{"Alice"}})
	require.Len(t, both, 1)
	require.Equal(t, "Alice", both[0].CreatedBy.DisplayName)
}

func TestApplyIsIdempotent(t *testing.T) {
	prs := []types.EnrichedPullRequest{
		pr("web-app", "Alice", false),
		pr("api", "Bob", true),
		pr("api", "Carol", false),
	}
	opts := Options{Repositories: []string{"api"}, ShowDrafts: true}

	once := Apply(prs, opts)
	twice := Apply(once, opts)
	require.Equal(t, once, twice)
}

func TestSeedPinnedAuthors(t *testing.T) {
	prs := []types.EnrichedPullRequest{
		pr("web-app", "Alice", false),
		pr("api", "Bob", false),
	}

	t.Run("seeds from intersection when selection empty", func(t *testing.T) {
		seeded := SeedPinnedAuthors(prs, []string{"Alice", "Zoe"}, nil)
		require.Equal(t, []string{"Alice"}, seeded)

		shown := Apply(prs, Options{Authors: seeded})
		require.Len(t, shown, 1)
		require.Equal(t, "Alice", shown[0].CreatedBy.DisplayName)
	})

	t.Run("never overrides an existing selection", func(t *testing.T) {
		seeded := SeedPinnedAuthors(prs, []string{"Alice"}, []string{"Bob"})
		require.Equal(t, []string{"Bob"}, seeded)
	})

	t.Run("empty intersection leaves selection empty", func(t *testing.T) {
		seeded := SeedPinnedAuthors(prs, []string{"Zoe"}, nil)
		require.Empty(t, seeded)
	})

	t.Run("no pinned authors is a no-op", func(t *testing.T) {
		seeded := SeedPinnedAuthors(prs, nil, nil)
		require.Empty(t, seeded)
	})
}
