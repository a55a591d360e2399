package aggregator

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/azdash-dev/azdash/pkg/types"

	"github.com/azdash-dev/azdash/pkg/internal/testutil"
)

func reposURL(project string) string {
	return testBase + "/" + project + "/_apis/git/repositories?api-version=7.0"
}

func suggestionsURL(repoID string) string {
	return testBase + "/_apis/git/repositories/" + repoID + "/suggestions?api-version=5.0-preview.1"
}

func repoRecord(id, name string) types.Repository {
	return types.Repository{ID: id, Name: name}
}

func suggestionRecord(source, target string) map[string]any {
	return map[string]any{
		"type": "pullRequest",
		"properties": map[string]string{
			"sourceBranch": source,
			"targetBranch": target,
		},
	}
}

func TestSuggestionsResolveRepositoryName(t *testing.T) {
	doer := testutil.NewMockHTTPDoer()
	doer.SetResponse("GET", reposURL("ProjA"), http.StatusOK, testutil.Envelope(
		repoRecord("r1", "web-app"), repoRecord("r2", "api"),
	))
	doer.SetResponse("GET", suggestionsURL("r2"), http.StatusOK, testutil.Envelope(
		suggestionRecord("refs/heads/feature/x", "refs/heads/main"),
	))

	service := newTestService(doer)
	suggestions := service.Suggestions(context.Background(), []types.ProjectSelector{
		{Name: "ProjA", Repository: "API"}, // name match is case-insensitive
	}, "")

	if len(suggestions) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(suggestions))
	}
	if suggestions[0].RepositoryID != "r2" || suggestions[0].RepositoryName != "API" {
		t.Errorf("suggestion not tagged with its repository: %+v", suggestions[0])
	}
	if suggestions[0].Properties.SourceBranch != "refs/heads/feature/x" {
		t.Errorf("unexpected suggestion: %+v", suggestions[0])
	}
}

func TestSelectorsWithoutRepositoryAreSkipped(t *testing.T) {
	doer := testutil.NewMockHTTPDoer()
	service := newTestService(doer)

	suggestions := service.Suggestions(context.Background(), []types.ProjectSelector{{Name: "ProjA"}}, "")
	if len(suggestions) != 0 {
		t.Errorf("expected no suggestions, got %d", len(suggestions))
	}
	if len(doer.Calls()) != 0 {
		t.Errorf("no calls expected for project-only selectors, saw %v", doer.Calls())
	}
}

func TestUnknownRepositoryNameIsNotAnError(t *testing.T) {
	doer := testutil.NewMockHTTPDoer()
	doer.SetResponse("GET", reposURL("ProjA"), http.StatusOK, testutil.Envelope(repoRecord("r1", "web-app")))

	service := newTestService(doer)
	suggestions := service.Suggestions(context.Background(), []types.ProjectSelector{
		{Name: "ProjA", Repository: "gone"},
	}, "")

	if len(suggestions) != 0 {
		t.Errorf("expected silence for an unknown repository, got %d", len(suggestions))
	}
}

func TestSuggestionFailureYieldsEmptyForThatSelector(t *testing.T) {
	doer := testutil.NewMockHTTPDoer()
	doer.SetError("GET", reposURL("Broken"), errors.New("connection refused"))
	doer.SetResponse("GET", reposURL("ProjA"), http.StatusOK, testutil.Envelope(repoRecord("r1", "web-app")))
	doer.SetResponse("GET", suggestionsURL("r1"), http.StatusOK, testutil.Envelope(
		suggestionRecord("refs/heads/fix", "refs/heads/main"),
	))

	service := newTestService(doer)
	suggestions := service.Suggestions(context.Background(), []types.ProjectSelector{
		{Name: "Broken", Repository: "web-app"},
		{Name: "ProjA", Repository: "web-app"},
	}, "")

	if len(suggestions) != 1 {
		t.Fatalf("expected the healthy selector's suggestions, got %d", len(suggestions))
	}
}
