package azdo

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/azdash-dev/azdash/pkg/internal/testutil"
	"github.com/azdash-dev/azdash/pkg/types"
)

func TestBuildsFromStatusesMapping(t *testing.T) {
	tests := []struct {
		name       string
		state      string
		wantStatus string
		wantResult string
	}{
		{"succeeded", "succeeded", types.BuildCompleted, "succeeded"},
		{"failed", "failed", types.BuildCompleted, "failed"},
		{"error", "error", types.BuildCompleted, "failed"},
		{"pending", "pending", types.BuildInProgress, ""},
		{"notSet", "notSet", types.BuildNotStarted, ""},
		{"unknown vendor state", "somethingNew", types.BuildNotStarted, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			builds := BuildsFromStatuses([]types.StatusEvent{testutil.CIStatus(1, tt.state, "CI")}, "refs/heads/feature/x")
			if len(builds) != 1 {
				t.Fatalf("expected 1 build, got %d", len(builds))
			}
			if builds[0].Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", builds[0].Status, tt.wantStatus)
			}
			if builds[0].Result != tt.wantResult {
				t.Errorf("result = %q, want %q", builds[0].Result, tt.wantResult)
			}
			if builds[0].SourceBranch != "refs/heads/feature/x" {
				t.Errorf("source branch = %q", builds[0].SourceBranch)
			}
		})
	}
}

func TestBuildsFromStatusesFiltersGenre(t *testing.T) {
	other := types.StatusEvent{ID: 2, State: "succeeded"}
	other.Context.Name = "policy-check"
	other.Context.Genre = "pr-policy"

	builds := BuildsFromStatuses([]types.StatusEvent{testutil.CIStatus(1, "succeeded", "CI"), other}, "main")
	if len(builds) != 1 {
		t.Fatalf("expected only continuous-integration statuses, got %d builds", len(builds))
	}
	if builds[0].Definition.Name != "CI" {
		t.Errorf("definition name = %q", builds[0].Definition.Name)
	}
}

func TestBuildsFromStatusesTimes(t *testing.T) {
	completed := BuildsFromStatuses([]types.StatusEvent{testutil.CIStatus(1, "succeeded", "CI")}, "main")[0]
	if completed.StartTime == nil || completed.FinishTime == nil {
		t.Fatal("completed build should carry start and finish times")
	}
	if !completed.FinishTime.After(*completed.StartTime) {
		t.Error("finish time should follow start time")
	}

	pending := BuildsFromStatuses([]types.StatusEvent{testutil.CIStatus(2, "pending", "CI")}, "main")[0]
	if pending.FinishTime != nil {
		t.Error("in-progress build must not carry a finish time")
	}
}

func TestStripRefPrefix(t *testing.T) {
	if got := StripRefPrefix("refs/heads/feature/x"); got != "feature/x" {
		t.Errorf("got %q", got)
	}
	if got := StripRefPrefix("main"); got != "main" {
		t.Errorf("bare branch names pass through, got %q", got)
	}
}

func TestBuildsByBranchStripsPrefix(t *testing.T) {
	doer := testutil.NewMockHTTPDoer()
	url := "https://dev.azure.com/contoso/ProjA/_apis/build/builds?branchName=feature%2Fx&$top=10&api-version=7.0&repositoryId=r1&repositoryType=TfsGit"
	doer.SetResponse("GET", url, http.StatusOK, testutil.Envelope())

	client := newTestClient(doer)
	if _, err := client.BuildsByBranch(context.Background(), "ProjA", "r1", "refs/heads/feature/x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doer.CallCount("GET", url) != 1 {
		t.Errorf("expected branch query without refs/heads prefix, saw %v", doer.Calls())
	}
}

func TestBuildTimelineDecodes(t *testing.T) {
	doer := testutil.NewMockHTTPDoer()
	url := "https://dev.azure.com/contoso/ProjA/_apis/build/builds/42/timeline?api-version=7.0"
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	doer.SetResponse("GET", url, http.StatusOK, types.Timeline{
		ID: "tl-1",
		Records: []types.TimelineRecord{
			{ID: "s1", Type: "Stage", Name: "Build", State: "completed", Result: "succeeded", StartTime: &start},
		},
	})

	client := newTestClient(doer)
	timeline, err := client.BuildTimeline(context.Background(), "ProjA", 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if timeline.ID != "tl-1" || len(timeline.Records) != 1 {
		t.Errorf("unexpected timeline: %+v", timeline)
	}
}
