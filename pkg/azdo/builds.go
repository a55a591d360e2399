package azdo

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/azdash-dev/azdash/pkg/types"
)

const branchBuildsLimit = 10 // $top for builds-by-branch queries

// ciGenre is the status genre that marks a status event as a CI run.
const ciGenre = "continuous-integration"

// Statuses fetches the status events of one pull request. Filtered through
// BuildsFromStatuses this is the primary build-discovery path.
func (c *Client) Statuses(ctx context.Context, project, repositoryID string, pullRequestID int) ([]types.StatusEvent, error) {
	apiURL := c.projectURL(project, fmt.Sprintf("/_apis/git/repositories/%s/pullRequests/%d/statuses?api-version=%s",
		url.PathEscape(repositoryID), pullRequestID, apiVersion))

	var envelope listEnvelope[types.StatusEvent]
	if err := c.getJSON(ctx, "listStatuses", apiURL, &envelope); err != nil {
		return nil, err
	}
	return envelope.Value, nil
}

// BuildsByBranch fetches recent builds by source branch name, the fallback
// path when status-derived discovery fails. The branch is queried without its
// refs/heads/ prefix.
func (c *Client) BuildsByBranch(ctx context.Context, project, repositoryID, sourceBranch string) ([]types.BuildResult, error) {
	branch := StripRefPrefix(sourceBranch)
	query := fmt.Sprintf("branchName=%s&$top=%d&api-version=%s", url.QueryEscape(branch), branchBuildsLimit, apiVersion)
	if repositoryID != "" {
		query += "&repositoryId=" + url.QueryEscape(repositoryID) + "&repositoryType=TfsGit"
	}
	apiURL := c.projectURL(project, "/_apis/build/builds?"+query)

	var envelope listEnvelope[types.BuildResult]
	if err := c.getJSON(ctx, "listBuilds", apiURL, &envelope); err != nil {
		return nil, err
	}
	return envelope.Value, nil
}

// PipelineBuilds fetches the most recent builds of one pipeline definition,
// optionally filtered to a branch.
func (c *Client) PipelineBuilds(ctx context.Context, project string, definitionID, count int, branchFilter string) ([]types.BuildResult, error) {
	query := fmt.Sprintf("definitions=%d&$top=%d&api-version=%s", definitionID, count, apiVersion)
	if branchFilter != "" {
		query += "&branchName=" + url.QueryEscape(branchFilter)
	}
	apiURL := c.projectURL(project, "/_apis/build/builds?"+query)

	var envelope listEnvelope[types.BuildResult]
	if err := c.getJSON(ctx, "listPipelineBuilds", apiURL, &envelope); err != nil {
		return nil, err
	}
	return envelope.Value, nil
}

// BuildTimeline fetches the stage/job/task timeline of one build.
func (c *Client) BuildTimeline(ctx context.Context, project string, buildID int) (*types.Timeline, error) {
	apiURL := c.projectURL(project, fmt.Sprintf("/_apis/build/builds/%d/timeline?api-version=%s", buildID, apiVersion))

	var timeline types.Timeline
	if err := c.getJSON(ctx, "getBuildTimeline", apiURL, &timeline); err != nil {
		return nil, err
	}
	return &timeline, nil
}

// StripRefPrefix removes the refs/heads/ prefix from a branch ref.
func StripRefPrefix(ref string) string {
	return strings.TrimPrefix(ref, "refs/heads/")
}

// BuildsFromStatuses derives BuildResult records from pull request status
// events, keeping only the continuous-integration genre. Status events carry
// no branch, so the caller supplies the pull request's source branch.
func BuildsFromStatuses(events []types.StatusEvent, sourceBranch string) []types.BuildResult {
	var builds []types.BuildResult
	for _, event := range events {
		if event.Context.Genre != ciGenre {
			continue
		}
		build := types.BuildResult{
			ID:           event.ID,
			BuildNumber:  event.Description,
			Status:       normalizeState(event.State),
			Result:       normalizeResult(event.State),
			Definition:   types.BuildDefinition{Name: event.Context.Name},
			SourceBranch: sourceBranch,
		}
		if !event.CreationDate.IsZero() {
			start := event.CreationDate
			build.StartTime = &start
		}
		if build.Status == types.BuildCompleted && !event.UpdatedDate.IsZero() {
			finish := event.UpdatedDate
			build.FinishTime = &finish
		}
		builds = append(builds, build)
	}
	return builds
}

// normalizeState maps a vendor status state into the dashboard's build status
// vocabulary.
func normalizeState(state string) string {
	switch state {
	case "succeeded", "failed", "error":
		return types.BuildCompleted
	case "pending":
		return types.BuildInProgress
	default: // includes "notSet"
		return types.BuildNotStarted
	}
}

// normalizeResult maps a vendor status state into a completed-build result.
// Pending runs have no result yet.
func normalizeResult(state string) string {
	switch state {
	case "succeeded":
		return "succeeded"
	case "failed", "error":
		return "failed"
	default:
		return ""
	}
}
