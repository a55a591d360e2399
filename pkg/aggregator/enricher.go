package aggregator

import (
	"context"
	"log/slog"
	"sync"

	"github.com/azdash-dev/azdash/pkg/azdo"
	"github.com/azdash-dev/azdash/pkg/types"
)

// systemCommentType marks vendor-generated comments (vote changes, ref
// updates) that do not count as review discussion.
const systemCommentType = "system"

// enrichment carries the outcome of the three concurrent enrichment calls.
// Errors are kept per call so a single failure degrades only its own fields.
type enrichment struct {
	detail     *azdo.PullRequestDetail
	threads    []types.Thread
	builds     []types.BuildResult
	threadsErr error
	buildsErr  error
	detailErr  error
}

// enrich turns one raw pull request into an enriched record. It never fails
// outward: each failed sub-call degrades its own fields to defaults, and a
// panic anywhere in the merge step degrades the whole record.
func (s *Service) enrich(ctx context.Context, project string, raw types.RawPullRequest) (pr types.EnrichedPullRequest) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Enrichment merge failed, substituting defaults", "component", "enricher",
				"repository", raw.Repository.Name, "pr", raw.PullRequestID, "panic", r)
			pr = defaultRecord(raw)
		}
	}()

	repositoryID := raw.Repository.ID

	var result enrichment
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		result.threads, result.threadsErr = s.client.Threads(ctx, project, repositoryID, raw.PullRequestID)
	}()
	go func() {
		defer wg.Done()
		result.builds, result.buildsErr = s.discoverBuilds(ctx, project, raw)
	}()
	go func() {
		defer wg.Done()
		result.detail, result.detailErr = s.client.PullRequestDetail(ctx, project, repositoryID, raw.PullRequestID)
	}()
	wg.Wait()

	return merge(raw, result)
}

// discoverBuilds finds the CI builds of one pull request. The primary path
// derives them from the PR's status events; if that call fails, fall back to
// querying builds by source branch name.
func (s *Service) discoverBuilds(ctx context.Context, project string, raw types.RawPullRequest) ([]types.BuildResult, error) {
	statuses, err := s.client.Statuses(ctx, project, raw.Repository.ID, raw.PullRequestID)
	if err == nil {
		return azdo.BuildsFromStatuses(statuses, raw.SourceRefName), nil
	}

	slog.Info("Status-derived build discovery failed, falling back to branch query",
		"component", "enricher", "repository", raw.Repository.Name, "pr", raw.PullRequestID, "error", err)
	return s.client.BuildsByBranch(ctx, project, raw.Repository.ID, raw.SourceRefName)
}

// merge combines the raw pull request with whatever enrichment succeeded.
func merge(raw types.RawPullRequest, result enrichment) types.EnrichedPullRequest {
	pr := defaultRecord(raw)

	if result.threadsErr == nil {
		pr.Threads = result.threads
		pr.CommentCount, pr.UnresolvedCommentCount = countComments(result.threads)
	}
	if result.buildsErr == nil && result.builds != nil {
		pr.Builds = result.builds
	}
	if result.detailErr == nil && result.detail != nil {
		pr.MergeStatus = result.detail.MergeStatus
		pr.IsDraft = result.detail.IsDraft
		pr.HasConflicts = result.detail.MergeStatus == types.MergeConflicts
		pr.CanMerge = result.detail.MergeStatus == types.MergeSucceeded
	}
	return pr
}

// defaultRecord is the degraded fallback: the raw pull request with empty
// enrichment fields.
func defaultRecord(raw types.RawPullRequest) types.EnrichedPullRequest {
	return types.EnrichedPullRequest{
		RawPullRequest: raw,
		Threads:        []types.Thread{},
		Builds:         []types.BuildResult{},
		MergeStatus:    types.MergeUnknown,
	}
}

// countComments returns the total number of review comments and the number of
// unresolved threads. Deleted comments and system-type comments do not count;
// a thread is unresolved iff it is not deleted and its status is exactly
// "active".
func countComments(threads []types.Thread) (comments, unresolved int) {
	for _, thread := range threads {
		for _, comment := range thread.Comments {
			if comment.IsDeleted || comment.CommentType == systemCommentType {
				continue
			}
			comments++
		}
		if !thread.IsDeleted && thread.Status == "active" {
			unresolved++
		}
	}
	return comments, unresolved
}
