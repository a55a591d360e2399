// Package types contains shared data structures used across the dashboard system.
//
//nolint:revive // "types" is a standard Go package name for shared data structures
package types

import "time"

// ProjectSelector identifies what to fetch: a project, optionally narrowed to
// one repository. A list of these is the unit of configuration.
type ProjectSelector struct {
	Name       string `json:"name" toml:"name"`
	Repository string `json:"repository,omitempty" toml:"repository"`
}

// Identity is an Azure DevOps user identity as it appears on the wire.
type Identity struct {
	DisplayName string `json:"displayName"`
	UniqueName  string `json:"uniqueName"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// Repository is the subset of the vendor repository record the dashboard needs.
type Repository struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	URL     string `json:"url,omitempty"`
	Project struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"project"`
}

// RawPullRequest is the vendor wire representation of an active pull request.
// Identity is (repository name, PullRequestID); ids are unique only within a
// repository.
type RawPullRequest struct {
	PullRequestID int        `json:"pullRequestId"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Status        string     `json:"status"`
	CreatedBy     Identity   `json:"createdBy"`
	CreationDate  time.Time  `json:"creationDate"`
	SourceRefName string     `json:"sourceRefName"`
	TargetRefName string     `json:"targetRefName"`
	Repository    Repository `json:"repository"`
	IsDraft       bool       `json:"isDraft"`
}

// Comment is one entry in a review thread.
type Comment struct {
	ID            int       `json:"id"`
	Content       string    `json:"content"`
	CommentType   string    `json:"commentType"`
	Author        Identity  `json:"author"`
	PublishedDate time.Time `json:"publishedDate"`
	IsDeleted     bool      `json:"isDeleted"`
}

// Thread is a review discussion attached to a pull request. A thread counts
// toward "unresolved" iff it is not deleted and its status is "active".
type Thread struct {
	ID        int       `json:"id"`
	Status    string    `json:"status"`
	Comments  []Comment `json:"comments"`
	IsDeleted bool      `json:"isDeleted"`
}

// Normalized build status vocabulary. Vendor values are mapped into these.
const (
	BuildNotStarted = "notStarted"
	BuildInProgress = "inProgress"
	BuildCompleted  = "completed"
	BuildSkipped    = "skipped"
)

// BuildDefinition identifies the pipeline a build ran under.
type BuildDefinition struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// BuildResult is one CI execution tied to a branch or pull request.
// Result is only meaningful when Status is BuildCompleted.
type BuildResult struct {
	ID           int             `json:"id"`
	BuildNumber  string          `json:"buildNumber"`
	Status       string          `json:"status"`
	Result       string          `json:"result,omitempty"`
	Definition   BuildDefinition `json:"definition"`
	StartTime    *time.Time      `json:"startTime,omitempty"`
	FinishTime   *time.Time      `json:"finishTime,omitempty"`
	SourceBranch string          `json:"sourceBranch"`
}

// StatusEvent is a pull request status record, used to derive builds when the
// primary build-list call is unavailable.
type StatusEvent struct {
	ID           int       `json:"id"`
	State        string    `json:"state"`
	Description  string    `json:"description"`
	CreationDate time.Time `json:"creationDate"`
	UpdatedDate  time.Time `json:"updatedDate"`
	Context      struct {
		Name  string `json:"name"`
		Genre string `json:"genre"`
	} `json:"context"`
	TargetURL string `json:"targetUrl,omitempty"`
}

// TimelineRecord is one stage/job/task entry of a build timeline.
type TimelineRecord struct {
	ID         string     `json:"id"`
	ParentID   string     `json:"parentId,omitempty"`
	Type       string     `json:"type"`
	Name       string     `json:"name"`
	State      string     `json:"state"`
	Result     string     `json:"result,omitempty"`
	StartTime  *time.Time `json:"startTime,omitempty"`
	FinishTime *time.Time `json:"finishTime,omitempty"`
	Order      int        `json:"order"`
}

// Timeline is the full stage/job/task breakdown of one build.
type Timeline struct {
	ID      string           `json:"id"`
	Records []TimelineRecord `json:"records"`
}

// Merge status values the dashboard derives flags from.
const (
	MergeSucceeded = "succeeded"
	MergeConflicts = "conflicts"
	MergeUnknown   = "unknown"
)

// EnrichedPullRequest is a RawPullRequest plus the three enrichment results.
// It is constructed once per aggregation cycle and never mutated afterward
// except to attach ProjectName, the join key back to configuration.
type EnrichedPullRequest struct {
	RawPullRequest

	Threads                []Thread      `json:"threads"`
	CommentCount           int           `json:"commentCount"`
	UnresolvedCommentCount int           `json:"unresolvedCommentCount"`
	MergeStatus            string        `json:"mergeStatus"`
	HasConflicts           bool          `json:"hasConflicts"`
	CanMerge               bool          `json:"canMerge"`
	Builds                 []BuildResult `json:"builds"`
	ProjectName            string        `json:"projectName"`
}

// PullRequestSuggestion is a vendor "create pull request" suggestion, keyed by
// source repository and branch pair. Not persisted.
type PullRequestSuggestion struct {
	SuggestionType string `json:"type"`
	RepositoryID   string `json:"repositoryId,omitempty"`
	RepositoryName string `json:"repositoryName,omitempty"`
	Properties     struct {
		SourceBranch string `json:"sourceBranch"`
		TargetBranch string `json:"targetBranch"`
		PushDate     string `json:"pushDate,omitempty"`
	} `json:"properties"`
}
