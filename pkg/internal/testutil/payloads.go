package testutil

import (
	"time"

	"github.com/azdash-dev/azdash/pkg/types"
)

// Envelope wraps values in the vendor's {count, value} collection shape.
func Envelope(values ...any) map[string]any {
	return map[string]any{"count": len(values), "value": values}
}

// RawPR builds a minimal active pull request record.
func RawPR(repoID, repoName string, id int, title, author string) types.RawPullRequest {
	pr := types.RawPullRequest{
		PullRequestID: id,
		Title:         title,
		Status:        "active",
		CreationDate:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		SourceRefName: "refs/heads/feature/" + repoName,
		TargetRefName: "refs/heads/main",
		CreatedBy: types.Identity{
			DisplayName: author,
			UniqueName:  author + "@example.com",
		},
	}
	pr.Repository.ID = repoID
	pr.Repository.Name = repoName
	return pr
}

// ThreadWith builds a review thread with the given status and comments.
func ThreadWith(id int, status string, deleted bool, comments ...types.Comment) types.Thread {
	return types.Thread{ID: id, Status: status, IsDeleted: deleted, Comments: comments}
}

// TextComment builds an ordinary review comment.
func TextComment(id int, content string) types.Comment {
	return types.Comment{ID: id, Content: content, CommentType: "text"}
}

// SystemComment builds a vendor-generated comment.
func SystemComment(id int) types.Comment {
	return types.Comment{ID: id, Content: "Vote updated", CommentType: "system"}
}

// CIStatus builds a continuous-integration status event.
func CIStatus(id int, state, pipeline string) types.StatusEvent {
	event := types.StatusEvent{
		ID:           id,
		State:        state,
		Description:  pipeline + " #" + state,
		CreationDate: time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC),
		UpdatedDate:  time.Date(2026, 3, 1, 12, 45, 0, 0, time.UTC),
	}
	event.Context.Name = pipeline
	event.Context.Genre = "continuous-integration"
	return event
}
