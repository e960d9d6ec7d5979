package dto

import (
	"time"

	"github.com/spec-kit/hostel-issues/internal/domain"
)

// CreateIssueRequest payload. Omitted location fields fall back to the
// reporter's profile.
type CreateIssueRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Priority    string  `json:"priority"`
	IsPublic    *bool   `json:"is_public"`
	Hostel      *string `json:"hostel"`
	Block       *string `json:"block"`
	Room        *string `json:"room"`
}

// UpdateIssueRequest is a staff update; absent fields are untouched.
type UpdateIssueRequest struct {
	Status     *string `json:"status"`
	AssignedTo *string `json:"assigned_to"`
	Remarks    *string `json:"remarks"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Content string `json:"content"`
}

// ReactionsResponse lists who reacted, per kind.
type ReactionsResponse struct {
	Likes       []string `json:"likes"`
	Upvotes     []string `json:"upvotes"`
	LikeCount   int      `json:"like_count"`
	UpvoteCount int      `json:"upvote_count"`
}

// IssueResponse is the full issue view.
type IssueResponse struct {
	ID            string               `json:"id"`
	Title         string               `json:"title"`
	Description   string               `json:"description"`
	Category      domain.IssueCategory `json:"category"`
	Priority      domain.IssuePriority `json:"priority"`
	Status        domain.IssueStatus   `json:"status"`
	IsPublic      bool                 `json:"is_public"`
	Hostel        *string              `json:"hostel"`
	Block         *string              `json:"block"`
	Room          *string              `json:"room"`
	CreatedBy     string               `json:"created_by"`
	CreatedByName string               `json:"created_by_name"`
	AssignedTo    *string              `json:"assigned_to"`
	Remarks       *string              `json:"remarks"`
	Reactions     ReactionsResponse    `json:"reactions"`
	Comments      []CommentResponse    `json:"comments,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
	ResolvedAt    *time.Time           `json:"resolved_at"`
}

// IssueListResponse is one page of issues.
type IssueListResponse struct {
	Issues []IssueResponse `json:"issues"`
	Total  int             `json:"total"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
	Pages  int             `json:"pages"`
}

// CommentResponse is one thread entry.
type CommentResponse struct {
	ID         string    `json:"id"`
	IssueID    string    `json:"issue_id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// ReactionToggleResponse reports the caller's reaction after a toggle.
type ReactionToggleResponse struct {
	ReactionType domain.ReactionKind `json:"reaction_type"`
	Reacted      bool                `json:"reacted"`
}

// StageResponse is one lifecycle stage on the timeline.
type StageResponse struct {
	Index           int                `json:"index"`
	Status          domain.IssueStatus `json:"status"`
	Reached         bool               `json:"reached"`
	Current         bool               `json:"current"`
	DurationSeconds *int64             `json:"duration_seconds"`
	Display         string             `json:"display,omitempty"`
}

// TimelineResponse is the staged progress of an issue.
type TimelineResponse struct {
	IssueID               string             `json:"issue_id"`
	Status                domain.IssueStatus `json:"status"`
	Stages                []StageResponse    `json:"stages"`
	ResolutionTimeSeconds *int64             `json:"resolution_time_seconds"`
	ResolutionTimeDisplay string             `json:"resolution_time_display,omitempty"`
}

// HistoryResponse is one audit trail entry.
type HistoryResponse struct {
	ID          string                 `json:"id"`
	ChangeType  domain.IssueChangeType `json:"change_type"`
	ChangedByID string                 `json:"changed_by"`
	OldValue    map[string]any         `json:"old_value"`
	NewValue    map[string]any         `json:"new_value"`
	CreatedAt   time.Time              `json:"created_at"`
}
