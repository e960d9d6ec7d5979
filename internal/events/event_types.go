package events

import (
	"time"

	"github.com/spec-kit/hostel-issues/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIssueCreated         EventType = "issue_created"
	EventIssueStatusChanged   EventType = "issue_status_changed"
	EventIssueCommentAdded    EventType = "issue_comment_added"
	EventIssueReactionToggled EventType = "issue_reaction_toggled"
	EventIssueDeleted         EventType = "issue_deleted"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	IssueID   string    `json:"issue_id"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// IssueCreatedPayload payload.
type IssueCreatedPayload struct {
	Title    string               `json:"title"`
	Category domain.IssueCategory `json:"category"`
	Priority domain.IssuePriority `json:"priority"`
	IsPublic bool                 `json:"is_public"`
}

// IssueStatusChangedPayload payload.
type IssueStatusChangedPayload struct {
	ReporterID string             `json:"reporter_id"`
	OldStatus  domain.IssueStatus `json:"old_status"`
	NewStatus  domain.IssueStatus `json:"new_status"`
	AssignedTo *string            `json:"assigned_to,omitempty"`
	Remarks    *string            `json:"remarks,omitempty"`
}

// IssueCommentAddedPayload payload.
type IssueCommentAddedPayload struct {
	ReporterID  string `json:"reporter_id"`
	CommentID   string `json:"comment_id"`
	AuthorName  string `json:"author_name"`
	BodyPreview string `json:"body_preview"`
}

// IssueReactionToggledPayload payload.
type IssueReactionToggledPayload struct {
	Kind  domain.ReactionKind `json:"kind"`
	Added bool                `json:"added"`
}
