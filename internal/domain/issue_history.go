package domain

import "time"

// IssueChangeType captures what changed in a history entry.
type IssueChangeType string

const (
	ChangeTypeStatus   IssueChangeType = "STATUS_CHANGE"
	ChangeTypeAssignee IssueChangeType = "ASSIGNEE_CHANGE"
	ChangeTypeRemarks  IssueChangeType = "REMARKS_CHANGE"
)

// IssueHistory is an immutable audit trail entry.
type IssueHistory struct {
	ID          string
	IssueID     string
	ChangedByID string
	ChangeType  IssueChangeType
	OldValue    map[string]any
	NewValue    map[string]any
	CreatedAt   time.Time
}
