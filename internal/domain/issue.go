package domain

import "time"

// IssueStatus enumerates lifecycle states for issues, in lifecycle order.
type IssueStatus string

const (
	IssueStatusReported   IssueStatus = "reported"
	IssueStatusAssigned   IssueStatus = "assigned"
	IssueStatusInProgress IssueStatus = "in_progress"
	IssueStatusResolved   IssueStatus = "resolved"
	IssueStatusClosed     IssueStatus = "closed"
)

// IssueStatuses lists every status in lifecycle order.
var IssueStatuses = []IssueStatus{
	IssueStatusReported,
	IssueStatusAssigned,
	IssueStatusInProgress,
	IssueStatusResolved,
	IssueStatusClosed,
}

// Index returns the position of the status in the lifecycle, or -1 when unknown.
func (s IssueStatus) Index() int {
	for i, candidate := range IssueStatuses {
		if candidate == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s is a known status.
func (s IssueStatus) Valid() bool {
	return s.Index() >= 0
}

// Terminal reports whether entering s stamps the resolution time.
func (s IssueStatus) Terminal() bool {
	return s == IssueStatusResolved || s == IssueStatusClosed
}

// IssuePriority enumerates urgency.
type IssuePriority string

const (
	IssuePriorityLow    IssuePriority = "low"
	IssuePriorityMedium IssuePriority = "medium"
	IssuePriorityHigh   IssuePriority = "high"
	IssuePriorityUrgent IssuePriority = "urgent"
)

// Valid reports whether p is a known priority.
func (p IssuePriority) Valid() bool {
	switch p {
	case IssuePriorityLow, IssuePriorityMedium, IssuePriorityHigh, IssuePriorityUrgent:
		return true
	}
	return false
}

// IssueCategory groups issues by trade.
type IssueCategory string

const (
	IssueCategoryPlumbing    IssueCategory = "plumbing"
	IssueCategoryElectrical  IssueCategory = "electrical"
	IssueCategoryCleaning    IssueCategory = "cleaning"
	IssueCategoryMaintenance IssueCategory = "maintenance"
	IssueCategorySecurity    IssueCategory = "security"
	IssueCategoryInternet    IssueCategory = "internet"
	IssueCategoryOther       IssueCategory = "other"
)

// Valid reports whether c is a known category.
func (c IssueCategory) Valid() bool {
	switch c {
	case IssueCategoryPlumbing, IssueCategoryElectrical, IssueCategoryCleaning,
		IssueCategoryMaintenance, IssueCategorySecurity, IssueCategoryInternet, IssueCategoryOther:
		return true
	}
	return false
}

// Text length bounds, counted in characters after trimming.
const (
	TitleMinLen       = 5
	TitleMaxLen       = 200
	DescriptionMinLen = 10
	DescriptionMaxLen = 2000
)

// Issue is the aggregate root for a reported problem. Comments and reactions
// are only reachable through their issue.
type Issue struct {
	ID            string
	Title         string
	Description   string
	Category      IssueCategory
	Priority      IssuePriority
	Status        IssueStatus
	IsPublic      bool
	Hostel        *string
	Block         *string
	Room          *string
	CreatedBy     string
	CreatedByName string
	AssignedTo    *string
	Remarks       *string
	Comments      []Comment
	Reactions     Reactions
	CreatedAt     time.Time
	UpdatedAt     time.Time
	// ResolvedAt is set the first time the issue enters resolved or closed.
	ResolvedAt *time.Time
}

// VisibleTo reports whether the viewer may read the issue.
func (i *Issue) VisibleTo(viewerID string, staff bool) bool {
	return staff || i.IsPublic || i.CreatedBy == viewerID
}
