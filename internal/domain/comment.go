package domain

import "time"

// CommentMaxLen bounds comment content in characters.
const CommentMaxLen = 1000

// Comment is an immutable entry in an issue thread. IssueID refers to the owning issue.
type Comment struct {
	ID         string
	IssueID    string
	AuthorID   string
	AuthorName string
	Content    string
	CreatedAt  time.Time
}
