package repository

import (
	"context"

	"github.com/spec-kit/hostel-issues/internal/domain"
)

// IssueCommentRepository manages the append-only comment thread of an issue.
type IssueCommentRepository interface {
	Append(ctx context.Context, comment *domain.Comment) error
	ListByIssue(ctx context.Context, issueID string) ([]domain.Comment, error)
}

type issueCommentRepository struct {
	db DB
}

// NewIssueCommentRepository builds repository.
func NewIssueCommentRepository(db DB) IssueCommentRepository {
	return &issueCommentRepository{db: db}
}

// Append inserts the comment and bumps the issue's updated_at in one
// statement. A missing issue yields pgx.ErrNoRows.
func (r *issueCommentRepository) Append(ctx context.Context, comment *domain.Comment) error {
	const query = `
        WITH touched AS (
            UPDATE issues SET updated_at=$4 WHERE id=$1 RETURNING id
        )
        INSERT INTO issue_comments (issue_id, author_id, content, created_at)
        SELECT id, $2, $3, $4 FROM touched
        RETURNING id`
	return r.db.QueryRow(ctx, query,
		comment.IssueID,
		comment.AuthorID,
		comment.Content,
		comment.CreatedAt,
	).Scan(&comment.ID)
}

func (r *issueCommentRepository) ListByIssue(ctx context.Context, issueID string) ([]domain.Comment, error) {
	const query = `
        SELECT c.id, c.issue_id, c.author_id, u.name, c.content, c.created_at
        FROM issue_comments c JOIN users u ON u.id = c.author_id
        WHERE c.issue_id=$1 ORDER BY c.created_at ASC, c.seq ASC`
	rows, err := r.db.Query(ctx, query, issueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.Comment, 0)
	for rows.Next() {
		var comment domain.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.IssueID,
			&comment.AuthorID,
			&comment.AuthorName,
			&comment.Content,
			&comment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}
