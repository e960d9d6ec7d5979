package repository

import (
	"context"

	"github.com/spec-kit/hostel-issues/internal/domain"
)

// IssueHistoryRepository stores the audit trail of staff changes.
type IssueHistoryRepository interface {
	Create(ctx context.Context, history *domain.IssueHistory) error
	ListByIssue(ctx context.Context, issueID string) ([]domain.IssueHistory, error)
}

type issueHistoryRepository struct {
	db DB
}

// NewIssueHistoryRepository builds repository.
func NewIssueHistoryRepository(db DB) IssueHistoryRepository {
	return &issueHistoryRepository{db: db}
}

func (r *issueHistoryRepository) Create(ctx context.Context, history *domain.IssueHistory) error {
	return insertHistory(ctx, r.db, history)
}

func insertHistory(ctx context.Context, q querier, history *domain.IssueHistory) error {
	const query = `
        INSERT INTO issue_history (issue_id, changed_by, change_type, old_value, new_value)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return q.QueryRow(ctx, query,
		history.IssueID,
		history.ChangedByID,
		string(history.ChangeType),
		history.OldValue,
		history.NewValue,
	).Scan(&history.ID, &history.CreatedAt)
}

func (r *issueHistoryRepository) ListByIssue(ctx context.Context, issueID string) ([]domain.IssueHistory, error) {
	const query = `
        SELECT id, issue_id, changed_by, change_type, old_value, new_value, created_at
        FROM issue_history WHERE issue_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.db.Query(ctx, query, issueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.IssueHistory, 0)
	for rows.Next() {
		var (
			history    domain.IssueHistory
			changeType string
		)
		if err := rows.Scan(
			&history.ID,
			&history.IssueID,
			&history.ChangedByID,
			&changeType,
			&history.OldValue,
			&history.NewValue,
			&history.CreatedAt,
		); err != nil {
			return nil, err
		}
		history.ChangeType = domain.IssueChangeType(changeType)
		result = append(result, history)
	}
	return result, rows.Err()
}
