package repository

import (
	"context"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/hostel-issues/internal/domain"
)

// likeEscaper makes user search text match literally inside an ILIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// IssueFilter captures list parameters. Residents only see public issues and their own.
type IssueFilter struct {
	ViewerID       string
	IncludePrivate bool
	Status         *domain.IssueStatus
	Category       *domain.IssueCategory
	Priority       *domain.IssuePriority
	Search         string
	Limit          int
	Offset         int
}

// CorpusScope selects the open issues a duplicate check compares against.
type CorpusScope struct {
	ViewerID       string
	IncludePrivate bool
	Limit          int
}

// IssueMutation changes a locked issue and returns the history entries to record with it.
type IssueMutation func(issue *domain.Issue) ([]domain.IssueHistory, error)

// IssueRepository encapsulates issue persistence.
type IssueRepository interface {
	Create(ctx context.Context, issue *domain.Issue) error
	GetByID(ctx context.Context, id string) (*domain.Issue, error)
	UpdateWithLock(ctx context.Context, id string, mutate IssueMutation) (*domain.Issue, error)
	Delete(ctx context.Context, id string) error
	ListWithFilter(ctx context.Context, filter IssueFilter) ([]domain.Issue, int, error)
	ListCorpus(ctx context.Context, scope CorpusScope) ([]domain.Issue, error)
	ToggleReaction(ctx context.Context, issueID, userID string, kind domain.ReactionKind) (bool, error)
}

type issueRepository struct {
	db DB
}

// NewIssueRepository instantiates repository.
func NewIssueRepository(db DB) IssueRepository {
	return &issueRepository{db: db}
}

var issueColumns = []string{
	"i.id", "i.title", "i.description", "i.category", "i.priority", "i.status", "i.is_public",
	"i.hostel", "i.block", "i.room", "i.created_by", "u.name", "i.assigned_to", "i.remarks",
	"i.created_at", "i.updated_at", "i.resolved_at",
}

func selectIssues(columns ...string) squirrel.SelectBuilder {
	return psql.Select(columns...).
		From("issues i").
		Join("users u ON u.id = i.created_by")
}

func visibility(viewerID string, includePrivate bool) squirrel.Sqlizer {
	if includePrivate {
		return nil
	}
	return squirrel.Or{
		squirrel.Eq{"i.is_public": true},
		squirrel.Eq{"i.created_by": viewerID},
	}
}

func (r *issueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	const query = `
        INSERT INTO issues (title, description, category, priority, status, is_public, hostel, block, room,
            created_by, assigned_to, remarks, created_at, updated_at, resolved_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
        RETURNING id`
	return r.db.QueryRow(ctx, query,
		issue.Title,
		issue.Description,
		string(issue.Category),
		string(issue.Priority),
		string(issue.Status),
		issue.IsPublic,
		issue.Hostel,
		issue.Block,
		issue.Room,
		issue.CreatedBy,
		issue.AssignedTo,
		issue.Remarks,
		issue.CreatedAt,
		issue.UpdatedAt,
		issue.ResolvedAt,
	).Scan(&issue.ID)
}

func (r *issueRepository) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	query, args, err := selectIssues(issueColumns...).Where(squirrel.Eq{"i.id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	issue, err := scanIssue(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}
	if err := r.attachReactions(ctx, r.db, []*domain.Issue{issue}); err != nil {
		return nil, err
	}
	return issue, nil
}

// UpdateWithLock loads the issue under a row lock, applies mutate and writes
// the result together with any history entries in one transaction.
func (r *issueRepository) UpdateWithLock(ctx context.Context, id string, mutate IssueMutation) (*domain.Issue, error) {
	var updated *domain.Issue
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		query, args, err := selectIssues(issueColumns...).
			Where(squirrel.Eq{"i.id": id}).
			Suffix("FOR UPDATE OF i").
			ToSql()
		if err != nil {
			return err
		}
		issue, err := scanIssue(tx.QueryRow(ctx, query, args...))
		if err != nil {
			return err
		}

		entries, err := mutate(issue)
		if err != nil {
			return err
		}

		const update = `
            UPDATE issues SET status=$1, assigned_to=$2, remarks=$3, resolved_at=$4, updated_at=$5
            WHERE id=$6`
		if _, err := tx.Exec(ctx, update,
			string(issue.Status),
			issue.AssignedTo,
			issue.Remarks,
			issue.ResolvedAt,
			issue.UpdatedAt,
			issue.ID,
		); err != nil {
			return err
		}

		for i := range entries {
			if err := insertHistory(ctx, tx, &entries[i]); err != nil {
				return err
			}
		}
		if err := r.attachReactions(ctx, tx, []*domain.Issue{issue}); err != nil {
			return err
		}
		updated = issue
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *issueRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM issues WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *issueRepository) ListWithFilter(ctx context.Context, filter IssueFilter) ([]domain.Issue, int, error) {
	where := squirrel.And{}
	if v := visibility(filter.ViewerID, filter.IncludePrivate); v != nil {
		where = append(where, v)
	}
	if filter.Status != nil {
		where = append(where, squirrel.Eq{"i.status": string(*filter.Status)})
	}
	if filter.Category != nil {
		where = append(where, squirrel.Eq{"i.category": string(*filter.Category)})
	}
	if filter.Priority != nil {
		where = append(where, squirrel.Eq{"i.priority": string(*filter.Priority)})
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		pattern := "%" + likeEscaper.Replace(term) + "%"
		where = append(where, squirrel.Or{
			squirrel.Expr(`i.title ILIKE ? ESCAPE '\'`, pattern),
			squirrel.Expr(`i.description ILIKE ? ESCAPE '\'`, pattern),
		})
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	countQuery := selectIssues("COUNT(*)")
	listQuery := selectIssues(issueColumns...).
		OrderBy("i.created_at DESC", "i.id ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset))
	if len(where) > 0 {
		countQuery = countQuery.Where(where)
		listQuery = listQuery.Where(where)
	}

	sql, args, err := countQuery.ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sql, args, err = listQuery.ToSql()
	if err != nil {
		return nil, 0, err
	}
	issues, err := r.list(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}

	ptrs := make([]*domain.Issue, len(issues))
	for i := range issues {
		ptrs[i] = &issues[i]
	}
	if err := r.attachReactions(ctx, r.db, ptrs); err != nil {
		return nil, 0, err
	}
	return issues, total, nil
}

// ListCorpus returns open issues visible to the scope, newest first.
func (r *issueRepository) ListCorpus(ctx context.Context, scope CorpusScope) ([]domain.Issue, error) {
	query := selectIssues(issueColumns...).
		Where(squirrel.NotEq{"i.status": string(domain.IssueStatusClosed)}).
		OrderBy("i.created_at DESC", "i.id ASC")
	if v := visibility(scope.ViewerID, scope.IncludePrivate); v != nil {
		query = query.Where(v)
	}
	if scope.Limit > 0 {
		query = query.Limit(uint64(scope.Limit))
	}
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}
	return r.list(ctx, sql, args...)
}

// ToggleReaction flips the user's reaction under the issue row lock and
// reports whether the reaction is now present.
func (r *issueRepository) ToggleReaction(ctx context.Context, issueID, userID string, kind domain.ReactionKind) (bool, error) {
	var added bool
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		var locked string
		if err := tx.QueryRow(ctx, `SELECT id FROM issues WHERE id=$1 FOR UPDATE`, issueID).Scan(&locked); err != nil {
			return err
		}

		cmd, err := tx.Exec(ctx,
			`DELETE FROM issue_reactions WHERE issue_id=$1 AND user_id=$2 AND kind=$3`,
			issueID, userID, string(kind))
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			if _, err := tx.Exec(ctx,
				`INSERT INTO issue_reactions (issue_id, user_id, kind) VALUES ($1,$2,$3)`,
				issueID, userID, string(kind)); err != nil {
				return err
			}
			added = true
		}

		_, err = tx.Exec(ctx, `UPDATE issues SET updated_at=NOW() WHERE id=$1`, issueID)
		return err
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

func (r *issueRepository) list(ctx context.Context, sql string, args ...any) ([]domain.Issue, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.Issue, 0)
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *issue)
	}
	return result, rows.Err()
}

func (r *issueRepository) attachReactions(ctx context.Context, q querier, issues []*domain.Issue) error {
	if len(issues) == 0 {
		return nil
	}
	byID := make(map[string]*domain.Issue, len(issues))
	ids := make([]string, 0, len(issues))
	for _, issue := range issues {
		issue.Reactions = domain.Reactions{}
		byID[issue.ID] = issue
		ids = append(ids, issue.ID)
	}

	sql, args, err := psql.Select("issue_id", "kind", "user_id").
		From("issue_reactions").
		Where(squirrel.Eq{"issue_id": ids}).
		OrderBy("created_at ASC", "user_id ASC").
		ToSql()
	if err != nil {
		return err
	}
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var issueID, kind, userID string
		if err := rows.Scan(&issueID, &kind, &userID); err != nil {
			return err
		}
		if issue, ok := byID[issueID]; ok {
			k := domain.ReactionKind(kind)
			issue.Reactions[k] = append(issue.Reactions[k], userID)
		}
	}
	return rows.Err()
}

func scanIssue(row pgx.Row) (*domain.Issue, error) {
	var (
		issue                      domain.Issue
		category, priority, status string
	)
	if err := row.Scan(
		&issue.ID,
		&issue.Title,
		&issue.Description,
		&category,
		&priority,
		&status,
		&issue.IsPublic,
		&issue.Hostel,
		&issue.Block,
		&issue.Room,
		&issue.CreatedBy,
		&issue.CreatedByName,
		&issue.AssignedTo,
		&issue.Remarks,
		&issue.CreatedAt,
		&issue.UpdatedAt,
		&issue.ResolvedAt,
	); err != nil {
		return nil, err
	}
	issue.Category = domain.IssueCategory(category)
	issue.Priority = domain.IssuePriority(priority)
	issue.Status = domain.IssueStatus(status)
	return &issue, nil
}
