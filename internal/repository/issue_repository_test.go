package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/hostel-issues/internal/domain"
)

var issueColumnNames = []string{
	"id", "title", "description", "category", "priority", "status", "is_public",
	"hostel", "block", "room", "created_by", "name", "assigned_to", "remarks",
	"created_at", "updated_at", "resolved_at",
}

func newMockDB(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func strPtr(s string) *string { return &s }

func issueRows(now time.Time, ids ...string) *pgxmock.Rows {
	rows := pgxmock.NewRows(issueColumnNames)
	for _, id := range ids {
		rows.AddRow(id, "Leaking tap", "Bathroom tap leaks all night", "plumbing", "medium", "reported", true,
			strPtr("North"), strPtr("B"), nil, "user-1", "Asha", nil, nil, now, now, nil)
	}
	return rows
}

func TestIssueRepository_GetByID(t *testing.T) {
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		setup   func(mock pgxmock.PgxPoolIface)
		wantErr error
		check   func(t *testing.T, issue *domain.Issue)
	}{
		{
			name: "found with reactions",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(regexp.QuoteMeta("FROM issues i JOIN users u ON u.id = i.created_by WHERE i.id = $1")).
					WithArgs("issue-1").
					WillReturnRows(issueRows(now, "issue-1"))
				mock.ExpectQuery(regexp.QuoteMeta("FROM issue_reactions WHERE issue_id IN ($1)")).
					WithArgs("issue-1").
					WillReturnRows(pgxmock.NewRows([]string{"issue_id", "kind", "user_id"}).
						AddRow("issue-1", "like", "u1").
						AddRow("issue-1", "like", "u2").
						AddRow("issue-1", "upvote", "u1"))
			},
			check: func(t *testing.T, issue *domain.Issue) {
				assert.Equal(t, "issue-1", issue.ID)
				assert.Equal(t, domain.IssueCategoryPlumbing, issue.Category)
				assert.Equal(t, domain.IssueStatusReported, issue.Status)
				assert.Equal(t, "Asha", issue.CreatedByName)
				require.NotNil(t, issue.Hostel)
				assert.Equal(t, "North", *issue.Hostel)
				assert.Nil(t, issue.Room)
				assert.Nil(t, issue.ResolvedAt)
				assert.Equal(t, 2, issue.Reactions.Count(domain.ReactionLike))
				assert.True(t, issue.Reactions.Has(domain.ReactionUpvote, "u1"))
			},
		},
		{
			name: "not found",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("FROM issues i").
					WithArgs("missing").
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: pgx.ErrNoRows,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockDB(t)
			tt.setup(mock)

			id := "issue-1"
			if tt.wantErr != nil {
				id = "missing"
			}
			issue, err := NewIssueRepository(mock).GetByID(context.Background(), id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				tt.check(t, issue)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestIssueRepository_Create(t *testing.T) {
	mock := newMockDB(t)
	now := time.Now()
	issue := &domain.Issue{
		Title:       "Broken window",
		Description: "Window latch in room 12 is broken",
		Category:    domain.IssueCategoryMaintenance,
		Priority:    domain.IssuePriorityLow,
		Status:      domain.IssueStatusReported,
		IsPublic:    true,
		CreatedBy:   "user-1",
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	mock.ExpectQuery("INSERT INTO issues").
		WithArgs("Broken window", "Window latch in room 12 is broken", "maintenance", "low", "reported", true,
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), "user-1",
			pgxmock.AnyArg(), pgxmock.AnyArg(), now, now, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("new-id"))

	require.NoError(t, NewIssueRepository(mock).Create(context.Background(), issue))
	assert.Equal(t, "new-id", issue.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssueRepository_UpdateWithLock(t *testing.T) {
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)

	t.Run("writes issue and history in one transaction", func(t *testing.T) {
		mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("WHERE i.id = $1 FOR UPDATE OF i")).
			WithArgs("issue-1").
			WillReturnRows(issueRows(now, "issue-1"))
		mock.ExpectExec("UPDATE issues SET status").
			WithArgs("resolved", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), later, "issue-1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectQuery("INSERT INTO issue_history").
			WithArgs("issue-1", "staff-1", "STATUS_CHANGE", pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow("h-1", later))
		mock.ExpectQuery("FROM issue_reactions").
			WithArgs("issue-1").
			WillReturnRows(pgxmock.NewRows([]string{"issue_id", "kind", "user_id"}))
		mock.ExpectCommit()

		issue, err := NewIssueRepository(mock).UpdateWithLock(context.Background(), "issue-1",
			func(issue *domain.Issue) ([]domain.IssueHistory, error) {
				issue.Status = domain.IssueStatusResolved
				issue.ResolvedAt = &later
				issue.UpdatedAt = later
				return []domain.IssueHistory{{
					IssueID:     issue.ID,
					ChangedByID: "staff-1",
					ChangeType:  domain.ChangeTypeStatus,
					OldValue:    map[string]any{"status": "reported"},
					NewValue:    map[string]any{"status": "resolved"},
				}}, nil
			})
		require.NoError(t, err)
		assert.Equal(t, domain.IssueStatusResolved, issue.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("mutation error rolls back without writing", func(t *testing.T) {
		mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE OF i").
			WithArgs("issue-1").
			WillReturnRows(issueRows(now, "issue-1"))
		mock.ExpectRollback()

		boom := errors.New("rejected")
		_, err := NewIssueRepository(mock).UpdateWithLock(context.Background(), "issue-1",
			func(*domain.Issue) ([]domain.IssueHistory, error) { return nil, boom })
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing issue", func(t *testing.T) {
		mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectQuery("FOR UPDATE OF i").
			WithArgs("missing").
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectRollback()

		_, err := NewIssueRepository(mock).UpdateWithLock(context.Background(), "missing",
			func(*domain.Issue) ([]domain.IssueHistory, error) { return nil, nil })
		assert.ErrorIs(t, err, pgx.ErrNoRows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestIssueRepository_ToggleReaction(t *testing.T) {
	tests := []struct {
		name      string
		deleted   int64
		wantAdded bool
	}{
		{name: "absent reaction is added", deleted: 0, wantAdded: true},
		{name: "present reaction is removed", deleted: 1, wantAdded: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockDB(t)
			mock.ExpectBegin()
			mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM issues WHERE id=$1 FOR UPDATE")).
				WithArgs("issue-1").
				WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("issue-1"))
			mock.ExpectExec("DELETE FROM issue_reactions").
				WithArgs("issue-1", "u1", "upvote").
				WillReturnResult(pgxmock.NewResult("DELETE", tt.deleted))
			if tt.wantAdded {
				mock.ExpectExec("INSERT INTO issue_reactions").
					WithArgs("issue-1", "u1", "upvote").
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			}
			mock.ExpectExec("UPDATE issues SET updated_at").
				WithArgs("issue-1").
				WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			mock.ExpectCommit()

			added, err := NewIssueRepository(mock).ToggleReaction(context.Background(), "issue-1", "u1", domain.ReactionUpvote)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAdded, added)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}

	t.Run("missing issue rolls back", func(t *testing.T) {
		mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id FROM issues").
			WithArgs("missing").
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectRollback()

		_, err := NewIssueRepository(mock).ToggleReaction(context.Background(), "missing", "u1", domain.ReactionLike)
		assert.ErrorIs(t, err, pgx.ErrNoRows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestIssueRepository_ListWithFilter(t *testing.T) {
	now := time.Now()
	mock := newMockDB(t)
	status := domain.IssueStatusReported

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM issues i")).
		WithArgs(true, "viewer-1", "reported", "%tap%", "%tap%").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY i.created_at DESC, i.id ASC LIMIT 2 OFFSET 4")).
		WithArgs(true, "viewer-1", "reported", "%tap%", "%tap%").
		WillReturnRows(issueRows(now, "a", "b"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM issue_reactions WHERE issue_id IN ($1,$2)")).
		WithArgs("a", "b").
		WillReturnRows(pgxmock.NewRows([]string{"issue_id", "kind", "user_id"}).AddRow("b", "like", "u9"))

	issues, total, err := NewIssueRepository(mock).ListWithFilter(context.Background(), IssueFilter{
		ViewerID: "viewer-1",
		Status:   &status,
		Search:   " tap ",
		Limit:    2,
		Offset:   4,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	require.Len(t, issues, 2)
	assert.Equal(t, 0, issues[0].Reactions.Count(domain.ReactionLike))
	assert.Equal(t, 1, issues[1].Reactions.Count(domain.ReactionLike))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssueRepository_ListWithFilter_SearchMatchesWildcardsLiterally(t *testing.T) {
	mock := newMockDB(t)
	pattern := `%100\% hot\_water\\%`

	mock.ExpectQuery(regexp.QuoteMeta(`i.title ILIKE $1 ESCAPE '\' OR i.description ILIKE $2 ESCAPE '\'`)).
		WithArgs(pattern, pattern).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("LIMIT 20 OFFSET 0")).
		WithArgs(pattern, pattern).
		WillReturnRows(issueRows(time.Now()))

	issues, total, err := NewIssueRepository(mock).ListWithFilter(context.Background(), IssueFilter{
		IncludePrivate: true,
		Search:         `100% hot_water\`,
	})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, issues)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssueRepository_ListCorpus(t *testing.T) {
	now := time.Now()

	t.Run("resident scope", func(t *testing.T) {
		mock := newMockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta("WHERE i.status <> $1 AND (i.is_public = $2 OR i.created_by = $3) ORDER BY i.created_at DESC, i.id ASC LIMIT 100")).
			WithArgs("closed", true, "viewer-1").
			WillReturnRows(issueRows(now, "a"))

		issues, err := NewIssueRepository(mock).ListCorpus(context.Background(), CorpusScope{ViewerID: "viewer-1", Limit: 100})
		require.NoError(t, err)
		assert.Len(t, issues, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("staff scope sees private issues", func(t *testing.T) {
		mock := newMockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta("WHERE i.status <> $1 ORDER BY")).
			WithArgs("closed").
			WillReturnRows(issueRows(now))

		issues, err := NewIssueRepository(mock).ListCorpus(context.Background(), CorpusScope{IncludePrivate: true})
		require.NoError(t, err)
		assert.NotNil(t, issues)
		assert.Empty(t, issues)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestIssueRepository_Delete(t *testing.T) {
	mock := newMockDB(t)
	mock.ExpectExec("DELETE FROM issues").
		WithArgs("gone").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := NewIssueRepository(mock).Delete(context.Background(), "gone")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
