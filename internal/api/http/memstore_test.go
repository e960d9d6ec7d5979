package http

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/hostel-issues/internal/domain"
	"github.com/spec-kit/hostel-issues/internal/repository"
)

// In-memory stand-ins for the Postgres repositories.

type memIssues struct {
	mu       sync.Mutex
	issues   map[string]*domain.Issue
	comments *memComments
	history  *memHistory
}

func (m *memIssues) Create(_ context.Context, issue *domain.Issue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	issue.ID = uuid.NewString()
	stored := *issue
	m.issues[issue.ID] = &stored
	return nil
}

func (m *memIssues) GetByID(_ context.Context, id string) (*domain.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	issue, ok := m.issues[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := *issue
	return &out, nil
}

func (m *memIssues) UpdateWithLock(ctx context.Context, id string, mutate repository.IssueMutation) (*domain.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	issue, ok := m.issues[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	working := *issue
	entries, err := mutate(&working)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if err := m.history.Create(ctx, &entries[i]); err != nil {
			return nil, err
		}
	}
	*issue = working
	out := working
	return &out, nil
}

func (m *memIssues) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.issues[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.issues, id)
	return nil
}

func (m *memIssues) visible(scopeViewer string, includePrivate bool) []domain.Issue {
	out := make([]domain.Issue, 0, len(m.issues))
	for _, issue := range m.issues {
		if issue.VisibleTo(scopeViewer, includePrivate) {
			out = append(out, *issue)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memIssues) ListWithFilter(_ context.Context, filter repository.IssueFilter) ([]domain.Issue, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []domain.Issue
	for _, issue := range m.visible(filter.ViewerID, filter.IncludePrivate) {
		if filter.Status != nil && issue.Status != *filter.Status {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(issue.Title+" "+issue.Description), strings.ToLower(filter.Search)) {
			continue
		}
		matched = append(matched, issue)
	}
	total := len(matched)
	if filter.Offset >= total {
		return []domain.Issue{}, total, nil
	}
	end := filter.Offset + filter.Limit
	if end > total {
		end = total
	}
	return matched[filter.Offset:end], total, nil
}

func (m *memIssues) ListCorpus(_ context.Context, scope repository.CorpusScope) ([]domain.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Issue
	for _, issue := range m.visible(scope.ViewerID, scope.IncludePrivate) {
		if issue.Status != domain.IssueStatusClosed {
			out = append(out, issue)
		}
	}
	return out, nil
}

func (m *memIssues) ToggleReaction(_ context.Context, issueID, userID string, kind domain.ReactionKind) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	issue, ok := m.issues[issueID]
	if !ok {
		return false, pgx.ErrNoRows
	}
	return issue.Reactions.Toggle(kind, userID), nil
}

type memComments struct {
	mu       sync.Mutex
	comments []domain.Comment
}

func (m *memComments) Append(_ context.Context, comment *domain.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	comment.ID = uuid.NewString()
	m.comments = append(m.comments, *comment)
	return nil
}

func (m *memComments) ListByIssue(_ context.Context, issueID string) ([]domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Comment{}
	for _, c := range m.comments {
		if c.IssueID == issueID {
			out = append(out, c)
		}
	}
	return out, nil
}

type memHistory struct {
	mu      sync.Mutex
	entries []domain.IssueHistory
}

func (m *memHistory) Create(_ context.Context, h *domain.IssueHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h.ID = uuid.NewString()
	m.entries = append(m.entries, *h)
	return nil
}

func (m *memHistory) ListByIssue(_ context.Context, issueID string) ([]domain.IssueHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.IssueHistory{}
	for _, h := range m.entries {
		if h.IssueID == issueID {
			out = append(out, h)
		}
	}
	return out, nil
}

type memUsers struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func (m *memUsers) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user.ID = uuid.NewString()
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := *user
	return &out, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if strings.EqualFold(user.Email, email) {
			out := *user
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}
