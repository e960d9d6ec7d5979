package service

import (
	"context"
	"sync"

	"github.com/spec-kit/hostel-issues/internal/domain"
	"github.com/spec-kit/hostel-issues/internal/events"
	"github.com/spec-kit/hostel-issues/internal/repository"
)

type issueRepoMock struct {
	CreateFunc         func(ctx context.Context, issue *domain.Issue) error
	GetByIDFunc        func(ctx context.Context, id string) (*domain.Issue, error)
	UpdateWithLockFunc func(ctx context.Context, id string, mutate repository.IssueMutation) (*domain.Issue, error)
	DeleteFunc         func(ctx context.Context, id string) error
	ListWithFilterFunc func(ctx context.Context, filter repository.IssueFilter) ([]domain.Issue, int, error)
	ListCorpusFunc     func(ctx context.Context, scope repository.CorpusScope) ([]domain.Issue, error)
	ToggleReactionFunc func(ctx context.Context, issueID, userID string, kind domain.ReactionKind) (bool, error)
}

func (m *issueRepoMock) Create(ctx context.Context, issue *domain.Issue) error {
	if m.CreateFunc == nil {
		panic("issueRepoMock.Create called unexpectedly")
	}
	return m.CreateFunc(ctx, issue)
}

func (m *issueRepoMock) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	if m.GetByIDFunc == nil {
		panic("issueRepoMock.GetByID called unexpectedly")
	}
	return m.GetByIDFunc(ctx, id)
}

func (m *issueRepoMock) UpdateWithLock(ctx context.Context, id string, mutate repository.IssueMutation) (*domain.Issue, error) {
	if m.UpdateWithLockFunc == nil {
		panic("issueRepoMock.UpdateWithLock called unexpectedly")
	}
	return m.UpdateWithLockFunc(ctx, id, mutate)
}

func (m *issueRepoMock) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc == nil {
		panic("issueRepoMock.Delete called unexpectedly")
	}
	return m.DeleteFunc(ctx, id)
}

func (m *issueRepoMock) ListWithFilter(ctx context.Context, filter repository.IssueFilter) ([]domain.Issue, int, error) {
	if m.ListWithFilterFunc == nil {
		panic("issueRepoMock.ListWithFilter called unexpectedly")
	}
	return m.ListWithFilterFunc(ctx, filter)
}

func (m *issueRepoMock) ListCorpus(ctx context.Context, scope repository.CorpusScope) ([]domain.Issue, error) {
	if m.ListCorpusFunc == nil {
		panic("issueRepoMock.ListCorpus called unexpectedly")
	}
	return m.ListCorpusFunc(ctx, scope)
}

func (m *issueRepoMock) ToggleReaction(ctx context.Context, issueID, userID string, kind domain.ReactionKind) (bool, error) {
	if m.ToggleReactionFunc == nil {
		panic("issueRepoMock.ToggleReaction called unexpectedly")
	}
	return m.ToggleReactionFunc(ctx, issueID, userID, kind)
}

type commentRepoMock struct {
	AppendFunc      func(ctx context.Context, comment *domain.Comment) error
	ListByIssueFunc func(ctx context.Context, issueID string) ([]domain.Comment, error)
}

func (m *commentRepoMock) Append(ctx context.Context, comment *domain.Comment) error {
	if m.AppendFunc == nil {
		panic("commentRepoMock.Append called unexpectedly")
	}
	return m.AppendFunc(ctx, comment)
}

func (m *commentRepoMock) ListByIssue(ctx context.Context, issueID string) ([]domain.Comment, error) {
	if m.ListByIssueFunc == nil {
		panic("commentRepoMock.ListByIssue called unexpectedly")
	}
	return m.ListByIssueFunc(ctx, issueID)
}

type historyRepoMock struct {
	CreateFunc      func(ctx context.Context, history *domain.IssueHistory) error
	ListByIssueFunc func(ctx context.Context, issueID string) ([]domain.IssueHistory, error)
}

func (m *historyRepoMock) Create(ctx context.Context, history *domain.IssueHistory) error {
	if m.CreateFunc == nil {
		panic("historyRepoMock.Create called unexpectedly")
	}
	return m.CreateFunc(ctx, history)
}

func (m *historyRepoMock) ListByIssue(ctx context.Context, issueID string) ([]domain.IssueHistory, error) {
	if m.ListByIssueFunc == nil {
		panic("historyRepoMock.ListByIssue called unexpectedly")
	}
	return m.ListByIssueFunc(ctx, issueID)
}

type userRepoMock struct {
	CreateFunc     func(ctx context.Context, user *domain.User) error
	GetByIDFunc    func(ctx context.Context, id string) (*domain.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
}

func (m *userRepoMock) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc == nil {
		panic("userRepoMock.Create called unexpectedly")
	}
	return m.CreateFunc(ctx, user)
}

func (m *userRepoMock) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.GetByIDFunc == nil {
		panic("userRepoMock.GetByID called unexpectedly")
	}
	return m.GetByIDFunc(ctx, id)
}

func (m *userRepoMock) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFunc == nil {
		panic("userRepoMock.GetByEmail called unexpectedly")
	}
	return m.GetByEmailFunc(ctx, email)
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, 0, len(d.events))
	for _, e := range d.events {
		out = append(out, e.Type)
	}
	return out
}
