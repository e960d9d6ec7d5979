package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/hostel-issues/internal/domain"
	"github.com/spec-kit/hostel-issues/internal/events"
	"github.com/spec-kit/hostel-issues/internal/lifecycle"
	"github.com/spec-kit/hostel-issues/internal/repository"
	apperrors "github.com/spec-kit/hostel-issues/pkg/util/errorutil"
)

// Actor is the authenticated caller as seen by the services.
type Actor struct {
	ID   string
	Name string
	Role domain.Role
}

// IsStaff reports whether the actor may manage issues.
func (a Actor) IsStaff() bool {
	return a.Role == domain.RoleStaff
}

// IssueService coordinates the issue lifecycle, reactions and comments.
type IssueService struct {
	issues     repository.IssueRepository
	comments   repository.IssueCommentRepository
	history    repository.IssueHistoryRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// IssueDependencies bundles collaborators for the issue service.
type IssueDependencies struct {
	IssueRepo   repository.IssueRepository
	CommentRepo repository.IssueCommentRepository
	HistoryRepo repository.IssueHistoryRepository
	UserRepo    repository.UserRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Clock       func() time.Time
}

// CreateIssueInput describes issue creation payload. Omitted location
// fields default to the reporter's profile.
type CreateIssueInput struct {
	Title       string
	Description string
	Category    string
	Priority    string
	IsPublic    *bool
	Hostel      *string
	Block       *string
	Room        *string
}

// ListIssuesInput describes list filters as received at the boundary.
type ListIssuesInput struct {
	Status   string
	Category string
	Priority string
	Search   string
	Page     int
	Limit    int
}

// IssuePage is one page of issues.
type IssuePage struct {
	Issues []domain.Issue
	Total  int
	Page   int
	Limit  int
}

// UpdateIssueInput carries a staff update; nil fields are left untouched.
type UpdateIssueInput struct {
	Status     *string
	AssignedTo *string
	Remarks    *string
}

// IssueTimeline is the staged view of an issue's progress.
type IssueTimeline struct {
	Issue          *domain.Issue
	Stages         []lifecycle.Stage
	ResolutionTime *time.Duration
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
	previewLen      = 80
)

// NewIssueService constructs the service.
func NewIssueService(deps IssueDependencies) *IssueService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &IssueService{
		issues:     deps.IssueRepo,
		comments:   deps.CommentRepo,
		history:    deps.HistoryRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        clock,
	}
}

// CreateIssue validates the report and stores it in the reported stage.
func (s *IssueService) CreateIssue(ctx context.Context, actor Actor, input CreateIssueInput) (*domain.Issue, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if err := checkLength("title", title, domain.TitleMinLen, domain.TitleMaxLen); err != nil {
		return nil, err
	}
	if err := checkLength("description", description, domain.DescriptionMinLen, domain.DescriptionMaxLen); err != nil {
		return nil, err
	}
	category, err := parseCategory(input.Category)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperrors.NewInvalidArgument("category is required", map[string]any{"field": "category"})
	}
	priority := domain.IssuePriorityMedium
	if p, err := parsePriority(input.Priority); err != nil {
		return nil, err
	} else if p != nil {
		priority = *p
	}
	isPublic := true
	if input.IsPublic != nil {
		isPublic = *input.IsPublic
	}

	issue := &domain.Issue{
		Title:         title,
		Description:   description,
		Category:      *category,
		Priority:      priority,
		IsPublic:      isPublic,
		Hostel:        trimmedOrNil(input.Hostel),
		Block:         trimmedOrNil(input.Block),
		Room:          trimmedOrNil(input.Room),
		CreatedBy:     actor.ID,
		CreatedByName: actor.Name,
		Reactions:     domain.Reactions{},
		Comments:      []domain.Comment{},
	}
	if err := s.applyProfileLocation(ctx, actor, issue); err != nil {
		return nil, err
	}
	lifecycle.Start(issue, s.now())

	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, storeError("issue", err)
	}
	s.logger.Info("issue created", zap.String("issue_id", issue.ID), zap.String("actor_id", actor.ID))
	s.publishEvent(ctx, actor, events.Event{
		Type:    events.EventIssueCreated,
		IssueID: issue.ID,
		Payload: events.IssueCreatedPayload{
			Title:    issue.Title,
			Category: issue.Category,
			Priority: issue.Priority,
			IsPublic: issue.IsPublic,
		},
	})
	return issue, nil
}

func (s *IssueService) applyProfileLocation(ctx context.Context, actor Actor, issue *domain.Issue) error {
	if issue.Hostel != nil && issue.Block != nil && issue.Room != nil {
		return nil
	}
	if s.users == nil {
		return nil
	}
	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"id": actor.ID})
		}
		return storeError("user", err)
	}
	if issue.Hostel == nil {
		issue.Hostel = user.Hostel
	}
	if issue.Block == nil {
		issue.Block = user.Block
	}
	if issue.Room == nil {
		issue.Room = user.Room
	}
	return nil
}

// GetIssue returns the issue with its comment thread.
func (s *IssueService) GetIssue(ctx context.Context, actor Actor, issueID string) (*domain.Issue, error) {
	if err := validateID(issueID); err != nil {
		return nil, err
	}

	var (
		issue    *domain.Issue
		comments []domain.Comment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		issue, err = s.issues.GetByID(gctx, issueID)
		return err
	})
	g.Go(func() error {
		var err error
		comments, err = s.comments.ListByIssue(gctx, issueID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, storeError("issue", err)
	}
	if !issue.VisibleTo(actor.ID, actor.IsStaff()) {
		return nil, apperrors.NewForbidden("not authorized to view this issue")
	}
	issue.Comments = comments
	return issue, nil
}

// ListIssues returns a page of issues visible to the actor, newest first.
func (s *IssueService) ListIssues(ctx context.Context, actor Actor, input ListIssuesInput) (*IssuePage, error) {
	status, err := parseOptionalStatus(input.Status)
	if err != nil {
		return nil, err
	}
	category, err := parseCategory(input.Category)
	if err != nil {
		return nil, err
	}
	priority, err := parsePriority(input.Priority)
	if err != nil {
		return nil, err
	}
	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	issues, total, err := s.issues.ListWithFilter(ctx, repository.IssueFilter{
		ViewerID:       actor.ID,
		IncludePrivate: actor.IsStaff(),
		Status:         status,
		Category:       category,
		Priority:       priority,
		Search:         input.Search,
		Limit:          limit,
		Offset:         (page - 1) * limit,
	})
	if err != nil {
		return nil, storeError("issue", err)
	}
	return &IssuePage{Issues: issues, Total: total, Page: page, Limit: limit}, nil
}

// UpdateStatus applies a staff update under the issue row lock. Any status
// may follow any other; the resolution time is stamped once and kept.
func (s *IssueService) UpdateStatus(ctx context.Context, actor Actor, issueID string, input UpdateIssueInput) (*domain.Issue, error) {
	if !actor.IsStaff() {
		return nil, apperrors.NewForbidden("staff role required")
	}
	if err := validateID(issueID); err != nil {
		return nil, err
	}
	var next *domain.IssueStatus
	if input.Status != nil {
		status, err := lifecycle.ParseStatus(*input.Status)
		if err != nil {
			return nil, err
		}
		next = &status
	}
	if next == nil && input.AssignedTo == nil && input.Remarks == nil {
		return nil, apperrors.NewInvalidArgument("nothing to update", nil)
	}

	var oldStatus domain.IssueStatus
	now := s.now()
	issue, err := s.issues.UpdateWithLock(ctx, issueID, func(issue *domain.Issue) ([]domain.IssueHistory, error) {
		var entries []domain.IssueHistory
		record := func(kind domain.IssueChangeType, field string, oldValue, newValue any) {
			entries = append(entries, domain.IssueHistory{
				IssueID:     issue.ID,
				ChangedByID: actor.ID,
				ChangeType:  kind,
				OldValue:    map[string]any{field: oldValue},
				NewValue:    map[string]any{field: newValue},
			})
		}

		oldStatus = issue.Status
		if next != nil && lifecycle.Apply(issue, *next, now) {
			record(domain.ChangeTypeStatus, "status", oldStatus, *next)
		}
		if input.AssignedTo != nil && !sameString(issue.AssignedTo, input.AssignedTo) {
			record(domain.ChangeTypeAssignee, "assigned_to", issue.AssignedTo, *input.AssignedTo)
			issue.AssignedTo = copyString(input.AssignedTo)
		}
		if input.Remarks != nil && !sameString(issue.Remarks, input.Remarks) {
			record(domain.ChangeTypeRemarks, "remarks", issue.Remarks, *input.Remarks)
			issue.Remarks = copyString(input.Remarks)
		}
		issue.UpdatedAt = now
		return entries, nil
	})
	if err != nil {
		return nil, storeError("issue", err)
	}

	s.logger.Info("issue updated",
		zap.String("issue_id", issue.ID),
		zap.String("actor_id", actor.ID),
		zap.String("status", string(issue.Status)))
	if issue.Status != oldStatus {
		s.publishEvent(ctx, actor, events.Event{
			Type:    events.EventIssueStatusChanged,
			IssueID: issue.ID,
			Payload: events.IssueStatusChangedPayload{
				ReporterID: issue.CreatedBy,
				OldStatus:  oldStatus,
				NewStatus:  issue.Status,
				AssignedTo: issue.AssignedTo,
				Remarks:    issue.Remarks,
			},
		})
	}
	return issue, nil
}

// DeleteIssue removes an issue with its comments, reactions and history.
func (s *IssueService) DeleteIssue(ctx context.Context, actor Actor, issueID string) error {
	if !actor.IsStaff() {
		return apperrors.NewForbidden("staff role required")
	}
	if err := validateID(issueID); err != nil {
		return err
	}
	if err := s.issues.Delete(ctx, issueID); err != nil {
		return storeError("issue", err)
	}
	s.logger.Info("issue deleted", zap.String("issue_id", issueID), zap.String("actor_id", actor.ID))
	s.publishEvent(ctx, actor, events.Event{Type: events.EventIssueDeleted, IssueID: issueID})
	return nil
}

// ReactionToggle is the outcome of flipping one reaction.
type ReactionToggle struct {
	Kind  domain.ReactionKind
	Added bool
}

// ToggleReaction adds the actor's reaction when absent and removes it when
// present. Kind is reported in its canonical lowercase form.
func (s *IssueService) ToggleReaction(ctx context.Context, actor Actor, issueID, kind string) (*ReactionToggle, error) {
	reaction := domain.ReactionKind(strings.ToLower(strings.TrimSpace(kind)))
	if !reaction.Valid() {
		return nil, apperrors.NewInvalidArgument("invalid reaction type", map[string]any{
			"reaction_type": kind,
			"allowed":       domain.ReactionKinds,
		})
	}
	if _, err := s.visibleIssue(ctx, actor, issueID, "react to"); err != nil {
		return nil, err
	}

	added, err := s.issues.ToggleReaction(ctx, issueID, actor.ID, reaction)
	if err != nil {
		return nil, storeError("issue", err)
	}
	s.publishEvent(ctx, actor, events.Event{
		Type:    events.EventIssueReactionToggled,
		IssueID: issueID,
		Payload: events.IssueReactionToggledPayload{Kind: reaction, Added: added},
	})
	return &ReactionToggle{Kind: reaction, Added: added}, nil
}

// AddComment appends a comment to the issue thread.
func (s *IssueService) AddComment(ctx context.Context, actor Actor, issueID, content string) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewInvalidArgument("comment content is required", map[string]any{"field": "content"})
	}
	if n := utf8.RuneCountInString(content); n > domain.CommentMaxLen {
		return nil, apperrors.NewInvalidArgument("comment is too long", map[string]any{
			"field": "content",
			"max":   domain.CommentMaxLen,
		})
	}
	issue, err := s.visibleIssue(ctx, actor, issueID, "comment on")
	if err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		IssueID:    issueID,
		AuthorID:   actor.ID,
		AuthorName: actor.Name,
		Content:    content,
		CreatedAt:  s.now(),
	}
	if err := s.comments.Append(ctx, comment); err != nil {
		return nil, storeError("issue", err)
	}
	s.publishEvent(ctx, actor, events.Event{
		Type:    events.EventIssueCommentAdded,
		IssueID: issueID,
		Payload: events.IssueCommentAddedPayload{
			ReporterID:  issue.CreatedBy,
			CommentID:   comment.ID,
			AuthorName:  comment.AuthorName,
			BodyPreview: stringPreview(content, previewLen),
		},
	})
	return comment, nil
}

// Timeline reports every lifecycle stage with the time spent reaching it.
func (s *IssueService) Timeline(ctx context.Context, actor Actor, issueID string) (*IssueTimeline, error) {
	issue, err := s.visibleIssue(ctx, actor, issueID, "view")
	if err != nil {
		return nil, err
	}
	timeline := &IssueTimeline{
		Issue:  issue,
		Stages: lifecycle.Timeline(issue, s.now()),
	}
	if d, ok := lifecycle.ResolutionTime(issue); ok {
		timeline.ResolutionTime = &d
	}
	return timeline, nil
}

// ListHistory returns the audit trail of an issue.
func (s *IssueService) ListHistory(ctx context.Context, actor Actor, issueID string) ([]domain.IssueHistory, error) {
	if _, err := s.visibleIssue(ctx, actor, issueID, "view"); err != nil {
		return nil, err
	}
	entries, err := s.history.ListByIssue(ctx, issueID)
	if err != nil {
		return nil, storeError("issue history", err)
	}
	return entries, nil
}

func (s *IssueService) visibleIssue(ctx context.Context, actor Actor, issueID, action string) (*domain.Issue, error) {
	if err := validateID(issueID); err != nil {
		return nil, err
	}
	issue, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		return nil, storeError("issue", err)
	}
	if !issue.VisibleTo(actor.ID, actor.IsStaff()) {
		return nil, apperrors.NewForbidden("not authorized to " + action + " this issue")
	}
	return issue, nil
}

func (s *IssueService) publishEvent(ctx context.Context, actor Actor, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	event.Actor = events.Actor{UserID: actor.ID, Role: actor.Role}
	_ = s.dispatcher.Publish(ctx, event)
}

// storeError maps collaborator failures onto domain errors.
func storeError(resource string, err error) error {
	var domainErr *apperrors.DomainError
	switch {
	case errors.As(err, &domainErr):
		return err
	case errors.Is(err, pgx.ErrNoRows):
		return apperrors.NewNotFound(resource, nil)
	default:
		return apperrors.NewUnavailable(resource+" store", err)
	}
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NewInvalidArgument("invalid issue id", map[string]any{"id": id})
	}
	return nil
}

func checkLength(field, value string, min, max int) error {
	n := utf8.RuneCountInString(value)
	if n < min || n > max {
		return apperrors.NewInvalidArgument(field+" length out of range", map[string]any{
			"field":  field,
			"min":    min,
			"max":    max,
			"length": n,
		})
	}
	return nil
}

func parseOptionalStatus(raw string) (*domain.IssueStatus, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	status, err := lifecycle.ParseStatus(raw)
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func parseCategory(raw string) (*domain.IssueCategory, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return nil, nil
	}
	category := domain.IssueCategory(raw)
	if !category.Valid() {
		return nil, apperrors.NewInvalidArgument("invalid category", map[string]any{"category": raw})
	}
	return &category, nil
}

func parsePriority(raw string) (*domain.IssuePriority, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return nil, nil
	}
	priority := domain.IssuePriority(raw)
	if !priority.Valid() {
		return nil, apperrors.NewInvalidArgument("invalid priority", map[string]any{"priority": raw})
	}
	return &priority, nil
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func stringPreview(body string, max int) string {
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	return string(runes[:max-3]) + "..."
}
