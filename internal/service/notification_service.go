package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/hostel-issues/internal/config"
	"github.com/spec-kit/hostel-issues/internal/domain"
	"github.com/spec-kit/hostel-issues/internal/events"
)

// NotificationService tells reporters about progress on their issues and
// pages the maintenance desk about pressing reports.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// notice is one outbound message for a reporter or the desk.
type notice struct {
	issueID   string
	recipient string
	subject   string
	body      string
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventIssueCreated, n.handleIssueCreated)
	n.dispatcher.Subscribe(events.EventIssueStatusChanged, n.handleIssueStatusChanged)
	n.dispatcher.Subscribe(events.EventIssueCommentAdded, n.handleIssueCommentAdded)
}

// Only high and urgent reports reach the desk webhook.
func (n *NotificationService) handleIssueCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.IssueCreatedPayload)
	if !ok {
		return fmt.Errorf("issue created: unexpected payload %T", event.Payload)
	}
	if payload.Priority != domain.IssuePriorityHigh && payload.Priority != domain.IssuePriorityUrgent {
		return nil
	}
	n.postWebhook(ctx, notice{
		issueID: event.IssueID,
		subject: fmt.Sprintf("[%s] %s issue reported: %s", payload.Priority, payload.Category, payload.Title),
	})
	return nil
}

func (n *NotificationService) handleIssueStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.IssueStatusChangedPayload)
	if !ok {
		return fmt.Errorf("issue status changed: unexpected payload %T", event.Payload)
	}
	update := notice{
		issueID:   event.IssueID,
		recipient: payload.ReporterID,
		subject:   statusSubject(payload.NewStatus),
	}
	if payload.Remarks != nil {
		update.body = *payload.Remarks
	}
	n.postWebhook(ctx, notice{
		issueID: event.IssueID,
		subject: fmt.Sprintf("issue moved from %s to %s", payload.OldStatus, payload.NewStatus),
	})
	if payload.ReporterID == "" || payload.ReporterID == event.Actor.UserID {
		return nil
	}
	n.sendEmail(ctx, update)
	return nil
}

// Reporters are not emailed about their own comments.
func (n *NotificationService) handleIssueCommentAdded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.IssueCommentAddedPayload)
	if !ok {
		return fmt.Errorf("issue comment added: unexpected payload %T", event.Payload)
	}
	if payload.ReporterID == "" || payload.ReporterID == event.Actor.UserID {
		return nil
	}
	n.sendEmail(ctx, notice{
		issueID:   event.IssueID,
		recipient: payload.ReporterID,
		subject:   fmt.Sprintf("%s commented on your issue", payload.AuthorName),
		body:      payload.BodyPreview,
	})
	return nil
}

func statusSubject(status domain.IssueStatus) string {
	switch status {
	case domain.IssueStatusAssigned:
		return "Your issue has been assigned to staff"
	case domain.IssueStatusInProgress:
		return "Work has started on your issue"
	case domain.IssueStatusResolved:
		return "Your issue has been resolved"
	case domain.IssueStatusClosed:
		return "Your issue has been closed"
	default:
		return fmt.Sprintf("Your issue is now %s", status)
	}
}

func (n *NotificationService) sendEmail(_ context.Context, msg notice) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Info("email notification",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to_user_id", msg.recipient),
		zap.String("issue_id", msg.issueID),
		zap.String("subject", msg.subject),
		zap.String("body", msg.body))
}

func (n *NotificationService) postWebhook(_ context.Context, msg notice) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Info("webhook notification",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("issue_id", msg.issueID),
		zap.String("subject", msg.subject))
}
