package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hostel-issues/internal/api/dto"
	"github.com/spec-kit/hostel-issues/internal/domain"
	"github.com/spec-kit/hostel-issues/internal/lifecycle"
	"github.com/spec-kit/hostel-issues/internal/service"
)

// IssuesHandler serves the issue board, threads and timelines.
type IssuesHandler struct {
	service *service.IssueService
}

// NewIssuesHandler constructs handler.
func NewIssuesHandler(issueService *service.IssueService) *IssuesHandler {
	return &IssuesHandler{service: issueService}
}

// ListIssues GET /issues.
func (h *IssuesHandler) ListIssues(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	page, err := h.service.ListIssues(c.UserContext(), actor, service.ListIssuesInput{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Priority: c.Query("priority"),
		Search:   c.Query("search"),
		Page:     parseInt(c.Query("page"), 1),
		Limit:    parseInt(c.Query("limit"), 0),
	})
	if err != nil {
		return err
	}

	items := make([]dto.IssueResponse, 0, len(page.Issues))
	for i := range page.Issues {
		items = append(items, issueResponse(&page.Issues[i]))
	}
	pages := 0
	if page.Limit > 0 {
		pages = (page.Total + page.Limit - 1) / page.Limit
	}
	return c.JSON(fiber.Map{"data": dto.IssueListResponse{
		Issues: items,
		Total:  page.Total,
		Page:   page.Page,
		Limit:  page.Limit,
		Pages:  pages,
	}})
}

// GetIssue GET /issues/:id.
func (h *IssuesHandler) GetIssue(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	issue, err := h.service.GetIssue(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	resp := issueResponse(issue)
	resp.Comments = commentResponses(issue.Comments)
	return c.JSON(fiber.Map{"data": resp})
}

// CreateIssue POST /issues.
func (h *IssuesHandler) CreateIssue(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.CreateIssueRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	issue, err := h.service.CreateIssue(c.UserContext(), actor, service.CreateIssueInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
		IsPublic:    req.IsPublic,
		Hostel:      req.Hostel,
		Block:       req.Block,
		Room:        req.Room,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": issueResponse(issue)})
}

// UpdateIssue PUT /issues/:id (staff).
func (h *IssuesHandler) UpdateIssue(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.UpdateIssueRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	issue, err := h.service.UpdateStatus(c.UserContext(), actor, c.Params("id"), service.UpdateIssueInput{
		Status:     req.Status,
		AssignedTo: req.AssignedTo,
		Remarks:    req.Remarks,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueResponse(issue)})
}

// DeleteIssue DELETE /issues/:id (staff).
func (h *IssuesHandler) DeleteIssue(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteIssue(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// React POST /issues/:id/react?reaction_type=like|upvote.
func (h *IssuesHandler) React(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	toggle, err := h.service.ToggleReaction(c.UserContext(), actor, c.Params("id"), c.Query("reaction_type"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ReactionToggleResponse{
		ReactionType: toggle.Kind,
		Reacted:      toggle.Added,
	}})
}

// AddComment POST /issues/:id/comments.
func (h *IssuesHandler) AddComment(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.CreateCommentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	comment, err := h.service.AddComment(c.UserContext(), actor, c.Params("id"), req.Content)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": commentResponse(comment)})
}

// Timeline GET /issues/:id/timeline.
func (h *IssuesHandler) Timeline(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	timeline, err := h.service.Timeline(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}

	stages := make([]dto.StageResponse, 0, len(timeline.Stages))
	for _, stage := range timeline.Stages {
		resp := dto.StageResponse{
			Index:   stage.Index,
			Status:  stage.Status,
			Reached: stage.Reached,
			Current: stage.Current,
			Display: stage.Display,
		}
		if stage.HasTime {
			secs := int64(stage.Duration.Seconds())
			resp.DurationSeconds = &secs
		}
		stages = append(stages, resp)
	}
	resp := dto.TimelineResponse{
		IssueID: timeline.Issue.ID,
		Status:  timeline.Issue.Status,
		Stages:  stages,
	}
	if timeline.ResolutionTime != nil {
		secs := int64(timeline.ResolutionTime.Seconds())
		resp.ResolutionTimeSeconds = &secs
		resp.ResolutionTimeDisplay = lifecycle.FormatStageDuration(*timeline.ResolutionTime)
	}
	return c.JSON(fiber.Map{"data": resp})
}

// History GET /issues/:id/history.
func (h *IssuesHandler) History(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	entries, err := h.service.ListHistory(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	resp := make([]dto.HistoryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, dto.HistoryResponse{
			ID:          entry.ID,
			ChangeType:  entry.ChangeType,
			ChangedByID: entry.ChangedByID,
			OldValue:    entry.OldValue,
			NewValue:    entry.NewValue,
			CreatedAt:   entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": resp})
}

func issueResponse(issue *domain.Issue) dto.IssueResponse {
	likes := append([]string{}, issue.Reactions[domain.ReactionLike]...)
	upvotes := append([]string{}, issue.Reactions[domain.ReactionUpvote]...)
	return dto.IssueResponse{
		ID:            issue.ID,
		Title:         issue.Title,
		Description:   issue.Description,
		Category:      issue.Category,
		Priority:      issue.Priority,
		Status:        issue.Status,
		IsPublic:      issue.IsPublic,
		Hostel:        issue.Hostel,
		Block:         issue.Block,
		Room:          issue.Room,
		CreatedBy:     issue.CreatedBy,
		CreatedByName: issue.CreatedByName,
		AssignedTo:    issue.AssignedTo,
		Remarks:       issue.Remarks,
		Reactions: dto.ReactionsResponse{
			Likes:       likes,
			Upvotes:     upvotes,
			LikeCount:   len(likes),
			UpvoteCount: len(upvotes),
		},
		CreatedAt:  issue.CreatedAt,
		UpdatedAt:  issue.UpdatedAt,
		ResolvedAt: issue.ResolvedAt,
	}
}

func commentResponses(comments []domain.Comment) []dto.CommentResponse {
	resp := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		resp = append(resp, commentResponse(&comments[i]))
	}
	return resp
}

func commentResponse(comment *domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:         comment.ID,
		IssueID:    comment.IssueID,
		AuthorID:   comment.AuthorID,
		AuthorName: comment.AuthorName,
		Content:    comment.Content,
		CreatedAt:  comment.CreatedAt,
	}
}
