package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hostel-issues/internal/api/dto"
	"github.com/spec-kit/hostel-issues/internal/service"
)

// IntakeSessionHeader groups duplicate checks from one compose form; a newer
// check with the same value cancels the one in flight.
const IntakeSessionHeader = "X-Intake-Session"

// IntakeHandler serves the heuristics used while a report is drafted.
type IntakeHandler struct {
	service *service.IntakeService
}

// NewIntakeHandler constructs handler.
func NewIntakeHandler(intakeService *service.IntakeService) *IntakeHandler {
	return &IntakeHandler{service: intakeService}
}

// Keywords POST /intake/keywords.
func (h *IntakeHandler) Keywords(c *fiber.Ctx) error {
	var req dto.TextRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.KeywordsResponse{Keywords: h.service.ExtractKeywords(req.Text)}})
}

// Analyze POST /intake/analyze.
func (h *IntakeHandler) Analyze(c *fiber.Ctx) error {
	var req dto.TextRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	analysis := h.service.AnalyzeWriting(req.Text)
	return c.JSON(fiber.Map{"data": dto.AnalysisResponse{
		Keywords:    analysis.Keywords,
		Warnings:    analysis.Warnings,
		Suggestions: analysis.Suggestions,
	}})
}

// CheckDuplicate POST /issues/check-duplicate.
func (h *IntakeHandler) CheckDuplicate(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.DuplicateCheckRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	session := c.Get(IntakeSessionHeader)
	if session != "" {
		session = actor.ID + ":" + session
	}
	result, err := h.service.CheckDuplicate(c.UserContext(), actor, session, req.Title, req.Description)
	if err != nil {
		return err
	}

	candidates := make([]dto.CandidateResponse, 0, len(result.Candidates))
	for _, cand := range result.Candidates {
		candidates = append(candidates, dto.CandidateResponse{
			IssueID:          cand.IssueID,
			Title:            cand.Title,
			Description:      cand.Description,
			Status:           cand.Status,
			CreatedAt:        cand.CreatedAt,
			SimilarityScore:  cand.Score,
			Percentage:       cand.Percentage,
			MatchingKeywords: cand.MatchingKeywords,
		})
	}
	return c.JSON(fiber.Map{"data": dto.DuplicateCheckResponse{
		IsDuplicate:     result.IsDuplicate,
		SimilarityScore: result.SimilarityScore,
		Candidates:      candidates,
		Superseded:      result.Superseded,
	}})
}
