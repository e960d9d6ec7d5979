package dto

import (
	"time"

	"github.com/spec-kit/hostel-issues/internal/domain"
	"github.com/spec-kit/hostel-issues/internal/intake"
)

// TextRequest carries a draft text for keyword extraction or writing analysis.
type TextRequest struct {
	Text string `json:"text"`
}

// KeywordsResponse lists keywords in first-occurrence order.
type KeywordsResponse struct {
	Keywords []string `json:"keywords"`
}

// AnalysisResponse is writing feedback for a draft.
type AnalysisResponse struct {
	Keywords    []string      `json:"keywords"`
	Warnings    []intake.Note `json:"warnings"`
	Suggestions []intake.Note `json:"suggestions"`
}

// DuplicateCheckRequest is the draft being checked.
type DuplicateCheckRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CandidateResponse is a similar existing issue.
type CandidateResponse struct {
	IssueID          string             `json:"issue_id"`
	Title            string             `json:"title"`
	Description      string             `json:"description"`
	Status           domain.IssueStatus `json:"status"`
	CreatedAt        time.Time          `json:"created_at"`
	SimilarityScore  float64            `json:"similarity_score"`
	Percentage       int                `json:"similarity_percentage"`
	MatchingKeywords []string           `json:"matching_keywords"`
}

// DuplicateCheckResponse is the advisory duplicate verdict.
type DuplicateCheckResponse struct {
	IsDuplicate     bool                `json:"is_duplicate"`
	SimilarityScore float64             `json:"similarity_score"`
	Candidates      []CandidateResponse `json:"candidates"`
	Superseded      bool                `json:"superseded,omitempty"`
}
