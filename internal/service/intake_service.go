package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/hostel-issues/internal/domain"
	"github.com/spec-kit/hostel-issues/internal/intake"
	"github.com/spec-kit/hostel-issues/internal/repository"
	"github.com/spec-kit/hostel-issues/internal/worker"
	apperrors "github.com/spec-kit/hostel-issues/pkg/util/errorutil"
)

// CorpusReader supplies the open issues a draft is compared against.
type CorpusReader interface {
	ListCorpus(ctx context.Context, scope repository.CorpusScope) ([]domain.Issue, error)
}

// DuplicateCheckResult is the advisory answer to a duplicate check.
type DuplicateCheckResult struct {
	IsDuplicate     bool
	SimilarityScore float64
	Candidates      []intake.DuplicateCandidate
	// Superseded is set when a newer check from the same session replaced this one.
	Superseded bool
}

// IntakeService runs the heuristics used while a report is being written.
type IntakeService struct {
	keywords    *intake.KeywordExtractor
	analyzer    *intake.WritingAnalyzer
	matcher     *intake.SimilarityMatcher
	corpus      CorpusReader
	pool        *worker.DuplicateCheckPool
	corpusLimit int
	logger      *zap.Logger
}

// IntakeDependencies bundles collaborators for the intake service.
type IntakeDependencies struct {
	Keywords    *intake.KeywordExtractor
	Analyzer    *intake.WritingAnalyzer
	Matcher     *intake.SimilarityMatcher
	Corpus      CorpusReader
	Pool        *worker.DuplicateCheckPool
	CorpusLimit int
	Logger      *zap.Logger
}

// NewIntakeService constructs the service.
func NewIntakeService(deps IntakeDependencies) *IntakeService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	pool := deps.Pool
	if pool == nil {
		pool = worker.NewDuplicateCheckPool(1)
	}
	return &IntakeService{
		keywords:    deps.Keywords,
		analyzer:    deps.Analyzer,
		matcher:     deps.Matcher,
		corpus:      deps.Corpus,
		pool:        pool,
		corpusLimit: deps.CorpusLimit,
		logger:      logger,
	}
}

// ExtractKeywords returns the draft's keywords.
func (s *IntakeService) ExtractKeywords(text string) []string {
	return s.keywords.Extract(text)
}

// AnalyzeWriting returns feedback on a draft description.
func (s *IntakeService) AnalyzeWriting(text string) intake.Analysis {
	return s.analyzer.Analyze(text)
}

// CheckDuplicate compares a draft with the open issues the actor can see.
// Failures degrade to an empty result; the check never blocks submission.
func (s *IntakeService) CheckDuplicate(ctx context.Context, actor Actor, session, title, description string) (*DuplicateCheckResult, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" || description == "" {
		return nil, apperrors.NewInvalidArgument("title and description are required", nil)
	}

	result := &DuplicateCheckResult{Candidates: []intake.DuplicateCandidate{}}
	var candidates []intake.DuplicateCandidate
	err := s.pool.Run(ctx, session, func(ctx context.Context) error {
		corpus, err := s.corpus.ListCorpus(ctx, repository.CorpusScope{
			ViewerID:       actor.ID,
			IncludePrivate: actor.IsStaff(),
			Limit:          s.corpusLimit,
		})
		if err != nil {
			return err
		}
		candidates, err = s.matcher.FindDuplicates(ctx, title, description, corpus)
		return err
	})
	switch {
	case errors.Is(err, worker.ErrSuperseded):
		result.Superseded = true
		return result, nil
	case err != nil:
		s.logger.Warn("duplicate check failed", zap.String("actor_id", actor.ID), zap.Error(err))
		return result, nil
	}

	result.Candidates = candidates
	if len(candidates) > 0 {
		result.IsDuplicate = true
		result.SimilarityScore = candidates[0].Score
	}
	return result, nil
}
