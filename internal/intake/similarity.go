package intake

import (
	"context"
	"math"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/spec-kit/hostel-issues/internal/domain"
)

// Matcher defaults.
const (
	DefaultSimilarityThreshold = 0.7
	DefaultMaxCandidates       = 5
	shownMatchingKeywords      = 3
	snapshotDescriptionLen     = 200
	scorePlaces                = 3
)

// MatcherConfig tunes duplicate detection.
type MatcherConfig struct {
	Threshold     float64
	MaxCandidates int
}

// DuplicateCandidate is an existing issue that reads like the draft. It is
// computed per request and never stored.
type DuplicateCandidate struct {
	IssueID          string
	Title            string
	Description      string
	Status           domain.IssueStatus
	CreatedAt        time.Time
	Score            float64
	Percentage       int
	MatchingKeywords []string
}

// SimilarityMatcher scores a draft against a corpus with term-frequency cosine similarity.
type SimilarityMatcher struct {
	keywords *KeywordExtractor
	cfg      MatcherConfig
}

// NewSimilarityMatcher builds a matcher; zero config values take defaults.
func NewSimilarityMatcher(keywords *KeywordExtractor, cfg MatcherConfig) *SimilarityMatcher {
	if cfg.Threshold <= 0 || cfg.Threshold > 1 {
		cfg.Threshold = DefaultSimilarityThreshold
	}
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = DefaultMaxCandidates
	}
	return &SimilarityMatcher{keywords: keywords, cfg: cfg}
}

// Threshold returns the score at or above which an issue counts as a duplicate.
func (m *SimilarityMatcher) Threshold() float64 {
	return m.cfg.Threshold
}

// FindDuplicates ranks corpus issues whose score reaches the threshold, best
// first; equal scores put the newest issue first. The scan stops early with
// ctx.Err() when ctx is cancelled.
func (m *SimilarityMatcher) FindDuplicates(ctx context.Context, title, description string, corpus []domain.Issue) ([]DuplicateCandidate, error) {
	if len(corpus) == 0 {
		return []DuplicateCandidate{}, nil
	}
	draftText := combine(title, description)
	draft := termFrequencies(m.keywords.Tokens(draftText))
	if len(draft.counts) == 0 {
		return []DuplicateCandidate{}, nil
	}
	var draftKeywords []string

	matches := make([]DuplicateCandidate, 0)
	for i := range corpus {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		issue := &corpus[i]
		issueText := combine(issue.Title, issue.Description)
		// Rounded before filtering so equal scores tie exactly.
		score := roundTo(draft.cosine(termFrequencies(m.keywords.Tokens(issueText))), scorePlaces)
		if score < m.cfg.Threshold {
			continue
		}
		if draftKeywords == nil {
			draftKeywords = m.keywords.Extract(draftText)
		}
		matches = append(matches, DuplicateCandidate{
			IssueID:          issue.ID,
			Title:            issue.Title,
			Description:      snapshot(issue.Description),
			Status:           issue.Status,
			CreatedAt:        issue.CreatedAt,
			Score:            score,
			Percentage:       int(math.Round(score * 100)),
			MatchingKeywords: intersect(draftKeywords, m.keywords.Extract(issueText), shownMatchingKeywords),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		}
		return matches[i].IssueID < matches[j].IssueID
	})
	if len(matches) > m.cfg.MaxCandidates {
		matches = matches[:m.cfg.MaxCandidates]
	}
	return matches, nil
}

type termVector struct {
	counts map[string]float64
	norm   float64
}

func termFrequencies(tokens []string) termVector {
	v := termVector{counts: make(map[string]float64, len(tokens))}
	for _, tok := range tokens {
		v.counts[tok]++
	}
	var sum float64
	for _, c := range v.counts {
		sum += c * c
	}
	v.norm = math.Sqrt(sum)
	return v
}

// cosine returns a score clamped to [0,1]; empty vectors score zero.
func (v termVector) cosine(other termVector) float64 {
	if v.norm == 0 || other.norm == 0 {
		return 0
	}
	small, large := v.counts, other.counts
	if len(small) > len(large) {
		small, large = large, small
	}
	var dot float64
	for term, c := range small {
		dot += c * large[term]
	}
	score := dot / (v.norm * other.norm)
	return math.Max(0, math.Min(1, score))
}

func combine(title, description string) string {
	return title + " " + description
}

func intersect(ordered, other []string, limit int) []string {
	set := toSet(other)
	out := make([]string, 0, limit)
	for _, w := range ordered {
		if len(out) == limit {
			break
		}
		if _, ok := set[w]; ok {
			out = append(out, w)
		}
	}
	return out
}

func snapshot(description string) string {
	if utf8.RuneCountInString(description) <= snapshotDescriptionLen {
		return description
	}
	runes := []rune(description)
	return string(runes[:snapshotDescriptionLen]) + "..."
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
