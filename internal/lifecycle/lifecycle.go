// Package lifecycle runs the issue status state machine and the time-in-stage
// accounting shown on the issue timeline.
package lifecycle

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spec-kit/hostel-issues/internal/domain"
	"github.com/spec-kit/hostel-issues/pkg/util/errorutil"
)

// ParseStatus converts boundary input into a status, rejecting unknown values.
func ParseStatus(raw string) (domain.IssueStatus, error) {
	status := domain.IssueStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", errorutil.NewInvalidArgument("invalid status", map[string]any{
			"status":  raw,
			"allowed": domain.IssueStatuses,
		})
	}
	return status, nil
}

// Start puts a freshly created issue in the first stage.
func Start(issue *domain.Issue, now time.Time) {
	issue.Status = domain.IssueStatusReported
	issue.ResolvedAt = nil
	issue.CreatedAt = now
	issue.UpdatedAt = now
}

// Apply moves the issue to status. Any status may follow any other. The first
// entry into resolved or closed stamps ResolvedAt; later moves never clear it.
// It reports whether the status actually changed.
func Apply(issue *domain.Issue, status domain.IssueStatus, now time.Time) bool {
	changed := issue.Status != status
	issue.Status = status
	if status.Terminal() && issue.ResolvedAt == nil {
		resolved := now
		if resolved.Before(issue.CreatedAt) {
			resolved = issue.CreatedAt
		}
		issue.ResolvedAt = &resolved
	}
	issue.UpdatedAt = now
	return changed
}

// TimeInStage returns how long the issue has spent reaching the given stage.
// The current stage measures from creation to now; stages at or after
// resolved measure the resolution time once ResolvedAt is known. Any other
// stage, including ones not reached yet, has no duration.
func TimeInStage(issue *domain.Issue, stageIndex int, now time.Time) (time.Duration, bool) {
	current := issue.Status.Index()
	if stageIndex < 0 || stageIndex >= len(domain.IssueStatuses) || current < 0 || stageIndex > current {
		return 0, false
	}
	if stageIndex == current {
		return nonNegative(now.Sub(issue.CreatedAt)), true
	}
	if issue.ResolvedAt != nil && stageIndex >= domain.IssueStatusResolved.Index() {
		return nonNegative(issue.ResolvedAt.Sub(issue.CreatedAt)), true
	}
	return 0, false
}

// ResolutionTime is the time between creation and first resolution.
func ResolutionTime(issue *domain.Issue) (time.Duration, bool) {
	if issue.ResolvedAt == nil {
		return 0, false
	}
	return nonNegative(issue.ResolvedAt.Sub(issue.CreatedAt)), true
}

// FormatStageDuration renders d in the largest unit below the next one,
// rounded to the nearest whole unit.
func FormatStageDuration(d time.Duration) string {
	switch {
	case d < time.Hour:
		return fmt.Sprintf("%d minutes", int(math.Round(d.Minutes())))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hours", int(math.Round(d.Hours())))
	default:
		return fmt.Sprintf("%d days", int(math.Round(d.Hours()/24)))
	}
}

// Stage is one row of an issue timeline.
type Stage struct {
	Index    int
	Status   domain.IssueStatus
	Reached  bool
	Current  bool
	Duration time.Duration
	Display  string
	HasTime  bool
}

// Timeline lists every stage in order with its duration, if any.
func Timeline(issue *domain.Issue, now time.Time) []Stage {
	current := issue.Status.Index()
	stages := make([]Stage, 0, len(domain.IssueStatuses))
	for i, status := range domain.IssueStatuses {
		stage := Stage{
			Index:   i,
			Status:  status,
			Reached: i <= current,
			Current: i == current,
		}
		if d, ok := TimeInStage(issue, i, now); ok {
			stage.Duration = d
			stage.Display = FormatStageDuration(d)
			stage.HasTime = true
		}
		stages = append(stages, stage)
	}
	return stages
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
