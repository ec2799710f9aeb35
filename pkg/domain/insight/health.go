package insight

import (
	"math"
	"time"

	"github.com/felixgeelhaar/pulse/pkg/domain/record"
)

// Health component weights. The four components sum to a 0-100 score.
const (
	CompletionWeight = 40
	TimelineWeight   = 30
	BalanceWeight    = 20
	VelocityWeight   = 10

	// OverduePenalty is the timeline deduction per overdue task, capped at
	// the full timeline weight.
	OverduePenalty = 5

	// VelocityWindowDays is the trailing window used for the velocity
	// component.
	VelocityWindowDays = 7
)

// HealthBreakdown is the per-component decomposition of a health score.
type HealthBreakdown struct {
	Completion float64 `json:"completion_score"`
	Timeline   float64 `json:"timeline_score"`
	Balance    float64 `json:"balance_score"`
	Velocity   float64 `json:"velocity_score"`
}

// HealthMetrics carries the raw counts behind a health score.
type HealthMetrics struct {
	TotalTasks        int     `json:"total_tasks"`
	CompletedTasks    int     `json:"completed_tasks"`
	InProgressTasks   int     `json:"in_progress_tasks"`
	OverdueTasks      int     `json:"overdue_tasks"`
	CompletionRate    float64 `json:"completion_rate"`
	TeamSize          int     `json:"team_size"`
	RecentCompletions int     `json:"recent_completions"`
}

// HealthScore is the weighted 0-100 composite health of a project.
type HealthScore struct {
	Score         int             `json:"health_score"`
	Status        HealthStatus    `json:"health_status"`
	Breakdown     HealthBreakdown `json:"breakdown"`
	Metrics       HealthMetrics   `json:"metrics"`
	ProjectName   string          `json:"project_name,omitempty"`
	ProjectStatus string          `json:"project_status,omitempty"`
}

// HasData reports whether the score is backed by at least one task.
func (h HealthScore) HasData() bool {
	return h.Status != HealthNoData
}

// ComputeHealth derives a project health score from the project's tasks and
// its active team size.
//
// Components: completion (40), timeline (30, minus 5 per overdue task),
// balance (20, minus twice the stddev of per-assignee open-task counts),
// velocity (10, scaled by trailing-week completions against one expected
// completion per member). A project with no tasks scores 0 with NO_DATA.
func ComputeHealth(tasks []record.Task, activeMembers int, now time.Time) HealthScore {
	if len(tasks) == 0 {
		return HealthScore{Score: 0, Status: HealthNoData}
	}

	total := len(tasks)
	completed := 0
	overdue := 0
	inProgress := 0
	for _, t := range tasks {
		if t.Finished {
			completed++
			continue
		}
		if t.Overdue(now) {
			overdue++
		}
		if t.Status != "NEW" && t.Status != "COMPLETED" {
			inProgress++
		}
	}

	completionRate := float64(completed) / float64(total) * 100
	completionScore := completionRate / 100 * CompletionWeight

	penalty := math.Min(float64(overdue*OverduePenalty), TimelineWeight)
	timelineScore := math.Max(0, TimelineWeight-penalty)

	balanceScore := balanceScore(tasks, activeMembers)

	weekAgo := now.AddDate(0, 0, -VelocityWindowDays)
	recent := 0
	for _, t := range tasks {
		if t.Finished && t.UpdatedAt.After(weekAgo) {
			recent++
		}
	}
	expected := activeMembers
	if expected == 0 {
		expected = 1
	}
	ratio := math.Min(float64(recent)/float64(expected), 1.0)
	velocityScore := ratio * VelocityWeight

	score := int(math.Round(completionScore + timelineScore + balanceScore + velocityScore))

	return HealthScore{
		Score:  score,
		Status: HealthStatusFor(score),
		Breakdown: HealthBreakdown{
			Completion: math.Round(completionScore),
			Timeline:   math.Round(timelineScore),
			Balance:    math.Round(balanceScore),
			Velocity:   math.Round(velocityScore),
		},
		Metrics: HealthMetrics{
			TotalTasks:        total,
			CompletedTasks:    completed,
			InProgressTasks:   inProgress,
			OverdueTasks:      overdue,
			CompletionRate:    math.Round(completionRate*10) / 10,
			TeamSize:          activeMembers,
			RecentCompletions: recent,
		},
	}
}

// balanceScore scores how evenly open tasks are spread across assignees.
// No active members scores 0; active members with no open assignments get a
// floor of 10.
func balanceScore(tasks []record.Task, activeMembers int) float64 {
	if activeMembers == 0 {
		return 0
	}

	counts := map[string]int{}
	for _, t := range tasks {
		if t.Finished {
			continue
		}
		for _, userID := range t.AssignedTo {
			counts[userID]++
		}
	}
	if len(counts) == 0 {
		return 10
	}

	return math.Max(0, BalanceWeight-2*stddev(counts))
}

func stddev(counts map[string]int) float64 {
	n := float64(len(counts))
	var sum float64
	for _, c := range counts {
		sum += float64(c)
	}
	mean := sum / n

	var variance float64
	for _, c := range counts {
		d := float64(c) - mean
		variance += d * d
	}
	variance /= n
	return math.Sqrt(variance)
}
