package insight

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/felixgeelhaar/pulse/pkg/domain/record"
)

// Milestone risk escalation thresholds.
const (
	riskHighDays   = 7
	riskHighPct    = 80
	riskMediumDays = 14
	riskMediumPct  = 50

	// OverdueRatioEscalation is the fraction of overdue milestone tasks
	// beyond which risk escalates to HIGH.
	OverdueRatioEscalation = 30
)

// MilestoneRisk is the assessed completion risk of one milestone.
type MilestoneRisk struct {
	MilestoneID     string     `json:"milestone_id"`
	Title           string     `json:"milestone_title"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	DaysRemaining   *int       `json:"days_remaining,omitempty"`
	Level           RiskLevel  `json:"risk_level"`
	Factors         []string   `json:"risk_factors"`
	CompletionPct   float64    `json:"completion_percentage"`
	TotalTasks      int        `json:"total_tasks"`
	CompletedTasks  int        `json:"completed_tasks"`
	OverdueTasks    int        `json:"overdue_tasks"`
	InProgressTasks int        `json:"in_progress_tasks"`
}

// RiskCounts tallies milestones per risk level.
type RiskCounts struct {
	Critical int `json:"CRITICAL"`
	High     int `json:"HIGH"`
	Medium   int `json:"MEDIUM"`
	Low      int `json:"LOW"`
}

// MilestoneRiskReport aggregates the risk assessment of all active
// milestones, most severe first.
type MilestoneRiskReport struct {
	TotalMilestones int             `json:"total_milestones"`
	Summary         RiskCounts      `json:"risk_summary"`
	Milestones      []MilestoneRisk `json:"milestones"`
}

// AssessMilestone evaluates one milestone against its tasks. Risk escalates
// through ordered checks: past the end date is CRITICAL; seven days or less
// with under 80% complete is HIGH; fourteen days or less with under 50%
// complete is MEDIUM. Independently, more than 30% of tasks overdue
// escalates to HIGH unless the milestone is already CRITICAL. Each trigger
// appends a human-readable factor; factors are metadata, not inputs to the
// decision.
func AssessMilestone(m record.Milestone, tasks []record.Task, now time.Time) MilestoneRisk {
	total := len(tasks)
	completed := 0
	overdue := 0
	for _, t := range tasks {
		if t.Finished {
			completed++
		} else if t.Overdue(now) {
			overdue++
		}
	}

	pct := float64(0)
	if total > 0 {
		pct = float64(completed) / float64(total) * 100
	}

	risk := MilestoneRisk{
		MilestoneID:     m.ID,
		Title:           m.Title,
		StartDate:       m.StartDate,
		EndDate:         m.EndDate,
		Level:           RiskLow,
		Factors:         []string{},
		CompletionPct:   math.Round(pct*10) / 10,
		TotalTasks:      total,
		CompletedTasks:  completed,
		OverdueTasks:    overdue,
		InProgressTasks: total - completed - overdue,
	}

	if days, ok := m.DaysRemaining(now); ok {
		risk.DaysRemaining = &days
		switch {
		case days < 0:
			risk.Level = RiskCritical
			risk.Factors = append(risk.Factors, fmt.Sprintf("Milestone is %d days overdue", -days))
		case days <= riskHighDays && pct < riskHighPct:
			risk.Level = RiskHigh
			risk.Factors = append(risk.Factors, fmt.Sprintf("Only %d days left with %.0f%% complete", days, pct))
		case days <= riskMediumDays && pct < riskMediumPct:
			risk.Level = RiskMedium
			risk.Factors = append(risk.Factors, fmt.Sprintf("%d days left but only %.0f%% complete", days, pct))
		}
	}

	if overdue > 0 && total > 0 {
		overduePct := float64(overdue) / float64(total) * 100
		if overduePct > OverdueRatioEscalation {
			if risk.Level != RiskCritical {
				risk.Level = RiskHigh
			}
			risk.Factors = append(risk.Factors, fmt.Sprintf("%d tasks overdue (%.0f%%)", overdue, overduePct))
		}
	}

	return risk
}

// ComputeMilestoneRisks assesses every milestone with its tasks and sorts
// the result most severe first. Milestones without tasks are skipped.
func ComputeMilestoneRisks(milestones []record.Milestone, tasksByMilestone map[string][]record.Task, now time.Time) MilestoneRiskReport {
	risks := make([]MilestoneRisk, 0, len(milestones))
	for _, m := range milestones {
		tasks := tasksByMilestone[m.ID]
		if len(tasks) == 0 {
			continue
		}
		risks = append(risks, AssessMilestone(m, tasks, now))
	}

	sort.SliceStable(risks, func(i, j int) bool {
		return risks[i].Level.Order() < risks[j].Level.Order()
	})

	counts := RiskCounts{}
	for _, r := range risks {
		switch r.Level {
		case RiskCritical:
			counts.Critical++
		case RiskHigh:
			counts.High++
		case RiskMedium:
			counts.Medium++
		default:
			counts.Low++
		}
	}

	return MilestoneRiskReport{
		TotalMilestones: len(risks),
		Summary:         counts,
		Milestones:      risks,
	}
}
