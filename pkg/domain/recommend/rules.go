package recommend

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/pulse/pkg/domain/insight"
)

// MaxRuleRecommendations caps the rule battery's output.
const MaxRuleRecommendations = 7

// Inputs bundles the scoring engine outputs the rule battery evaluates.
type Inputs struct {
	Health      insight.HealthScore
	Workload    insight.WorkloadReport
	Bottlenecks insight.BottleneckReport
	Milestones  insight.MilestoneRiskReport
	Velocity    insight.VelocityReport
}

// FromRules evaluates a fixed, ordered battery of condition-to-suggestion
// rules against the scoring outputs. Deterministic: the same inputs always
// produce the same list. Results are sorted by priority and capped at seven.
func FromRules(in Inputs) List {
	var recs []Recommendation

	// Rule 1: critical health score.
	if in.Health.Score < 40 {
		recs = append(recs, Recommendation{
			Priority:       PriorityHigh,
			Category:       CategoryTimeline,
			Action:         fmt.Sprintf("Schedule emergency project review meeting to address critical health score of %d/100", in.Health.Score),
			Reason:         "Project health is in critical state with multiple compounding issues",
			ExpectedImpact: "Identify root causes and create recovery plan",
			Effort:         EffortLow,
		})
	}

	// Rule 2: overdue task volume.
	overdue := in.Health.Metrics.OverdueTasks
	if overdue > 5 {
		recs = append(recs, Recommendation{
			Priority:       PriorityHigh,
			Category:       CategoryTimeline,
			Action:         fmt.Sprintf("Organize overdue task sprint: prioritize and complete %d overdue tasks", overdue),
			Reason:         fmt.Sprintf("High number of overdue tasks (%d) is blocking project progress", overdue),
			ExpectedImpact: "Clear backlog and improve timeline score by ~15-20 points",
			Effort:         EffortMedium,
		})
	} else if overdue > 0 {
		recs = append(recs, Recommendation{
			Priority:       PriorityMedium,
			Category:       CategoryTimeline,
			Action:         fmt.Sprintf("Address %d overdue task(s) this week", overdue),
			Reason:         "Prevent overdue tasks from accumulating",
			ExpectedImpact: "Maintain timeline adherence",
			Effort:         EffortLow,
		})
	}

	// Rule 3: overload paired with spare capacity suggests reassignment.
	overloaded := in.Workload.Overloaded
	underutilized := in.Workload.Underutilized
	switch {
	case len(overloaded) > 0 && len(underutilized) > 0:
		from := overloaded[0]
		to := underutilized[0]
		toMove := from.TotalTasks / 4
		if toMove < 2 {
			toMove = 2
		}
		recs = append(recs, Recommendation{
			Priority:       PriorityHigh,
			Category:       CategoryWorkload,
			Action:         fmt.Sprintf("Reassign %d tasks from %s to %s", toMove, from.Name, to.Name),
			Reason:         fmt.Sprintf("%s has %d tasks (%d overdue), while %s has only %d", from.Name, from.TotalTasks, from.OverdueTasks, to.Name, to.TotalTasks),
			ExpectedImpact: "Balance workload and improve completion rate by ~10-15%",
			Effort:         EffortLow,
		})
	case len(overloaded) > 0:
		names := make([]string, 0, 3)
		for _, m := range overloaded {
			names = append(names, m.Name)
			if len(names) == 3 {
				break
			}
		}
		recs = append(recs, Recommendation{
			Priority:       PriorityHigh,
			Category:       CategoryWorkload,
			Action:         fmt.Sprintf("Reduce workload for %d overloaded team member(s): %s", len(overloaded), strings.Join(names, ", ")),
			Reason:         "Overloaded members are bottlenecks for project progress",
			ExpectedImpact: "Improve task completion velocity",
			Effort:         EffortMedium,
		})
	}

	// Rule 4: the most endangered milestone.
	var atRisk []insight.MilestoneRisk
	for _, m := range in.Milestones.Milestones {
		if m.Level.IsElevated() {
			atRisk = append(atRisk, m)
		}
	}
	if len(atRisk) > 0 {
		m := atRisk[0]
		days := 100
		if m.DaysRemaining != nil {
			days = *m.DaysRemaining
		}
		var action string
		switch {
		case days < 0:
			action = fmt.Sprintf("URGENT: Milestone '%s' is overdue. Assess extension or scope reduction", m.Title)
		case m.CompletionPct < 50:
			action = fmt.Sprintf("Prioritize tasks for milestone '%s' - currently only %.1f%% complete", m.Title, m.CompletionPct)
		default:
			action = fmt.Sprintf("Add resources to milestone '%s' to ensure on-time delivery", m.Title)
		}
		reasonDays := "unknown"
		if m.DaysRemaining != nil {
			reasonDays = fmt.Sprintf("%d", *m.DaysRemaining)
		}
		recs = append(recs, Recommendation{
			Priority:       PriorityHigh,
			Category:       CategoryTimeline,
			Action:         action,
			Reason:         fmt.Sprintf("Milestone has %s days left with %d overdue tasks", reasonDays, m.OverdueTasks),
			ExpectedImpact: "Protect milestone deadline and deliverables",
			Effort:         EffortMedium,
		})
	}

	// Rule 5: slowing velocity.
	if in.Velocity.Trend == insight.TrendSlowing {
		pct := in.Velocity.TrendPct
		if pct < 0 {
			pct = -pct
		}
		recs = append(recs, Recommendation{
			Priority:       PriorityMedium,
			Category:       CategoryProcess,
			Action:         "Investigate velocity slowdown: check for blockers, resource constraints, or process issues",
			Reason:         fmt.Sprintf("Team velocity has decreased by %.1f%%", pct),
			ExpectedImpact: "Identify and remove impediments to team productivity",
			Effort:         EffortLow,
		})
	}

	// Rule 6: the worst critical user.
	if len(in.Bottlenecks.CriticalUsers) > 0 {
		u := in.Bottlenecks.CriticalUsers[0]
		recs = append(recs, Recommendation{
			Priority:       PriorityHigh,
			Category:       CategoryTeam,
			Action:         fmt.Sprintf("Provide support to %s who has %d overdue tasks", u.Name, u.OverdueCount),
			Reason:         "This team member is a critical bottleneck blocking project progress",
			ExpectedImpact: "Unblock dependencies and improve flow",
			Effort:         EffortLow,
		})
	}

	// Rule 7: the longest-overdue task.
	if len(in.Bottlenecks.LongOverdue) > 0 {
		t := in.Bottlenecks.LongOverdue[0]
		recs = append(recs, Recommendation{
			Priority:       PriorityHigh,
			Category:       CategoryQuality,
			Action:         fmt.Sprintf("Review task '%s' which is %d days overdue - consider closing or reassigning", t.Name, t.DaysOverdue),
			Reason:         "Extremely overdue tasks often indicate stale work or blocked progress",
			ExpectedImpact: "Clean up backlog and clarify project status",
			Effort:         EffortLow,
		})
	}

	// Rule 8: blocked high-priority tasks.
	if n := len(in.Bottlenecks.HighPriorityBlocked); n > 0 {
		recs = append(recs, Recommendation{
			Priority:       PriorityHigh,
			Category:       CategoryQuality,
			Action:         fmt.Sprintf("Unblock %d high-priority task(s) that are currently blocked", n),
			Reason:         "High-priority work is stalled, impacting deliverables",
			ExpectedImpact: "Resume progress on critical features",
			Effort:         EffortMedium,
		})
	}

	// Rule 9: excellent health with nothing else to say.
	if in.Health.Score >= 80 && len(recs) == 0 {
		recs = append(recs, Recommendation{
			Priority:       PriorityLow,
			Category:       CategoryProcess,
			Action:         "Maintain current trajectory - project is performing well",
			Reason:         fmt.Sprintf("Health score is %d/100 with no critical issues", in.Health.Score),
			ExpectedImpact: "Continue steady progress toward goals",
			Effort:         EffortLow,
		})
	}

	// Rule 10: low completion rate, only when little else fired.
	if in.Health.Metrics.CompletionRate < 30 && len(recs) < 3 {
		recs = append(recs, Recommendation{
			Priority:       PriorityMedium,
			Category:       CategoryTimeline,
			Action:         fmt.Sprintf("Focus on completing in-progress tasks - only %.1f%% done", in.Health.Metrics.CompletionRate),
			Reason:         "Low completion rate suggests too much WIP or scope creep",
			ExpectedImpact: "Improve completion rate and demonstrate progress",
			Effort:         EffortMedium,
		})
	}

	SortByPriority(recs)
	if len(recs) > MaxRuleRecommendations {
		recs = recs[:MaxRuleRecommendations]
	}

	return List{
		Method:          MethodRules,
		Recommendations: recs,
		Total:           len(recs),
	}
}
