package recommend_test

import (
	"strings"
	"testing"

	"github.com/felixgeelhaar/pulse/pkg/domain/insight"
	"github.com/felixgeelhaar/pulse/pkg/domain/recommend"
)

func intPtr(n int) *int { return &n }

func findByCategory(recs []recommend.Recommendation, c recommend.Category) []recommend.Recommendation {
	var out []recommend.Recommendation
	for _, r := range recs {
		if r.Category == c {
			out = append(out, r)
		}
	}
	return out
}

func TestFromRules_HealthyProjectGetsMaintenanceNote(t *testing.T) {
	in := recommend.Inputs{
		Health: insight.HealthScore{
			Score:   92,
			Status:  insight.HealthExcellent,
			Metrics: insight.HealthMetrics{CompletionRate: 80},
		},
	}

	list := recommend.FromRules(in)

	if list.Method != recommend.MethodRules {
		t.Errorf("Method = %s, want %s", list.Method, recommend.MethodRules)
	}
	if list.Total != 1 {
		t.Fatalf("Total = %d, want 1", list.Total)
	}
	rec := list.Recommendations[0]
	if rec.Priority != recommend.PriorityLow {
		t.Errorf("Priority = %s, want %s", rec.Priority, recommend.PriorityLow)
	}
	if !strings.Contains(rec.Reason, "92/100") {
		t.Errorf("Reason = %q, want the score quoted", rec.Reason)
	}
}

func TestFromRules_CriticalHealthTriggersReview(t *testing.T) {
	in := recommend.Inputs{
		Health: insight.HealthScore{
			Score:   25,
			Metrics: insight.HealthMetrics{CompletionRate: 50},
		},
	}

	list := recommend.FromRules(in)

	if list.Total != 1 {
		t.Fatalf("Total = %d, want 1", list.Total)
	}
	if !strings.Contains(list.Recommendations[0].Action, "critical health score of 25/100") {
		t.Errorf("Action = %q, want emergency review with the score", list.Recommendations[0].Action)
	}
}

func TestFromRules_OverdueVolumeChoosesPriority(t *testing.T) {
	high := recommend.FromRules(recommend.Inputs{
		Health: insight.HealthScore{
			Score:   70,
			Metrics: insight.HealthMetrics{OverdueTasks: 8, CompletionRate: 60},
		},
	})
	if high.Total != 1 || high.Recommendations[0].Priority != recommend.PriorityHigh {
		t.Errorf("8 overdue tasks: got %+v, want one HIGH recommendation", high.Recommendations)
	}
	if !strings.Contains(high.Recommendations[0].Action, "8 overdue tasks") {
		t.Errorf("Action = %q, want the overdue count", high.Recommendations[0].Action)
	}

	medium := recommend.FromRules(recommend.Inputs{
		Health: insight.HealthScore{
			Score:   70,
			Metrics: insight.HealthMetrics{OverdueTasks: 2, CompletionRate: 60},
		},
	})
	if medium.Total != 1 || medium.Recommendations[0].Priority != recommend.PriorityMedium {
		t.Errorf("2 overdue tasks: got %+v, want one MEDIUM recommendation", medium.Recommendations)
	}
}

func TestFromRules_ReassignmentPairsExtremes(t *testing.T) {
	in := recommend.Inputs{
		Health: insight.HealthScore{Score: 70, Metrics: insight.HealthMetrics{CompletionRate: 60}},
		Workload: insight.WorkloadReport{
			Overloaded:    []insight.MemberLoad{{Name: "Ada", TotalTasks: 12, OverdueTasks: 3}},
			Underutilized: []insight.MemberLoad{{Name: "Ben", TotalTasks: 1}},
		},
	}

	list := recommend.FromRules(in)

	recs := findByCategory(list.Recommendations, recommend.CategoryWorkload)
	if len(recs) != 1 {
		t.Fatalf("workload recommendations = %+v, want one", recs)
	}
	if recs[0].Action != "Reassign 3 tasks from Ada to Ben" {
		t.Errorf("Action = %q, want a 3-task reassignment", recs[0].Action)
	}
}

func TestFromRules_ReassignmentMovesAtLeastTwo(t *testing.T) {
	in := recommend.Inputs{
		Health: insight.HealthScore{Score: 70, Metrics: insight.HealthMetrics{CompletionRate: 60}},
		Workload: insight.WorkloadReport{
			Overloaded:    []insight.MemberLoad{{Name: "Ada", TotalTasks: 5}},
			Underutilized: []insight.MemberLoad{{Name: "Ben"}},
		},
	}

	list := recommend.FromRules(in)

	recs := findByCategory(list.Recommendations, recommend.CategoryWorkload)
	if len(recs) != 1 || !strings.HasPrefix(recs[0].Action, "Reassign 2 tasks") {
		t.Errorf("workload recommendations = %+v, want a 2-task floor", recs)
	}
}

func TestFromRules_OverloadWithoutSpareCapacity(t *testing.T) {
	in := recommend.Inputs{
		Health: insight.HealthScore{Score: 70, Metrics: insight.HealthMetrics{CompletionRate: 60}},
		Workload: insight.WorkloadReport{
			Overloaded: []insight.MemberLoad{
				{Name: "Ada", TotalTasks: 9},
				{Name: "Ben", TotalTasks: 8},
				{Name: "Cam", TotalTasks: 8},
				{Name: "Dee", TotalTasks: 7},
			},
		},
	}

	list := recommend.FromRules(in)

	recs := findByCategory(list.Recommendations, recommend.CategoryWorkload)
	if len(recs) != 1 {
		t.Fatalf("workload recommendations = %+v, want one", recs)
	}
	if !strings.Contains(recs[0].Action, "4 overloaded team member(s): Ada, Ben, Cam") {
		t.Errorf("Action = %q, want count of 4 naming only the top three", recs[0].Action)
	}
}

func TestFromRules_MilestoneActionDependsOnState(t *testing.T) {
	base := insight.HealthScore{Score: 70, Metrics: insight.HealthMetrics{CompletionRate: 60}}

	tests := []struct {
		name       string
		milestone  insight.MilestoneRisk
		wantPrefix string
	}{
		{
			name: "overdue milestone",
			milestone: insight.MilestoneRisk{
				Title: "Launch", Level: insight.RiskCritical, DaysRemaining: intPtr(-4),
			},
			wantPrefix: "URGENT: Milestone 'Launch' is overdue",
		},
		{
			name: "low completion",
			milestone: insight.MilestoneRisk{
				Title: "Launch", Level: insight.RiskHigh, DaysRemaining: intPtr(5), CompletionPct: 30,
			},
			wantPrefix: "Prioritize tasks for milestone 'Launch'",
		},
		{
			name: "needs resources",
			milestone: insight.MilestoneRisk{
				Title: "Launch", Level: insight.RiskHigh, DaysRemaining: intPtr(5), CompletionPct: 70,
			},
			wantPrefix: "Add resources to milestone 'Launch'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := recommend.FromRules(recommend.Inputs{
				Health:     base,
				Milestones: insight.MilestoneRiskReport{Milestones: []insight.MilestoneRisk{tt.milestone}},
			})
			recs := findByCategory(list.Recommendations, recommend.CategoryTimeline)
			if len(recs) != 1 || !strings.HasPrefix(recs[0].Action, tt.wantPrefix) {
				t.Errorf("timeline recommendations = %+v, want action starting %q", recs, tt.wantPrefix)
			}
		})
	}
}

func TestFromRules_SlowingVelocityReportsAbsoluteChange(t *testing.T) {
	in := recommend.Inputs{
		Health:   insight.HealthScore{Score: 70, Metrics: insight.HealthMetrics{CompletionRate: 60}},
		Velocity: insight.VelocityReport{Trend: insight.TrendSlowing, TrendPct: -45.5},
	}

	list := recommend.FromRules(in)

	recs := findByCategory(list.Recommendations, recommend.CategoryProcess)
	if len(recs) != 1 {
		t.Fatalf("process recommendations = %+v, want one", recs)
	}
	if !strings.Contains(recs[0].Reason, "45.5%") {
		t.Errorf("Reason = %q, want the unsigned percentage", recs[0].Reason)
	}
}

func TestFromRules_LowCompletionOnlyWhenQuiet(t *testing.T) {
	quiet := recommend.FromRules(recommend.Inputs{
		Health: insight.HealthScore{Score: 60, Metrics: insight.HealthMetrics{CompletionRate: 10}},
	})
	if quiet.Total != 1 || !strings.Contains(quiet.Recommendations[0].Action, "10.0% done") {
		t.Errorf("quiet project: got %+v, want the completion-focus recommendation", quiet.Recommendations)
	}

	// With three or more findings already queued, the rule stays silent.
	busy := recommend.FromRules(recommend.Inputs{
		Health: insight.HealthScore{Score: 25, Metrics: insight.HealthMetrics{OverdueTasks: 8, CompletionRate: 10}},
		Workload: insight.WorkloadReport{
			Overloaded:    []insight.MemberLoad{{Name: "Ada", TotalTasks: 12}},
			Underutilized: []insight.MemberLoad{{Name: "Ben"}},
		},
	})
	for _, r := range busy.Recommendations {
		if strings.Contains(r.Action, "Focus on completing in-progress tasks") {
			t.Errorf("completion-focus rule fired on a busy project: %+v", busy.Recommendations)
		}
	}
}

func TestFromRules_SortedAndCapped(t *testing.T) {
	in := recommend.Inputs{
		Health: insight.HealthScore{
			Score:   20,
			Metrics: insight.HealthMetrics{OverdueTasks: 9, CompletionRate: 10},
		},
		Workload: insight.WorkloadReport{
			Overloaded:    []insight.MemberLoad{{Name: "Ada", TotalTasks: 12, OverdueTasks: 4}},
			Underutilized: []insight.MemberLoad{{Name: "Ben", TotalTasks: 1}},
		},
		Bottlenecks: insight.BottleneckReport{
			CriticalUsers: []insight.CriticalUser{{Name: "Ada", OverdueCount: 4}},
			LongOverdue:   []insight.LongOverdueTask{{Name: "stale", DaysOverdue: 30}},
			HighPriorityBlocked: []insight.BlockedTask{
				{Name: "hot", Priority: "High", Status: "Blocked"},
			},
		},
		Milestones: insight.MilestoneRiskReport{
			Milestones: []insight.MilestoneRisk{
				{Title: "Launch", Level: insight.RiskCritical, DaysRemaining: intPtr(-2)},
			},
		},
		Velocity: insight.VelocityReport{Trend: insight.TrendSlowing, TrendPct: -50},
	}

	list := recommend.FromRules(in)

	if list.Total != recommend.MaxRuleRecommendations {
		t.Fatalf("Total = %d, want the cap of %d", list.Total, recommend.MaxRuleRecommendations)
	}
	if len(list.Recommendations) != list.Total {
		t.Errorf("Total = %d but %d recommendations", list.Total, len(list.Recommendations))
	}
	for i := 1; i < len(list.Recommendations); i++ {
		if list.Recommendations[i-1].Priority.Order() > list.Recommendations[i].Priority.Order() {
			t.Errorf("recommendations out of priority order at %d: %s after %s",
				i, list.Recommendations[i].Priority, list.Recommendations[i-1].Priority)
		}
	}
	// Seven HIGH findings fire; the MEDIUM velocity note falls off the end.
	for _, r := range list.Recommendations {
		if r.Priority != recommend.PriorityHigh {
			t.Errorf("Priority = %s, want all HIGH after capping", r.Priority)
		}
	}
}
