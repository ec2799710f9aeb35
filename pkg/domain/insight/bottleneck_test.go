package insight_test

import (
	"testing"

	"github.com/felixgeelhaar/pulse/pkg/domain/insight"
	"github.com/felixgeelhaar/pulse/pkg/domain/record"
)

func TestComputeBottlenecks_AllScans(t *testing.T) {
	names := map[string]string{"u1": "Jane Doe"}
	overdue5 := datePtr(now.AddDate(0, 0, -5))
	overdue20 := datePtr(now.AddDate(0, 0, -20))

	tasks := []record.Task{
		{ID: "t1", Name: "t1", AssignedTo: []string{"u1"}, EndDate: overdue5, Status: "IN_PROGRESS"},
		{ID: "t2", Name: "t2", AssignedTo: []string{"u1"}, EndDate: overdue5, Status: "IN_PROGRESS"},
		{ID: "t3", Name: "t3", AssignedTo: []string{"u1"}, EndDate: overdue5, Status: "IN_PROGRESS"},
		// Assignee unknown to the resolver: counts for the long-overdue
		// scan but not toward a critical user.
		{ID: "t4", Name: "t4", AssignedTo: []string{"u2"}, EndDate: overdue20, Status: "IN_PROGRESS"},
		{ID: "t5", Name: "t5", Priority: "High", Status: "Blocked"},
		{ID: "t6", Name: "t6", MilestoneID: "m1", Status: "IN_PROGRESS"},
	}
	milestones := []record.Milestone{
		{ID: "m1", Title: "Launch", Active: true, EndDate: datePtr(now.AddDate(0, 0, 2))},
		{ID: "m2", Title: "Dormant", Active: false, EndDate: datePtr(now.AddDate(0, 0, 2))},
	}

	report := insight.ComputeBottlenecks(tasks, milestones, names, now)

	if len(report.CriticalUsers) != 1 {
		t.Fatalf("CriticalUsers = %+v, want one entry", report.CriticalUsers)
	}
	cu := report.CriticalUsers[0]
	if cu.UserID != "u1" || cu.Name != "Jane Doe" || cu.OverdueCount != 3 {
		t.Errorf("CriticalUsers[0] = %+v, want u1/Jane Doe with 3 overdue", cu)
	}

	if len(report.LongOverdue) != 1 || report.LongOverdue[0].TaskID != "t4" {
		t.Errorf("LongOverdue = %+v, want just t4", report.LongOverdue)
	}
	if report.LongOverdue[0].DaysOverdue != 20 {
		t.Errorf("DaysOverdue = %d, want 20", report.LongOverdue[0].DaysOverdue)
	}

	if len(report.HighPriorityBlocked) != 1 || report.HighPriorityBlocked[0].TaskID != "t5" {
		t.Errorf("HighPriorityBlocked = %+v, want just t5", report.HighPriorityBlocked)
	}

	if len(report.MilestoneRisks) != 1 {
		t.Fatalf("MilestoneRisks = %+v, want one entry", report.MilestoneRisks)
	}
	mr := report.MilestoneRisks[0]
	if mr.MilestoneID != "m1" || mr.DaysUntil != 2 || mr.RiskLevel != insight.RiskHigh {
		t.Errorf("MilestoneRisks[0] = %+v, want m1 two days out at HIGH risk", mr)
	}
	if mr.CompletionPct != 0 || mr.TotalTasks != 1 {
		t.Errorf("milestone completion = %v%% of %d tasks, want 0%% of 1", mr.CompletionPct, mr.TotalTasks)
	}

	// 3 + 2 + 2 + 4 with one finding per scan.
	if report.SeverityScore != 11 {
		t.Errorf("SeverityScore = %d, want 11", report.SeverityScore)
	}
	if report.Severity != insight.SeverityHigh {
		t.Errorf("Severity = %s, want %s", report.Severity, insight.SeverityHigh)
	}
	want := insight.BottleneckSummary{CriticalUsers: 1, LongOverdue: 1, BlockedHighPriority: 1, AtRiskMilestones: 1}
	if report.Summary != want {
		t.Errorf("Summary = %+v, want %+v", report.Summary, want)
	}
}

func TestComputeBottlenecks_BelowCriticalUserThreshold(t *testing.T) {
	names := map[string]string{"u1": "Jane Doe"}
	past := datePtr(now.AddDate(0, 0, -2))

	tasks := []record.Task{
		{ID: "t1", AssignedTo: []string{"u1"}, EndDate: past},
		{ID: "t2", AssignedTo: []string{"u1"}, EndDate: past},
	}

	report := insight.ComputeBottlenecks(tasks, nil, names, now)

	if len(report.CriticalUsers) != 0 {
		t.Errorf("CriticalUsers = %+v, want none below three overdue", report.CriticalUsers)
	}
}

func TestComputeBottlenecks_LongOverdueSortedWorstFirst(t *testing.T) {
	tasks := []record.Task{
		{ID: "t1", EndDate: datePtr(now.AddDate(0, 0, -16))},
		{ID: "t2", EndDate: datePtr(now.AddDate(0, 0, -30))},
		{ID: "t3", EndDate: datePtr(now.AddDate(0, 0, -14))},
	}

	report := insight.ComputeBottlenecks(tasks, nil, nil, now)

	if len(report.LongOverdue) != 2 {
		t.Fatalf("LongOverdue count = %d, want 2 (14 days is not beyond the threshold)", len(report.LongOverdue))
	}
	if report.LongOverdue[0].TaskID != "t2" || report.LongOverdue[1].TaskID != "t1" {
		t.Errorf("LongOverdue order = %s, %s; want t2 then t1",
			report.LongOverdue[0].TaskID, report.LongOverdue[1].TaskID)
	}
}

func TestComputeBottlenecks_QuietProject(t *testing.T) {
	future := datePtr(now.AddDate(0, 0, 10))
	tasks := []record.Task{
		{ID: "t1", EndDate: future, Priority: "Low", Status: "IN_PROGRESS"},
	}

	report := insight.ComputeBottlenecks(tasks, nil, nil, now)

	if report.SeverityScore != 0 || report.Severity != insight.SeverityLow {
		t.Errorf("severity = %s (%d), want %s (0)", report.Severity, report.SeverityScore, insight.SeverityLow)
	}
	if report.CriticalUsers == nil || report.LongOverdue == nil ||
		report.HighPriorityBlocked == nil || report.MilestoneRisks == nil {
		t.Error("scan result slices should be empty, not nil")
	}
	if report.Severity.IsElevated() {
		t.Error("IsElevated() = true for a quiet project")
	}
}

func TestComputeBottlenecks_MilestoneWithProgressNotFlagged(t *testing.T) {
	tasks := []record.Task{
		{ID: "t1", MilestoneID: "m1", Finished: true},
		{ID: "t2", MilestoneID: "m1", Finished: true},
		{ID: "t3", MilestoneID: "m1"},
	}
	milestones := []record.Milestone{
		{ID: "m1", Title: "Launch", Active: true, EndDate: datePtr(now.AddDate(0, 0, 2))},
	}

	report := insight.ComputeBottlenecks(tasks, milestones, nil, now)

	// 66.7% complete clears the 30% floor even with two days left.
	if len(report.MilestoneRisks) != 0 {
		t.Errorf("MilestoneRisks = %+v, want none", report.MilestoneRisks)
	}
}
