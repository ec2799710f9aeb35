package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/pulse/pkg/application"
	"github.com/felixgeelhaar/pulse/pkg/domain/insight"
	"github.com/felixgeelhaar/pulse/pkg/domain/record"
)

func newAnalysis() *application.AnalysisService {
	return application.NewAnalysisService(newFixtureStore()).WithClock(fixedClock)
}

func TestAnalysisService_ProjectHealth(t *testing.T) {
	svc := newAnalysis()

	score, err := svc.ProjectHealth(context.Background(), projectID)
	if err != nil {
		t.Fatalf("ProjectHealth() error = %v", err)
	}

	// Two of four tasks done (20), one overdue task (25), even assignment
	// (20), and a full week of completions for a team of two (10).
	if score.Score != 75 {
		t.Errorf("Score = %d, want 75", score.Score)
	}
	if score.Status != insight.HealthGood {
		t.Errorf("Status = %s, want %s", score.Status, insight.HealthGood)
	}
	if score.ProjectName != "Apollo" || score.ProjectStatus != "active" {
		t.Errorf("project echo = %q/%q, want Apollo/active", score.ProjectName, score.ProjectStatus)
	}
	if score.Metrics.TeamSize != 2 {
		t.Errorf("TeamSize = %d, want 2", score.Metrics.TeamSize)
	}
	if score.Metrics.OverdueTasks != 1 {
		t.Errorf("OverdueTasks = %d, want 1", score.Metrics.OverdueTasks)
	}
}

func TestAnalysisService_ProjectHealth_InvalidID(t *testing.T) {
	svc := newAnalysis()

	if _, err := svc.ProjectHealth(context.Background(), "not-an-id"); err == nil {
		t.Error("ProjectHealth() with malformed ID should fail")
	}
}

func TestAnalysisService_ProjectHealth_UnknownProject(t *testing.T) {
	svc := newAnalysis()

	_, err := svc.ProjectHealth(context.Background(), "64b0000000000000000000ff")
	if !errors.Is(err, record.ErrNotFound) {
		t.Errorf("ProjectHealth() error = %v, want ErrNotFound", err)
	}
}

func TestAnalysisService_TeamWorkload(t *testing.T) {
	svc := newAnalysis()

	report, err := svc.TeamWorkload(context.Background(), projectID)
	if err != nil {
		t.Fatalf("TeamWorkload() error = %v", err)
	}

	if report.TeamSize != 2 {
		t.Errorf("TeamSize = %d, want 2", report.TeamSize)
	}
	if report.Status != insight.BalanceBalanced {
		t.Errorf("Status = %s, want %s", report.Status, insight.BalanceBalanced)
	}
	// Only the two open tasks count.
	if report.Stats.TotalActiveTasks != 2 {
		t.Errorf("TotalActiveTasks = %d, want 2", report.Stats.TotalActiveTasks)
	}
	for _, load := range report.All {
		if load.UserID == bobID {
			if load.OverdueTasks != 1 || load.EstimatedHours != 2 {
				t.Errorf("bob's load = %+v, want 1 overdue and 2 estimated hours", load)
			}
		}
	}
}

func TestAnalysisService_TeamWorkload_NoMembers(t *testing.T) {
	store := newFixtureStore()
	store.AddProject(record.Project{ID: emptyProjID, Name: "Ghost", Status: "active"})
	svc := application.NewAnalysisService(store).WithClock(fixedClock)

	_, err := svc.TeamWorkload(context.Background(), emptyProjID)
	if !errors.Is(err, application.ErrNoTeamMembers) {
		t.Errorf("TeamWorkload() error = %v, want ErrNoTeamMembers", err)
	}
}

func TestAnalysisService_Bottlenecks(t *testing.T) {
	svc := newAnalysis()

	report, err := svc.Bottlenecks(context.Background(), projectID)
	if err != nil {
		t.Fatalf("Bottlenecks() error = %v", err)
	}

	// The single two-day-overdue task triggers neither the critical-user
	// nor the long-overdue scan. The milestone scan fires: among open
	// tasks the Beta milestone is at 0% with five days left.
	if len(report.CriticalUsers) != 0 || len(report.LongOverdue) != 0 || len(report.HighPriorityBlocked) != 0 {
		t.Errorf("unexpected scan findings: %+v", report)
	}
	if len(report.MilestoneRisks) != 1 || report.MilestoneRisks[0].RiskLevel != insight.RiskMedium {
		t.Fatalf("MilestoneRisks = %+v, want one MEDIUM entry", report.MilestoneRisks)
	}
	if report.SeverityScore != 4 || report.Severity != insight.SeverityMedium {
		t.Errorf("severity = %s (%d), want %s (4)", report.Severity, report.SeverityScore, insight.SeverityMedium)
	}
}

func TestAnalysisService_MilestoneRisks(t *testing.T) {
	svc := newAnalysis()

	report, err := svc.MilestoneRisks(context.Background(), projectID)
	if err != nil {
		t.Fatalf("MilestoneRisks() error = %v", err)
	}

	if report.TotalMilestones != 1 {
		t.Fatalf("TotalMilestones = %d, want 1", report.TotalMilestones)
	}
	m := report.Milestones[0]
	// Five days out at 50% complete, with half the tasks overdue.
	if m.Level != insight.RiskHigh {
		t.Errorf("Level = %s, want %s", m.Level, insight.RiskHigh)
	}
	if m.CompletionPct != 50 {
		t.Errorf("CompletionPct = %v, want 50", m.CompletionPct)
	}
	if m.TotalTasks != 2 || m.CompletedTasks != 1 || m.OverdueTasks != 1 {
		t.Errorf("task counts = %d/%d/%d, want 2/1/1", m.TotalTasks, m.CompletedTasks, m.OverdueTasks)
	}
}

func TestAnalysisService_Velocity(t *testing.T) {
	svc := newAnalysis()

	report, err := svc.Velocity(context.Background(), projectID, 0)
	if err != nil {
		t.Fatalf("Velocity() error = %v", err)
	}

	if report.PeriodDays != insight.VelocityWindowDays {
		t.Errorf("PeriodDays = %d, want the %d-day default", report.PeriodDays, insight.VelocityWindowDays)
	}
	if report.TasksCompleted != 2 {
		t.Errorf("TasksCompleted = %d, want 2", report.TasksCompleted)
	}
	if report.TeamSize != 2 {
		t.Errorf("TeamSize = %d, want 2", report.TeamSize)
	}
}
