package application_test

import (
	"context"
	"strings"
	"testing"

	"github.com/felixgeelhaar/pulse/pkg/application"
	"github.com/felixgeelhaar/pulse/pkg/domain/ai"
	"github.com/felixgeelhaar/pulse/pkg/domain/record"
	"github.com/felixgeelhaar/pulse/pkg/storage"
)

const strugglingProjID = "64b000000000000000000003"

// newPortfolioStore extends the fixture with a struggling second project:
// ten tasks, none finished, eight overdue, no team.
func newPortfolioStore() *storage.MemoryStore {
	store := newFixtureStore()

	store.AddProject(record.Project{ID: strugglingProjID, Name: "Icarus", Status: "ongoing"})
	past := datePtr(now.AddDate(0, 0, -10))
	for i := 0; i < 8; i++ {
		store.AddTask(record.Task{
			ID: "i" + string(rune('0'+i)), ProjectID: strugglingProjID,
			EndDate: past, Status: "IN_PROGRESS",
		})
	}
	store.AddTask(record.Task{ID: "i8", ProjectID: strugglingProjID, Status: "NEW"})
	store.AddTask(record.Task{ID: "i9", ProjectID: strugglingProjID, Status: "NEW"})

	return store
}

func newPortfolio(store *storage.MemoryStore, provider *scriptedProvider) *application.PortfolioService {
	analysis := application.NewAnalysisService(store).WithClock(fixedClock)
	var prov ai.Provider
	if provider != nil {
		prov = provider
	}
	return application.NewPortfolioService(store, analysis, prov).
		WithClock(fixedClock).
		WithLogger(func(string, ...any) {})
}

func TestPortfolioService_Analyze(t *testing.T) {
	svc := newPortfolio(newPortfolioStore(), nil)

	report, err := svc.Analyze(context.Background())
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if report.TotalProjects != 2 {
		t.Errorf("TotalProjects = %d, want 2", report.TotalProjects)
	}
	// Apollo scores 75 (GOOD, bucketed with at-risk); Icarus scores 0.
	if report.PortfolioHealth != 38 {
		t.Errorf("PortfolioHealth = %d, want 38", report.PortfolioHealth)
	}
	if report.Metrics.CriticalProjects != 1 || report.Metrics.AtRiskProjects != 1 {
		t.Errorf("Metrics = %+v, want one critical and one at-risk project", report.Metrics)
	}
	if report.Metrics.TotalTasks != 14 || report.Metrics.TotalOverdue != 9 {
		t.Errorf("Metrics = %+v, want 14 tasks and 9 overdue", report.Metrics)
	}

	// Worst project first.
	if report.Projects[0].ProjectName != "Icarus" {
		t.Errorf("Projects[0] = %s, want Icarus", report.Projects[0].ProjectName)
	}
	if report.Projects[1].Client != "Acme Corp" {
		t.Errorf("Client = %q, want the resolved fixture client", report.Projects[1].Client)
	}

	// One critical project raises the health alert; nine overdue tasks
	// stay under the portfolio-wide threshold.
	if len(report.Alerts) != 1 {
		t.Fatalf("Alerts = %+v, want exactly one", report.Alerts)
	}
	alert := report.Alerts[0]
	if alert.Severity != "HIGH" || alert.Category != "PROJECT_HEALTH" {
		t.Errorf("alert = %+v, want HIGH/PROJECT_HEALTH", alert)
	}

	icarus := report.Projects[0]
	if len(icarus.CriticalIssues) == 0 {
		t.Error("Icarus has no critical issues listed")
	}
}

func TestPortfolioService_Analyze_NoActiveProjects(t *testing.T) {
	store := storage.NewMemoryStore()
	store.AddProject(record.Project{ID: projectID, Name: "Done", Status: "completed"})

	svc := newPortfolio(store, nil)

	_, err := svc.Analyze(context.Background())
	if err != application.ErrNoActiveProjects {
		t.Errorf("Analyze() error = %v, want ErrNoActiveProjects", err)
	}
}

func TestPortfolioService_Analyze_SkipsFailingProject(t *testing.T) {
	store := newPortfolioStore()
	// A document with a corrupt ID cannot be analyzed; the report must
	// carry on without it.
	store.AddProject(record.Project{ID: "corrupt", Name: "Broken", Status: "active"})

	var logged []string
	analysis := application.NewAnalysisService(store).WithClock(fixedClock)
	svc := application.NewPortfolioService(store, analysis, nil).
		WithClock(fixedClock).
		WithLogger(func(format string, args ...any) {
			logged = append(logged, format)
		})

	report, err := svc.Analyze(context.Background())
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if len(report.Projects) != 2 {
		t.Errorf("Projects = %d, want the two analyzable ones", len(report.Projects))
	}
	if len(logged) != 1 || !strings.Contains(logged[0], "skipping project") {
		t.Errorf("logged = %v, want one skip warning", logged)
	}
}

func TestPortfolioService_Insights_RulesWithoutProvider(t *testing.T) {
	svc := newPortfolio(newPortfolioStore(), nil)

	report, err := svc.Analyze(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	result := svc.Insights(context.Background(), report)

	if result.Method != "rules" {
		t.Errorf("Method = %q, want rules", result.Method)
	}
	if !strings.Contains(result.Insights.ExecutiveSummary, "requires immediate attention") {
		t.Errorf("ExecutiveSummary = %q, want the low-health wording", result.Insights.ExecutiveSummary)
	}
	if !strings.Contains(result.Insights.ExecutiveSummary, "1 project(s) are in critical state.") {
		t.Errorf("ExecutiveSummary = %q, want the critical-count suffix", result.Insights.ExecutiveSummary)
	}
	found := false
	for _, action := range result.Insights.ImmediateActions {
		if strings.Contains(action, "emergency review") {
			found = true
		}
	}
	if !found {
		t.Errorf("ImmediateActions = %v, want an emergency review entry", result.Insights.ImmediateActions)
	}
}

func TestPortfolioService_Insights_AIPath(t *testing.T) {
	provider := (&scriptedProvider{}).reply("```json\n" + `{
		"executive_summary": "Portfolio needs work.",
		"key_insights": ["Icarus is failing"],
		"immediate_actions": ["Review Icarus"],
		"positive_trends": []
	}` + "\n```")
	svc := newPortfolio(newPortfolioStore(), provider)

	report, err := svc.Analyze(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	result := svc.Insights(context.Background(), report)

	if result.Method != "ai" {
		t.Errorf("Method = %q, want ai", result.Method)
	}
	if result.Insights.ExecutiveSummary != "Portfolio needs work." {
		t.Errorf("ExecutiveSummary = %q", result.Insights.ExecutiveSummary)
	}
}

func TestPortfolioService_Insights_UnparsableAIFallsBackToRules(t *testing.T) {
	provider := (&scriptedProvider{}).reply("I think the portfolio is in trouble.")
	svc := newPortfolio(newPortfolioStore(), provider)

	report, err := svc.Analyze(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	result := svc.Insights(context.Background(), report)

	if result.Method != "rules" {
		t.Errorf("Method = %q, want the rules fallback", result.Method)
	}
}
