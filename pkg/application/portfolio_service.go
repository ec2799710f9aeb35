package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/felixgeelhaar/pulse/pkg/domain/ai"
	"github.com/felixgeelhaar/pulse/pkg/domain/insight"
	"github.com/felixgeelhaar/pulse/pkg/domain/record"
)

// Cross-project overload thresholds: a member working on at least this many
// projects with at least this many tasks in total.
const (
	overloadProjectCount = 3
	overloadTaskCount    = 10
)

// portfolioOverdueAlert is the portfolio-wide overdue count that raises an
// alert.
const portfolioOverdueAlert = 20

// ProjectSummary is the per-project slice of a portfolio report.
type ProjectSummary struct {
	ProjectID      string               `json:"project_id"`
	ProjectName    string               `json:"project_name"`
	Client         string               `json:"client"`
	HealthScore    int                  `json:"health_score"`
	HealthStatus   insight.HealthStatus `json:"health_status"`
	Metrics        insight.HealthMetrics `json:"metrics"`
	CompletionRate float64              `json:"completion_rate"`
	OverdueTasks   int                  `json:"overdue_tasks"`
	TeamSize       int                  `json:"team_size"`
	VelocityPerDay float64              `json:"velocity"`
	VelocityTrend  insight.Trend        `json:"velocity_trend"`
	CriticalIssues []string             `json:"critical_issues"`
}

// PortfolioMetrics aggregates counts across every analyzed project.
type PortfolioMetrics struct {
	TotalTasks        int     `json:"total_tasks"`
	TotalCompleted    int     `json:"total_completed"`
	TotalOverdue      int     `json:"total_overdue"`
	TotalTeamMembers  int     `json:"total_team_members"`
	AvgCompletionRate float64 `json:"avg_completion_rate"`
	CriticalProjects  int     `json:"critical_projects"`
	AtRiskProjects    int     `json:"at_risk_projects"`
	HealthyProjects   int     `json:"healthy_projects"`
}

// PortfolioAlert is one threshold-triggered warning.
type PortfolioAlert struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Category string `json:"category"`
}

// OverloadedMember is a person stretched across too many projects.
type OverloadedMember struct {
	Name         string   `json:"name"`
	ProjectCount int      `json:"project_count"`
	Projects     []string `json:"projects"`
	TotalTasks   int      `json:"total_tasks"`
	OverdueTasks int      `json:"overdue_tasks"`
}

// ResourceInsights carries the cross-project staffing findings.
type ResourceInsights struct {
	Overloaded []OverloadedMember `json:"overloaded_members"`
}

// PortfolioReport is the aggregated view over every active project.
type PortfolioReport struct {
	TotalProjects   int              `json:"total_projects"`
	GeneratedAt     time.Time        `json:"timestamp"`
	PortfolioHealth int              `json:"portfolio_health"`
	Projects        []ProjectSummary `json:"projects"`
	Metrics         PortfolioMetrics `json:"aggregated_metrics"`
	Alerts          []PortfolioAlert `json:"critical_alerts"`
	Resources       ResourceInsights `json:"resource_insights"`
}

// PortfolioInsights is the executive narrative over a portfolio report.
type PortfolioInsights struct {
	ExecutiveSummary string   `json:"executive_summary"`
	KeyInsights      []string `json:"key_insights"`
	ImmediateActions []string `json:"immediate_actions"`
	PositiveTrends   []string `json:"positive_trends"`
}

// InsightsResult wraps generated insights with provenance.
type InsightsResult struct {
	Insights    PortfolioInsights `json:"insights"`
	GeneratedAt time.Time         `json:"generated_at"`
	Method      string            `json:"method"`
}

// PortfolioService aggregates per-project analyses into one portfolio view.
// A failing project is skipped with a logged warning; one bad project never
// takes down the whole report.
type PortfolioService struct {
	store    record.Store
	analysis *AnalysisService
	provider ai.Provider
	now      func() time.Time
	logf     func(format string, args ...any)
}

// NewPortfolioService builds the aggregator. The provider may be nil; the
// insights generation then uses rules only.
func NewPortfolioService(store record.Store, analysis *AnalysisService, provider ai.Provider) *PortfolioService {
	return &PortfolioService{
		store:    store,
		analysis: analysis,
		provider: provider,
		now:      time.Now,
		logf:     log.Printf,
	}
}

// WithClock overrides the time source. Tests use this to pin "now".
func (s *PortfolioService) WithClock(now func() time.Time) *PortfolioService {
	s.now = now
	return s
}

// WithLogger overrides the skip-warning sink.
func (s *PortfolioService) WithLogger(logf func(format string, args ...any)) *PortfolioService {
	s.logf = logf
	return s
}

// Analyze runs the five scoring operations on every active project and
// aggregates the results.
func (s *PortfolioService) Analyze(ctx context.Context) (*PortfolioReport, error) {
	projects, err := s.store.ActiveProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("portfolio analysis: %w", err)
	}
	if len(projects) == 0 {
		return nil, ErrNoActiveProjects
	}

	report := &PortfolioReport{
		TotalProjects: len(projects),
		GeneratedAt:   s.now(),
		Projects:      []ProjectSummary{},
		Alerts:        []PortfolioAlert{},
		Resources:     ResourceInsights{Overloaded: []OverloadedMember{}},
	}

	type memberTally struct {
		name     string
		projects []string
		tasks    int
		overdue  int
	}
	tallies := map[string]*memberTally{}
	var healthScores []int

	for _, project := range projects {
		summary, workload, err := s.analyzeProject(ctx, project)
		if err != nil {
			s.logf("portfolio: skipping project %s: %v", project.ID, err)
			continue
		}

		healthScores = append(healthScores, summary.HealthScore)
		switch summary.HealthStatus {
		case insight.HealthCritical:
			report.Metrics.CriticalProjects++
		case insight.HealthAtRisk, insight.HealthGood:
			report.Metrics.AtRiskProjects++
		default:
			report.Metrics.HealthyProjects++
		}

		report.Metrics.TotalTasks += summary.Metrics.TotalTasks
		report.Metrics.TotalCompleted += summary.Metrics.CompletedTasks
		report.Metrics.TotalOverdue += summary.Metrics.OverdueTasks
		report.Metrics.TotalTeamMembers += summary.Metrics.TeamSize

		for _, member := range workload.All {
			t, ok := tallies[member.UserID]
			if !ok {
				t = &memberTally{name: member.Name}
				tallies[member.UserID] = t
			}
			t.projects = append(t.projects, summary.ProjectName)
			t.tasks += member.TotalTasks
			t.overdue += member.OverdueTasks
		}

		report.Projects = append(report.Projects, summary)
	}

	if len(healthScores) > 0 {
		sum := 0
		for _, score := range healthScores {
			sum += score
		}
		report.PortfolioHealth = int(math.Round(float64(sum) / float64(len(healthScores))))
	}
	if report.Metrics.TotalTasks > 0 {
		rate := float64(report.Metrics.TotalCompleted) / float64(report.Metrics.TotalTasks) * 100
		report.Metrics.AvgCompletionRate = math.Round(rate*10) / 10
	}

	// Deterministic order for the overload scan.
	var userIDs []string
	for id := range tallies {
		userIDs = append(userIDs, id)
	}
	sort.Strings(userIDs)
	for _, id := range userIDs {
		t := tallies[id]
		if len(t.projects) >= overloadProjectCount && t.tasks >= overloadTaskCount {
			report.Resources.Overloaded = append(report.Resources.Overloaded, OverloadedMember{
				Name:         t.name,
				ProjectCount: len(t.projects),
				Projects:     t.projects,
				TotalTasks:   t.tasks,
				OverdueTasks: t.overdue,
			})
		}
	}

	if report.Metrics.CriticalProjects > 0 {
		report.Alerts = append(report.Alerts, PortfolioAlert{
			Severity: "HIGH",
			Message:  fmt.Sprintf("%d project(s) in critical state", report.Metrics.CriticalProjects),
			Category: "PROJECT_HEALTH",
		})
	}
	if report.Metrics.TotalOverdue > portfolioOverdueAlert {
		report.Alerts = append(report.Alerts, PortfolioAlert{
			Severity: "HIGH",
			Message:  fmt.Sprintf("%d overdue tasks across portfolio", report.Metrics.TotalOverdue),
			Category: "TIMELINE",
		})
	}
	if len(report.Resources.Overloaded) > 0 {
		report.Alerts = append(report.Alerts, PortfolioAlert{
			Severity: "MEDIUM",
			Message:  fmt.Sprintf("%d team member(s) overloaded across multiple projects", len(report.Resources.Overloaded)),
			Category: "RESOURCES",
		})
	}

	// Worst first.
	sort.SliceStable(report.Projects, func(i, j int) bool {
		return report.Projects[i].HealthScore < report.Projects[j].HealthScore
	})

	return report, nil
}

// analyzeProject builds one project's summary. The workload report is
// returned alongside for the cross-project overload tally; a project with no
// team simply contributes no members.
func (s *PortfolioService) analyzeProject(ctx context.Context, project record.Project) (ProjectSummary, insight.WorkloadReport, error) {
	health, err := s.analysis.ProjectHealth(ctx, project.ID)
	if err != nil {
		return ProjectSummary{}, insight.WorkloadReport{}, err
	}
	workload, err := s.analysis.TeamWorkload(ctx, project.ID)
	if err != nil && !errors.Is(err, ErrNoTeamMembers) {
		return ProjectSummary{}, insight.WorkloadReport{}, err
	}
	bottlenecks, err := s.analysis.Bottlenecks(ctx, project.ID)
	if err != nil {
		return ProjectSummary{}, insight.WorkloadReport{}, err
	}
	milestones, err := s.analysis.MilestoneRisks(ctx, project.ID)
	if err != nil {
		return ProjectSummary{}, insight.WorkloadReport{}, err
	}
	velocity, err := s.analysis.Velocity(ctx, project.ID, insight.VelocityWindowDays)
	if err != nil {
		return ProjectSummary{}, insight.WorkloadReport{}, err
	}

	summary := ProjectSummary{
		ProjectID:      project.ID,
		ProjectName:    projectDisplayName(project),
		Client:         s.clientName(ctx, project),
		HealthScore:    health.Score,
		HealthStatus:   health.Status,
		Metrics:        health.Metrics,
		CompletionRate: health.Metrics.CompletionRate,
		OverdueTasks:   health.Metrics.OverdueTasks,
		TeamSize:       health.Metrics.TeamSize,
		VelocityPerDay: velocity.PerDay,
		VelocityTrend:  velocity.Trend,
		CriticalIssues: []string{},
	}

	if health.Score < 50 {
		summary.CriticalIssues = append(summary.CriticalIssues,
			fmt.Sprintf("Health score critically low: %d/100", health.Score))
	}
	if health.Metrics.OverdueTasks > 5 {
		summary.CriticalIssues = append(summary.CriticalIssues,
			fmt.Sprintf("%d tasks overdue", health.Metrics.OverdueTasks))
	}
	if bottlenecks.Severity.IsElevated() {
		summary.CriticalIssues = append(summary.CriticalIssues,
			fmt.Sprintf("Bottleneck severity: %s", bottlenecks.Severity))
	}
	atRisk := 0
	for _, m := range milestones.Milestones {
		if m.Level.IsElevated() {
			atRisk++
		}
	}
	if atRisk > 0 {
		summary.CriticalIssues = append(summary.CriticalIssues,
			fmt.Sprintf("%d milestones at risk", atRisk))
	}

	return summary, workload, nil
}

func projectDisplayName(p record.Project) string {
	if p.Name == "" {
		return "Unnamed Project"
	}
	return p.Name
}

func (s *PortfolioService) clientName(ctx context.Context, p record.Project) string {
	if p.ClientID == "" {
		return "No Client"
	}
	name, err := s.store.ClientName(ctx, p.ClientID)
	if err != nil {
		return "Unknown"
	}
	return name
}

// Insights generates the executive narrative for a portfolio report. With a
// provider configured it asks the model and falls back to the rule-based
// narrative on any failure; without one it goes straight to the rules.
func (s *PortfolioService) Insights(ctx context.Context, report *PortfolioReport) *InsightsResult {
	if s.provider == nil {
		return s.RuleBasedInsights(report)
	}

	resp, err := s.provider.Complete(ctx, ai.CompletionRequest{
		Prompt:      s.insightsContext(report),
		Temperature: 0.3,
	})
	if err != nil {
		s.logf("portfolio: AI insights failed, using rules: %v", err)
		return s.RuleBasedInsights(report)
	}

	text := strings.TrimSpace(resp.Text)
	if m := jsonFence.FindStringSubmatch(text); m != nil {
		text = m[1]
	}
	var insights PortfolioInsights
	if err := json.Unmarshal([]byte(text), &insights); err != nil {
		s.logf("portfolio: AI insights unparsable, using rules: %v", err)
		return s.RuleBasedInsights(report)
	}
	return &InsightsResult{
		Insights:    insights,
		GeneratedAt: s.now(),
		Method:      "ai",
	}
}

// RuleBasedInsights derives the executive narrative deterministically.
func (s *PortfolioService) RuleBasedInsights(report *PortfolioReport) *InsightsResult {
	insights := PortfolioInsights{
		KeyInsights:      []string{},
		ImmediateActions: []string{},
		PositiveTrends:   []string{},
	}

	health := report.PortfolioHealth
	critical := report.Metrics.CriticalProjects

	switch {
	case health >= 70:
		insights.ExecutiveSummary = fmt.Sprintf("Portfolio is performing well with an average health score of %d/100. ", health)
	case health >= 50:
		insights.ExecutiveSummary = fmt.Sprintf("Portfolio shows moderate health (%d/100) with some areas requiring attention. ", health)
	default:
		insights.ExecutiveSummary = fmt.Sprintf("Portfolio requires immediate attention with health score of %d/100. ", health)
	}
	if critical > 0 {
		insights.ExecutiveSummary += fmt.Sprintf("%d project(s) are in critical state.", critical)
	}

	if report.Metrics.TotalOverdue > portfolioOverdueAlert {
		insights.KeyInsights = append(insights.KeyInsights,
			fmt.Sprintf("High volume of overdue tasks: %d tasks across portfolio", report.Metrics.TotalOverdue))
	}
	if critical > 0 {
		var names []string
		for _, p := range head(report.Projects, 3) {
			names = append(names, p.ProjectName)
		}
		insights.KeyInsights = append(insights.KeyInsights,
			fmt.Sprintf("Critical projects requiring attention: %s", strings.Join(names, ", ")))
	}
	if n := len(report.Resources.Overloaded); n > 0 {
		insights.KeyInsights = append(insights.KeyInsights,
			fmt.Sprintf("%d team member(s) working across 3+ projects simultaneously", n))
	}

	if critical > 0 {
		insights.ImmediateActions = append(insights.ImmediateActions,
			fmt.Sprintf("Conduct emergency review of %d critical project(s)", critical))
	}
	if report.Metrics.TotalOverdue > 10 {
		insights.ImmediateActions = append(insights.ImmediateActions,
			"Organize sprint to clear overdue task backlog")
	}
	if len(report.Resources.Overloaded) > 0 {
		insights.ImmediateActions = append(insights.ImmediateActions,
			"Reassess resource allocation across projects")
	}

	if report.Metrics.HealthyProjects > 0 {
		insights.PositiveTrends = append(insights.PositiveTrends,
			fmt.Sprintf("%d project(s) maintaining excellent health", report.Metrics.HealthyProjects))
	}
	if report.Metrics.AvgCompletionRate > 60 {
		insights.PositiveTrends = append(insights.PositiveTrends,
			fmt.Sprintf("Strong completion rate: %.1f%%", report.Metrics.AvgCompletionRate))
	}

	return &InsightsResult{
		Insights:    insights,
		GeneratedAt: s.now(),
		Method:      "rules",
	}
}

// insightsContext renders the portfolio report into the executive prompt.
func (s *PortfolioService) insightsContext(report *PortfolioReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are a senior portfolio manager analyzing %d software projects.

PORTFOLIO OVERVIEW:
- Total Projects: %d
- Portfolio Health: %d/100
- Total Tasks: %d
- Completion Rate: %.1f%%
- Overdue Tasks: %d
- Total Team Members: %d

PROJECT STATUS DISTRIBUTION:
- Critical: %d
- At Risk: %d
- Healthy: %d

TOP 5 PROJECTS NEEDING ATTENTION:
`,
		report.TotalProjects, report.TotalProjects, report.PortfolioHealth,
		report.Metrics.TotalTasks, report.Metrics.AvgCompletionRate,
		report.Metrics.TotalOverdue, report.Metrics.TotalTeamMembers,
		report.Metrics.CriticalProjects, report.Metrics.AtRiskProjects,
		report.Metrics.HealthyProjects)

	for i, project := range head(report.Projects, 5) {
		fmt.Fprintf(&b, "\n%d. %s (Health: %d/100)\n", i+1, project.ProjectName, project.HealthScore)
		fmt.Fprintf(&b, "   - Status: %s\n", project.HealthStatus)
		fmt.Fprintf(&b, "   - Completion: %.1f%%\n", project.CompletionRate)
		fmt.Fprintf(&b, "   - Overdue: %d tasks\n", project.OverdueTasks)
		if len(project.CriticalIssues) > 0 {
			fmt.Fprintf(&b, "   - Issues: %s\n", strings.Join(head(project.CriticalIssues, 2), ", "))
		}
	}

	if len(report.Resources.Overloaded) > 0 {
		b.WriteString("\nCROSS-PROJECT RESOURCE ISSUES:\n")
		for _, member := range head(report.Resources.Overloaded, 3) {
			fmt.Fprintf(&b, "- %s: Working on %d projects (%d tasks)\n",
				member.Name, member.ProjectCount, member.TotalTasks)
		}
	}

	b.WriteString(`
Generate an executive summary in JSON format:
{
    "executive_summary": "2-3 sentence overview of portfolio health",
    "key_insights": [
        "Insight 1: Specific observation with data",
        "Insight 2: Pattern or trend identified",
        "Insight 3: Resource or bottleneck issue"
    ],
    "immediate_actions": [
        "Action 1: Specific, actionable recommendation",
        "Action 2: Resource reallocation suggestion",
        "Action 3: Risk mitigation step"
    ],
    "positive_trends": [
        "Positive trend 1",
        "Positive trend 2"
    ]
}

Focus on:
1. Specific numbers and project names
2. Actionable insights (not vague advice)
3. Resource allocation opportunities
4. Risk mitigation priorities
`)

	return b.String()
}
