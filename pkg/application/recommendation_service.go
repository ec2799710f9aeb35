package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/felixgeelhaar/pulse/pkg/domain/ai"
	"github.com/felixgeelhaar/pulse/pkg/domain/insight"
	"github.com/felixgeelhaar/pulse/pkg/domain/recommend"
)

// recommendationSchema is the JSON contract the model must satisfy. Output
// that validates is accepted verbatim; anything else is retried.
const recommendationSchema = `{
	"type": "object",
	"required": ["recommendations"],
	"properties": {
		"recommendations": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["priority", "category", "action", "reason", "expected_impact", "effort"],
				"properties": {
					"priority": {"type": "string", "enum": ["HIGH", "MEDIUM", "LOW"]},
					"category": {"type": "string", "enum": ["WORKLOAD", "TIMELINE", "QUALITY", "TEAM", "PROCESS"]},
					"action": {"type": "string", "minLength": 1},
					"reason": {"type": "string"},
					"expected_impact": {"type": "string"},
					"effort": {"type": "string", "enum": ["LOW", "MEDIUM", "HIGH"]}
				}
			}
		}
	}
}`

// jsonFence matches a fenced markdown block wrapping the model's JSON.
var jsonFence = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*\\})\\s*```")

// RecommendationService produces improvement suggestions for a project,
// either from the deterministic rule battery or from the AI strategy.
type RecommendationService struct {
	analysis *AnalysisService
	provider ai.Provider
	schema   *gojsonschema.Schema

	// MaxAttempts bounds the AI contract retry loop.
	MaxAttempts int
	// MaxRecommendations caps the AI strategy's accepted list.
	MaxRecommendations int
}

func NewRecommendationService(analysis *AnalysisService, provider ai.Provider) (*RecommendationService, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(recommendationSchema))
	if err != nil {
		return nil, fmt.Errorf("compile recommendation schema: %w", err)
	}
	return &RecommendationService{
		analysis:           analysis,
		provider:           provider,
		schema:             schema,
		MaxAttempts:        2,
		MaxRecommendations: 5,
	}, nil
}

// Rules runs the deterministic rule battery against a fresh analysis of the
// project. Never calls the model.
func (s *RecommendationService) Rules(ctx context.Context, projectID string) (recommend.List, error) {
	inputs, err := s.gatherInputs(ctx, projectID)
	if err != nil {
		return recommend.List{}, err
	}
	return recommend.FromRules(inputs), nil
}

// AI asks the model for context-aware recommendations. The response must
// satisfy the JSON contract; malformed output is retried up to MaxAttempts
// and then surfaced as ErrMalformedAIResponse so the caller can fall back to
// Rules.
func (s *RecommendationService) AI(ctx context.Context, projectID string) (recommend.List, error) {
	if s.provider == nil {
		return recommend.List{}, fmt.Errorf("no AI provider configured")
	}

	inputs, err := s.gatherInputs(ctx, projectID)
	if err != nil {
		return recommend.List{}, err
	}
	prompt := s.buildContext(inputs)

	var lastErr error
	for attempt := 0; attempt < s.MaxAttempts; attempt++ {
		resp, err := s.provider.Complete(ctx, ai.CompletionRequest{
			Prompt:      prompt,
			Temperature: 0.3,
		})
		if err != nil {
			return recommend.List{}, fmt.Errorf("AI recommendation generation failed: %w", err)
		}

		recs, err := s.decode(resp.Text)
		if err != nil {
			lastErr = err
			continue
		}
		if len(recs) > s.MaxRecommendations {
			recs = recs[:s.MaxRecommendations]
		}
		return recommend.List{
			Method:          recommend.MethodAI,
			Recommendations: recs,
			Total:           len(recs),
		}, nil
	}
	return recommend.List{}, fmt.Errorf("%w: %v", ErrMalformedAIResponse, lastErr)
}

// decode strips markdown fencing, validates the contract, and unmarshals.
func (s *RecommendationService) decode(raw string) ([]recommend.Recommendation, error) {
	text := strings.TrimSpace(raw)
	if m := jsonFence.FindStringSubmatch(text); m != nil {
		text = m[1]
	}

	result, err := s.schema.Validate(gojsonschema.NewStringLoader(text))
	if err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}
	if !result.Valid() {
		var reasons []string
		for _, desc := range result.Errors() {
			reasons = append(reasons, desc.String())
		}
		return nil, fmt.Errorf("contract violation: %s", strings.Join(reasons, "; "))
	}

	var payload struct {
		Recommendations []recommend.Recommendation `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, err
	}
	return payload.Recommendations, nil
}

// gatherInputs runs the five scoring operations. A project without active
// members still gets recommendations; the workload report is simply empty.
func (s *RecommendationService) gatherInputs(ctx context.Context, projectID string) (recommend.Inputs, error) {
	health, err := s.analysis.ProjectHealth(ctx, projectID)
	if err != nil {
		return recommend.Inputs{}, err
	}
	workload, err := s.analysis.TeamWorkload(ctx, projectID)
	if err != nil && !errors.Is(err, ErrNoTeamMembers) {
		return recommend.Inputs{}, err
	}
	bottlenecks, err := s.analysis.Bottlenecks(ctx, projectID)
	if err != nil {
		return recommend.Inputs{}, err
	}
	milestones, err := s.analysis.MilestoneRisks(ctx, projectID)
	if err != nil {
		return recommend.Inputs{}, err
	}
	velocity, err := s.analysis.Velocity(ctx, projectID, insight.VelocityWindowDays)
	if err != nil {
		return recommend.Inputs{}, err
	}
	return recommend.Inputs{
		Health:      health,
		Workload:    workload,
		Bottlenecks: bottlenecks,
		Milestones:  milestones,
		Velocity:    velocity,
	}, nil
}

// buildContext renders the analysis snapshot into the prompt the model
// answers against.
func (s *RecommendationService) buildContext(in recommend.Inputs) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are a senior project manager analyzing a software development project.

PROJECT HEALTH:
- Overall Score: %d/100
- Status: %s
- Completion Rate: %.1f%%
- Overdue Tasks: %d
- Team Size: %d

TEAM WORKLOAD:
- Balance Status: %s
- Average Tasks/Person: %.1f
- Overloaded Members: %d
- Underutilized Members: %d

`,
		in.Health.Score, in.Health.Status,
		in.Health.Metrics.CompletionRate, in.Health.Metrics.OverdueTasks, in.Health.Metrics.TeamSize,
		in.Workload.Status, in.Workload.Stats.AverageTasks,
		len(in.Workload.Overloaded), len(in.Workload.Underutilized))

	if len(in.Workload.Overloaded) > 0 {
		b.WriteString("OVERLOADED TEAM MEMBERS:\n")
		for _, m := range head(in.Workload.Overloaded, 3) {
			fmt.Fprintf(&b, "- %s: %d tasks (%d overdue)\n", m.Name, m.TotalTasks, m.OverdueTasks)
		}
		b.WriteString("\n")
	}
	if len(in.Workload.Underutilized) > 0 {
		b.WriteString("AVAILABLE/UNDERUTILIZED MEMBERS:\n")
		for _, m := range head(in.Workload.Underutilized, 3) {
			fmt.Fprintf(&b, "- %s: %d tasks\n", m.Name, m.TotalTasks)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, `BOTTLENECKS (Severity: %s):
- Critical Users: %d
- Long Overdue Tasks: %d
- Blocked High Priority: %d

`,
		in.Bottlenecks.Severity,
		in.Bottlenecks.Summary.CriticalUsers,
		in.Bottlenecks.Summary.LongOverdue,
		in.Bottlenecks.Summary.BlockedHighPriority)

	var atRisk []insight.MilestoneRisk
	for _, m := range in.Milestones.Milestones {
		if m.Level.IsElevated() {
			atRisk = append(atRisk, m)
		}
	}
	if len(atRisk) > 0 {
		b.WriteString("AT-RISK MILESTONES:\n")
		for _, m := range head(atRisk, 3) {
			days := "N/A"
			if m.DaysRemaining != nil {
				days = fmt.Sprintf("%d", *m.DaysRemaining)
			}
			fmt.Fprintf(&b, "- %s: %.1f%% complete, %s days left\n", m.Title, m.CompletionPct, days)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, `TEAM VELOCITY:
- Tasks Completed (%d days): %d
- Trend: %s

Based on this data, generate %d specific, actionable recommendations to improve project health.

RESPOND IN THIS EXACT JSON FORMAT:
{
    "recommendations": [
        {
            "priority": "HIGH" | "MEDIUM" | "LOW",
            "category": "WORKLOAD" | "TIMELINE" | "QUALITY" | "TEAM" | "PROCESS",
            "action": "Specific action to take (be detailed)",
            "reason": "Why this is important",
            "expected_impact": "What improvement this will bring",
            "effort": "LOW" | "MEDIUM" | "HIGH"
        }
    ]
}

RULES:
1. Be SPECIFIC: Mention actual user names, task counts, numbers
2. Be ACTIONABLE: Clear actions that can be done immediately
3. Prioritize HIGH for urgent issues affecting delivery
4. Focus on quick wins (LOW effort, HIGH impact) when possible
5. Consider both immediate fixes and long-term improvements
`,
		in.Velocity.PeriodDays, in.Velocity.TasksCompleted, in.Velocity.Trend,
		s.MaxRecommendations)

	return b.String()
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
