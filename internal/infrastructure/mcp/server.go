// Package mcp exposes the analysis operations to MCP clients. Every tool is
// read-only; the server never writes to the store.
package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/pulse/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/pulse/pkg/application"
	"github.com/felixgeelhaar/pulse/pkg/domain/record"
)

var (
	Version     = "dev"
	BuildCommit = "unknown"
	BuildDate   = "unknown"
)

type Server struct {
	mcpServer      *mcp.Server
	analysis       *application.AnalysisService
	recommendation *application.RecommendationService
	agent          *application.AgentService
	portfolio      *application.PortfolioService
}

// mcpErr returns a user-friendly error for MCP clients. Internal details are
// omitted.
func mcpErr(friendly string) error {
	return fmt.Errorf("%s", friendly)
}

func NewServer(services *wiring.AppServices) *Server {
	info := mcp.ServerInfo{
		Name:    "pulse",
		Version: Version,
	}

	s := &Server{
		mcpServer: mcp.NewServer(info,
			mcp.WithTitle("Pulse MCP Server"),
			mcp.WithDescription("Pulse exposes deterministic project analytics, recommendations, and a project chat agent to MCP clients."),
			mcp.WithWebsiteURL("https://github.com/felixgeelhaar/pulse"),
			mcp.WithBuildInfo(BuildCommit, BuildDate),
			mcp.WithInstructions("Use tools to score project health, inspect workload and bottlenecks, assess milestones and velocity, generate recommendations, chat with a project, and aggregate the portfolio."),
		),
		analysis:       services.Analysis,
		recommendation: services.Recommendation,
		agent:          services.Agent,
		portfolio:      services.Portfolio,
	}

	s.registerTools()
	return s
}

type ProjectArgs struct {
	ProjectID string `json:"project_id" jsonschema:"description=The 24-character hex ID of the project"`
}

type VelocityArgs struct {
	ProjectID string `json:"project_id" jsonschema:"description=The 24-character hex ID of the project"`
	Days      int    `json:"days,omitempty" jsonschema:"description=Trailing window in days (default 7)"`
}

type RecommendArgs struct {
	ProjectID string `json:"project_id" jsonschema:"description=The 24-character hex ID of the project"`
	Method    string `json:"method,omitempty" jsonschema:"description=Strategy: rules (default) or ai"`
}

type ChatArgs struct {
	ProjectID string `json:"project_id" jsonschema:"description=The 24-character hex ID of the project"`
	Query     string `json:"query" jsonschema:"description=The question to ask the project's agent"`
}

type PortfolioArgs struct {
	Insights bool `json:"insights,omitempty" jsonschema:"description=Include the executive narrative"`
}

func (s *Server) registerTools() {
	s.mcpServer.Tool("pulse_health").
		Description("Compute the weighted 0-100 health score of a project with its breakdown and metrics").
		Handler(s.handleHealth)

	s.mcpServer.Tool("pulse_workload").
		Description("Classify the project's active team into overloaded, balanced, and underutilized members").
		Handler(s.handleWorkload)

	s.mcpServer.Tool("pulse_bottlenecks").
		Description("Detect overloaded assignees, long-overdue tasks, blocked high-priority work, and threatened milestones").
		Handler(s.handleBottlenecks)

	s.mcpServer.Tool("pulse_milestones").
		Description("Assess the completion risk of every active milestone of a project").
		Handler(s.handleMilestones)

	s.mcpServer.Tool("pulse_velocity").
		Description("Compute tasks completed per day over a trailing window and the first-half/second-half trend").
		Handler(s.handleVelocity)

	s.mcpServer.Tool("pulse_recommendations").
		Description("Generate actionable recommendations for a project, rule-based or AI-generated with rule fallback").
		Handler(s.handleRecommendations)

	s.mcpServer.Tool("pulse_chat").
		Description("Ask the project's conversational agent a question grounded in store data").
		Handler(s.handleChat)

	s.mcpServer.Tool("pulse_portfolio").
		Description("Aggregate health, workload, and risk across every active project").
		Handler(s.handlePortfolio)
}

func (s *Server) handleHealth(ctx context.Context, args ProjectArgs) (any, error) {
	report, err := s.analysis.ProjectHealth(ctx, args.ProjectID)
	if err != nil {
		return nil, analysisErr(err)
	}
	return report, nil
}

func (s *Server) handleWorkload(ctx context.Context, args ProjectArgs) (any, error) {
	report, err := s.analysis.TeamWorkload(ctx, args.ProjectID)
	if errors.Is(err, application.ErrNoTeamMembers) {
		return "No team members found for this project.", nil
	}
	if err != nil {
		return nil, analysisErr(err)
	}
	return report, nil
}

func (s *Server) handleBottlenecks(ctx context.Context, args ProjectArgs) (any, error) {
	report, err := s.analysis.Bottlenecks(ctx, args.ProjectID)
	if err != nil {
		return nil, analysisErr(err)
	}
	return report, nil
}

func (s *Server) handleMilestones(ctx context.Context, args ProjectArgs) (any, error) {
	report, err := s.analysis.MilestoneRisks(ctx, args.ProjectID)
	if err != nil {
		return nil, analysisErr(err)
	}
	return report, nil
}

func (s *Server) handleVelocity(ctx context.Context, args VelocityArgs) (any, error) {
	report, err := s.analysis.Velocity(ctx, args.ProjectID, args.Days)
	if err != nil {
		return nil, analysisErr(err)
	}
	return report, nil
}

func (s *Server) handleRecommendations(ctx context.Context, args RecommendArgs) (any, error) {
	if args.Method == "ai" {
		list, err := s.recommendation.AI(ctx, args.ProjectID)
		if err == nil {
			return list, nil
		}
		if !errors.Is(err, application.ErrMalformedAIResponse) {
			return nil, analysisErr(err)
		}
		// Contract violations degrade to the deterministic battery.
	}
	list, err := s.recommendation.Rules(ctx, args.ProjectID)
	if err != nil {
		return nil, analysisErr(err)
	}
	return list, nil
}

func (s *Server) handleChat(ctx context.Context, args ChatArgs) (any, error) {
	result, err := s.agent.Chat(ctx, args.ProjectID, args.Query)
	if errors.Is(err, application.ErrEmptyQuery) {
		return nil, mcpErr("Query cannot be empty.")
	}
	if err != nil {
		return nil, analysisErr(err)
	}
	return result, nil
}

func (s *Server) handlePortfolio(ctx context.Context, args PortfolioArgs) (any, error) {
	report, err := s.portfolio.Analyze(ctx)
	if errors.Is(err, application.ErrNoActiveProjects) {
		return "No active projects found.", nil
	}
	if err != nil {
		return nil, analysisErr(err)
	}
	if !args.Insights {
		return report, nil
	}
	return map[string]any{
		"portfolio": report,
		"insights":  s.portfolio.Insights(ctx, report),
	}, nil
}

// analysisErr maps store lookup failures to friendly messages.
func analysisErr(err error) error {
	if errors.Is(err, record.ErrNotFound) {
		return mcpErr("Project not found. Check the project ID.")
	}
	return err
}

func (s *Server) StartStdio() error {
	return s.ServeStdio(context.Background())
}

func (s *Server) StartHTTP(addr string) error {
	return s.ServeHTTP(context.Background(), addr)
}

func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	return mcp.ServeHTTP(ctx, s.mcpServer, addr, mcp.WithDefaultCORS())
}
