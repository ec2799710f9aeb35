// Package wiring assembles the application services from configuration.
package wiring

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/pulse/internal/infrastructure/config"
	"github.com/felixgeelhaar/pulse/pkg/ai"
	"github.com/felixgeelhaar/pulse/pkg/application"
	domainai "github.com/felixgeelhaar/pulse/pkg/domain/ai"
	"github.com/felixgeelhaar/pulse/pkg/domain/record"
	"github.com/felixgeelhaar/pulse/pkg/storage"
)

// AppServices exposes the application layer wired against the store and the
// AI provider.
type AppServices struct {
	Store          record.Store
	Analysis       *application.AnalysisService
	Recommendation *application.RecommendationService
	Agent          *application.AgentService
	Portfolio      *application.PortfolioService
	Provider       domainai.Provider
}

// BuildAppServices connects the store and constructs the services. A
// provider that cannot be configured (typically a missing API key) falls
// back to a local Ollama instance; the original configuration error is
// returned alongside the working services so callers can surface it.
func BuildAppServices(ctx context.Context, cfg *config.Config) (*AppServices, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if cfg.Store.URI == "" {
		return nil, fmt.Errorf("store URI not configured (set store.uri in pulse.yaml or PULSE_STORE_URI)")
	}

	store, err := storage.ConnectMongo(ctx, cfg.Store.URI)
	if err != nil {
		return nil, err
	}
	return buildWithStore(cfg, store)
}

// BuildAppServicesWithStore wires the services over an existing store. Tests
// and the MCP server's in-process setup use this.
func BuildAppServicesWithStore(cfg *config.Config, store record.Store) (*AppServices, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	return buildWithStore(cfg, store)
}

func buildWithStore(cfg *config.Config, store record.Store) (*AppServices, error) {
	provider, loadErr := ai.GetDefaultProvider(cfg.AI.Provider, cfg.AI.Model)
	if loadErr != nil {
		loadErr = fmt.Errorf("AI provider config fallback: %w", loadErr)
		fallback, err := ai.NewProvider("ollama", "llama3")
		if err != nil {
			return nil, fmt.Errorf("fallback AI provider failed: %w", err)
		}
		provider = fallback
	}
	resilient := ai.NewResilientProviderWithConfig(provider, ai.ResilienceConfig{
		MaxAttempts:  cfg.AI.MaxAttempts,
		InitialDelay: time.Second,
		Timeout:      cfg.AITimeout(),
	})

	analysis := application.NewAnalysisService(store)
	recommendation, err := application.NewRecommendationService(analysis, resilient)
	if err != nil {
		return nil, err
	}
	recommendation.MaxAttempts = cfg.AI.MaxAttempts

	services := &AppServices{
		Store:          store,
		Analysis:       analysis,
		Recommendation: recommendation,
		Agent:          application.NewAgentService(store, analysis, resilient).WithMaxSteps(cfg.Agent.MaxSteps),
		Portfolio:      application.NewPortfolioService(store, analysis, resilient),
		Provider:       resilient,
	}
	return services, loadErr
}
