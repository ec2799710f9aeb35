package ai

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/pulse/pkg/domain/ai"
)

// MockProvider returns scripted responses in order, then repeats the last
// one. Used by tests and by the "mock" provider selection for offline runs.
type MockProvider struct {
	Model     string
	Responses []string
	Err       error
	calls     int
}

func (m *MockProvider) ID() string {
	return "mock:" + m.Model
}

func (m *MockProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Responses) == 0 {
		return nil, fmt.Errorf("mock provider has no scripted responses")
	}
	idx := m.calls
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	m.calls++
	return &ai.CompletionResponse{
		Text:  m.Responses[idx],
		Model: m.Model,
	}, nil
}

// Calls returns how many completions were requested.
func (m *MockProvider) Calls() int {
	return m.calls
}
