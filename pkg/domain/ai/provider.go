// Package ai defines the text-completion contract the analytics service
// drives its conversational agent and recommendation engine through. The
// provider is a black box: it returns text eventually or fails, and all
// error handling lives in the callers.
package ai

import (
	"context"
)

// CompletionRequest is a single prompt to the model.
type CompletionRequest struct {
	Prompt      string
	System      string
	Temperature float32
	MaxTokens   int
}

// CompletionResponse is the model's answer.
type CompletionResponse struct {
	Text  string
	Usage TokenUsage
	Model string
}

// TokenUsage tracks costs.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
}

// Provider is the interface for all AI backends. Complete blocks until the
// model answers or the context is done; callers impose timeouts through the
// context or a resilient wrapper.
type Provider interface {
	ID() string
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
