package ai_test

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/pulse/pkg/domain/ai"
)

// canned answers one completion per call and remembers the prompts it saw.
type canned struct {
	text    string
	err     error
	prompts []string
}

func (c *canned) ID() string { return "canned:test" }

func (c *canned) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.prompts = append(c.prompts, req.Prompt)
	if c.err != nil {
		return nil, c.err
	}
	return &ai.CompletionResponse{
		Text:  c.text,
		Model: "test-model",
		Usage: ai.TokenUsage{InputTokens: len(req.Prompt), OutputTokens: len(c.text)},
	}, nil
}

func TestComplete_Success(t *testing.T) {
	var provider ai.Provider = &canned{text: "The project looks healthy."}

	resp, err := provider.Complete(context.Background(), ai.CompletionRequest{
		Prompt:      "Summarize the health of project Apollo",
		System:      "You are a project management analyst",
		Temperature: 0.7,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Text != "The project looks healthy." {
		t.Errorf("Text = %q", resp.Text)
	}
	if resp.Usage.OutputTokens == 0 {
		t.Error("Usage.OutputTokens = 0, want token accounting")
	}
}

func TestComplete_Error(t *testing.T) {
	provider := &canned{err: errors.New("connection refused")}

	_, err := provider.Complete(context.Background(), ai.CompletionRequest{Prompt: "anything"})
	if err == nil || err.Error() != "connection refused" {
		t.Errorf("Complete() error = %v, want connection refused", err)
	}
}

func TestComplete_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	provider := &canned{text: "never delivered"}

	if _, err := provider.Complete(ctx, ai.CompletionRequest{Prompt: "anything"}); !errors.Is(err, context.Canceled) {
		t.Errorf("Complete() error = %v, want context.Canceled", err)
	}
	if len(provider.prompts) != 0 {
		t.Errorf("prompts = %v, want none after cancellation", provider.prompts)
	}
}
