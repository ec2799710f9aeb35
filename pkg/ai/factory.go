package ai

import (
	"fmt"
	"os"

	"github.com/felixgeelhaar/pulse/pkg/domain/ai"
)

// NewProvider constructs a provider by name. Providers that require an API
// key fail here, at construction, when the key is absent — missing
// credentials must never surface mid-conversation.
func NewProvider(providerName string, modelName string) (ai.Provider, error) {
	switch providerName {
	case "gemini", "":
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY not set")
		}
		return NewGeminiProvider(modelName, apiKey), nil
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY not set")
		}
		return NewOpenAIProvider(modelName, apiKey), nil
	case "anthropic":
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
		return NewAnthropicProvider(modelName, apiKey), nil
	case "ollama":
		if modelName == "" {
			modelName = "llama3"
		}
		return NewOllamaProvider(modelName), nil
	case "mock":
		return &MockProvider{Model: modelName}, nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", providerName)
	}
}

// GetDefaultProvider returns a provider based on environment variables or
// configured defaults.
func GetDefaultProvider(providerName, modelName string) (ai.Provider, error) {
	if envProvider := os.Getenv("PULSE_AI_PROVIDER"); envProvider != "" {
		providerName = envProvider
	}
	if envModel := os.Getenv("PULSE_AI_MODEL"); envModel != "" {
		modelName = envModel
	}
	return NewProvider(providerName, modelName)
}
