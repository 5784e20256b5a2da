package llm

import (
	"context"
	"fmt"
	"time"
)

const requestTimeout = 50 * time.Second

// Completer is a single request/response exchange with a hosted language
// model: given a prompt it returns the generated text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// New constructs a Completer for the named provider with the given model
// identifier and API credential.
func New(ctx context.Context, provider, model, apiKey string) (Completer, error) {
	switch provider {
	case "gemini":
		return NewGemini(ctx, apiKey, model)
	case "openai":
		return NewOpenAI(apiKey, model), nil
	default:
		return nil, fmt.Errorf("unknown llm provider '%s'", provider)
	}
}
