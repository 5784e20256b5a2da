package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

type Gemini struct {
	client *googleai.GoogleAI
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := googleai.New(ctx, googleai.WithAPIKey(apiKey), googleai.WithDefaultModel(model))
	if err != nil {
		return nil, fmt.Errorf("could not create Gemini client: %w", err)
	}

	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	resp, err := g.client.GenerateContent(ctx, messages)
	if err != nil {
		slog.Error("gemini error: content generation failed", "model", g.model, "error", err)
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("gemini returned no completion choices")
	}
	return resp.Choices[0].Content, nil
}
