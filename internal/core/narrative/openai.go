package narrative

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/macroeconlab/macro-report-be/internal/core/series"
)

const systemPrompt = "You are an economist writing short commentary for a chart in a macroeconomic data report. " +
	"Write one factual paragraph (3-4 sentences) about the chart described by the user. " +
	"Do not speculate beyond the numbers given."

// OpenAIGenerator generates chart narrative with the OpenAI chat API.
type OpenAIGenerator struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

func NewOpenAIGenerator(apiKey string, model string) *OpenAIGenerator {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIGenerator{
		client:      openai.NewClient(apiKey),
		model:       model,
		temperature: 0.4,
		maxTokens:   300,
	}
}

func (g *OpenAIGenerator) GetProviderName() string {
	return "OpenAI"
}

func (g *OpenAIGenerator) Generate(ctx context.Context, cs series.ChartSpec, ts []*series.TransformedSeries) (string, error) {
	user := fmt.Sprintf("Chart: %s\nTransform: %s\nUnits: %s\nLatest values: %s",
		cs.PageTitle, cs.Transform, cs.Units, seedFacts(ts))
	if cs.Notes != "" {
		user += "\nNotes: " + cs.Notes
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openai error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}
