package llm

import (
	"context"
	"fmt"
	"math"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/stosh99/olympics_tv/internal/config"
)

// Completion is one generator response with its usage accounting.
type Completion struct {
	Text         string
	InputTokens  int
	OutputTokens int
	Cost         float64
}

// Generator is the single text-generation operation the writer and editor
// stages depend on. No retries happen at this layer; a provider error is
// surfaced to the caller.
type Generator interface {
	Generate(ctx context.Context, system, user string, maxTokens int) (*Completion, error)
	ModelName() string
}

// Client wraps an OpenAI-compatible chat model endpoint.
type Client struct {
	cm        model.ChatModel
	modelName string
	inRate    float64 // dollars per million input tokens
	outRate   float64 // dollars per million output tokens
}

// New initialises the chat model from configuration. A missing credential
// is an error here so the pipeline fails before any stage runs.
func New(ctx context.Context, cfg config.LLMConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm api key not configured")
	}

	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("chat model init failed: %w", err)
	}

	return &Client{
		cm:        cm,
		modelName: cfg.Model,
		inRate:    cfg.InputCostPerMTok,
		outRate:   cfg.OutputCostPerMTok,
	}, nil
}

// ModelName returns the configured model identifier.
func (c *Client) ModelName() string { return c.modelName }

// Generate sends one system+user exchange and returns the completion text
// with token counts and the linear cost estimate.
func (c *Client) Generate(ctx context.Context, system, user string, maxTokens int) (*Completion, error) {
	messages := []*schema.Message{
		{Role: schema.System, Content: system},
		{Role: schema.User, Content: user},
	}

	resp, err := c.cm.Generate(ctx, messages, model.WithMaxTokens(maxTokens))
	if err != nil {
		return nil, fmt.Errorf("generate failed: %w", err)
	}

	out := &Completion{Text: resp.Content}
	if resp.ResponseMeta != nil && resp.ResponseMeta.Usage != nil {
		out.InputTokens = resp.ResponseMeta.Usage.PromptTokens
		out.OutputTokens = resp.ResponseMeta.Usage.CompletionTokens
	}
	out.Cost = EstimateCost(out.InputTokens, out.OutputTokens, c.inRate, c.outRate)
	return out, nil
}

// EstimateCost computes the linear per-token cost in dollars, rounded to
// four decimal places.
func EstimateCost(inputTokens, outputTokens int, inRate, outRate float64) float64 {
	cost := (float64(inputTokens)*inRate + float64(outputTokens)*outRate) / 1_000_000
	return math.Round(cost*10000) / 10000
}
