package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	contractx "github.com/tanpawarit/goal-pipeline/agent/contract"
	openrouterx "github.com/tanpawarit/goal-pipeline/pkg/openrouter"
)

type anthropicCompleter struct {
	client      *anthropic.Client
	model       anthropic.Model
	temperature float64
	maxTokens   int64
}

func newAnthropicCompleter(cfg Config, routerCfg openrouterx.Config) *anthropicCompleter {
	opts := []option.RequestOption{
		option.WithAPIKey(routerCfg.APIKey),
	}
	if base := strings.TrimRight(strings.TrimSpace(cfg.AnthropicBaseURL), "/"); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	if routerCfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(routerCfg.Timeout))
	}

	client := anthropic.NewClient(opts...)

	c := &anthropicCompleter{
		client:      &client,
		model:       anthropic.Model(routerCfg.Model),
		temperature: float64(routerCfg.Temperature),
		maxTokens:   1000,
	}
	if routerCfg.MaxCompletionToken != nil && *routerCfg.MaxCompletionToken > 0 {
		c.maxTokens = int64(*routerCfg.MaxCompletionToken)
	}
	return c
}

func (c *anthropicCompleter) Complete(ctx context.Context, system string, input string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: anthropic.Float(c.temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(input)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: anthropic api error: %v", contractx.ErrModelInvoke, err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.AsText().Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("%w: no text content returned", contractx.ErrSchemaViolation)
	}
	return text, nil
}
