package llm

import (
	"context"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go"
	contractx "github.com/tanpawarit/goal-pipeline/agent/contract"
	openrouterx "github.com/tanpawarit/goal-pipeline/pkg/openrouter"
)

type openAICompleter struct {
	client      *openaisdk.Client
	model       string
	temperature float64
	maxTokens   int64
}

func newOpenAICompleter(client *openaisdk.Client, cfg openrouterx.Config) *openAICompleter {
	c := &openAICompleter{
		client:      client,
		model:       cfg.Model,
		temperature: float64(cfg.Temperature),
		maxTokens:   1000,
	}
	if cfg.MaxCompletionToken != nil && *cfg.MaxCompletionToken > 0 {
		c.maxTokens = int64(*cfg.MaxCompletionToken)
	}
	return c
}

func (c *openAICompleter) Complete(ctx context.Context, system string, input string) (string, error) {
	params := openaisdk.ChatCompletionNewParams{
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(system),
			openaisdk.UserMessage(input),
		},
		Model:               c.model,
		Temperature:         openaisdk.Float(c.temperature),
		MaxCompletionTokens: openaisdk.Int(c.maxTokens),
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: openai api error: %v", contractx.ErrModelInvoke, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", contractx.ErrSchemaViolation)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
