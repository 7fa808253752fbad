package llm

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/goal-pipeline/agent/contract"
	openrouterx "github.com/tanpawarit/goal-pipeline/pkg/openrouter"
)

// Completer is the request/response text-generation capability used for
// planning and validation.
type Completer interface {
	Complete(ctx context.Context, system string, input string) (string, error)
}

type CompleterFunc func(ctx context.Context, system string, input string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, system string, input string) (string, error) {
	return f(ctx, system, input)
}

// NewCompleter builds the configured driver for one backend role.
func NewCompleter(ctx context.Context, cfg Config, agentType contractx.AgentType) (Completer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	routerCfg := cfg.OpenRouterFor(agentType)

	switch cfg.driver() {
	case DriverOpenAI:
		client := openrouterx.NewClient(routerCfg)
		if client == nil {
			return nil, fmt.Errorf("%w: openai client", contractx.ErrMissingCredentials)
		}
		return newOpenAICompleter(client, routerCfg), nil
	case DriverAnthropic:
		return newAnthropicCompleter(cfg, routerCfg), nil
	default:
		chatModel, err := routerCfg.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: create %s model: %v", contractx.ErrModelInvoke, agentType, err)
		}
		return NewGraphCompleter(ctx, chatModel, string(agentType)+".completion_graph")
	}
}

type graphCompleter struct {
	runner compose.Runnable[map[string]any, string]
}

// NewGraphCompleter wraps an eino chat model in a prompt -> model -> content graph.
func NewGraphCompleter(ctx context.Context, chatModel einomodel.BaseChatModel, graphName string) (Completer, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("%w: chat model is required", contractx.ErrValidation)
	}
	runner, err := compileCompletionGraph(ctx, chatModel, graphName)
	if err != nil {
		return nil, fmt.Errorf("%w: compile completion graph: %v", contractx.ErrModelInvoke, err)
	}
	return &graphCompleter{runner: runner}, nil
}

func (g *graphCompleter) Complete(ctx context.Context, system string, input string) (string, error) {
	out, err := g.runner.Invoke(ctx, map[string]any{
		"system": system,
		"input":  input,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	return out, nil
}

func compileCompletionGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	graphName string,
) (compose.Runnable[map[string]any, string], error) {
	// Both messages are placeholders so literal braces in prompts are never parsed as variables.
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{input}"),
	)

	graph := compose.NewGraph[map[string]any, string]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add completion prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add completion model node: %w", err)
	}
	if err := graph.AddLambdaNode("content",
		compose.InvokableLambda(func(ctx context.Context, msg *schema.Message) (string, error) {
			if msg == nil {
				return "", fmt.Errorf("%w: empty model response", contractx.ErrSchemaViolation)
			}
			return strings.TrimSpace(msg.Content), nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add completion content node: %w", err)
	}

	edges := [][2]string{
		{compose.START, "prompt"},
		{"prompt", "model"},
		{"model", "content"},
		{"content", compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add completion edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName(graphName))
	if err != nil {
		return nil, fmt.Errorf("compile completion graph: %w", err)
	}
	return runner, nil
}
