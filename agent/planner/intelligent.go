package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/goal-pipeline/agent/contract"
	llmx "github.com/tanpawarit/goal-pipeline/agent/llm"
	logx "github.com/tanpawarit/goal-pipeline/pkg/logger"
)

type Option func(*Intelligent)

func WithLogger(logger zerolog.Logger) Option {
	return func(p *Intelligent) {
		p.logger = logger
	}
}

func WithTimeout(d time.Duration) Option {
	return func(p *Intelligent) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// Intelligent plans through a remote text-generation backend.
type Intelligent struct {
	completer    llmx.Completer
	systemPrompt string
	catalog      []contractx.AgentInfo
	timeout      time.Duration
	logger       zerolog.Logger
}

var _ contractx.Planner = (*Intelligent)(nil)

func NewIntelligent(
	completer llmx.Completer,
	systemPrompt string,
	catalog []contractx.AgentInfo,
	opts ...Option,
) (*Intelligent, error) {
	if completer == nil {
		return nil, errors.New("completer is required")
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: planner", contractx.ErrPromptMissing)
	}
	if len(catalog) == 0 {
		return nil, fmt.Errorf("%w: agent catalog is empty", contractx.ErrValidation)
	}

	p := &Intelligent{
		completer:    completer,
		systemPrompt: strings.TrimSpace(systemPrompt),
		catalog:      append([]contractx.AgentInfo(nil), catalog...),
		timeout:      30 * time.Second,
		logger:       log.Logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p, nil
}

// NewIntelligentFromConfig builds the backend from cfg. Missing credentials
// fail here with ErrMissingCredentials rather than at planning time.
func NewIntelligentFromConfig(
	ctx context.Context,
	cfg llmx.Config,
	systemPrompt string,
	catalog []contractx.AgentInfo,
	opts ...Option,
) (*Intelligent, error) {
	completer, err := llmx.NewCompleter(ctx, cfg, contractx.AgentTypePlanner)
	if err != nil {
		return nil, err
	}
	opts = append([]Option{WithTimeout(cfg.TimeoutOrDefault())}, opts...)
	return NewIntelligent(completer, systemPrompt, catalog, opts...)
}

func (p *Intelligent) Plan(ctx context.Context, goal string) contractx.PlannerOutcome {
	seq, err := p.plan(ctx, goal)
	if err != nil {
		reason := fmt.Errorf("%w: %v", contractx.ErrPlanningDegraded, err).Error()
		logx.Ctx(ctx, &p.logger).Warn().Err(err).Str("goal", goal).Msg("planner falling back to rules")
		return contractx.Fallback(Plan(goal), reason)
	}
	return contractx.Planned(seq)
}

func (p *Intelligent) plan(ctx context.Context, goal string) (contractx.AgentSequence, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	text, err := p.completer.Complete(callCtx, p.systemPrompt, p.userPrompt(goal))
	if err != nil {
		return nil, err
	}

	seq := ParseSequence(text)
	if len(seq) == 0 {
		return nil, fmt.Errorf("%w: empty plan", contractx.ErrSchemaViolation)
	}
	return seq, nil
}

func (p *Intelligent) userPrompt(goal string) string {
	var b strings.Builder
	b.WriteString("Available agents:\n")
	for _, info := range p.catalog {
		fmt.Fprintf(&b, "- %s: %s\n", info.Name, info.Description)
	}
	fmt.Fprintf(&b, "\nUser Goal: %q\n", goal)
	return b.String()
}

// ParseSequence splits a comma-separated reply, trimming each element and
// dropping empty ones. Order is preserved.
func ParseSequence(text string) contractx.AgentSequence {
	parts := strings.Split(strings.TrimSpace(text), ",")
	seq := make(contractx.AgentSequence, 0, len(parts))
	for _, part := range parts {
		if name := strings.TrimSpace(part); name != "" {
			seq = append(seq, name)
		}
	}
	return seq
}
