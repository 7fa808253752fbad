// Package pipeline runs an agent sequence against one shared Context.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/goal-pipeline/agent/contract"
	logx "github.com/tanpawarit/goal-pipeline/pkg/logger"
)

const (
	StepStatusOK      = "ok"
	StepStatusUnknown = "unknown_agent"
	StepStatusFailed  = "failed"
)

// StepError reports the step that aborted a run.
type StepError struct {
	Index int
	Agent string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("pipeline aborted at step %d (%s): %v", e.Index, e.Agent, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// StepObserver receives one call per attempted step.
type StepObserver interface {
	ObserveStep(agent string, status string, elapsed time.Duration)
}

type Option func(*Executor)

func WithLogger(logger zerolog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

func WithObserver(o StepObserver) Option {
	return func(e *Executor) {
		e.observer = o
	}
}

type Executor struct {
	registry contractx.Registry
	logger   zerolog.Logger
	observer StepObserver
}

func New(registry contractx.Registry, opts ...Option) (*Executor, error) {
	if registry == nil {
		return nil, errors.New("agent registry is required")
	}
	e := &Executor{
		registry: registry,
		logger:   log.Logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e, nil
}

// Execute runs seq in order. Agent i+1 receives the context returned by agent i.
// On abort, the context produced by the last successful step is returned with a *StepError.
// Step lines go to the logger carried by ctx when there is one.
func (e *Executor) Execute(ctx context.Context, seq contractx.AgentSequence, in contractx.Context) (contractx.Context, error) {
	current := in
	goal := in.Goal()
	logger := logx.Ctx(ctx, &e.logger)

	for i, name := range seq {
		if err := ctx.Err(); err != nil {
			return current, &StepError{Index: i, Agent: name, Err: err}
		}

		agent, err := e.registry.Resolve(name)
		if err != nil {
			e.observe(name, StepStatusUnknown, 0)
			logger.Error().Err(err).Int("step", i).Str("agent", name).Msg("agent not registered")
			return current, &StepError{Index: i, Agent: name, Err: err}
		}

		start := time.Now()
		out, err := runAgent(ctx, agent, current)
		elapsed := time.Since(start)
		if err == nil {
			err = checkOutput(out, goal)
		}
		if err != nil {
			e.observe(name, StepStatusFailed, elapsed)
			logger.Error().Err(err).Int("step", i).Str("agent", name).Msg("agent failed")
			return current, &StepError{Index: i, Agent: name, Err: err}
		}

		e.observe(name, StepStatusOK, elapsed)
		logger.Debug().Int("step", i).Str("agent", name).Dur("elapsed", elapsed).Msg("agent completed")
		current = out
	}

	return current, nil
}

func runAgent(ctx context.Context, agent contractx.Agent, in contractx.Context) (out contractx.Context, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v\n%s", contractx.ErrAgentExecution, r, debug.Stack())
		}
	}()

	out, err = agent.Run(ctx, in)
	if err != nil {
		if errors.Is(err, contractx.ErrAgentExecution) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", contractx.ErrAgentExecution, err)
	}
	return out, nil
}

func checkOutput(out contractx.Context, goal string) error {
	if out == nil {
		return fmt.Errorf("%w: agent returned nil context", contractx.ErrAgentExecution)
	}
	got, ok := out[contractx.KeyGoal].(string)
	if !ok || got != goal {
		return fmt.Errorf("%w: %w", contractx.ErrAgentExecution, contractx.ErrGoalRemoved)
	}
	return nil
}

func (e *Executor) observe(agent, status string, elapsed time.Duration) {
	if e.observer != nil {
		e.observer.ObserveStep(agent, status, elapsed)
	}
}
