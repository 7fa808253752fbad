package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/goal-pipeline/agent/contract"
	nodex "github.com/tanpawarit/goal-pipeline/agent/nodes"
	"github.com/tanpawarit/goal-pipeline/agent/pipeline"
	plannerx "github.com/tanpawarit/goal-pipeline/agent/planner"
	validationx "github.com/tanpawarit/goal-pipeline/agent/validation"
	logx "github.com/tanpawarit/goal-pipeline/pkg/logger"
)

const (
	RunStatusCompleted = "completed"
	RunStatusAborted   = "aborted"
)

// Observer receives run level counters. *metrics.Collector satisfies it.
type Observer interface {
	pipeline.StepObserver
	ObserveRun(status string)
	ObservePlan(source string)
	ObserveValidation(source string)
}

type Option func(*Orchestrator)

func WithPlanner(p contractx.Planner) Option {
	return func(o *Orchestrator) {
		o.planner = p
	}
}

func WithValidator(v contractx.Validator) Option {
	return func(o *Orchestrator) {
		o.validator = v
	}
}

func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) {
		o.observer = obs
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(o *Orchestrator) {
		if newID != nil {
			o.newID = newID
		}
	}
}

// Result is the outcome of one goal run. On abort Context holds the partial
// data gathered before the failing step and FailedStep names that step.
type Result struct {
	RunID      string                      `json:"run_id"`
	Goal       string                      `json:"goal"`
	Plan       contractx.PlannerOutcome    `json:"plan"`
	Validation contractx.ValidationOutcome `json:"validation"`
	Context    contractx.Context           `json:"result"`
	FailedStep *pipeline.StepError         `json:"-"`
	StartedAt  time.Time                   `json:"started_at"`
	Duration   time.Duration               `json:"duration"`
}

type Orchestrator struct {
	registry  contractx.Registry
	planner   contractx.Planner
	validator contractx.Validator
	executor  *pipeline.Executor
	observer  Observer
	logger    zerolog.Logger

	graphRunner compose.Runnable[*nodex.GraphState, *nodex.GraphState]

	now   func() time.Time
	newID func() string
}

func New(registry contractx.Registry, opts ...Option) (*Orchestrator, error) {
	if registry == nil {
		return nil, errors.New("agent registry is required")
	}

	o := &Orchestrator{
		registry: registry,
		logger:   log.Logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.planner == nil {
		o.planner = plannerx.Rules{}
	}
	if o.validator == nil {
		o.validator = validationx.Rules{}
	}

	execOpts := []pipeline.Option{pipeline.WithLogger(o.logger)}
	if o.observer != nil {
		execOpts = append(execOpts, pipeline.WithObserver(o.observer))
	}
	executor, err := pipeline.New(registry, execOpts...)
	if err != nil {
		return nil, err
	}
	o.executor = executor

	graphRunner, err := o.compileRunGoalGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// Catalog lists the registered agents in registration order.
func (o *Orchestrator) Catalog() []contractx.AgentInfo {
	return o.registry.Catalog()
}

// Run plans, executes and validates goal. A non-nil Result is returned
// whenever the run got past request validation, including on abort.
func (o *Orchestrator) Run(ctx context.Context, goal string) (*Result, error) {
	state := &nodex.GraphState{
		RunID:     o.newID(),
		Goal:      goal,
		StartedAt: o.now().UTC(),
	}
	logger := o.logger.With().Str("run_id", state.RunID).Logger()
	logger.Info().Str("goal", goal).Msg("goal run started")

	_, err := o.graphRunner.Invoke(logger.WithContext(ctx), state)
	result := o.result(state)

	if err != nil {
		if state.Err != nil {
			err = state.Err
		}
		var stepErr *pipeline.StepError
		if errors.As(err, &stepErr) {
			result.FailedStep = stepErr
		}
		o.observeRun(RunStatusAborted)
		logger.Error().
			Err(err).
			Str("plan_source", string(state.Outcome.Source)).
			Strs("sequence", state.Outcome.Sequence).
			Dur("duration", result.Duration).
			Msg("goal run aborted")
		return result, err
	}

	o.observeRun(RunStatusCompleted)
	logger.Info().
		Str("plan_source", string(state.Outcome.Source)).
		Strs("sequence", state.Outcome.Sequence).
		Str("validation_source", string(state.Validation.Source)).
		Dur("duration", result.Duration).
		Msg("goal run completed")
	return result, nil
}

// RunAgent executes a single named agent against a fresh context for goal.
func (o *Orchestrator) RunAgent(ctx context.Context, name string, goal string) (contractx.Context, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: agent name is empty", contractx.ErrValidation)
	}
	return o.executor.Execute(ctx, contractx.AgentSequence{name}, contractx.NewContext(goal))
}

func (o *Orchestrator) result(state *nodex.GraphState) *Result {
	return &Result{
		RunID:      state.RunID,
		Goal:       state.Goal,
		Plan:       state.Outcome,
		Validation: state.Validation,
		Context:    state.Context,
		StartedAt:  state.StartedAt,
		Duration:   o.now().UTC().Sub(state.StartedAt),
	}
}

func (o *Orchestrator) observeRun(status string) {
	if o.observer != nil {
		o.observer.ObserveRun(status)
	}
}

func (o *Orchestrator) observePlan(ctx context.Context, outcome contractx.PlannerOutcome) {
	if o.observer != nil {
		o.observer.ObservePlan(string(outcome.Source))
	}
	if outcome.IsFallback() {
		logx.Ctx(ctx, &o.logger).Warn().
			Str("reason", outcome.Reason).
			Strs("sequence", outcome.Sequence).
			Msg("planner fell back to keyword rules")
	}
}

func (o *Orchestrator) observeValidation(ctx context.Context, outcome contractx.ValidationOutcome) {
	if o.observer != nil {
		o.observer.ObserveValidation(string(outcome.Source))
	}
	if outcome.Source == contractx.ValidationSourceFallback {
		logx.Ctx(ctx, &o.logger).Warn().Str("reason", outcome.Reason).Msg("validator returned fallback verdict")
	}
}
