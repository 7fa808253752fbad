package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/tanpawarit/goal-pipeline/agent/agents/orchestrator"
	"github.com/tanpawarit/goal-pipeline/agent/agents/specialist"
	contractx "github.com/tanpawarit/goal-pipeline/agent/contract"
	llmx "github.com/tanpawarit/goal-pipeline/agent/llm"
	plannerx "github.com/tanpawarit/goal-pipeline/agent/planner"
	promptx "github.com/tanpawarit/goal-pipeline/agent/prompt"
	validationx "github.com/tanpawarit/goal-pipeline/agent/validation"
	configx "github.com/tanpawarit/goal-pipeline/pkg/config"
	logx "github.com/tanpawarit/goal-pipeline/pkg/logger"
	"github.com/tanpawarit/goal-pipeline/pkg/metrics"
)

type app struct {
	orchestrator *orchestrator.Orchestrator
	metrics      *prometheus.Registry
	logger       zerolog.Logger
}

func loadAgentConfig() (specialist.Config, error) {
	spacexCfg, err := configx.New[specialist.SpaceXConfig]("SPACEX")
	if err != nil {
		return specialist.Config{}, err
	}
	weatherCfg, err := configx.New[specialist.WeatherConfig]("WEATHER")
	if err != nil {
		return specialist.Config{}, err
	}
	newsCfg, err := configx.New[specialist.NewsConfig]("NEWS")
	if err != nil {
		return specialist.Config{}, err
	}
	dictionaryCfg, err := configx.New[specialist.DictionaryConfig]("DICTIONARY")
	if err != nil {
		return specialist.Config{}, err
	}
	return specialist.Config{
		SpaceX:     *spacexCfg,
		Weather:    *weatherCfg,
		News:       *newsCfg,
		Dictionary: *dictionaryCfg,
	}, nil
}

func buildApp(ctx context.Context) (*app, error) {
	logCfg, err := configx.New[logx.Config]("LOG")
	if err != nil {
		return nil, err
	}
	logger := logx.Init(*logCfg)

	llmCfg, err := configx.New[llmx.Config]("LLM")
	if err != nil {
		return nil, err
	}
	agentCfg, err := loadAgentConfig()
	if err != nil {
		return nil, err
	}

	registry, err := specialist.NewRegistry(agentCfg)
	if err != nil {
		return nil, fmt.Errorf("build agent registry: %w", err)
	}

	prompts := promptx.LoadPromptSet()
	if err := prompts.Validate(); err != nil {
		return nil, err
	}

	planner, err := buildPlanner(ctx, *llmCfg, prompts.Planner, registry.Catalog(), logger)
	if err != nil {
		return nil, err
	}
	validator, err := buildValidator(ctx, *llmCfg, prompts.Validator, logger)
	if err != nil {
		return nil, err
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector, err := metrics.NewCollector(promRegistry)
	if err != nil {
		return nil, err
	}

	orch, err := orchestrator.New(registry,
		orchestrator.WithPlanner(planner),
		orchestrator.WithValidator(validator),
		orchestrator.WithObserver(collector),
		orchestrator.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	return &app{orchestrator: orch, metrics: promRegistry, logger: logger}, nil
}

// Without credentials the keyword rules and the fail-open verdict take over.
func buildPlanner(
	ctx context.Context,
	cfg llmx.Config,
	prompt string,
	catalog []contractx.AgentInfo,
	logger zerolog.Logger,
) (contractx.Planner, error) {
	p, err := plannerx.NewIntelligentFromConfig(ctx, cfg, prompt, catalog, plannerx.WithLogger(logger))
	if errors.Is(err, contractx.ErrMissingCredentials) {
		logger.Warn().Err(err).Msg("intelligent planner disabled, using keyword rules")
		return plannerx.Rules{Reason: err.Error()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("build planner: %w", err)
	}
	return p, nil
}

func buildValidator(
	ctx context.Context,
	cfg llmx.Config,
	prompt string,
	logger zerolog.Logger,
) (contractx.Validator, error) {
	v, err := validationx.NewFromConfig(ctx, cfg, prompt, validationx.WithLogger(logger))
	if errors.Is(err, contractx.ErrMissingCredentials) {
		logger.Warn().Err(err).Msg("intelligent validator disabled, using fallback verdict")
		return validationx.Rules{Reason: err.Error()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("build validator: %w", err)
	}
	return v, nil
}
