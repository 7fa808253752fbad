// Package validation asks the intelligent backend whether a run met its goal.
// Every failure path resolves to the fixed fail-open verdict so validation
// never blocks delivery of an already computed summary.
package validation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/goal-pipeline/agent/contract"
	llmx "github.com/tanpawarit/goal-pipeline/agent/llm"
	logx "github.com/tanpawarit/goal-pipeline/pkg/logger"
)

type Option func(*Validator)

func WithLogger(logger zerolog.Logger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}

func WithTimeout(d time.Duration) Option {
	return func(v *Validator) {
		if d > 0 {
			v.timeout = d
		}
	}
}

type Validator struct {
	completer    llmx.Completer
	systemPrompt string
	timeout      time.Duration
	logger       zerolog.Logger
}

var _ contractx.Validator = (*Validator)(nil)

func New(completer llmx.Completer, systemPrompt string, opts ...Option) (*Validator, error) {
	if completer == nil {
		return nil, errors.New("completer is required")
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: validator", contractx.ErrPromptMissing)
	}

	v := &Validator{
		completer:    completer,
		systemPrompt: strings.TrimSpace(systemPrompt),
		timeout:      30 * time.Second,
		logger:       log.Logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v, nil
}

func NewFromConfig(ctx context.Context, cfg llmx.Config, systemPrompt string, opts ...Option) (*Validator, error) {
	completer, err := llmx.NewCompleter(ctx, cfg, contractx.AgentTypeValidator)
	if err != nil {
		return nil, err
	}
	opts = append([]Option{WithTimeout(cfg.TimeoutOrDefault())}, opts...)
	return New(completer, systemPrompt, opts...)
}

func (v *Validator) Validate(ctx context.Context, goal string, c contractx.Context) contractx.ValidationOutcome {
	result, err := v.validate(ctx, goal, c)
	if err != nil {
		reason := fmt.Errorf("%w: %v", contractx.ErrValidationDegraded, err).Error()
		logx.Ctx(ctx, &v.logger).Warn().Err(err).Str("goal", goal).Msg("validation falling back to default verdict")
		return contractx.FallbackVerdict(reason)
	}
	return contractx.Validated(result)
}

func (v *Validator) validate(ctx context.Context, goal string, c contractx.Context) (contractx.ValidationResult, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return contractx.ValidationResult{}, fmt.Errorf("%w: marshal context: %v", contractx.ErrValidation, err)
	}

	input := fmt.Sprintf("User Goal: %q\nFinal Data: %s\n", goal, data)

	callCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	text, err := v.completer.Complete(callCtx, v.systemPrompt, input)
	if err != nil {
		return contractx.ValidationResult{}, err
	}
	return ParseResult(text)
}

// Rules is the validator used when no backend is configured.
type Rules struct {
	Reason string
}

var _ contractx.Validator = Rules{}

func (r Rules) Validate(context.Context, string, contractx.Context) contractx.ValidationOutcome {
	reason := strings.TrimSpace(r.Reason)
	if reason == "" {
		reason = "intelligent validator not configured"
	}
	return contractx.FallbackVerdict(reason)
}

type rawResult struct {
	GoalAchieved          *bool    `json:"goal_achieved"`
	Confidence            *int     `json:"confidence"`
	MissingData           []string `json:"missing_data"`
	SuggestedImprovements []string `json:"suggested_improvements"`
	QualityScore          *int     `json:"quality_score"`
}

// ParseResult decodes a backend verdict, optionally wrapped in a fenced code block.
func ParseResult(text string) (contractx.ValidationResult, error) {
	payload := StripFence(text)
	if payload == "" {
		return contractx.ValidationResult{}, fmt.Errorf("%w: empty verdict", contractx.ErrSchemaViolation)
	}

	var raw rawResult
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return contractx.ValidationResult{}, fmt.Errorf("%w: decode verdict: %v", contractx.ErrSchemaViolation, err)
	}

	switch {
	case raw.GoalAchieved == nil:
		return contractx.ValidationResult{}, fmt.Errorf("%w: goal_achieved is required", contractx.ErrSchemaViolation)
	case raw.Confidence == nil:
		return contractx.ValidationResult{}, fmt.Errorf("%w: confidence is required", contractx.ErrSchemaViolation)
	case raw.QualityScore == nil:
		return contractx.ValidationResult{}, fmt.Errorf("%w: quality_score is required", contractx.ErrSchemaViolation)
	case !inPercentRange(*raw.Confidence):
		return contractx.ValidationResult{}, fmt.Errorf("%w: confidence=%d out of range", contractx.ErrSchemaViolation, *raw.Confidence)
	case !inPercentRange(*raw.QualityScore):
		return contractx.ValidationResult{}, fmt.Errorf("%w: quality_score=%d out of range", contractx.ErrSchemaViolation, *raw.QualityScore)
	}

	result := contractx.ValidationResult{
		GoalAchieved:          *raw.GoalAchieved,
		Confidence:            *raw.Confidence,
		MissingData:           raw.MissingData,
		SuggestedImprovements: raw.SuggestedImprovements,
		QualityScore:          *raw.QualityScore,
	}
	if result.MissingData == nil {
		result.MissingData = []string{}
	}
	if result.SuggestedImprovements == nil {
		result.SuggestedImprovements = []string{}
	}
	return result, nil
}

// StripFence removes a surrounding code fence and its language tag, if any.
func StripFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 && !strings.ContainsAny(s[:i], "{[") {
		s = s[i+1:]
	} else {
		s = strings.TrimLeftFunc(s, unicode.IsLetter)
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func inPercentRange(v int) bool {
	return v >= 0 && v <= 100
}
