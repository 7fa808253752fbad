package contract

import "maps"

type AgentType string

const (
	AgentTypePlanner   AgentType = "planner"
	AgentTypeValidator AgentType = "validator"
)

// Reserved context keys. Each agent documents which of these it reads and writes.
const (
	KeyGoal        = "goal"
	KeySpaceX      = "spacex"
	KeyWeather     = "weather"
	KeyNews        = "news"
	KeySummary     = "summary"
	KeyCalculation = "calculation"
	KeyDefinition  = "definition"
	KeyValidation  = "adk_validation"
)

// Context is the accumulating result object threaded through one pipeline run.
// It always carries KeyGoal.
type Context map[string]any

func NewContext(goal string) Context {
	return Context{KeyGoal: goal}
}

func (c Context) Goal() string {
	goal, _ := c[KeyGoal].(string)
	return goal
}

// Clone returns a shallow copy so an agent can write without touching its input.
func (c Context) Clone() Context {
	if c == nil {
		return Context{}
	}
	return maps.Clone(c)
}

// Map returns a nested mapping stored under key, or nil when absent or not a mapping.
func (c Context) Map(key string) map[string]any {
	switch v := c[key].(type) {
	case map[string]any:
		return v
	case Context:
		return v
	default:
		return nil
	}
}

// AgentSequence is the ordered list of agent names chosen for a goal.
type AgentSequence []string

type PlanSource string

const (
	PlanSourcePlanned  PlanSource = "planned"
	PlanSourceFallback PlanSource = "fallback"
)

type PlannerOutcome struct {
	Source   PlanSource    `json:"source"`
	Sequence AgentSequence `json:"sequence"`
	Reason   string        `json:"reason,omitempty"`
}

func Planned(seq AgentSequence) PlannerOutcome {
	return PlannerOutcome{Source: PlanSourcePlanned, Sequence: seq}
}

func Fallback(seq AgentSequence, reason string) PlannerOutcome {
	return PlannerOutcome{Source: PlanSourceFallback, Sequence: seq, Reason: reason}
}

func (o PlannerOutcome) IsFallback() bool {
	return o.Source == PlanSourceFallback
}

type ValidationResult struct {
	GoalAchieved          bool     `json:"goal_achieved"`
	Confidence            int      `json:"confidence"`
	MissingData           []string `json:"missing_data"`
	SuggestedImprovements []string `json:"suggested_improvements"`
	QualityScore          int      `json:"quality_score"`
}

// FallbackValidation is the fail-open verdict used whenever the backend cannot judge a run.
func FallbackValidation() ValidationResult {
	return ValidationResult{
		GoalAchieved:          true,
		Confidence:            80,
		MissingData:           []string{},
		SuggestedImprovements: []string{},
		QualityScore:          80,
	}
}

type ValidationSource string

const (
	ValidationSourceValidated ValidationSource = "validated"
	ValidationSourceFallback  ValidationSource = "fallback"
)

type ValidationOutcome struct {
	Source ValidationSource `json:"source"`
	Result ValidationResult `json:"result"`
	Reason string           `json:"reason,omitempty"`
}

func Validated(r ValidationResult) ValidationOutcome {
	return ValidationOutcome{Source: ValidationSourceValidated, Result: r}
}

func FallbackVerdict(reason string) ValidationOutcome {
	return ValidationOutcome{Source: ValidationSourceFallback, Result: FallbackValidation(), Reason: reason}
}

// AgentInfo is one catalog line offered to the intelligent planner.
type AgentInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
