package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/goal-pipeline/agent/contract"
	openrouterx "github.com/tanpawarit/goal-pipeline/pkg/openrouter"
)

type Driver string

const (
	DriverEino      Driver = "eino"
	DriverOpenAI    Driver = "openai"
	DriverAnthropic Driver = "anthropic"
)

type Config struct {
	Driver             string        `envconfig:"DRIVER" split_words:"true" default:"eino"`
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"google/gemini-flash-1.5"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"1000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.2"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	// Only used by the anthropic driver; empty means the SDK default endpoint.
	AnthropicBaseURL string `envconfig:"ANTHROPIC_BASE_URL" split_words:"true"`

	PlannerModel         string  `envconfig:"PLANNER_MODEL" split_words:"true"`
	ValidatorModel       string  `envconfig:"VALIDATOR_MODEL" split_words:"true"`
	PlannerTemperature   float32 `envconfig:"PLANNER_TEMPERATURE" split_words:"true" default:"-1"`
	ValidatorTemperature float32 `envconfig:"VALIDATOR_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: llm api key is required", contractx.ErrMissingCredentials)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	switch c.driver() {
	case DriverEino, DriverOpenAI, DriverAnthropic:
	default:
		return fmt.Errorf("%w: unsupported llm driver=%q", contractx.ErrValidation, c.Driver)
	}
	return nil
}

func (c Config) driver() Driver {
	d := Driver(strings.ToLower(strings.TrimSpace(c.Driver)))
	if d == "" {
		return DriverEino
	}
	return d
}

// TimeoutOrDefault bounds every backend call made by the planning and validation adapters.
func (c Config) TimeoutOrDefault() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return c.Timeout
}

func (c Config) OpenRouterFor(agentType contractx.AgentType) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	switch agentType {
	case contractx.AgentTypePlanner:
		if v := strings.TrimSpace(c.PlannerModel); v != "" {
			modelName = v
		}
		if c.PlannerTemperature >= 0 {
			temp = c.PlannerTemperature
		}
	case contractx.AgentTypeValidator:
		if v := strings.TrimSpace(c.ValidatorModel); v != "" {
			modelName = v
		}
		if c.ValidatorTemperature >= 0 {
			temp = c.ValidatorTemperature
		}
	}

	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.TimeoutOrDefault(),
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
