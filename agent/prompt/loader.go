package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/goal-pipeline/agent/contract"
)

var (
	//go:embed template/planner.txt
	plannerRaw string

	//go:embed template/validator.txt
	validatorRaw string
)

// PromptSet holds the system prompts for the intelligent backend roles.
type PromptSet struct {
	Planner   string
	Validator string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Planner:   strings.TrimSpace(plannerRaw),
		Validator: strings.TrimSpace(validatorRaw),
	}
}

func (p PromptSet) Validate() error {
	if p.Planner == "" {
		return fmt.Errorf("%w: planner", contractx.ErrPromptMissing)
	}
	if p.Validator == "" {
		return fmt.Errorf("%w: validator", contractx.ErrPromptMissing)
	}
	return nil
}
