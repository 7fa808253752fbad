package prompt

import (
	"errors"
	"strings"
	"testing"

	contractx "github.com/tanpawarit/goal-pipeline/agent/contract"
)

func TestLoadPromptSet(t *testing.T) {
	t.Parallel()

	set := LoadPromptSet()
	if err := set.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !strings.Contains(set.Planner, "comma-separated") {
		t.Fatalf("planner prompt missing output instructions: %q", set.Planner)
	}
	if !strings.Contains(set.Validator, "quality_score") {
		t.Fatalf("validator prompt missing fields: %q", set.Validator)
	}
}

func TestPromptSetValidateMissing(t *testing.T) {
	t.Parallel()

	err := PromptSet{Planner: "x"}.Validate()
	if !errors.Is(err, contractx.ErrPromptMissing) {
		t.Fatalf("Validate() error = %v, want ErrPromptMissing", err)
	}
}
