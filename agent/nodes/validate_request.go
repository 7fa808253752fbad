package orchestratornode

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/goal-pipeline/agent/contract"
)

// ValidateRequest checks run identity. The goal itself is free text and may be empty.
func ValidateRequest(in *GraphState, nowFn func() time.Time) (*GraphState, error) {
	if in == nil {
		return nil, ErrNilState
	}
	if strings.TrimSpace(in.RunID) == "" {
		return nil, fmt.Errorf("%w: %w", contractx.ErrValidation, ErrNoRunID)
	}
	if in.StartedAt.IsZero() {
		in.StartedAt = nowFn().UTC()
	}
	return in, nil
}
