package orchestratornode

import (
	"strings"

	contractx "github.com/tanpawarit/goal-pipeline/agent/contract"
)

// FinalizeResult guarantees that a completed run carries a textual summary.
func FinalizeResult(in *GraphState) (*GraphState, error) {
	if in == nil {
		return nil, ErrNilState
	}

	if summary, ok := in.Context[contractx.KeySummary].(string); !ok || strings.TrimSpace(summary) == "" {
		out := in.Context.Clone()
		out[contractx.KeySummary] = NoSummary
		in.Context = out
	}
	return in, nil
}
