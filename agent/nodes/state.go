package orchestratornode

import (
	"context"
	"errors"
	"time"

	contractx "github.com/tanpawarit/goal-pipeline/agent/contract"
)

var (
	ErrNilState = errors.New("graph state is nil")
	ErrNoRunID  = errors.New("run id is empty")
)

// NoSummary is written when a completed run produced no textual summary.
const NoSummary = "No summary available."

// Executor is the pipeline step runner used by ExecutePlan.
type Executor interface {
	Execute(ctx context.Context, seq contractx.AgentSequence, in contractx.Context) (contractx.Context, error)
}

// GraphState is owned by exactly one run. Nodes mutate it in place so the
// caller keeps the partial context when a node aborts the graph.
type GraphState struct {
	RunID     string
	Goal      string
	StartedAt time.Time

	Outcome    contractx.PlannerOutcome
	Context    contractx.Context
	Validation contractx.ValidationOutcome

	// Err is the unwrapped failure recorded by the node that aborted the run.
	Err error
}
