package orchestratornode

import (
	"context"

	contractx "github.com/tanpawarit/goal-pipeline/agent/contract"
)

// PlanGoal records the planner outcome. The planner reads the goal only; a
// fallback outcome is recorded but never changes what runs next.
func PlanGoal(ctx context.Context, in *GraphState, planner contractx.Planner) (*GraphState, error) {
	if in == nil {
		return nil, ErrNilState
	}
	outcome := planner.Plan(ctx, in.Goal)
	outcome.Sequence = append(contractx.AgentSequence(nil), outcome.Sequence...)
	in.Outcome = outcome
	return in, nil
}

// SeedContext creates the run context holding only the goal.
func SeedContext(in *GraphState) (*GraphState, error) {
	if in == nil {
		return nil, ErrNilState
	}
	in.Context = contractx.NewContext(in.Goal)
	return in, nil
}
