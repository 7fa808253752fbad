package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	nodex "github.com/tanpawarit/goal-pipeline/agent/nodes"
)

func (o *Orchestrator) compileRunGoalGraph(
	ctx context.Context,
) (compose.Runnable[*nodex.GraphState, *nodex.GraphState], error) {
	graph := compose.NewGraph[*nodex.GraphState, *nodex.GraphState]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(in, o.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("plan_goal",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			out, err := nodex.PlanGoal(ctx, in, o.planner)
			if err == nil {
				o.observePlan(ctx, out.Outcome)
			}
			return out, err
		}),
	); err != nil {
		return nil, fmt.Errorf("add node plan_goal: %w", err)
	}

	if err := graph.AddLambdaNode("seed_context",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.SeedContext(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node seed_context: %w", err)
	}

	if err := graph.AddLambdaNode("execute_plan",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ExecutePlan(ctx, in, o.executor)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node execute_plan: %w", err)
	}

	if err := graph.AddLambdaNode("validate_goal",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			out, err := nodex.ValidateGoal(ctx, in, o.validator)
			if err == nil {
				o.observeValidation(ctx, out.Validation)
			}
			return out, err
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_goal: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_result",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.FinalizeResult(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_result: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "plan_goal"},
		{"plan_goal", "seed_context"},
		{"seed_context", "execute_plan"},
		{"execute_plan", "validate_goal"},
		{"validate_goal", "finalize_result"},
		{"finalize_result", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.run_goal"))
	if err != nil {
		return nil, fmt.Errorf("compile orchestrator graph: %w", err)
	}
	return runner, nil
}
