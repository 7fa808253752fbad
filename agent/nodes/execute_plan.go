package orchestratornode

import (
	"context"
)

func ExecutePlan(ctx context.Context, in *GraphState, executor Executor) (*GraphState, error) {
	if in == nil {
		return nil, ErrNilState
	}

	out, err := executor.Execute(ctx, in.Outcome.Sequence, in.Context)
	if out != nil {
		in.Context = out
	}
	if err != nil {
		in.Err = err
		return nil, err
	}
	return in, nil
}
