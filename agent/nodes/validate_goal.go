package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/goal-pipeline/agent/contract"
)

// ValidateGoal judges the executed context and stores the verdict under
// contract.KeyValidation. It never aborts the run.
func ValidateGoal(ctx context.Context, in *GraphState, validator contractx.Validator) (*GraphState, error) {
	if in == nil {
		return nil, ErrNilState
	}

	in.Validation = safeValidate(ctx, in, validator)

	out := in.Context.Clone()
	out[contractx.KeyValidation] = in.Validation.Result
	in.Context = out
	return in, nil
}

func safeValidate(ctx context.Context, in *GraphState, validator contractx.Validator) (outcome contractx.ValidationOutcome) {
	if validator == nil {
		return contractx.FallbackVerdict("validator not configured")
	}
	defer func() {
		if r := recover(); r != nil {
			outcome = contractx.FallbackVerdict(fmt.Sprintf("%v: panic: %v", contractx.ErrValidationDegraded, r))
		}
	}()
	return validator.Validate(ctx, in.Goal, in.Context)
}
