package contract

import "errors"

var (
	ErrModelInvoke        = errors.New("model invoke failed")
	ErrSchemaViolation    = errors.New("model response violates schema")
	ErrPromptMissing      = errors.New("required prompt is missing")
	ErrValidation         = errors.New("validation failed")
	ErrMissingCredentials = errors.New("backend credentials are missing")

	ErrUnknownAgent       = errors.New("unknown agent")
	ErrAgentExecution     = errors.New("agent execution failed")
	ErrGoalRemoved        = errors.New("agent removed or changed the goal key")
	ErrPlanningDegraded   = errors.New("intelligent planning degraded")
	ErrValidationDegraded = errors.New("intelligent validation degraded")
)
