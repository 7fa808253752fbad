package contract

import "context"

// Agent is a single-purpose unit that reads and augments the shared Context.
type Agent interface {
	Name() string
	Description() string
	Run(ctx context.Context, in Context) (Context, error)
}

type Registry interface {
	Resolve(name string) (Agent, error)
	Catalog() []AgentInfo
}

type Planner interface {
	Plan(ctx context.Context, goal string) PlannerOutcome
}

type Validator interface {
	Validate(ctx context.Context, goal string, c Context) ValidationOutcome
}
