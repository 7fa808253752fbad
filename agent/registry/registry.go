// Package registry resolves agent names to runnable agents. The mapping is
// populated once at start-up and read-only afterwards.
package registry

import (
	"errors"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/goal-pipeline/agent/contract"
)

var ErrDuplicateAgent = errors.New("agent already registered")

type registryImpl struct {
	agents map[string]contractx.Agent
	order  []string
}

// New builds a static registry. Registration order is kept for the catalog.
func New(agents ...contractx.Agent) (contractx.Registry, error) {
	r := &registryImpl{
		agents: make(map[string]contractx.Agent, len(agents)),
		order:  make([]string, 0, len(agents)),
	}

	for _, a := range agents {
		if a == nil {
			return nil, errors.New("agent is required")
		}
		name := strings.TrimSpace(a.Name())
		if name == "" {
			return nil, fmt.Errorf("%w: agent name is empty", contractx.ErrValidation)
		}
		if _, ok := r.agents[name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateAgent, name)
		}
		r.agents[name] = a
		r.order = append(r.order, name)
	}

	return r, nil
}

func MustNew(agents ...contractx.Agent) contractx.Registry {
	r, err := New(agents...)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *registryImpl) Resolve(name string) (contractx.Agent, error) {
	a, ok := r.agents[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", contractx.ErrUnknownAgent, name)
	}
	return a, nil
}

func (r *registryImpl) Catalog() []contractx.AgentInfo {
	infos := make([]contractx.AgentInfo, 0, len(r.order))
	for _, name := range r.order {
		infos = append(infos, contractx.AgentInfo{
			Name:        name,
			Description: strings.TrimSpace(r.agents[name].Description()),
		})
	}
	return infos
}
