package specialist

import (
	contractx "github.com/tanpawarit/goal-pipeline/agent/contract"
	"github.com/tanpawarit/goal-pipeline/agent/registry"
)

// Agents returns every built-in agent in catalog order.
func Agents(cfg Config) []contractx.Agent {
	return []contractx.Agent{
		NewSpaceX(cfg.SpaceX),
		NewWeather(cfg.Weather),
		NewNews(cfg.News),
		Summary{},
		Calculator{},
		NewDictionary(cfg.Dictionary),
	}
}

// NewRegistry builds the static registry of built-in agents.
func NewRegistry(cfg Config) (contractx.Registry, error) {
	return registry.New(Agents(cfg)...)
}
