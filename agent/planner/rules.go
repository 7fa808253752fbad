// Package planner turns a free-text goal into an ordered agent sequence.
//
// Rules is the deterministic keyword planner; it never fails and never
// returns an empty plan. Intelligent asks a text-generation backend for the
// plan and degrades to Rules on any failure.
package planner

import (
	"context"
	"strings"

	contractx "github.com/tanpawarit/goal-pipeline/agent/contract"
)

const (
	AgentSpaceX     = "spacex_agent"
	AgentWeather    = "weather_agent"
	AgentNews       = "news_agent"
	AgentSummary    = "summary_agent"
	AgentCalculator = "calculator_agent"
	AgentDictionary = "dictionary_agent"
)

var (
	launchKeywords     = []string{"spacex", "launch", "rocket"}
	weatherKeywords    = []string{"weather", "climate"}
	newsKeywords       = []string{"news", "article", "headline", "breaking"}
	calculatorKeywords = []string{"calculate", "compute", "math"}
	dictionaryKeywords = []string{"define", "definition", "meaning of"}
)

type rule struct {
	matches func(goal string) bool
	plan    []string
}

// Evaluated in order; the first match wins.
var rules = []rule{
	{
		matches: func(g string) bool {
			return containsAny(g, launchKeywords) && containsAny(g, weatherKeywords)
		},
		plan: []string{AgentSpaceX, AgentWeather, AgentSummary},
	},
	{matches: keywordRule(weatherKeywords), plan: []string{AgentWeather, AgentSummary}},
	{matches: keywordRule(launchKeywords), plan: []string{AgentSpaceX, AgentSummary}},
	{matches: keywordRule(newsKeywords), plan: []string{AgentNews, AgentSummary}},
	{matches: keywordRule(calculatorKeywords), plan: []string{AgentCalculator, AgentSummary}},
	{matches: keywordRule(dictionaryKeywords), plan: []string{AgentDictionary, AgentSummary}},
}

var defaultPlan = []string{AgentSpaceX, AgentWeather, AgentSummary}

// Plan maps a goal to an agent sequence by keyword matching.
func Plan(goal string) contractx.AgentSequence {
	g := strings.ToLower(goal)
	for _, r := range rules {
		if r.matches(g) {
			return append(contractx.AgentSequence(nil), r.plan...)
		}
	}
	return append(contractx.AgentSequence(nil), defaultPlan...)
}

func keywordRule(keywords []string) func(string) bool {
	return func(g string) bool {
		return containsAny(g, keywords)
	}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// Rules adapts Plan to contract.Planner. Its outcome is always a fallback
// because it is the substitute for intelligent planning.
type Rules struct {
	Reason string
}

var _ contractx.Planner = Rules{}

func (r Rules) Plan(_ context.Context, goal string) contractx.PlannerOutcome {
	reason := strings.TrimSpace(r.Reason)
	if reason == "" {
		reason = "intelligent planner not configured"
	}
	return contractx.Fallback(Plan(goal), reason)
}
