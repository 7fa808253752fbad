package specialist

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	contractx "github.com/tanpawarit/goal-pipeline/agent/contract"
	plannerx "github.com/tanpawarit/goal-pipeline/agent/planner"
)

// Launch is considered at risk above these limits.
const (
	MaxWindSpeed = 30.0
	MaxClouds    = 70.0
)

const (
	SummaryDelayed   = "Launch might be delayed due to weather conditions."
	SummaryProceeds  = "Launch is likely to proceed as planned."
	SummaryNoWeather = "Weather data is unavailable, so the launch outlook is unknown."
	SummaryNothing   = "No data was gathered for this goal."
)

// Summary reads whatever earlier agents wrote and writes a one-paragraph
// text under contract.KeySummary. Every input key is optional.
type Summary struct{}

var _ contractx.Agent = Summary{}

func (Summary) Name() string { return plannerx.AgentSummary }

func (Summary) Description() string {
	return "Summarizes gathered data and judges whether weather may delay the launch."
}

func (Summary) Run(_ context.Context, in contractx.Context) (contractx.Context, error) {
	out := in.Clone()
	out[contractx.KeySummary] = Summarize(in)
	return out, nil
}

// Summarize builds the summary text for c. It never returns an empty string.
func Summarize(c contractx.Context) string {
	var lines []string

	launch := succeeded(c.Map(contractx.KeySpaceX))
	if launch != nil {
		line := "Next launch"
		if mission := str(launch, "mission"); mission != "" {
			line += ": " + mission
		}
		if date := str(launch, "date"); date != "" {
			line += " on " + date
		}
		if pad := str(launch, "launchpad"); pad != "" {
			line += " from " + pad
		}
		lines = append(lines, line+".")
	}

	weather := succeeded(c.Map(contractx.KeyWeather))
	switch {
	case weather != nil:
		if LaunchDelayed(weather) {
			lines = append(lines, SummaryDelayed)
		} else {
			lines = append(lines, SummaryProceeds)
		}
		if cond := str(weather, "condition"); cond != "" {
			lines = append(lines, "Conditions: "+cond+".")
		}
	case launch != nil:
		lines = append(lines, SummaryNoWeather)
	}

	if news := succeeded(c.Map(contractx.KeyNews)); news != nil {
		if title := firstArticleTitle(news["articles"]); title != "" {
			lines = append(lines, fmt.Sprintf("Top %s story: %s.", str(news, "topic"), title))
		}
	}

	if calc := succeeded(c.Map(contractx.KeyCalculation)); calc != nil {
		if v, ok := number(calc["result"]); ok {
			lines = append(lines, fmt.Sprintf("%s = %s.", str(calc, "expression"), strconv.FormatFloat(v, 'f', -1, 64)))
		}
	}

	if def := succeeded(c.Map(contractx.KeyDefinition)); def != nil {
		if text := firstDefinition(def["meanings"]); text != "" {
			lines = append(lines, fmt.Sprintf("%s: %s", str(def, "word"), text))
		}
	}

	if len(lines) == 0 {
		return SummaryNothing
	}
	return strings.Join(lines, " ")
}

// LaunchDelayed applies the weather thresholds. Missing readings count as zero.
func LaunchDelayed(weather map[string]any) bool {
	wind, _ := number(weather["wind_speed"])
	clouds, _ := number(weather["clouds"])
	return wind > MaxWindSpeed || clouds > MaxClouds
}

// succeeded drops error-shaped results.
func succeeded(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	if ok, present := m["success"].(bool); present && !ok {
		return nil
	}
	return m
}

func firstArticleTitle(v any) string {
	switch articles := v.(type) {
	case []map[string]any:
		if len(articles) > 0 {
			return str(articles[0], "title")
		}
	case []any:
		if len(articles) > 0 {
			if a, ok := articles[0].(map[string]any); ok {
				return str(a, "title")
			}
		}
	}
	return ""
}

func firstDefinition(v any) string {
	var first map[string]any
	switch meanings := v.(type) {
	case []map[string]any:
		if len(meanings) > 0 {
			first = meanings[0]
		}
	case []any:
		if len(meanings) > 0 {
			first, _ = meanings[0].(map[string]any)
		}
	}
	if first == nil {
		return ""
	}
	switch defs := first["definitions"].(type) {
	case []string:
		if len(defs) > 0 {
			return defs[0]
		}
	case []any:
		if len(defs) > 0 {
			s, _ := defs[0].(string)
			return s
		}
	}
	return ""
}
