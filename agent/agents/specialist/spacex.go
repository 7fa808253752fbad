package specialist

import (
	"context"
	"fmt"
	"net/url"

	contractx "github.com/tanpawarit/goal-pipeline/agent/contract"
	plannerx "github.com/tanpawarit/goal-pipeline/agent/planner"
)

// SpaceX writes the next launch under contract.KeySpaceX, including the
// launchpad coordinates the weather agent reads.
type SpaceX struct {
	baseURL string
	http    *jsonClient
}

var _ contractx.Agent = (*SpaceX)(nil)

func NewSpaceX(cfg SpaceXConfig) *SpaceX {
	return &SpaceX{baseURL: cfg.BaseURL, http: newJSONClient(cfg.Timeout)}
}

func (a *SpaceX) Name() string { return plannerx.AgentSpaceX }

func (a *SpaceX) Description() string {
	return "Fetches the next SpaceX launch with mission name, date and launch site coordinates."
}

type spacexLaunch struct {
	Name         string `json:"name"`
	DateUTC      string `json:"date_utc"`
	FlightNumber int    `json:"flight_number"`
	Details      string `json:"details"`
	Launchpad    string `json:"launchpad"`
}

type spacexLaunchpad struct {
	Name      string  `json:"name"`
	FullName  string  `json:"full_name"`
	Locality  string  `json:"locality"`
	Region    string  `json:"region"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (a *SpaceX) Run(ctx context.Context, in contractx.Context) (contractx.Context, error) {
	out := in.Clone()
	goal := in.Goal()

	var launch spacexLaunch
	if err := a.http.get(ctx, joinURL(a.baseURL, "launches", "next"), nil, &launch); err != nil {
		out[contractx.KeySpaceX] = failure(fmt.Errorf("spacex launch lookup: %w", err), goal)
		return out, nil
	}

	info := map[string]any{
		"success":       true,
		"mission":       launch.Name,
		"date":          launch.DateUTC,
		"flight_number": launch.FlightNumber,
		"launchpad_id":  launch.Launchpad,
	}
	if launch.Details != "" {
		info["details"] = launch.Details
	}

	if launch.Launchpad != "" {
		var pad spacexLaunchpad
		err := a.http.get(ctx, joinURL(a.baseURL, "launchpads", url.PathEscape(launch.Launchpad)), nil, &pad)
		if err == nil {
			info["launchpad"] = pad.FullName
			info["location"] = pad.Locality + ", " + pad.Region
			info["coordinates"] = map[string]any{"lat": pad.Latitude, "lon": pad.Longitude}
		} else {
			info["launchpad_error"] = err.Error()
		}
	}

	out[contractx.KeySpaceX] = info
	return out, nil
}
