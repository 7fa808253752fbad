package specialist

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	contractx "github.com/tanpawarit/goal-pipeline/agent/contract"
	plannerx "github.com/tanpawarit/goal-pipeline/agent/planner"
)

// Kennedy Space Center, used when no launch coordinates are in the context.
const (
	DefaultLatitude  = 28.562302
	DefaultLongitude = -80.577356
)

var errNoWeatherKey = errors.New("weather api key not configured")

// Weather writes current conditions under contract.KeyWeather for the launch
// site found under contract.KeySpaceX, or the default site.
type Weather struct {
	baseURL string
	apiKey  string
	units   string
	http    *jsonClient
}

var _ contractx.Agent = (*Weather)(nil)

func NewWeather(cfg WeatherConfig) *Weather {
	units := strings.TrimSpace(cfg.Units)
	if units == "" {
		units = "metric"
	}
	return &Weather{
		baseURL: cfg.BaseURL,
		apiKey:  strings.TrimSpace(cfg.APIKey),
		units:   units,
		http:    newJSONClient(cfg.Timeout),
	}
}

func (a *Weather) Name() string { return plannerx.AgentWeather }

func (a *Weather) Description() string {
	return "Gets current weather at the launch site: temperature, wind speed, cloud cover and conditions."
}

type owmResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Clouds struct {
		All float64 `json:"all"`
	} `json:"clouds"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

func (a *Weather) Run(ctx context.Context, in contractx.Context) (contractx.Context, error) {
	out := in.Clone()
	goal := in.Goal()

	if a.apiKey == "" {
		out[contractx.KeyWeather] = failure(errNoWeatherKey, goal)
		return out, nil
	}

	lat, lon, source := coordinates(in)
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("appid", a.apiKey)
	q.Set("units", a.units)

	var resp owmResponse
	if err := a.http.get(ctx, joinURL(a.baseURL, "weather")+"?"+q.Encode(), nil, &resp); err != nil {
		out[contractx.KeyWeather] = failure(fmt.Errorf("weather lookup: %w", err), goal)
		return out, nil
	}

	condition := ""
	if len(resp.Weather) > 0 {
		condition = resp.Weather[0].Description
	}
	out[contractx.KeyWeather] = map[string]any{
		"success":            true,
		"temperature":        resp.Main.Temp,
		"wind_speed":         resp.Wind.Speed,
		"clouds":             resp.Clouds.All,
		"humidity":           resp.Main.Humidity,
		"condition":          condition,
		"location":           resp.Name,
		"coordinates":        map[string]any{"lat": lat, "lon": lon},
		"coordinates_source": source,
	}
	return out, nil
}

func coordinates(in contractx.Context) (lat, lon float64, source string) {
	launch := in.Map(contractx.KeySpaceX)
	if launch != nil {
		if coords, ok := launch["coordinates"].(map[string]any); ok {
			la, okLat := number(coords["lat"])
			lo, okLon := number(coords["lon"])
			if okLat && okLon {
				return la, lo, "launchpad"
			}
		}
	}
	return DefaultLatitude, DefaultLongitude, "default"
}
