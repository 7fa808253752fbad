package specialist

import "time"

type SpaceXConfig struct {
	BaseURL string        `split_words:"true" default:"https://api.spacexdata.com/v4"`
	Timeout time.Duration `default:"10s"`
}

type WeatherConfig struct {
	BaseURL string        `split_words:"true" default:"https://api.openweathermap.org/data/2.5"`
	APIKey  string        `split_words:"true"`
	Units   string        `default:"metric"`
	Timeout time.Duration `default:"10s"`
}

type NewsConfig struct {
	BaseURL  string        `split_words:"true" default:"https://newsapi.org/v2"`
	APIKey   string        `split_words:"true"`
	PageSize int           `split_words:"true" default:"10"`
	Timeout  time.Duration `default:"10s"`
}

type DictionaryConfig struct {
	BaseURL string        `split_words:"true" default:"https://api.dictionaryapi.dev/api/v2/entries/en"`
	Timeout time.Duration `default:"10s"`
}

// Config groups the upstream settings of every data-fetching agent.
type Config struct {
	SpaceX     SpaceXConfig
	Weather    WeatherConfig
	News       NewsConfig
	Dictionary DictionaryConfig
}

// DefaultConfig mirrors the envconfig defaults for callers that skip the environment.
func DefaultConfig() Config {
	return Config{
		SpaceX:     SpaceXConfig{BaseURL: "https://api.spacexdata.com/v4", Timeout: 10 * time.Second},
		Weather:    WeatherConfig{BaseURL: "https://api.openweathermap.org/data/2.5", Units: "metric", Timeout: 10 * time.Second},
		News:       NewsConfig{BaseURL: "https://newsapi.org/v2", PageSize: 10, Timeout: 10 * time.Second},
		Dictionary: DictionaryConfig{BaseURL: "https://api.dictionaryapi.dev/api/v2/entries/en", Timeout: 10 * time.Second},
	}
}

func timeoutOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return 10 * time.Second
	}
	return d
}
