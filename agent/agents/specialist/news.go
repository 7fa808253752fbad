package specialist

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	contractx "github.com/tanpawarit/goal-pipeline/agent/contract"
	plannerx "github.com/tanpawarit/goal-pipeline/agent/planner"
)

const maxArticles = 5

var errNoNewsKey = errors.New("news api key not configured")

// News writes recent articles under contract.KeyNews. The search topic comes
// from the goal and from data earlier agents already gathered.
type News struct {
	baseURL  string
	apiKey   string
	pageSize int
	http     *jsonClient
	now      func() time.Time
}

var _ contractx.Agent = (*News)(nil)

func NewNews(cfg NewsConfig) *News {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	return &News{
		baseURL:  cfg.BaseURL,
		apiKey:   strings.TrimSpace(cfg.APIKey),
		pageSize: pageSize,
		http:     newJSONClient(cfg.Timeout),
		now:      time.Now,
	}
}

func (a *News) Name() string { return plannerx.AgentNews }

func (a *News) Description() string {
	return "Finds recent news articles about the goal topic from the last seven days."
}

type newsAPIResponse struct {
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
		Author      string `json:"author"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

func (a *News) Run(ctx context.Context, in contractx.Context) (contractx.Context, error) {
	out := in.Clone()
	goal := in.Goal()

	topics := NewsTopics(goal, in)
	topic := topics[0]

	if a.apiKey == "" {
		result := failure(errNoNewsKey, goal)
		result["topic"] = topic
		out[contractx.KeyNews] = result
		return out, nil
	}

	articles, err := a.search(ctx, topic)
	if err != nil {
		result := failure(fmt.Errorf("news lookup: %w", err), goal)
		result["topic"] = topic
		out[contractx.KeyNews] = result
		return out, nil
	}
	if len(articles) == 0 {
		out[contractx.KeyNews] = map[string]any{
			"success":      false,
			"error":        fmt.Sprintf("no news articles found for topic: %s", topic),
			"topic":        topic,
			"search_terms": topics,
			"input":        goal,
		}
		return out, nil
	}

	total := len(articles)
	if len(articles) > maxArticles {
		articles = articles[:maxArticles]
	}
	out[contractx.KeyNews] = map[string]any{
		"success":       true,
		"topic":         topic,
		"search_terms":  topics,
		"articles":      articles,
		"total_results": total,
		"input":         goal,
	}
	return out, nil
}

func (a *News) search(ctx context.Context, topic string) ([]map[string]any, error) {
	q := url.Values{}
	q.Set("q", topic)
	q.Set("from", a.now().AddDate(0, 0, -7).Format("2006-01-02"))
	q.Set("sortBy", "relevancy")
	q.Set("language", "en")
	q.Set("pageSize", strconv.Itoa(a.pageSize))

	var resp newsAPIResponse
	headers := map[string]string{"X-Api-Key": a.apiKey}
	if err := a.http.get(ctx, joinURL(a.baseURL, "everything")+"?"+q.Encode(), headers, &resp); err != nil {
		return nil, err
	}

	articles := make([]map[string]any, 0, len(resp.Articles))
	for _, art := range resp.Articles {
		if art.Title == "" || art.Description == "" {
			continue
		}
		author := art.Author
		if author == "" {
			author = "Unknown"
		}
		articles = append(articles, map[string]any{
			"title":        art.Title,
			"description":  art.Description,
			"url":          art.URL,
			"published_at": art.PublishedAt,
			"source":       art.Source.Name,
			"author":       author,
		})
	}
	return articles, nil
}

// NewsTopics returns search terms in priority order. It never returns an empty slice.
func NewsTopics(goal string, c contractx.Context) []string {
	g := strings.ToLower(goal)
	var topics []string

	if containsWord(g, "news", "article", "headline", "breaking", "latest") {
		switch {
		case containsWord(g, "spacex", "space"):
			topics = append(topics, "SpaceX")
		case containsWord(g, "weather", "climate"):
			topics = append(topics, "weather")
		case containsWord(g, "science"):
			topics = append(topics, "science")
		default:
			topics = append(topics, "technology")
		}
	}

	if _, ok := c[contractx.KeySpaceX]; ok {
		topics = append(topics, "SpaceX launch", "space exploration")
	}
	if weather := c.Map(contractx.KeyWeather); weather != nil {
		if loc := str(weather, "location"); loc != "" {
			topics = append(topics, "weather "+loc)
		}
	}

	if len(topics) == 0 {
		switch {
		case containsWord(g, "spacex", "launch", "rocket", "space"):
			topics = append(topics, "SpaceX")
		case containsWord(g, "weather", "climate", "storm"):
			topics = append(topics, "weather")
		default:
			topics = append(topics, "technology")
		}
	}
	return topics
}

func containsWord(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
