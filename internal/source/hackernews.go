package source

import (
	"context"
	"fmt"
	"time"

	"github.com/trendpulse/trendpulse/internal/model"
)

const hackerNewsAPI = "https://hacker-news.firebaseio.com/v0"

// HackerNews fetches top stories from the Hacker News Firebase API.
type HackerNews struct {
	client *Client
	gate   *RateGate
	limit  int
}

// NewHackerNews creates the Hacker News source.
func NewHackerNews(client *Client, requestInterval time.Duration, limit int) *HackerNews {
	return &HackerNews{
		client: client,
		gate:   NewRateGate(requestInterval),
		limit:  limit,
	}
}

func (h *HackerNews) ID() string   { return "hackernews" }
func (h *HackerNews) Name() string { return "Hacker News" }

type hnStory struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Score       int    `json:"score"`
	By          string `json:"by"`
	Descendants int    `json:"descendants"`
	Type        string `json:"type"`
}

// FetchNews retrieves the top story list and resolves each story. Individual
// story failures are skipped; only a failed top-stories request is an error.
func (h *HackerNews) FetchNews(ctx context.Context) ([]model.NewsItem, error) {
	var ids []int
	if err := h.client.GetJSON(ctx, hackerNewsAPI+"/topstories.json", &ids); err != nil {
		return nil, fmt.Errorf("top stories: %w", err)
	}
	if len(ids) > h.limit {
		ids = ids[:h.limit]
	}

	items := make([]model.NewsItem, 0, len(ids))
	rank := 0
	for _, id := range ids {
		if err := h.gate.Wait(ctx); err != nil {
			return nil, err
		}

		var story hnStory
		url := fmt.Sprintf("%s/item/%d.json", hackerNewsAPI, id)
		if err := h.client.GetJSON(ctx, url, &story); err != nil {
			continue
		}
		if story.Title == "" {
			continue
		}

		link := story.URL
		if link == "" {
			link = fmt.Sprintf("https://news.ycombinator.com/item?id=%d", story.ID)
		}

		rank++
		items = append(items, model.NewsItem{
			Title:      story.Title,
			URL:        link,
			SourceID:   h.ID(),
			SourceName: h.Name(),
			Rank:       rank,
			Hotness:    float64(story.Score),
			Timestamp:  time.Now(),
			Extra: map[string]any{
				"by":       story.By,
				"comments": story.Descendants,
			},
		})
	}

	return items, nil
}
