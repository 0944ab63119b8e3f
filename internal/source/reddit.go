package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/trendpulse/trendpulse/internal/model"
)

// Reddit fetches the hot listing of one subreddit.
type Reddit struct {
	client    *Client
	gate      *RateGate
	subreddit string
	limit     int
}

// NewReddit creates a source for /r/<subreddit>/hot.
func NewReddit(client *Client, requestInterval time.Duration, subreddit string, limit int) *Reddit {
	return &Reddit{
		client:    client,
		gate:      NewRateGate(requestInterval),
		subreddit: subreddit,
		limit:     limit,
	}
}

func (r *Reddit) ID() string   { return "reddit_" + r.subreddit }
func (r *Reddit) Name() string { return "Reddit r/" + r.subreddit }

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title       string  `json:"title"`
				URL         string  `json:"url"`
				Permalink   string  `json:"permalink"`
				Score       float64 `json:"score"`
				NumComments int     `json:"num_comments"`
				Stickied    bool    `json:"stickied"`
				Author      string  `json:"author"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (r *Reddit) FetchNews(ctx context.Context) ([]model.NewsItem, error) {
	if err := r.gate.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("https://www.reddit.com/r/%s/hot.json?limit=%d", r.subreddit, r.limit)
	var listing redditListing
	if err := r.client.GetJSON(ctx, url, &listing); err != nil {
		return nil, fmt.Errorf("hot listing: %w", err)
	}

	items := make([]model.NewsItem, 0, len(listing.Data.Children))
	rank := 0
	for _, child := range listing.Data.Children {
		post := child.Data
		// Stickied posts are moderation pins, not trending content.
		if post.Stickied || strings.TrimSpace(post.Title) == "" {
			continue
		}
		if rank >= r.limit {
			break
		}

		link := post.URL
		if link == "" && post.Permalink != "" {
			link = "https://www.reddit.com" + post.Permalink
		}

		rank++
		items = append(items, model.NewsItem{
			Title:      strings.TrimSpace(post.Title),
			URL:        link,
			SourceID:   r.ID(),
			SourceName: r.Name(),
			Rank:       rank,
			Hotness:    post.Score,
			Timestamp:  time.Now(),
			Extra: map[string]any{
				"comments": post.NumComments,
				"author":   post.Author,
			},
		})
	}

	return items, nil
}
