package source

import (
	"strings"

	"github.com/trendpulse/trendpulse/internal/model"
)

// Google News RSS topic tokens.
var googleNewsTopics = map[string]string{
	"world":      "CAAqJggKIiBDQkFTRWdvSUwyMHZNRGx1YlY4U0FtVnVHZ0pWVXlnQVAB",
	"business":   "CAAqJggKIiBDQkFTRWdvSUwyMHZNRGx6TVdZU0FtVnVHZ0pWVXlnQVAB",
	"technology": "CAAqJggKIiBDQkFTRWdvSUwyMHZNRGRqTVhZU0FtVnVHZ0pWVXlnQVAB",
	"science":    "CAAqJggKIiBDQkFTRWdvSUwyMHZNRFp0Y1RjU0FtVnVHZ0pWVXlnQVAB",
}

// GoogleNewsFeed builds the feed for one Google News topic; an empty topic
// is the top-stories feed.
func GoogleNewsFeed(topic string) Feed {
	id := "google_news_top"
	name := "Google News (Top Stories)"
	url := "https://news.google.com/rss"
	if topic != "" {
		id = "google_news_" + topic
		name = "Google News (" + capitalize(topic) + ")"
		if token, ok := googleNewsTopics[topic]; ok {
			url = "https://news.google.com/rss/topics/" + token
		}
	}
	return Feed{ID: id, Name: name, URL: url}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// DefaultSources builds the configured source list: a spread of
// international news, tech, finance, and community feeds.
func DefaultSources(client *Client, cfg model.CrawlerConfig) []Source {
	interval := cfg.RequestInterval
	limit := cfg.ItemsPerSource

	feeds := []Feed{
		{ID: "bbc", Name: "BBC News", URL: "https://feeds.bbci.co.uk/news/rss.xml"},
		GoogleNewsFeed("world"),
		{ID: "techcrunch", Name: "TechCrunch", URL: "https://techcrunch.com/feed/"},
		{ID: "arstechnica", Name: "Ars Technica", URL: "https://feeds.arstechnica.com/arstechnica/index"},
		{ID: "theverge", Name: "The Verge", URL: "https://www.theverge.com/rss/index.xml"},
		{ID: "wired", Name: "Wired", URL: "https://www.wired.com/feed/rss"},
		{ID: "bloomberg", Name: "Bloomberg", URL: "https://feeds.bloomberg.com/markets/news.rss"},
		{ID: "cnbc", Name: "CNBC", URL: "https://www.cnbc.com/id/100003114/device/rss/rss.html"},
		GoogleNewsFeed("business"),
		GoogleNewsFeed(""),
		GoogleNewsFeed("science"),
	}

	sources := make([]Source, 0, len(feeds)+3)
	for _, feed := range feeds {
		sources = append(sources, NewRSS(client, interval, feed, limit))
	}
	sources = append(sources,
		NewHackerNews(client, interval, limit),
		NewReddit(client, interval, "worldnews", limit),
		NewReddit(client, interval, "technology", limit),
	)
	return sources
}
