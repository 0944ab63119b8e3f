package source

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	xhtml "golang.org/x/net/html"

	"github.com/trendpulse/trendpulse/internal/model"
)

// Feed identifies one RSS or Atom feed.
type Feed struct {
	ID   string
	Name string
	URL  string
}

// RSS fetches a single RSS 2.0 or Atom feed. One type covers every
// feed-backed source; the per-platform differences are just feed URLs.
type RSS struct {
	client *Client
	gate   *RateGate
	feed   Feed
	limit  int
}

// NewRSS creates a feed-backed source.
func NewRSS(client *Client, requestInterval time.Duration, feed Feed, limit int) *RSS {
	return &RSS{
		client: client,
		gate:   NewRateGate(requestInterval),
		feed:   feed,
		limit:  limit,
	}
}

func (r *RSS) ID() string   { return r.feed.ID }
func (r *RSS) Name() string { return r.feed.Name }

type rssDocument struct {
	Channel struct {
		Items []rssEntry `xml:"item"`
	} `xml:"channel"`
	// Atom feeds carry entries at the document root.
	Entries []atomEntry `xml:"entry"`
}

type rssEntry struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	Source      string `xml:"source"`
}

type atomEntry struct {
	Title string `xml:"title"`
	Link  struct {
		Href string `xml:"href,attr"`
	} `xml:"link"`
	Summary string `xml:"summary"`
	Updated string `xml:"updated"`
}

func (r *RSS) FetchNews(ctx context.Context) ([]model.NewsItem, error) {
	if err := r.gate.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := r.client.Get(ctx, r.feed.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}

	var doc rssDocument
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	entries := doc.Channel.Items
	if len(entries) == 0 {
		for _, e := range doc.Entries {
			entries = append(entries, rssEntry{
				Title:       e.Title,
				Link:        e.Link.Href,
				Description: e.Summary,
				PubDate:     e.Updated,
			})
		}
	}

	items := make([]model.NewsItem, 0, len(entries))
	rank := 0
	for _, entry := range entries {
		title := cleanText(entry.Title)
		if title == "" {
			continue
		}
		if rank >= r.limit {
			break
		}

		rank++
		item := model.NewsItem{
			Title:      title,
			URL:        strings.TrimSpace(entry.Link),
			SourceID:   r.feed.ID,
			SourceName: r.feed.Name,
			Rank:       rank,
			// Feeds carry no popularity signal; derive one from position
			// so feed items still participate in hotness scoring.
			Hotness:   float64(100 - rank),
			Timestamp: time.Now(),
		}
		if desc := cleanText(entry.Description); desc != "" {
			item.Extra = map[string]any{"description": desc}
		}
		if entry.Source != "" {
			if item.Extra == nil {
				item.Extra = map[string]any{}
			}
			item.Extra["publisher"] = cleanText(entry.Source)
		}
		items = append(items, item)
	}

	return items, nil
}

// cleanText strips markup from a feed field and collapses whitespace.
// Descriptions (and Google News titles) routinely embed HTML fragments.
func cleanText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if !strings.ContainsAny(s, "<&") {
		return s
	}

	var b strings.Builder
	tokenizer := xhtml.NewTokenizer(strings.NewReader(s))
	for {
		tt := tokenizer.Next()
		if tt == xhtml.ErrorToken {
			break
		}
		if tt == xhtml.TextToken {
			b.Write(tokenizer.Text())
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
