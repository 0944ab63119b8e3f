package model

import "time"

// NewsItem represents a single trending entry fetched from one source.
// Items are immutable after the source produces them, except for
// MatchedKeywords which the keyword filter attaches during filtering.
type NewsItem struct {
	Title      string         `json:"title"`           // Headline (required, non-empty)
	URL        string         `json:"url"`             // Link to the story
	SourceID   string         `json:"source_id"`       // Stable source identifier (e.g., "hackernews")
	SourceName string         `json:"source_name"`     // Display name (e.g., "Hacker News")
	Rank       int            `json:"rank"`            // Source-local position, 1 = top
	Hotness    float64        `json:"hotness"`         // Source-local popularity signal, unit varies
	Timestamp  time.Time      `json:"timestamp"`       // When the item was fetched
	Extra      map[string]any `json:"extra,omitempty"` // Source-specific metadata, opaque to the core

	MatchedKeywords []string `json:"matched_keywords,omitempty"` // Set by the keyword filter
}

// AggregatedNews is the outcome of one aggregation run: the final ranked,
// truncated item list plus per-source bookkeeping. Constructed once per run
// and read-only for downstream consumers.
type AggregatedNews struct {
	Items          []NewsItem `json:"items"`
	SourcesFetched []string   `json:"sources_fetched"`
	SourcesFailed  []string   `json:"sources_failed"`
	TotalRaw       int        `json:"total_raw_items"`      // Count before dedup
	TotalFiltered  int        `json:"total_filtered_items"` // Count after filtering, before truncation
	FetchTime      time.Time  `json:"fetch_time"`
}

// TrendAnalysis is the optional LLM-generated narrative over an aggregation
// run. It never affects scoring or item selection.
type TrendAnalysis struct {
	Enabled   bool      `json:"enabled"`
	Provider  string    `json:"provider,omitempty"`
	Model     string    `json:"model,omitempty"`
	Summary   string    `json:"summary,omitempty"`  // Markdown narrative
	Themes    []string  `json:"themes,omitempty"`   // Cross-source themes the model identified
	CreatedAt time.Time `json:"created_at"`
	Warnings  []string  `json:"warnings,omitempty"`
}
