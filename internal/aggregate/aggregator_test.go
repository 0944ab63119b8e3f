package aggregate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/trendpulse/trendpulse/internal/filter"
	"github.com/trendpulse/trendpulse/internal/model"
	"github.com/trendpulse/trendpulse/internal/source"
)

// stubSource is a test source returning fixed items or a fixed error.
type stubSource struct {
	id    string
	items []model.NewsItem
	err   error
}

func (s *stubSource) ID() string   { return s.id }
func (s *stubSource) Name() string { return s.id }

func (s *stubSource) FetchNews(ctx context.Context) ([]model.NewsItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.items, nil
}

func stubItems(sourceID string, titles ...string) []model.NewsItem {
	out := make([]model.NewsItem, len(titles))
	for i, title := range titles {
		out[i] = model.NewsItem{Title: title, SourceID: sourceID, Rank: i + 1, Hotness: 10}
	}
	return out
}

func testConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.Report.TopN = 10
	return cfg
}

func newTestAggregator(sources []source.Source, kf *filter.Filter) *Aggregator {
	return New(sources, kf, testConfig(), zerolog.Nop())
}

func TestFetchAllZeroSources(t *testing.T) {
	agg := newTestAggregator(nil, nil)
	result := agg.FetchAll(context.Background(), nil)

	if len(result.Items) != 0 || len(result.SourcesFetched) != 0 || len(result.SourcesFailed) != 0 || result.TotalRaw != 0 {
		t.Errorf("zero sources should yield a valid empty result, got %+v", result)
	}
	if result.Items == nil {
		t.Error("Items must be an empty slice, not nil")
	}
}

func TestFetchAllFailureIsolation(t *testing.T) {
	sources := []source.Source{
		&stubSource{id: "a", items: stubItems("a", "alpha story")},
		&stubSource{id: "b", err: errors.New("connection refused")},
		&stubSource{id: "c", items: stubItems("c", "gamma story")},
	}

	agg := newTestAggregator(sources, nil)
	result := agg.FetchAll(context.Background(), nil)

	if len(result.SourcesFailed) != 1 || result.SourcesFailed[0] != "b" {
		t.Errorf("SourcesFailed = %v, want [b]", result.SourcesFailed)
	}
	if len(result.SourcesFetched) != 2 {
		t.Errorf("SourcesFetched = %v, want a and c", result.SourcesFetched)
	}
	if result.TotalRaw != 2 {
		t.Errorf("TotalRaw = %d, want 2", result.TotalRaw)
	}

	got := make(map[string]bool)
	for _, item := range result.Items {
		got[item.Title] = true
	}
	if !got["alpha story"] || !got["gamma story"] {
		t.Errorf("items from surviving sources missing: %v", got)
	}
}

func TestFetchAllAllSourcesFail(t *testing.T) {
	sources := []source.Source{
		&stubSource{id: "a", err: errors.New("down")},
		&stubSource{id: "b", err: errors.New("down")},
	}

	agg := newTestAggregator(sources, nil)
	result := agg.FetchAll(context.Background(), nil)

	// Zero successes is still a valid empty result, not a hard failure.
	if len(result.SourcesFetched) != 0 || len(result.Items) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
	if len(result.SourcesFailed) != 2 {
		t.Errorf("SourcesFailed = %v", result.SourcesFailed)
	}
}

func TestFetchAllDedupAcrossSources(t *testing.T) {
	sources := []source.Source{
		&stubSource{id: "a", items: stubItems("a", "Same Big Story")},
		&stubSource{id: "b", items: stubItems("b", "same big story!!")},
	}

	agg := newTestAggregator(sources, nil)
	result := agg.FetchAll(context.Background(), nil)

	if result.TotalRaw != 2 {
		t.Errorf("TotalRaw = %d, want 2 (pre-dedup)", result.TotalRaw)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected 1 item after dedup, got %d", len(result.Items))
	}
	if result.Items[0].SourceID != "a" {
		t.Errorf("first-seen item should survive, got source %q", result.Items[0].SourceID)
	}
}

func TestFetchAllFilteringAndCounts(t *testing.T) {
	kf := filter.New()
	kf.Parse("ai\n")

	sources := []source.Source{
		&stubSource{id: "a", items: stubItems("a", "AI story", "weather story")},
	}

	agg := newTestAggregator(sources, kf)
	result := agg.FetchAll(context.Background(), nil)

	if result.TotalRaw != 2 {
		t.Errorf("TotalRaw = %d", result.TotalRaw)
	}
	if result.TotalFiltered != 1 {
		t.Errorf("TotalFiltered = %d, want 1", result.TotalFiltered)
	}
	if len(result.Items) != 1 || result.Items[0].Title != "AI story" {
		t.Errorf("unexpected items: %+v", result.Items)
	}
	if len(result.Items[0].MatchedKeywords) != 1 || result.Items[0].MatchedKeywords[0] != "ai" {
		t.Errorf("MatchedKeywords = %v", result.Items[0].MatchedKeywords)
	}
}

func TestFetchAllTruncatesToTopN(t *testing.T) {
	titles := make([]string, 30)
	for i := range titles {
		titles[i] = fmt.Sprintf("distinct story number %d", i)
	}
	sources := []source.Source{&stubSource{id: "a", items: stubItems("a", titles...)}}

	cfg := testConfig()
	cfg.Report.TopN = 10
	agg := New(sources, nil, cfg, zerolog.Nop())
	result := agg.FetchAll(context.Background(), nil)

	if len(result.Items) != 10 {
		t.Errorf("expected top-10 truncation, got %d items", len(result.Items))
	}
	if result.TotalFiltered != 30 {
		t.Errorf("TotalFiltered counts pre-truncation items, got %d", result.TotalFiltered)
	}
}

func TestFetchAllProgressCallback(t *testing.T) {
	sources := []source.Source{
		&stubSource{id: "ok", items: stubItems("ok", "story")},
		&stubSource{id: "bad", err: errors.New("boom")},
	}

	var mu sync.Mutex
	statuses := make(map[string][]string)
	progress := func(sourceID, status string) {
		mu.Lock()
		statuses[sourceID] = append(statuses[sourceID], status)
		mu.Unlock()
	}

	agg := newTestAggregator(sources, nil)
	agg.FetchAll(context.Background(), progress)

	mu.Lock()
	defer mu.Unlock()
	if got := statuses["ok"]; len(got) != 2 || got[0] != "fetching" || got[1] != "success" {
		t.Errorf("ok statuses = %v", got)
	}
	if got := statuses["bad"]; len(got) != 2 || got[0] != "fetching" || got[1] != "failed" {
		t.Errorf("bad statuses = %v", got)
	}
}

func TestSetFilterSwapsAtomically(t *testing.T) {
	sources := []source.Source{&stubSource{id: "a", items: stubItems("a", "AI story", "other story")}}
	agg := newTestAggregator(sources, nil)

	// Pass-through before the swap.
	if got := agg.FetchAll(context.Background(), nil); len(got.Items) != 2 {
		t.Fatalf("pass-through run: %d items", len(got.Items))
	}

	kf := filter.New()
	kf.Parse("ai\n")
	agg.SetFilter(kf)

	if got := agg.FetchAll(context.Background(), nil); len(got.Items) != 1 {
		t.Errorf("post-swap run should filter, got %d items", len(got.Items))
	}
}
