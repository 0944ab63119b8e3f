package storage

import (
	"context"
	"testing"
	"time"

	"github.com/trendpulse/trendpulse/internal/model"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleRun() *model.AggregatedNews {
	return &model.AggregatedNews{
		Items: []model.NewsItem{
			{Title: "first", URL: "https://a", SourceID: "bbc", SourceName: "BBC News", Rank: 1, Hotness: 99, MatchedKeywords: []string{"ai"}},
			{Title: "second", URL: "https://b", SourceID: "hackernews", SourceName: "Hacker News", Rank: 2, Hotness: 150},
		},
		SourcesFetched: []string{"bbc", "hackernews"},
		TotalRaw:       40,
		TotalFiltered:  12,
		FetchTime:      time.Now(),
	}
}

func TestLatestItemsEmptyHistory(t *testing.T) {
	s := testStore(t)

	items, err := s.LatestItems(context.Background())
	if err != nil {
		t.Fatalf("LatestItems: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("fresh store should have no history, got %d items", len(items))
	}
}

func TestSaveRunRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.SaveRun(ctx, "run-1", sampleRun()); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	items, err := s.LatestItems(ctx)
	if err != nil {
		t.Fatalf("LatestItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Title != "first" || items[1].Title != "second" {
		t.Errorf("item order not preserved: %q, %q", items[0].Title, items[1].Title)
	}
	if len(items[0].MatchedKeywords) != 1 || items[0].MatchedKeywords[0] != "ai" {
		t.Errorf("MatchedKeywords round trip failed: %v", items[0].MatchedKeywords)
	}
	if items[1].MatchedKeywords != nil {
		t.Errorf("absent keywords should stay nil, got %v", items[1].MatchedKeywords)
	}
}

func TestLatestItemsReturnsNewestRun(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	old := sampleRun()
	if err := s.SaveRun(ctx, "run-1", old); err != nil {
		t.Fatalf("SaveRun 1: %v", err)
	}

	newer := &model.AggregatedNews{
		Items:     []model.NewsItem{{Title: "newest", URL: "https://c", SourceID: "bbc", SourceName: "BBC News", Rank: 1}},
		FetchTime: time.Now(),
	}
	if err := s.SaveRun(ctx, "run-2", newer); err != nil {
		t.Fatalf("SaveRun 2: %v", err)
	}

	items, err := s.LatestItems(ctx)
	if err != nil {
		t.Fatalf("LatestItems: %v", err)
	}
	if len(items) != 1 || items[0].Title != "newest" {
		t.Errorf("expected newest run, got %+v", items)
	}
}

func TestPushRecords(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	pushed, err := s.HasPushedOn(ctx, "2026-08-30")
	if err != nil {
		t.Fatalf("HasPushedOn: %v", err)
	}
	if pushed {
		t.Error("no push recorded yet")
	}

	if err := s.MarkPushed(ctx, "2026-08-30"); err != nil {
		t.Fatalf("MarkPushed: %v", err)
	}
	// Marking twice is fine.
	if err := s.MarkPushed(ctx, "2026-08-30"); err != nil {
		t.Fatalf("MarkPushed again: %v", err)
	}

	pushed, err = s.HasPushedOn(ctx, "2026-08-30")
	if err != nil {
		t.Fatalf("HasPushedOn: %v", err)
	}
	if !pushed {
		t.Error("push should be recorded")
	}

	if pushed, _ := s.HasPushedOn(ctx, "2026-08-31"); pushed {
		t.Error("other days must stay unpushed")
	}
}
