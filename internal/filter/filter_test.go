package filter

import (
	"reflect"
	"testing"

	"github.com/trendpulse/trendpulse/internal/model"
)

func TestParseKeyword(t *testing.T) {
	tests := []struct {
		line string
		want Keyword
	}{
		{"AI", Keyword{Word: "AI"}},
		{"+AI", Keyword{Word: "AI", Required: true}},
		{"!ad", Keyword{Word: "ad", Exclude: true}},
		{"AI@5", Keyword{Word: "AI", MaxCount: 5}},
		{"+AI@3", Keyword{Word: "AI", Required: true, MaxCount: 3}},
		{"!spam@2", Keyword{Word: "spam", Exclude: true, MaxCount: 2}},
		{"  climate change  ", Keyword{Word: "climate change"}},
		{"", Keyword{}},
		{"   ", Keyword{}},
		// @ without trailing digits is part of the word, not a quota
		{"user@example", Keyword{Word: "user@example"}},
		{"c@1x", Keyword{Word: "c@1x"}},
	}

	for _, tt := range tests {
		got := ParseKeyword(tt.line)
		if got != tt.want {
			t.Errorf("ParseKeyword(%q) = %+v, want %+v", tt.line, got, tt.want)
		}
	}
}

func TestParseGrouping(t *testing.T) {
	f := New()
	f.Parse(`# economy group
inflation
+economy

// tech group
AI@3
!advert

`)

	if len(f.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(f.Groups))
	}
	if len(f.Groups[0].Keywords) != 2 {
		t.Errorf("group 0: expected 2 keywords, got %d", len(f.Groups[0].Keywords))
	}
	if len(f.Groups[1].Keywords) != 2 {
		t.Errorf("group 1: expected 2 keywords, got %d", len(f.Groups[1].Keywords))
	}

	stats := f.Statistics()
	if stats.TotalKeywords != 4 || stats.RequiredKeywords != 1 || stats.ExcludeKeywords != 1 || stats.LimitedKeywords != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestParseBlankLinesNeverRetainEmptyGroups(t *testing.T) {
	f := New()
	f.Parse("\n\n# only comments\n\n\nAI\n\n\n")

	if len(f.Groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(f.Groups))
	}
}

func TestMatchesNoGroupsIsPassThrough(t *testing.T) {
	f := New()

	ok, matched := f.Matches("anything at all")
	if !ok {
		t.Error("empty filter should match everything")
	}
	if len(matched) != 0 {
		t.Errorf("empty filter should return no matched words, got %v", matched)
	}
}

func TestMatchesRequiredAndExclude(t *testing.T) {
	f := New()
	f.Parse("+ai\n!advert\n")

	tests := []struct {
		title   string
		wantOK  bool
		matched []string
	}{
		{"AI breakthrough", true, []string{"ai"}},
		{"AI advert spam", false, nil},
		{"Weather today", false, nil},
	}

	for _, tt := range tests {
		ok, matched := f.Matches(tt.title)
		if ok != tt.wantOK {
			t.Errorf("Matches(%q) = %v, want %v", tt.title, ok, tt.wantOK)
		}
		if !reflect.DeepEqual(matched, tt.matched) {
			t.Errorf("Matches(%q) matched = %v, want %v", tt.title, matched, tt.matched)
		}
	}
}

func TestMatchesAllRequiredMustBePresent(t *testing.T) {
	f := New()
	f.Parse("+climate\n+policy\n")

	if ok, _ := f.Matches("climate summit opens"); ok {
		t.Error("title missing one required word should not match")
	}
	ok, matched := f.Matches("climate policy summit opens")
	if !ok {
		t.Error("title with all required words should match")
	}
	if !reflect.DeepEqual(matched, []string{"climate", "policy"}) {
		t.Errorf("matched = %v", matched)
	}
}

func TestMatchesGroupsAreIndependent(t *testing.T) {
	f := New()
	f.Parse("ai\n!crypto\n\nrust\n")

	// Excluded in group 1, but group 2 still matches.
	ok, matched := f.Matches("rust and crypto and ai")
	if !ok {
		t.Error("second group should still match")
	}
	if !reflect.DeepEqual(matched, []string{"rust"}) {
		t.Errorf("matched = %v, want [rust]", matched)
	}
}

func TestMatchesExcludeOnlyGroups(t *testing.T) {
	// A configuration with only exclude rules can never match on its own;
	// it must pass items through rather than reject everything. This is
	// pinned deliberately: changing it changes filtering semantics.
	f := New()
	f.Parse("!advert\n!sponsored\n")

	ok, matched := f.Matches("plain headline")
	if !ok {
		t.Error("all-exclude configuration should pass items through")
	}
	if len(matched) != 0 {
		t.Errorf("expected no matched words, got %v", matched)
	}

	// The exclude rules still never produce a match set, even on hits.
	ok, matched = f.Matches("sponsored content here")
	if !ok {
		t.Error("all-exclude configuration should still pass")
	}
	if len(matched) != 0 {
		t.Errorf("expected no matched words, got %v", matched)
	}
}

func items(titles ...string) []model.NewsItem {
	out := make([]model.NewsItem, len(titles))
	for i, title := range titles {
		out[i] = model.NewsItem{Title: title, Rank: i + 1}
	}
	return out
}

func titlesOf(items []model.NewsItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}

func TestFilterNewsAttachesMatchedKeywords(t *testing.T) {
	f := New()
	f.Parse("ai\n")

	got := f.FilterNews(items("AI wins again", "Nothing here"), 0)
	if len(got) != 1 {
		t.Fatalf("expected 1 item, got %d", len(got))
	}
	if !reflect.DeepEqual(got[0].MatchedKeywords, []string{"ai"}) {
		t.Errorf("MatchedKeywords = %v", got[0].MatchedKeywords)
	}
}

func TestFilterNewsSkipsEmptyTitles(t *testing.T) {
	f := New()
	f.Parse("ai\n")

	got := f.FilterNews(items("", "AI rises"), 0)
	if len(got) != 1 || got[0].Title != "AI rises" {
		t.Errorf("expected only the titled item, got %v", titlesOf(got))
	}
}

func TestFilterNewsPreservesOrder(t *testing.T) {
	f := New()
	f.Parse("ai\nrobot\n")

	got := f.FilterNews(items("robot news", "AI news", "robot AI news"), 0)
	want := []string{"robot news", "AI news", "robot AI news"}
	if !reflect.DeepEqual(titlesOf(got), want) {
		t.Errorf("order not preserved: %v", titlesOf(got))
	}
}

func TestFilterNewsQuotaOrderDependence(t *testing.T) {
	// Quota enforcement is first-come-first-served over input order. This is
	// a documented policy, not an accident: swapping two items swaps which
	// one survives a maxCount=1 quota.
	f := New()
	f.Parse("ai@1\n")

	got := f.FilterNews(items("AI first", "AI second"), 0)
	if len(got) != 1 || got[0].Title != "AI first" {
		t.Fatalf("expected [AI first], got %v", titlesOf(got))
	}

	got = f.FilterNews(items("AI second", "AI first"), 0)
	if len(got) != 1 || got[0].Title != "AI second" {
		t.Fatalf("expected [AI second], got %v", titlesOf(got))
	}
}

func TestFilterNewsGlobalLimit(t *testing.T) {
	f := New()
	f.Parse("ai\n")

	got := f.FilterNews(items("ai 1", "ai 2", "ai 3"), 2)
	if len(got) != 2 {
		t.Errorf("global limit 2: expected 2 items, got %d", len(got))
	}

	// Individual maxCount beats the global limit.
	f.Parse("ai@1\n")
	got = f.FilterNews(items("ai 1", "ai 2", "ai 3"), 2)
	if len(got) != 1 {
		t.Errorf("individual limit 1: expected 1 item, got %d", len(got))
	}
}

func TestFilterNewsDropsItemWholeWhenAnyKeywordAtLimit(t *testing.T) {
	f := New()
	f.Parse("ai@1\nrobot\n")

	got := f.FilterNews(items("ai only", "ai robot combo", "robot only"), 0)
	// Second item is dropped entirely even though "robot" still has quota.
	want := []string{"ai only", "robot only"}
	if !reflect.DeepEqual(titlesOf(got), want) {
		t.Errorf("got %v, want %v", titlesOf(got), want)
	}
}

func TestFilterNewsQuotaCountersAreFreshPerCall(t *testing.T) {
	f := New()
	f.Parse("ai@1\n")

	first := f.FilterNews(items("ai 1"), 0)
	second := f.FilterNews(items("ai 2"), 0)
	if len(first) != 1 || len(second) != 1 {
		t.Error("quota counters must not leak across FilterNews calls")
	}
}

func TestLoadFileMissingIsEmptyFilter(t *testing.T) {
	f, err := LoadFile("testdata/does-not-exist.txt")
	if err != nil {
		t.Fatalf("missing file should not be an error: %v", err)
	}
	if ok, _ := f.Matches("anything"); !ok {
		t.Error("filter from missing file should pass everything")
	}
}
