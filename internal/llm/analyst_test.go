package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/trendpulse/trendpulse/internal/model"
)

func TestNewProviderFactory(t *testing.T) {
	if p, err := NewProvider(Config{Provider: ""}); p != nil || err != nil {
		t.Errorf("empty provider should be (nil, nil), got %v, %v", p, err)
	}
	if _, err := NewProvider(Config{Provider: "openai"}); err == nil {
		t.Error("openai without API key should fail")
	}
	if p, err := NewProvider(Config{Provider: "openai", APIKey: "sk-test"}); err != nil || p.Name() != "openai" {
		t.Errorf("openai provider: %v, %v", p, err)
	}
	if p, err := NewProvider(Config{Provider: "ollama", Model: "mistral"}); err != nil || p.Name() != "ollama" {
		t.Errorf("ollama provider: %v, %v", p, err)
	}
	if _, err := NewProvider(Config{Provider: "walnut"}); err == nil {
		t.Error("unknown provider should fail")
	}
}

func TestNewAnalystDisabled(t *testing.T) {
	a, err := NewAnalyst(Config{})
	if err != nil {
		t.Fatalf("disabled config should not error: %v", err)
	}
	if a.IsEnabled() {
		t.Error("nil analyst must report disabled")
	}
}

func sampleNews() *model.AggregatedNews {
	return &model.AggregatedNews{
		Items: []model.NewsItem{
			{Title: "AI chips surge", SourceName: "Hacker News", Rank: 1, MatchedKeywords: []string{"ai"}},
			{Title: "Markets rally", SourceName: "Bloomberg", Rank: 2},
		},
		SourcesFetched: []string{"hackernews", "bloomberg"},
		TotalRaw:       40,
		FetchTime:      time.Now(),
	}
}

func TestBuildAnalysisPrompt(t *testing.T) {
	prompt := BuildAnalysisPrompt(sampleNews())

	for _, want := range []string{"AI chips surge", "Markets rally", "keywords: ai", "2 sources fetched", "THEMES:", "SUMMARY:"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestParseAnalysis(t *testing.T) {
	text := `THEMES:
- Artificial intelligence
- Market momentum

SUMMARY: Tech and finance dominate today's list.
Chip demand drives both.`

	themes, summary := parseAnalysis(text)
	if len(themes) != 2 || themes[0] != "Artificial intelligence" {
		t.Errorf("themes = %v", themes)
	}
	if summary != "Tech and finance dominate today's list. Chip demand drives both." {
		t.Errorf("summary = %q", summary)
	}
}

func TestParseAnalysisUnmarked(t *testing.T) {
	themes, summary := parseAnalysis("just a blob of text")
	if len(themes) != 0 || summary != "" {
		t.Errorf("unmarked text should parse to nothing, got %v / %q", themes, summary)
	}
}

func TestAnalystAgainstOllamaStub(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"mistral","response":"THEMES:\n- AI\nSUMMARY: All about AI.","done":true,"eval_count":42}`))
	}))
	defer srv.Close()

	analyst, err := NewAnalyst(Config{Provider: "ollama", Model: "mistral", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewAnalyst: %v", err)
	}

	analysis, err := analyst.Analyze(context.Background(), sampleNews())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !analysis.Enabled || analysis.Provider != "ollama" || analysis.Model != "mistral" {
		t.Errorf("analysis metadata: %+v", analysis)
	}
	if len(analysis.Themes) != 1 || analysis.Themes[0] != "AI" {
		t.Errorf("themes = %v", analysis.Themes)
	}
	if analysis.Summary != "All about AI." {
		t.Errorf("summary = %q", analysis.Summary)
	}
}

func TestAnalystEmptyItems(t *testing.T) {
	analyst, err := NewAnalyst(Config{Provider: "ollama", Model: "mistral"})
	if err != nil {
		t.Fatalf("NewAnalyst: %v", err)
	}
	if _, err := analyst.Analyze(context.Background(), &model.AggregatedNews{}); err == nil {
		t.Error("empty item list should be an error")
	}
}
