package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/trendpulse/trendpulse/internal/filter"
	"github.com/trendpulse/trendpulse/internal/model"
	"github.com/trendpulse/trendpulse/internal/report"
)

type stubProvider struct {
	rep        *report.Report
	refreshErr error
	refreshed  int
	stats      filter.Stats
}

func (p *stubProvider) Latest() (*report.Report, bool) {
	if p.rep == nil {
		return nil, false
	}
	return p.rep, true
}

func (p *stubProvider) Refresh(ctx context.Context) (*report.Report, error) {
	p.refreshed++
	if p.refreshErr != nil {
		return nil, p.refreshErr
	}
	return p.rep, nil
}

func (p *stubProvider) KeywordStats() filter.Stats { return p.stats }

func newTestServer(t *testing.T, p Provider, reportsDir string) *httptest.Server {
	t.Helper()
	srv := NewServer(model.WebConfig{Addr: ":0"}, p, reportsDir, zerolog.Nop())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func sampleProvider() *stubProvider {
	rep := report.New(model.AggregatedNews{
		Items: []model.NewsItem{
			{Title: "AI breakthrough", URL: "https://example.com/1", SourceName: "BBC News"},
		},
		SourcesFetched: []string{"bbc"},
		TotalRaw:       1,
		TotalFiltered:  1,
		FetchTime:      time.Now(),
	}, nil, nil)
	return &stubProvider{
		rep:   rep,
		stats: filter.Stats{TotalKeywords: 3, TotalGroups: 2, ExcludeKeywords: 1},
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, sampleProvider(), "")
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestGetTrends(t *testing.T) {
	ts := newTestServer(t, sampleProvider(), "")
	resp, err := http.Get(ts.URL + "/api/v1/trends")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	var got report.Report
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.News.Items) != 1 || got.News.Items[0].Title != "AI breakthrough" {
		t.Errorf("unexpected payload: %+v", got.News)
	}
}

func TestGetTrendsBeforeFirstRun(t *testing.T) {
	ts := newTestServer(t, &stubProvider{}, "")
	resp, err := http.Get(ts.URL + "/api/v1/trends")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestPostRefresh(t *testing.T) {
	p := sampleProvider()
	ts := newTestServer(t, p, "")
	resp, err := http.Post(ts.URL+"/api/v1/refresh", "application/json", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if p.refreshed != 1 {
		t.Errorf("refresh called %d times", p.refreshed)
	}
}

func TestPostRefreshError(t *testing.T) {
	p := sampleProvider()
	p.refreshErr = errors.New("boom")
	ts := newTestServer(t, p, "")
	resp, err := http.Post(ts.URL+"/api/v1/refresh", "application/json", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
}

func TestRefreshRequiresPost(t *testing.T) {
	ts := newTestServer(t, sampleProvider(), "")
	resp, err := http.Get(ts.URL + "/api/v1/refresh")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}

func TestGetKeywords(t *testing.T) {
	ts := newTestServer(t, sampleProvider(), "")
	resp, err := http.Get(ts.URL + "/api/v1/keywords")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	var stats filter.Stats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.TotalKeywords != 3 || stats.TotalGroups != 2 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestReportsFileServer(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "20260830-093000-abc")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "report.html"), []byte("<html>hello</html>"), 0o644); err != nil {
		t.Fatal(err)
	}

	ts := newTestServer(t, sampleProvider(), dir)
	resp, err := http.Get(ts.URL + "/reports/20260830-093000-abc/report.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), "hello") {
		t.Errorf("unexpected body %q", body)
	}
}
