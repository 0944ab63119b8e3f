package cli

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/trendpulse/trendpulse/internal/aggregate"
	"github.com/trendpulse/trendpulse/internal/dedup"
	"github.com/trendpulse/trendpulse/internal/filter"
	"github.com/trendpulse/trendpulse/internal/llm"
	"github.com/trendpulse/trendpulse/internal/model"
	"github.com/trendpulse/trendpulse/internal/notify"
	"github.com/trendpulse/trendpulse/internal/report"
	"github.com/trendpulse/trendpulse/internal/source"
	"github.com/trendpulse/trendpulse/internal/storage"
)

// App wires the aggregation pipeline together: sources, keyword filter,
// storage, reports, notifications and the optional analyst. One App backs
// both the run command and serve mode.
type App struct {
	cfg        *model.Config
	log        zerolog.Logger
	client     *source.Client
	aggregator *aggregate.Aggregator
	store      *storage.Store
	renderer   *report.Renderer
	notifier   *notify.Manager
	analyst    *llm.Analyst

	mu      sync.RWMutex
	kfilter *filter.Filter
	latest  *report.Report
}

// RunOptions adjusts one aggregation run.
type RunOptions struct {
	SkipNotify bool
	SkipLLM    bool
	ForcePush  bool
	Progress   aggregate.ProgressFunc
}

// NewApp builds the pipeline from configuration. The keyword file is loaded
// from cfg.Report.KeywordsPath; a missing file means no filtering.
func NewApp(cfg *model.Config, log zerolog.Logger) (*App, error) {
	kf, err := filter.LoadFile(cfg.Report.KeywordsPath)
	if err != nil {
		return nil, fmt.Errorf("load keywords: %w", err)
	}

	store, err := storage.NewStore(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	client := source.NewClient(cfg.HTTP, cfg.Crawler)
	sources := source.DefaultSources(client, cfg.Crawler)

	analyst, err := llm.NewAnalyst(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("configure llm: %w", err)
	}

	return &App{
		cfg:        cfg,
		log:        log,
		client:     client,
		aggregator: aggregate.New(sources, kf, cfg, log),
		store:      store,
		renderer:   report.NewRenderer(cfg.Report.OutputDir),
		notifier:   notify.NewManager(cfg.Notify, store, log),
		analyst:    analyst,
		kfilter:    kf,
	}, nil
}

// Close releases the storage handle.
func (a *App) Close() error {
	return a.store.Close()
}

// SourceCount returns how many sources the aggregator will fetch.
func (a *App) SourceCount() int {
	return len(a.aggregator.Sources())
}

// RunOnce executes one full aggregation run: fetch, filter, rank, diff
// against history, render reports, persist the run and push notifications.
func (a *App) RunOnce(ctx context.Context, opts RunOptions) (*report.Report, error) {
	news := a.aggregator.FetchAll(ctx, opts.Progress)

	previous, err := a.store.LatestItems(ctx)
	if err != nil {
		a.log.Warn().Err(err).Msg("history lookup failed, treating all items as new")
		previous = nil
	}
	var newTitles []string
	for _, item := range dedup.DiffNew(news.Items, previous) {
		newTitles = append(newTitles, item.Title)
	}

	var analysis *model.TrendAnalysis
	if !opts.SkipLLM && a.analyst.IsEnabled() && len(news.Items) > 0 {
		analysis, err = a.analyst.Analyze(ctx, news)
		if err != nil {
			a.log.Warn().Err(err).Msg("trend analysis failed")
			analysis = nil
		}
	}

	rep := report.New(*news, newTitles, analysis)

	if err := a.store.SaveRun(ctx, rep.ID, news); err != nil {
		a.log.Warn().Err(err).Msg("failed to persist run")
	}

	paths, err := a.renderer.RenderAll(rep)
	if err != nil {
		return nil, fmt.Errorf("render reports: %w", err)
	}
	a.log.Info().Str("dir", paths.Dir).Msg("reports written")

	if !opts.SkipNotify && a.notifier.HasChannels() {
		title, content := report.FormatNotification(rep)
		results, reason := a.notifier.SendAll(ctx, title, content, opts.ForcePush)
		if reason != "" {
			a.log.Info().Str("reason", reason).Msg("notification skipped")
		}
		for _, r := range results {
			if !r.Success {
				a.log.Warn().Str("channel", r.Channel).Str("error", r.Error).Msg("channel failed")
			}
		}
	}

	a.mu.Lock()
	a.latest = rep
	a.mu.Unlock()
	return rep, nil
}

// ReloadKeywords re-reads the keyword file and swaps it into the aggregator.
func (a *App) ReloadKeywords() error {
	kf, err := filter.LoadFile(a.cfg.Report.KeywordsPath)
	if err != nil {
		return fmt.Errorf("reload keywords: %w", err)
	}
	a.aggregator.SetFilter(kf)
	a.mu.Lock()
	a.kfilter = kf
	a.mu.Unlock()
	stats := kf.Statistics()
	a.log.Info().Int("keywords", stats.TotalKeywords).Int("groups", stats.TotalGroups).Msg("keyword file reloaded")
	return nil
}

// Latest returns the most recent in-memory report.
func (a *App) Latest() (*report.Report, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.latest == nil {
		return nil, false
	}
	return a.latest, true
}

// Refresh runs one aggregation for serve mode. The response cache is flushed
// first so the run fetches fresh data instead of serving cached feeds.
// Serve-mode refreshes never force-push, so the normal push policy applies.
func (a *App) Refresh(ctx context.Context) (*report.Report, error) {
	if a.client != nil {
		a.client.FlushCache()
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()
	return a.RunOnce(ctx, RunOptions{})
}

// KeywordStats summarizes the active keyword configuration.
func (a *App) KeywordStats() filter.Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.kfilter.Statistics()
}
