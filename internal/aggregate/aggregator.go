// Package aggregate orchestrates one aggregation run: concurrent multi-source
// fetch with failure isolation, then dedup, keyword filtering, scoring, and
// truncation into a single ranked result.
package aggregate

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/trendpulse/trendpulse/internal/dedup"
	"github.com/trendpulse/trendpulse/internal/filter"
	"github.com/trendpulse/trendpulse/internal/model"
	"github.com/trendpulse/trendpulse/internal/rank"
	"github.com/trendpulse/trendpulse/internal/source"
)

// ProgressFunc is an optional observability hook fired per source at fetch
// start and at terminal success/failure. It must be fast and must not block;
// it never influences control flow.
type ProgressFunc func(sourceID, status string)

// Aggregator fans out fetches to the configured sources and pipes the merged
// result through dedup, filtering, scoring, and truncation.
type Aggregator struct {
	sources       []source.Source
	filter        *filter.Filter
	weights       model.WeightConfig
	topN          int
	maxPerKeyword int
	log           zerolog.Logger

	mu sync.RWMutex // guards filter swaps against in-flight runs
}

// New creates an aggregator. A nil filter behaves as a pass-through.
func New(sources []source.Source, kf *filter.Filter, cfg *model.Config, log zerolog.Logger) *Aggregator {
	if kf == nil {
		kf = filter.New()
	}
	return &Aggregator{
		sources:       sources,
		filter:        kf,
		weights:       cfg.Weights,
		topN:          cfg.Report.TopN,
		maxPerKeyword: cfg.Report.MaxNewsPerKeyword,
		log:           log,
	}
}

// SetFilter atomically replaces the keyword filter (keyword file hot-reload).
func (a *Aggregator) SetFilter(kf *filter.Filter) {
	if kf == nil {
		kf = filter.New()
	}
	a.mu.Lock()
	a.filter = kf
	a.mu.Unlock()
}

// Sources returns the configured source list.
func (a *Aggregator) Sources() []source.Source {
	return a.sources
}

// fetchOutcome is one source's settled result. Each goroutine writes its own
// slot exactly once after its fetch completes, so the merge needs no lock:
// the WaitGroup join publishes all slots to the coordinating goroutine.
type fetchOutcome struct {
	items []model.NewsItem
	err   error
}

// FetchAll runs one aggregation pass. Per-source failures are recorded in
// SourcesFailed and never abort the run; the result is always valid, even
// with zero sources configured or zero sources succeeding.
func (a *Aggregator) FetchAll(ctx context.Context, progress ProgressFunc) *model.AggregatedNews {
	result := &model.AggregatedNews{
		Items:          []model.NewsItem{},
		SourcesFetched: []string{},
		SourcesFailed:  []string{},
		FetchTime:      time.Now(),
	}

	notify := func(sourceID, status string) {
		if progress != nil {
			progress(sourceID, status)
		}
	}

	outcomes := make([]fetchOutcome, len(a.sources))
	var wg sync.WaitGroup
	for i, src := range a.sources {
		wg.Add(1)
		go func(slot int, src source.Source) {
			defer wg.Done()
			notify(src.ID(), "fetching")

			items, err := src.FetchNews(ctx)
			if err != nil {
				outcomes[slot] = fetchOutcome{err: &source.Error{SourceID: src.ID(), Err: err}}
				return
			}
			outcomes[slot] = fetchOutcome{items: items}
		}(i, src)
	}
	wg.Wait()

	// Merge phase: runs only after every fetch has settled.
	var all []model.NewsItem
	for i, src := range a.sources {
		outcome := outcomes[i]
		if outcome.err != nil {
			result.SourcesFailed = append(result.SourcesFailed, src.ID())
			a.log.Warn().Err(outcome.err).Str("source", src.ID()).Msg("source fetch failed")
			notify(src.ID(), "failed")
			continue
		}
		all = append(all, outcome.items...)
		result.SourcesFetched = append(result.SourcesFetched, src.ID())
		notify(src.ID(), "success")
	}
	result.TotalRaw = len(all)

	unique := dedup.Deduplicate(all)

	a.mu.RLock()
	kf := a.filter
	a.mu.RUnlock()
	filtered := kf.FilterNews(unique, a.maxPerKeyword)
	result.TotalFiltered = len(filtered)

	scorer := rank.NewScorer(a.weights, len(a.sources))
	ranked := scorer.Rank(filtered)
	result.Items = rank.Truncate(ranked, a.topN)

	a.log.Info().
		Int("raw", result.TotalRaw).
		Int("filtered", result.TotalFiltered).
		Int("final", len(result.Items)).
		Int("fetched", len(result.SourcesFetched)).
		Int("failed", len(result.SourcesFailed)).
		Msg("aggregation run complete")

	return result
}
