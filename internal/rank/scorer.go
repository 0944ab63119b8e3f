// Package rank scores and orders aggregated news items.
package rank

import (
	"math"
	"sort"

	"github.com/trendpulse/trendpulse/internal/dedup"
	"github.com/trendpulse/trendpulse/internal/model"
)

// maxRank is the source position beyond which an item's rank score is zero.
const maxRank = 50

// authorityWeight is the fixed blend weight of the per-source authority
// bonus, independent of the configured weights.
const authorityWeight = 0.1

// defaultAuthority is the bonus applied to sources absent from the table.
const defaultAuthority = 0.5

// defaultAuthorityTable reflects editorial trust per source, in [0, 1].
var defaultAuthorityTable = map[string]float64{
	"bbc":                1.0,
	"reuters":            1.0,
	"bloomberg":          0.9,
	"cnbc":               0.8,
	"google_news_world":  0.9,
	"google_news_top":    0.85,
	"hackernews":         0.8,
	"techcrunch":         0.7,
	"arstechnica":        0.7,
	"theverge":           0.6,
	"wired":              0.6,
	"reddit_worldnews":   0.5,
	"reddit_technology":  0.5,
}

// Scorer computes a composite ranking score per item and orders the list.
// The blend is rankWeight*rankScore + frequencyWeight*frequencyScore +
// hotnessWeight*hotnessScore + 0.1*authorityBonus.
type Scorer struct {
	weights     model.WeightConfig
	sourceCount int
	authority   map[string]float64
}

// NewScorer creates a scorer for a run with the given weights and number of
// configured sources (the frequency score denominator).
func NewScorer(weights model.WeightConfig, sourceCount int) *Scorer {
	if sourceCount < 1 {
		sourceCount = 1
	}
	return &Scorer{
		weights:     weights,
		sourceCount: sourceCount,
		authority:   defaultAuthorityTable,
	}
}

// Rank returns the items sorted by total score, highest first. The sort is
// stable: items with equal scores keep their relative input order, which is
// what makes runs reproducible. The input slice is not modified.
func (s *Scorer) Rank(items []model.NewsItem) []model.NewsItem {
	// Cross-source frequency over full normalized titles.
	frequency := make(map[string]int, len(items))
	for _, item := range items {
		frequency[dedup.NormalizeTitle(item.Title)]++
	}

	type scored struct {
		item  model.NewsItem
		score float64
	}
	ranked := make([]scored, len(items))
	for i, item := range items {
		ranked[i] = scored{item, s.score(item, frequency[dedup.NormalizeTitle(item.Title)])}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	out := make([]model.NewsItem, len(ranked))
	for i, sc := range ranked {
		out[i] = sc.item
	}
	return out
}

// score computes the composite score for one item.
func (s *Scorer) score(item model.NewsItem, frequency int) float64 {
	return s.weights.RankWeight*rankScore(item.Rank) +
		s.weights.FrequencyWeight*s.frequencyScore(frequency) +
		s.weights.HotnessWeight*hotnessScore(item.Hotness) +
		authorityWeight*s.authorityBonus(item.SourceID)
}

// rankScore maps source position to [0, 1]: rank 1 scores near 1.0, rank 50
// and beyond score 0. Formula: (50 - min(rank, 50)) / 50.
func rankScore(rank int) float64 {
	if rank > maxRank {
		rank = maxRank
	}
	return float64(maxRank-rank) / maxRank
}

// frequencyScore normalizes cross-source title frequency by the number of
// configured sources; it caps near 1.0 only when an item appears everywhere.
func (s *Scorer) frequencyScore(frequency int) float64 {
	return float64(frequency) / float64(s.sourceCount)
}

// hotnessScore log-compresses the source hotness so outliers cannot
// dominate. The floor of 1 keeps log10 defined and non-negative.
// Formula: log10(max(hotness, 1)) / 10.
func hotnessScore(hotness float64) float64 {
	return math.Log10(math.Max(hotness, 1)) / 10
}

// authorityBonus looks up the per-source trust bonus, 0.5 for unknowns.
func (s *Scorer) authorityBonus(sourceID string) float64 {
	if bonus, ok := s.authority[sourceID]; ok {
		return bonus
	}
	return defaultAuthority
}

// Truncate bounds the ranked list to the top n items. Zero or negative n
// falls back to the default of 10.
func Truncate(items []model.NewsItem, n int) []model.NewsItem {
	if n <= 0 {
		n = 10
	}
	if len(items) > n {
		return items[:n]
	}
	return items
}
