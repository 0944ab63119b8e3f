package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/trendpulse/trendpulse/internal/model"
)

// Analyst generates a narrative trend analysis over an aggregation run.
// The analysis is additive observability: it runs after ranking and never
// influences item selection or order.
type Analyst struct {
	provider Provider
	config   Config
}

// NewAnalyst creates an analyst from configuration. A disabled configuration
// (empty provider) returns (nil, nil).
func NewAnalyst(config Config) (*Analyst, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, nil
	}
	return &Analyst{provider: provider, config: config}, nil
}

// IsEnabled reports whether an underlying provider is configured.
func (a *Analyst) IsEnabled() bool {
	return a != nil && a.provider != nil
}

// Analyze produces a TrendAnalysis for the aggregated result.
func (a *Analyst) Analyze(ctx context.Context, news *model.AggregatedNews) (*model.TrendAnalysis, error) {
	if !a.IsEnabled() {
		return nil, fmt.Errorf("no LLM provider configured")
	}
	if len(news.Items) == 0 {
		return nil, fmt.Errorf("nothing to analyze: empty item list")
	}

	resp, err := a.provider.Complete(ctx, CompletionRequest{
		System:    analysisSystemPrompt,
		Prompt:    BuildAnalysisPrompt(news),
		MaxTokens: a.config.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("%s completion: %w", a.provider.Name(), err)
	}

	analysis := &model.TrendAnalysis{
		Enabled:   true,
		Provider:  a.provider.Name(),
		Model:     resp.Model,
		CreatedAt: time.Now().UTC(),
	}
	analysis.Themes, analysis.Summary = parseAnalysis(resp.Text)
	if analysis.Summary == "" {
		analysis.Summary = resp.Text
		analysis.Warnings = append(analysis.Warnings, "model response did not follow the THEMES/SUMMARY format")
	}
	return analysis, nil
}

// parseAnalysis splits the model output on the THEMES:/SUMMARY: markers the
// prompt asks for. Unmarked output yields no themes and an empty summary,
// which the caller treats as free-form text.
func parseAnalysis(text string) (themes []string, summary string) {
	const (
		sectionNone = iota
		sectionThemes
		sectionSummary
	)

	section := sectionNone
	var summaryLines []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		upper := strings.ToUpper(trimmed)

		switch {
		case strings.HasPrefix(upper, "THEMES:"):
			section = sectionThemes
			continue
		case strings.HasPrefix(upper, "SUMMARY:"):
			section = sectionSummary
			if rest := strings.TrimSpace(trimmed[len("SUMMARY:"):]); rest != "" {
				summaryLines = append(summaryLines, rest)
			}
			continue
		}

		switch section {
		case sectionThemes:
			if theme := strings.TrimLeft(trimmed, "-*0123456789. "); theme != "" {
				themes = append(themes, theme)
			}
		case sectionSummary:
			if trimmed != "" {
				summaryLines = append(summaryLines, trimmed)
			}
		}
	}

	return themes, strings.Join(summaryLines, " ")
}
