// Package report renders aggregation results to HTML, plain text and JSON
// files, and formats the notification message body.
package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/trendpulse/trendpulse/internal/model"
)

// Report is one rendered aggregation run.
type Report struct {
	ID          string               `json:"id"`
	GeneratedAt time.Time            `json:"generated_at"`
	News        model.AggregatedNews `json:"news"`
	// NewTitles are titles absent from the previous run.
	NewTitles []string             `json:"new_titles,omitempty"`
	Analysis  *model.TrendAnalysis `json:"analysis,omitempty"`
}

// New builds a report around an aggregation result.
func New(news model.AggregatedNews, newTitles []string, analysis *model.TrendAnalysis) *Report {
	return &Report{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now(),
		News:        news,
		NewTitles:   newTitles,
		Analysis:    analysis,
	}
}

// isNew reports whether title appeared for the first time this run.
func (r *Report) isNew(title string) bool {
	for _, t := range r.NewTitles {
		if t == title {
			return true
		}
	}
	return false
}
