package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/trendpulse/trendpulse/internal/model"
)

// Provider is a text-completion backend used for trend analysis.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete runs one prompt and returns the model's text
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// CompletionRequest is one prompt execution.
type CompletionRequest struct {
	System    string
	Prompt    string
	Model     string // Overrides the configured model when set
	MaxTokens int
}

// CompletionResponse is the model's output.
type CompletionResponse struct {
	Text       string
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int
}

// DefaultConfig returns sensible defaults with the LLM disabled.
func DefaultConfig() Config {
	return Config{
		Timeout:   60,
		MaxTokens: 1500,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(cfg model.LLMConfig) Config {
	return Config{
		Provider:  cfg.Provider,
		Model:     cfg.Model,
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.Timeout,
		MaxTokens: cfg.MaxTokens,
	}
}

// analysisSystemPrompt frames the model as an analyst over the provided
// headline list only; it must not invent stories.
const analysisSystemPrompt = `You are a news trend analyst. You are given a ranked list of trending headlines aggregated from multiple sources.

RULES:
1. Base your analysis ONLY on the provided headlines. Do not invent stories, numbers, or sources.
2. Identify cross-source themes: topics appearing in several headlines.
3. Be concise and factual; no speculation about outcomes.
4. Answer in Markdown.`

// BuildAnalysisPrompt renders the aggregated result into the analysis prompt.
func BuildAnalysisPrompt(news *model.AggregatedNews) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Trending headlines (%d sources fetched, %d failed, %d raw items):\n\n",
		len(news.SourcesFetched), len(news.SourcesFailed), news.TotalRaw)

	for i, item := range news.Items {
		fmt.Fprintf(&b, "%d. %s (source: %s, rank %d", i+1, item.Title, item.SourceName, item.Rank)
		if len(item.MatchedKeywords) > 0 {
			fmt.Fprintf(&b, ", keywords: %s", strings.Join(item.MatchedKeywords, ", "))
		}
		b.WriteString(")\n")
	}

	b.WriteString(`
Produce:
1. A "Themes" list (3-5 bullet points) naming cross-cutting topics.
2. A "Summary" paragraph (4-6 sentences) describing what is trending and why it matters.

Start the themes section with the exact line "THEMES:" and the summary with the exact line "SUMMARY:".`)
	return b.String()
}
