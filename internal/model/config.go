package model

import "time"

// Config is the complete application configuration tree.
// Populated from defaults, then ~/.trendpulse/config.yaml, then TRENDPULSE_*
// environment variables, then CLI flags.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http" json:"http" mapstructure:"http"`
	Crawler CrawlerConfig `yaml:"crawler" json:"crawler" mapstructure:"crawler"`
	Weights WeightConfig  `yaml:"weights" json:"weights" mapstructure:"weights"`
	Report  ReportConfig  `yaml:"report" json:"report" mapstructure:"report"`
	Notify  NotifyConfig  `yaml:"notify" json:"notify" mapstructure:"notify"`
	LLM     LLMConfig     `yaml:"llm" json:"llm" mapstructure:"llm"`
	Storage StorageConfig `yaml:"storage" json:"storage" mapstructure:"storage"`
	Web     WebConfig     `yaml:"web" json:"web" mapstructure:"web"`
}

// HTTPConfig controls the shared HTTP client used by all sources.
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" json:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" json:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" json:"max_body_bytes" mapstructure:"max_body_bytes"`
	Proxy        string        `yaml:"proxy,omitempty" json:"proxy,omitempty" mapstructure:"proxy"`
}

// CrawlerConfig controls fetch behavior across sources.
type CrawlerConfig struct {
	RequestInterval time.Duration `yaml:"request_interval" json:"request_interval" mapstructure:"request_interval"` // Minimum gap between requests to one host
	MaxRetries      int           `yaml:"max_retries" json:"max_retries" mapstructure:"max_retries"`
	RequestsPerSec  float64       `yaml:"requests_per_second" json:"requests_per_second" mapstructure:"requests_per_second"`
	CacheTTL        time.Duration `yaml:"cache_ttl" json:"cache_ttl" mapstructure:"cache_ttl"`
	CheckRobots     bool          `yaml:"check_robots" json:"check_robots" mapstructure:"check_robots"`
	ItemsPerSource  int           `yaml:"items_per_source" json:"items_per_source" mapstructure:"items_per_source"`
}

// WeightConfig holds the ranking weights. They are intended as a weighted
// blend but no sum-to-1 constraint is enforced.
type WeightConfig struct {
	RankWeight      float64 `yaml:"rank_weight" json:"rank_weight" mapstructure:"rank_weight"`
	FrequencyWeight float64 `yaml:"frequency_weight" json:"frequency_weight" mapstructure:"frequency_weight"`
	HotnessWeight   float64 `yaml:"hotness_weight" json:"hotness_weight" mapstructure:"hotness_weight"`
}

// ReportConfig controls output rendering and filtering limits.
type ReportConfig struct {
	TopN              int    `yaml:"top_n" json:"top_n" mapstructure:"top_n"`
	MaxNewsPerKeyword int    `yaml:"max_news_per_keyword" json:"max_news_per_keyword" mapstructure:"max_news_per_keyword"` // 0 = unlimited
	KeywordsPath      string `yaml:"keywords_path" json:"keywords_path" mapstructure:"keywords_path"`
	OutputDir         string `yaml:"output_dir" json:"output_dir" mapstructure:"output_dir"`
}

// NotifyConfig configures the notification channels and push policy.
type NotifyConfig struct {
	// Push window, HH:MM in local time. Empty disables the window check.
	WindowStart string `yaml:"window_start" json:"window_start" mapstructure:"window_start"`
	WindowEnd   string `yaml:"window_end" json:"window_end" mapstructure:"window_end"`
	OncePerDay  bool   `yaml:"once_per_day" json:"once_per_day" mapstructure:"once_per_day"`

	Telegram TelegramConfig `yaml:"telegram" json:"telegram" mapstructure:"telegram"`
	Slack    WebhookConfig  `yaml:"slack" json:"slack" mapstructure:"slack"`
	DingTalk WebhookConfig  `yaml:"dingtalk" json:"dingtalk" mapstructure:"dingtalk"`
	Ntfy     NtfyConfig     `yaml:"ntfy" json:"ntfy" mapstructure:"ntfy"`
}

// TelegramConfig configures the Telegram bot channel.
type TelegramConfig struct {
	BotToken string `yaml:"bot_token" json:"-" mapstructure:"bot_token"`
	ChatID   string `yaml:"chat_id" json:"chat_id" mapstructure:"chat_id"`
}

// WebhookConfig is a single-URL webhook channel (Slack, DingTalk).
type WebhookConfig struct {
	WebhookURL string `yaml:"webhook_url" json:"-" mapstructure:"webhook_url"`
}

// NtfyConfig configures an ntfy.sh style push channel.
type NtfyConfig struct {
	ServerURL string `yaml:"server_url" json:"server_url" mapstructure:"server_url"`
	Topic     string `yaml:"topic" json:"topic" mapstructure:"topic"`
	Token     string `yaml:"token" json:"-" mapstructure:"token"`
}

// LLMConfig configures the optional trend analysis provider.
type LLMConfig struct {
	Provider  string `yaml:"provider" json:"provider" mapstructure:"provider"` // "openai", "ollama", "" = disabled
	Model     string `yaml:"model" json:"model" mapstructure:"model"`
	APIKey    string `yaml:"api_key" json:"-" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url,omitempty" json:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" json:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" json:"max_tokens" mapstructure:"max_tokens"`
}

// StorageConfig locates the SQLite database for run history and push records.
type StorageConfig struct {
	DataDir string `yaml:"data_dir" json:"data_dir" mapstructure:"data_dir"` // Empty = ~/.trendpulse/data
}

// WebConfig configures the serve-mode HTTP API.
type WebConfig struct {
	Addr            string        `yaml:"addr" json:"addr" mapstructure:"addr"`
	RefreshInterval time.Duration `yaml:"refresh_interval" json:"refresh_interval" mapstructure:"refresh_interval"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "trendpulse/0.1 (+https://github.com/trendpulse/trendpulse)",
			MaxBodyBytes: 2_000_000,
		},
		Crawler: CrawlerConfig{
			RequestInterval: time.Second,
			MaxRetries:      3,
			RequestsPerSec:  2,
			CacheTTL:        5 * time.Minute,
			CheckRobots:     true,
			ItemsPerSource:  25,
		},
		Weights: WeightConfig{
			RankWeight:      0.5,
			FrequencyWeight: 0.3,
			HotnessWeight:   0.2,
		},
		Report: ReportConfig{
			TopN:         10,
			KeywordsPath: "",
			OutputDir:    "output",
		},
		Notify: NotifyConfig{
			OncePerDay: true,
		},
		LLM: LLMConfig{
			Provider:  "",
			Timeout:   60,
			MaxTokens: 1500,
		},
		Web: WebConfig{
			Addr:            ":8080",
			RefreshInterval: 30 * time.Minute,
		},
	}
}
