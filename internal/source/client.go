package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/trendpulse/trendpulse/internal/model"
)

// ErrRobotsDisallowed reports a fetch blocked by the host's robots.txt.
var ErrRobotsDisallowed = fmt.Errorf("disallowed by robots.txt")

// Client is the HTTP client shared by all sources: response caching,
// per-host rate limiting, robots.txt checks, and bounded retries.
type Client struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	maxRetries int

	cache    *gocache.Cache
	cacheTTL time.Duration

	limiter *Limiter
	robots  *RobotsChecker // nil when robots checking is disabled
}

// NewClient builds a client from the HTTP and crawler configuration.
func NewClient(httpCfg model.HTTPConfig, crawlerCfg model.CrawlerConfig) *Client {
	transport := http.DefaultTransport
	if httpCfg.Proxy != "" {
		if proxyURL, err := url.Parse(httpCfg.Proxy); err == nil {
			t := http.DefaultTransport.(*http.Transport).Clone()
			t.Proxy = http.ProxyURL(proxyURL)
			transport = t
		}
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout:   httpCfg.Timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent:  httpCfg.UserAgent,
		maxBytes:   httpCfg.MaxBodyBytes,
		maxRetries: crawlerCfg.MaxRetries,
		cacheTTL:   crawlerCfg.CacheTTL,
		limiter:    NewLimiter(crawlerCfg.RequestsPerSec, 5),
	}
	if crawlerCfg.CacheTTL > 0 {
		c.cache = gocache.New(crawlerCfg.CacheTTL, 10*time.Minute)
	}
	if crawlerCfg.CheckRobots {
		c.robots = NewRobotsChecker(httpCfg.UserAgent, httpCfg.Timeout)
	}
	return c
}

// Get fetches a URL, honoring the cache, robots rules, the per-host rate
// limit, and the retry limit.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	if c.cache != nil {
		if cached, found := c.cache.Get(rawURL); found {
			return cached.([]byte), nil
		}
	}

	if c.robots != nil {
		allowed, err := c.robots.CanFetch(ctx, rawURL)
		if err == nil && !allowed {
			return nil, fmt.Errorf("%s: %w", rawURL, ErrRobotsDisallowed)
		}
	}

	var body []byte
	var lastErr error
	attempts := c.maxRetries
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 2s, 4s, 8s...
			backoff := time.Duration(1<<attempt) * time.Second
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		if err := c.limiter.Wait(ctx, rawURL); err != nil {
			return nil, err
		}

		body, lastErr = c.fetch(ctx, rawURL)
		if lastErr == nil {
			break
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}

	if c.cache != nil {
		c.cache.Set(rawURL, body, c.cacheTTL)
	}
	return body, nil
}

// GetJSON fetches a URL and decodes the response body as JSON into v.
func (c *Client) GetJSON(ctx context.Context, rawURL string, v any) error {
	body, err := c.Get(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s: %w", rawURL, err)
	}
	return nil
}

// FlushCache drops all cached responses (used by forced refresh).
func (c *Client) FlushCache() {
	if c.cache != nil {
		c.cache.Flush()
	}
}

func (c *Client) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, application/xml, text/xml, text/html;q=0.9, */*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
