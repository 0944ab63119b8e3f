// Package notify delivers aggregation results to configured channels and
// enforces the push policy (window, once per day).
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"
)

// Notifier is one delivery channel.
type Notifier interface {
	// Name returns the channel name used in summaries and logs.
	Name() string

	// IsConfigured reports whether the channel has the settings it needs.
	IsConfigured() bool

	// Send delivers one message. Content is Markdown; channels that cannot
	// render it are responsible for their own conversion.
	Send(ctx context.Context, title, content string) error
}

// Result is the outcome of one channel's delivery.
type Result struct {
	Channel string `json:"channel"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// SplitContent splits content into chunks of at most maxLen bytes, breaking
// on line boundaries. A single oversized line is split at rune boundaries so
// multi-byte text is never cut mid-rune.
func SplitContent(content string, maxLen int) []string {
	if maxLen <= 0 || len(content) <= maxLen {
		return []string{content}
	}

	var chunks []string
	var current strings.Builder
	for _, line := range strings.Split(content, "\n") {
		for len(line) > maxLen {
			if current.Len() > 0 {
				chunks = append(chunks, current.String())
				current.Reset()
			}
			cut := maxLen
			for cut > 0 && !utf8.RuneStart(line[cut]) {
				cut--
			}
			if cut == 0 {
				cut = maxLen
			}
			chunks = append(chunks, line[:cut])
			line = line[cut:]
		}
		// +1 for the newline separator.
		if current.Len() > 0 && current.Len()+len(line)+1 > maxLen {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte('\n')
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// httpClient is shared by the webhook channels.
var httpClient = &http.Client{Timeout: 30 * time.Second}

// postJSON posts a JSON payload and returns the response body on 2xx.
func postJSON(ctx context.Context, url string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return respBody, nil
}

// StripMarkdown removes the markdown syntax plain-text channels cannot use.
func StripMarkdown(text string) string {
	replacer := strings.NewReplacer("**", "", "__", "", "`", "", "####", "", "###", "", "##", "", "# ", "")
	return replacer.Replace(text)
}

// ToSlackMrkdwn converts standard Markdown to Slack's mrkdwn dialect:
// **bold** becomes *bold* and [text](url) becomes <url|text>.
func ToSlackMrkdwn(text string) string {
	text = strings.ReplaceAll(text, "**", "*")

	var b strings.Builder
	for {
		open := strings.Index(text, "[")
		if open < 0 {
			break
		}
		sep := strings.Index(text[open:], "](")
		if sep < 0 {
			break
		}
		end := strings.Index(text[open+sep:], ")")
		if end < 0 {
			break
		}
		label := text[open+1 : open+sep]
		url := text[open+sep+2 : open+sep+end]
		b.WriteString(text[:open])
		fmt.Fprintf(&b, "<%s|%s>", url, label)
		text = text[open+sep+end+1:]
	}
	b.WriteString(text)
	return b.String()
}
