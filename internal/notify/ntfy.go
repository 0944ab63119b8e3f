package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const ntfyMaxLen = 4096

// Ntfy publishes messages to an ntfy.sh topic (or a self-hosted server).
type Ntfy struct {
	serverURL string
	topic     string
	token     string
}

// NewNtfy returns an ntfy notifier. serverURL defaults to https://ntfy.sh
// when empty; token is optional.
func NewNtfy(serverURL, topic, token string) *Ntfy {
	if serverURL == "" {
		serverURL = "https://ntfy.sh"
	}
	return &Ntfy{serverURL: strings.TrimRight(serverURL, "/"), topic: topic, token: token}
}

func (n *Ntfy) Name() string { return "ntfy" }

func (n *Ntfy) IsConfigured() bool { return n.topic != "" }

func (n *Ntfy) Send(ctx context.Context, title, content string) error {
	if !n.IsConfigured() {
		return fmt.Errorf("ntfy: missing topic")
	}

	url := fmt.Sprintf("%s/%s", n.serverURL, n.topic)
	for i, chunk := range SplitContent(content, ntfyMaxLen) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(chunk))
		if err != nil {
			return fmt.Errorf("ntfy chunk %d: %w", i+1, err)
		}
		req.Header.Set("Title", title)
		req.Header.Set("Markdown", "yes")
		if n.token != "" {
			req.Header.Set("Authorization", "Bearer "+n.token)
		}

		resp, err := httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("ntfy chunk %d: %w", i+1, err)
		}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("ntfy chunk %d: status %d: %s", i+1, resp.StatusCode, strings.TrimSpace(string(body)))
		}
	}
	return nil
}
