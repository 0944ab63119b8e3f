package notify

import (
	"context"
	"fmt"
)

const slackMaxLen = 40000

// Slack posts messages to an incoming webhook.
type Slack struct {
	webhookURL string
}

func NewSlack(webhookURL string) *Slack {
	return &Slack{webhookURL: webhookURL}
}

func (s *Slack) Name() string { return "slack" }

func (s *Slack) IsConfigured() bool { return s.webhookURL != "" }

func (s *Slack) Send(ctx context.Context, title, content string) error {
	if !s.IsConfigured() {
		return fmt.Errorf("slack: missing webhook url")
	}

	message := ToSlackMrkdwn(fmt.Sprintf("*%s*\n\n%s", title, content))
	for i, chunk := range SplitContent(message, slackMaxLen) {
		payload := map[string]any{"text": chunk}
		if _, err := postJSON(ctx, s.webhookURL, payload); err != nil {
			return fmt.Errorf("slack chunk %d: %w", i+1, err)
		}
	}
	return nil
}
