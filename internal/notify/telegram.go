package notify

import (
	"context"
	"encoding/json"
	"fmt"
)

const telegramMaxLen = 4096

// Telegram sends messages through the Telegram bot API.
type Telegram struct {
	token  string
	chatID string
	apiURL string
}

// NewTelegram returns a Telegram notifier. Empty token or chat ID leaves the
// channel unconfigured.
func NewTelegram(token, chatID string) *Telegram {
	return &Telegram{token: token, chatID: chatID, apiURL: "https://api.telegram.org"}
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) IsConfigured() bool { return t.token != "" && t.chatID != "" }

func (t *Telegram) Send(ctx context.Context, title, content string) error {
	if !t.IsConfigured() {
		return fmt.Errorf("telegram: missing token or chat id")
	}

	message := fmt.Sprintf("*%s*\n\n%s", title, content)
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiURL, t.token)
	for i, chunk := range SplitContent(message, telegramMaxLen) {
		payload := map[string]any{
			"chat_id":                  t.chatID,
			"text":                     chunk,
			"parse_mode":               "Markdown",
			"disable_web_page_preview": true,
		}
		body, err := postJSON(ctx, url, payload)
		if err != nil {
			return fmt.Errorf("telegram chunk %d: %w", i+1, err)
		}
		var resp struct {
			OK          bool   `json:"ok"`
			Description string `json:"description"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return fmt.Errorf("telegram response: %w", err)
		}
		if !resp.OK {
			return fmt.Errorf("telegram api error: %s", resp.Description)
		}
	}
	return nil
}
