package notify

import (
	"context"
	"encoding/json"
	"fmt"
)

const dingtalkMaxLen = 20000

// DingTalk posts markdown messages to a DingTalk group robot webhook.
type DingTalk struct {
	webhookURL string
}

func NewDingTalk(webhookURL string) *DingTalk {
	return &DingTalk{webhookURL: webhookURL}
}

func (d *DingTalk) Name() string { return "dingtalk" }

func (d *DingTalk) IsConfigured() bool { return d.webhookURL != "" }

func (d *DingTalk) Send(ctx context.Context, title, content string) error {
	if !d.IsConfigured() {
		return fmt.Errorf("dingtalk: missing webhook url")
	}

	for i, chunk := range SplitContent(content, dingtalkMaxLen) {
		payload := map[string]any{
			"msgtype": "markdown",
			"markdown": map[string]string{
				"title": title,
				"text":  fmt.Sprintf("## %s\n\n%s", title, chunk),
			},
		}
		body, err := postJSON(ctx, d.webhookURL, payload)
		if err != nil {
			return fmt.Errorf("dingtalk chunk %d: %w", i+1, err)
		}
		var resp struct {
			ErrCode int    `json:"errcode"`
			ErrMsg  string `json:"errmsg"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return fmt.Errorf("dingtalk response: %w", err)
		}
		if resp.ErrCode != 0 {
			return fmt.Errorf("dingtalk api error %d: %s", resp.ErrCode, resp.ErrMsg)
		}
	}
	return nil
}
