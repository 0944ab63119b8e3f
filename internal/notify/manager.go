package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/trendpulse/trendpulse/internal/model"
)

// PushRecorder tracks which days a push already went out on.
type PushRecorder interface {
	HasPushedOn(ctx context.Context, day string) (bool, error)
	MarkPushed(ctx context.Context, day string) error
}

// Manager owns the configured channels and applies the push policy before
// fanning a message out to all of them.
type Manager struct {
	notifiers   []Notifier
	recorder    PushRecorder
	windowStart string
	windowEnd   string
	oncePerDay  bool
	log         zerolog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewManager builds a manager from the notify config. Channels without the
// settings they need are skipped. recorder may be nil, which disables the
// once-per-day gate.
func NewManager(cfg model.NotifyConfig, recorder PushRecorder, log zerolog.Logger) *Manager {
	m := &Manager{
		recorder:    recorder,
		windowStart: cfg.WindowStart,
		windowEnd:   cfg.WindowEnd,
		oncePerDay:  cfg.OncePerDay,
		log:         log,
		now:         time.Now,
	}
	candidates := []Notifier{
		NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID),
		NewSlack(cfg.Slack.WebhookURL),
		NewDingTalk(cfg.DingTalk.WebhookURL),
		NewNtfy(cfg.Ntfy.ServerURL, cfg.Ntfy.Topic, cfg.Ntfy.Token),
	}
	for _, n := range candidates {
		if n.IsConfigured() {
			m.notifiers = append(m.notifiers, n)
		}
	}
	return m
}

// Channels returns the names of the configured channels.
func (m *Manager) Channels() []string {
	names := make([]string, 0, len(m.notifiers))
	for _, n := range m.notifiers {
		names = append(names, n.Name())
	}
	return names
}

// HasChannels reports whether at least one channel is configured.
func (m *Manager) HasChannels() bool { return len(m.notifiers) > 0 }

// WithinWindow reports whether t falls inside the configured push window.
// An unset window always passes. A window whose end is before its start
// crosses midnight.
func (m *Manager) WithinWindow(t time.Time) bool {
	if m.windowStart == "" || m.windowEnd == "" {
		return true
	}
	start, err := parseClock(m.windowStart)
	if err != nil {
		return true
	}
	end, err := parseClock(m.windowEnd)
	if err != nil {
		return true
	}
	minutes := t.Hour()*60 + t.Minute()
	if end < start {
		return minutes >= start || minutes <= end
	}
	return minutes >= start && minutes <= end
}

// parseClock converts "HH:MM" to minutes since midnight.
func parseClock(s string) (int, error) {
	var h, min int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &min); err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", s, err)
	}
	if h < 0 || h > 23 || min < 0 || min > 59 {
		return 0, fmt.Errorf("clock %q out of range", s)
	}
	return h*60 + min, nil
}

// ShouldPush applies the push policy. It returns false with a reason when a
// push is not due: no channels, outside the window, or already pushed today.
func (m *Manager) ShouldPush(ctx context.Context) (bool, string) {
	if !m.HasChannels() {
		return false, "no channels configured"
	}
	now := m.now()
	if !m.WithinWindow(now) {
		return false, fmt.Sprintf("outside push window %s-%s", m.windowStart, m.windowEnd)
	}
	if m.oncePerDay && m.recorder != nil {
		day := now.Format("2006-01-02")
		pushed, err := m.recorder.HasPushedOn(ctx, day)
		if err != nil {
			m.log.Warn().Err(err).Msg("push record lookup failed, pushing anyway")
			return true, ""
		}
		if pushed {
			return false, "already pushed today"
		}
	}
	return true, ""
}

// SendAll delivers the message on every configured channel concurrently and
// returns one Result per channel. When force is false the push policy is
// applied first; a skipped push returns no results and the policy reason.
func (m *Manager) SendAll(ctx context.Context, title, content string, force bool) ([]Result, string) {
	if !force {
		ok, reason := m.ShouldPush(ctx)
		if !ok {
			return nil, reason
		}
	} else if !m.HasChannels() {
		return nil, "no channels configured"
	}

	results := make([]Result, len(m.notifiers))
	var wg sync.WaitGroup
	for i, n := range m.notifiers {
		wg.Add(1)
		go func(i int, n Notifier) {
			defer wg.Done()
			r := Result{Channel: n.Name()}
			if err := n.Send(ctx, title, content); err != nil {
				r.Error = err.Error()
				m.log.Warn().Str("channel", n.Name()).Err(err).Msg("notification failed")
			} else {
				r.Success = true
				m.log.Info().Str("channel", n.Name()).Msg("notification sent")
			}
			results[i] = r
		}(i, n)
	}
	wg.Wait()

	if anySucceeded(results) && m.oncePerDay && m.recorder != nil {
		day := m.now().Format("2006-01-02")
		if err := m.recorder.MarkPushed(ctx, day); err != nil {
			m.log.Warn().Err(err).Msg("failed to record push")
		}
	}
	return results, ""
}

func anySucceeded(results []Result) bool {
	for _, r := range results {
		if r.Success {
			return true
		}
	}
	return false
}
