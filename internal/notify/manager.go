// Package notify posts benchmark progress to Slack.
package notify

import (
	"context"
	"log/slog"
	"os"

	"github.com/slack-go/slack"
	"github.com/spf13/viper"
)

// Event types
const (
	EventStart   = "on_start"
	EventSuccess = "on_success"
	EventFailure = "on_failure"
)

// TokenEnv holds the Slack bot token.
const TokenEnv = "SLACK_BOT_USER_TOKEN"

// SlackPoster is the part of the Slack client the Manager uses.
type SlackPoster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// Manager sends notifications for enabled events.
type Manager struct {
	client    SlackPoster
	channelID string
	logger    *slog.Logger
}

// NewManager creates a Manager from the notifications.slack configuration.
// Without a bot token the Manager is inert.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{logger: logger}

	if !viper.GetBool("notifications.slack.enabled") {
		return m
	}

	botToken := os.Getenv(TokenEnv)
	if botToken == "" {
		logger.Warn("SLACK_BOT_USER_TOKEN not set, slack notifications disabled")
		return m
	}

	m.client = slack.New(botToken)
	m.channelID = viper.GetString("notifications.slack.channel")
	return m
}

// Active reports whether notifications can be delivered at all.
func (m *Manager) Active() bool {
	return m != nil && m.client != nil
}

// Notify posts message if eventType is enabled. A non-empty threadTS posts
// the message as a reply. It returns the timestamp of the posted message,
// or "" when nothing was sent. Delivery errors are logged and returned.
func (m *Manager) Notify(ctx context.Context, eventType, message, threadTS string) (string, error) {
	if !m.Active() || !m.isEnabled(eventType) {
		return "", nil
	}

	channelID := m.channelID
	if channelID == "" {
		channelID = "#benchmarks"
	}

	title, color := getStyle(eventType)
	opts := []slack.MsgOption{
		slack.MsgOptionText(title, false),
		slack.MsgOptionAttachments(slack.Attachment{
			Color: color,
			Text:  message,
		}),
	}
	if threadTS != "" {
		opts = append(opts, slack.MsgOptionTS(threadTS))
	}

	_, ts, err := m.client.PostMessageContext(ctx, channelID, opts...)
	if err != nil {
		m.logger.Warn("Failed to send Slack notification", "event", eventType, "error", err)
		return "", err
	}
	return ts, nil
}

func (m *Manager) isEnabled(eventType string) bool {
	if !viper.GetBool("notifications.slack.enabled") {
		return false
	}
	return viper.GetBool("notifications.slack.events." + eventType)
}

func getStyle(eventType string) (string, string) {
	switch eventType {
	case EventStart:
		return "Benchmark batch started", "#3498db"
	case EventSuccess:
		return "Benchmark finished", "#2eb886"
	case EventFailure:
		return "Benchmark failed", "#a30200"
	default:
		return "Notification", "#808080"
	}
}
