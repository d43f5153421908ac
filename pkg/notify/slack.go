package notify

import (
	"context"
	"fmt"
	"time"

	goslack "github.com/slack-go/slack"
)

// SlackSender posts notifications to a single configured Slack channel,
// grounded on the teacher's pkg/slack.Client/Service split: a thin SDK
// wrapper (PostMessage) underneath a notification-shaped entry point.
// Unlike the teacher's Service, which is fail-open and swallows errors,
// SlackSender reports every attempt's Outcome so callers can persist it
// on an AuditLog/AgentStep rather than lose it to a log line.
type SlackSender struct {
	api       *goslack.Client
	channelID string
	timeout   time.Duration
}

// NewSlackSender creates a SlackSender. An empty token means the channel
// is configured off: Notify always returns OutcomeChannelDisabled.
func NewSlackSender(token, channelID string, timeout time.Duration) *SlackSender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	s := &SlackSender{channelID: channelID, timeout: timeout}
	if token != "" && channelID != "" {
		s.api = goslack.New(token)
	}
	return s
}

// Notify posts msg to the configured channel as a single Block Kit
// section.
func (s *SlackSender) Notify(ctx context.Context, msg Message) (Outcome, error) {
	if s.api == nil {
		return OutcomeChannelDisabled, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text := msg.Body
	if msg.Subject != "" {
		text = fmt.Sprintf("*%s*\n%s", msg.Subject, msg.Body)
	}
	block := goslack.NewSectionBlock(
		goslack.NewTextBlockObject(goslack.MarkdownType, text, false, false),
		nil, nil,
	)

	channel := msg.Channel
	if channel == "" {
		channel = s.channelID
	}

	if _, _, err := s.api.PostMessageContext(ctx, channel, goslack.MsgOptionBlocks(block)); err != nil {
		return OutcomeDeliveryFailed, fmt.Errorf("chat.postMessage failed: %w", err)
	}
	return OutcomeDelivered, nil
}
