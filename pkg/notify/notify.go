// Package notify is the outbound notification boundary every automation
// and agent's terminal "notify" node calls through instead of talking to
// a channel's API directly, mirroring the C1/C2 port pattern
// (pkg/erpclient, pkg/llmclient): one small interface, a Fake for tests,
// and a real adapter.
package notify

import "context"

// Outcome classifies what happened to a notification attempt. Recorded
// on the triggering AuditLog/AgentStep's output snapshot rather than
// treated as a hard error, since an undelivered notification never
// un-does the automation or agent decision it's reporting on.
type Outcome string

const (
	OutcomeDelivered       Outcome = "delivered"
	OutcomeChannelDisabled Outcome = "channel_disabled"
	OutcomeDeliveryFailed  Outcome = "delivery_failed"
)

// Message is one notification to send.
type Message struct {
	Channel string // target channel/recipient, interpretation is sender-specific
	Subject string
	Body    string
}

// Sender delivers a Message and reports what happened. A disabled channel
// or a provider-side rejection is an Outcome value, not a Go error: error
// is non-nil only for OutcomeDeliveryFailed, so callers branch on Outcome
// rather than truthiness alone (spec.md §9's disabled-vs-failed open
// question).
type Sender interface {
	Notify(ctx context.Context, msg Message) (Outcome, error)
}
