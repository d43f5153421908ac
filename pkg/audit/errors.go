package audit

import "errors"

// ErrDuplicateEvent is returned by WebhookEventStore.Create when the
// (model, record_id, event_type, write_date) tuple was already recorded.
var ErrDuplicateEvent = errors.New("audit: duplicate webhook event")

// ErrNotFound is returned by Get-style methods when no row matches.
var ErrNotFound = errors.New("audit: not found")
