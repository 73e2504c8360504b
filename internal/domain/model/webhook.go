package model

import "time"

// WebhookEvent is a verified inbound callback from the partner. Raw holds
// the body bytes exactly as received; decoding them is the router's job.
type WebhookEvent struct {
	ExternalID string
	Path       string
	Timestamp  string
	Raw        []byte
	ReceivedAt time.Time
}
