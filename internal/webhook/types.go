package webhook

import "encoding/json"

// Delta is a single change notification
type Delta struct {
	Date       int64           `json:"date"`
	Object     string          `json:"object"`
	Type       string          `json:"type"`
	ObjectData json.RawMessage `json:"object_data"`
}

// Payload is the body of a webhook delivery
type Payload struct {
	Deltas []Delta `json:"deltas"`
}

// SignatureHeader carries the hex HMAC-SHA256 of the delivery body
const SignatureHeader = "X-Nylas-Signature"
