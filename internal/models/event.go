package models

import "time"

// Relay outcomes reported on the event channel.
const (
	OutcomeCompleted   = "completed"
	OutcomeAborted     = "aborted"
	OutcomeIntercepted = "intercepted"
	OutcomeRejected    = "rejected"
)

// RelayEvent summarises one finished chat request. It carries counters only,
// never conversation content.
type RelayEvent struct {
	RequestID  string    `json:"request_id"`
	Transport  string    `json:"transport"` // "http" | "ws"
	Provider   string    `json:"provider,omitempty"`
	Outcome    string    `json:"outcome"`
	ErrorCode  string    `json:"error_code,omitempty"`
	Attempts   int       `json:"attempts"`
	Chunks     int       `json:"chunks"`
	Bytes      int64     `json:"bytes"`
	DurationMS int64     `json:"duration_ms"`
	FinishedAt time.Time `json:"finished_at"`
}
