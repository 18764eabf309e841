// Package llm isolates the upstream chat-completion providers behind one
// streaming interface. Each concrete provider (Groq, Gemini) is an adapter
// that turns its SDK or wire format into ordered text deltas.
package llm

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of the assembled upstream conversation.
type Message struct {
	Role    string
	Content string
}

// Image is an optional picture attached to the last user turn.
type Image struct {
	MIMEType string
	Data     []byte
}

// Request is everything a provider needs to open a chat stream.
type Request struct {
	Messages []Message
	Image    *Image
}

// Stream yields text deltas in the order the provider produced them. Recv
// returns io.EOF once the provider signals completion. A delta is raw UTF-8
// and may end in the middle of a multi-byte character.
//
// Close releases the underlying connection and must be safe to call after
// Recv has returned an error.
type Stream interface {
	Recv() ([]byte, error)
	Close() error
}

// Provider opens chat streams against one upstream service. Open must not
// return until the provider has accepted the request, so that rejections such
// as rate limiting surface here and can be retried before any byte is relayed.
type Provider interface {
	Name() string
	Open(ctx context.Context, req *Request) (Stream, error)
}
