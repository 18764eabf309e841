package models

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single turn in a conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequest is the payload sent to the chat endpoint. The client sends the
// whole conversation on every request.
type ChatRequest struct {
	History       []ChatMessage `json:"history"`
	UserLanguage  *string       `json:"user_language,omitempty"`
	NLVXMode      *bool         `json:"nlvx_mode,omitempty"`
	ImageBase64   *string       `json:"imageBase64,omitempty"`
	ImageMimeType *string       `json:"imageMimeType,omitempty"`
}
