package services

import (
	"context"
	"fmt"

	"nlvx-chat/internal/llm"
	"nlvx-chat/internal/models"
)

// Reply is the outcome of a chat request before any byte is relayed: either
// a canned reply from the interceptor or an open upstream stream.
type Reply struct {
	Canned      string
	Intercepted bool

	Stream   llm.Stream
	Attempts int
}

// ChatService turns a validated conversation into a reply. It keeps no state
// between requests; the provider configuration is read-only after startup.
type ChatService struct {
	provider    llm.Provider
	personas    *PersonaSet
	interceptor *Interceptor
	retrier     *Retrier
}

func NewChatService(provider llm.Provider, personas *PersonaSet, interceptor *Interceptor, retrier *Retrier) *ChatService {
	if personas == nil {
		personas = NewPersonaSet()
	}
	if interceptor == nil {
		interceptor = NewInterceptor()
	}
	if retrier == nil {
		retrier = NewRetrier(DefaultMaxAttempts, DefaultBaseDelay)
	}
	return &ChatService{
		provider:    provider,
		personas:    personas,
		interceptor: interceptor,
		retrier:     retrier,
	}
}

// Configured reports whether an upstream provider is available.
func (s *ChatService) Configured() bool {
	return s.provider != nil
}

func (s *ChatService) ProviderName() string {
	if s.provider == nil {
		return ""
	}
	return s.provider.Name()
}

// AssembleMessages builds the upstream conversation: the system prompt
// followed by the client's turns in their original order.
func AssembleMessages(systemPrompt string, turns []models.ChatMessage) []llm.Message {
	msgs := make([]llm.Message, 0, len(turns)+1)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})
	for _, t := range turns {
		msgs = append(msgs, llm.Message{Role: t.Role, Content: t.Content})
	}
	return msgs
}

// Respond runs the interceptor, then selects the persona and opens the
// upstream stream with rate-limit retries. The caller owns Reply.Stream.
func (s *ChatService) Respond(ctx context.Context, chat *ValidatedChat) (*Reply, error) {
	if text, ok := s.interceptor.Check(chat.Turns); ok {
		return &Reply{Canned: text, Intercepted: true}, nil
	}

	if s.provider == nil {
		return nil, &ConfigurationError{Message: "Server configuration error."}
	}

	prompt, err := s.personas.SystemPrompt(chat.Mode, chat.Language)
	if err != nil {
		return nil, fmt.Errorf("select persona: %w", err)
	}

	req := &llm.Request{
		Messages: AssembleMessages(prompt, chat.Turns),
		Image:    chat.Image,
	}

	stream, attempts, err := s.retrier.Open(ctx, func(ctx context.Context) (llm.Stream, error) {
		return s.provider.Open(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	return &Reply{Stream: stream, Attempts: attempts}, nil
}
