package handlers

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"nlvx-chat/internal/events"
	"nlvx-chat/internal/llm"
	"nlvx-chat/internal/models"
	"nlvx-chat/internal/relay"
	"nlvx-chat/internal/services"
)

const (
	TransportHTTP = "http"
	TransportWS   = "ws"
)

type ChatHandler struct {
	chatService    *services.ChatService
	publisher      events.Publisher
	requestTimeout time.Duration
	maxBodyBytes   int64
	allowedOrigin  string

	pending sync.WaitGroup // relay events still being published
}

func NewChatHandler(chatService *services.ChatService, publisher events.Publisher, requestTimeout time.Duration, maxBodyBytes int64, allowedOrigin string) *ChatHandler {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if requestTimeout <= 0 {
		requestTimeout = 2 * time.Minute
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = 10 << 20
	}
	return &ChatHandler{
		chatService:    chatService,
		publisher:      publisher,
		requestTimeout: requestTimeout,
		maxBodyBytes:   maxBodyBytes,
		allowedOrigin:  allowedOrigin,
	}
}

func (h *ChatHandler) newEvent(r *http.Request, transport string) *models.RelayEvent {
	return &models.RelayEvent{
		RequestID: r.Header.Get("X-Request-ID"),
		Transport: transport,
		Provider:  h.chatService.ProviderName(),
	}
}

// publish hands a copy of evt to the publisher in the background. The
// response must be able to end before the publisher is done.
func (h *ChatHandler) publish(evt *models.RelayEvent, start time.Time) {
	evt.FinishedAt = time.Now()
	evt.DurationMS = evt.FinishedAt.Sub(start).Milliseconds()

	e := *evt
	h.pending.Add(1)
	go func() {
		defer h.pending.Done()
		h.publisher.Publish(context.Background(), e)
	}()
}

// Drain waits for relay events that are still being published.
func (h *ChatHandler) Drain() {
	h.pending.Wait()
}

// prepare runs everything that may still fail with a structured error:
// configuration check, decoding, validation, the scripted intercept and the
// retried upstream open. The returned stream has not produced any byte yet.
func (h *ChatHandler) prepare(ctx context.Context, body io.Reader, evt *models.RelayEvent) (llm.Stream, error) {
	if !h.chatService.Configured() {
		log.Printf("Chat request %s rejected: upstream API key not provided", evt.RequestID)
		return nil, &services.ConfigurationError{Message: "Server configuration error."}
	}

	req, err := services.DecodeChatRequest(body)
	if err != nil {
		return nil, err
	}

	chat, err := services.ValidateChatRequest(req)
	if err != nil {
		return nil, err
	}

	reply, err := h.chatService.Respond(ctx, chat)
	if err != nil {
		evt.Attempts = attemptsOf(err)
		return nil, err
	}

	if reply.Intercepted {
		evt.Outcome = models.OutcomeIntercepted
		return relay.TextStream(reply.Canned), nil
	}

	evt.Attempts = reply.Attempts
	return reply.Stream, nil
}

// logFailure records the full error server-side; the client only ever sees
// the generic message from classifyError.
func logFailure(evt *models.RelayEvent, err error) {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		return
	}
	log.Printf("An error occurred in the chat API (request %s, attempts %d): %v", evt.RequestID, evt.Attempts, err)
}

func (h *ChatHandler) finish(evt *models.RelayEvent, res relay.Result) {
	evt.Chunks = res.Chunks
	evt.Bytes = res.Bytes

	switch res.State {
	case relay.StateCompleted:
		if evt.Outcome == "" {
			evt.Outcome = models.OutcomeCompleted
		}
	default:
		evt.Outcome = models.OutcomeAborted
		log.Printf("Chat stream %s aborted after %d chunks (%d bytes): %v", evt.RequestID, res.Chunks, res.Bytes, res.Err)
	}
}

// Chat handles POST /api/chat and streams the reply as plain text.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	evt := h.newEvent(r, TransportHTTP)
	defer h.publish(evt, start)

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, errorResp("METHOD_NOT_ALLOWED", "Method Not Allowed", r))
		evt.Outcome = models.OutcomeRejected
		evt.ErrorCode = "METHOD_NOT_ALLOWED"
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	stream, err := h.prepare(ctx, r.Body, evt)
	if err != nil {
		logFailure(evt, err)
		evt.Outcome = models.OutcomeRejected
		evt.ErrorCode = handleServiceError(w, r, err)
		return
	}

	res := relay.Relay(ctx, stream, relay.NewHTTPSink(w))
	h.finish(evt, res)

	// Nothing was sent yet, so a proper error response is still possible.
	if res.State == relay.StateAborted && !res.Begun {
		evt.ErrorCode = handleServiceError(w, r, &services.UpstreamError{Message: "stream failed before first chunk", Cause: res.Err})
	}
}
