package handlers

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"time"

	"nlvx-chat/internal/models"
	"nlvx-chat/internal/relay"
	"nlvx-chat/internal/services"
	"nlvx-chat/internal/websocket"
)

const wsFirstMessageWait = 30 * time.Second

// ChatWebSocket handles GET /api/chat/ws. The first text message carries the
// same JSON body as POST /api/chat; the reply arrives as text frames followed
// by a normal close.
func (h *ChatHandler) ChatWebSocket(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	evt := h.newEvent(r, TransportWS)

	upgrader := websocket.NewUpgrader(h.allowedOrigin)
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	defer h.publish(evt, start)

	sink := websocket.NewSink(conn)

	conn.SetReadLimit(h.maxBodyBytes)
	conn.SetReadDeadline(time.Now().Add(wsFirstMessageWait))
	_, data, err := conn.ReadMessage()
	if err != nil {
		log.Printf("WebSocket chat %s: no request received: %v", evt.RequestID, err)
		evt.Outcome = models.OutcomeRejected
		return
	}
	conn.SetReadDeadline(time.Time{})

	ctx, cancel := context.WithTimeout(context.Background(), h.requestTimeout)
	defer cancel()

	// The peer sends nothing after the request; any read result means it
	// closed the connection, so stop relaying.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	stream, err := h.prepare(ctx, bytes.NewReader(data), evt)
	if err != nil {
		logFailure(evt, err)
		status, code, message, fields := classifyError(err)
		evt.Outcome = models.OutcomeRejected
		evt.ErrorCode = code
		sink.SendError(models.APIError{
			Code:      code,
			Message:   message,
			Fields:    fields,
			Status:    status,
			RequestID: evt.RequestID,
		})
		return
	}

	res := relay.Relay(ctx, stream, sink)
	h.finish(evt, res)

	if res.State == relay.StateAborted {
		if res.Chunks == 0 {
			status, code, message, _ := classifyError(&services.UpstreamError{Message: "stream failed before first chunk", Cause: res.Err})
			evt.ErrorCode = code
			sink.SendError(models.APIError{Code: code, Message: message, Status: status, RequestID: evt.RequestID})
			return
		}
		sink.Abort()
	}
}
