// Package websocket carries chat replies over a WebSocket connection, one
// text frame per relayed chunk.
package websocket

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"nlvx-chat/internal/models"
)

const writeWait = 10 * time.Second

// NewUpgrader accepts connections from allowedOrigin, or from anywhere when
// it is "*" or empty.
func NewUpgrader(allowedOrigin string) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" || allowedOrigin == "*" {
				return true
			}
			origin := r.Header.Get("Origin")
			return origin == "" || strings.EqualFold(origin, allowedOrigin)
		},
	}
}

// Sink implements relay.Sink on a WebSocket connection. The upgrade response
// already committed the headers, so Begin has nothing to send.
type Sink struct {
	conn *websocket.Conn
}

func NewSink(conn *websocket.Conn) *Sink {
	return &Sink{conn: conn}
}

func (s *Sink) Begin() error { return nil }

func (s *Sink) Write(p []byte) error {
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, p)
}

// Finish closes the connection normally.
func (s *Sink) Finish() error {
	return s.Close(websocket.CloseNormalClosure, "")
}

// Close sends a close frame with code and reason.
func (s *Sink) Close(code int, reason string) error {
	msg := websocket.FormatCloseMessage(code, reason)
	return s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}

// SendError reports a failure that happened before any chunk was sent and
// then closes the connection normally.
func (s *Sink) SendError(apiErr models.APIError) error {
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteJSON(models.ErrorResponse{Error: apiErr}); err != nil {
		return err
	}
	return s.Finish()
}

// Abort closes a stream that failed after chunks were sent.
func (s *Sink) Abort() error {
	return s.Close(websocket.CloseInternalServerErr, "stream interrupted")
}
