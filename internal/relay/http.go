package relay

import (
	"errors"
	"net/http"
)

// HTTPSink streams plain text over a chunked HTTP response, flushing after
// every write.
type HTTPSink struct {
	w  http.ResponseWriter
	rc *http.ResponseController
}

func NewHTTPSink(w http.ResponseWriter) *HTTPSink {
	return &HTTPSink{w: w, rc: http.NewResponseController(w)}
}

func (s *HTTPSink) Begin() error {
	h := s.w.Header()
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set("Cache-Control", "no-cache")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-Accel-Buffering", "no")
	h.Del("Content-Length")
	s.w.WriteHeader(http.StatusOK)
	return s.flush()
}

func (s *HTTPSink) Write(p []byte) error {
	if _, err := s.w.Write(p); err != nil {
		return err
	}
	return s.flush()
}

func (s *HTTPSink) Finish() error {
	return s.flush()
}

func (s *HTTPSink) flush() error {
	err := s.rc.Flush()
	if errors.Is(err, http.ErrNotSupported) {
		return nil
	}
	return err
}
