package relay

import (
	"io"

	"nlvx-chat/internal/llm"
)

// TextStream is a stream that yields text once. Canned replies use it so they
// go through the same sink as model output.
func TextStream(text string) llm.Stream {
	return &textStream{text: []byte(text)}
}

type textStream struct {
	text []byte
	done bool
}

func (s *textStream) Recv() ([]byte, error) {
	if s.done {
		return nil, io.EOF
	}
	s.done = true
	return s.text, nil
}

func (s *textStream) Close() error {
	s.done = true
	return nil
}
