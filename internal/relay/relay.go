// Package relay forwards an upstream token stream to a client connection as
// the chunks arrive.
//
// A relay moves Idle -> Streaming -> {Completed, Aborted}. The sink commits
// its headers on the transition to Streaming; after that only body bytes can
// be sent, so failures end the response instead of producing an error body.
package relay

import (
	"context"
	"errors"
	"io"

	"nlvx-chat/internal/llm"
)

type State int

const (
	StateIdle State = iota
	StateStreaming
	StateCompleted
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Sink is the client side of a relay.
type Sink interface {
	// Begin commits the response headers.
	Begin() error
	// Write delivers p to the client immediately.
	Write(p []byte) error
	// Finish ends a completed response.
	Finish() error
}

// Result describes how a relay ended.
type Result struct {
	State  State
	Begun  bool  // headers were committed
	Chunks int   // writes delivered to the sink
	Bytes  int64 // bytes delivered to the sink
	Err    error // cause of an abort
}

// Relay copies stream to sink until the stream ends, the stream fails, the
// sink fails, or ctx is done. Chunks are written in arrival order; multi-byte
// UTF-8 sequences split across chunks are held back until complete. The
// stream is always closed before Relay returns.
func Relay(ctx context.Context, stream llm.Stream, sink Sink) Result {
	defer stream.Close()

	var res Result
	var carry utf8Carry

	abort := func(err error) Result {
		res.State = StateAborted
		res.Err = err
		return res
	}

	begin := func() error {
		if res.Begun {
			return nil
		}
		if err := sink.Begin(); err != nil {
			return err
		}
		res.Begun = true
		res.State = StateStreaming
		return nil
	}

	write := func(p []byte) error {
		if len(p) == 0 {
			return nil
		}
		if err := sink.Write(p); err != nil {
			return err
		}
		res.Chunks++
		res.Bytes += int64(len(p))
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return abort(err)
		}

		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			if err := begin(); err != nil {
				return abort(err)
			}
			if err := write(carry.Flush()); err != nil {
				return abort(err)
			}
			if err := sink.Finish(); err != nil {
				return abort(err)
			}
			res.State = StateCompleted
			return res
		}
		if err != nil {
			return abort(err)
		}

		if err := begin(); err != nil {
			return abort(err)
		}
		if err := write(carry.Feed(chunk)); err != nil {
			return abort(err)
		}
	}
}
