package services

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"

	"nlvx-chat/internal/llm"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second
)

// OpenFunc opens one upstream stream attempt.
type OpenFunc func(ctx context.Context) (llm.Stream, error)

// Retrier retries opening an upstream stream while the provider reports rate
// limiting. The delay before attempt k (k >= 2) is BaseDelay * 2^(k-2).
// Once a stream is returned nothing is retried; mid-stream failures belong
// to the relay.
type Retrier struct {
	MaxAttempts int
	BaseDelay   time.Duration

	// Timer waits between attempts. Nil uses a real timer; tests replace it.
	Timer backoff.Timer
}

func NewRetrier(maxAttempts int, baseDelay time.Duration) *Retrier {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	if baseDelay <= 0 {
		baseDelay = DefaultBaseDelay
	}
	return &Retrier{
		MaxAttempts: maxAttempts,
		BaseDelay:   baseDelay,
	}
}

// Backoff returns the delay to wait before attempt (1-based).
func (r *Retrier) Backoff(attempt int) time.Duration {
	if attempt < 2 {
		return 0
	}
	return r.BaseDelay << (attempt - 2)
}

// policy is a fresh, jitter-free doubling schedule bounded by MaxAttempts
// and ctx.
func (r *Retrier) policy(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = r.BaseDelay
	exp.RandomizationFactor = 0
	exp.Multiplier = 2
	exp.MaxInterval = time.Duration(math.MaxInt64)
	exp.MaxElapsedTime = 0

	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(r.MaxAttempts-1)), ctx)
}

// Open calls open until it succeeds, fails with a non rate-limit error, or
// MaxAttempts rate-limited attempts were made. It returns the number of
// attempts made alongside the result.
func (r *Retrier) Open(ctx context.Context, open OpenFunc) (llm.Stream, int, error) {
	var (
		stream   llm.Stream
		attempts int
		fatal    error
	)

	operation := func() error {
		attempts++
		s, err := open(ctx)
		if err == nil {
			stream = s
			return nil
		}
		if !llm.IsRateLimited(err) {
			fatal = err
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, delay time.Duration) {
		log.Printf("Upstream rate limited, retrying in %s (attempt %d/%d)", delay, attempts+1, r.MaxAttempts)
	}

	err := backoff.RetryNotifyWithTimer(operation, r.policy(ctx), notify, r.Timer)
	switch {
	case err == nil:
		return stream, attempts, nil
	case fatal != nil:
		return nil, attempts, &UpstreamError{Message: "upstream request failed", Attempts: attempts, Cause: fatal}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, attempts, &UpstreamError{Message: "request cancelled while waiting to retry", Attempts: attempts, Cause: err}
	default:
		return nil, attempts, &RateLimitError{
			Message:  "Failed to process request after multiple attempts.",
			Attempts: attempts,
			Cause:    err,
		}
	}
}
