package datasource

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"time"
)

// Backoff computes exponential retry waits: Base doubled per attempt,
// capped at Max, plus up to Jitter of random delay
type Backoff struct {
	Base   time.Duration
	Max    time.Duration
	Jitter time.Duration
}

// DefaultBackoff waits 2^attempt seconds plus up to a second, capped at a minute
func DefaultBackoff() Backoff {
	return Backoff{Base: time.Second, Max: time.Minute, Jitter: time.Second}
}

// Duration returns the wait before retry number attempt (0-based)
func (b Backoff) Duration(attempt int) time.Duration {
	wait := float64(b.Base) * math.Pow(2, float64(attempt))
	if b.Max > 0 && wait > float64(b.Max) {
		wait = float64(b.Max)
	}
	d := time.Duration(wait)
	if b.Jitter > 0 {
		d += time.Duration(rand.Int63n(int64(b.Jitter)))
	}
	if b.Max > 0 && d > b.Max {
		d = b.Max
	}
	return d
}

// RetryableBackoff adapts Backoff to retryablehttp, taking the client's
// min/max waits and honouring Retry-After on 429 and 503 responses
func (b Backoff) RetryableBackoff(min, max time.Duration, attempt int, resp *http.Response) time.Duration {
	if resp != nil && (resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable) {
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return Backoff{Base: min, Max: max, Jitter: b.Jitter}.Duration(attempt)
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }

func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying; Retry returns it unwrapped
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Retry calls fn until it succeeds, returns a Permanent error, attempts are
// exhausted or ctx is done
func Retry(ctx context.Context, attempts int, b Backoff, fn func(context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		if attempt == attempts-1 {
			break
		}
		timer := time.NewTimer(b.Duration(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}
