package ratelimit

import (
	"fmt"
	"log"
	"math"
	"strings"
	"sync"
	"time"
)

// RateLimitError is returned by Admit when the trailing window is full.
// RetryAfter is rounded up to the nearest second.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %s", e.RetryAfter)
}

// Retryable marks rate-limit errors as eligible for automatic retry.
func (e *RateLimitError) Retryable() bool { return true }

// retryable is implemented by errors that may be re-attempted.
type retryable interface {
	Retryable() bool
}

// IsRetryable reports whether err is worth retrying: either it declares
// itself retryable, or it looks like a transport reset/transient condition.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if r, ok := err.(retryable); ok {
		return r.Retryable()
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "econnreset"),
		strings.Contains(msg, "broken pipe"),
		strings.Contains(msg, "429"),
		strings.Contains(msg, "rate limit"):
		return true
	}
	return false
}

// Limiter is a sliding-window admission controller shared by every
// generation call in the process. Admission checks mutate the timestamp
// window, so all access goes through a mutex.
type Limiter struct {
	mu          sync.Mutex
	maxRequests int
	window      time.Duration
	maxRetries  int
	timestamps  []time.Time

	// Injection points for tests; production uses the real clock.
	now   func() time.Time
	sleep func(time.Duration)
}

// New creates a Limiter admitting at most maxRequests calls per window,
// retrying retryable failures up to maxRetries times.
func New(maxRequests int, window time.Duration, maxRetries int) *Limiter {
	return &Limiter{
		maxRequests: maxRequests,
		window:      window,
		maxRetries:  maxRetries,
		now:         time.Now,
		sleep:       time.Sleep,
	}
}

// Admit checks whether a call may proceed now. On success the current time
// is recorded in the window; a denied admission leaves the window untouched.
func (l *Limiter) Admit() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	kept := l.timestamps[:0]
	for _, ts := range l.timestamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	l.timestamps = kept

	if len(l.timestamps) >= l.maxRequests {
		// maxRequests <= 0 admits nothing, so the window can be empty here;
		// deny for a full window instead of indexing into an empty slice.
		wait := l.window
		if len(l.timestamps) > 0 {
			wait = l.window - now.Sub(l.timestamps[0])
			if wait < 0 {
				wait = 0
			}
		}
		// Round up to whole seconds, matching the wait time we report to callers.
		waitSecs := time.Duration(math.Ceil(wait.Seconds())) * time.Second
		return &RateLimitError{RetryAfter: waitSecs}
	}

	l.timestamps = append(l.timestamps, now)
	return nil
}

// ExecuteWithRetry admits and runs task, retrying retryable failures with
// exponential backoff (2^attempt seconds). Non-retryable failures propagate
// immediately; exhausting the retry budget propagates the last failure.
func (l *Limiter) ExecuteWithRetry(task func() error) error {
	var lastErr error
	for attempt := 0; ; attempt++ {
		err := l.Admit()
		if err == nil {
			err = task()
		}
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		lastErr = err
		if attempt >= l.maxRetries {
			return lastErr
		}
		backoff := time.Duration(1<<uint(attempt)) * time.Second
		log.Printf("WARN: retryable failure (attempt %d/%d), backing off %s: %v", attempt+1, l.maxRetries, backoff, err)
		l.sleep(backoff)
	}
}

// windowSize reports the number of admissions currently in the window.
func (l *Limiter) windowSize() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.timestamps)
}
