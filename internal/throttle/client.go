package throttle

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Class tags requests sharing one remote rate limit. Calls with the same
// class are spaced by at least the class's minimum interval.
type Class string

// Sleeper sleeps for a duration, honoring context cancellation.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// Option is custom configuration of Client.
type Option func(c *Client)

// Client wraps an http.Client with per-class request spacing and
// transient-failure retries with backoff.
//
// Rate-limit (429) and server-error responses are retried: the wait is the
// server's Retry-After hint when parseable, else baseWait doubled per attempt,
// plus jitter and an escalating penalty capped at penaltyCap. After each such
// wait the class's throttle clock is reset. When all attempts are spent one
// final attempt is made after a long cooldown; its failure is terminal.
// Non-429 client errors fail immediately with ErrBadRequest.
type Client struct {
	httpClient      *http.Client
	intervals       map[Class]time.Duration
	defaultInterval time.Duration

	maxAttempts int
	baseWait    time.Duration
	penaltyBase time.Duration
	penaltyCap  time.Duration
	finalWait   time.Duration

	sleeper Sleeper
	jitter  func() time.Duration

	mu       sync.Mutex
	lastSlot map[Class]time.Time
}

// NewClient returns new Client. Classes missing from intervals are spaced by
// one second.
func NewClient(httpClient *http.Client, intervals map[Class]time.Duration, ops ...Option) *Client {
	cli := &Client{
		httpClient:      httpClient,
		intervals:       intervals,
		defaultInterval: time.Second,
		maxAttempts:     6,
		baseWait:        2 * time.Second,
		penaltyBase:     6 * time.Second,
		penaltyCap:      45 * time.Second,
		finalWait:       20 * time.Second,
		sleeper:         systemSleeper{},
		jitter: func() time.Duration {
			return 300*time.Millisecond + time.Duration(rand.Int63n(int64(600*time.Millisecond)))
		},
		lastSlot: map[Class]time.Time{},
	}

	for _, op := range ops {
		op(cli)
	}

	return cli
}

// Do executes req, retrying transient failures. The request must have a
// rewindable body (GetBody set) if it has one at all.
func (c *Client) Do(ctx context.Context, class Class, req *http.Request) (*http.Response, error) {
	var penalty time.Duration

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if err := c.waitTurn(ctx, class); err != nil {
			return nil, err
		}

		resp, err := c.attempt(ctx, req)
		if err == nil {
			return resp, nil
		}
		if !isTransient(err) {
			return nil, err
		}

		penalty = min(c.penaltyBase*time.Duration(attempt+1), c.penaltyCap)
		wait := c.backoffWait(err, attempt) + c.jitter() + penalty
		if err := c.sleeper.Sleep(ctx, wait); err != nil {
			return nil, err
		}
		c.resetClock(class)
	}

	// last resort: long cooldown, then one more try without the class throttle.
	if err := c.sleeper.Sleep(ctx, max(c.finalWait, penalty)); err != nil {
		return nil, err
	}

	resp, err := c.attempt(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRetriesExhausted, err)
	}

	return resp, nil
}

// attempt executes the request once, mapping failures onto the error
// taxonomy: transientError for retryable outcomes, ErrBadRequest otherwise.
func (c *Client) attempt(ctx context.Context, req *http.Request) (*http.Response, error) {
	cloned, err := cloneRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("can't clone http request: %w", err)
	}

	resp, err := c.httpClient.Do(cloned)
	if err != nil {
		return nil, &transientError{cause: err}
	}

	if resp.StatusCode/100 == 2 {
		return resp, nil
	}

	terr := &transientError{status: resp.StatusCode, retryAfter: resp.Header.Get("Retry-After")}
	drain(resp)

	if isRetryableStatus(resp.StatusCode) {
		return nil, terr
	}

	return nil, fmt.Errorf("%w: status %d", ErrBadRequest, resp.StatusCode)
}

// waitTurn claims the class's next free slot and blocks until it arrives.
// The slot is reserved while the lock is held, so concurrent callers of one
// class get successive slots instead of racing for the same one.
func (c *Client) waitTurn(ctx context.Context, class Class) error {
	c.mu.Lock()
	gap := c.intervals[class]
	if gap == 0 {
		gap = c.defaultInterval
	}
	slot := c.lastSlot[class].Add(gap)
	if now := time.Now(); slot.Before(now) {
		slot = now
	}
	c.lastSlot[class] = slot
	c.mu.Unlock()

	if wait := time.Until(slot); wait > 0 {
		return c.sleeper.Sleep(ctx, wait)
	}

	return nil
}

func (c *Client) resetClock(class Class) {
	c.mu.Lock()
	delete(c.lastSlot, class)
	c.mu.Unlock()
}

func (c *Client) backoffWait(err error, attempt int) time.Duration {
	if terr, ok := err.(*transientError); ok && terr.retryAfter != "" {
		if secs, convErr := strconv.ParseFloat(terr.retryAfter, 64); convErr == nil {
			return time.Duration(secs * float64(time.Second))
		}
	}

	return c.baseWait << attempt
}

// transientError is a retryable outcome: a network failure or a
// rate-limit/server-error status.
type transientError struct {
	status     int
	retryAfter string
	cause      error
}

func (e *transientError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("transient http failure: %v", e.cause)
	}
	return fmt.Sprintf("transient http failure: status %d", e.status)
}

func (e *transientError) Unwrap() error {
	return e.cause
}

func isTransient(err error) bool {
	_, ok := err.(*transientError)
	return ok
}

func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		520, 521, 522, 523, 524: // Cloudflare origin errors
		return true
	}
	return false
}

// cloneRequest builds a fresh request for a retry attempt, rewinding the body
// through GetBody when the request has one.
func cloneRequest(ctx context.Context, req *http.Request) (*http.Request, error) {
	cloned := req.Clone(ctx)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		cloned.Body = body
	}

	return cloned, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

type systemSleeper struct{}

// Sleep sleeps for d or until ctx is done.
func (systemSleeper) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// WithSleeper sets Client's custom Sleeper.
func WithSleeper(s Sleeper) Option {
	return func(c *Client) {
		c.sleeper = s
	}
}

// WithJitter sets Client's custom jitter source.
func WithJitter(jitter func() time.Duration) Option {
	return func(c *Client) {
		c.jitter = jitter
	}
}

// WithMaxAttempts sets the number of throttled attempts before the final one.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		c.maxAttempts = n
	}
}

// WithBackoff sets the backoff timings.
func WithBackoff(base, penaltyBase, penaltyCap, finalWait time.Duration) Option {
	return func(c *Client) {
		c.baseWait = base
		c.penaltyBase = penaltyBase
		c.penaltyCap = penaltyCap
		c.finalWait = finalWait
	}
}
