// internal/adapters/restclient/client.go
package restclient

import (
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"hotel_weather/internal/adapters/observability"
	"hotel_weather/internal/domain"
)

const maxBody = 8 << 20

var ErrCircuitOpen = errors.New("circuit breaker open")

// breakerError reports a call rejected by an open or half-open breaker.
// It matches both ErrCircuitOpen and the gobreaker cause.
type breakerError struct {
	service string
	err     error
}

func (e *breakerError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.service, ErrCircuitOpen, e.err)
}

func (e *breakerError) Unwrap() []error { return []error{ErrCircuitOpen, e.err} }
func (e *breakerError) Temporary() bool { return true }

// StatusError is a non-success HTTP status that is not mapped to a sentinel.
type StatusError struct {
	Code       int
	Body       string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("remote %d", e.Code)
	}
	return fmt.Sprintf("bad status %d: %s", e.Code, e.Body)
}

// Temporary reports 429 and 5xx as worth retrying.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// RetryError is returned once a transient failure outlived every retry.
type RetryError struct {
	Attempts int
	Err      error
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("giving up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RetryError) Unwrap() error   { return e.Err }
func (e *RetryError) Temporary() bool { return true }

type Options struct {
	HTTPClient *http.Client  // defaults to a client with Timeout
	Timeout    time.Duration // per attempt, retries get a fresh one
	Limiter    *rate.Limiter // taken before every attempt, retries included; may be shared
	MaxRetries int           // retries after the first attempt; negative disables retries
	UserAgent  string
}

// NewPacer returns a limiter spacing permits by at least 1/rps.
// rps <= 0 means no pacing.
func NewPacer(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}

// Budget is the longest a Get can take with these options when every
// attempt times out and backoff is at its maximum. Retry-After is not counted.
func Budget(timeout time.Duration, maxRetries int) time.Duration {
	if maxRetries < 0 {
		maxRetries = 0
	}
	total := time.Duration(maxRetries+1) * timeout
	for i := 0; i < maxRetries; i++ {
		total += time.Duration(1<<i) * 300 * time.Millisecond
	}
	return total
}

// Client performs GETs against one JSON service with rate limiting,
// retries, and a circuit breaker.
type Client struct {
	service    string
	hc         *http.Client
	rl         *rate.Limiter
	timeout    time.Duration
	cb         *gobreaker.CircuitBreaker
	maxRetries int
	userAgent  string
}

func New(service string, o Options) *Client {
	hc := o.HTTPClient
	if hc == nil {
		if o.Timeout <= 0 {
			o.Timeout = 20 * time.Second
		}
		hc = &http.Client{Timeout: o.Timeout}
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.UserAgent == "" {
		o.UserAgent = "hotel-weather/1.0"
	}
	c := &Client{
		service:    service,
		hc:         hc,
		rl:         o.Limiter,
		timeout:    o.Timeout,
		maxRetries: o.MaxRetries,
		userAgent:  o.UserAgent,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        service,
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     30 * time.Second,
			// a request cancelled by its caller says nothing about the service
			IsSuccessful: func(err error) bool { return err == nil || errors.Is(err, context.Canceled) },
		}),
	}
	return c
}

type attempt struct {
	status int
	body   []byte
}

// Get fetches url and returns the response body. endpoint labels metrics.
// 404/401/403 map to domain sentinels; 429 and 5xx are retried with
// exponential backoff, honoring Retry-After when provided.
func (c *Client) Get(ctx context.Context, endpoint, url string) ([]byte, error) {
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if c.rl != nil {
			if err := c.rl.Wait(ctx); err != nil {
				return nil, err
			}
		}

		start := time.Now()
		a, err := c.try(ctx, url)
		status := 0
		if a != nil {
			status = a.status
		}
		observability.ObserveExternal(c.service, endpoint, status, time.Since(start))

		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return nil, &breakerError{service: c.service, err: err}
			}
			lastErr = err
			wait := backoff(i)
			var se *StatusError
			if errors.As(err, &se) && se.RetryAfter > 0 {
				wait = se.RetryAfter
			}
			if i < c.maxRetries && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, &RetryError{Attempts: i + 1, Err: lastErr}
		}

		switch a.status {
		case http.StatusOK, http.StatusCreated, http.StatusAccepted, http.StatusNonAuthoritativeInfo:
			return a.body, nil
		case http.StatusNoContent:
			return nil, nil
		case http.StatusNotFound:
			return nil, domain.ErrNotFound
		case http.StatusUnauthorized:
			return nil, domain.ErrUnauthorized
		case http.StatusForbidden:
			return nil, domain.ErrForbidden
		default:
			return nil, &StatusError{Code: a.status, Body: strings.TrimSpace(string(truncate(a.body, 4096)))}
		}
	}
	return nil, &RetryError{Attempts: c.maxRetries + 1, Err: lastErr}
}

// try runs one request through the breaker under its own deadline,
// so a stalled attempt leaves the caller's context usable for a retry.
func (c *Client) try(ctx context.Context, url string) (*attempt, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	res, err := c.cb.Execute(func() (interface{}, error) { return c.do(req) })
	a, _ := res.(*attempt)
	return a, err
}

// do performs one attempt. Only transient failures are returned as errors,
// so the breaker counts nothing else.
func (c *Client) do(req *http.Request) (*attempt, error) {
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return &attempt{status: resp.StatusCode}, err
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return &attempt{status: resp.StatusCode}, &StatusError{
			Code:       resp.StatusCode,
			RetryAfter: retryAfter(resp),
		}
	}
	return &attempt{status: resp.StatusCode, body: body}, nil
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential backoff delay with concurrency-safe jitter.
// i = retry attempt (0,1,2,...). Base doubles each attempt (200ms, 400ms, 800ms...),
// with up to +50% random jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
