package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Reliability defaults.
const (
	DefaultMinInterval   = 200 * time.Millisecond
	DefaultAttempts      = 3
	DefaultRetryInterval = time.Second
)

// TransportOptions configures a Transport.
type TransportOptions struct {
	// Catalog names the remote service in errors and logs.
	Catalog string
	// MinInterval is the minimum spacing between request starts.
	MinInterval time.Duration
	// Attempts is the total number of tries per request, including the first.
	Attempts int
	// RetryInterval is the fixed wait between tries. Zero means
	// DefaultRetryInterval.
	RetryInterval time.Duration
	// UserAgent is sent on requests that do not set their own.
	UserAgent string
}

// Transport is an http.RoundTripper that sends at most one request at a
// time, spaces request starts by a minimum interval and retries transient
// failures at a fixed interval. A request that fails every attempt returns
// *ErrUnavailable.
type Transport struct {
	next     http.RoundTripper
	catalog  string
	sem      *semaphore.Weighted
	limiter  *rate.Limiter
	attempts int
	interval time.Duration
	agent    string
	logger   *slog.Logger
}

// NewTransport wraps next. A nil next uses http.DefaultTransport.
func NewTransport(next http.RoundTripper, opts TransportOptions, logger *slog.Logger) *Transport {
	if next == nil {
		next = http.DefaultTransport
	}
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = DefaultRetryInterval
	}
	limit := rate.Inf
	if opts.MinInterval > 0 {
		limit = rate.Every(opts.MinInterval)
	}
	return &Transport{
		next:     next,
		catalog:  opts.Catalog,
		sem:      semaphore.NewWeighted(1),
		limiter:  rate.NewLimiter(limit, 1),
		attempts: opts.Attempts,
		interval: opts.RetryInterval,
		agent:    opts.UserAgent,
		logger:   logger.With(slog.String("component", "transport"), slog.String("catalog", opts.Catalog)),
	}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	var (
		resp       *http.Response
		retryAfter time.Duration
		attempt    int
	)

	backoff := retry.WithMaxRetries(uint64(t.attempts-1), retry.NewConstant(t.interval)) //nolint:gosec // attempts >= 1
	err := retry.Do(req.Context(), backoff, func(ctx context.Context) error {
		attempt++
		r, err := t.send(ctx, req)
		if err != nil {
			t.logRetry(req, attempt, err)
			return retry.RetryableError(err)
		}
		if !retryableStatus(r.StatusCode) {
			resp = r
			return nil
		}

		retryAfter = parseRetryAfter(r.Header.Get("Retry-After"))
		_, _ = io.Copy(io.Discard, io.LimitReader(r.Body, 64*1024))
		r.Body.Close() //nolint:errcheck
		cause := fmt.Errorf("unexpected status %d", r.StatusCode)
		if r.StatusCode == http.StatusTooManyRequests {
			cause = fmt.Errorf("rate limited by server")
		}
		t.logRetry(req, attempt, cause)
		return retry.RetryableError(cause)
	})
	if err != nil {
		return nil, &ErrUnavailable{Catalog: t.catalog, Cause: err, RetryAfter: retryAfter}
	}
	return resp, nil
}

// send performs one attempt while holding the single in-flight slot.
func (t *Transport) send(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := t.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer t.sem.Release(1)

	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	attemptReq := req.Clone(ctx)
	if req.Body != nil && req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		attemptReq.Body = body
	}
	if t.agent != "" && attemptReq.Header.Get("User-Agent") == "" {
		attemptReq.Header.Set("User-Agent", t.agent)
	}
	return t.next.RoundTrip(attemptReq)
}

func (t *Transport) logRetry(req *http.Request, attempt int, err error) {
	if attempt >= t.attempts {
		return
	}
	t.logger.Warn("catalog request failed, retrying",
		slog.String("method", req.Method),
		slog.String("url", req.URL.Redacted()),
		slog.Int("attempt", attempt),
		slog.Int("max_attempts", t.attempts),
		slog.String("error", err.Error()))
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		return max(0, time.Until(at))
	}
	return 0
}
