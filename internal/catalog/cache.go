package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/sync/singleflight"
)

// maxCachedBody caps the size of a response body that is buffered.
const maxCachedBody = 8 * 1024 * 1024

// ErrBodyTooLarge is returned when a response body exceeds the buffering
// limit of a CachingTransport.
var ErrBodyTooLarge = errors.New("response body too large to buffer")

// Cache stores response bodies by request key.
type Cache interface {
	// Get returns the stored body for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores body under key.
	Set(ctx context.Context, key string, body []byte) error
}

// CacheKey identifies a request for caching: its method and full URL.
func CacheKey(req *http.Request) string {
	return req.Method + " " + req.URL.String()
}

// CachingTransport serves repeated GET requests from a Cache. Only 200
// responses are stored. Concurrent identical requests share one round trip.
type CachingTransport struct {
	next    http.RoundTripper
	cache   Cache
	group   singleflight.Group
	maxBody int64
	logger  *slog.Logger
}

// NewCachingTransport wraps next with cache. A nil next uses
// http.DefaultTransport.
func NewCachingTransport(next http.RoundTripper, cache Cache, logger *slog.Logger) *CachingTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &CachingTransport{
		next:    next,
		cache:   cache,
		maxBody: maxCachedBody,
		logger:  logger.With(slog.String("component", "response_cache")),
	}
}

type bufferedResponse struct {
	status int
	header http.Header
	body   []byte
}

// RoundTrip implements http.RoundTripper.
func (t *CachingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return t.next.RoundTrip(req)
	}

	ctx := req.Context()
	key := CacheKey(req)

	body, ok, err := t.cache.Get(ctx, key)
	if err != nil {
		t.logger.Warn("cache lookup failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	if ok {
		t.logger.Debug("cache hit", slog.String("key", key))
		return newResponse(req, &bufferedResponse{
			status: http.StatusOK,
			header: http.Header{"Content-Type": {"application/json"}},
			body:   body,
		}), nil
	}

	// The shared round trip outlives any single caller; each caller stops
	// waiting when its own context ends.
	ch := t.group.DoChan(key, func() (any, error) {
		return t.fetch(req.Clone(context.WithoutCancel(ctx)), key)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			t.logger.Debug("shared in-flight request", slog.String("key", key))
		}
		return newResponse(req, res.Val.(*bufferedResponse)), nil
	}
}

func (t *CachingTransport) fetch(req *http.Request, key string) (*bufferedResponse, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(resp.Body, t.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if int64(len(data)) > t.maxBody {
		return nil, fmt.Errorf("%s: %w (limit %d bytes)", req.URL.Redacted(), ErrBodyTooLarge, t.maxBody)
	}
	if resp.StatusCode == http.StatusOK {
		if err := t.cache.Set(req.Context(), key, data); err != nil {
			t.logger.Warn("cache store failed", slog.String("key", key), slog.String("error", err.Error()))
		}
	}
	return &bufferedResponse{status: resp.StatusCode, header: resp.Header.Clone(), body: data}, nil
}

func newResponse(req *http.Request, b *bufferedResponse) *http.Response {
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", b.status, http.StatusText(b.status)),
		StatusCode:    b.status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        b.header.Clone(),
		Body:          io.NopCloser(bytes.NewReader(b.body)),
		ContentLength: int64(len(b.body)),
		Request:       req,
	}
}
