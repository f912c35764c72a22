package catalog

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// HTTPOptions configures the HTTP client shared by a catalog adapter.
type HTTPOptions struct {
	Transport TransportOptions
	// Token supplies the bearer credential. Nil sends no Authorization header.
	Token oauth2.TokenSource
	// Cache stores successful GET responses. Nil disables caching.
	Cache Cache
	// Timeout bounds each call including retries. Zero means no timeout.
	Timeout time.Duration
	// Base is the innermost transport. Nil uses http.DefaultTransport.
	Base http.RoundTripper
}

// NewHTTPClient builds an *http.Client whose requests pass, outermost first,
// through the response cache, the throttling and retrying Transport and the
// bearer credential.
func NewHTTPClient(opts HTTPOptions, logger *slog.Logger) *http.Client {
	rt := opts.Base
	if rt == nil {
		rt = http.DefaultTransport
	}
	if opts.Token != nil {
		rt = &oauth2.Transport{Source: opts.Token, Base: rt}
	}
	rt = NewTransport(rt, opts.Transport, logger)
	if opts.Cache != nil {
		rt = NewCachingTransport(rt, opts.Cache, logger.With(slog.String("catalog", opts.Transport.Catalog)))
	}
	return &http.Client{Transport: rt, Timeout: opts.Timeout}
}
