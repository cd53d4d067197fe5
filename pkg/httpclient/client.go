package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// ErrRateLimited is returned when the outbound limiter cannot admit a
// request before the caller's deadline.
var ErrRateLimited = errors.New("outbound rate limit")

// Config holds HTTP client configuration.
type Config struct {
	// Timeout bounds a whole request including reading the body.
	Timeout         time.Duration
	MaxConnsPerHost int

	// RequestsPerSecond caps outbound calls with a token bucket. Zero disables it.
	RequestsPerSecond float64
	Burst             int
}

// DefaultConfig returns sensible defaults for calling a single upstream API.
func DefaultConfig() Config {
	return Config{
		Timeout:         5 * time.Second,
		MaxConnsPerHost: 50,
	}
}

// Middleware decorates a RoundTripper.
type Middleware func(http.RoundTripper) http.RoundTripper

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// NewTransport returns a pooled transport for calling a single upstream API.
func NewTransport(cfg Config) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   cfg.MaxConnsPerHost,
		MaxConnsPerHost:       cfg.MaxConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// New returns an http.Client bounded by cfg.Timeout. Requests pass through
// mws (the first one outermost), then the rate limiter when
// cfg.RequestsPerSecond is set, then base. A nil base uses NewTransport(cfg).
// Requests are never retried: a failed call is reported to the caller as is.
func New(cfg Config, base http.RoundTripper, mws ...Middleware) *http.Client {
	rt := base
	if rt == nil {
		rt = NewTransport(cfg)
	}
	if cfg.RequestsPerSecond > 0 {
		rt = RateLimit(cfg.RequestsPerSecond, cfg.Burst)(rt)
	}
	for i := len(mws) - 1; i >= 0; i-- {
		rt = mws[i](rt)
	}

	return &http.Client{
		Transport: rt,
		Timeout:   cfg.Timeout,
	}
}

// RateLimit admits requests through a token bucket. When the wait would
// outlast the request deadline it fails at once with ErrRateLimited wrapping
// context.DeadlineExceeded.
func RateLimit(rps float64, burst int) Middleware {
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			ctx := req.Context()
			if err := limiter.Wait(ctx); err != nil {
				closeRequestBody(req)
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				return nil, fmt.Errorf("%w: %w", ErrRateLimited, context.DeadlineExceeded)
			}
			return next.RoundTrip(req)
		})
	}
}

// closeRequestBody honours the RoundTripper contract on paths that never
// reach the underlying transport.
func closeRequestBody(req *http.Request) {
	if req.Body != nil {
		_ = req.Body.Close()
	}
}
