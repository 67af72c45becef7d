package client

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// RequestIDHeader carries a unique id for each outgoing request.
const RequestIDHeader = "X-Request-Id"

type requestIDTransport struct {
	next http.RoundTripper
}

func (t *requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(RequestIDHeader) == "" {
		req = req.Clone(req.Context())
		req.Header.Set(RequestIDHeader, uuid.NewString())
	}
	return t.next.RoundTrip(req)
}

type noCacheKey struct{}

// WithNoCache marks requests made with ctx to bypass the HTTP cache.
func WithNoCache(ctx context.Context) context.Context {
	return context.WithValue(ctx, noCacheKey{}, true)
}

func noCache(ctx context.Context) bool {
	v, _ := ctx.Value(noCacheKey{}).(bool)
	return v
}
