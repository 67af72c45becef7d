package client

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/oauth2"

	"github.com/wolfeidau/recruitify/internal/logger"
)

const maxResponseSize = 10 << 20

// Config holds common client configuration
type Config struct {
	ServerURL string
	Timeout   time.Duration

	// CacheDir enables a disk backed HTTP cache; empty uses an in-memory cache.
	CacheDir string

	// MaxRetries bounds retries of transient failures, 0 disables retrying.
	MaxRetries    int
	RetryInterval time.Duration
}

// DefaultConfig returns a default client configuration
func DefaultConfig() Config {
	return Config{
		ServerURL:     "https://localhost:3000",
		Timeout:       30 * time.Second,
		MaxRetries:    2,
		RetryInterval: 250 * time.Millisecond,
	}
}

// Client talks to the organizations and recruitment cycles endpoints.
type Client struct {
	baseURL       *url.URL
	httpClient    *http.Client
	maxRetries    int
	retryInterval time.Duration
}

// New creates a client for cfg.ServerURL.
// When tokens is not nil every request carries its bearer token.
func New(cfg Config, tokens oauth2.TokenSource, log zerolog.Logger) (*Client, error) {
	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("server URL is required")
	}

	baseURL, err := url.Parse(strings.TrimRight(cfg.ServerURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if baseURL.Scheme != "http" && baseURL.Scheme != "https" {
		return nil, fmt.Errorf("invalid server URL %q: scheme must be http or https", cfg.ServerURL)
	}

	httpClient, err := NewHTTPClient(cfg, tokens, log)
	if err != nil {
		return nil, err
	}

	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = DefaultConfig().RetryInterval
	}

	return &Client{
		baseURL:       baseURL,
		httpClient:    httpClient,
		maxRetries:    cfg.MaxRetries,
		retryInterval: cfg.RetryInterval,
	}, nil
}

// NewHTTPClient builds the HTTP client used for provider requests.
//
// From the outside in: tracing, request logging, bearer token, request id,
// HTTP cache, gzip.
func NewHTTPClient(cfg Config, tokens oauth2.TokenSource, log zerolog.Logger) (*http.Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	var transport http.RoundTripper = gzhttp.Transport(http.DefaultTransport)
	transport = NewCachingTransport(cfg.CacheDir, transport)
	transport = &requestIDTransport{next: transport}

	if tokens != nil {
		transport = &oauth2.Transport{Source: tokens, Base: transport}
	}

	transport = logger.NewRequestLogger(log, transport)
	transport = otelhttp.NewTransport(transport)

	return &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
		Jar:       jar,
	}, nil
}
