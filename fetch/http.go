package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultMaxBodySize = 8 << 20 // 8 MiB; schema documents are small
	defaultMaxRetries  = 3
	defaultBackoff     = time.Second
	defaultMaxBackoff  = 30 * time.Second
)

// HTTP fetches schema text over HTTP(S) with retries and a response size
// limit.
type HTTP struct {
	client      *http.Client
	maxBodySize int64
	logger      *slog.Logger
}

// HTTPOption configures an HTTP fetcher.
type HTTPOption func(*httpConfig)

type httpConfig struct {
	timeout        time.Duration
	maxBodySize    int64
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	transport      http.RoundTripper
	logger         *slog.Logger
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(c *httpConfig) { c.timeout = d }
}

// WithMaxBodySize caps the accepted response body size in bytes.
func WithMaxBodySize(n int64) HTTPOption {
	return func(c *httpConfig) { c.maxBodySize = n }
}

// WithMaxRetries sets how many times transient failures are retried.
func WithMaxRetries(n int) HTTPOption {
	return func(c *httpConfig) { c.maxRetries = n }
}

// WithTransport replaces the underlying round tripper. Retries still wrap
// it.
func WithTransport(rt http.RoundTripper) HTTPOption {
	return func(c *httpConfig) { c.transport = rt }
}

// WithHTTPLogger sets the logger used for fetch diagnostics.
func WithHTTPLogger(l *slog.Logger) HTTPOption {
	return func(c *httpConfig) { c.logger = l }
}

// NewHTTP creates an HTTP fetcher.
func NewHTTP(opts ...HTTPOption) *HTTP {
	cfg := &httpConfig{
		timeout:        defaultTimeout,
		maxBodySize:    defaultMaxBodySize,
		maxRetries:     defaultMaxRetries,
		initialBackoff: defaultBackoff,
		maxBackoff:     defaultMaxBackoff,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &HTTP{
		client: &http.Client{
			Timeout: cfg.timeout,
			Transport: &retryTransport{
				base:           cfg.transport,
				maxRetries:     cfg.maxRetries,
				initialBackoff: cfg.initialBackoff,
				maxBackoff:     cfg.maxBackoff,
			},
		},
		maxBodySize: cfg.maxBodySize,
		logger:      logger,
	}
}

// Fetch implements Fetcher. A 404 maps to NotFoundError, other non-2xx
// statuses to StatusError; a 204 or empty body yields an empty string.
func (h *HTTP) Fetch(ctx context.Context, uri string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return "", fmt.Errorf("building request for %s: %w", uri, err)
	}
	req.Header.Set("Accept", "application/json, */*")

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", uri, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			h.logger.Warn("failed to close response body", "uri", uri, "error", cerr)
		}
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", &NotFoundError{URI: uri}
	case resp.StatusCode == http.StatusNoContent:
		return "", nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return "", &StatusError{URI: uri, Status: resp.Status, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(newLimitedReader(resp.Body, h.maxBodySize))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", uri, err)
	}

	h.logger.Debug("fetched schema",
		"uri", uri,
		"bytes", len(body),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return string(body), nil
}
