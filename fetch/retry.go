package fetch

import (
	"net/http"
	"strconv"
	"time"
)

// retryTransport wraps an http.RoundTripper with exponential backoff for
// transient failures. Schema hosts (schemastore and friends) rate-limit
// aggressively, so 429/502/503/504 and network errors are retried;
// Retry-After headers are honored.
type retryTransport struct {
	base           http.RoundTripper
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	// a body without GetBody can only be sent once
	canRetry := req.Body == nil || req.GetBody != nil

	var lastErr error
	for attempt := 0; ; attempt++ {
		attemptReq := req
		if canRetry {
			attemptReq = req.Clone(req.Context())
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, err
				}
				attemptReq.Body = body
			}
		}
		resp, err := base.RoundTrip(attemptReq)
		if err == nil && !retryableStatus(resp.StatusCode) {
			return resp, nil
		}
		if attempt >= t.maxRetries || !canRetry {
			if err != nil {
				return nil, err
			}
			return resp, nil
		}
		lastErr = err

		wait := t.backoff(attempt, resp)
		if resp != nil {
			_ = resp.Body.Close()
		}
		select {
		case <-req.Context().Done():
			if lastErr != nil {
				return nil, lastErr
			}
			return nil, req.Context().Err()
		case <-time.After(wait):
		}
	}
}

func (t *retryTransport) backoff(attempt int, resp *http.Response) time.Duration {
	if resp != nil {
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := strconv.Atoi(retryAfter); err == nil {
				return min(time.Duration(seconds)*time.Second, t.maxBackoff)
			}
			if at, err := http.ParseTime(retryAfter); err == nil {
				if d := time.Until(at); d > 0 {
					return min(d, t.maxBackoff)
				}
			}
		}
	}
	return min(t.initialBackoff*(1<<attempt), t.maxBackoff)
}

func retryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
