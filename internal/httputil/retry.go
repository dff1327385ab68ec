// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the search client.
package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// RetryBaseDelay controls the base duration for backoff on throttled
// responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 500 * time.Millisecond

// MaxAttempts is the hard ceiling on attempts per request, whatever the
// caller asks for.
const MaxAttempts = 2

// Retryable reports whether a status code is worth a second attempt.
func Retryable(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable
}

// DoWithRetry executes an HTTP request and retries on HTTP 429 or 503 with
// exponential backoff starting at RetryBaseDelay. A Retry-After header in
// seconds overrides the computed delay when it is shorter than the context
// deadline allows.
//
// attempts is clamped to [1, MaxAttempts]. Request bodies are rewound through
// req.GetBody, so requests built with http.NewRequestWithContext over a
// bytes.Reader can be retried. If the context is cancelled during a backoff
// wait the function returns ctx.Err(). After exhausting attempts the last
// throttled response is returned so the caller can inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, attempts int) (*http.Response, error) {
	if attempts < 1 {
		attempts = 1
	}
	if attempts > MaxAttempts {
		attempts = MaxAttempts
	}

	for attempt := 0; ; attempt++ {
		r := req.Clone(ctx)
		if attempt > 0 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("rewinding request body: %w", err)
			}
			r.Body = body
		}

		resp, err := client.Do(r)
		if err != nil {
			return nil, err
		}

		if !Retryable(resp.StatusCode) || attempt+1 >= attempts {
			return resp, nil
		}

		// Drain and close the body before retrying.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := RetryBaseDelay << attempt
		if s, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && s >= 0 {
			backoff = time.Duration(s) * time.Second
		}
		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < backoff {
			// Waiting would outlive the caller; hand back the throttled response.
			return retryResponse(resp), nil
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// retryResponse returns resp with an empty body, for use after the original
// body has been drained.
func retryResponse(resp *http.Response) *http.Response {
	resp.Body = http.NoBody
	return resp
}
