// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
	"unicode/utf8"
)

// NetworkError is a transport failure: DNS, refused connection, reset.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("search request failed: %v", e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// RemoteError is a non-2xx answer from the search endpoint.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("search endpoint returned HTTP %d: %s", e.Status, e.Message)
}

// ParseError means the response body did not have the expected shape.
type ParseError struct {
	RawBody string
	Err     error
}

const maxRawBodyInError = 200

func (e *ParseError) Error() string {
	body := truncate(e.RawBody, maxRawBodyInError)
	if e.Err != nil {
		return fmt.Sprintf("parsing search response: %v (body %q)", e.Err, body)
	}
	return fmt.Sprintf("parsing search response (body %q)", body)
}

func (e *ParseError) Unwrap() error { return e.Err }

// truncate cuts s to max runes and appends "...".
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "..."
}

// TimeoutError means the search did not complete before its deadline.
type TimeoutError struct {
	After time.Duration
}

func (e *TimeoutError) Error() string {
	if e.After > 0 {
		return fmt.Sprintf("search timed out after %s", e.After)
	}
	return "search timed out"
}

// Is lets errors.Is(err, context.DeadlineExceeded) hold for timeouts.
func (e *TimeoutError) Is(target error) bool { return target == context.DeadlineExceeded }

// classifyTransport maps an error from the HTTP round trip onto the taxonomy.
func classifyTransport(err error, timeout time.Duration) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{After: timeout}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{After: timeout}
	}
	return &NetworkError{Err: err}
}

// Message returns text suitable for showing to the person searching.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var (
		timeoutErr *TimeoutError
		remoteErr  *RemoteError
		parseErr   *ParseError
		netErr     *NetworkError
	)
	switch {
	case errors.As(err, &timeoutErr):
		return "The search took too long to respond. Please try again."
	case errors.As(err, &remoteErr):
		return fmt.Sprintf("Failed to fetch search results (HTTP %d). Please try again.", remoteErr.Status)
	case errors.As(err, &parseErr):
		return "The search service returned an unexpected response."
	case errors.As(err, &netErr):
		return "Could not reach the search service. Check your connection and try again."
	default:
		return "Failed to fetch search results. Please try again."
	}
}
