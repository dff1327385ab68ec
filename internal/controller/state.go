// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package controller

import (
	"github.com/pdiddy/tmsearch/internal/search"
	"github.com/pdiddy/tmsearch/pkg/types"
)

// Status is the phase of the most recent search.
type Status int

const (
	Idle Status = iota
	Loading
	Success
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is a read-only snapshot of the controller. Result is nil until a
// search succeeds, and again after a failure unless stale results are kept.
type State struct {
	Parameters types.SearchParameters
	Status     Status
	Result     *types.SearchResult
	Err        error

	// Generation identifies the fetch the snapshot belongs to.
	Generation uint64

	// Rows is the page size used for TotalPages.
	Rows int
}

// TotalPages returns the page count of the current result, 0 when unknown.
func (s State) TotalPages() int {
	if s.Result == nil {
		return 0
	}
	return s.Result.TotalPages(s.Rows)
}

// HasNextPage reports whether a page after the current one exists.
func (s State) HasNextPage() bool {
	return s.Result != nil && s.Parameters.Page < s.TotalPages()
}

// HasPrevPage reports whether a page before the current one exists.
func (s State) HasPrevPage() bool {
	return s.Parameters.Page > 1
}

// ErrorMessage returns the user-facing text for Err, or "".
func (s State) ErrorMessage() string {
	return search.Message(s.Err)
}
