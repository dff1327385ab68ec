// Package navigation provides an in-memory address bar: a stack of query
// strings with back/forward movement, standing in for browser history.
package navigation

import "sync"

// SearchPath is the path the query strings belong to.
const SearchPath = "/search/trademarks"

// History is a browser-like history of query strings. The zero value is not
// usable; call NewHistory.
type History struct {
	mu      sync.Mutex
	entries []string
	index   int
}

// NewHistory returns a history whose current entry is initial.
func NewHistory(initial string) *History {
	return &History{entries: []string{initial}}
}

// CurrentQuery returns the query string of the current entry.
func (h *History) CurrentQuery() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.index]
}

// PushQuery records q as a new entry and drops any forward entries. Pushing
// the current query again is a no-op.
func (h *History) PushQuery(q string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.entries[h.index] == q {
		return
	}
	h.entries = append(h.entries[:h.index+1], q)
	h.index++
}

// Back moves to the previous entry and returns it. ok is false at the start.
func (h *History) Back() (q string, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.index == 0 {
		return h.entries[0], false
	}
	h.index--
	return h.entries[h.index], true
}

// Forward moves to the next entry and returns it. ok is false at the end.
func (h *History) Forward() (q string, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.index == len(h.entries)-1 {
		return h.entries[h.index], false
	}
	h.index++
	return h.entries[h.index], true
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// URL renders the current entry as a path with query.
func (h *History) URL() string {
	q := h.CurrentQuery()
	if q == "" {
		return SearchPath
	}
	return SearchPath + "?" + q
}
