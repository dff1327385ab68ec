// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package controller owns the canonical search parameters, keeps them in
// step with the address bar, and runs searches when they change.
//
// The address bar is reached only through the Navigator port and only the
// controller writes to it. Every fetch carries a generation number and the
// parameter snapshot it was issued for; a response is applied only when both
// still match, so a slow response can never overwrite a newer one.
package controller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/tmsearch/internal/querystate"
	"github.com/pdiddy/tmsearch/internal/search"
	"github.com/pdiddy/tmsearch/pkg/types"
)

const defaultFetchTimeout = 10 * time.Second

// Navigator is the address bar: it reports the current query string and
// records new ones.
type Navigator interface {
	CurrentQuery() string
	PushQuery(q string)
}

// Searcher runs one search. *search.Client implements it.
type Searcher interface {
	Search(ctx context.Context, p types.SearchParameters) (types.SearchResult, error)
}

// Options configures a Controller.
type Options struct {
	Config types.ControllerConfig

	// Rows is the page size the searcher requests; used for page counts.
	Rows int

	Log zerolog.Logger
}

// Controller is the single writer of search state. It is safe for
// concurrent use.
type Controller struct {
	nav      Navigator
	searcher Searcher
	cfg      types.ControllerConfig
	rows     int
	log      zerolog.Logger

	mu         sync.Mutex
	state      State
	generation uint64
	cancel     context.CancelFunc
	seq        uint64
	listeners  map[int]func(State)
	nextID     int

	// notifyMu orders listener calls; notified is the last seq delivered.
	notifyMu sync.Mutex
	notified uint64

	// inflight counts fetches not yet completed; idle is signalled on c.mu
	// when it drops to zero.
	inflight int
	idle     *sync.Cond
}

// New returns an idle controller whose parameters reflect the navigator's
// current query. Call Start to run the first search.
func New(nav Navigator, searcher Searcher, opts Options) *Controller {
	if opts.Config.FetchTimeout <= 0 {
		opts.Config.FetchTimeout = defaultFetchTimeout
	}
	if opts.Rows <= 0 {
		opts.Rows = types.DefaultRows
	}
	c := &Controller{
		nav:      nav,
		searcher: searcher,
		cfg:      opts.Config,
		rows:     opts.Rows,
		log:      opts.Log,
		state: State{
			Parameters: querystate.Decode(nav.CurrentQuery()),
			Status:     Idle,
			Rows:       opts.Rows,
		},
		listeners: make(map[int]func(State)),
	}
	c.idle = sync.NewCond(&c.mu)
	return c
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers fn to receive a snapshot after every transition. The
// returned function removes the subscription. Deliveries are serialized and
// a snapshot older than one already delivered is skipped. fn must not call
// back into the controller synchronously.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// Wait blocks until no fetch is in flight. It may be called while other
// goroutines keep editing; it then returns once the controller is idle.
func (c *Controller) Wait() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.inflight > 0 {
		c.idle.Wait()
	}
}

// Start runs the search described by the navigator's current query.
func (c *Controller) Start(ctx context.Context) {
	c.OnURLChange(ctx, c.nav.CurrentQuery())
}

// OnURLChange reacts to the address bar changing underneath the controller,
// for example on back/forward navigation. It fetches only when the decoded
// parameters differ from the ones already loaded or loading.
func (c *Controller) OnURLChange(ctx context.Context, raw string) bool {
	params := querystate.Decode(raw)

	c.mu.Lock()
	if c.state.Status != Idle && params.Equal(c.state.Parameters) {
		c.mu.Unlock()
		c.log.Debug().Str("query", raw).Msg("address unchanged, no fetch")
		return false
	}
	c.beginLocked(ctx, params)
	snap, seq := c.state, c.seq
	c.mu.Unlock()

	c.notify(snap, seq)
	return true
}

// OnUserEdit applies edits to the current parameters. Unless the edits moved
// the page, the page resets to 1. If the result differs from the current
// parameters, the new query is pushed to the navigator and a fetch starts,
// as one step under the lock. It reports whether anything changed.
func (c *Controller) OnUserEdit(ctx context.Context, edits ...Edit) bool {
	return c.edit(ctx, func(p *types.SearchParameters, _ State) bool {
		for _, e := range edits {
			e(p)
		}
		return true
	})
}

// OnQuerySubmit starts a new free-text search. Prior filter selections are
// cleared and the page returns to 1; the country is kept.
func (c *Controller) OnQuerySubmit(ctx context.Context, text string) bool {
	return c.edit(ctx, func(p *types.SearchParameters, _ State) bool {
		p.QueryText = text
		p.Filters = types.Filters{}
		p.Page = 1
		return true
	})
}

// NextPage moves one page forward. Once a result is known it refuses to go
// past the last page.
func (c *Controller) NextPage(ctx context.Context) bool {
	return c.edit(ctx, func(p *types.SearchParameters, st State) bool {
		if st.Result != nil && p.Page >= st.TotalPages() {
			return false
		}
		p.Page++
		return true
	})
}

// PrevPage moves one page back, never below 1.
func (c *Controller) PrevPage(ctx context.Context) bool {
	return c.edit(ctx, func(p *types.SearchParameters, _ State) bool {
		if p.Page <= 1 {
			return false
		}
		p.Page--
		return true
	})
}

// GoToPage jumps to page n, refusing pages outside [1, TotalPages] once a
// result is known.
func (c *Controller) GoToPage(ctx context.Context, n int) bool {
	return c.edit(ctx, func(p *types.SearchParameters, st State) bool {
		if n < 1 || (st.Result != nil && n > st.TotalPages()) {
			return false
		}
		p.Page = n
		return true
	})
}

// Retry fetches the current parameters again, for example after a failure.
// The address bar is not touched.
func (c *Controller) Retry(ctx context.Context) {
	c.mu.Lock()
	c.beginLocked(ctx, c.state.Parameters)
	snap, seq := c.state, c.seq
	c.mu.Unlock()
	c.notify(snap, seq)
}

// edit runs fn on a copy of the parameters and commits the outcome.
func (c *Controller) edit(ctx context.Context, fn func(p *types.SearchParameters, st State) bool) bool {
	c.mu.Lock()
	prev := c.state.Parameters
	next := prev.Clone()
	if !fn(&next, c.state) {
		c.mu.Unlock()
		return false
	}
	next = querystate.Normalize(next)
	if next.Equal(prev) && c.state.Status != Idle {
		c.mu.Unlock()
		return false
	}
	if next.Page == prev.Page {
		next.Page = types.DefaultPage
	}

	c.nav.PushQuery(querystate.Encode(next))
	c.beginLocked(ctx, next)
	snap, seq := c.state, c.seq
	c.mu.Unlock()

	c.notify(snap, seq)
	return true
}

// beginLocked switches to params, enters Loading and fires a tagged fetch.
// The previous fetch, if any, has its context cancelled; its response would
// be discarded anyway. c.mu must be held.
func (c *Controller) beginLocked(ctx context.Context, params types.SearchParameters) {
	if c.cancel != nil {
		c.cancel()
	}
	c.generation++
	gen := c.generation

	fetchCtx, cancel := context.WithTimeout(ctx, c.cfg.FetchTimeout)
	c.cancel = cancel

	c.seq++
	c.state = State{
		Parameters: params,
		Status:     Loading,
		Result:     c.state.Result,
		Generation: gen,
		Rows:       c.rows,
	}

	c.log.Debug().Uint64("generation", gen).Str("query", querystate.Encode(params)).Msg("fetch started")

	snapshot := params.Clone()
	c.inflight++
	go func() {
		defer c.settle()
		defer cancel()
		res, err := c.searcher.Search(fetchCtx, snapshot)
		if err != nil {
			var timeoutErr *search.TimeoutError
			if !errors.As(err, &timeoutErr) && errors.Is(fetchCtx.Err(), context.DeadlineExceeded) {
				err = &search.TimeoutError{After: c.cfg.FetchTimeout}
			}
		}
		c.complete(gen, snapshot, res, err)
	}()
}

// complete applies a fetch outcome if it is still the current one.
func (c *Controller) complete(gen uint64, params types.SearchParameters, res types.SearchResult, err error) {
	c.mu.Lock()
	if gen != c.generation || !params.Equal(c.state.Parameters) {
		current := c.generation
		c.mu.Unlock()
		c.log.Debug().Uint64("generation", gen).Uint64("current", current).
			Bool("canceled", search.IsCanceled(err)).Msg("discarding stale response")
		return
	}

	next := State{
		Parameters: params,
		Generation: gen,
		Rows:       c.rows,
	}
	if err != nil {
		next.Status = Failed
		next.Err = err
		if c.cfg.KeepStaleResult {
			next.Result = c.state.Result
		}
		c.log.Warn().Err(err).Uint64("generation", gen).Msg("search failed")
	} else {
		next.Status = Success
		next.Result = &res
		c.log.Debug().Uint64("generation", gen).Int("total", res.TotalCount).Int("items", len(res.Items)).Msg("search succeeded")
	}
	c.seq++
	c.state = next
	seq := c.seq
	c.mu.Unlock()

	c.notify(next, seq)
}

// settle marks one fetch as finished and wakes Wait when none remain.
func (c *Controller) settle() {
	c.mu.Lock()
	c.inflight--
	if c.inflight == 0 {
		c.idle.Broadcast()
	}
	c.mu.Unlock()
}

func (c *Controller) notify(s State, seq uint64) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	if seq <= c.notified {
		return
	}
	c.notified = seq

	c.mu.Lock()
	fns := make([]func(State), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}
