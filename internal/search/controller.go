// Package search implements the autocomplete controller: trailing-debounced
// query dispatch with stale-response suppression, feeding a ranked candidate
// dropdown.
package search

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/jumak-kr/jumakweb/internal/backend"
)

// DefaultDebounce is the trailing-debounce window applied to keystrokes.
const DefaultDebounce = 300 * time.Millisecond

// Searcher is the fuzzy-search dependency, satisfied by backend.Client.
type Searcher interface {
	Search(ctx context.Context, query string) (*backend.SearchResponse, error)
}

// Selection is the consuming form's bound fields after a candidate click.
type Selection struct {
	Name     string
	ID       *int
	ImageURL string
}

// State is a point-in-time snapshot of the controller for rendering.
type State struct {
	Query      string
	Open       bool
	Candidates []backend.SearchCandidate
	Selection  *Selection
}

// Controller drives one search input field. Each keystroke restarts the
// debounce timer; queries of length <= 1 close the dropdown without a call.
// Every dispatched request carries a generation number and a response is
// dropped unless the generation is still current, so only the most recent
// query's result is ever shown even when responses resolve out of order.
type Controller struct {
	searcher Searcher
	log      zerolog.Logger
	window   time.Duration

	mu         sync.Mutex
	timer      *time.Timer
	gen        uint64
	query      string
	open       bool
	candidates []backend.SearchCandidate
	selection  *Selection
}

// NewController builds a controller with the given debounce window;
// window <= 0 selects DefaultDebounce.
func NewController(s Searcher, window time.Duration, log zerolog.Logger) *Controller {
	if window <= 0 {
		window = DefaultDebounce
	}
	return &Controller{searcher: s, window: window, log: log}
}

// Input records a keystroke's resulting query text.
func (c *Controller) Input(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.query = query
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}

	if utf8.RuneCountInString(query) <= 1 {
		c.open = false
		c.candidates = nil
		return
	}

	// The generation is bound here, to the keystroke arming the timer. A
	// timer that already fired when a newer keystroke lands cannot be
	// stopped; its callback must carry the old generation so both checks in
	// fire reject it.
	gen := c.gen
	c.timer = time.AfterFunc(c.window, func() { c.fire(query, gen) })
}

func (c *Controller) fire(query string, gen uint64) {
	c.mu.Lock()
	if gen != c.gen {
		// Superseded between the timer firing and this callback running.
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	resp, err := c.searcher.Search(context.Background(), query)
	if err != nil {
		// Fails silently: the dropdown keeps its last-known contents.
		c.log.Error().Err(err).Str("query", query).Msg("autocomplete search failed")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		// A newer keystroke superseded this request.
		return
	}
	c.candidates = resp.Candidates
	c.open = len(c.candidates) > 0
}

// Select applies a candidate click: fills the bound fields and closes the
// dropdown. No further validation happens here.
func (c *Controller) Select(cand backend.SearchCandidate) Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection = &Selection{Name: cand.Name, ID: cand.ID, ImageURL: cand.ImageURL}
	c.query = cand.Name
	c.open = false
	return *c.selection
}

// Close cancels any pending dispatch and closes the dropdown.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.open = false
}

// Snapshot returns the current render state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := State{
		Query:      c.query,
		Open:       c.open,
		Candidates: append([]backend.SearchCandidate(nil), c.candidates...),
	}
	if c.selection != nil {
		sel := *c.selection
		st.Selection = &sel
	}
	return st
}
