package search

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jumak-kr/jumakweb/internal/backend"
)

type fakeSearcher struct {
	mu      sync.Mutex
	calls   int32
	queries []string
	respond func(query string) (*backend.SearchResponse, error)
}

func (f *fakeSearcher) Search(ctx context.Context, query string) (*backend.SearchResponse, error) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	if f.respond != nil {
		return f.respond(query)
	}
	id := 1
	return &backend.SearchResponse{
		Candidates: []backend.SearchCandidate{{ID: &id, Name: query + " 매치", Score: 10}},
	}, nil
}

func (f *fakeSearcher) callCount() int32 { return atomic.LoadInt32(&f.calls) }

func TestDebounceCollapsesRapidKeystrokes(t *testing.T) {
	fs := &fakeSearcher{}
	c := NewController(fs, 40*time.Millisecond, zerolog.Nop())

	// Rapid keystrokes inside one window: exactly one call, for the last text.
	c.Input("막")
	c.Input("막걸")
	c.Input("막걸리")
	time.Sleep(10 * time.Millisecond)
	c.Input("막걸리 ")

	require.Eventually(t, func() bool { return fs.callCount() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.EqualValues(t, 1, fs.callCount())

	fs.mu.Lock()
	defer fs.mu.Unlock()
	assert.Equal(t, []string{"막걸리 "}, fs.queries)
}

func TestShortQueryClosesDropdownWithoutCall(t *testing.T) {
	fs := &fakeSearcher{}
	c := NewController(fs, 20*time.Millisecond, zerolog.Nop())

	c.Input("소주")
	require.Eventually(t, func() bool { return c.Snapshot().Open }, time.Second, 5*time.Millisecond)

	c.Input("소")
	st := c.Snapshot()
	assert.False(t, st.Open)
	assert.Empty(t, st.Candidates)

	time.Sleep(60 * time.Millisecond)
	assert.EqualValues(t, 1, fs.callCount(), "length <= 1 must not dispatch")
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	slowDone := make(chan struct{})
	fs := &fakeSearcher{}
	fs.respond = func(query string) (*backend.SearchResponse, error) {
		if query == "느린검색" {
			<-slowDone
		}
		return &backend.SearchResponse{
			Candidates: []backend.SearchCandidate{{Name: query}},
		}, nil
	}
	c := NewController(fs, 10*time.Millisecond, zerolog.Nop())

	c.Input("느린검색")
	require.Eventually(t, func() bool { return fs.callCount() == 1 }, time.Second, time.Millisecond)

	// A newer query completes first.
	c.Input("빠른검색")
	require.Eventually(t, func() bool {
		st := c.Snapshot()
		return st.Open && len(st.Candidates) == 1 && st.Candidates[0].Name == "빠른검색"
	}, time.Second, time.Millisecond)

	// The slow response lands afterwards and must not overwrite the dropdown.
	close(slowDone)
	time.Sleep(50 * time.Millisecond)
	st := c.Snapshot()
	require.Len(t, st.Candidates, 1)
	assert.Equal(t, "빠른검색", st.Candidates[0].Name)
}

func TestBoundaryKeystrokeCannotResurrectOldQuery(t *testing.T) {
	// A keystroke landing right at the window boundary cannot stop a timer
	// that already fired; the pending callback runs after the new keystroke
	// bumped the generation. The dispatch must still carry the generation of
	// the keystroke that armed it, so the old query's late response is
	// discarded instead of overwriting the newer dropdown.
	oldDone := make(chan struct{})
	fs := &fakeSearcher{}
	fs.respond = func(query string) (*backend.SearchResponse, error) {
		if query == "묵은검색" {
			<-oldDone
		}
		return &backend.SearchResponse{
			Candidates: []backend.SearchCandidate{{Name: query}},
		}, nil
	}
	c := NewController(fs, time.Millisecond, zerolog.Nop())

	c.Input("묵은검색")
	// Sleep exactly one window so the timer has fired (or is about to) when
	// the next keystroke arrives.
	time.Sleep(time.Millisecond)
	c.Input("새검색")

	require.Eventually(t, func() bool {
		st := c.Snapshot()
		return st.Open && len(st.Candidates) == 1 && st.Candidates[0].Name == "새검색"
	}, time.Second, time.Millisecond)

	close(oldDone)
	time.Sleep(50 * time.Millisecond)
	st := c.Snapshot()
	require.Len(t, st.Candidates, 1)
	assert.Equal(t, "새검색", st.Candidates[0].Name)
}

func TestSearchErrorKeepsLastKnownDropdown(t *testing.T) {
	var fail atomic.Bool
	fs := &fakeSearcher{}
	fs.respond = func(query string) (*backend.SearchResponse, error) {
		if fail.Load() {
			return nil, assert.AnError
		}
		return &backend.SearchResponse{Candidates: []backend.SearchCandidate{{Name: query}}}, nil
	}
	c := NewController(fs, 10*time.Millisecond, zerolog.Nop())

	c.Input("안동소주")
	require.Eventually(t, func() bool { return c.Snapshot().Open }, time.Second, time.Millisecond)

	fail.Store(true)
	c.Input("안동소주 프리미엄")
	require.Eventually(t, func() bool { return fs.callCount() == 2 }, time.Second, time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	st := c.Snapshot()
	assert.True(t, st.Open)
	require.Len(t, st.Candidates, 1)
	assert.Equal(t, "안동소주", st.Candidates[0].Name)
}

func TestSelectClosesDropdownAndBindsFields(t *testing.T) {
	fs := &fakeSearcher{}
	c := NewController(fs, 10*time.Millisecond, zerolog.Nop())

	c.Input("백세주")
	require.Eventually(t, func() bool { return c.Snapshot().Open }, time.Second, time.Millisecond)

	id := 42
	sel := c.Select(backend.SearchCandidate{ID: &id, Name: "백세주", ImageURL: "http://img/b.jpg"})
	assert.Equal(t, "백세주", sel.Name)
	require.NotNil(t, sel.ID)
	assert.Equal(t, 42, *sel.ID)

	st := c.Snapshot()
	assert.False(t, st.Open)
	assert.Equal(t, "백세주", st.Query)
	require.NotNil(t, st.Selection)
	assert.Equal(t, "http://img/b.jpg", st.Selection.ImageURL)
}
