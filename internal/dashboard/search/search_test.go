package search

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ougirez/bizmap/internal/client"
	"github.com/ougirez/bizmap/internal/dashboard/state"
	"github.com/ougirez/bizmap/internal/domain"
	"github.com/ougirez/bizmap/internal/domain/dto"
)

type fakeAPI struct {
	mu      sync.Mutex
	queries []string
	delay   time.Duration
	results []*domain.Business
	err     error
}

func (f *fakeAPI) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func (f *fakeAPI) SearchBusinesses(_ context.Context, query string, _ int) ([]*domain.Business, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	delay := f.delay
	results := f.results
	err := f.err
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}
	if results != nil {
		return results, nil
	}
	return []*domain.Business{
		{BusinessID: "r-" + query, Name: strings.ToUpper(query)},
	}, nil
}

func (f *fakeAPI) ListBusinesses(context.Context, client.ListOptions) ([]*domain.Business, error) {
	return nil, nil
}

func (f *fakeAPI) GetBusiness(context.Context, string) (*domain.Business, error) {
	return nil, client.ErrNotFound
}

func (f *fakeAPI) LocationsSummary(context.Context) (*dto.LocationsSummaryResponse, error) {
	return &dto.LocationsSummaryResponse{}, nil
}

func (f *fakeAPI) BusinessTimeline(context.Context, string, string, domain.Granularity) (*dto.TimelineResponse, error) {
	return &dto.TimelineResponse{}, nil
}

func (f *fakeAPI) CityTimeline(context.Context, string, string, domain.Granularity) (*dto.TimelineResponse, error) {
	return &dto.TimelineResponse{}, nil
}

func (f *fakeAPI) CategoryTimeline(context.Context, string, domain.Granularity) (*dto.TimelineResponse, error) {
	return &dto.TimelineResponse{}, nil
}

func newTestView(api *fakeAPI) (*state.Store, *View) {
	store := state.NewStore()
	v := New(api, store)
	v.debounce = 30 * time.Millisecond
	return store, v
}

func TestDebounceCollapsesKeystrokes(t *testing.T) {
	api := &fakeAPI{}
	_, v := newTestView(api)

	v.SetQuery("j")
	v.SetQuery("jo")
	v.SetQuery("joe")

	require.Eventually(t, func() bool {
		return len(v.Results()) == 1
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"joe"}, api.recorded(), "only the settled query is sent")
	assert.Equal(t, "r-joe", v.Results()[0].BusinessID)
}

func TestEmptyQueryClearsSynchronously(t *testing.T) {
	api := &fakeAPI{}
	_, v := newTestView(api)

	v.SetQuery("joe")
	require.Eventually(t, func() bool {
		return len(v.Results()) == 1
	}, time.Second, 5*time.Millisecond)

	v.SetQuery("")
	assert.Empty(t, v.Results(), "clearing does not wait for the debounce")

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, []string{"joe"}, api.recorded(), "no request for the empty query")
}

func TestStaleResultsDiscarded(t *testing.T) {
	api := &fakeAPI{delay: 80 * time.Millisecond}
	_, v := newTestView(api)

	v.SetQuery("slow")
	// Let the slow request get in flight, then supersede it.
	time.Sleep(50 * time.Millisecond)
	api.mu.Lock()
	api.delay = 0
	api.mu.Unlock()
	v.SetQuery("fast")

	require.Eventually(t, func() bool {
		results := v.Results()
		return len(results) == 1 && results[0].BusinessID == "r-fast"
	}, time.Second, 5*time.Millisecond)

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, "r-fast", v.Results()[0].BusinessID, "slow response must not overwrite")
}

func TestClickSelectsAndCloses(t *testing.T) {
	api := &fakeAPI{}
	store, v := newTestView(api)

	v.SetQuery("joe")
	require.Eventually(t, func() bool {
		return len(v.Results()) == 1
	}, time.Second, 5*time.Millisecond)

	picked := v.Results()[0]
	v.Click(picked)

	snap := store.Get()
	require.NotNil(t, snap.Selected)
	assert.Equal(t, picked.BusinessID, snap.Selected.BusinessID)
	assert.Empty(t, v.Results(), "dropdown closes on pick")
}

func TestKeyboardNavigationWrapsAndConfirms(t *testing.T) {
	api := &fakeAPI{results: []*domain.Business{
		{BusinessID: "a", Name: "Alpha"},
		{BusinessID: "b", Name: "Bravo"},
		{BusinessID: "c", Name: "Charlie"},
	}}
	store, v := newTestView(api)

	v.SetQuery("bar")
	require.Eventually(t, func() bool {
		return len(v.Results()) == 3
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, -1, v.Highlight(), "nothing focused until a key is pressed")

	v.HighlightNext()
	assert.Equal(t, 0, v.Highlight())
	v.HighlightNext()
	assert.Equal(t, 1, v.Highlight())
	v.HighlightPrev()
	assert.Equal(t, 0, v.Highlight())
	v.HighlightPrev()
	assert.Equal(t, 2, v.Highlight(), "up from the top wraps to the last result")

	require.True(t, v.ConfirmHighlighted())
	snap := store.Get()
	require.NotNil(t, snap.Selected)
	assert.Equal(t, "c", snap.Selected.BusinessID)
	assert.Empty(t, v.Results(), "confirm closes the dropdown")
	assert.Equal(t, -1, v.Highlight())
}

func TestConfirmWithoutHighlightIsNoop(t *testing.T) {
	api := &fakeAPI{}
	store, v := newTestView(api)

	v.SetQuery("joe")
	require.Eventually(t, func() bool {
		return len(v.Results()) == 1
	}, time.Second, 5*time.Millisecond)

	assert.False(t, v.ConfirmHighlighted())
	assert.Nil(t, store.Get().Selected)
	assert.Len(t, v.Results(), 1, "the list stays open")
}

func TestCloseListDismissesDropdown(t *testing.T) {
	api := &fakeAPI{}
	store, v := newTestView(api)

	v.SetQuery("joe")
	require.Eventually(t, func() bool {
		return len(v.Results()) == 1
	}, time.Second, 5*time.Millisecond)

	v.CloseList()
	assert.Empty(t, v.Results())
	assert.Equal(t, -1, v.Highlight())
	assert.Nil(t, store.Get().Selected, "escape never selects")

	// Closing with a fetch still pending cancels it.
	v.SetQuery("pending")
	v.CloseList()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, []string{"joe"}, api.recorded())
}

func TestSearchFailureSurfacesError(t *testing.T) {
	api := &fakeAPI{err: fmt.Errorf("backend unreachable")}
	_, v := newTestView(api)

	v.SetQuery("joe")
	require.Eventually(t, func() bool {
		return v.Err() != ""
	}, time.Second, 5*time.Millisecond)
	assert.Empty(t, v.Results())

	api.mu.Lock()
	api.err = nil
	api.mu.Unlock()

	v.SetQuery("joes")
	require.Eventually(t, func() bool {
		return len(v.Results()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Empty(t, v.Err(), "a successful fetch clears the notice")
}
