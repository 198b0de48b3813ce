// Package search implements the typeahead business search box.
package search

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ougirez/bizmap/internal/client"
	"github.com/ougirez/bizmap/internal/dashboard/state"
	"github.com/ougirez/bizmap/internal/domain"
	"github.com/ougirez/bizmap/internal/pkg/logger"
)

const (
	defaultDebounce = 300 * time.Millisecond
	resultLimit     = 10
)

// View debounces keystrokes before hitting the search endpoint. Each
// keystroke bumps a generation counter; a pending fetch whose
// generation is stale when it fires, or when its response lands, is
// dropped, so results always correspond to the latest query.
type View struct {
	mu       sync.Mutex
	api      client.API
	store    *state.Store
	debounce time.Duration

	gen       uint64
	timer     *time.Timer
	query     string
	results   []*domain.Business
	highlight int // keyboard-focused result index, -1 when none
	errMsg    string
}

func New(api client.API, store *state.Store) *View {
	return &View{
		api:       api,
		store:     store,
		debounce:  defaultDebounce,
		highlight: -1,
	}
}

// SetQuery is called on every keystroke. An emptied query clears the
// result list synchronously, without waiting for the debounce window.
func (v *View) SetQuery(query string) {
	query = strings.TrimSpace(query)

	v.mu.Lock()
	defer v.mu.Unlock()

	v.gen++
	v.query = query
	v.highlight = -1
	v.errMsg = ""
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}

	if query == "" {
		v.results = nil
		return
	}

	gen := v.gen
	v.timer = time.AfterFunc(v.debounce, func() {
		v.runSearch(gen, query)
	})
}

func (v *View) runSearch(gen uint64, query string) {
	v.mu.Lock()
	if gen != v.gen {
		v.mu.Unlock()
		return
	}
	v.mu.Unlock()

	ctx := context.Background()
	results, err := v.api.SearchBusinesses(ctx, query, resultLimit)

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.gen {
		return
	}

	if err != nil {
		logger.Warnf(ctx, "search %q failed: %s", query, err.Error())
		v.errMsg = fmt.Sprintf("search %q failed", query)
		return
	}
	v.results = results
	v.highlight = -1
	v.errMsg = ""
}

// Results returns the dropdown contents for the current query.
func (v *View) Results() []*domain.Business {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.results
}

// Highlight returns the keyboard-focused result index, -1 when none.
func (v *View) Highlight() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.highlight
}

// Err reports the fetch failure for the current query, empty when the
// last search succeeded.
func (v *View) Err() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.errMsg
}

// HighlightNext moves keyboard focus one result down, wrapping past the
// end of the list.
func (v *View) HighlightNext() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.results) == 0 {
		return
	}
	v.highlight = (v.highlight + 1) % len(v.results)
}

// HighlightPrev moves keyboard focus one result up, wrapping at the top.
func (v *View) HighlightPrev() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.results) == 0 {
		return
	}
	if v.highlight <= 0 {
		v.highlight = len(v.results) - 1
		return
	}
	v.highlight--
}

// ConfirmHighlighted picks the focused result, reporting false when
// nothing is highlighted.
func (v *View) ConfirmHighlighted() bool {
	v.mu.Lock()
	if v.highlight < 0 || v.highlight >= len(v.results) {
		v.mu.Unlock()
		return false
	}
	b := v.results[v.highlight]
	v.mu.Unlock()

	v.Click(b)
	return true
}

// CloseList dismisses the dropdown without touching the selection:
// escape, or a click outside the result list. A pending debounced fetch
// is cancelled too.
func (v *View) CloseList() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.gen++
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
	v.results = nil
	v.highlight = -1
	v.errMsg = ""
}

// Click picks a result: the selection propagates through the shared
// state and the dropdown closes.
func (v *View) Click(b *domain.Business) {
	v.mu.Lock()
	v.gen++
	v.query = ""
	v.results = nil
	v.highlight = -1
	v.errMsg = ""
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
	v.mu.Unlock()

	v.store.Select(b)
}
