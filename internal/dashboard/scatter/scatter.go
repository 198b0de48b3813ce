// Package scatter derives the photo-count versus rating chart from the
// shared filter state.
package scatter

import (
	"sync"

	"github.com/ougirez/bizmap/internal/dashboard/records"
	"github.com/ougirez/bizmap/internal/dashboard/state"
)

// Point is one chart marker: photo count on x, star rating on y.
type Point struct {
	BusinessID string  `json:"business_id"`
	Name       string  `json:"name"`
	X          int     `json:"x"`
	Y          float64 `json:"y"`
	Selected   bool    `json:"selected"`
}

// Frame is a full render of the chart, split into the two series the
// legend shows. The selected business keeps its series membership and
// is flagged for enlarged rendering.
type Frame struct {
	Open   []Point `json:"open"`
	Closed []Point `json:"closed"`
}

// View recomputes the chart on every state change. Derivation is pure:
// the same filtered subset the map clusters, minus businesses without
// a photo count.
type View struct {
	mu      sync.Mutex
	store   *state.Store
	records *records.Store
	frame   Frame
}

func New(store *state.Store, recs *records.Store) *View {
	v := &View{store: store, records: recs}
	v.rebuild(store.Get())
	store.Subscribe(v.rebuild)
	return v
}

// Refresh recomputes from current records; called after loading.
func (v *View) Refresh() {
	v.rebuild(v.store.Get())
}

func (v *View) rebuild(snap state.Snapshot) {
	selectedID := ""
	if snap.Selected != nil {
		selectedID = snap.Selected.BusinessID
	}

	var frame Frame
	for _, b := range state.Filter(snap.Criteria, v.records.All()) {
		if b.PhotoCount == nil {
			continue
		}

		p := Point{
			BusinessID: b.BusinessID,
			Name:       b.Name,
			X:          *b.PhotoCount,
			Y:          b.Stars,
			Selected:   b.BusinessID == selectedID,
		}
		if b.IsOpen == 1 {
			frame.Open = append(frame.Open, p)
		} else {
			frame.Closed = append(frame.Closed, p)
		}
	}

	v.mu.Lock()
	v.frame = frame
	v.mu.Unlock()
}

// Frame returns the last derived chart.
func (v *View) Frame() Frame {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.frame
}

// Click forwards a chart point click into the shared selection, so the
// map and time series react the same way as to a search pick.
func (v *View) Click(businessID string) {
	b, ok := v.records.Get(businessID)
	if !ok {
		return
	}
	v.store.Select(b)
}
