// Package mapview owns the map camera state machine and the
// viewport-driven cluster queries that keep markers consistent with
// what is on screen.
package mapview

import (
	"math"
	"sync"
	"time"

	"github.com/ougirez/bizmap/internal/dashboard/records"
	"github.com/ougirez/bizmap/internal/dashboard/state"
	"github.com/ougirez/bizmap/internal/domain"
	"github.com/ougirez/bizmap/internal/geo/cluster"
)

const minRenderRadius = 12

// View reacts to filter-state changes by rebuilding the spatial index
// and emitting camera moves; the renderer reports viewport changes
// back through SetViewport.
type View struct {
	mu      sync.Mutex
	store   *state.Store
	records *records.Store

	index   *cluster.Index
	spatial []*domain.Business // businesses behind the index points, by point index

	initial     Camera
	camera      Camera
	viewport    cluster.Bounds
	hasViewport bool

	features      []cluster.Feature
	filteredCount int

	popupID string
	moves   []Move

	sched        scheduler
	twoStepDelay time.Duration

	prevCriteria   state.Criteria
	prevSelectedID string
	markerOrigin   bool
}

func New(store *state.Store, recs *records.Store, initial Camera) *View {
	v := &View{
		store:        store,
		records:      recs,
		initial:      initial,
		camera:       initial,
		twoStepDelay: 800 * time.Millisecond,
		prevCriteria: store.Get().Criteria,
	}
	v.rebuildLocked()
	store.Subscribe(v.onState)
	return v
}

// Refresh rebuilds the spatial index from the current records and
// criteria; called after the record store finishes loading.
func (v *View) Refresh() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rebuildLocked()
}

func (v *View) rebuildLocked() {
	criteria := v.store.Get().Criteria
	filtered := state.Filter(criteria, v.records.All())
	v.filteredCount = len(filtered)

	v.spatial = v.spatial[:0]
	points := make([]cluster.Point, 0, len(filtered))
	for _, b := range filtered {
		if !b.HasCoordinates() {
			continue
		}
		v.spatial = append(v.spatial, b)
		points = append(points, cluster.Point{Lon: *b.Longitude, Lat: *b.Latitude})
	}

	v.index = cluster.New(cluster.Options{MaxZoom: maxZoom, Radius: 75, Extent: 512})
	v.index.Load(points)
	v.queryLocked()
}

func (v *View) queryLocked() {
	if !v.hasViewport || v.index == nil {
		v.features = nil
		return
	}
	v.features = v.index.GetClusters(v.viewport, int(math.Round(v.camera.Zoom)))
}

func (v *View) applyMoveLocked(kind MoveKind, target Camera, d time.Duration) {
	target.Zoom = clampZoom(target.Zoom)
	v.camera = target
	v.moves = append(v.moves, Move{Kind: kind, Target: target, Duration: d})
	v.queryLocked()
}

// onState is the store listener; it runs synchronously on the mutating
// goroutine.
func (v *View) onState(snap state.Snapshot) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !criteriaEqual(snap.Criteria, v.prevCriteria) {
		v.rebuildLocked()
	}

	if snap.Criteria.City != v.prevCriteria.City {
		v.sched.cancel()
		if snap.Criteria.City != "" {
			if lon, lat, ok := v.records.CityCentroid(snap.Criteria.City); ok {
				v.applyMoveLocked(MoveFly, Camera{Lon: lon, Lat: lat, Zoom: cityZoom}, cityFlyDuration)
			}
		} else {
			v.applyMoveLocked(MoveFly, v.initial, cityFlyDuration)
		}
	}

	selID := ""
	if snap.Selected != nil {
		selID = snap.Selected.BusinessID
	}

	if selID != v.prevSelectedID {
		switch {
		case selID == "":
			// Deselect: close any popup, no camera move.
			v.popupID = ""
			v.sched.cancel()
		case v.markerOrigin:
			// The user already centered on this marker by clicking it.
		default:
			v.popupID = ""
			v.moveToSelectionLocked(snap.Selected)
		}
	}

	v.markerOrigin = false
	v.prevCriteria = snap.Criteria
	v.prevSelectedID = selID
}

// moveToSelectionLocked animates toward a business selected outside
// the map (search, scatter click). Long-distance moves from low zoom
// go out-then-in to avoid a disorienting pan.
func (v *View) moveToSelectionLocked(b *domain.Business) {
	if !b.HasCoordinates() {
		return
	}

	if v.camera.Zoom > cityZoom {
		v.applyMoveLocked(MoveEase,
			Camera{Lon: *b.Longitude, Lat: *b.Latitude, Zoom: directEaseZoom}, cityFlyDuration)
		return
	}

	v.applyMoveLocked(MoveEase,
		Camera{Lon: v.camera.Lon, Lat: v.camera.Lat, Zoom: stepOutZoom}, cityFlyDuration)

	target := Camera{Lon: *b.Longitude, Lat: *b.Latitude, Zoom: stepInZoom}
	v.sched.schedule(v.twoStepDelay, func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		v.applyMoveLocked(MoveEase, target, cityFlyDuration)
	})
}

// ClickMarker handles a renderer click on a feature. Leaf clicks open
// the popup and forward the selection without a camera animation;
// cluster clicks fly to the cluster's expansion zoom.
func (v *View) ClickMarker(f cluster.Feature) {
	v.mu.Lock()

	if f.IsCluster {
		zoom := float64(v.index.ExpansionZoom(f.ID))
		v.applyMoveLocked(MoveFly, Camera{Lon: f.Lon, Lat: f.Lat, Zoom: zoom}, cityFlyDuration)
		v.mu.Unlock()
		return
	}

	if f.PointIdx < 0 || f.PointIdx >= len(v.spatial) {
		v.mu.Unlock()
		return
	}

	b := v.spatial[f.PointIdx]
	v.popupID = b.BusinessID
	v.markerOrigin = true
	v.mu.Unlock()

	v.store.Select(b)
}

// ClickBackground clears the selection; the popup closes through the
// resulting state notification.
func (v *View) ClickBackground() {
	v.store.Select(nil)
}

func (v *View) SetViewport(b cluster.Bounds, zoom float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.viewport = b
	v.hasViewport = true
	v.camera.Zoom = clampZoom(zoom)
	v.queryLocked()
}

func (v *View) ZoomIn() {
	v.stepZoom(1)
}

func (v *View) ZoomOut() {
	v.stepZoom(-1)
}

func (v *View) stepZoom(delta float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	target := v.camera
	target.Zoom = clampZoom(target.Zoom + delta)
	v.applyMoveLocked(MoveEase, target, 300*time.Millisecond)
}

// ResetOrientation eases bearing and pitch back to zero without
// changing position or zoom.
func (v *View) ResetOrientation() {
	v.mu.Lock()
	defer v.mu.Unlock()
	target := v.camera
	target.Bearing = 0
	target.Pitch = 0
	v.applyMoveLocked(MoveEase, target, 300*time.Millisecond)
}

func (v *View) Camera() Camera {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.camera
}

func (v *View) Features() []cluster.Feature {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]cluster.Feature, len(v.features))
	copy(out, v.features)
	return out
}

// Moves drains the pending camera instructions for the renderer.
func (v *View) Moves() []Move {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := v.moves
	v.moves = nil
	return out
}

// Popup returns the business id of the open detail popup, if any.
func (v *View) Popup() (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.popupID, v.popupID != ""
}

// FilteredCount is the size of the filtered set — the count display
// and cluster sizing use this, not the visible count.
func (v *View) FilteredCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filteredCount
}

// RenderRadius sizes a cluster marker: the minimum radius plus up to
// 50px proportional to the cluster's share of the filtered total.
func (v *View) RenderRadius(count int) float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.filteredCount == 0 {
		return 0
	}
	return minRenderRadius + 50*float64(count)/float64(v.filteredCount)
}

func criteriaEqual(a, b state.Criteria) bool {
	if a.City != b.City || a.Category != b.Category || a.Rating != b.Rating {
		return false
	}
	if a.Granularity != b.Granularity || a.Year != b.Year {
		return false
	}
	if (a.Status == nil) != (b.Status == nil) {
		return false
	}
	if a.Status != nil && *a.Status != *b.Status {
		return false
	}
	return true
}
