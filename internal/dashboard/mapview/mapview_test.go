package mapview

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ougirez/bizmap/internal/client"
	"github.com/ougirez/bizmap/internal/dashboard/records"
	"github.com/ougirez/bizmap/internal/dashboard/state"
	"github.com/ougirez/bizmap/internal/domain"
	"github.com/ougirez/bizmap/internal/domain/dto"
	"github.com/ougirez/bizmap/internal/geo/cluster"
)

type fixedAPI struct {
	businesses []*domain.Business
}

func (f *fixedAPI) ListBusinesses(_ context.Context, opts client.ListOptions) ([]*domain.Business, error) {
	if opts.Skip >= len(f.businesses) {
		return nil, nil
	}
	end := opts.Skip + opts.Limit
	if end > len(f.businesses) {
		end = len(f.businesses)
	}
	return f.businesses[opts.Skip:end], nil
}

func (f *fixedAPI) GetBusiness(context.Context, string) (*domain.Business, error) {
	return nil, client.ErrNotFound
}

func (f *fixedAPI) SearchBusinesses(context.Context, string, int) ([]*domain.Business, error) {
	return nil, nil
}

func (f *fixedAPI) LocationsSummary(context.Context) (*dto.LocationsSummaryResponse, error) {
	return &dto.LocationsSummaryResponse{}, nil
}

func (f *fixedAPI) BusinessTimeline(context.Context, string, string, domain.Granularity) (*dto.TimelineResponse, error) {
	return &dto.TimelineResponse{}, nil
}

func (f *fixedAPI) CityTimeline(context.Context, string, string, domain.Granularity) (*dto.TimelineResponse, error) {
	return &dto.TimelineResponse{}, nil
}

func (f *fixedAPI) CategoryTimeline(context.Context, string, domain.Granularity) (*dto.TimelineResponse, error) {
	return &dto.TimelineResponse{}, nil
}

func f64(v float64) *float64 { return &v }

var usBounds = cluster.Bounds{MinLon: -130, MinLat: 25, MaxLon: -60, MaxLat: 50}

func testBusinesses() []*domain.Business {
	return []*domain.Business{
		{BusinessID: "phl-1", Name: "Joe's Pizza", City: "Philadelphia",
			Latitude: f64(39.95), Longitude: f64(-75.16), Stars: 4, IsOpen: 1},
		{BusinessID: "phl-2", Name: "South St Bar", City: "Philadelphia",
			Latitude: f64(39.96), Longitude: f64(-75.17), Stars: 2, IsOpen: 1},
		{BusinessID: "pgh-1", Name: "Primanti's", City: "Pittsburgh",
			Latitude: f64(40.44), Longitude: f64(-80.0), Stars: 5, IsOpen: 1},
	}
}

func newTestView(t *testing.T) (*state.Store, *View) {
	t.Helper()

	recs := records.NewStore(&fixedAPI{businesses: testBusinesses()}, "")
	require.NoError(t, recs.Load(context.Background()))

	store := state.NewStore()
	v := New(store, recs, Camera{Lon: -98.5, Lat: 39.8, Zoom: 4})
	v.twoStepDelay = 20 * time.Millisecond
	return store, v
}

func findLeaf(t *testing.T, v *View, id string) cluster.Feature {
	t.Helper()
	for _, f := range v.Features() {
		if !f.IsCluster && v.spatial[f.PointIdx].BusinessID == id {
			return f
		}
	}
	t.Fatalf("no leaf feature for %s", id)
	return cluster.Feature{}
}

func TestCityChangeFliesToCentroid(t *testing.T) {
	store, v := newTestView(t)
	v.Moves()

	store.SetCity("Philadelphia")

	moves := v.Moves()
	require.Len(t, moves, 1)
	assert.Equal(t, MoveFly, moves[0].Kind)
	assert.Equal(t, float64(cityZoom), moves[0].Target.Zoom)
	assert.InDelta(t, -75.165, moves[0].Target.Lon, 1e-9)
	assert.InDelta(t, 39.955, moves[0].Target.Lat, 1e-9)
	assert.Equal(t, cityFlyDuration, moves[0].Duration)
}

func TestCityClearedReturnsToInitialCamera(t *testing.T) {
	store, v := newTestView(t)
	store.SetCity("Philadelphia")
	v.Moves()

	store.SetCity("")

	moves := v.Moves()
	require.Len(t, moves, 1)
	assert.Equal(t, MoveFly, moves[0].Kind)
	assert.Equal(t, Camera{Lon: -98.5, Lat: 39.8, Zoom: 4}, moves[0].Target)
}

func TestFilterChangeRebuildsIndex(t *testing.T) {
	store, v := newTestView(t)
	v.SetViewport(usBounds, 15)
	assert.Equal(t, 3, v.FilteredCount())
	assert.Len(t, v.Features(), 3)

	store.SetCity("Pittsburgh")

	assert.Equal(t, 1, v.FilteredCount())
	require.Len(t, v.Features(), 1)
	assert.False(t, v.Features()[0].IsCluster)
}

func TestMarkerClickOpensPopupWithoutCameraMove(t *testing.T) {
	store, v := newTestView(t)
	v.SetViewport(usBounds, 15)
	v.Moves()

	v.ClickMarker(findLeaf(t, v, "phl-1"))

	id, open := v.Popup()
	assert.True(t, open)
	assert.Equal(t, "phl-1", id)

	snap := store.Get()
	require.NotNil(t, snap.Selected)
	assert.Equal(t, "phl-1", snap.Selected.BusinessID)
	assert.Empty(t, v.Moves(), "marker clicks do not animate the camera")
}

func TestClusterClickFliesToExpansionZoom(t *testing.T) {
	_, v := newTestView(t)
	// Zoom 8: the two Philadelphia points still render as one cluster.
	v.SetViewport(usBounds, 8)
	v.Moves()

	var clusterFeature cluster.Feature
	found := false
	for _, f := range v.Features() {
		if f.IsCluster {
			clusterFeature = f
			found = true
		}
	}
	require.True(t, found, "expected a cluster at zoom 8")
	assert.Equal(t, 2, clusterFeature.Count)

	v.ClickMarker(clusterFeature)

	moves := v.Moves()
	require.Len(t, moves, 1)
	assert.Equal(t, MoveFly, moves[0].Kind)
	assert.Greater(t, moves[0].Target.Zoom, 8.0)
}

func TestSearchSelectionTwoStepFromLowZoom(t *testing.T) {
	store, v := newTestView(t)
	v.Moves()

	biz, ok := v.records.Get("pgh-1")
	require.True(t, ok)
	store.Select(biz)

	moves := v.Moves()
	require.Len(t, moves, 1, "only the step-out runs synchronously")
	assert.Equal(t, MoveEase, moves[0].Kind)
	assert.Equal(t, float64(stepOutZoom), moves[0].Target.Zoom)
	assert.InDelta(t, -98.5, moves[0].Target.Lon, 1e-9, "step-out keeps the current center")

	time.Sleep(150 * time.Millisecond)

	moves = v.Moves()
	require.Len(t, moves, 1)
	assert.Equal(t, MoveEase, moves[0].Kind)
	assert.Equal(t, float64(stepInZoom), moves[0].Target.Zoom)
	assert.InDelta(t, -80.0, moves[0].Target.Lon, 1e-9)
	assert.InDelta(t, 40.44, moves[0].Target.Lat, 1e-9)
}

func TestTwoStepCancelledByDeselect(t *testing.T) {
	store, v := newTestView(t)
	v.Moves()

	biz, ok := v.records.Get("pgh-1")
	require.True(t, ok)
	store.Select(biz)
	v.Moves()

	store.Select(nil)
	time.Sleep(150 * time.Millisecond)

	assert.Empty(t, v.Moves(), "pending step-in must not fire after deselect")
	_, open := v.Popup()
	assert.False(t, open)
}

func TestSearchSelectionDirectEaseAtHighZoom(t *testing.T) {
	store, v := newTestView(t)
	v.SetViewport(usBounds, 13)
	v.Moves()

	biz, ok := v.records.Get("pgh-1")
	require.True(t, ok)
	store.Select(biz)

	moves := v.Moves()
	require.Len(t, moves, 1)
	assert.Equal(t, MoveEase, moves[0].Kind)
	assert.Equal(t, float64(directEaseZoom), moves[0].Target.Zoom)
	assert.InDelta(t, -80.0, moves[0].Target.Lon, 1e-9)

	time.Sleep(150 * time.Millisecond)
	assert.Empty(t, v.Moves(), "direct ease has no second step")
}

func TestBackgroundClickClearsSelection(t *testing.T) {
	store, v := newTestView(t)
	v.SetViewport(usBounds, 15)
	v.ClickMarker(findLeaf(t, v, "phl-2"))

	v.ClickBackground()

	_, open := v.Popup()
	assert.False(t, open)
	assert.Nil(t, store.Get().Selected)
}

func TestZoomControlsClamp(t *testing.T) {
	_, v := newTestView(t)
	v.Moves()

	v.ZoomIn()
	assert.Equal(t, 5.0, v.Camera().Zoom)

	v.ZoomOut()
	v.ZoomOut()
	v.ZoomOut()
	v.ZoomOut()
	v.ZoomOut()
	v.ZoomOut()
	assert.Equal(t, 0.0, v.Camera().Zoom, "zoom never goes below the minimum")
}

func TestResetOrientation(t *testing.T) {
	_, v := newTestView(t)
	v.mu.Lock()
	v.camera.Bearing = 45
	v.camera.Pitch = 30
	v.mu.Unlock()

	v.ResetOrientation()

	c := v.Camera()
	assert.Zero(t, c.Bearing)
	assert.Zero(t, c.Pitch)
	assert.Equal(t, 4.0, c.Zoom, "orientation reset keeps position and zoom")
}

func TestRenderRadiusScalesWithShare(t *testing.T) {
	_, v := newTestView(t)

	assert.InDelta(t, minRenderRadius+50.0/3.0, v.RenderRadius(1), 1e-9)
	assert.InDelta(t, minRenderRadius+50.0, v.RenderRadius(3), 1e-9)
}
