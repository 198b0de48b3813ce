package cluster

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var phillyBounds = Bounds{MinLon: -76, MinLat: 39, MaxLon: -74, MaxLat: 41}

func newTestIndex() *Index {
	return New(Options{MaxZoom: 20, Radius: 75, Extent: 512})
}

func TestTightGroupMergesIntoOneAggregate(t *testing.T) {
	idx := newTestIndex()
	idx.Load([]Point{
		{Lon: -75.1601, Lat: 39.9501},
		{Lon: -75.1602, Lat: 39.9502},
		{Lon: -75.1603, Lat: 39.9503},
		{Lon: -75.1604, Lat: 39.9504},
	})

	features := idx.GetClusters(phillyBounds, 10)
	require.Len(t, features, 1)
	assert.True(t, features[0].IsCluster)
	assert.Equal(t, 4, features[0].Count)
	assert.InDelta(t, -75.16, features[0].Lon, 0.01)
	assert.InDelta(t, 39.95, features[0].Lat, 0.01)
}

func TestHighZoomResolvesToLeaves(t *testing.T) {
	idx := newTestIndex()
	points := []Point{
		{Lon: -75.1601, Lat: 39.9501},
		{Lon: -75.1602, Lat: 39.9502},
		{Lon: -75.1603, Lat: 39.9503},
	}
	idx.Load(points)

	features := idx.GetClusters(phillyBounds, 22)
	require.Len(t, features, len(points))

	seen := make([]int, 0, len(features))
	for _, f := range features {
		assert.False(t, f.IsCluster)
		assert.Equal(t, 1, f.Count)
		seen = append(seen, f.PointIdx)
	}
	sort.Ints(seen)
	assert.Equal(t, []int{0, 1, 2}, seen)
}

func TestRebuildIsIdempotent(t *testing.T) {
	points := []Point{
		{Lon: -75.16, Lat: 39.95},
		{Lon: -75.17, Lat: 39.96},
		{Lon: -80.0, Lat: 40.44},
		{Lon: -80.01, Lat: 40.45},
	}

	a := newTestIndex()
	a.Load(points)
	b := newTestIndex()
	b.Load(points)

	for _, zoom := range []int{0, 5, 11, 21} {
		fa := a.GetClusters(phillyBounds, zoom)
		fb := b.GetClusters(phillyBounds, zoom)
		require.Equal(t, len(fa), len(fb), "zoom %d", zoom)

		sortFeatures(fa)
		sortFeatures(fb)
		for i := range fa {
			assert.Equal(t, fa[i].Count, fb[i].Count)
			assert.InDelta(t, fa[i].Lon, fb[i].Lon, 1e-9)
			assert.InDelta(t, fa[i].Lat, fb[i].Lat, 1e-9)
		}
	}
}

func TestExpansionZoomSplitsAggregate(t *testing.T) {
	idx := newTestIndex()
	idx.Load([]Point{
		{Lon: -75.16, Lat: 39.95},
		{Lon: -75.20, Lat: 39.99},
	})

	low := idx.GetClusters(phillyBounds, 3)
	require.Len(t, low, 1)
	require.True(t, low[0].IsCluster)

	ez := idx.ExpansionZoom(low[0].ID)
	assert.Greater(t, ez, 3)
	assert.LessOrEqual(t, ez, 21)

	split := idx.GetClusters(phillyBounds, ez)
	assert.GreaterOrEqual(t, len(split), 2)
}

func TestChildrenCountPreserved(t *testing.T) {
	idx := newTestIndex()
	idx.Load([]Point{
		{Lon: -75.1601, Lat: 39.9501},
		{Lon: -75.1602, Lat: 39.9502},
		{Lon: -75.1701, Lat: 39.9601},
	})

	features := idx.GetClusters(phillyBounds, 2)
	require.Len(t, features, 1)

	total := 0
	for _, c := range idx.Children(features[0].ID) {
		total += c.Count
	}
	assert.Equal(t, 3, total)
}

func TestEmptyIndex(t *testing.T) {
	idx := newTestIndex()
	idx.Load(nil)

	assert.Empty(t, idx.GetClusters(phillyBounds, 10))
	assert.Equal(t, 0, idx.Len())
}

func sortFeatures(fs []Feature) {
	sort.Slice(fs, func(i, j int) bool {
		if fs[i].Lon != fs[j].Lon {
			return fs[i].Lon < fs[j].Lon
		}
		return fs[i].Lat < fs[j].Lat
	})
}
