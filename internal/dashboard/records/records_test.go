package records

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ougirez/bizmap/internal/client"
	"github.com/ougirez/bizmap/internal/domain"
	"github.com/ougirez/bizmap/internal/domain/dto"
)

type fakeAPI struct {
	businesses []*domain.Business
	fail       bool
	calls      int
}

func (f *fakeAPI) ListBusinesses(_ context.Context, opts client.ListOptions) ([]*domain.Business, error) {
	f.calls++
	if f.fail {
		return nil, fmt.Errorf("backend unreachable")
	}

	if opts.Skip >= len(f.businesses) {
		return nil, nil
	}
	end := opts.Skip + opts.Limit
	if end > len(f.businesses) {
		end = len(f.businesses)
	}
	return f.businesses[opts.Skip:end], nil
}

func (f *fakeAPI) GetBusiness(context.Context, string) (*domain.Business, error) {
	return nil, client.ErrNotFound
}

func (f *fakeAPI) SearchBusinesses(context.Context, string, int) ([]*domain.Business, error) {
	return nil, nil
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

func f64(v float64) *float64 { return &v }

func makeBusinesses(n int) []*domain.Business {
	businesses := make([]*domain.Business, n)
	for i := range businesses {
		businesses[i] = &domain.Business{
			BusinessID: fmt.Sprintf("b%d", i),
			City:       "Philadelphia",
			Latitude:   f64(39.95),
			Longitude:  f64(-75.16),
		}
	}
	return businesses
}

func TestLoadStopsOnShortPage(t *testing.T) {
	api := &fakeAPI{businesses: makeBusinesses(2500)}
	s := NewStore(api, "")

	require.NoError(t, s.Load(context.Background()))
	assert.Equal(t, 2500, s.Len())
	// 1000 + 1000 + 500: the short third page ends the loop.
	assert.Equal(t, 3, api.calls)
}

func TestLoadExactPageBoundary(t *testing.T) {
	api := &fakeAPI{businesses: makeBusinesses(2000)}
	s := NewStore(api, "")

	require.NoError(t, s.Load(context.Background()))
	assert.Equal(t, 2000, s.Len())
	// An empty trailing page is needed to observe the end.
	assert.Equal(t, 3, api.calls)
}

func TestSnapshotFallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "businesses.ndjson")
	ndjson := `{"business_id":"1","name":"Joe's Pizza","city":"Philadelphia","state":"PA","latitude":39.95,"longitude":-75.16,"stars":4,"is_open":1}
{"business_id":"2","name":"South St Bar","city":"Philadelphia","state":"PA","latitude":39.96,"longitude":-75.17,"stars":2,"is_open":0}
not-json-at-all
`
	require.NoError(t, os.WriteFile(path, []byte(ndjson), 0o644))

	s := NewStore(&fakeAPI{fail: true}, path)
	require.NoError(t, s.Load(context.Background()))

	assert.Equal(t, 2, s.Len())
	b, ok := s.Get("1")
	require.True(t, ok)
	assert.Equal(t, "Joe's Pizza", b.Name)
}

func TestLoadFailsWhenBothSourcesFail(t *testing.T) {
	s := NewStore(&fakeAPI{fail: true}, filepath.Join(t.TempDir(), "missing.ndjson"))

	err := s.Load(context.Background())
	require.Error(t, err)
	assert.Zero(t, s.Len(), "store stays empty on total failure")
	assert.Error(t, s.LoadError(), "the failure stays visible to the views")
}

func TestLoadSuccessClearsLoadError(t *testing.T) {
	s := NewStore(&fakeAPI{fail: true}, filepath.Join(t.TempDir(), "missing.ndjson"))
	require.Error(t, s.Load(context.Background()))

	s.api = &fakeAPI{businesses: makeBusinesses(10)}
	require.NoError(t, s.Load(context.Background()))
	assert.NoError(t, s.LoadError())
	assert.Equal(t, 10, s.Len())
}

func TestCityCentroid(t *testing.T) {
	s := NewStore(&fakeAPI{}, "")
	s.reset([]*domain.Business{
		{BusinessID: "1", City: "Philadelphia", Latitude: f64(39.95), Longitude: f64(-75.16)},
		{BusinessID: "2", City: "Philadelphia", Latitude: f64(39.96), Longitude: f64(-75.17)},
		{BusinessID: "3", City: "Philadelphia"}, // no coordinates, excluded
		{BusinessID: "4", City: "Pittsburgh", Latitude: f64(40.44), Longitude: f64(-80.0)},
	})

	lon, lat, ok := s.CityCentroid("Philadelphia")
	require.True(t, ok)
	assert.InDelta(t, -75.165, lon, 1e-9)
	assert.InDelta(t, 39.955, lat, 1e-9)

	_, _, ok = s.CityCentroid("Nowhere")
	assert.False(t, ok)
}
