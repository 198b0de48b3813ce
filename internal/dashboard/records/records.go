// Package records holds the in-memory business record store: loaded
// once at startup, immutable afterwards.
package records

import (
	"context"
	"fmt"

	"github.com/ougirez/bizmap/internal/client"
	"github.com/ougirez/bizmap/internal/domain"
	"github.com/ougirez/bizmap/internal/pkg/logger"
)

const pageSize = 1000

// Store is the bulk-loaded business cache shared by every view.
type Store struct {
	api          client.API
	snapshotPath string
	businesses   []*domain.Business
	byID         map[string]*domain.Business
	loadErr      error
}

func NewStore(api client.API, snapshotPath string) *Store {
	return &Store{
		api:          api,
		snapshotPath: snapshotPath,
	}
}

// NewStaticStore wraps an already-materialized record set; no backend
// and no Load call needed.
func NewStaticStore(businesses []*domain.Business) *Store {
	s := &Store{}
	s.reset(businesses)
	return s
}

// Load pulls the full business list through repeated paged calls until
// a short page signals end-of-data. If the live fetch fails, it falls
// back to the bundled NDJSON snapshot; if that fails too, the store
// stays empty, remembers the failure for LoadError, and returns it.
func (s *Store) Load(ctx context.Context) error {
	businesses, err := s.loadPaged(ctx)
	if err != nil {
		logger.Warnf(ctx, "bulk load failed, falling back to snapshot: %s", err.Error())

		businesses, err = readSnapshot(s.snapshotPath)
		if err != nil {
			s.loadErr = fmt.Errorf("snapshot fallback: %w", err)
			return s.loadErr
		}
	}

	s.reset(businesses)
	s.loadErr = nil
	logger.Infof(ctx, "record store loaded %d businesses", len(businesses))
	return nil
}

// LoadError reports the startup load failure, if any, so the views can
// render a visible notice over the empty store.
func (s *Store) LoadError() error {
	return s.loadErr
}

func (s *Store) loadPaged(ctx context.Context) ([]*domain.Business, error) {
	var all []*domain.Business

	for skip := 0; ; skip += pageSize {
		page, err := s.api.ListBusinesses(ctx, client.ListOptions{Skip: skip, Limit: pageSize})
		if err != nil {
			return nil, fmt.Errorf("page at skip %d: %w", skip, err)
		}

		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}
	}
}

func (s *Store) reset(businesses []*domain.Business) {
	s.businesses = businesses
	s.byID = make(map[string]*domain.Business, len(businesses))
	for _, b := range businesses {
		s.byID[b.BusinessID] = b
	}
}

// All returns the loaded records. Callers must not mutate them.
func (s *Store) All() []*domain.Business {
	return s.businesses
}

func (s *Store) Len() int {
	return len(s.businesses)
}

func (s *Store) Get(id string) (*domain.Business, bool) {
	b, ok := s.byID[id]
	return b, ok
}

// CityCentroid is the arithmetic mean of the finite coordinates of a
// city's businesses; ok is false when the city has none.
func (s *Store) CityCentroid(city string) (lon, lat float64, ok bool) {
	var sumLon, sumLat float64
	var n int

	for _, b := range s.businesses {
		if b.City != city || !b.HasCoordinates() {
			continue
		}
		sumLon += *b.Longitude
		sumLat += *b.Latitude
		n++
	}

	if n == 0 {
		return 0, 0, false
	}
	return sumLon / float64(n), sumLat / float64(n), true
}
