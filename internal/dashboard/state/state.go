package state

import (
	"sync"
	"time"

	"github.com/ougirez/bizmap/internal/domain"
)

// Criteria is the shared filter state. Zero values mean "no filter";
// rating 0 is unset, Status nil is unset. Values are accepted as
// provided — validation belongs to the caller's input surface.
type Criteria struct {
	City        string
	Category    string
	Rating      int
	Status      *bool
	Granularity domain.Granularity
	Year        int
}

// Snapshot is the state handed to subscribers: the criteria plus the
// at-most-one selected business.
type Snapshot struct {
	Criteria Criteria
	Selected *domain.Business
}

// Listener receives every state change synchronously, on the calling
// goroutine, before the set operation returns.
type Listener func(Snapshot)

// Store is the single source of truth shared by the map, scatter and
// time-series views. All mutations are applied under one lock and
// propagated synchronously, so views observe each change as
// immediately consistent.
type Store struct {
	mu        sync.Mutex
	criteria  Criteria
	selected  *domain.Business
	listeners []Listener
}

func NewStore() *Store {
	s := &Store{}
	s.criteria = defaultCriteria()
	return s
}

func defaultCriteria() Criteria {
	return Criteria{
		Granularity: domain.GranularityYear,
		Year:        time.Now().Year(),
	}
}

// Subscribe registers a listener for every subsequent change.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *Store) notifyLocked() {
	snap := Snapshot{Criteria: s.criteria, Selected: s.selected}
	listeners := s.listeners

	// Listeners run synchronously; they must not call back into the
	// store's set operations.
	s.mu.Unlock()
	for _, l := range listeners {
		l(snap)
	}
	s.mu.Lock()
}

// Get returns the current snapshot.
func (s *Store) Get() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Criteria: s.criteria, Selected: s.selected}
}

func (s *Store) SetCity(city string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria.City = city
	s.notifyLocked()
}

func (s *Store) SetCategory(category string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria.Category = category
	s.notifyLocked()
}

func (s *Store) SetRating(rating int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria.Rating = rating
	s.notifyLocked()
}

func (s *Store) SetStatus(status *bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria.Status = status
	s.notifyLocked()
}

// SetGranularity switches the time bucket. Moving to month without a
// year chosen defaults the year to the current calendar year; moving
// back to year keeps the underlying year value.
func (s *Store) SetGranularity(g domain.Granularity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria.Granularity = g
	if g == domain.GranularityMonth && s.criteria.Year == 0 {
		s.criteria.Year = time.Now().Year()
	}
	s.notifyLocked()
}

func (s *Store) SetYear(year int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria.Year = year
	s.notifyLocked()
}

// Select sets the highlighted business; nil clears it. Every view
// reflects the change, not just the origin view.
func (s *Store) Select(b *domain.Business) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = b
	s.notifyLocked()
}

// Reset clears all filters and the selection, and returns the time
// axis to year granularity with the current calendar year.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria = defaultCriteria()
	s.selected = nil
	s.notifyLocked()
}
