// Package dashboard wires the view components into per-session engines
// served over HTTP. Each session owns its filter state and camera; the
// record store is shared across sessions.
package dashboard

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/ougirez/bizmap/internal/client"
	"github.com/ougirez/bizmap/internal/dashboard/mapview"
	"github.com/ougirez/bizmap/internal/dashboard/records"
	"github.com/ougirez/bizmap/internal/dashboard/scatter"
	"github.com/ougirez/bizmap/internal/dashboard/search"
	"github.com/ougirez/bizmap/internal/dashboard/state"
	"github.com/ougirez/bizmap/internal/dashboard/timeseries"
	"github.com/ougirez/bizmap/internal/pkg/constants"
	"github.com/ougirez/bizmap/internal/pkg/logger"
)

var errSessionNotFound = constants.NewCodedError(http.StatusNotFound, "session not found")

// initialCamera is the continental-US overview every session starts at.
var initialCamera = mapview.Camera{Lon: -98.5795, Lat: 39.8283, Zoom: 4}

type Service struct {
	mu       sync.Mutex
	api      client.API
	records  *records.Store
	sessions map[string]*Engine
}

func NewDashboardService(api client.API, recs *records.Store) *Service {
	return &Service{
		api:      api,
		records:  recs,
		sessions: make(map[string]*Engine),
	}
}

// LoadRecords performs the startup bulk load shared by all sessions.
func (s *Service) LoadRecords(ctx context.Context) error {
	return s.records.Load(ctx)
}

func (s *Service) CreateSession(ctx context.Context) *Engine {
	e := newEngine(uuid.NewString(), s.api, s.records)

	s.mu.Lock()
	s.sessions[e.ID] = e
	s.mu.Unlock()

	logger.Infof(ctx, "dashboard session %s created", e.ID)
	return e
}

func (s *Service) Session(id string) (*Engine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, errSessionNotFound
	}
	return e, nil
}

func (s *Service) CloseSession(ctx context.Context, id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	logger.Infof(ctx, "dashboard session %s closed", id)
}

// Engine is one user's dashboard: the shared state store plus the four
// views hanging off it.
type Engine struct {
	ID string

	State      *state.Store
	Map        *mapview.View
	Scatter    *scatter.View
	TimeSeries *timeseries.View
	Search     *search.View

	records *records.Store
}

func newEngine(id string, api client.API, recs *records.Store) *Engine {
	st := state.NewStore()
	return &Engine{
		ID:         id,
		State:      st,
		Map:        mapview.New(st, recs, initialCamera),
		Scatter:    scatter.New(st, recs),
		TimeSeries: timeseries.New(api, st, recs),
		Search:     search.New(api, st),
		records:    recs,
	}
}

// LoadError reports the startup bulk-load failure, if any; frames carry
// it so the renderer can explain an empty map.
func (e *Engine) LoadError() error {
	return e.records.LoadError()
}

// SelectBusiness resolves an id against the record store and forwards
// it into the shared selection.
func (e *Engine) SelectBusiness(id string) error {
	b, ok := e.records.Get(id)
	if !ok {
		return constants.ErrDBNotFound
	}
	e.State.Select(b)
	return nil
}
