package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ougirez/bizmap/internal/dashboard/mapview"
	"github.com/ougirez/bizmap/internal/dashboard/scatter"
	"github.com/ougirez/bizmap/internal/dashboard/timeseries"
	"github.com/ougirez/bizmap/internal/domain"
	"github.com/ougirez/bizmap/internal/geo/cluster"
	"github.com/ougirez/bizmap/internal/service/dashboard"
)

// EngineController serves the per-session dashboard engine.
type EngineController struct {
	service *dashboard.Service
}

func NewEngineController(service *dashboard.Service) *EngineController {
	return &EngineController{service: service}
}

type sessionResponse struct {
	SessionID string `json:"session_id"`
}

// FiltersRequest applies only the fields that are present; Status is a
// tri-state string so "any" can clear the open/closed filter.
type filtersRequest struct {
	City        *string `json:"city,omitempty"`
	Category    *string `json:"category,omitempty"`
	Rating      *int    `json:"rating,omitempty"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=open closed any"`
	Granularity *string `json:"granularity,omitempty" validate:"omitempty,oneof=month year"`
	Year        *int    `json:"year,omitempty"`
}

type selectRequest struct {
	BusinessID string `json:"business_id" validate:"required"`
}

type viewportRequest struct {
	MinLon float64 `json:"min_lon" validate:"gte=-180,lte=180"`
	MinLat float64 `json:"min_lat" validate:"gte=-90,lte=90"`
	MaxLon float64 `json:"max_lon" validate:"gte=-180,lte=180"`
	MaxLat float64 `json:"max_lat" validate:"gte=-90,lte=90"`
	Zoom   float64 `json:"zoom" validate:"gte=0,lte=20"`
}

// markerClickRequest echoes a rendered feature back at the engine.
type markerClickRequest struct {
	ID        uint64  `json:"id"`
	IsCluster bool    `json:"is_cluster"`
	Lon       float64 `json:"lon"`
	Lat       float64 `json:"lat"`
	Count     int     `json:"count"`
	PointIdx  int     `json:"point_idx"`
}

type searchQueryRequest struct {
	Query string `json:"q"`
}

// featureView is one marker ready to draw: cluster features carry a
// precomputed pixel radius.
type featureView struct {
	ID        uint64  `json:"id"`
	IsCluster bool    `json:"is_cluster"`
	Lon       float64 `json:"lon"`
	Lat       float64 `json:"lat"`
	Count     int     `json:"count,omitempty"`
	PointIdx  int     `json:"point_idx,omitempty"`
	Radius    float64 `json:"radius,omitempty"`
}

type mapFrameResponse struct {
	Camera        mapview.Camera `json:"camera"`
	Features      []featureView  `json:"features"`
	Moves         []mapview.Move `json:"moves,omitempty"`
	PopupID       string         `json:"popup_id,omitempty"`
	FilteredCount int            `json:"filtered_count"`
	Error         string         `json:"error,omitempty"`
}

type scatterFrameResponse struct {
	Frame scatter.Frame `json:"frame"`
}

type timelineFrameResponse struct {
	Frame timeseries.Frame `json:"frame"`
}

type searchResultsResponse struct {
	Results   []*domain.Business `json:"results"`
	Highlight int                `json:"highlight"`
	Error     string             `json:"error,omitempty"`
}

func (c *EngineController) session(ctx echo.Context) (*dashboard.Engine, error) {
	return c.service.Session(ctx.Param("session_id"))
}

func (c *EngineController) CreateSession(ctx echo.Context) error {
	e := c.service.CreateSession(ctx.Request().Context())
	return ctx.JSON(http.StatusCreated, sessionResponse{SessionID: e.ID})
}

func (c *EngineController) CloseSession(ctx echo.Context) error {
	if _, err := c.session(ctx); err != nil {
		return err
	}
	c.service.CloseSession(ctx.Request().Context(), ctx.Param("session_id"))
	return ctx.NoContent(http.StatusNoContent)
}

func (c *EngineController) SetFilters(ctx echo.Context) error {
	e, err := c.session(ctx)
	if err != nil {
		return err
	}

	req := new(filtersRequest)
	if err := ctx.Bind(req); err != nil {
		return err
	}
	if err := ctx.Validate(req); err != nil {
		return err
	}

	if req.City != nil {
		e.State.SetCity(*req.City)
	}
	if req.Category != nil {
		e.State.SetCategory(*req.Category)
	}
	if req.Rating != nil {
		e.State.SetRating(*req.Rating)
	}
	if req.Status != nil {
		switch *req.Status {
		case "open":
			open := true
			e.State.SetStatus(&open)
		case "closed":
			closed := false
			e.State.SetStatus(&closed)
		default:
			e.State.SetStatus(nil)
		}
	}
	if req.Granularity != nil {
		e.State.SetGranularity(domain.Granularity(*req.Granularity))
	}
	if req.Year != nil {
		e.State.SetYear(*req.Year)
	}

	return c.mapFrame(ctx, e)
}

func (c *EngineController) Reset(ctx echo.Context) error {
	e, err := c.session(ctx)
	if err != nil {
		return err
	}

	e.State.Reset()
	return c.mapFrame(ctx, e)
}

func (c *EngineController) Select(ctx echo.Context) error {
	e, err := c.session(ctx)
	if err != nil {
		return err
	}

	req := new(selectRequest)
	if err := ctx.Bind(req); err != nil {
		return err
	}
	if err := ctx.Validate(req); err != nil {
		return err
	}

	if err := e.SelectBusiness(req.BusinessID); err != nil {
		return err
	}
	return c.mapFrame(ctx, e)
}

func (c *EngineController) Deselect(ctx echo.Context) error {
	e, err := c.session(ctx)
	if err != nil {
		return err
	}

	e.State.Select(nil)
	return c.mapFrame(ctx, e)
}

func (c *EngineController) SetViewport(ctx echo.Context) error {
	e, err := c.session(ctx)
	if err != nil {
		return err
	}

	req := new(viewportRequest)
	if err := ctx.Bind(req); err != nil {
		return err
	}
	if err := ctx.Validate(req); err != nil {
		return err
	}

	e.Map.SetViewport(cluster.Bounds{
		MinLon: req.MinLon,
		MinLat: req.MinLat,
		MaxLon: req.MaxLon,
		MaxLat: req.MaxLat,
	}, req.Zoom)

	return c.mapFrame(ctx, e)
}

func (c *EngineController) ClickMarker(ctx echo.Context) error {
	e, err := c.session(ctx)
	if err != nil {
		return err
	}

	req := new(markerClickRequest)
	if err := ctx.Bind(req); err != nil {
		return err
	}

	e.Map.ClickMarker(cluster.Feature{
		ID:        req.ID,
		IsCluster: req.IsCluster,
		Lon:       req.Lon,
		Lat:       req.Lat,
		Count:     req.Count,
		PointIdx:  req.PointIdx,
	})

	return c.mapFrame(ctx, e)
}

func (c *EngineController) ClickBackground(ctx echo.Context) error {
	e, err := c.session(ctx)
	if err != nil {
		return err
	}

	e.Map.ClickBackground()
	return c.mapFrame(ctx, e)
}

func (c *EngineController) ZoomIn(ctx echo.Context) error {
	e, err := c.session(ctx)
	if err != nil {
		return err
	}

	e.Map.ZoomIn()
	return c.mapFrame(ctx, e)
}

func (c *EngineController) ZoomOut(ctx echo.Context) error {
	e, err := c.session(ctx)
	if err != nil {
		return err
	}

	e.Map.ZoomOut()
	return c.mapFrame(ctx, e)
}

func (c *EngineController) ResetOrientation(ctx echo.Context) error {
	e, err := c.session(ctx)
	if err != nil {
		return err
	}

	e.Map.ResetOrientation()
	return c.mapFrame(ctx, e)
}

func (c *EngineController) MapFrame(ctx echo.Context) error {
	e, err := c.session(ctx)
	if err != nil {
		return err
	}
	return c.mapFrame(ctx, e)
}

func (c *EngineController) mapFrame(ctx echo.Context, e *dashboard.Engine) error {
	features := e.Map.Features()
	views := make([]featureView, len(features))
	for i, f := range features {
		views[i] = featureView{
			ID:        f.ID,
			IsCluster: f.IsCluster,
			Lon:       f.Lon,
			Lat:       f.Lat,
			Count:     f.Count,
			PointIdx:  f.PointIdx,
		}
		if f.IsCluster {
			views[i].Radius = e.Map.RenderRadius(f.Count)
		}
	}

	var loadErr string
	if err := e.LoadError(); err != nil {
		loadErr = err.Error()
	}

	popupID, _ := e.Map.Popup()
	return ctx.JSON(http.StatusOK, mapFrameResponse{
		Camera:        e.Map.Camera(),
		Features:      views,
		Moves:         e.Map.Moves(),
		PopupID:       popupID,
		FilteredCount: e.Map.FilteredCount(),
		Error:         loadErr,
	})
}

func (c *EngineController) ScatterFrame(ctx echo.Context) error {
	e, err := c.session(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, scatterFrameResponse{Frame: e.Scatter.Frame()})
}

func (c *EngineController) TimelineFrame(ctx echo.Context) error {
	e, err := c.session(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, timelineFrameResponse{Frame: e.TimeSeries.Frame()})
}

func (c *EngineController) SetSearchQuery(ctx echo.Context) error {
	e, err := c.session(ctx)
	if err != nil {
		return err
	}

	req := new(searchQueryRequest)
	if err := ctx.Bind(req); err != nil {
		return err
	}

	e.Search.SetQuery(req.Query)
	return ctx.NoContent(http.StatusAccepted)
}

func (c *EngineController) SearchResults(ctx echo.Context) error {
	e, err := c.session(ctx)
	if err != nil {
		return err
	}
	return c.searchResults(ctx, e)
}

func (c *EngineController) searchResults(ctx echo.Context, e *dashboard.Engine) error {
	return ctx.JSON(http.StatusOK, searchResultsResponse{
		Results:   e.Search.Results(),
		Highlight: e.Search.Highlight(),
		Error:     e.Search.Err(),
	})
}

func (c *EngineController) SearchHighlightNext(ctx echo.Context) error {
	e, err := c.session(ctx)
	if err != nil {
		return err
	}

	e.Search.HighlightNext()
	return c.searchResults(ctx, e)
}

func (c *EngineController) SearchHighlightPrev(ctx echo.Context) error {
	e, err := c.session(ctx)
	if err != nil {
		return err
	}

	e.Search.HighlightPrev()
	return c.searchResults(ctx, e)
}

// SearchConfirm picks the highlighted result; the selection drives the
// camera, so the response is a map frame.
func (c *EngineController) SearchConfirm(ctx echo.Context) error {
	e, err := c.session(ctx)
	if err != nil {
		return err
	}

	e.Search.ConfirmHighlighted()
	return c.mapFrame(ctx, e)
}

func (c *EngineController) CloseSearch(ctx echo.Context) error {
	e, err := c.session(ctx)
	if err != nil {
		return err
	}

	e.Search.CloseList()
	return ctx.NoContent(http.StatusNoContent)
}
