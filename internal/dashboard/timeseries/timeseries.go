// Package timeseries drives the ratings-over-time chart: it reacts to
// filter and selection changes by fetching the matching analytics
// series and merging them onto one time axis.
package timeseries

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ougirez/bizmap/internal/client"
	"github.com/ougirez/bizmap/internal/dashboard/records"
	"github.com/ougirez/bizmap/internal/dashboard/state"
	"github.com/ougirez/bizmap/internal/domain"
	"github.com/ougirez/bizmap/internal/domain/dto"
	"github.com/ougirez/bizmap/internal/pkg/logger"
)

// Series keys, stable for the renderer's color mapping.
const (
	SeriesBusinessRating    = "business_rating"
	SeriesBusinessSentiment = "business_sentiment"
	SeriesCityAverage       = "city_average"
	SeriesCityFlatAverage   = "city_flat_average"
	SeriesCategoryAverage   = "category_average"
)

// Point is one sample on the shared time axis. Periods a series has no
// data for are zero-filled so every series spans the full axis.
type Point struct {
	PeriodStart string  `json:"period_start"`
	Value       float64 `json:"value"`
}

type Series struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Data  []Point `json:"data"`
}

// Frame is one complete chart render. Error is set when at least one
// series fetch failed, so the chart can show an inline notice instead
// of passing a partial frame off as complete.
type Frame struct {
	Title  string             `json:"title"`
	Period domain.Granularity `json:"period"`
	Series []Series           `json:"series"`
	Error  string             `json:"error,omitempty"`
}

// View fetches asynchronously; a monotonic sequence number discards
// responses that arrive after a newer request has been issued.
type View struct {
	mu      sync.Mutex
	api     client.API
	store   *state.Store
	records *records.Store

	seq   uint64
	frame Frame
}

func New(api client.API, store *state.Store, recs *records.Store) *View {
	v := &View{api: api, store: store, records: recs}
	store.Subscribe(v.onState)
	v.onState(store.Get())
	return v
}

func (v *View) onState(snap state.Snapshot) {
	v.mu.Lock()
	v.seq++
	seq := v.seq
	v.mu.Unlock()

	go v.fetch(context.Background(), seq, snap)
}

// Frame returns the last successfully derived chart.
func (v *View) Frame() Frame {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.frame
}

// fetch builds the frame for snap and installs it unless a newer
// request has been issued in the meantime.
func (v *View) fetch(ctx context.Context, seq uint64, snap state.Snapshot) {
	frame := v.buildFrame(ctx, snap)

	v.mu.Lock()
	defer v.mu.Unlock()
	if seq != v.seq {
		return
	}
	v.frame = frame
}

func (v *View) buildFrame(ctx context.Context, snap state.Snapshot) Frame {
	g := snap.Criteria.Granularity
	if !g.Valid() {
		g = domain.GranularityYear
	}

	switch {
	case snap.Selected != nil:
		return v.businessFrame(ctx, snap, g)
	case snap.Criteria.City != "":
		return v.cityFrame(ctx, snap, g)
	case snap.Criteria.Category != "":
		return v.categoryFrame(ctx, snap, g)
	default:
		return Frame{Period: g}
	}
}

// businessFrame charts the selected business against its city and
// primary category. The four series fetch concurrently; a failed leg
// is logged and dropped rather than blanking the chart.
func (v *View) businessFrame(ctx context.Context, snap state.Snapshot, g domain.Granularity) Frame {
	b := snap.Selected

	var rating, sentiment, city, category *dto.TimelineResponse
	var ratingErr, sentimentErr, cityErr, categoryErr error
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		rating, ratingErr = v.fetchTimeline(egCtx, func() (*dto.TimelineResponse, error) {
			return v.api.BusinessTimeline(egCtx, b.BusinessID, "ratings", g)
		})
		return nil
	})
	eg.Go(func() error {
		sentiment, sentimentErr = v.fetchTimeline(egCtx, func() (*dto.TimelineResponse, error) {
			return v.api.BusinessTimeline(egCtx, b.BusinessID, "sentiment", g)
		})
		return nil
	})
	eg.Go(func() error {
		city, cityErr = v.fetchTimeline(egCtx, func() (*dto.TimelineResponse, error) {
			return v.api.CityTimeline(egCtx, b.State, b.City, g)
		})
		return nil
	})
	if primary := b.PrimaryCategory(); primary != "" {
		eg.Go(func() error {
			category, categoryErr = v.fetchTimeline(egCtx, func() (*dto.TimelineResponse, error) {
				return v.api.CategoryTimeline(egCtx, primary, g)
			})
			return nil
		})
	}
	_ = eg.Wait()

	var series []rawSeries
	if rating != nil {
		series = append(series, rawSeries{SeriesBusinessRating, b.Name + " rating", ratingPoints(rating.Data)})
	}
	if sentiment != nil {
		series = append(series, rawSeries{SeriesBusinessSentiment, b.Name + " sentiment", sentimentPoints(sentiment.Data)})
	}
	if city != nil {
		series = append(series, rawSeries{SeriesCityAverage, b.City + " average", ratingPoints(city.Data)})
	}
	if category != nil {
		series = append(series, rawSeries{SeriesCategoryAverage, category.Category + " average", ratingPoints(category.Data)})
	}

	frame := Frame{Title: b.Name, Period: g, Error: fetchError(ratingErr, sentimentErr, cityErr, categoryErr)}
	return v.merge(frame, snap.Criteria, series)
}

// cityFrame charts the filtered city's average, the flat average of the
// currently filtered businesses as a reference line, and the category
// average when a category filter is active.
func (v *View) cityFrame(ctx context.Context, snap state.Snapshot, g domain.Granularity) Frame {
	cityName := snap.Criteria.City
	stateCode := v.stateOf(cityName)

	var city, category *dto.TimelineResponse
	var cityErr, categoryErr error
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		city, cityErr = v.fetchTimeline(egCtx, func() (*dto.TimelineResponse, error) {
			return v.api.CityTimeline(egCtx, stateCode, cityName, g)
		})
		return nil
	})
	if snap.Criteria.Category != "" {
		eg.Go(func() error {
			category, categoryErr = v.fetchTimeline(egCtx, func() (*dto.TimelineResponse, error) {
				return v.api.CategoryTimeline(egCtx, snap.Criteria.Category, g)
			})
			return nil
		})
	}
	_ = eg.Wait()

	var series []rawSeries
	if city != nil {
		cityPts := ratingPoints(city.Data)
		series = append(series, rawSeries{SeriesCityAverage, cityName + " average", cityPts})
		if flat, ok := v.filteredMean(snap.Criteria); ok {
			series = append(series, rawSeries{SeriesCityFlatAverage, cityName + " filtered average", broadcast(flat, cityPts)})
		}
	}
	if category != nil {
		series = append(series, rawSeries{SeriesCategoryAverage, snap.Criteria.Category + " average", ratingPoints(category.Data)})
	}

	frame := Frame{Title: cityName, Period: g, Error: fetchError(cityErr, categoryErr)}
	return v.merge(frame, snap.Criteria, series)
}

func (v *View) categoryFrame(ctx context.Context, snap state.Snapshot, g domain.Granularity) Frame {
	category, err := v.fetchTimeline(ctx, func() (*dto.TimelineResponse, error) {
		return v.api.CategoryTimeline(ctx, snap.Criteria.Category, g)
	})

	var series []rawSeries
	if category != nil {
		series = append(series, rawSeries{SeriesCategoryAverage, snap.Criteria.Category + " average", ratingPoints(category.Data)})
	}
	frame := Frame{Title: snap.Criteria.Category, Period: g, Error: fetchError(err)}
	return v.merge(frame, snap.Criteria, series)
}

func (v *View) fetchTimeline(ctx context.Context, call func() (*dto.TimelineResponse, error)) (*dto.TimelineResponse, error) {
	resp, err := call()
	if err != nil {
		logger.Warnf(ctx, "timeline fetch failed: %s", err.Error())
		return nil, err
	}
	return resp, nil
}

// fetchError reduces leg failures to the single inline message the
// chart renders; a frame with no failed legs carries none.
func fetchError(errs ...error) string {
	for _, err := range errs {
		if err != nil {
			return "some series failed to load"
		}
	}
	return ""
}

// filteredMean is the present-day average star rating of the businesses
// the active filters match. It is deliberately not a historical
// aggregate: the reference line answers "how does this period compare
// to the businesses on screen right now".
func (v *View) filteredMean(c state.Criteria) (float64, bool) {
	matched := state.Filter(c, v.records.All())
	if len(matched) == 0 {
		return 0, false
	}

	var sum float64
	for _, b := range matched {
		sum += b.Stars
	}
	return sum / float64(len(matched)), true
}

// stateOf resolves a city's state code from the loaded records, needed
// because the city timeline endpoint is state-scoped.
func (v *View) stateOf(city string) string {
	for _, b := range v.records.All() {
		if b.City == city {
			return b.State
		}
	}
	return ""
}

type rawSeries struct {
	key    string
	label  string
	points []Point
}

// merge aligns all series on the union of period starts, zero-filling
// gaps, and applies the month-granularity year window.
func (v *View) merge(frame Frame, criteria state.Criteria, series []rawSeries) Frame {
	yearPrefix := ""
	if criteria.Granularity == domain.GranularityMonth && criteria.Year != 0 {
		yearPrefix = fmt.Sprintf("%04d", criteria.Year)
	}

	periodSet := map[string]struct{}{}
	for _, s := range series {
		for _, p := range s.points {
			if yearPrefix != "" && !strings.HasPrefix(p.PeriodStart, yearPrefix) {
				continue
			}
			periodSet[p.PeriodStart] = struct{}{}
		}
	}

	periods := make([]string, 0, len(periodSet))
	for p := range periodSet {
		periods = append(periods, p)
	}
	sort.Strings(periods)

	for _, s := range series {
		byPeriod := make(map[string]float64, len(s.points))
		for _, p := range s.points {
			byPeriod[p.PeriodStart] = p.Value
		}

		aligned := make([]Point, len(periods))
		for i, period := range periods {
			aligned[i] = Point{PeriodStart: period, Value: byPeriod[period]}
		}
		frame.Series = append(frame.Series, Series{Key: s.key, Label: s.label, Data: aligned})
	}

	return frame
}

func ratingPoints(data []domain.TimelinePoint) []Point {
	out := make([]Point, len(data))
	for i, p := range data {
		out[i] = Point{PeriodStart: p.PeriodStart, Value: p.AvgRating}
	}
	return out
}

func sentimentPoints(data []domain.TimelinePoint) []Point {
	out := make([]Point, len(data))
	for i, p := range data {
		out[i] = Point{PeriodStart: p.PeriodStart, Value: p.AvgSentiment}
	}
	return out
}

func broadcast(value float64, axis []Point) []Point {
	out := make([]Point, len(axis))
	for i, p := range axis {
		out[i] = Point{PeriodStart: p.PeriodStart, Value: value}
	}
	return out
}
