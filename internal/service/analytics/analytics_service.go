// Package analytics serves the review-derived timeline aggregations.
package analytics

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ougirez/bizmap/internal/domain"
	"github.com/ougirez/bizmap/internal/domain/dto"
	"github.com/ougirez/bizmap/internal/pkg/store"
)

type Service struct {
	store store.Store
}

func NewAnalyticsService(s store.Store) *Service {
	return &Service{store: s}
}

// timelineOpts normalizes the request: period defaults to month, the
// granularity the charts open with.
func timelineOpts(req *dto.TimelineRequest) store.TimelineOpts {
	period := domain.Granularity(req.Period)
	if !period.Valid() {
		period = domain.GranularityMonth
	}

	return store.TimelineOpts{
		Period:    period,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
}

func (s *Service) BusinessRatingsTimeline(ctx context.Context, businessID string, req *dto.TimelineRequest) (*dto.TimelineResponse, error) {
	b, err := s.store.GetBusinessByID(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("get business %s: %w", businessID, err)
	}

	opts := timelineOpts(req)
	points, err := s.store.BusinessRatingsTimeline(ctx, businessID, opts)
	if err != nil {
		return nil, err
	}

	return &dto.TimelineResponse{
		BusinessID:   b.BusinessID,
		BusinessName: b.Name,
		City:         b.City,
		State:        b.State,
		Period:       opts.Period,
		Metric:       "avg_rating",
		Data:         roundPoints(points),
	}, nil
}

func (s *Service) BusinessSentimentTimeline(ctx context.Context, businessID string, req *dto.TimelineRequest) (*dto.TimelineResponse, error) {
	b, err := s.store.GetBusinessByID(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("get business %s: %w", businessID, err)
	}

	opts := timelineOpts(req)
	points, err := s.store.BusinessSentimentTimeline(ctx, businessID, opts)
	if err != nil {
		return nil, err
	}

	return &dto.TimelineResponse{
		BusinessID:   b.BusinessID,
		BusinessName: b.Name,
		City:         b.City,
		State:        b.State,
		Period:       opts.Period,
		Metric:       "avg_sentiment",
		Data:         roundPoints(points),
	}, nil
}

// BusinessCityComparison pairs the business series with its own city's
// average over the same window; the two legs fetch concurrently.
func (s *Service) BusinessCityComparison(ctx context.Context, businessID string, req *dto.TimelineRequest) (*dto.ComparisonResponse, error) {
	b, err := s.store.GetBusinessByID(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("get business %s: %w", businessID, err)
	}

	opts := timelineOpts(req)

	var businessData, cityData []*domain.TimelinePoint
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var egErr error
		businessData, egErr = s.store.BusinessRatingsTimeline(egCtx, businessID, opts)
		return egErr
	})
	eg.Go(func() error {
		var egErr error
		cityData, egErr = s.store.CityRatingsTimeline(egCtx, b.State, b.City, opts)
		return egErr
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return &dto.ComparisonResponse{
		BusinessID:   b.BusinessID,
		BusinessName: b.Name,
		City:         b.City,
		State:        b.State,
		Period:       opts.Period,
		Metric:       "avg_rating",
		BusinessData: roundPoints(businessData),
		CityAverage:  roundPoints(cityData),
	}, nil
}

// BusinessStateComparison pairs the business series with its state's
// average, the wider reference for businesses in small cities.
func (s *Service) BusinessStateComparison(ctx context.Context, businessID string, req *dto.TimelineRequest) (*dto.StateComparisonResponse, error) {
	b, err := s.store.GetBusinessByID(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("get business %s: %w", businessID, err)
	}

	opts := timelineOpts(req)

	var businessData, stateData []*domain.TimelinePoint
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var egErr error
		businessData, egErr = s.store.BusinessRatingsTimeline(egCtx, businessID, opts)
		return egErr
	})
	eg.Go(func() error {
		var egErr error
		stateData, egErr = s.store.StateRatingsTimeline(egCtx, b.State, opts)
		return egErr
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return &dto.StateComparisonResponse{
		BusinessID:   b.BusinessID,
		BusinessName: b.Name,
		State:        b.State,
		Period:       opts.Period,
		Metric:       "avg_rating",
		BusinessData: roundPoints(businessData),
		StateAverage: roundPoints(stateData),
	}, nil
}

func (s *Service) CityRatingsTimeline(ctx context.Context, state, city string, req *dto.TimelineRequest) (*dto.TimelineResponse, error) {
	opts := timelineOpts(req)
	points, err := s.store.CityRatingsTimeline(ctx, state, city, opts)
	if err != nil {
		return nil, err
	}

	return &dto.TimelineResponse{
		City:   city,
		State:  state,
		Period: opts.Period,
		Metric: "avg_rating",
		Data:   roundPoints(points),
	}, nil
}

func (s *Service) StateRatingsTimeline(ctx context.Context, state string, req *dto.TimelineRequest) (*dto.TimelineResponse, error) {
	opts := timelineOpts(req)
	points, err := s.store.StateRatingsTimeline(ctx, state, opts)
	if err != nil {
		return nil, err
	}

	return &dto.TimelineResponse{
		State:  state,
		Period: opts.Period,
		Metric: "avg_rating",
		Data:   roundPoints(points),
	}, nil
}

func (s *Service) CategoryRatingsTimeline(ctx context.Context, category string, req *dto.TimelineRequest) (*dto.TimelineResponse, error) {
	opts := timelineOpts(req)
	points, err := s.store.CategoryRatingsTimeline(ctx, category, opts)
	if err != nil {
		return nil, err
	}

	return &dto.TimelineResponse{
		Category: category,
		Period:   opts.Period,
		Metric:   "avg_rating",
		Data:     roundPoints(points),
	}, nil
}

// roundPoints normalizes averages to the precision the charts expect,
// independent of what the underlying aggregation produced.
func roundPoints(points []*domain.TimelinePoint) []domain.TimelinePoint {
	out := make([]domain.TimelinePoint, len(points))
	for i, p := range points {
		out[i] = *p
		out[i].AvgRating, _ = decimal.NewFromFloat(p.AvgRating).Round(2).Float64()
		out[i].AvgSentiment, _ = decimal.NewFromFloat(p.AvgSentiment).Round(3).Float64()
	}
	return out
}
