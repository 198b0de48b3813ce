package store

import (
	"context"

	"github.com/ougirez/bizmap/internal/domain"
	"github.com/ougirez/bizmap/internal/domain/dto"
	"github.com/ougirez/bizmap/internal/pkg/store/xpgx"
)

type Store interface {
	ListBusinesses(ctx context.Context, opts ListBusinessesOpts) ([]*domain.Business, error)
	ListBusinessesInViewport(ctx context.Context, opts ViewportOpts) ([]*domain.Business, error)
	SearchBusinesses(ctx context.Context, query string, skip, limit int) ([]*domain.Business, error)
	GetBusinessByID(ctx context.Context, id string) (*domain.Business, error)

	ListStates(ctx context.Context) ([]string, error)
	ListCities(ctx context.Context, state string) ([]string, error)
	LocationsSummary(ctx context.Context) ([]*dto.StateSummary, error)

	BusinessRatingsTimeline(ctx context.Context, businessID string, opts TimelineOpts) ([]*domain.TimelinePoint, error)
	BusinessSentimentTimeline(ctx context.Context, businessID string, opts TimelineOpts) ([]*domain.TimelinePoint, error)
	CityRatingsTimeline(ctx context.Context, state, city string, opts TimelineOpts) ([]*domain.TimelinePoint, error)
	StateRatingsTimeline(ctx context.Context, state string, opts TimelineOpts) ([]*domain.TimelinePoint, error)
	CategoryRatingsTimeline(ctx context.Context, category string, opts TimelineOpts) ([]*domain.TimelinePoint, error)

	ListReviewsByBusiness(ctx context.Context, businessID string, skip, limit int) ([]*domain.Review, error)

	InsertBusinesses(ctx context.Context, businesses []*domain.Business) (int64, error)
	InsertReviews(ctx context.Context, reviews []*domain.Review) (int64, error)
}

type ListBusinessesOpts struct {
	State string
	City  string
	Skip  int
	Limit int
}

type ViewportOpts struct {
	South float64
	North float64
	West  float64
	East  float64
	Limit int
}

// TimelineOpts narrows a timeline aggregation. Period must be a valid
// granularity; the dates are inclusive YYYY-MM-DD bounds.
type TimelineOpts struct {
	Period    domain.Granularity
	StartDate string
	EndDate   string
}

type store struct {
	pool *xpgx.Pool
}

func NewStore(pool *xpgx.Pool) Store {
	return &store{pool: pool}
}
