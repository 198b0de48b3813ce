package store

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/ougirez/bizmap/internal/domain"
	"github.com/ougirez/bizmap/internal/domain/dto"
	"github.com/ougirez/bizmap/internal/pkg/logger"
	"github.com/ougirez/bizmap/internal/pkg/store/xpgx"
)

const (
	defaultListLimit     = 100
	defaultViewportLimit = 5000
	insertChunkSize      = 500
)

var businessColumns = []string{
	"business_id", "name", "address", "city", "state",
	"latitude", "longitude", "stars", "review_count",
	"is_open", "categories", "photo_count", "created_at", "updated_at",
}

func (s *store) ListBusinesses(ctx context.Context, opts ListBusinessesOpts) ([]*domain.Business, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := builder().Select(businessColumns...).
		From(tableBusinesses).
		OrderBy("stars desc", "review_count desc").
		Offset(uint64(opts.Skip)).
		Limit(uint64(limit))
	if opts.State != "" {
		query = query.Where(sq.Eq{"state": opts.State})
	}
	if opts.City != "" {
		query = query.Where(sq.Eq{"city": opts.City})
	}

	selected, err := xpgx.Selectx[domain.Business](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}
	return selected, nil
}

func (s *store) ListBusinessesInViewport(ctx context.Context, opts ViewportOpts) ([]*domain.Business, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultViewportLimit
	}

	query := builder().Select(businessColumns...).
		From(tableBusinesses).
		Where(sq.NotEq{"latitude": nil}).
		Where(sq.GtOrEq{"latitude": opts.South}).
		Where(sq.LtOrEq{"latitude": opts.North}).
		Where(sq.GtOrEq{"longitude": opts.West}).
		Where(sq.LtOrEq{"longitude": opts.East}).
		OrderBy("review_count desc").
		Limit(uint64(limit))

	selected, err := xpgx.Selectx[domain.Business](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}
	return selected, nil
}

// SearchBusinesses matches every whitespace-separated term against
// name, categories, city and address, ranking by trigram similarity of
// the name to the full query, then by rating.
func (s *store) SearchBusinesses(ctx context.Context, searchQuery string, skip, limit int) ([]*domain.Business, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := builder().Select(businessColumns...).
		From(tableBusinesses).
		OrderByClause("similarity(name, ?) desc", searchQuery).
		OrderBy("stars desc", "review_count desc").
		Offset(uint64(skip)).
		Limit(uint64(limit))

	for _, term := range strings.Fields(searchQuery) {
		pattern := "%" + term + "%"
		query = query.Where(sq.Or{
			sq.ILike{"name": pattern},
			sq.ILike{"categories": pattern},
			sq.ILike{"city": pattern},
			sq.ILike{"address": pattern},
		})
	}

	selected, err := xpgx.Selectx[domain.Business](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}
	return selected, nil
}

func (s *store) GetBusinessByID(ctx context.Context, id string) (*domain.Business, error) {
	query := builder().Select(businessColumns...).
		From(tableBusinesses).
		Where(sq.Eq{"business_id": id})

	selected, err := xpgx.Getx[domain.Business](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}
	return selected, nil
}

func (s *store) ListStates(ctx context.Context) ([]string, error) {
	query := builder().Select("distinct state").
		From(tableBusinesses).
		OrderBy("state")

	states, err := xpgx.Scalarsx[string](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}
	return states, nil
}

func (s *store) ListCities(ctx context.Context, state string) ([]string, error) {
	query := builder().Select("distinct city").
		From(tableBusinesses).
		Where(sq.Eq{"state": state}).
		OrderBy("city")

	cities, err := xpgx.Scalarsx[string](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}
	return cities, nil
}

type stateCity struct {
	State string `db:"state"`
	City  string `db:"city"`
}

func (s *store) LocationsSummary(ctx context.Context) ([]*dto.StateSummary, error) {
	summaryQuery := builder().
		Select("state", "count(*) as business_count", "round(avg(stars)::numeric, 2)::float8 as avg_stars").
		From(tableBusinesses).
		GroupBy("state").
		OrderBy("state")

	summaries, err := xpgx.Selectx[dto.StateSummary](ctx, s.pool, summaryQuery)
	if err != nil {
		return nil, wrapErr(err)
	}

	citiesQuery := builder().Select("distinct state", "city").
		From(tableBusinesses).
		OrderBy("state", "city")

	pairs, err := xpgx.Selectx[stateCity](ctx, s.pool, citiesQuery)
	if err != nil {
		return nil, wrapErr(err)
	}

	byState := make(map[string]*dto.StateSummary, len(summaries))
	for _, summary := range summaries {
		byState[summary.State] = summary
	}
	for _, pair := range pairs {
		if summary, ok := byState[pair.State]; ok {
			summary.Cities = append(summary.Cities, pair.City)
		}
	}

	return summaries, nil
}

// InsertBusinesses upserts in chunks; re-seeding the same dataset
// updates rows in place instead of duplicating them.
func (s *store) InsertBusinesses(ctx context.Context, businesses []*domain.Business) (int64, error) {
	var inserted int64

	for start := 0; start < len(businesses); start += insertChunkSize {
		end := start + insertChunkSize
		if end > len(businesses) {
			end = len(businesses)
		}

		query := builder().Insert(tableBusinesses).
			Columns("business_id", "name", "address", "city", "state",
				"latitude", "longitude", "stars", "review_count",
				"is_open", "categories", "photo_count").
			Suffix(`on conflict (business_id) do update set
				name=excluded.name, address=excluded.address, city=excluded.city,
				state=excluded.state, latitude=excluded.latitude, longitude=excluded.longitude,
				stars=excluded.stars, review_count=excluded.review_count,
				is_open=excluded.is_open, categories=excluded.categories,
				photo_count=excluded.photo_count, updated_at=now()`)
		for _, b := range businesses[start:end] {
			query = query.Values(b.BusinessID, b.Name, b.Address, b.City, b.State,
				b.Latitude, b.Longitude, b.Stars, b.ReviewCount,
				b.IsOpen, b.Categories, b.PhotoCount)
		}

		tag, err := s.pool.Execx(ctx, query)
		if err != nil {
			logger.Errorf(ctx, "insert businesses chunk at %d: %s", start, err.Error())
			return inserted, fmt.Errorf("insert businesses chunk at %d: %w", start, err)
		}
		inserted += tag.RowsAffected()
	}

	return inserted, nil
}
