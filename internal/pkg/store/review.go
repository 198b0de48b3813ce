package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/ougirez/bizmap/internal/domain"
	"github.com/ougirez/bizmap/internal/pkg/logger"
	"github.com/ougirez/bizmap/internal/pkg/store/xpgx"
)

// timelineBase is the shared shape of every timeline aggregation:
// date_trunc buckets over reviews, averaged per bucket, ordered by
// period ascending. Period is validated upstream so interpolating it
// into date_trunc is safe.
func timelineBase(period domain.Granularity, opts TimelineOpts) sq.SelectBuilder {
	query := builder().Select(
		fmt.Sprintf("date_trunc('%s', r.date)::date::text as period_start", period),
		"round(avg(r.stars)::numeric, 2)::float8 as avg_rating",
		"round(coalesce(avg(r.sentiment_score), 0)::numeric, 3)::float8 as avg_sentiment",
		"count(*) as review_count",
	).
		From(tableReviews + " r").
		GroupBy("period_start").
		OrderBy("period_start")

	if opts.StartDate != "" {
		query = query.Where(sq.GtOrEq{"r.date": opts.StartDate})
	}
	if opts.EndDate != "" {
		query = query.Where(sq.LtOrEq{"r.date": opts.EndDate})
	}

	return query
}

func (s *store) timeline(ctx context.Context, query sq.SelectBuilder) ([]*domain.TimelinePoint, error) {
	points, err := xpgx.Selectx[domain.TimelinePoint](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}
	return points, nil
}

func (s *store) BusinessRatingsTimeline(ctx context.Context, businessID string, opts TimelineOpts) ([]*domain.TimelinePoint, error) {
	query := timelineBase(opts.Period, opts).
		Where(sq.Eq{"r.business_id": businessID})

	return s.timeline(ctx, query)
}

func (s *store) BusinessSentimentTimeline(ctx context.Context, businessID string, opts TimelineOpts) ([]*domain.TimelinePoint, error) {
	query := timelineBase(opts.Period, opts).
		Where(sq.Eq{"r.business_id": businessID}).
		Where(sq.NotEq{"r.sentiment_score": nil})

	return s.timeline(ctx, query)
}

func (s *store) CityRatingsTimeline(ctx context.Context, state, city string, opts TimelineOpts) ([]*domain.TimelinePoint, error) {
	query := timelineBase(opts.Period, opts).
		Join(tableBusinesses + " b on b.business_id = r.business_id").
		Where(sq.Eq{"b.state": state, "b.city": city})

	return s.timeline(ctx, query)
}

func (s *store) StateRatingsTimeline(ctx context.Context, state string, opts TimelineOpts) ([]*domain.TimelinePoint, error) {
	query := timelineBase(opts.Period, opts).
		Join(tableBusinesses + " b on b.business_id = r.business_id").
		Where(sq.Eq{"b.state": state})

	return s.timeline(ctx, query)
}

func (s *store) CategoryRatingsTimeline(ctx context.Context, category string, opts TimelineOpts) ([]*domain.TimelinePoint, error) {
	query := timelineBase(opts.Period, opts).
		Join(tableBusinesses + " b on b.business_id = r.business_id").
		Where(sq.ILike{"b.categories": "%" + category + "%"})

	return s.timeline(ctx, query)
}

var reviewColumns = []string{
	"review_id", "business_id", "stars", "date",
	"sentiment_score", "sentiment_expected", "created_at",
}

func (s *store) ListReviewsByBusiness(ctx context.Context, businessID string, skip, limit int) ([]*domain.Review, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := builder().Select(reviewColumns...).
		From(tableReviews).
		Where(sq.Eq{"business_id": businessID}).
		OrderBy("date desc").
		Offset(uint64(skip)).
		Limit(uint64(limit))

	reviews, err := xpgx.Selectx[domain.Review](ctx, s.pool, query)
	if err != nil {
		return nil, wrapErr(err)
	}
	return reviews, nil
}

func (s *store) InsertReviews(ctx context.Context, reviews []*domain.Review) (int64, error) {
	var inserted int64

	for start := 0; start < len(reviews); start += insertChunkSize {
		end := start + insertChunkSize
		if end > len(reviews) {
			end = len(reviews)
		}

		query := builder().Insert(tableReviews).
			Columns("review_id", "business_id", "stars", "date",
				"sentiment_score", "sentiment_expected").
			Suffix(`on conflict (review_id) do nothing`)
		for _, r := range reviews[start:end] {
			query = query.Values(r.ReviewID, r.BusinessID, r.Stars, r.Date,
				r.SentimentScore, r.SentimentExpected)
		}

		tag, err := s.pool.Execx(ctx, query)
		if err != nil {
			logger.Errorf(ctx, "insert reviews chunk at %d: %s", start, err.Error())
			return inserted, fmt.Errorf("insert reviews chunk at %d: %w", start, err)
		}
		inserted += tag.RowsAffected()
	}

	return inserted, nil
}
