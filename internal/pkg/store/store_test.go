package store

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ougirez/bizmap/internal/domain"
	"github.com/ougirez/bizmap/internal/pkg/constants"
	"github.com/ougirez/bizmap/internal/pkg/store/xpgx"
)

func newMockStore(t *testing.T) (Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return NewStore(xpgx.NewPool(mock)), mock
}

func businessRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"business_id", "name", "address", "city", "state",
		"latitude", "longitude", "stars", "review_count",
		"is_open", "categories", "photo_count", "created_at", "updated_at",
	})
}

func addBusinessRow(rows *pgxmock.Rows, id, name, city string, stars float64) *pgxmock.Rows {
	lat, lon := 39.95, -75.16
	photos := 5
	now := time.Now()
	return rows.AddRow(id, name, "123 Main St", city, "PA",
		&lat, &lon, stars, 100, 1, "Pizza, Restaurants", &photos, now, now)
}

func TestListBusinessesAppliesFiltersAndOrder(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .+ FROM businesses WHERE state = \$1 AND city = \$2 ORDER BY stars desc, review_count desc`).
		WithArgs("PA", "Philadelphia").
		WillReturnRows(addBusinessRow(addBusinessRow(businessRows(),
			"1", "Joe's Pizza", "Philadelphia", 4.5),
			"2", "South St Bar", "Philadelphia", 2))

	businesses, err := s.ListBusinesses(context.Background(), ListBusinessesOpts{
		State: "PA",
		City:  "Philadelphia",
		Limit: 100,
	})
	require.NoError(t, err)
	require.Len(t, businesses, 2)
	assert.Equal(t, "Joe's Pizza", businesses[0].Name)
	assert.Equal(t, 4.5, businesses[0].Stars)
	require.NotNil(t, businesses[0].Latitude)
	assert.Equal(t, 39.95, *businesses[0].Latitude)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBusinessByIDNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .+ FROM businesses WHERE business_id = \$1`).
		WithArgs("missing").
		WillReturnRows(businessRows())

	_, err := s.GetBusinessByID(context.Background(), "missing")
	assert.ErrorIs(t, err, constants.ErrDBNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestViewportQueryBoundsCoordinates(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .+ FROM businesses WHERE latitude IS NOT NULL AND latitude >= \$1 AND latitude <= \$2 AND longitude >= \$3 AND longitude <= \$4`).
		WithArgs(39.0, 41.0, -76.0, -74.0).
		WillReturnRows(addBusinessRow(businessRows(), "1", "Joe's Pizza", "Philadelphia", 4.5))

	businesses, err := s.ListBusinessesInViewport(context.Background(), ViewportOpts{
		South: 39.0, North: 41.0, West: -76.0, East: -74.0,
	})
	require.NoError(t, err)
	assert.Len(t, businesses, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchBusinessesMatchesEveryTerm(t *testing.T) {
	s, mock := newMockStore(t)

	// Two terms: each produces a 4-column ILIKE disjunction; the
	// similarity ranking argument comes last.
	mock.ExpectQuery(`SELECT .+ FROM businesses WHERE \(name ILIKE .+ ORDER BY similarity\(name, \$9\) desc`).
		WillReturnRows(addBusinessRow(businessRows(), "1", "Joe's Pizza", "Philadelphia", 4.5))

	businesses, err := s.SearchBusinesses(context.Background(), "joe pizza", 0, 10)
	require.NoError(t, err)
	assert.Len(t, businesses, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCityRatingsTimeline(t *testing.T) {
	s, mock := newMockStore(t)

	rows := pgxmock.NewRows([]string{"period_start", "avg_rating", "avg_sentiment", "review_count"}).
		AddRow("2020-01-01", 3.8, 0.4, 120).
		AddRow("2021-01-01", 4.1, 0.5, 90)

	mock.ExpectQuery(`SELECT date_trunc\('year', r\.date\).+ FROM reviews r JOIN businesses b`).
		WithArgs("Philadelphia", "PA").
		WillReturnRows(rows)

	points, err := s.CityRatingsTimeline(context.Background(), "PA", "Philadelphia",
		TimelineOpts{Period: domain.GranularityYear})
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "2020-01-01", points[0].PeriodStart)
	assert.Equal(t, 4.1, points[1].AvgRating)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListReviewsByBusinessOrdersNewestFirst(t *testing.T) {
	s, mock := newMockStore(t)

	rows := pgxmock.NewRows([]string{
		"review_id", "business_id", "stars", "date",
		"sentiment_score", "sentiment_expected", "created_at",
	}).
		AddRow("r2", "1", 4.0, time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC), nil, nil, time.Now()).
		AddRow("r1", "1", 5.0, time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC), nil, nil, time.Now())

	mock.ExpectQuery(`SELECT .+ FROM reviews WHERE business_id = \$1 ORDER BY date desc`).
		WithArgs("1").
		WillReturnRows(rows)

	reviews, err := s.ListReviewsByBusiness(context.Background(), "1", 0, 50)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, "r2", reviews[0].ReviewID)
	assert.Equal(t, 4.0, reviews[0].Stars)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertBusinessesUpserts(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO businesses .+on conflict \(business_id\) do update`).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))

	lat, lon := 39.95, -75.16
	inserted, err := s.InsertBusinesses(context.Background(), []*domain.Business{
		{BusinessID: "1", Name: "Joe's Pizza", City: "Philadelphia", State: "PA", Latitude: &lat, Longitude: &lon},
		{BusinessID: "2", Name: "South St Bar", City: "Philadelphia", State: "PA"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
