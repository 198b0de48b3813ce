package domain

import "time"

// Review backs the timeline aggregations; the dashboard never loads
// raw reviews, only the aggregated series.
type Review struct {
	ReviewID          string    `db:"review_id" json:"review_id"`
	BusinessID        string    `db:"business_id" json:"business_id"`
	Stars             float64   `db:"stars" json:"stars"`
	Date              time.Time `db:"date" json:"date"`
	SentimentScore    *float64  `db:"sentiment_score" json:"sentiment_score,omitempty"`
	SentimentExpected *float64  `db:"sentiment_expected" json:"sentiment_expected,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"-"`
}
