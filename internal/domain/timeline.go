package domain

// Granularity is the time bucket size for timeline aggregation. The
// store accepts any date_trunc period; the dashboard only exposes
// month and year.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
	GranularityYear  Granularity = "year"
)

func (g Granularity) Valid() bool {
	switch g {
	case GranularityDay, GranularityWeek, GranularityMonth, GranularityYear:
		return true
	}
	return false
}

// TimelinePoint is one aggregated sample, ordered by PeriodStart
// ascending in every series.
type TimelinePoint struct {
	PeriodStart  string  `db:"period_start" json:"period_start"`
	AvgRating    float64 `db:"avg_rating" json:"avg_rating"`
	AvgSentiment float64 `db:"avg_sentiment" json:"avg_sentiment,omitempty"`
	ReviewCount  int     `db:"review_count" json:"review_count"`
}

// Timeline is a named series plus the metadata the UI renders in the
// legend.
type Timeline struct {
	Metric string          `json:"metric"`
	Period Granularity     `json:"period"`
	Label  string          `json:"label,omitempty"`
	Data   []TimelinePoint `json:"data"`
}
