package dto

import "github.com/ougirez/bizmap/internal/domain"

// TimelineResponse is the envelope every timeline endpoint returns.
// Exactly one of the scope fields (business, city+state, state,
// category) is populated.
type TimelineResponse struct {
	BusinessID   string                 `json:"business_id,omitempty"`
	BusinessName string                 `json:"business_name,omitempty"`
	City         string                 `json:"city,omitempty"`
	State        string                 `json:"state,omitempty"`
	Category     string                 `json:"category,omitempty"`
	Period       domain.Granularity     `json:"period"`
	Metric       string                 `json:"metric"`
	Data         []domain.TimelinePoint `json:"data"`
}

// ComparisonResponse pairs a business series with its city average for
// side-by-side charts.
type ComparisonResponse struct {
	BusinessID   string                 `json:"business_id"`
	BusinessName string                 `json:"business_name"`
	City         string                 `json:"city"`
	State        string                 `json:"state"`
	Period       domain.Granularity     `json:"period"`
	Metric       string                 `json:"metric"`
	BusinessData []domain.TimelinePoint `json:"business_data"`
	CityAverage  []domain.TimelinePoint `json:"city_average"`
}

// StateComparisonResponse pairs a business series with its state-wide
// average.
type StateComparisonResponse struct {
	BusinessID   string                 `json:"business_id"`
	BusinessName string                 `json:"business_name"`
	State        string                 `json:"state"`
	Period       domain.Granularity     `json:"period"`
	Metric       string                 `json:"metric"`
	BusinessData []domain.TimelinePoint `json:"business_data"`
	StateAverage []domain.TimelinePoint `json:"state_average"`
}

// StateSummary aggregates one state's footprint for the locations
// summary endpoint.
type StateSummary struct {
	State         string   `json:"state" db:"state"`
	BusinessCount int      `json:"business_count" db:"business_count"`
	AvgStars      float64  `json:"avg_stars" db:"avg_stars"`
	Cities        []string `json:"cities"`
}

type LocationsSummaryResponse struct {
	States []*StateSummary `json:"states"`
}

type SeedResponse struct {
	Businesses int `json:"businesses"`
	Reviews    int `json:"reviews"`
}
