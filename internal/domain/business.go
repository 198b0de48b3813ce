package domain

import (
	"math"
	"strings"
	"time"
)

// Business is immutable once loaded; the dashboard never mutates
// records after the initial bulk load.
type Business struct {
	BusinessID  string    `db:"business_id" json:"business_id"`
	Name        string    `db:"name" json:"name"`
	Address     string    `db:"address" json:"address,omitempty"`
	City        string    `db:"city" json:"city"`
	State       string    `db:"state" json:"state"`
	Latitude    *float64  `db:"latitude" json:"latitude"`
	Longitude   *float64  `db:"longitude" json:"longitude"`
	Stars       float64   `db:"stars" json:"stars"`
	ReviewCount int       `db:"review_count" json:"review_count"`
	IsOpen      int       `db:"is_open" json:"is_open"`
	Categories  string    `db:"categories" json:"categories"`
	PhotoCount  *int      `db:"photo_count" json:"photo_count,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"-"`
	UpdatedAt   time.Time `db:"updated_at" json:"-"`
}

// HasCoordinates reports whether both coordinates are present and
// finite. Records failing this are kept for tabular filtering but
// excluded from the spatial index and the map.
func (b *Business) HasCoordinates() bool {
	if b.Latitude == nil || b.Longitude == nil {
		return false
	}
	if math.IsNaN(*b.Latitude) || math.IsInf(*b.Latitude, 0) {
		return false
	}
	if math.IsNaN(*b.Longitude) || math.IsInf(*b.Longitude, 0) {
		return false
	}
	return true
}

// CategoryList splits the comma-separated category string, trimming
// whitespace and dropping empty tags. Order is preserved.
func (b *Business) CategoryList() []string {
	if b.Categories == "" {
		return nil
	}

	parts := strings.Split(b.Categories, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if tag := strings.TrimSpace(p); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// PrimaryCategory is the first tag in the category list, used for
// category-level comparison views.
func (b *Business) PrimaryCategory() string {
	tags := b.CategoryList()
	if len(tags) == 0 {
		return ""
	}
	return tags[0]
}
