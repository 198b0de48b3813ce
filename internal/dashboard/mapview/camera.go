package mapview

import "time"

// Camera is the full camera tuple the tile renderer animates.
type Camera struct {
	Lon     float64 `json:"lon"`
	Lat     float64 `json:"lat"`
	Zoom    float64 `json:"zoom"`
	Bearing float64 `json:"bearing"`
	Pitch   float64 `json:"pitch"`
}

// MoveKind distinguishes the renderer animation: fly arcs over long
// distances, ease interpolates in place.
type MoveKind string

const (
	MoveFly  MoveKind = "fly"
	MoveEase MoveKind = "ease"
)

// Move is one camera instruction emitted to the renderer. The engine
// applies the target immediately; the renderer animates toward it.
type Move struct {
	Kind     MoveKind      `json:"kind"`
	Target   Camera        `json:"target"`
	Duration time.Duration `json:"duration"`
}

const (
	minZoom = 0
	maxZoom = 20

	cityZoom        = 11
	directEaseZoom  = 16
	stepOutZoom     = 7
	stepInZoom      = 17
	cityFlyDuration = 700 * time.Millisecond
)

func clampZoom(z float64) float64 {
	if z < minZoom {
		return minZoom
	}
	if z > maxZoom {
		return maxZoom
	}
	return z
}
