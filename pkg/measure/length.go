// Package measure turns ordered crack polylines into physical measurements:
// branch lengths and per-point widths in millimeters.
package measure

import (
	"gonum.org/v1/gonum/floats"

	"crackvector/internal/models"
)

// DefaultPixelLength is the physical size of one pixel in millimeters.
const DefaultPixelLength = 4.0

// Length sums the Euclidean distances between consecutive polyline points and
// scales the result by pixelLength. Polylines with fewer than two points have
// no length.
func Length(p models.Polyline, pixelLength float64) float64 {
	if len(p) < 2 {
		return 0
	}
	steps := make([]float64, len(p)-1)
	for i := 1; i < len(p); i++ {
		a := []float64{float64(p[i-1].Row), float64(p[i-1].Col)}
		b := []float64{float64(p[i].Row), float64(p[i].Col)}
		steps[i-1] = floats.Distance(a, b, 2)
	}
	return floats.Sum(steps) * pixelLength
}

// Lengths returns one length per polyline that has at least two points.
func Lengths(polylines []models.Polyline, pixelLength float64) []float64 {
	out := make([]float64, 0, len(polylines))
	for _, p := range polylines {
		if len(p) < 2 {
			continue
		}
		out = append(out, Length(p, pixelLength))
	}
	return out
}
