package measure

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"crackvector/internal/models"
)

const (
	// StepSize is the distance, in pixels, between two samples of a width scan.
	StepSize = 0.5

	// startOffset is where the first sample of a scan sits, in pixels from the
	// centerline point.
	startOffset = 0.25

	// DefaultMaxWidthExpand bounds a scan to this many steps per direction.
	DefaultMaxWidthExpand = 40
)

// WidthPair holds the two boundary locations found by a width scan: Positive
// along the rotated direction vector, Negative opposite to it.
type WidthPair struct {
	Positive models.Point
	Negative models.Point
}

// WidthScanner measures crack widths on an intensity raster.
type WidthScanner struct {
	// Image is sampled along the scan lines.
	Image *models.Raster

	// Threshold is the intensity a sample must exceed to count as crack.
	Threshold float64

	// MaxExpand is the maximum number of steps taken in each direction.
	MaxExpand int

	// PixelLength converts pixels to millimeters.
	PixelLength float64
}

// Widths scans every interior point of a polyline (every point except the
// first and the last) and returns one width in millimeters per point, along
// with the two boundary locations.
func (s *WidthScanner) Widths(p models.Polyline) ([]float64, []WidthPair) {
	if len(p) < 3 {
		return []float64{}, []WidthPair{}
	}
	widths := make([]float64, 0, len(p)-2)
	bounds := make([]WidthPair, 0, len(p)-2)
	for i := 1; i < len(p)-1; i++ {
		normal, ok := Perpendicular(p[i-1], p[i+1])
		if !ok {
			widths = append(widths, 0)
			bounds = append(bounds, WidthPair{Positive: toPoint(p[i]), Negative: toPoint(p[i])})
			continue
		}

		center := toPoint(p[i])
		posWeight, posEnd := s.scan(center, normal)
		negWeight, negEnd := s.scan(center, models.Point{Row: -normal.Row, Col: -normal.Col})

		widths = append(widths, (posWeight+negWeight)*s.PixelLength)
		bounds = append(bounds, WidthPair{Positive: posEnd, Negative: negEnd})
	}
	return widths, bounds
}

// scan marches from center along dir while the sampled intensity exceeds the
// threshold. It returns the covered distance in pixels and the last sampled
// location. Leaving the raster stops the scan and keeps the partial distance.
func (s *WidthScanner) scan(center, dir models.Point) (float64, models.Point) {
	weight := startOffset
	at := offset(center, dir, weight)
	steps := 0
	for s.Image.InBounds(int(math.Floor(at.Row)), int(math.Floor(at.Col))) {
		v := s.Image.At(int(math.Floor(at.Row)), int(math.Floor(at.Col)))
		if v <= s.Threshold {
			break
		}
		weight += StepSize
		steps++
		if steps >= s.MaxExpand {
			break
		}
		at = offset(center, dir, weight)
	}
	return weight, at
}

// Perpendicular returns the unit vector orthogonal to the direction from prev
// to next. It reports false when the two points coincide.
func Perpendicular(prev, next models.Coordinate) (models.Point, bool) {
	return perpendicular(toPoint(prev), toPoint(next))
}

func perpendicular(prev, next models.Point) (models.Point, bool) {
	orth := []float64{-(next.Col - prev.Col), next.Row - prev.Row}
	norm := floats.Norm(orth, 2)
	if norm == 0 {
		return models.Point{}, false
	}
	floats.Scale(1/norm, orth)
	return models.Point{Row: orth[0], Col: orth[1]}, true
}

// PerpendicularEnds offsets center by ±halfWidth pixels along the unit
// perpendicular of the prev→next direction. Coincident neighbors give a
// zero-length pair at center.
func PerpendicularEnds(prev, center, next models.Point, halfWidth float64) WidthPair {
	normal, ok := perpendicular(prev, next)
	if !ok {
		return WidthPair{Positive: center, Negative: center}
	}
	return WidthPair{
		Positive: offset(center, normal, halfWidth),
		Negative: offset(center, normal, -halfWidth),
	}
}

func offset(p, dir models.Point, d float64) models.Point {
	return models.Point{Row: p.Row + d*dir.Row, Col: p.Col + d*dir.Col}
}

func toPoint(c models.Coordinate) models.Point {
	return models.Point{Row: float64(c.Row), Col: float64(c.Col)}
}
