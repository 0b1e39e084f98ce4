package cvm

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"crackvector/internal/models"
	"crackvector/pkg/measure"
)

const (
	branchName    = "branch"
	propertyName  = "name"
	propertyWidth = "width"
)

// ToGeoJSON exports the model as one LineString feature per branch. Points are
// stored as (row, col) pairs and each feature carries the branch widths in
// millimeters. Junctions and width bounds are not exported.
func (m *CrackVectorModel) ToGeoJSON() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, path := range m.paths {
		ls := make(orb.LineString, len(path))
		for j, c := range path {
			ls[j] = orb.Point{float64(c.Row), float64(c.Col)}
		}
		widths := make([]float64, len(m.widths[i]))
		copy(widths, m.widths[i])

		f := geojson.NewFeature(ls)
		f.Properties[propertyName] = branchName
		f.Properties[propertyWidth] = widths
		fc.Append(f)
	}
	return fc
}

// WriteGeoJSON writes the exported feature collection to path as indented JSON.
func (m *CrackVectorModel) WriteGeoJSON(path string) error {
	data, err := json.MarshalIndent(m.ToGeoJSON(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode geometry: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write geometry file: %w", err)
	}
	return nil
}

// ReadGeoJSON decodes a feature collection from path. A document that is not a
// feature collection is reported as ErrGeometryFormat.
func ReadGeoJSON(path string) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read geometry file: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", path, err, ErrGeometryFormat)
	}
	return fc, nil
}

// buildFromGeometry rebuilds a model from exported branch geometry. Paths and
// widths are taken as stored, lengths come from the polyline path length and
// junctions are the endpoints shared by more than one branch.
func buildFromGeometry(fc *geojson.FeatureCollection, opts Options) (*CrackVectorModel, error) {
	n := len(fc.Features)
	paths := make([]models.Polyline, 0, n)
	lengths := make([]float64, 0, n)
	widths := make([][]float64, 0, n)
	bounds := make([][]measure.WidthPair, 0, n)
	endpointUse := make(map[models.Coordinate]int)

	for i, f := range fc.Features {
		ls, ok := f.Geometry.(orb.LineString)
		if !ok {
			return nil, fmt.Errorf("feature %d is %T, not a line string: %w", i, f.Geometry, ErrGeometryFormat)
		}
		if len(ls) < 2 {
			return nil, fmt.Errorf("feature %d has %d points: %w", i, len(ls), ErrGeometryFormat)
		}
		path, err := lineToPath(ls)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %v: %w", i, err, ErrGeometryFormat)
		}
		w, err := widthProperty(f.Properties, len(ls)-2)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %v: %w", i, err, ErrGeometryFormat)
		}

		paths = append(paths, path)
		lengths = append(lengths, planar.Length(ls)*opts.PixelLength)
		widths = append(widths, w)
		bounds = append(bounds, geometryBounds(ls, w, opts.PixelLength))

		endpointUse[path.First()]++
		endpointUse[path.Last()]++
	}

	junctions := make([]models.Coordinate, 0)
	for c, count := range endpointUse {
		if count > 1 {
			junctions = append(junctions, c)
		}
	}
	sort.Slice(junctions, func(a, b int) bool {
		if junctions[a].Row != junctions[b].Row {
			return junctions[a].Row < junctions[b].Row
		}
		return junctions[a].Col < junctions[b].Col
	})

	Logger().Debug("crack vector model rebuilt from geometry",
		"branches", len(paths),
		"intersections", len(junctions))
	return newModel(junctions, paths, lengths, widths, bounds), nil
}

func lineToPath(ls orb.LineString) (models.Polyline, error) {
	path := make(models.Polyline, len(ls))
	for j, p := range ls {
		if p[0] < 0 || p[1] < 0 {
			return nil, fmt.Errorf("point %d has negative coordinates %v", j, p)
		}
		path[j] = models.Coordinate{Row: int(math.Round(p[0])), Col: int(math.Round(p[1]))}
	}
	return path, nil
}

// widthProperty reads the width list, which decodes either as []float64 when
// the collection was built in memory or as []interface{} after a JSON round
// trip.
func widthProperty(props geojson.Properties, want int) ([]float64, error) {
	raw, ok := props[propertyWidth]
	if !ok {
		return nil, fmt.Errorf("missing %q property", propertyWidth)
	}
	var w []float64
	switch v := raw.(type) {
	case []float64:
		w = make([]float64, len(v))
		copy(w, v)
	case []interface{}:
		w = make([]float64, len(v))
		for k, item := range v {
			f, ok := item.(float64)
			if !ok {
				return nil, fmt.Errorf("width %d is %T, not a number", k, item)
			}
			w[k] = f
		}
	case nil:
		w = []float64{}
	default:
		return nil, fmt.Errorf("%q property is %T, not a list", propertyWidth, raw)
	}
	if len(w) != want {
		return nil, fmt.Errorf("%d widths for %d interior points", len(w), want)
	}
	return w, nil
}

func geometryBounds(ls orb.LineString, widths []float64, pixelLength float64) []measure.WidthPair {
	out := make([]measure.WidthPair, len(widths))
	for k, w := range widths {
		prev, center, next := ls[k], ls[k+1], ls[k+2]
		out[k] = measure.PerpendicularEnds(
			models.Point{Row: prev[0], Col: prev[1]},
			models.Point{Row: center[0], Col: center[1]},
			models.Point{Row: next[0], Col: next[1]},
			w/pixelLength/2,
		)
	}
	return out
}
