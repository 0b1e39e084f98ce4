// Package cvm builds the Crack Vector Model: the junctions and measured branches
// of every crack in a segmentation raster, or of a previously exported branch
// geometry.
package cvm

import (
	"crackvector/internal/models"
	"crackvector/pkg/measure"
)

// CrackVectorModel is the immutable result of a build. Branch data is held in
// parallel lists indexed by branch id; every accessor returns a copy.
type CrackVectorModel struct {
	intersections []models.Coordinate
	paths         []models.Polyline
	widthBounds   [][]measure.WidthPair
	lengths       []float64
	widths        [][]float64
}

// Branch is a read-only view of one measured branch.
type Branch struct {
	// Path is the ordered centerline, from one endpoint to the other.
	Path models.Polyline

	// Length is the path length in millimeters.
	Length float64

	// Widths holds one width in millimeters per interior path point.
	Widths []float64

	// WidthBounds holds the two boundary locations of each width sample.
	WidthBounds []measure.WidthPair
}

func newModel(intersections []models.Coordinate, paths []models.Polyline, lengths []float64,
	widths [][]float64, bounds [][]measure.WidthPair) *CrackVectorModel {
	if intersections == nil {
		intersections = []models.Coordinate{}
	}
	return &CrackVectorModel{
		intersections: intersections,
		paths:         paths,
		lengths:       lengths,
		widths:        widths,
		widthBounds:   bounds,
	}
}

// Intersections returns the junction coordinates in raster order.
func (m *CrackVectorModel) Intersections() []models.Coordinate {
	out := make([]models.Coordinate, len(m.intersections))
	copy(out, m.intersections)
	return out
}

// NumBranches returns the number of measured branches.
func (m *CrackVectorModel) NumBranches() int {
	return len(m.paths)
}

// Branch returns branch i.
func (m *CrackVectorModel) Branch(i int) Branch {
	path := make(models.Polyline, len(m.paths[i]))
	copy(path, m.paths[i])
	widths := make([]float64, len(m.widths[i]))
	copy(widths, m.widths[i])
	bounds := make([]measure.WidthPair, len(m.widthBounds[i]))
	copy(bounds, m.widthBounds[i])
	return Branch{Path: path, Length: m.lengths[i], Widths: widths, WidthBounds: bounds}
}

// Branches returns every branch.
func (m *CrackVectorModel) Branches() []Branch {
	out := make([]Branch, len(m.paths))
	for i := range m.paths {
		out[i] = m.Branch(i)
	}
	return out
}

// BranchPaths returns the ordered centerline of every branch.
func (m *CrackVectorModel) BranchPaths() []models.Polyline {
	out := make([]models.Polyline, len(m.paths))
	for i := range m.paths {
		out[i] = m.Branch(i).Path
	}
	return out
}

// BranchLengths returns the length of every branch in millimeters.
func (m *CrackVectorModel) BranchLengths() []float64 {
	out := make([]float64, len(m.lengths))
	copy(out, m.lengths)
	return out
}

// BranchWidths returns the per-point widths of every branch in millimeters.
func (m *CrackVectorModel) BranchWidths() [][]float64 {
	out := make([][]float64, len(m.widths))
	for i := range m.widths {
		out[i] = m.Branch(i).Widths
	}
	return out
}

// BranchWidthBounds returns the width-scan boundary pairs of every branch.
func (m *CrackVectorModel) BranchWidthBounds() [][]measure.WidthPair {
	out := make([][]measure.WidthPair, len(m.widthBounds))
	for i := range m.widthBounds {
		out[i] = m.Branch(i).WidthBounds
	}
	return out
}
