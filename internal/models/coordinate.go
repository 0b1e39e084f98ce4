package models

import (
	"fmt"
	"math"
	"sort"
)

// Coordinate identifies a pixel by (row, col). It is the universal key of every
// pixel set in the pipeline.
type Coordinate struct {
	Row int
	Col int
}

// String renders the coordinate as "(row,col)".
func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Key packs the coordinate into row*width+col.
func (c Coordinate) Key(width int) int {
	return c.Row*width + c.Col
}

// IsAdjacent reports whether the two coordinates are distinct 8-neighbors.
func (c Coordinate) IsAdjacent(o Coordinate) bool {
	dr, dc := c.Row-o.Row, c.Col-o.Col
	if dr == 0 && dc == 0 {
		return false
	}
	return dr >= -1 && dr <= 1 && dc >= -1 && dc <= 1
}

// Distance returns the Euclidean distance between two coordinates in pixels.
func (c Coordinate) Distance(o Coordinate) float64 {
	dr := float64(c.Row - o.Row)
	dc := float64(c.Col - o.Col)
	return math.Hypot(dr, dc)
}

// CoordinateFromKey unpacks a key produced by Coordinate.Key.
func CoordinateFromKey(key, width int) Coordinate {
	return Coordinate{Row: key / width, Col: key % width}
}

// Point is a sub-pixel location in (row, col) space. Width scan boundaries and
// reimported geometry use it.
type Point struct {
	Row float64
	Col float64
}

// Polyline is an ordered, repeat-free, 8-connected run of coordinates.
type Polyline []Coordinate

// Len returns the number of points.
func (p Polyline) Len() int { return len(p) }

// First returns the first point.
func (p Polyline) First() Coordinate { return p[0] }

// Last returns the last point.
func (p Polyline) Last() Coordinate { return p[len(p)-1] }

// IsConnected reports whether every consecutive pair is 8-adjacent and no
// coordinate repeats.
func (p Polyline) IsConnected() bool {
	seen := make(map[Coordinate]struct{}, len(p))
	for i, c := range p {
		if _, dup := seen[c]; dup {
			return false
		}
		seen[c] = struct{}{}
		if i > 0 && !p[i-1].IsAdjacent(c) {
			return false
		}
	}
	return true
}

// CoordSet is a hash set of coordinates keyed on the packed row*width+col value,
// giving O(1) membership tests on large images.
type CoordSet struct {
	width int
	keys  map[int]struct{}
}

// NewCoordSet creates an empty set for a raster of the given width.
func NewCoordSet(width int, coords ...Coordinate) *CoordSet {
	s := &CoordSet{width: width, keys: make(map[int]struct{}, len(coords))}
	for _, c := range coords {
		s.Add(c)
	}
	return s
}

func (s *CoordSet) addKey(k int) {
	s.keys[k] = struct{}{}
}

// Width returns the raster width used for key packing.
func (s *CoordSet) Width() int { return s.width }

// Add inserts a coordinate and reports whether it was new.
func (s *CoordSet) Add(c Coordinate) bool {
	k := c.Key(s.width)
	if _, ok := s.keys[k]; ok {
		return false
	}
	s.keys[k] = struct{}{}
	return true
}

// Remove deletes a coordinate.
func (s *CoordSet) Remove(c Coordinate) {
	delete(s.keys, c.Key(s.width))
}

// Contains reports membership.
func (s *CoordSet) Contains(c Coordinate) bool {
	if c.Col < 0 || c.Col >= s.width || c.Row < 0 {
		return false
	}
	_, ok := s.keys[c.Key(s.width)]
	return ok
}

// Len returns the set size.
func (s *CoordSet) Len() int { return len(s.keys) }

// Sorted returns the members in raster order.
func (s *CoordSet) Sorted() []Coordinate {
	keys := make([]int, 0, len(s.keys))
	for k := range s.keys {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	coords := make([]Coordinate, len(keys))
	for i, k := range keys {
		coords[i] = CoordinateFromKey(k, s.width)
	}
	return coords
}

// Clone returns an independent copy.
func (s *CoordSet) Clone() *CoordSet {
	c := &CoordSet{width: s.width, keys: make(map[int]struct{}, len(s.keys))}
	for k := range s.keys {
		c.keys[k] = struct{}{}
	}
	return c
}

// Union adds every member of o to s.
func (s *CoordSet) Union(o *CoordSet) {
	for _, c := range o.Sorted() {
		s.Add(c)
	}
}
