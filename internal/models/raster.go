// Package models holds the raster and coordinate types shared by every stage of
// the crack vector pipeline.
package models

import "fmt"

// Raster is a 2D grid of intensity values stored in row-major order.
type Raster struct {
	// Width is the number of columns
	Width int

	// Height is the number of rows
	Height int

	// Pix holds Width*Height intensities, row by row
	Pix []float64
}

// NewRaster allocates a zeroed raster with the given dimensions.
func NewRaster(width, height int) *Raster {
	return &Raster{
		Width:  width,
		Height: height,
		Pix:    make([]float64, width*height),
	}
}

// At returns the intensity at (row, col). The caller is responsible for bounds.
func (r *Raster) At(row, col int) float64 {
	return r.Pix[row*r.Width+col]
}

// Set writes the intensity at (row, col).
func (r *Raster) Set(row, col int, v float64) {
	r.Pix[row*r.Width+col] = v
}

// InBounds reports whether (row, col) lies inside the raster.
func (r *Raster) InBounds(row, col int) bool {
	return row >= 0 && row < r.Height && col >= 0 && col < r.Width
}

// Clone returns a deep copy of the raster.
func (r *Raster) Clone() *Raster {
	pix := make([]float64, len(r.Pix))
	copy(pix, r.Pix)
	return &Raster{Width: r.Width, Height: r.Height, Pix: pix}
}

// Validate checks that the pixel buffer matches the declared dimensions.
func (r *Raster) Validate() error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("raster dimensions must be positive, got %dx%d", r.Width, r.Height)
	}
	if len(r.Pix) != r.Width*r.Height {
		return fmt.Errorf("raster buffer holds %d values, expected %d", len(r.Pix), r.Width*r.Height)
	}
	return nil
}

// Binarize returns a mask where every pixel above threshold is set.
func (r *Raster) Binarize(threshold float64) *Mask {
	m := NewMask(r.Width, r.Height)
	for i, v := range r.Pix {
		if v > threshold {
			m.Pix[i] = 1
		}
	}
	return m
}

// NonZero returns a mask where every nonzero pixel is set, negative
// intensities included.
func (r *Raster) NonZero() *Mask {
	m := NewMask(r.Width, r.Height)
	for i, v := range r.Pix {
		if v != 0 {
			m.Pix[i] = 1
		}
	}
	return m
}

// Mask is a binary raster restricted to {0, 1}.
type Mask struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewMask allocates an empty mask.
func NewMask(width, height int) *Mask {
	return &Mask{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

// MaskFromRows builds a mask from a row-major literal, treating any nonzero
// value as set. All rows must share the same length.
func MaskFromRows(rows [][]uint8) *Mask {
	if len(rows) == 0 {
		return NewMask(0, 0)
	}
	m := NewMask(len(rows[0]), len(rows))
	for r, row := range rows {
		for c, v := range row {
			if v != 0 {
				m.Pix[r*m.Width+c] = 1
			}
		}
	}
	return m
}

// At returns the mask value at (row, col), or 0 outside the mask.
func (m *Mask) At(row, col int) uint8 {
	if !m.InBounds(row, col) {
		return 0
	}
	return m.Pix[row*m.Width+col]
}

// IsSet reports whether (row, col) is a set pixel.
func (m *Mask) IsSet(row, col int) bool {
	return m.At(row, col) != 0
}

// Set marks (row, col).
func (m *Mask) Set(row, col int) {
	m.Pix[row*m.Width+col] = 1
}

// Clear unmarks (row, col).
func (m *Mask) Clear(row, col int) {
	m.Pix[row*m.Width+col] = 0
}

// InBounds reports whether (row, col) lies inside the mask.
func (m *Mask) InBounds(row, col int) bool {
	return row >= 0 && row < m.Height && col >= 0 && col < m.Width
}

// Clone returns a deep copy of the mask.
func (m *Mask) Clone() *Mask {
	pix := make([]uint8, len(m.Pix))
	copy(pix, m.Pix)
	return &Mask{Width: m.Width, Height: m.Height, Pix: pix}
}

// Count returns the number of set pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

// Coordinates lists the set pixels in raster (row-major) order.
func (m *Mask) Coordinates() []Coordinate {
	var coords []Coordinate
	for i, v := range m.Pix {
		if v != 0 {
			coords = append(coords, Coordinate{Row: i / m.Width, Col: i % m.Width})
		}
	}
	return coords
}

// CoordSet returns the set pixels as a coordinate set.
func (m *Mask) CoordSet() *CoordSet {
	s := NewCoordSet(m.Width)
	for i, v := range m.Pix {
		if v != 0 {
			s.addKey(i)
		}
	}
	return s
}

// ToRaster converts the mask to a raster with values 0 and 1.
func (m *Mask) ToRaster() *Raster {
	r := NewRaster(m.Width, m.Height)
	for i, v := range m.Pix {
		r.Pix[i] = float64(v)
	}
	return r
}
