package cvm

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes a model the way slab inventories record crack severity.
type Stats struct {
	// TotalLength is the sum of all branch lengths in millimeters. Dropped
	// branches are not measured, so this is a lower bound of the true length.
	TotalLength float64

	// MeanWidth averages every width sample of every branch, 0 when there are none.
	MeanWidth float64

	// WidthStdDev is the sample standard deviation of the width samples, 0 with
	// fewer than two samples.
	WidthStdDev float64

	// MaxWidth is the widest sample.
	MaxWidth float64

	Branches      int
	Intersections int
	WidthSamples  int
}

// Stats computes summary statistics over the model.
func (m *CrackVectorModel) Stats() Stats {
	s := Stats{
		TotalLength:   floats.Sum(m.lengths),
		Branches:      len(m.paths),
		Intersections: len(m.intersections),
	}

	var samples []float64
	for _, w := range m.widths {
		samples = append(samples, w...)
	}
	s.WidthSamples = len(samples)
	if len(samples) > 0 {
		s.MeanWidth = stat.Mean(samples, nil)
		s.MaxWidth = floats.Max(samples)
	}
	if len(samples) > 1 {
		s.WidthStdDev = stat.StdDev(samples, nil)
	}
	return s
}
