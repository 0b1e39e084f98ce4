package cvm

import (
	"fmt"

	"crackvector/pkg/imageio"
	"crackvector/pkg/measure"
)

// Options holds the measurement constants of a build.
type Options struct {
	// PixelLength is the physical size of one pixel in millimeters.
	PixelLength float64

	// MaxWidthExpand bounds each width scan to this many half-pixel steps per
	// direction.
	MaxWidthExpand int

	// SegmentationThreshold is the intensity a segmentation sample must exceed
	// to count as crack during width scanning.
	SegmentationThreshold float64

	// RangeThreshold is the same bound for the inverted range image.
	RangeThreshold float64

	// BinarizeThreshold is applied to decoded segmentation files.
	BinarizeThreshold float64
}

// DefaultOptions returns the standard measurement constants.
func DefaultOptions() Options {
	return Options{
		PixelLength:           measure.DefaultPixelLength,
		MaxWidthExpand:        measure.DefaultMaxWidthExpand,
		SegmentationThreshold: 0,
		RangeThreshold:        120,
		BinarizeThreshold:     imageio.DefaultBinarizeThreshold,
	}
}

// Validate rejects option values the pipeline cannot run with.
func (o Options) Validate() error {
	if o.PixelLength <= 0 {
		return &ConfigError{fmt.Sprintf("pixel length must be positive, got %g", o.PixelLength)}
	}
	if o.MaxWidthExpand <= 0 {
		return &ConfigError{fmt.Sprintf("max width expand must be positive, got %d", o.MaxWidthExpand)}
	}
	return nil
}
