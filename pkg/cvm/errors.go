package cvm

import "errors"

// ErrConfiguration matches every configuration error through errors.Is.
var ErrConfiguration = errors.New("cvm: configuration error")

// ConfigError is a terminal, non-retryable builder misconfiguration detected
// before any pipeline stage runs.
type ConfigError struct {
	msg string
}

func (e *ConfigError) Error() string { return "cvm: " + e.msg }

// Is makes every ConfigError match ErrConfiguration.
func (e *ConfigError) Is(target error) bool { return target == ErrConfiguration }

var (
	// ErrMissingInput: neither a segmentation raster nor a geometry was supplied.
	ErrMissingInput = &ConfigError{"no segmentation raster or geometry to build from"}

	// ErrRedundantInput: a segmentation raster and a geometry were both supplied,
	// or the same raster was supplied twice.
	ErrRedundantInput = &ConfigError{"use either a segmentation raster or a geometry, once"}

	// ErrMissingRangeImage: width calculation on the range image was requested
	// without a range image.
	ErrMissingRangeImage = &ConfigError{"range image is required for range-based width calculation"}

	// ErrExistingGeometry: a geometry was supplied twice.
	ErrExistingGeometry = &ConfigError{"geometry already supplied"}

	// ErrGeometryFormat: the geometry is not a collection of branch line strings
	// with a width list per interior point.
	ErrGeometryFormat = &ConfigError{"geometry is not in the expected format"}

	// ErrDimensionMismatch: the range image and segmentation raster differ in size.
	ErrDimensionMismatch = &ConfigError{"range image and segmentation raster dimensions differ"}

	// ErrInvalidRaster: a raster has non-positive dimensions or a buffer of the
	// wrong size.
	ErrInvalidRaster = &ConfigError{"raster is malformed"}
)
