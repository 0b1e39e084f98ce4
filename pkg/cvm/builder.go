package cvm

import (
	"fmt"

	"github.com/paulmach/orb/geojson"

	"crackvector/internal/models"
	"crackvector/pkg/diagnostics"
	"crackvector/pkg/imageio"
)

// Builder assembles a CrackVectorModel from exactly one input source: a
// segmentation raster or a branch geometry. A range image can be added for
// width scanning. Setters chain; the first misuse is recorded and returned by
// Build before any pipeline stage runs.
//
//	model, err := cvm.NewBuilder(cvm.DefaultOptions()).
//		UseSegmentation(seg).
//		UseRange(rng).
//		UseRangeForWidth().
//		Build()
type Builder struct {
	opts Options

	segmentation *models.Raster
	rangeImage   *models.Raster
	geometry     *geojson.FeatureCollection

	useRangeForWidth bool

	diag *diagnostics.Collector
	err  error
}

// NewBuilder creates a builder with the given measurement options.
func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts}
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// Err returns the first configuration error recorded by a setter.
func (b *Builder) Err() error {
	return b.err
}

// UseSegmentation sets the segmentation raster. Nonzero pixels are crack; the
// raw intensities are kept for segmentation-based width scanning.
func (b *Builder) UseSegmentation(r *models.Raster) *Builder {
	if b.segmentation != nil {
		return b.fail(fmt.Errorf("segmentation raster set twice: %w", ErrRedundantInput))
	}
	if b.geometry != nil {
		return b.fail(fmt.Errorf("segmentation raster after geometry: %w", ErrRedundantInput))
	}
	if r == nil || r.Validate() != nil {
		return b.fail(fmt.Errorf("segmentation: %w", ErrInvalidRaster))
	}
	b.segmentation = r
	return b
}

// UseSegmentationMask sets the segmentation from a binary mask.
func (b *Builder) UseSegmentationMask(m *models.Mask) *Builder {
	if m == nil {
		return b.fail(fmt.Errorf("segmentation: %w", ErrInvalidRaster))
	}
	return b.UseSegmentation(m.ToRaster())
}

// UseSegmentationFile decodes and binarizes a segmentation image from disk.
// I/O failures are recorded like configuration errors and abort Build.
func (b *Builder) UseSegmentationFile(path string) *Builder {
	if b.segmentation != nil {
		return b.fail(fmt.Errorf("segmentation raster set twice: %w", ErrRedundantInput))
	}
	r, err := imageio.LoadSegmentation(path, b.opts.BinarizeThreshold)
	if err != nil {
		return b.fail(err)
	}
	return b.UseSegmentation(r)
}

// UseRange sets the range image. It is stored inverted (255 - v) so that deep
// crack pixels carry high intensities during width scanning.
func (b *Builder) UseRange(r *models.Raster) *Builder {
	if b.rangeImage != nil {
		return b.fail(fmt.Errorf("range image set twice: %w", ErrRedundantInput))
	}
	if r == nil || r.Validate() != nil {
		return b.fail(fmt.Errorf("range image: %w", ErrInvalidRaster))
	}
	inverted := r.Clone()
	for i, v := range inverted.Pix {
		inverted.Pix[i] = 255 - v
	}
	b.rangeImage = inverted
	return b
}

// UseRangeFile decodes a range image from disk.
func (b *Builder) UseRangeFile(path string) *Builder {
	if b.rangeImage != nil {
		return b.fail(fmt.Errorf("range image set twice: %w", ErrRedundantInput))
	}
	r, err := imageio.LoadGray(path)
	if err != nil {
		return b.fail(err)
	}
	return b.UseRange(r)
}

// UseRangeForWidth scans widths on the range image instead of the
// segmentation raster. The range image must already be set.
func (b *Builder) UseRangeForWidth() *Builder {
	if b.rangeImage == nil {
		return b.fail(fmt.Errorf("set the range image first: %w", ErrMissingRangeImage))
	}
	b.useRangeForWidth = true
	return b
}

// UseGeometry sets a branch geometry to rebuild the model from, bypassing the
// raster stages.
func (b *Builder) UseGeometry(fc *geojson.FeatureCollection) *Builder {
	if b.geometry != nil {
		return b.fail(ErrExistingGeometry)
	}
	if b.segmentation != nil {
		return b.fail(fmt.Errorf("geometry after segmentation raster: %w", ErrRedundantInput))
	}
	if fc == nil {
		return b.fail(fmt.Errorf("nil feature collection: %w", ErrGeometryFormat))
	}
	b.geometry = fc
	return b
}

// UseGeometryFile reads a GeoJSON branch geometry from disk.
func (b *Builder) UseGeometryFile(path string) *Builder {
	if b.geometry != nil {
		return b.fail(ErrExistingGeometry)
	}
	fc, err := ReadGeoJSON(path)
	if err != nil {
		return b.fail(err)
	}
	return b.UseGeometry(fc)
}

// WithDiagnostics routes topology anomalies of subsequent builds into c.
// Without a collector they are only written to the package logger.
func (b *Builder) WithDiagnostics(c *diagnostics.Collector) *Builder {
	b.diag = c
	return b
}

// checkState validates the configured sources.
func (b *Builder) checkState() error {
	if b.err != nil {
		return b.err
	}
	if err := b.opts.Validate(); err != nil {
		return err
	}
	if b.segmentation != nil && b.geometry != nil {
		return ErrRedundantInput
	}
	if b.segmentation == nil && b.geometry == nil {
		return ErrMissingInput
	}
	if b.useRangeForWidth && b.rangeImage == nil {
		return ErrMissingRangeImage
	}
	if b.segmentation != nil && b.rangeImage != nil &&
		(b.segmentation.Width != b.rangeImage.Width || b.segmentation.Height != b.rangeImage.Height) {
		return fmt.Errorf("segmentation %dx%d, range %dx%d: %w",
			b.segmentation.Width, b.segmentation.Height, b.rangeImage.Width, b.rangeImage.Height, ErrDimensionMismatch)
	}
	return nil
}

// Build runs the pipeline and returns the model. Inputs are never modified, so
// building twice from the same configuration yields identical models.
func (b *Builder) Build() (*CrackVectorModel, error) {
	if err := b.checkState(); err != nil {
		return nil, err
	}

	if b.geometry != nil {
		return buildFromGeometry(b.geometry, b.opts)
	}

	widthImage := b.segmentation
	threshold := b.opts.SegmentationThreshold
	if b.useRangeForWidth {
		widthImage = b.rangeImage
		threshold = b.opts.RangeThreshold
	}

	diag := b.diag
	if diag == nil {
		diag = diagnostics.NewCollector(Logger())
	}

	mask := b.segmentation.NonZero()
	model := buildFromMask(mask, widthImage, threshold, b.opts, diag)
	Logger().Debug("crack vector model built",
		"branches", model.NumBranches(),
		"intersections", len(model.intersections))
	return model, nil
}
