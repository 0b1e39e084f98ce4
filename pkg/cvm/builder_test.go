package cvm

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crackvector/internal/models"
	"crackvector/pkg/diagnostics"
)

func TestBuildStraightLine(t *testing.T) {
	seg := models.NewRaster(14, 8)
	setRun(seg, coord(3, 2), coord(3, 11))

	model, err := NewBuilder(DefaultOptions()).UseSegmentation(seg).Build()
	require.NoError(t, err)

	assert.Empty(t, model.Intersections())
	require.Equal(t, 1, model.NumBranches())
	assert.InDelta(t, 9*DefaultOptions().PixelLength, model.BranchLengths()[0], 1e-9)

	b := model.Branch(0)
	assert.Len(t, b.Path, 10)
	assert.Len(t, b.Widths, 8)
	assert.Len(t, b.WidthBounds, 8)
}

func TestBuildIsolatedPixel(t *testing.T) {
	seg := models.NewRaster(7, 7)
	seg.Set(3, 3, 255)

	model, err := NewBuilder(DefaultOptions()).UseSegmentation(seg).Build()
	require.NoError(t, err)

	assert.Equal(t, []models.Coordinate{coord(3, 3)}, model.Intersections())
	assert.Zero(t, model.NumBranches())
}

func TestBuildTShape(t *testing.T) {
	diag := diagnostics.NewCollector(nil)
	model, err := NewBuilder(DefaultOptions()).
		UseSegmentation(createTShape()).
		WithDiagnostics(diag).
		Build()
	require.NoError(t, err)

	assert.Equal(t, []models.Coordinate{coord(2, 7)}, model.Intersections())
	require.Equal(t, 3, model.NumBranches())

	pl := DefaultOptions().PixelLength
	lengths := model.BranchLengths()
	assert.InDelta(t, 5*pl, lengths[0], 1e-9)
	assert.InDelta(t, 5*pl, lengths[1], 1e-9)
	assert.InDelta(t, 6*pl, lengths[2], 1e-9)

	for i, p := range model.BranchPaths() {
		assert.True(t, p.First() == coord(2, 7) || p.Last() == coord(2, 7),
			"branch %d should end at the junction", i)
	}
	assert.Empty(t, diag.Entries())
}

func TestBuildNegativeIntensities(t *testing.T) {
	seg := models.NewRaster(14, 8)
	for col := 2; col <= 11; col++ {
		seg.Set(3, col, -255)
	}

	model, err := NewBuilder(DefaultOptions()).UseSegmentation(seg).Build()
	require.NoError(t, err)
	require.Equal(t, 1, model.NumBranches(), "nonzero pixels are crack regardless of sign")
	assert.InDelta(t, 9*DefaultOptions().PixelLength, model.BranchLengths()[0], 1e-9)
}

func TestBuildMaskInput(t *testing.T) {
	mask := models.NewMask(14, 8)
	for col := 2; col <= 11; col++ {
		mask.Set(3, col)
	}
	model, err := NewBuilder(DefaultOptions()).UseSegmentationMask(mask).Build()
	require.NoError(t, err)
	assert.Equal(t, 1, model.NumBranches())
}

func TestJunctionExclusivityAndEndpoints(t *testing.T) {
	model, err := NewBuilder(DefaultOptions()).UseSegmentation(createComposite()).Build()
	require.NoError(t, err)
	require.NotZero(t, model.NumBranches())

	junctions := make(map[models.Coordinate]bool)
	for _, j := range model.Intersections() {
		junctions[j] = true
	}

	for i, p := range model.BranchPaths() {
		require.GreaterOrEqual(t, len(p), 2, "branch %d", i)
		assert.True(t, p.IsConnected(), "branch %d is not 8-connected without repeats", i)
		assert.NotEqual(t, p.First(), p.Last(), "branch %d", i)
		for _, c := range p[1 : len(p)-1] {
			assert.False(t, junctions[c], "branch %d passes through junction %s", i, c)
		}
	}
}

func TestDropConservation(t *testing.T) {
	seg := createComposite()
	diag := diagnostics.NewCollector(nil)
	model, err := NewBuilder(DefaultOptions()).UseSegmentation(seg).WithDiagnostics(diag).Build()
	require.NoError(t, err)

	accounted := make(map[models.Coordinate]bool)
	for _, p := range model.BranchPaths() {
		for _, c := range p {
			accounted[c] = true
		}
	}
	for _, c := range model.Intersections() {
		accounted[c] = true
	}
	dropped := diagnostics.Dropped(diag.Entries())
	for _, e := range dropped {
		for _, c := range e.Coordinates {
			accounted[c] = true
		}
	}

	skeleton := make(map[models.Coordinate]bool)
	for _, c := range Skeletonize(seg.NonZero()).Coordinates() {
		skeleton[c] = true
	}
	assert.Equal(t, skeleton, accounted)

	// The closed ring has no endpoints and must be reported, not measured.
	reasons := make(map[diagnostics.Reason]bool)
	for _, e := range dropped {
		reasons[e.Reason] = true
	}
	assert.True(t, reasons[diagnostics.ReasonTooFewEndpoints])
}

func TestBuildWidthFromRange(t *testing.T) {
	seg, rng := createBandScene()
	pl := DefaultOptions().PixelLength

	model, err := NewBuilder(DefaultOptions()).
		UseSegmentation(seg).
		UseRange(rng).
		UseRangeForWidth().
		Build()
	require.NoError(t, err)
	require.Equal(t, 1, model.NumBranches())

	widths := model.BranchWidths()[0]
	require.Len(t, widths, 34)
	for i, w := range widths {
		assert.InDelta(t, 5*pl, w, oneStep(pl), "point %d", i+1)
		assert.InDelta(t, 5.5*pl, w, 1e-9, "point %d", i+1)
	}

	stats := model.Stats()
	assert.InDelta(t, 5.5*pl, stats.MeanWidth, 1e-9)
	assert.InDelta(t, 0, stats.WidthStdDev, 1e-9)
	assert.InDelta(t, 5.5*pl, stats.MaxWidth, 1e-9)
	assert.Equal(t, 34, stats.WidthSamples)
	assert.InDelta(t, 35*pl, stats.TotalLength, 1e-9)
}

// oneStep is one width-scan step in millimeters.
func oneStep(pixelLength float64) float64 {
	return 0.5*pixelLength + 1e-9
}

func TestBuildWidthFromSegmentation(t *testing.T) {
	seg, rng := createBandScene()
	pl := DefaultOptions().PixelLength

	// The range image is set but not used for widths.
	model, err := NewBuilder(DefaultOptions()).UseSegmentation(seg).UseRange(rng).Build()
	require.NoError(t, err)

	for i, w := range model.BranchWidths()[0] {
		assert.InDelta(t, 1.5*pl, w, 1e-9, "point %d", i+1)
	}
}

func TestUseRangeDoesNotModifyInput(t *testing.T) {
	seg, rng := createBandScene()
	before := rng.Clone()
	_, err := NewBuilder(DefaultOptions()).UseSegmentation(seg).UseRange(rng).UseRangeForWidth().Build()
	require.NoError(t, err)
	assert.Equal(t, before.Pix, rng.Pix)
}

func TestBuildIdempotent(t *testing.T) {
	b := NewBuilder(DefaultOptions()).UseSegmentation(createComposite())

	first, err := b.Build()
	require.NoError(t, err)
	second, err := b.Build()
	require.NoError(t, err)

	if diff := cmp.Diff(first, second, cmp.AllowUnexported(CrackVectorModel{})); diff != "" {
		t.Errorf("Rebuilt model differs (-first +second):\n%s", diff)
	}
}

func TestModelAccessorsReturnCopies(t *testing.T) {
	model, err := NewBuilder(DefaultOptions()).UseSegmentation(createTShape()).Build()
	require.NoError(t, err)

	paths := model.BranchPaths()
	paths[0][0] = coord(99, 99)
	lengths := model.BranchLengths()
	lengths[0] = -1
	junctions := model.Intersections()
	junctions[0] = coord(99, 99)

	assert.NotEqual(t, coord(99, 99), model.BranchPaths()[0][0])
	assert.NotEqual(t, -1.0, model.BranchLengths()[0])
	assert.Equal(t, coord(2, 7), model.Intersections()[0])
}

func TestConfigurationErrors(t *testing.T) {
	seg := createTShape()
	fc := geojson.NewFeatureCollection()

	badOpts := DefaultOptions()
	badOpts.PixelLength = 0

	tests := []struct {
		name    string
		builder func() *Builder
		want    error
	}{
		{"no input", func() *Builder {
			return NewBuilder(DefaultOptions())
		}, ErrMissingInput},
		{"segmentation and geometry", func() *Builder {
			return NewBuilder(DefaultOptions()).UseSegmentation(seg).UseGeometry(fc)
		}, ErrRedundantInput},
		{"geometry and segmentation", func() *Builder {
			return NewBuilder(DefaultOptions()).UseGeometry(fc).UseSegmentation(seg)
		}, ErrRedundantInput},
		{"segmentation twice", func() *Builder {
			return NewBuilder(DefaultOptions()).UseSegmentation(seg).UseSegmentation(seg)
		}, ErrRedundantInput},
		{"range twice", func() *Builder {
			return NewBuilder(DefaultOptions()).UseSegmentation(seg).UseRange(seg).UseRange(seg)
		}, ErrRedundantInput},
		{"geometry twice", func() *Builder {
			return NewBuilder(DefaultOptions()).UseGeometry(fc).UseGeometry(fc)
		}, ErrExistingGeometry},
		{"width from missing range", func() *Builder {
			return NewBuilder(DefaultOptions()).UseSegmentation(seg).UseRangeForWidth()
		}, ErrMissingRangeImage},
		{"range size mismatch", func() *Builder {
			return NewBuilder(DefaultOptions()).UseSegmentation(seg).UseRange(models.NewRaster(3, 3))
		}, ErrDimensionMismatch},
		{"malformed raster", func() *Builder {
			return NewBuilder(DefaultOptions()).UseSegmentation(&models.Raster{Width: 2, Height: 2})
		}, ErrInvalidRaster},
		{"nil geometry", func() *Builder {
			return NewBuilder(DefaultOptions()).UseGeometry(nil)
		}, ErrGeometryFormat},
		{"bad options", func() *Builder {
			return NewBuilder(badOpts).UseSegmentation(seg)
		}, ErrConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, err := tt.builder().Build()
			assert.Nil(t, model)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestSetterRecordsFirstError(t *testing.T) {
	b := NewBuilder(DefaultOptions()).UseRangeForWidth().UseGeometry(nil)
	assert.ErrorIs(t, b.Err(), ErrMissingRangeImage)
	_, err := b.Build()
	assert.ErrorIs(t, err, ErrMissingRangeImage)
}

func TestFileSettersMissingFile(t *testing.T) {
	_, err := NewBuilder(DefaultOptions()).UseSegmentationFile("/nonexistent/seg.png").Build()
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrConfiguration), "I/O failures are not configuration errors")
}

func TestCrackLengths(t *testing.T) {
	mask := createTShape().NonZero()
	lengths := CrackLengths(mask, 4)
	require.Len(t, lengths, 3)
	assert.InDeltaSlice(t, []float64{20, 20, 24}, lengths, 1e-9)
}

func TestStatsEmptyModel(t *testing.T) {
	model, err := NewBuilder(DefaultOptions()).UseSegmentation(models.NewRaster(5, 5)).Build()
	require.NoError(t, err)

	stats := model.Stats()
	assert.Zero(t, stats.Branches)
	assert.Zero(t, stats.TotalLength)
	assert.Zero(t, stats.MeanWidth)
	assert.Zero(t, stats.WidthSamples)
	assert.False(t, math.IsNaN(stats.WidthStdDev))
}

func TestGeometryPointFeatureRejected(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.Point{1, 1}))
	_, err := NewBuilder(DefaultOptions()).UseGeometry(fc).Build()
	assert.ErrorIs(t, err, ErrGeometryFormat)
}
