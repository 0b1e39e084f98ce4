package cvm

import (
	"crackvector/internal/models"
	"crackvector/pkg/branch"
	"crackvector/pkg/diagnostics"
	"crackvector/pkg/junction"
	"crackvector/pkg/measure"
	"crackvector/pkg/morphology"
)

// extraction holds the intermediate products of one raster run. It is owned by
// a single build and discarded afterwards.
type extraction struct {
	skeleton  *models.Mask
	junctions *junction.Result
	polylines []models.Polyline
}

// extract runs stages 1-5: thinning, junction detection, splitting,
// reconnection and linearization.
func extract(mask *models.Mask, diag *diagnostics.Collector) *extraction {
	skel := morphology.Thin(mask)
	junctions := junction.Detect(skel)
	split := branch.Split(skel, junctions.Set)
	branches := branch.Reconnect(split, junctions.Set, diag)
	polylines := branch.Linearize(branches, junctions.Set, diag)
	return &extraction{
		skeleton:  skel,
		junctions: junctions,
		polylines: polylines,
	}
}

// buildFromMask runs the full raster pipeline and assembles the model.
func buildFromMask(mask *models.Mask, widthImage *models.Raster, threshold float64, opts Options,
	diag *diagnostics.Collector) *CrackVectorModel {
	ex := extract(mask, diag)

	scanner := &measure.WidthScanner{
		Image:       widthImage,
		Threshold:   threshold,
		MaxExpand:   opts.MaxWidthExpand,
		PixelLength: opts.PixelLength,
	}

	lengths := make([]float64, len(ex.polylines))
	widths := make([][]float64, len(ex.polylines))
	bounds := make([][]measure.WidthPair, len(ex.polylines))
	for i, p := range ex.polylines {
		lengths[i] = measure.Length(p, opts.PixelLength)
		widths[i], bounds[i] = scanner.Widths(p)
	}

	return newModel(ex.junctions.Coordinates, ex.polylines, lengths, widths, bounds)
}

// CrackLengths runs stages 1-6 on a binary mask and returns only the branch
// lengths in millimeters.
func CrackLengths(mask *models.Mask, pixelLength float64) []float64 {
	ex := extract(mask, nil)
	return measure.Lengths(ex.polylines, pixelLength)
}

// Skeletonize exposes stage 1 for callers that want to inspect or save the
// centerline skeleton.
func Skeletonize(mask *models.Mask) *models.Mask {
	return morphology.Thin(mask)
}
