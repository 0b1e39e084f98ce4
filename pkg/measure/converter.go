package measure

import "fmt"

// PXMMConverter maps pixel coordinates of a segment of stacked images to
// millimeter coordinates and back. Pixel coordinates have their origin in the
// top left corner of an image; millimeter coordinates have theirs in the bottom
// left corner of the first image of the segment, with y growing upward through
// the stack.
type PXMMConverter struct {
	PxHeight  int
	PxWidth   int
	MMHeight  float64
	MMWidth   float64
	NumImages int

	scaleX float64
	scaleY float64
}

// NewPXMMConverter returns a converter for images of pxWidth x pxHeight pixels
// covering mmWidth x mmHeight millimeters.
func NewPXMMConverter(pxHeight, pxWidth int, mmHeight, mmWidth float64, numImages int) (*PXMMConverter, error) {
	if pxHeight <= 0 || pxWidth <= 0 {
		return nil, fmt.Errorf("pixel size must be positive, got %dx%d", pxWidth, pxHeight)
	}
	if mmHeight <= 0 || mmWidth <= 0 {
		return nil, fmt.Errorf("millimeter size must be positive, got %gx%g", mmWidth, mmHeight)
	}
	if numImages <= 0 {
		return nil, fmt.Errorf("number of images must be positive, got %d", numImages)
	}
	return &PXMMConverter{
		PxHeight:  pxHeight,
		PxWidth:   pxWidth,
		MMHeight:  mmHeight,
		MMWidth:   mmWidth,
		NumImages: numImages,
		scaleX:    float64(pxWidth) / mmWidth,
		scaleY:    float64(pxHeight) / mmHeight,
	}, nil
}

// PxToMMRelative converts a pixel position inside image imgIndex (zero-based)
// to millimeters relative to the first image of the segment.
func (c *PXMMConverter) PxToMMRelative(pxX, pxY float64, imgIndex int) (float64, float64) {
	mmX := pxX / c.scaleX
	mmY := (float64(c.PxHeight)-pxY)/c.scaleY + float64(imgIndex)*c.MMHeight
	return mmX, mmY
}

// MMToPx converts a millimeter position in image imgIndex to a pixel position
// in the stacked segment, where the last image sits on top.
func (c *PXMMConverter) MMToPx(mmX, mmY float64, imgIndex int) (float64, float64) {
	pxX := mmX * c.scaleX
	absY := float64(c.PxHeight) - mmY*c.scaleY
	return pxX, c.PxAbsToRel(absY, imgIndex)
}

// PxAbsToRel shifts a pixel row of image imgIndex into the stacked segment.
func (c *PXMMConverter) PxAbsToRel(pxY float64, imgIndex int) float64 {
	return pxY + float64(c.NumImages-imgIndex-1)*float64(c.PxHeight)
}
