package morphology

import (
	"fmt"

	"gocv.io/x/gocv"

	"crackvector/internal/models"
)

// toMat copies a mask into a single-channel 8-bit Mat, writing on for every
// set pixel. The caller owns the returned Mat.
func toMat(m *models.Mask, on byte) gocv.Mat {
	data := make([]byte, len(m.Pix))
	for i, v := range m.Pix {
		if v != 0 {
			data[i] = on
		}
	}
	mat, err := gocv.NewMatFromBytes(m.Height, m.Width, gocv.MatTypeCV8U, data)
	if err != nil {
		// data always holds rows*cols bytes
		panic(fmt.Sprintf("morphology: %v", err))
	}
	return mat
}

// fromMat reads the window of an 8-bit Mat that starts at (top, left) and has
// the given size back into a mask. Nonzero bytes are set pixels.
func fromMat(mat gocv.Mat, top, left, width, height int) *models.Mask {
	out := models.NewMask(width, height)
	data := mat.ToBytes()
	cols := mat.Cols()
	for r := 0; r < height; r++ {
		for c := 0; c < width; c++ {
			if data[(r+top)*cols+c+left] != 0 {
				out.Pix[r*width+c] = 1
			}
		}
	}
	return out
}
