// Package imageio moves rasters between disk and the pipeline: it decodes
// segmentation and range images into gray rasters and writes masks and
// rendered images back out.
package imageio

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	// Range scans and segmentation tiles come as TIFF, BMP or WebP as often
	// as PNG/JPEG; registering the decoders lets imaging.Open read them.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"crackvector/internal/models"
)

// DefaultBinarizeThreshold is the gray level above which a decoded
// segmentation pixel counts as crack.
const DefaultBinarizeThreshold = 127

// LoadGray decodes an image file and converts it to a gray raster with values
// in [0, 255].
func LoadGray(path string) (*models.Raster, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("image not found at %s: %w", path, err)
	}
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return FromImage(img), nil
}

// LoadSegmentation decodes a segmentation image and binarizes it: pixels above
// threshold become 255, everything else 0.
func LoadSegmentation(path string, threshold float64) (*models.Raster, error) {
	gray, err := LoadGray(path)
	if err != nil {
		return nil, err
	}
	for i, v := range gray.Pix {
		if v > threshold {
			gray.Pix[i] = 255
		} else {
			gray.Pix[i] = 0
		}
	}
	return gray, nil
}

// FromImage converts any image to a gray raster.
func FromImage(img image.Image) *models.Raster {
	gray := imaging.Grayscale(img)
	bounds := gray.Bounds()
	r := models.NewRaster(bounds.Dx(), bounds.Dy())
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			// Grayscale writes the same value to R, G and B
			r.Pix[y*r.Width+x] = float64(gray.Pix[y*gray.Stride+x*4])
		}
	}
	return r
}

// ToImage converts a raster to an 8-bit gray image, clamping to [0, 255].
func ToImage(r *models.Raster) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, r.Width, r.Height))
	for i, v := range r.Pix {
		switch {
		case v < 0:
			v = 0
		case v > 255:
			v = 255
		}
		img.Pix[(i/r.Width)*img.Stride+i%r.Width] = uint8(v)
	}
	return img
}

// MaskToImage renders set pixels white on black.
func MaskToImage(m *models.Mask) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for i, v := range m.Pix {
		if v != 0 {
			img.SetGray(i%m.Width, i/m.Width, color.Gray{Y: 255})
		}
	}
	return img
}

// SaveMask writes a mask as an image; the format follows the file extension.
func SaveMask(path string, m *models.Mask) error {
	return Save(path, MaskToImage(m), 90)
}

// Save writes img to path. The format follows the file extension; quality is
// used by JPEG and lossy WebP output.
func Save(path string, img image.Image, quality int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".webp":
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		defer f.Close()
		if err := webp.Encode(f, img, &webp.Options{Lossless: quality >= 100, Quality: float32(quality)}); err != nil {
			return fmt.Errorf("failed to encode webp %s: %w", path, err)
		}
		return nil
	case ".jpg", ".jpeg":
		return imaging.Save(img, path, imaging.JPEGQuality(quality))
	default:
		return imaging.Save(img, path)
	}
}

// IsImageFile reports whether the file extension is one LoadGray can decode.
func IsImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return true
	}
	return false
}
