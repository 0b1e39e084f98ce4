package imageio

import (
	"os"
	"path/filepath"
	"testing"

	"crackvector/internal/models"
)

// createTestRaster returns a horizontal gradient.
func createTestRaster(width, height int) *models.Raster {
	r := models.NewRaster(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r.Set(y, x, float64(x*255/(width-1)))
		}
	}
	return r
}

func TestToImageClamps(t *testing.T) {
	r := models.NewRaster(3, 1)
	r.Pix = []float64{-10, 100, 300}
	img := ToImage(r)
	want := []uint8{0, 100, 255}
	for i, v := range want {
		if img.Pix[i] != v {
			t.Errorf("Expected %d at %d, got %d", v, i, img.Pix[i])
		}
	}
}

func TestSaveAndLoadGray(t *testing.T) {
	r := createTestRaster(16, 8)
	path := filepath.Join(t.TempDir(), "gradient.png")

	if err := Save(path, ToImage(r), 90); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}
	loaded, err := LoadGray(path)
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if loaded.Width != r.Width || loaded.Height != r.Height {
		t.Fatalf("Expected %dx%d, got %dx%d", r.Width, r.Height, loaded.Width, loaded.Height)
	}
	for i := range r.Pix {
		if loaded.Pix[i] != r.Pix[i] {
			t.Fatalf("Expected value %f at %d, got %f", r.Pix[i], i, loaded.Pix[i])
		}
	}
}

func TestLoadSegmentation(t *testing.T) {
	r := createTestRaster(16, 4)
	path := filepath.Join(t.TempDir(), "seg.png")
	if err := Save(path, ToImage(r), 90); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	seg, err := LoadSegmentation(path, DefaultBinarizeThreshold)
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	for i, v := range seg.Pix {
		want := 0.0
		if r.Pix[i] > DefaultBinarizeThreshold {
			want = 255
		}
		if v != want {
			t.Errorf("Expected %f at %d, got %f", want, i, v)
		}
	}
}

func TestLoadGrayMissingFile(t *testing.T) {
	if _, err := LoadGray(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestSaveMask(t *testing.T) {
	m := models.NewMask(6, 6)
	m.Set(2, 3)
	dir := t.TempDir()

	for _, name := range []string{"mask.png", "mask.webp", "mask.jpg", "nested/mask.bmp"} {
		path := filepath.Join(dir, name)
		if err := SaveMask(path, m); err != nil {
			t.Errorf("Failed to save %s: %v", name, err)
			continue
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("Expected %s to exist", name)
		}
	}

	loaded, err := LoadGray(filepath.Join(dir, "mask.png"))
	if err != nil {
		t.Fatalf("Failed to load mask: %v", err)
	}
	if loaded.At(2, 3) != 255 || loaded.At(0, 0) != 0 {
		t.Errorf("Expected white pixel at (2,3) only, got %f and %f", loaded.At(2, 3), loaded.At(0, 0))
	}
}

func TestIsImageFile(t *testing.T) {
	tests := map[string]bool{
		"slab_01.png":  true,
		"slab_01.JPG":  true,
		"range.tiff":   true,
		"range.webp":   true,
		"notes.txt":    false,
		"branch.json":  false,
		"no_extension": false,
	}
	for name, want := range tests {
		if got := IsImageFile(name); got != want {
			t.Errorf("IsImageFile(%q): expected %v, got %v", name, want, got)
		}
	}
}
