package visualization

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"crackvector/internal/models"
	"crackvector/pkg/cvm"
	"crackvector/pkg/imageio"
	"crackvector/pkg/measure"
)

var (
	branchColor   = color.RGBA{R: 30, G: 144, B: 255, A: 255}
	junctionColor = color.RGBA{R: 220, G: 20, B: 60, A: 255}
	widthColor    = color.RGBA{R: 50, G: 205, B: 50, A: 200}
)

// Viewer renders a crack vector model over the raster it was extracted from.
type Viewer struct {
	// model is the crack vector model to draw
	model *cvm.CrackVectorModel

	// background is drawn under the overlay; may be nil
	background *models.Raster

	// dimensions of the drawing area in pixels
	width  int
	height int

	// BarStride draws every n-th width bar of each branch
	BarStride int

	// DPI of the rendered image
	DPI int
}

// NewViewer creates a viewer for model. The background raster sets the extent
// of the drawing; without one the extent is the bounding box of the branches.
func NewViewer(model *cvm.CrackVectorModel, background *models.Raster) *Viewer {
	v := &Viewer{
		model:      model,
		background: background,
		BarStride:  1,
		DPI:        96,
	}
	if background != nil {
		v.width, v.height = background.Width, background.Height
	} else {
		v.width, v.height = extent(model)
	}
	return v
}

// extent returns one more than the largest column and row any branch or
// junction reaches.
func extent(model *cvm.CrackVectorModel) (int, int) {
	w, h := 1, 1
	grow := func(c models.Coordinate) {
		if c.Col+1 > w {
			w = c.Col + 1
		}
		if c.Row+1 > h {
			h = c.Row + 1
		}
	}
	for _, p := range model.BranchPaths() {
		for _, c := range p {
			grow(c)
		}
	}
	for _, c := range model.Intersections() {
		grow(c)
	}
	return w, h
}

// toXY maps a raster location to plot space: x is the column, y grows upward
// from the bottom row. Pixel centers sit at half-integer positions.
func (v *Viewer) toXY(row, col float64) plotter.XY {
	return plotter.XY{X: col + 0.5, Y: float64(v.height) - row - 0.5}
}

// Plot builds the overlay: background raster, branch centerlines, width bars
// and junction markers, titled with the model summary.
func (v *Viewer) Plot() (*plot.Plot, error) {
	p := plot.New()
	stats := v.model.Stats()
	p.Title.Text = fmt.Sprintf("branches: %d  junctions: %d  length: %.1f mm  mean width: %.2f mm",
		stats.Branches, stats.Intersections, stats.TotalLength, stats.MeanWidth)
	p.X.Min, p.X.Max = 0, float64(v.width)
	p.Y.Min, p.Y.Max = 0, float64(v.height)
	p.HideAxes()

	if v.background != nil {
		p.Add(plotter.NewImage(imageio.ToImage(v.background), 0, 0, float64(v.width), float64(v.height)))
	}

	stride := v.BarStride
	if stride < 1 {
		stride = 1
	}
	for i, b := range v.model.Branches() {
		for k := 0; k < len(b.WidthBounds); k += stride {
			bar, err := v.widthBar(b.WidthBounds[k])
			if err != nil {
				return nil, fmt.Errorf("branch %d width bar %d: %w", i, k, err)
			}
			p.Add(bar)
		}

		pts := make(plotter.XYs, len(b.Path))
		for j, c := range b.Path {
			pts[j] = v.toXY(float64(c.Row), float64(c.Col))
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("branch %d: %w", i, err)
		}
		line.Color = branchColor
		line.Width = vg.Points(1)
		p.Add(line)
	}

	junctions := v.model.Intersections()
	if len(junctions) > 0 {
		pts := make(plotter.XYs, len(junctions))
		for j, c := range junctions {
			pts[j] = v.toXY(float64(c.Row), float64(c.Col))
		}
		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("junctions: %w", err)
		}
		scatter.GlyphStyle.Color = junctionColor
		scatter.GlyphStyle.Radius = vg.Points(2.5)
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(scatter)
	}

	return p, nil
}

func (v *Viewer) widthBar(pair measure.WidthPair) (*plotter.Line, error) {
	line, err := plotter.NewLine(plotter.XYs{
		v.toXY(pair.Positive.Row, pair.Positive.Col),
		v.toXY(pair.Negative.Row, pair.Negative.Col),
	})
	if err != nil {
		return nil, err
	}
	line.Color = widthColor
	line.Width = vg.Points(0.5)
	return line, nil
}

// Render draws the overlay into an image at the viewer's DPI, one raster pixel
// per output pixel at 96 DPI.
func (v *Viewer) Render() (image.Image, error) {
	p, err := v.Plot()
	if err != nil {
		return nil, err
	}
	dpi := v.DPI
	if dpi <= 0 {
		dpi = 96
	}
	w := vg.Length(v.width) * vg.Inch / 96
	h := vg.Length(v.height) * vg.Inch / 96
	c := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(dpi))
	p.Draw(draw.New(c))
	return c.Image(), nil
}

// Save renders the overlay and writes it to filename. The format follows the
// extension: .png, .jpg/.jpeg or .webp.
func (v *Viewer) Save(filename string) error {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png", ".jpg", ".jpeg", ".webp":
	default:
		return fmt.Errorf("unsupported overlay format: %s", filepath.Ext(filename))
	}
	img, err := v.Render()
	if err != nil {
		return err
	}
	return imageio.Save(filename, img, 90)
}

// SaveSkeleton writes a skeleton mask as a black and white image.
func SaveSkeleton(mask *models.Mask, filename string) error {
	return imageio.SaveMask(filename, mask)
}
