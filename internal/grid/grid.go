// Package grid downsamples a source image into the stitch grid.
package grid

import (
	"fmt"
	"image"
	"math"
	"strings"

	"golang.org/x/image/draw"

	"github.com/jmylchreest/xstitch/internal/colour"
	"github.com/jmylchreest/xstitch/internal/errdefs"
)

// Resampler names the interpolation used when shrinking the image.
type Resampler string

const (
	// ResampleBilinear averages neighbouring pixels. Default.
	ResampleBilinear Resampler = "bilinear"
	// ResampleNearest picks one source pixel per cell.
	ResampleNearest Resampler = "nearest"
	// ResampleCatmullRom is a sharper, slower cubic kernel.
	ResampleCatmullRom Resampler = "catmullrom"
)

// ValidResamplers returns the supported resampler names.
func ValidResamplers() []Resampler {
	return []Resampler{ResampleBilinear, ResampleNearest, ResampleCatmullRom}
}

// ParseResampler maps a name to a Resampler.
func ParseResampler(name string) (Resampler, error) {
	r := Resampler(strings.ToLower(strings.TrimSpace(name)))
	if r == "" {
		return ResampleBilinear, nil
	}
	for _, valid := range ValidResamplers() {
		if r == valid {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown resampler %q (valid: %v)", name, ValidResamplers())
}

// String implements pflag.Value.
func (r *Resampler) String() string {
	if *r == "" {
		return string(ResampleBilinear)
	}
	return string(*r)
}

// Set implements pflag.Value.
func (r *Resampler) Set(s string) error {
	v, err := ParseResampler(s)
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Type implements pflag.Value.
func (r *Resampler) Type() string {
	return "resampler"
}

func (r Resampler) scaler() draw.Scaler {
	switch r {
	case ResampleNearest:
		return draw.NearestNeighbor
	case ResampleCatmullRom:
		return draw.CatmullRom
	default:
		return draw.BiLinear
	}
}

// Grid is a Rows x Columns matrix of pixel colours, stored row-major.
type Grid struct {
	Columns int
	Rows    int
	Cells   []colour.RGB
}

// New returns a grid of the given size with every cell black.
func New(columns, rows int) *Grid {
	return &Grid{
		Columns: columns,
		Rows:    rows,
		Cells:   make([]colour.RGB, columns*rows),
	}
}

// FromRows builds a grid from a slice of rows. All rows must have the same
// length.
func FromRows(rows [][]colour.RGB) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errdefs.InvalidInput("grid must have at least one cell")
	}
	g := New(len(rows[0]), len(rows))
	for y, row := range rows {
		if len(row) != g.Columns {
			return nil, errdefs.InvalidInput("row %d has %d cells, want %d", y, len(row), g.Columns)
		}
		copy(g.Cells[y*g.Columns:], row)
	}
	return g, nil
}

// At returns the colour of the cell at column x, row y.
func (g *Grid) At(x, y int) colour.RGB {
	return g.Cells[y*g.Columns+x]
}

// Set sets the colour of the cell at column x, row y.
func (g *Grid) Set(x, y int, c colour.RGB) {
	g.Cells[y*g.Columns+x] = c
}

// Len returns the number of cells.
func (g *Grid) Len() int {
	return len(g.Cells)
}

// Empty reports whether the grid has no cells.
func (g *Grid) Empty() bool {
	return g == nil || len(g.Cells) == 0
}

// Rows computes the row count that keeps the image's aspect ratio at the
// given column count: round(columns * height / width).
func Rows(columns, width, height int) int {
	if width <= 0 {
		return 0
	}
	return int(math.Round(float64(columns) * (float64(height) / float64(width))))
}

// Sample downsamples img to columns cells across using bilinear resampling.
func Sample(img image.Image, columns int) (*Grid, error) {
	return SampleWith(img, columns, ResampleBilinear)
}

// SampleWith downsamples img to columns cells across with the given resampler.
// The row count follows the image's aspect ratio.
func SampleWith(img image.Image, columns int, resampler Resampler) (*Grid, error) {
	if img == nil {
		return nil, errdefs.InvalidInput("no source image loaded")
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, errdefs.InvalidInput("source image has no pixels")
	}
	if columns <= 0 {
		return nil, errdefs.InvalidInput("columns must be a positive integer, got %d", columns)
	}

	rows := Rows(columns, bounds.Dx(), bounds.Dy())
	if rows <= 0 {
		return nil, errdefs.InvalidInput("image %dx%d gives %d rows at %d columns",
			bounds.Dx(), bounds.Dy(), rows, columns)
	}

	// Scale into a straight-alpha buffer so channel values are read back
	// without premultiplication.
	dst := image.NewNRGBA(image.Rect(0, 0, columns, rows))
	resampler.scaler().Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)

	g := New(columns, rows)
	for y := 0; y < rows; y++ {
		for x := 0; x < columns; x++ {
			i := dst.PixOffset(x, y)
			if dst.Pix[i+3] == 0 {
				continue
			}
			g.Set(x, y, colour.RGB{R: dst.Pix[i], G: dst.Pix[i+1], B: dst.Pix[i+2]})
		}
	}

	return g, nil
}
