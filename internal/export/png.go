package export

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/jmylchreest/xstitch/internal/colour"
	"github.com/jmylchreest/xstitch/internal/errdefs"
	"github.com/jmylchreest/xstitch/internal/pattern"
)

const (
	// DefaultCellSize matches the 20px cells of the print sheet.
	DefaultCellSize = 20

	// MaxImageSide bounds either side of a rendered chart.
	MaxImageSide = 16384

	// MajorGridEvery draws a darker line every n stitches.
	MajorGridEvery = 10
)

var (
	minorLine = color.RGBA{R: 96, G: 96, B: 96, A: 255}
	majorLine = color.RGBA{A: 255}
)

// RenderImage draws the chart: cellSize pixels per stitch including a 1px
// grid line on the top and left of every cell, with a closing line on the
// right and bottom. Every tenth line is black. When numbers is set, symbols
// are drawn in the contrasting colour wherever they fit in a cell.
func RenderImage(p *pattern.Pattern, cellSize int, numbers bool) (*image.RGBA, error) {
	if p == nil || p.Columns <= 0 || p.Rows <= 0 {
		return nil, errdefs.InvalidInput("no pattern generated")
	}
	if cellSize < 2 {
		return nil, errdefs.InvalidInput("cell size must be at least 2, got %d", cellSize)
	}
	// Bounded before multiplying so huge cell sizes cannot overflow.
	limit := (MaxImageSide - 1) / cellSize
	if cellSize > MaxImageSide || p.Columns > limit || p.Rows > limit {
		return nil, errdefs.InvalidInput("chart of %dx%d stitches at %dpx per stitch exceeds %d pixels",
			p.Columns, p.Rows, cellSize, MaxImageSide)
	}
	width := p.Columns*cellSize + 1
	height := p.Rows*cellSize + 1

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	fill := func(r image.Rectangle, c color.Color) {
		draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
	}

	for y := 0; y < p.Rows; y++ {
		for x, c := range p.Row(y) {
			fill(cellRect(x, y, cellSize), c.RGB.RGBA())
		}
	}

	for x := 0; x <= p.Columns; x++ {
		fill(image.Rect(x*cellSize, 0, x*cellSize+1, height), gridLine(x))
	}
	for y := 0; y <= p.Rows; y++ {
		fill(image.Rect(0, y*cellSize, width, y*cellSize+1), gridLine(y))
	}

	if numbers {
		drawLabels(img, p, cellSize)
	}
	return img, nil
}

func cellRect(x, y, cellSize int) image.Rectangle {
	return image.Rect(x*cellSize+1, y*cellSize+1, (x+1)*cellSize, (y+1)*cellSize)
}

func gridLine(i int) color.Color {
	if i%MajorGridEvery == 0 {
		return majorLine
	}
	return minorLine
}

func drawLabels(img *image.RGBA, p *pattern.Pattern, cellSize int) {
	face := basicfont.Face7x13
	inner := cellSize - 1
	if face.Height > inner {
		return
	}

	d := &font.Drawer{Dst: img, Face: face}
	for y := 0; y < p.Rows; y++ {
		for x, c := range p.Row(y) {
			sym := c.Symbol()
			adv := d.MeasureString(sym).Ceil()
			if adv > inner {
				continue
			}
			r := cellRect(x, y, cellSize)
			d.Src = image.NewUniform(colour.Contrasting(c.RGB).RGBA())
			d.Dot = fixed.P(r.Min.X+(inner-adv)/2, r.Min.Y+(inner-face.Height)/2+face.Ascent)
			d.DrawString(sym)
		}
	}
}

// WritePNG renders the chart and encodes it as PNG.
func WritePNG(w io.Writer, p *pattern.Pattern, cellSize int, numbers bool) error {
	if cellSize == 0 {
		cellSize = DefaultCellSize
	}
	img, err := RenderImage(p, cellSize, numbers)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}
