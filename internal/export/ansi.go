package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/jmylchreest/xstitch/internal/colour"
	"github.com/jmylchreest/xstitch/internal/pattern"
)

// WriteANSI previews the pattern with 24-bit background colours, two
// character cells per stitch, followed by a swatch legend. With numbers set
// each cell is three characters wide and shows its thread symbol.
func WriteANSI(w io.Writer, p *pattern.Pattern, legend *pattern.Legend, numbers bool) error {
	bw := bufio.NewWriter(w)
	for y := 0; y < p.Rows; y++ {
		for _, c := range p.Row(y) {
			if numbers {
				bw.WriteString(colour.ColourPreviewWithText(c.RGB, c.Symbol(), 3))
			} else {
				bw.WriteString(colour.ColourPreview(c.RGB, 2))
			}
		}
		bw.WriteByte('\n')
	}

	fmt.Fprintf(bw, "\n%d colours\n", legend.Len())
	for _, e := range legend.All() {
		fmt.Fprintf(bw, "%s %5d\n", colour.FormatColourWithLabel(e.Colour.RGB, e.Colour.Label(), 4), e.Stitches)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write ANSI preview: %w", err)
	}
	return nil
}
