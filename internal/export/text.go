package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jmylchreest/xstitch/internal/pattern"
	"github.com/jmylchreest/xstitch/internal/util/table"
)

// WriteText writes one line per pattern row, each cell as its thread symbol
// padded to three characters, then a blank line and the legend table.
func WriteText(w io.Writer, p *pattern.Pattern, legend *pattern.Legend) error {
	var b strings.Builder
	cell := make([]string, p.Columns)
	for y := 0; y < p.Rows; y++ {
		for x, c := range p.Row(y) {
			cell[x] = fmt.Sprintf("%-3s", c.Symbol())
		}
		b.WriteString(strings.TrimRight(strings.Join(cell, " "), " "))
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "\nLegend (%d colours, %d x %d stitches)\n\n", legend.Len(), p.Columns, p.Rows)
	b.WriteString(legendTable(legend).Render())

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write text chart: %w", err)
	}
	return nil
}

func legendTable(legend *pattern.Legend) *table.Table {
	t := table.New("Symbol", "Code", "Name", "Hex", "Stitches")
	t.SetColumnMaxWidth(2, 32)
	for _, e := range legend.All() {
		t.AddRow(e.Colour.Symbol(), e.Colour.Code, e.Colour.Name, e.Colour.Hex(), strconv.Itoa(e.Stitches))
	}
	return t
}
