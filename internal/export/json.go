package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jmylchreest/xstitch/internal/pattern"
)

// Document is the JSON shape of an exported pattern. Cells holds thread
// codes row by row; the legend resolves codes to names and colours.
type Document struct {
	Columns   int           `json:"columns"`
	Rows      int           `json:"rows"`
	Algorithm string        `json:"algorithm"`
	Dataset   string        `json:"dataset"`
	Legend    []LegendEntry `json:"legend"`
	Cells     [][]string    `json:"cells"`
}

// LegendEntry is one legend line in a Document.
type LegendEntry struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Hex      string `json:"hex"`
	Stitches int    `json:"stitches"`
}

// NewDocument builds the JSON document for r.
func NewDocument(r *pattern.Result) Document {
	doc := Document{
		Columns:   r.Pattern.Columns,
		Rows:      r.Pattern.Rows,
		Algorithm: string(r.Algorithm),
		Dataset:   r.Dataset,
		Legend:    make([]LegendEntry, 0, r.Legend.Len()),
		Cells:     make([][]string, r.Pattern.Rows),
	}
	for _, e := range r.Legend.All() {
		doc.Legend = append(doc.Legend, LegendEntry{
			Code:     e.Colour.Code,
			Name:     e.Colour.Name,
			Hex:      e.Colour.Hex(),
			Stitches: e.Stitches,
		})
	}
	for y := range doc.Cells {
		row := r.Pattern.Row(y)
		doc.Cells[y] = make([]string, len(row))
		for x, c := range row {
			doc.Cells[y][x] = c.Code
		}
	}
	return doc
}

// WriteJSON writes r as an indented Document.
func WriteJSON(w io.Writer, r *pattern.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(r)); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}
