package export

// Default print section size: 34 x 50 stitches of 20px fit an A4 page with
// half-inch margins.
const (
	DefaultPageColumns = 34
	DefaultPageRows    = 50
)

// Page is one rectangular section of the chart. Start is inclusive and End
// exclusive; PageRow and PageColumn count from 1.
type Page struct {
	Number     int
	PageRow    int
	PageColumn int
	StartRow   int
	EndRow     int
	StartCol   int
	EndCol     int
}

// Columns returns the number of stitch columns on the page.
func (p Page) Columns() int { return p.EndCol - p.StartCol }

// Rows returns the number of stitch rows on the page.
func (p Page) Rows() int { return p.EndRow - p.StartRow }

// Pages tiles a cols x rows chart into sections, left to right then top to
// bottom. Non-positive page sizes use the defaults.
func Pages(cols, rows, perPageCols, perPageRows int) []Page {
	if cols <= 0 || rows <= 0 {
		return nil
	}
	if perPageCols <= 0 {
		perPageCols = DefaultPageColumns
	}
	if perPageRows <= 0 {
		perPageRows = DefaultPageRows
	}

	colPages := (cols + perPageCols - 1) / perPageCols
	rowPages := (rows + perPageRows - 1) / perPageRows

	pages := make([]Page, 0, colPages*rowPages)
	for pr := 0; pr < rowPages; pr++ {
		for pc := 0; pc < colPages; pc++ {
			startRow := pr * perPageRows
			startCol := pc * perPageCols
			pages = append(pages, Page{
				Number:     len(pages) + 1,
				PageRow:    pr + 1,
				PageColumn: pc + 1,
				StartRow:   startRow,
				EndRow:     min(startRow+perPageRows, rows),
				StartCol:   startCol,
				EndCol:     min(startCol+perPageCols, cols),
			})
		}
	}
	return pages
}
