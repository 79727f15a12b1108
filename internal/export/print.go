package export

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/jmylchreest/xstitch/internal/colour"
	"github.com/jmylchreest/xstitch/internal/pattern"
	tmplloader "github.com/jmylchreest/xstitch/internal/template"
)

// PrintTemplateName is the print sheet template file, both embedded and in
// the custom template directory.
const PrintTemplateName = "print.html.tmpl"

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Templates returns the embedded export templates.
func Templates() fs.FS {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// NewTemplateLoader returns the loader for print templates, honouring
// overrides in ~/.config/xstitch/templates/print/.
func NewTemplateLoader() *tmplloader.Loader {
	return tmplloader.New(string(FormatPrint), Templates())
}

type printCell struct {
	Symbol string
	Label  string
	Hex    string
	Ink    string
}

type printSection struct {
	Page
	Cells [][]printCell
}

type printLegendEntry struct {
	Code     string
	Name     string
	Hex      string
	Stitches int
}

type printData struct {
	Title    string
	Columns  int
	Rows     int
	Sections []printSection
	Legend   []printLegendEntry
}

func newPrintData(p *pattern.Pattern, legend *pattern.Legend, opts Options) printData {
	data := printData{
		Title:   opts.Title,
		Columns: p.Columns,
		Rows:    p.Rows,
	}
	for _, page := range Pages(p.Columns, p.Rows, opts.PageColumns, opts.PageRows) {
		sec := printSection{Page: page, Cells: make([][]printCell, 0, page.Rows())}
		for y := page.StartRow; y < page.EndRow; y++ {
			row := p.Row(y)[page.StartCol:page.EndCol]
			cells := make([]printCell, len(row))
			for i, c := range row {
				cells[i] = printCell{
					Symbol: c.Symbol(),
					Label:  c.Label(),
					Hex:    c.Hex(),
					Ink:    colour.Contrasting(c.RGB).Hex(),
				}
			}
			sec.Cells = append(sec.Cells, cells)
		}
		data.Sections = append(data.Sections, sec)
	}
	for _, e := range legend.All() {
		data.Legend = append(data.Legend, printLegendEntry{
			Code:     e.Colour.Code,
			Name:     e.Colour.Name,
			Hex:      e.Colour.Hex(),
			Stitches: e.Stitches,
		})
	}
	return data
}

// WritePrint writes an HTML print sheet: one section per page of the tiled
// chart, titled "Section n: Row r, Column c", then a legend page.
func WritePrint(w io.Writer, p *pattern.Pattern, legend *pattern.Legend, opts Options) error {
	loader := opts.Templates
	if loader == nil {
		loader = NewTemplateLoader()
	}
	loader.WithLogger(opts.logger().Named("template"))

	content, fromCustom, err := loader.Load(PrintTemplateName)
	if err != nil {
		return err
	}

	tmpl, err := template.New(PrintTemplateName).Parse(string(content))
	if err != nil {
		return fmt.Errorf("failed to parse print template (custom: %v): %w", fromCustom, err)
	}

	if opts.Title == "" {
		opts.Title = DefaultOptions().Title
	}
	if err := tmpl.Execute(w, newPrintData(p, legend, opts)); err != nil {
		return fmt.Errorf("failed to render print sheet: %w", err)
	}
	return nil
}
