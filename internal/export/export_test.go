package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/jmylchreest/xstitch/internal/colour"
	"github.com/jmylchreest/xstitch/internal/errdefs"
	"github.com/jmylchreest/xstitch/internal/pattern"
	"github.com/jmylchreest/xstitch/internal/thread"
)

var (
	red   = thread.Colour{Code: "321", Name: "Red", RGB: colour.RGB{R: 255}}
	black = thread.Colour{Code: "310", Name: "Black", RGB: colour.RGB{}}
	white = thread.Colour{Code: "B5200", Name: "Snow White", RGB: colour.RGB{R: 255, G: 255, B: 255}}
)

// newResult builds a result from rows of threads.
func newResult(rows ...[]thread.Colour) *pattern.Result {
	p := &pattern.Pattern{Columns: len(rows[0]), Rows: len(rows)}
	for _, r := range rows {
		p.Cells = append(p.Cells, r...)
	}
	return &pattern.Result{
		Pattern:   p,
		Legend:    pattern.Assemble(p),
		Dataset:   thread.DatasetComplete,
		Algorithm: colour.AlgorithmLab,
	}
}

func sample() *pattern.Result {
	return newResult(
		[]thread.Colour{red, red, white},
		[]thread.Colour{black, red, white},
	)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, sample().Pattern, sample().Legend); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}

	lines := strings.Split(buf.String(), "\n")
	if lines[0] != "321 321 B52" {
		t.Errorf("row 0 = %q", lines[0])
	}
	if lines[1] != "310 321 B52" {
		t.Errorf("row 1 = %q", lines[1])
	}
	out := buf.String()
	for _, want := range []string{
		"Legend (3 colours, 3 x 2 stitches)",
		"Symbol  Code   Name",
		"321     321    Red         #ff0000  3",
		"B52     B5200  Snow White  #ffffff  2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteTextShortCodes(t *testing.T) {
	a := thread.Colour{Code: "A", RGB: colour.RGB{R: 1}}
	b := thread.Colour{Code: "B", RGB: colour.RGB{R: 2}}
	r := newResult([]thread.Colour{a, a}, []thread.Colour{b, a})

	var buf bytes.Buffer
	if err := WriteText(&buf, r.Pattern, r.Legend); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(buf.String(), "\n")
	if lines[0] != "A   A" || lines[1] != "B   A" {
		t.Errorf("rows = %q, %q", lines[0], lines[1])
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sample()); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	var doc Document
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if doc.Columns != 3 || doc.Rows != 2 || doc.Algorithm != "lab" || doc.Dataset != "complete" {
		t.Errorf("header = %+v", doc)
	}
	wantCells := [][]string{{"321", "321", "B5200"}, {"310", "321", "B5200"}}
	if !reflect.DeepEqual(doc.Cells, wantCells) {
		t.Errorf("cells = %v", doc.Cells)
	}
	wantLegend := []LegendEntry{
		{Code: "321", Name: "Red", Hex: "#ff0000", Stitches: 3},
		{Code: "B5200", Name: "Snow White", Hex: "#ffffff", Stitches: 2},
		{Code: "310", Name: "Black", Hex: "#000000", Stitches: 1},
	}
	if !reflect.DeepEqual(doc.Legend, wantLegend) {
		t.Errorf("legend = %+v", doc.Legend)
	}

	var raw map[string]any
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"columns", "rows", "algorithm", "dataset", "legend", "cells"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
}

func TestWriteANSI(t *testing.T) {
	tests := []struct {
		name    string
		numbers bool
		want    []string
	}{
		{name: "blocks", want: []string{"\033[48;2;255;0;0m  \033[0m", "3 colours"}},
		{name: "numbers", numbers: true, want: []string{"\033[48;2;255;0;0m\033[38;2;0;0;0m321\033[0m", "B5200 - Snow White"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			r := sample()
			if err := WriteANSI(&buf, r.Pattern, r.Legend, tt.numbers); err != nil {
				t.Fatalf("WriteANSI() error = %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("output missing %q", w)
				}
			}
		})
	}
}

func TestRenderImage(t *testing.T) {
	r := sample()
	img, err := RenderImage(r.Pattern, 10, false)
	if err != nil {
		t.Fatalf("RenderImage() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 31 || b.Dy() != 21 {
		t.Fatalf("bounds = %v, want 31x21", b)
	}

	tests := []struct {
		name string
		x, y int
		want color.RGBA
	}{
		{name: "red cell", x: 5, y: 5, want: color.RGBA{R: 255, A: 255}},
		{name: "white cell", x: 25, y: 5, want: color.RGBA{R: 255, G: 255, B: 255, A: 255}},
		{name: "black cell", x: 5, y: 15, want: color.RGBA{A: 255}},
		{name: "major line", x: 0, y: 5, want: majorLine},
		{name: "minor line", x: 10, y: 5, want: minorLine},
		{name: "closing line", x: 30, y: 20, want: minorLine},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := img.RGBAAt(tt.x, tt.y); got != tt.want {
				t.Errorf("pixel(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestRenderImageLabels(t *testing.T) {
	p := newResult([]thread.Colour{black}).Pattern

	plain, err := RenderImage(p, 30, false)
	if err != nil {
		t.Fatal(err)
	}
	labelled, err := RenderImage(p, 30, true)
	if err != nil {
		t.Fatal(err)
	}

	inked := 0
	for y := 1; y < 30; y++ {
		for x := 1; x < 30; x++ {
			if plain.RGBAAt(x, y) != labelled.RGBAAt(x, y) {
				inked++
			}
		}
	}
	if inked == 0 {
		t.Error("labels were not drawn")
	}

	// Cells too small for the font stay plain.
	small, err := RenderImage(p, 8, true)
	if err != nil {
		t.Fatal(err)
	}
	for y := 1; y < 8; y++ {
		for x := 1; x < 8; x++ {
			if small.RGBAAt(x, y) != (color.RGBA{A: 255}) {
				t.Fatalf("small cell pixel (%d,%d) = %v", x, y, small.RGBAAt(x, y))
			}
		}
	}
}

func TestRenderImageErrors(t *testing.T) {
	p := sample().Pattern
	wide := &pattern.Pattern{Columns: 2000, Rows: 1, Cells: make([]thread.Colour, 2000)}

	tests := []struct {
		name     string
		p        *pattern.Pattern
		cellSize int
	}{
		{name: "nil pattern", p: nil, cellSize: 10},
		{name: "tiny cells", p: p, cellSize: 1},
		{name: "too large", p: wide, cellSize: 20},
		{name: "cell larger than limit", p: p, cellSize: MaxImageSide + 1},
		{name: "overflowing cell size", p: &pattern.Pattern{Columns: 100, Rows: 100, Cells: make([]thread.Colour, 10000)}, cellSize: 1 << 62},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := RenderImage(tt.p, tt.cellSize, false); !errors.Is(err, errdefs.ErrInvalidInput) {
				t.Errorf("RenderImage() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePNG(&buf, sample().Pattern, 0, true); err != nil {
		t.Fatalf("WritePNG() error = %v", err)
	}
	cfg, format, err := image.DecodeConfig(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if format != "png" || cfg.Width != 3*DefaultCellSize+1 || cfg.Height != 2*DefaultCellSize+1 {
		t.Errorf("PNG = %s %dx%d", format, cfg.Width, cfg.Height)
	}
}

func TestPages(t *testing.T) {
	tests := []struct {
		name        string
		cols, rows  int
		pc, pr      int
		wantPages   int
		wantLast    Page
		wantSecond  Page
		checkSecond bool
	}{
		{
			name: "single page", cols: 20, rows: 30, wantPages: 1,
			wantLast: Page{Number: 1, PageRow: 1, PageColumn: 1, EndRow: 30, EndCol: 20},
		},
		{
			name: "exact fit", cols: 68, rows: 50, wantPages: 2,
			wantLast: Page{Number: 2, PageRow: 1, PageColumn: 2, StartRow: 0, EndRow: 50, StartCol: 34, EndCol: 68},
		},
		{
			name: "100 x 150 default", cols: 100, rows: 150, wantPages: 9,
			wantLast:    Page{Number: 9, PageRow: 3, PageColumn: 3, StartRow: 100, EndRow: 150, StartCol: 68, EndCol: 100},
			wantSecond:  Page{Number: 2, PageRow: 1, PageColumn: 2, StartRow: 0, EndRow: 50, StartCol: 34, EndCol: 68},
			checkSecond: true,
		},
		{
			name: "custom size", cols: 10, rows: 10, pc: 4, pr: 3, wantPages: 12,
			wantLast: Page{Number: 12, PageRow: 4, PageColumn: 3, StartRow: 9, EndRow: 10, StartCol: 8, EndCol: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pages := Pages(tt.cols, tt.rows, tt.pc, tt.pr)
			if len(pages) != tt.wantPages {
				t.Fatalf("len = %d, want %d", len(pages), tt.wantPages)
			}
			if last := pages[len(pages)-1]; last != tt.wantLast {
				t.Errorf("last = %+v, want %+v", last, tt.wantLast)
			}
			if tt.checkSecond && pages[1] != tt.wantSecond {
				t.Errorf("second = %+v, want %+v", pages[1], tt.wantSecond)
			}

			cells := 0
			for _, p := range pages {
				cells += p.Rows() * p.Columns()
			}
			if cells != tt.cols*tt.rows {
				t.Errorf("pages cover %d cells, want %d", cells, tt.cols*tt.rows)
			}
		})
	}

	if Pages(0, 10, 0, 0) != nil {
		t.Error("empty chart should have no pages")
	}
}

func TestWritePrint(t *testing.T) {
	rows := make([][]thread.Colour, 60)
	for y := range rows {
		rows[y] = make([]thread.Colour, 40)
		for x := range rows[y] {
			rows[y][x] = red
		}
	}
	rows[59][39] = white
	r := newResult(rows...)

	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Templates = NewTemplateLoader().WithCustomBase(t.TempDir())
	if err := WritePrint(&buf, r.Pattern, r.Legend, opts); err != nil {
		t.Fatalf("WritePrint() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"<title>Cross Stitch Pattern</title>",
		"Section 1: Row 1, Column 1",
		"Section 2: Row 1, Column 2",
		"Section 3: Row 2, Column 1",
		"Section 4: Row 2, Column 2",
		"DMC Thread Colors (2 colors)",
		"321 - Red (2399)",
		"B5200 - Snow White (1)",
		">B52</td>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("print sheet missing %q", want)
		}
	}
	if strings.Contains(out, "Section 5") {
		t.Error("unexpected fifth section")
	}
	if got := strings.Count(out, "<td "); got != 2400 {
		t.Errorf("cell count = %d, want 2400", got)
	}
}

func TestWritePrintCustomTemplate(t *testing.T) {
	base := t.TempDir()
	loader := NewTemplateLoader().WithCustomBase(base)
	custom := loader.CustomPath(PrintTemplateName)
	if err := os.MkdirAll(filepath.Dir(custom), 0o755); err != nil {
		t.Fatal(err)
	}
	tmpl := `{{ .Title }}|{{ len .Sections }}|{{ range .Legend }}{{ .Code }},{{ end }}`
	if err := os.WriteFile(custom, []byte(tmpl), 0o644); err != nil {
		t.Fatal(err)
	}

	opts := DefaultOptions()
	opts.Title = "Mine"
	opts.PageColumns = 1
	opts.Templates = loader

	var buf bytes.Buffer
	r := sample()
	if err := WritePrint(&buf, r.Pattern, r.Legend, opts); err != nil {
		t.Fatalf("WritePrint() error = %v", err)
	}
	if got := buf.String(); got != "Mine|3|321,B5200,310," {
		t.Errorf("custom template output = %q", got)
	}
}

func TestWrite(t *testing.T) {
	for _, f := range ValidFormats() {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			opts := DefaultOptions()
			opts.Templates = NewTemplateLoader().WithCustomBase(t.TempDir())
			if err := Write(&buf, f, sample(), opts); err != nil {
				t.Fatalf("Write() error = %v", err)
			}
			if buf.Len() == 0 {
				t.Error("Write() produced no output")
			}
		})
	}

	if err := Write(&bytes.Buffer{}, FormatText, nil, DefaultOptions()); !errors.Is(err, errdefs.ErrInvalidInput) {
		t.Errorf("Write(nil) error = %v", err)
	}
	if err := Write(&bytes.Buffer{}, Format("svg"), sample(), DefaultOptions()); !errors.Is(err, errdefs.ErrInvalidInput) {
		t.Errorf("Write(svg) error = %v", err)
	}
}

func TestFormatFlagValue(t *testing.T) {
	var f Format
	if f.String() != "text" || f.Type() != "format" {
		t.Errorf("zero value = %q/%q", f.String(), f.Type())
	}
	if err := f.Set(" PNG "); err != nil || f != FormatPNG {
		t.Errorf("Set(PNG) = %v, %q", err, f)
	}
	if err := f.Set("svg"); err == nil {
		t.Error("Set(svg) expected error")
	}
	if FormatPrint.Extension() != ".html" || FormatJSON.Extension() != ".json" || !FormatPNG.Binary() {
		t.Error("format metadata mismatch")
	}
}
