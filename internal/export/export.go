// Package export renders a generated pattern and its legend into
// stitchable charts: plain text, JSON, ANSI terminal previews, PNG images
// and paginated HTML print sheets.
package export

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/xstitch/internal/errdefs"
	"github.com/jmylchreest/xstitch/internal/pattern"
	"github.com/jmylchreest/xstitch/internal/template"
)

// Format names an export format.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatANSI  Format = "ansi"
	FormatPNG   Format = "png"
	FormatPrint Format = "print"
)

// ValidFormats returns all export formats.
func ValidFormats() []Format {
	return []Format{FormatText, FormatJSON, FormatANSI, FormatPNG, FormatPrint}
}

// IsValidFormat reports whether f is a known format.
func IsValidFormat(f Format) bool {
	return slices.Contains(ValidFormats(), f)
}

// Extension returns the conventional file extension for f.
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatPNG:
		return ".png"
	case FormatPrint:
		return ".html"
	case FormatANSI:
		return ".ans"
	default:
		return ".txt"
	}
}

// Binary reports whether the format should not be written to a terminal.
func (f Format) Binary() bool {
	return f == FormatPNG
}

// String implements pflag.Value.
func (f *Format) String() string {
	if *f == "" {
		return string(FormatText)
	}
	return string(*f)
}

// Set implements pflag.Value.
func (f *Format) Set(s string) error {
	v := Format(strings.ToLower(strings.TrimSpace(s)))
	if !IsValidFormat(v) {
		return fmt.Errorf("invalid format %q (valid: %s)", s, joinFormats())
	}
	*f = v
	return nil
}

// Type implements pflag.Value.
func (f *Format) Type() string {
	return "format"
}

func joinFormats() string {
	names := make([]string, 0, len(ValidFormats()))
	for _, f := range ValidFormats() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

// Options controls rendering.
type Options struct {
	// CellSize is the edge of one stitch in PNG pixels.
	CellSize int

	// Numbers labels cells with their thread symbol in PNG and ANSI output.
	Numbers bool

	// PageColumns and PageRows size one print section.
	PageColumns int
	PageRows    int

	// Title heads the print sheet.
	Title string

	// Templates overrides the print template loader.
	Templates *template.Loader

	Logger hclog.Logger
}

// DefaultOptions returns the default rendering options.
func DefaultOptions() Options {
	return Options{
		CellSize:    DefaultCellSize,
		PageColumns: DefaultPageColumns,
		PageRows:    DefaultPageRows,
		Title:       "Cross Stitch Pattern",
	}
}

func (o Options) logger() hclog.Logger {
	if o.Logger == nil {
		return hclog.NewNullLogger()
	}
	return o.Logger
}

// Write renders r to w in the given format.
func Write(w io.Writer, f Format, r *pattern.Result, opts Options) error {
	if r == nil || r.Pattern == nil || r.Legend == nil {
		return errdefs.InvalidInput("no pattern generated")
	}

	switch f {
	case FormatText, "":
		return WriteText(w, r.Pattern, r.Legend)
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatANSI:
		return WriteANSI(w, r.Pattern, r.Legend, opts.Numbers)
	case FormatPNG:
		return WritePNG(w, r.Pattern, opts.CellSize, opts.Numbers)
	case FormatPrint:
		return WritePrint(w, r.Pattern, r.Legend, opts)
	default:
		return errdefs.InvalidInput("unknown export format %q", f)
	}
}
