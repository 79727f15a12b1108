package pattern

import (
	"image"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/xstitch/internal/colour"
	"github.com/jmylchreest/xstitch/internal/errdefs"
	"github.com/jmylchreest/xstitch/internal/grid"
	"github.com/jmylchreest/xstitch/internal/thread"
)

// Options configures one pattern generation.
type Options struct {
	// Columns is the stitch count across the pattern.
	Columns int

	// MaxColours caps the number of distinct threads (K).
	MaxColours int

	// Algorithm selects the colour distance metric.
	Algorithm colour.Algorithm

	// Palette selects where the dataset fallback chain starts.
	Palette thread.Preference

	// PaletteSource, when set, is tried before the built-in datasets.
	PaletteSource thread.Source

	// Resampler selects the image downsampling kernel.
	Resampler grid.Resampler
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		Columns:    100,
		MaxColours: 20,
		Algorithm:  colour.AlgorithmEuclidean,
		Palette:    thread.PreferAuto,
		Resampler:  grid.ResampleBilinear,
	}
}

// Validate checks the numeric options.
func (o Options) Validate() error {
	if o.Columns <= 0 {
		return errdefs.InvalidInput("columns must be a positive integer, got %d", o.Columns)
	}
	if o.MaxColours <= 0 {
		return errdefs.InvalidInput("max colours must be a positive integer, got %d", o.MaxColours)
	}
	return nil
}

// Result is the full output of one generation.
type Result struct {
	Grid      *grid.Grid
	Pattern   *Pattern
	Legend    *Legend
	Dataset   string
	Algorithm colour.Algorithm

	// Ranked is the first-pass frequency ranking; the first Selected
	// entries were kept.
	Ranked     []Ranking
	Selected   int
	Reassigned int
}

// Session owns the most recent pattern. Each successful Generate replaces the
// grid, pattern and legend together; a failed one leaves them as they were.
type Session struct {
	mu        sync.RWMutex
	catalogue *thread.Catalogue
	logger    hclog.Logger
	current   *Result
}

// NewSession creates a session resolving palettes from catalogue.
func NewSession(catalogue *thread.Catalogue, logger hclog.Logger) *Session {
	if catalogue == nil {
		catalogue = thread.NewCatalogue()
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Session{
		catalogue: catalogue.WithLogger(logger.Named("palette")),
		logger:    logger,
	}
}

// Current returns the last successful result, or nil.
func (s *Session) Current() *Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Generate builds a pattern from img.
func (s *Session) Generate(img image.Image, opts Options) (*Result, error) {
	if img == nil {
		return nil, errdefs.InvalidInput("no source image loaded")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()

	palette, err := s.catalogue.Lookup(opts.Palette, opts.PaletteSource)
	if err != nil {
		return nil, err
	}

	g, err := grid.SampleWith(img, opts.Columns, opts.Resampler)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("image sampled",
		"source", img.Bounds().Size().String(),
		"columns", g.Columns,
		"rows", g.Rows)

	reduction, err := ReduceDetailed(g, palette.Colours, opts.MaxColours, opts.Algorithm)
	if err != nil {
		return nil, err
	}

	legend := Assemble(reduction.Pattern)
	s.logger.Debug("pattern reduced",
		"dataset", palette.Dataset,
		"algorithm", colour.NewMetric(opts.Algorithm).Algorithm(),
		"matched", len(reduction.Ranked),
		"selected", reduction.Selected,
		"reassigned", reduction.Reassigned,
		"threads", legend.Len(),
		"elapsed", time.Since(start))

	result := &Result{
		Grid:       g,
		Pattern:    reduction.Pattern,
		Legend:     legend,
		Dataset:    palette.Dataset,
		Algorithm:  colour.NewMetric(opts.Algorithm).Algorithm(),
		Ranked:     reduction.Ranked,
		Selected:   reduction.Selected,
		Reassigned: reduction.Reassigned,
	}

	s.mu.Lock()
	s.current = result
	s.mu.Unlock()

	return result, nil
}
