// Package pattern turns a stitch grid into a thread pattern and its legend.
//
// Reduction runs in two passes. The first pass matches every cell against the
// whole reference palette and counts how often each thread is chosen. The K
// most frequent threads are then selected, and the second pass moves any cell
// whose thread was not selected onto the nearest selected thread. Cells whose
// first-pass thread was selected are left alone, even if another selected
// thread happens to be closer.
package pattern

import (
	"slices"

	"github.com/jmylchreest/xstitch/internal/colour"
	"github.com/jmylchreest/xstitch/internal/errdefs"
	"github.com/jmylchreest/xstitch/internal/grid"
	"github.com/jmylchreest/xstitch/internal/thread"
)

// Error kinds reported by the pattern pipeline.
var (
	ErrInvalidInput  = errdefs.ErrInvalidInput
	ErrConfiguration = errdefs.ErrConfiguration
)

// Pattern is a Rows x Columns matrix of thread colours, stored row-major.
type Pattern struct {
	Columns int
	Rows    int
	Cells   []thread.Colour
}

// At returns the thread at column x, row y.
func (p *Pattern) At(x, y int) thread.Colour {
	return p.Cells[y*p.Columns+x]
}

// Row returns the threads of row y. The slice aliases the pattern and must
// not be modified.
func (p *Pattern) Row(y int) []thread.Colour {
	return p.Cells[y*p.Columns : (y+1)*p.Columns]
}

// Codes returns the set of thread codes used anywhere in the pattern.
func (p *Pattern) Codes() map[string]bool {
	codes := make(map[string]bool)
	for _, c := range p.Cells {
		codes[c.Code] = true
	}
	return codes
}

// Ranking is the first-pass frequency count for one thread.
type Ranking struct {
	Colour thread.Colour
	Count  int
}

// Reduction holds the outcome of Reduce along with the intermediate counts,
// which are useful for diagnostics.
type Reduction struct {
	Pattern *Pattern

	// Ranked lists every thread chosen in the first pass, most frequent first;
	// ties keep first-encounter order.
	Ranked []Ranking

	// Selected is the number of leading Ranked entries kept.
	Selected int

	// Reassigned counts cells moved to another thread in the second pass.
	Reassigned int
}

// Reduce assigns a thread from palette to every cell of g, using at most
// maxColours distinct threads. Palette order breaks distance ties, and codes
// within the palette must be unique.
func Reduce(g *grid.Grid, palette []thread.Colour, maxColours int, alg colour.Algorithm) (*Pattern, error) {
	r, err := ReduceDetailed(g, palette, maxColours, alg)
	if err != nil {
		return nil, err
	}
	return r.Pattern, nil
}

// ReduceDetailed is Reduce returning the frequency ranking as well.
func ReduceDetailed(g *grid.Grid, palette []thread.Colour, maxColours int, alg colour.Algorithm) (*Reduction, error) {
	if len(palette) == 0 {
		return nil, errdefs.Configuration("reference palette is empty")
	}
	if maxColours <= 0 {
		return nil, errdefs.InvalidInput("max colours must be a positive integer, got %d", maxColours)
	}
	if g.Empty() || g.Columns <= 0 || g.Rows <= 0 || len(g.Cells) != g.Columns*g.Rows {
		return nil, errdefs.InvalidInput("grid has no cells")
	}

	codes := make(map[string]bool, len(palette))
	for _, c := range palette {
		if codes[c.Code] {
			return nil, errdefs.Configuration("reference palette lists code %q more than once", c.Code)
		}
		codes[c.Code] = true
	}

	metric := colour.NewMetric(alg)
	refs := make([]colour.Point, len(palette))
	for i, c := range palette {
		refs[i] = metric.Prepare(c.RGB)
	}

	// Pass 1: nearest over the whole palette. Identical pixels always map to
	// the same thread, so each distinct value is matched once.
	assigned := make([]int, len(g.Cells))
	nearestCache := make(map[colour.RGB]int)
	counts := make(map[int]int)
	var order []int
	for i, px := range g.Cells {
		idx, ok := nearestCache[px]
		if !ok {
			idx = nearest(metric, metric.Prepare(px), refs, nil)
			nearestCache[px] = idx
		}
		assigned[i] = idx
		if counts[idx] == 0 {
			order = append(order, idx)
		}
		counts[idx]++
	}

	// Rank by frequency; the stable sort keeps first-encounter order on ties.
	ranked := slices.Clone(order)
	slices.SortStableFunc(ranked, func(a, b int) int {
		return counts[b] - counts[a]
	})
	keep := min(maxColours, len(ranked))
	selected := ranked[:keep]
	isSelected := make(map[int]bool, keep)
	for _, idx := range selected {
		isSelected[idx] = true
	}

	// Pass 2: only cells whose thread was dropped are rematched, against the
	// selected threads in rank order.
	reassigned := 0
	remapCache := make(map[colour.RGB]int)
	for i, idx := range assigned {
		if isSelected[idx] {
			continue
		}
		px := g.Cells[i]
		to, ok := remapCache[px]
		if !ok {
			to = nearest(metric, metric.Prepare(px), refs, selected)
			remapCache[px] = to
		}
		assigned[i] = to
		reassigned++
	}

	p := &Pattern{
		Columns: g.Columns,
		Rows:    g.Rows,
		Cells:   make([]thread.Colour, len(assigned)),
	}
	for i, idx := range assigned {
		p.Cells[i] = palette[idx]
	}

	rankings := make([]Ranking, len(ranked))
	for i, idx := range ranked {
		rankings[i] = Ranking{Colour: palette[idx], Count: counts[idx]}
	}

	return &Reduction{
		Pattern:    p,
		Ranked:     rankings,
		Selected:   keep,
		Reassigned: reassigned,
	}, nil
}

// nearest returns the index into refs closest to px. When candidates is
// non-nil only those indices are considered, in the order given. The first
// strictly smallest distance wins.
func nearest(metric colour.Metric, px colour.Point, refs []colour.Point, candidates []int) int {
	best := -1
	bestDist := 0.0
	consider := func(idx int) {
		d := metric.Between(px, refs[idx])
		if best < 0 || d < bestDist {
			best = idx
			bestDist = d
		}
	}

	if candidates == nil {
		for idx := range refs {
			consider(idx)
		}
	} else {
		for _, idx := range candidates {
			consider(idx)
		}
	}
	return best
}
