package pattern

import (
	"github.com/jmylchreest/xstitch/internal/thread"
)

// LegendEntry is one thread in a legend.
type LegendEntry struct {
	Colour thread.Colour `json:"colour"`

	// Stitches is the number of cells using the thread.
	Stitches int `json:"stitches"`
}

// Legend is the ordered set of threads used by a pattern. Entries appear in
// the order their thread is first met walking the pattern row by row.
type Legend struct {
	entries []LegendEntry
	index   map[string]int
}

// Assemble builds the legend for p.
func Assemble(p *Pattern) *Legend {
	l := &Legend{index: make(map[string]int)}
	if p == nil {
		return l
	}

	for _, c := range p.Cells {
		i, ok := l.index[c.Code]
		if !ok {
			i = len(l.entries)
			l.index[c.Code] = i
			l.entries = append(l.entries, LegendEntry{Colour: c})
		}
		l.entries[i].Stitches++
	}
	return l
}

// Len returns the number of threads in the legend.
func (l *Legend) Len() int {
	return len(l.entries)
}

// Entries returns a copy of the legend entries in order.
func (l *Legend) Entries() []LegendEntry {
	out := make([]LegendEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Codes returns the thread codes in legend order.
func (l *Legend) Codes() []string {
	codes := make([]string, len(l.entries))
	for i, e := range l.entries {
		codes[i] = e.Colour.Code
	}
	return codes
}

// Lookup returns the legend entry for a thread code.
func (l *Legend) Lookup(code string) (LegendEntry, bool) {
	i, ok := l.index[code]
	if !ok {
		return LegendEntry{}, false
	}
	return l.entries[i], true
}

// All returns an iterator over the legend entries in order.
func (l *Legend) All() func(func(int, LegendEntry) bool) {
	return func(yield func(int, LegendEntry) bool) {
		for i, e := range l.entries {
			if !yield(i, e) {
				return
			}
		}
	}
}
