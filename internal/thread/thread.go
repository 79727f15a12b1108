// Package thread provides the reference thread palettes a pattern may use.
//
// A palette is an ordered list of thread colours. The order matters: when two
// threads are equally close to a pixel, the one listed first wins, so every
// dataset keeps the order it was written in.
package thread

import (
	"fmt"

	"github.com/jmylchreest/xstitch/internal/colour"
)

// Colour is a single reference thread colour.
type Colour struct {
	Code string     `json:"code"`
	Name string     `json:"name"`
	RGB  colour.RGB `json:"rgb"`
}

// Hex returns the thread colour as a hex string (e.g., "#c72b3b").
func (c Colour) Hex() string {
	return c.RGB.Hex()
}

// Label returns "code - name", the way threads are listed in a legend.
func (c Colour) Label() string {
	return fmt.Sprintf("%s - %s", c.Code, c.Name)
}

// Symbol returns the short cell label for the thread: the first three
// characters of its code.
func (c Colour) Symbol() string {
	runes := []rune(c.Code)
	if len(runes) <= 3 {
		return c.Code
	}
	return string(runes[:3])
}

// Palette is a resolved reference palette.
type Palette struct {
	// Dataset names the dataset that supplied the colours.
	Dataset string

	// Colours in dataset order.
	Colours []Colour
}

// Len returns the number of colours in the palette.
func (p *Palette) Len() int {
	return len(p.Colours)
}

// Find returns the colour with the given code.
func (p *Palette) Find(code string) (Colour, bool) {
	for _, c := range p.Colours {
		if c.Code == code {
			return c, true
		}
	}
	return Colour{}, false
}

// Fallback returns the two-thread palette used when no dataset is available.
func Fallback() []Colour {
	return []Colour{
		{Code: "B5200", Name: "Snow White", RGB: colour.RGB{R: 255, G: 255, B: 255}},
		{Code: "310", Name: "Black", RGB: colour.RGB{R: 0, G: 0, B: 0}},
	}
}
