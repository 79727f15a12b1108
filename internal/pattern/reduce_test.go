package pattern

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"github.com/jmylchreest/xstitch/internal/colour"
	"github.com/jmylchreest/xstitch/internal/grid"
	"github.com/jmylchreest/xstitch/internal/thread"
)

var (
	threadA = thread.Colour{Code: "A", Name: "Red", RGB: colour.RGB{R: 255}}
	threadB = thread.Colour{Code: "B", Name: "Green", RGB: colour.RGB{G: 255}}
	threadC = thread.Colour{Code: "C", Name: "Blue", RGB: colour.RGB{B: 255}}
	rgbPal  = []thread.Colour{threadA, threadB, threadC}
)

func mustGrid(t *testing.T, rows [][]colour.RGB) *grid.Grid {
	t.Helper()
	g, err := grid.FromRows(rows)
	if err != nil {
		t.Fatalf("FromRows() error = %v", err)
	}
	return g
}

func codes(p *Pattern) []string {
	out := make([]string, len(p.Cells))
	for i, c := range p.Cells {
		out[i] = c.Code
	}
	return out
}

func TestReduceTwoByTwoScenario(t *testing.T) {
	g := mustGrid(t, [][]colour.RGB{
		{{R: 255}, {R: 255}},
		{{G: 255}, {B: 255}},
	})

	r, err := ReduceDetailed(g, rgbPal, 2, colour.AlgorithmEuclidean)
	if err != nil {
		t.Fatalf("ReduceDetailed() error = %v", err)
	}

	wantRanked := []Ranking{{Colour: threadA, Count: 2}, {Colour: threadB, Count: 1}, {Colour: threadC, Count: 1}}
	if !reflect.DeepEqual(r.Ranked, wantRanked) {
		t.Errorf("Ranked = %+v, want %+v", r.Ranked, wantRanked)
	}
	if r.Selected != 2 {
		t.Errorf("Selected = %d, want 2", r.Selected)
	}

	// Blue is equidistant from red and green; red ranks first so it wins.
	if got, want := codes(r.Pattern), []string{"A", "A", "B", "A"}; !reflect.DeepEqual(got, want) {
		t.Errorf("pattern = %v, want %v", got, want)
	}
	if r.Reassigned != 1 {
		t.Errorf("Reassigned = %d, want 1", r.Reassigned)
	}

	legend := Assemble(r.Pattern)
	if legend.Len() != 2 {
		t.Errorf("legend size = %d, want 2", legend.Len())
	}
	if got := legend.Codes(); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("legend codes = %v", got)
	}
}

func TestReduceUniformGrid(t *testing.T) {
	rows := make([][]colour.RGB, 5)
	for y := range rows {
		rows[y] = make([]colour.RGB, 7)
		for x := range rows[y] {
			rows[y][x] = colour.RGB{R: 30, G: 200, B: 40}
		}
	}
	g := mustGrid(t, rows)

	for _, alg := range colour.ValidAlgorithms() {
		for _, k := range []int{1, 2, 50} {
			p, err := Reduce(g, rgbPal, k, alg)
			if err != nil {
				t.Fatalf("Reduce(%s, %d) error = %v", alg, k, err)
			}
			for i, c := range p.Cells {
				if c != threadB {
					t.Fatalf("Reduce(%s, %d) cell %d = %s, want B", alg, k, i, c.Code)
				}
			}
			if l := Assemble(p); l.Len() != 1 {
				t.Errorf("Reduce(%s, %d) legend size = %d, want 1", alg, k, l.Len())
			}
		}
	}
}

func TestReduceKAboveDistinct(t *testing.T) {
	g := mustGrid(t, [][]colour.RGB{
		{{R: 250}, {G: 250}, {B: 250}},
		{{R: 240}, {G: 240}, {R: 200}},
	})

	r, err := ReduceDetailed(g, rgbPal, 10, colour.AlgorithmWeighted)
	if err != nil {
		t.Fatalf("ReduceDetailed() error = %v", err)
	}
	if r.Selected != 3 {
		t.Errorf("Selected = %d, want 3", r.Selected)
	}
	if r.Reassigned != 0 {
		t.Errorf("Reassigned = %d, want 0", r.Reassigned)
	}
	if l := Assemble(r.Pattern); l.Len() != 3 {
		t.Errorf("legend size = %d, want 3", l.Len())
	}
	if got, want := codes(r.Pattern), []string{"A", "B", "C", "A", "B", "A"}; !reflect.DeepEqual(got, want) {
		t.Errorf("pattern = %v, want %v", got, want)
	}
}

func TestReduceSelectedCellsKeepFirstPassThread(t *testing.T) {
	x := thread.Colour{Code: "X", RGB: colour.RGB{R: 0}}
	y := thread.Colour{Code: "Y", RGB: colour.RGB{R: 10}}

	// (5,0,0) ties between X and Y; palette order picks X. Y is more frequent
	// so it ranks first, but the X cell is not rematched because X is kept.
	g := mustGrid(t, [][]colour.RGB{
		{{R: 5}, {R: 10}, {R: 10}, {R: 10}},
	})

	p, err := Reduce(g, []thread.Colour{x, y}, 2, colour.AlgorithmEuclidean)
	if err != nil {
		t.Fatalf("Reduce() error = %v", err)
	}
	if got, want := codes(p), []string{"X", "Y", "Y", "Y"}; !reflect.DeepEqual(got, want) {
		t.Errorf("pattern = %v, want %v", got, want)
	}
}

func TestReduceSecondPassUsesRankOrder(t *testing.T) {
	x := thread.Colour{Code: "X", RGB: colour.RGB{R: 0}}
	y := thread.Colour{Code: "Y", RGB: colour.RGB{R: 20}}
	z := thread.Colour{Code: "Z", RGB: colour.RGB{R: 10}}

	// Z is dropped; its cell is equidistant from X and Y. Y ranks above X,
	// so Y wins even though X comes first in the palette.
	g := mustGrid(t, [][]colour.RGB{
		{{R: 10}, {R: 0}, {R: 0}, {R: 20}, {R: 20}, {R: 20}},
	})

	r, err := ReduceDetailed(g, []thread.Colour{x, y, z}, 2, colour.AlgorithmEuclidean)
	if err != nil {
		t.Fatalf("ReduceDetailed() error = %v", err)
	}
	if got, want := codes(r.Pattern), []string{"Y", "X", "X", "Y", "Y", "Y"}; !reflect.DeepEqual(got, want) {
		t.Errorf("pattern = %v, want %v", got, want)
	}
}

func TestReduceFrequencyTieKeepsFirstEncounter(t *testing.T) {
	// C is met before B and both appear once, so C ranks first and is the
	// only thread kept with K=1.
	g := mustGrid(t, [][]colour.RGB{
		{{B: 255}, {G: 255}},
	})

	r, err := ReduceDetailed(g, rgbPal, 1, colour.AlgorithmEuclidean)
	if err != nil {
		t.Fatalf("ReduceDetailed() error = %v", err)
	}
	if r.Ranked[0].Colour.Code != "C" {
		t.Errorf("Ranked[0] = %s, want C", r.Ranked[0].Colour.Code)
	}
	if got, want := codes(r.Pattern), []string{"C", "C"}; !reflect.DeepEqual(got, want) {
		t.Errorf("pattern = %v, want %v", got, want)
	}
}

func TestReduceErrors(t *testing.T) {
	g := mustGrid(t, [][]colour.RGB{{{R: 1}}})

	tests := []struct {
		name    string
		grid    *grid.Grid
		palette []thread.Colour
		k       int
		want    error
	}{
		{name: "empty palette", grid: g, palette: nil, k: 3, want: ErrConfiguration},
		{name: "duplicate codes", grid: g, palette: []thread.Colour{threadA, threadA}, k: 3, want: ErrConfiguration},
		{name: "zero k", grid: g, palette: rgbPal, k: 0, want: ErrInvalidInput},
		{name: "negative k", grid: g, palette: rgbPal, k: -1, want: ErrInvalidInput},
		{name: "nil grid", grid: nil, palette: rgbPal, k: 1, want: ErrInvalidInput},
		{name: "empty grid", grid: grid.New(0, 0), palette: rgbPal, k: 1, want: ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reduce(tt.grid, tt.palette, tt.k, colour.AlgorithmEuclidean)
			if !errors.Is(err, tt.want) {
				t.Errorf("Reduce() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func randomGrid(rng *rand.Rand, columns, rows int) *grid.Grid {
	g := grid.New(columns, rows)
	for i := range g.Cells {
		g.Cells[i] = colour.RGB{
			R: uint8(rng.Intn(256)),
			G: uint8(rng.Intn(256)),
			B: uint8(rng.Intn(256)),
		}
	}
	return g
}

func TestReduceInvariants(t *testing.T) {
	palette, err := thread.NewCatalogue().Lookup(thread.PreferLegacy, nil)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}

	rng := rand.New(rand.NewSource(42))
	for _, alg := range colour.ValidAlgorithms() {
		for _, k := range []int{1, 3, 8, 1000} {
			g := randomGrid(rng, 13, 9)

			p, err := Reduce(g, palette.Colours, k, alg)
			if err != nil {
				t.Fatalf("Reduce(%s, %d) error = %v", alg, k, err)
			}
			legend := Assemble(p)

			if legend.Len() > k {
				t.Errorf("%s k=%d: legend size %d exceeds k", alg, k, legend.Len())
			}
			if legend.Len() < 1 {
				t.Errorf("%s k=%d: empty legend", alg, k)
			}

			used := p.Codes()
			if len(used) != legend.Len() {
				t.Errorf("%s k=%d: pattern uses %d codes, legend has %d", alg, k, len(used), legend.Len())
			}
			total := 0
			for _, e := range legend.Entries() {
				if !used[e.Colour.Code] {
					t.Errorf("%s k=%d: legend code %s not in pattern", alg, k, e.Colour.Code)
				}
				total += e.Stitches
			}
			if total != g.Len() {
				t.Errorf("%s k=%d: stitch total %d, want %d", alg, k, total, g.Len())
			}

			// Re-running with identical inputs gives an identical result.
			again, err := Reduce(g, palette.Colours, k, alg)
			if err != nil {
				t.Fatalf("second Reduce() error = %v", err)
			}
			if !reflect.DeepEqual(p, again) {
				t.Errorf("%s k=%d: Reduce is not deterministic", alg, k)
			}
			if !reflect.DeepEqual(legend.Entries(), Assemble(again).Entries()) {
				t.Errorf("%s k=%d: Assemble is not deterministic", alg, k)
			}
		}
	}
}

func TestReduceMatchesBruteForce(t *testing.T) {
	// The per-pixel memo must not change results: compare against a direct
	// implementation on a grid with many repeated values.
	palette, err := thread.NewCatalogue().Lookup(thread.PreferAuto, nil)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}

	rng := rand.New(rand.NewSource(7))
	g := grid.New(20, 20)
	for i := range g.Cells {
		v := uint8(rng.Intn(8) * 32)
		g.Cells[i] = colour.RGB{R: v, G: 255 - v, B: uint8(rng.Intn(2) * 200)}
	}

	for _, alg := range colour.ValidAlgorithms() {
		p, err := Reduce(g, palette.Colours, 4, alg)
		if err != nil {
			t.Fatalf("Reduce() error = %v", err)
		}
		want := bruteForce(g, palette.Colours, 4, alg)
		if !reflect.DeepEqual(codes(p), want) {
			t.Errorf("%s: Reduce = %v, brute force = %v", alg, codes(p), want)
		}
	}
}

func bruteForce(g *grid.Grid, palette []thread.Colour, k int, alg colour.Algorithm) []string {
	closest := func(px colour.RGB, among []thread.Colour) thread.Colour {
		var best thread.Colour
		bestDist := -1.0
		for _, c := range among {
			if d := colour.Distance(px, c.RGB, alg); bestDist < 0 || d < bestDist {
				best, bestDist = c, d
			}
		}
		return best
	}

	first := make([]thread.Colour, g.Len())
	counts := map[string]int{}
	var order []thread.Colour
	for i, px := range g.Cells {
		first[i] = closest(px, palette)
		if counts[first[i].Code] == 0 {
			order = append(order, first[i])
		}
		counts[first[i].Code]++
	}

	// Insertion sort keeps equal counts in encounter order.
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && counts[order[j].Code] > counts[order[j-1].Code]; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
	if len(order) > k {
		order = order[:k]
	}
	selected := map[string]bool{}
	for _, c := range order {
		selected[c.Code] = true
	}

	out := make([]string, g.Len())
	for i, c := range first {
		if !selected[c.Code] {
			c = closest(g.Cells[i], order)
		}
		out[i] = c.Code
	}
	return out
}
