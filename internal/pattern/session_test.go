package pattern

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/xstitch/internal/colour"
	"github.com/jmylchreest/xstitch/internal/grid"
	"github.com/jmylchreest/xstitch/internal/thread"
)

// quadrants returns a 40x20 image split into red, green, blue and white
// vertical bands.
func quadrants() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 40, 20))
	bands := []color.NRGBA{
		{R: 255, A: 255},
		{G: 255, A: 255},
		{B: 255, A: 255},
		{R: 255, G: 255, B: 255, A: 255},
	}
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			img.SetNRGBA(x, y, bands[x/10])
		}
	}
	return img
}

func TestSessionGenerate(t *testing.T) {
	s := NewSession(nil, hclog.NewNullLogger())
	if s.Current() != nil {
		t.Fatal("new session should have no result")
	}

	opts := DefaultOptions()
	opts.Columns = 8
	opts.MaxColours = 4
	opts.Resampler = grid.ResampleNearest

	res, err := s.Generate(quadrants(), opts)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if res.Grid.Columns != 8 || res.Grid.Rows != 4 {
		t.Errorf("grid = %dx%d, want 8x4", res.Grid.Columns, res.Grid.Rows)
	}
	if res.Pattern.Columns != 8 || res.Pattern.Rows != 4 || len(res.Pattern.Cells) != 32 {
		t.Errorf("pattern dimensions = %dx%d (%d cells)", res.Pattern.Columns, res.Pattern.Rows, len(res.Pattern.Cells))
	}
	if res.Dataset != thread.DatasetComplete {
		t.Errorf("Dataset = %q, want %q", res.Dataset, thread.DatasetComplete)
	}
	if res.Algorithm != colour.AlgorithmEuclidean {
		t.Errorf("Algorithm = %q", res.Algorithm)
	}
	if res.Legend.Len() > 4 || res.Legend.Len() < 1 {
		t.Errorf("legend size = %d, want 1..4", res.Legend.Len())
	}
	if s.Current() != res {
		t.Error("Current() should return the latest result")
	}

	// The white band is B5200 in every shipped dataset.
	if e, ok := res.Legend.Lookup("B5200"); !ok || e.Stitches != 8 {
		t.Errorf("B5200 = %+v, %v; want 8 stitches", e, ok)
	}
}

func TestSessionFailureKeepsPrevious(t *testing.T) {
	s := NewSession(thread.NewCatalogue(), nil)

	opts := DefaultOptions()
	opts.Columns = 4
	first, err := s.Generate(quadrants(), opts)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	tests := []struct {
		name string
		img  image.Image
		opts func(Options) Options
		want error
	}{
		{name: "no image", img: nil, opts: func(o Options) Options { return o }, want: ErrInvalidInput},
		{name: "zero columns", img: quadrants(), opts: func(o Options) Options { o.Columns = 0; return o }, want: ErrInvalidInput},
		{name: "negative colours", img: quadrants(), opts: func(o Options) Options { o.MaxColours = -2; return o }, want: ErrInvalidInput},
		{name: "unknown palette", img: quadrants(), opts: func(o Options) Options { o.Palette = "glitter"; return o }, want: ErrConfiguration},
		{name: "empty image", img: image.NewNRGBA(image.Rect(0, 0, 0, 0)), opts: func(o Options) Options { return o }, want: ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Generate(tt.img, tt.opts(opts))
			if !errors.Is(err, tt.want) {
				t.Errorf("Generate() error = %v, want %v", err, tt.want)
			}
			if s.Current() != first {
				t.Error("failed Generate replaced the current result")
			}
		})
	}
}

func TestSessionPaletteSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mine.json")
	doc := `[{"code":"R","name":"Red","hex":"#ff0000"},{"code":"K","name":"Black","hex":"#000000"}]`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	opts := DefaultOptions()
	opts.Columns = 4
	opts.PaletteSource = thread.NewFileSource(path)

	res, err := NewSession(nil, nil).Generate(quadrants(), opts)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if res.Dataset != "mine" {
		t.Errorf("Dataset = %q, want mine", res.Dataset)
	}
	for code := range res.Pattern.Codes() {
		if code != "R" && code != "K" {
			t.Errorf("unexpected code %q from user palette", code)
		}
	}
}

func TestSessionUnknownAlgorithmFallsBack(t *testing.T) {
	opts := DefaultOptions()
	opts.Columns = 4
	opts.Algorithm = "cosmic"

	res, err := NewSession(nil, nil).Generate(quadrants(), opts)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if res.Algorithm != colour.AlgorithmEuclidean {
		t.Errorf("Algorithm = %q, want euclidean", res.Algorithm)
	}
}
