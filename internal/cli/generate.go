package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jmylchreest/xstitch/internal/colour"
	"github.com/jmylchreest/xstitch/internal/export"
	"github.com/jmylchreest/xstitch/internal/grid"
	"github.com/jmylchreest/xstitch/internal/image"
	"github.com/jmylchreest/xstitch/internal/pattern"
	"github.com/jmylchreest/xstitch/internal/thread"
)

type generateOptions struct {
	size        sizeValue
	colours     int
	algorithm   colour.Algorithm
	palette     thread.Preference
	paletteFile string
	resample    grid.Resampler
	format      export.Format
	output      string
	cellSize    int
	numbers     bool
	pageCols    int
	pageRows    int
	title       string
	noCache     bool
}

func newGenerateCmd() *cobra.Command {
	defaults := pattern.DefaultOptions()
	opts := &generateOptions{
		size:      sizeValue(defaults.Columns),
		colours:   defaults.MaxColours,
		algorithm: defaults.Algorithm,
		palette:   defaults.Palette,
		resample:  defaults.Resampler,
		format:    export.FormatText,
	}

	cmd := &cobra.Command{
		Use:   "generate <image|url>",
		Short: "Generate a cross-stitch pattern from an image",
		Long: `Generate a cross-stitch pattern from a local image or an HTTP(S) URL.

The image is resized to --size stitches across (height follows the aspect
ratio), every stitch is matched to the nearest DMC thread, and only the
--colours most used threads are kept. Stitches whose thread was dropped move
to the nearest kept thread.

Sizes:
  ` + presetNames() + `, or any positive number of stitches

Algorithms:
  euclidean  straight-line RGB distance
  weighted   RGB distance weighted 2:4:3 towards green
  lab        distance in an approximate Lab space

Environment:
  ` + EnvSize + `, ` + EnvColours + `, ` + EnvAlgorithm + `,
  ` + EnvPalette + ` and ` + EnvPaletteFile + ` set defaults for the
  matching flags.

Examples:
  # Text chart on stdout
  xstitch generate cat.jpg

  # 150 stitches wide, 30 threads, perceptual matching, PNG chart
  xstitch generate -s large -c 30 -a lab -o cat.png cat.jpg

  # Printable sheet from a URL
  xstitch generate -f print -o cat.html https://example.com/cat.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.VarP(&opts.size, "size", "s", "pattern width in stitches or a preset (small, medium, large, xlarge)")
	f.IntVarP(&opts.colours, "colours", "c", opts.colours, "maximum number of thread colours")
	f.VarP(&opts.algorithm, "algorithm", "a", "colour matching algorithm (euclidean, weighted, lab)")
	f.Var(&opts.palette, "palette", "thread dataset (auto, complete, legacy)")
	f.StringVar(&opts.paletteFile, "palette-file", "", "thread dataset (.json, optionally .xz/.gz/.bz2 compressed, a .db/.sqlite file or a postgres:// URL) tried before the built-in ones")
	f.Var(&opts.resample, "resample", "downsampling kernel (bilinear, nearest, catmullrom)")
	f.VarP(&opts.format, "format", "f", "output format (text, json, ansi, png, print); inferred from --output when omitted")
	f.StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	f.IntVar(&opts.cellSize, "cell-size", export.DefaultCellSize, "pixels per stitch in PNG output")
	f.BoolVar(&opts.numbers, "numbers", false, "label stitches with thread codes in PNG and ANSI output")
	f.IntVar(&opts.pageCols, "page-cols", export.DefaultPageColumns, "stitch columns per printed page")
	f.IntVar(&opts.pageRows, "page-rows", export.DefaultPageRows, "stitch rows per printed page")
	f.StringVar(&opts.title, "title", "", "print sheet title (default: Cross Stitch Pattern)")
	f.BoolVar(&opts.noCache, "no-cache", false, "always download URL images instead of using the cache")

	return cmd
}

func runGenerate(cmd *cobra.Command, source string, opts *generateOptions) error {
	logger := newLogger(cmd)

	if err := applyEnv(cmd); err != nil {
		return err
	}
	if !cmd.Flags().Changed("format") && opts.output != "" {
		if f, ok := formatFromPath(opts.output); ok {
			opts.format = f
		}
	}

	if err := image.ValidateImagePath(source); err != nil {
		return fmt.Errorf("invalid image path: %w", err)
	}

	loader := image.NewSmartLoader().
		WithCache(!opts.noCache).
		WithLogger(logger.Named("image"))
	logger.Debug("loading image", "source", source)
	img, err := loader.Load(cmd.Context(), source)
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}

	patternOpts := pattern.Options{
		Columns:    int(opts.size),
		MaxColours: opts.colours,
		Algorithm:  opts.algorithm,
		Palette:    opts.palette,
		Resampler:  opts.resample,
	}
	if opts.paletteFile != "" {
		patternOpts.PaletteSource = thread.OpenSource(opts.paletteFile)
	}

	session := pattern.NewSession(thread.NewCatalogue(), logger)
	result, err := session.Generate(img, patternOpts)
	if err != nil {
		return fmt.Errorf("failed to generate pattern: %w", err)
	}
	logger.Info("pattern generated",
		"stitches", fmt.Sprintf("%dx%d", result.Pattern.Columns, result.Pattern.Rows),
		"threads", result.Legend.Len(),
		"dataset", result.Dataset,
		"algorithm", result.Algorithm)

	exportOpts := export.Options{
		CellSize:    opts.cellSize,
		Numbers:     opts.numbers,
		PageColumns: opts.pageCols,
		PageRows:    opts.pageRows,
		Title:       opts.title,
		Logger:      logger,
	}
	return writeOutput(cmd, opts, result, exportOpts, logger)
}

func writeOutput(cmd *cobra.Command, opts *generateOptions, result *pattern.Result, exportOpts export.Options, logger hclog.Logger) error {
	if opts.output == "" {
		out := cmd.OutOrStdout()
		if opts.format.Binary() && isTerminal(out) {
			return fmt.Errorf("refusing to write %s to a terminal; use --output", opts.format)
		}
		return export.Write(out, opts.format, result, exportOpts)
	}

	if err := writeFileAtomic(opts.output, func(w io.Writer) error {
		return export.Write(w, opts.format, result, exportOpts)
	}); err != nil {
		return err
	}
	logger.Info("wrote pattern", "path", opts.output, "format", opts.format)
	return nil
}

// writeFileAtomic renders into a temporary file next to path and renames it
// into place once render succeeds. On failure any existing file at path is
// left untouched.
func writeFileAtomic(path string, render func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := render(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil { // #nosec G302 - Output charts are user documents
		tmp.Close()
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// formatFromPath picks an export format from an output file extension.
func formatFromPath(path string) (export.Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return export.FormatJSON, true
	case ".png":
		return export.FormatPNG, true
	case ".html", ".htm":
		return export.FormatPrint, true
	case ".ans":
		return export.FormatANSI, true
	case ".txt":
		return export.FormatText, true
	}
	return "", false
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
