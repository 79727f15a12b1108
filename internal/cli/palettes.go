package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/xstitch/internal/colour"
	"github.com/jmylchreest/xstitch/internal/thread"
	"github.com/jmylchreest/xstitch/internal/util/table"
)

type palettesOptions struct {
	file     string
	swatches string
	asJSON   bool
}

func newPalettesCmd() *cobra.Command {
	opts := &palettesOptions{swatches: "auto"}

	cmd := &cobra.Command{
		Use:   "palettes [complete|legacy|fallback]",
		Short: "List thread datasets or the threads in one",
		Long: `Without an argument, list the available thread datasets and their sizes.
With a dataset name, list every thread in it. Colour swatches are shown when
output is a terminal.

Examples:
  xstitch palettes
  xstitch palettes legacy
  xstitch palettes --file my-threads.json`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{thread.DatasetComplete, thread.DatasetLegacy, thread.DatasetFallback},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPalettes(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "list the threads in a dataset file or database instead")
	cmd.Flags().StringVar(&opts.swatches, "swatches", opts.swatches, "show colour swatches (auto, always, never)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print as JSON")
	return cmd
}

func runPalettes(cmd *cobra.Command, args []string, opts *palettesOptions) error {
	logger := newLogger(cmd)
	out := cmd.OutOrStdout()
	catalogue := thread.NewCatalogue().WithLogger(logger.Named("palette"))

	showSwatches, err := wantSwatches(opts.swatches, out)
	if err != nil {
		return err
	}

	var src thread.Source
	switch {
	case opts.file != "":
		src = thread.OpenSource(opts.file)
	case len(args) == 1:
		src, err = datasetSource(catalogue, args[0])
		if err != nil {
			return err
		}
	default:
		return listDatasets(out, catalogue, opts.asJSON)
	}

	colours, err := src.Load()
	if err != nil {
		return fmt.Errorf("failed to load dataset %q: %w", src.Name(), err)
	}
	if opts.asJSON {
		return writeJSON(out, colours)
	}
	return writeColours(out, colours, showSwatches)
}

// datasetSource resolves a dataset name to its source.
func datasetSource(catalogue *thread.Catalogue, name string) (thread.Source, error) {
	name = strings.ToLower(name)
	for _, src := range allSources(catalogue) {
		if src.Name() == name {
			return src, nil
		}
	}
	return nil, fmt.Errorf("unknown dataset %q (valid: %s, %s, %s)",
		name, thread.DatasetComplete, thread.DatasetLegacy, thread.DatasetFallback)
}

// allSources returns the built-in datasets followed by the fallback palette.
func allSources(catalogue *thread.Catalogue) []thread.Source {
	return append(catalogue.Sources(), fallbackSource{})
}

type fallbackSource struct{}

func (fallbackSource) Name() string { return thread.DatasetFallback }

func (fallbackSource) Load() ([]thread.Colour, error) { return thread.Fallback(), nil }

type datasetSummary struct {
	Name    string `json:"name"`
	Threads int    `json:"threads"`
	Error   string `json:"error,omitempty"`
}

func listDatasets(out io.Writer, catalogue *thread.Catalogue, asJSON bool) error {
	var summaries []datasetSummary
	for _, src := range allSources(catalogue) {
		s := datasetSummary{Name: src.Name()}
		colours, err := src.Load()
		if err != nil {
			s.Error = err.Error()
		}
		s.Threads = len(colours)
		summaries = append(summaries, s)
	}

	if asJSON {
		return writeJSON(out, summaries)
	}

	t := table.New("Dataset", "Threads", "Status")
	for _, s := range summaries {
		status := "ok"
		if s.Error != "" {
			status = s.Error
		}
		t.AddRow(s.Name, strconv.Itoa(s.Threads), status)
	}
	_, err := io.WriteString(out, t.Render())
	return err
}

func writeColours(out io.Writer, colours []thread.Colour, showSwatches bool) error {
	t := table.New("Code", "Name", "Hex")
	for _, c := range colours {
		t.AddRow(c.Code, c.Name, c.Hex())
	}

	lines := strings.SplitAfter(t.Render(), "\n")
	var b strings.Builder
	for i, line := range lines {
		if line == "" {
			continue
		}
		if showSwatches {
			if i >= 2 && i-2 < len(colours) {
				b.WriteString(colour.ColourPreview(colours[i-2].RGB, 4))
			} else {
				b.WriteString("    ")
			}
			b.WriteString("  ")
		}
		b.WriteString(line)
	}
	_, err := io.WriteString(out, b.String())
	return err
}

func wantSwatches(mode string, out io.Writer) (bool, error) {
	switch strings.ToLower(mode) {
	case "auto", "":
		return isTerminal(out), nil
	case "always":
		return true, nil
	case "never":
		return false, nil
	}
	return false, fmt.Errorf("invalid --swatches value %q (valid: auto, always, never)", mode)
}
