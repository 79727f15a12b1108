package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Environment variables supplying flag defaults. Flags given on the command
// line always win.
const (
	EnvSize        = "XSTITCH_SIZE"
	EnvColours     = "XSTITCH_COLOURS"
	EnvAlgorithm   = "XSTITCH_ALGORITHM"
	EnvPalette     = "XSTITCH_PALETTE"
	EnvPaletteFile = "XSTITCH_PALETTE_FILE"
)

// envFlags maps flag names to the variable that supplies their default.
var envFlags = map[string]string{
	"size":         EnvSize,
	"colours":      EnvColours,
	"algorithm":    EnvAlgorithm,
	"palette":      EnvPalette,
	"palette-file": EnvPaletteFile,
}

// applyEnv sets every flag in envFlags that was not given on the command
// line from its environment variable, validating through the flag's Value.
func applyEnv(cmd *cobra.Command) error {
	var errs []error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		name, ok := envFlags[f.Name]
		if !ok || f.Changed {
			return
		}
		v, ok := os.LookupEnv(name)
		if !ok || v == "" {
			return
		}
		if err := f.Value.Set(v); err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", name, err))
		}
	})
	return errors.Join(errs...)
}

func jsonEncoder(w io.Writer) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc
}
