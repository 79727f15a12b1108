package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/xstitch/internal/export"
	"github.com/jmylchreest/xstitch/internal/template"
	"github.com/jmylchreest/xstitch/internal/util/table"
)

func newTemplatesCmd() *cobra.Command {
	var location string

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage print sheet templates",
		Long: `Manage the HTML template used by --format print.

Templates can be customised by dumping them to
~/.config/xstitch/templates/print/ and editing them. Custom templates are
used instead of the embedded ones.`,
	}
	cmd.PersistentFlags().StringVarP(&location, "location", "l", "", "template base directory (default: ~/.config/xstitch/templates)")

	loader := func(cmd *cobra.Command) *template.Loader {
		l := export.NewTemplateLoader().WithLogger(newLogger(cmd).Named("template"))
		if location != "" {
			l.WithCustomBase(location)
		}
		return l
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List print templates and their overrides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l := loader(cmd)
			names, err := l.ListEmbeddedTemplates()
			if err != nil {
				return err
			}
			t := table.New("Template", "Source", "Custom path")
			for _, name := range names {
				info := l.GetInfo(name)
				source := "embedded"
				if info.CustomExists {
					source = "custom"
				}
				t.AddRow(info.Filename, source, info.CustomPath)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), t.Render())
			return err
		},
	})

	var force bool
	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Write the embedded print templates for editing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dumped, err := loader(cmd).DumpAllTemplates(force)
			for _, path := range dumped {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			if errors.Is(err, template.ErrExists) {
				return fmt.Errorf("%w (use --force to overwrite)", err)
			}
			return err
		},
	}
	dumpCmd.Flags().BoolVar(&force, "force", false, "overwrite existing custom templates")
	cmd.AddCommand(dumpCmd)

	return cmd
}
