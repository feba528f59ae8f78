package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nkall/chronotrack/internal/interchange"
)

func (a *App) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Export all entries as CSV (stdout when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return interchange.Export(cmd.Context(), a.Entries, os.Stdout)
			}
			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			if err := interchange.Export(cmd.Context(), a.Entries, f); err != nil {
				return err
			}
			a.Out.Successf("exported to %s", args[0])
			return nil
		},
	}
}

func (a *App) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import entries from a CSV export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			n, err := interchange.Import(cmd.Context(), a.Entries, f)
			if err != nil {
				return err
			}
			a.Out.Successf("imported %d entries", n)
			return nil
		},
	}
}
