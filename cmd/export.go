package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/bundlesheet-cli/internal/export"
)

var (
	exportText   string
	exportStdout bool
)

var exportCmd = &cobra.Command{
	Use:   "export [file|-]",
	Short: "Build the bulk-upload workbook from input lines",
	Long: `Parses "<msisdn> <allocation>GB" lines and writes the upload template.
Invalid numbers are highlighted red, duplicates yellow. Duplicates are reported
but never block the export.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, source, err := readInput(cmd, args, exportText)
		if err != nil {
			return err
		}
		c := currentConfig()
		sess := export.NewSession(exportOptions(c))
		set := sess.SetInput(text)
		log.Debug("input loaded", "source", source, "records", set.Len())

		errOut := cmd.ErrOrStderr()
		printAdvisory(errOut, set)

		if exportStdout {
			_, err := sess.Export(cmd.Context(), export.WriterDeliverer{W: cmd.OutOrStdout()})
			return exportErr(err)
		}

		d := &export.DirDeliverer{Dir: c.OutputDir}
		sum, err := sess.Export(cmd.Context(), d)
		if err != nil {
			return exportErr(err)
		}
		printSummary(cmd.OutOrStdout(), sum, d.Path())
		return nil
	},
}

func exportErr(err error) error {
	if errors.Is(err, export.ErrEmptyExport) {
		return fmt.Errorf("%w (expected lines like \"0201234567 10GB\")", err)
	}
	return err
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportText, "text", "", "inline input text instead of a file or stdin")
	exportCmd.Flags().BoolVar(&exportStdout, "stdout", false, "write the workbook bytes to stdout")
}
