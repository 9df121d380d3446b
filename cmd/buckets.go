package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/bundlesheet-cli/internal/aggregate"
)

var (
	bucketsText   string
	bucketsFormat string
)

var bucketsCmd = &cobra.Command{
	Use:   "buckets [file|-]",
	Short: "Count lines per allocation size",
	Long: `Groups every non-empty line by the digits of its second field ("10 GB",
"20 GB", ...). Lines without digits are counted as Unknown. Identifiers are not
validated in this mode.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, source, err := readInput(cmd, args, bucketsText)
		if err != nil {
			return err
		}
		buckets := aggregate.TallyText(text)
		out := cmd.OutOrStdout()
		switch strings.ToLower(bucketsFormat) {
		case "", "table":
			if len(buckets) == 0 {
				warnColor.Fprintln(out, "⚠ No lines found in input")
				return nil
			}
			return aggregate.Table(out, buckets)
		case "markdown", "md":
			_, err := fmt.Fprint(out, aggregate.Markdown(source, buckets))
			return err
		case "json":
			return aggregate.JSON(out, buckets)
		default:
			return fmt.Errorf("unsupported --format: %s (use table|markdown|json)", bucketsFormat)
		}
	},
}

func init() {
	rootCmd.AddCommand(bucketsCmd)
	bucketsCmd.Flags().StringVar(&bucketsText, "text", "", "inline input text instead of a file or stdin")
	bucketsCmd.Flags().StringVar(&bucketsFormat, "format", "table", "output format: table|markdown|json")
}
