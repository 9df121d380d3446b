package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/bundlesheet-cli/internal/config"
	"github.com/KaramelBytes/bundlesheet-cli/internal/export"
	"github.com/KaramelBytes/bundlesheet-cli/internal/parser"
	"github.com/KaramelBytes/bundlesheet-cli/internal/records"
	"github.com/KaramelBytes/bundlesheet-cli/internal/sheet"
)

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	failColor = color.New(color.FgRed)
)

func currentConfig() *cfgpkg.Global {
	if cfg == nil {
		return cfgpkg.Defaults()
	}
	return cfg
}

func sheetOptions(c *cfgpkg.Global) sheet.Options {
	return sheet.Options{
		SheetName:      c.SheetName,
		AlertColor:     c.AlertColor,
		WarningColor:   c.WarningColor,
		HighlightScope: c.HighlightScope,
		MinColumnWidth: c.MinColumnWidth,
		ColumnPadding:  c.ColumnPadding,
		TotalsOffset:   c.TotalsOffset,
	}
}

func exportOptions(c *cfgpkg.Global) export.Options {
	return export.Options{
		FileName: c.FileName,
		Sheet:    sheetOptions(c),
		Logger:   log,
	}
}

// readInput resolves the pipeline text from --text, a file argument, or stdin
// (in that order). The returned name labels the source in output.
func readInput(cmd *cobra.Command, args []string, text string) (string, string, error) {
	if text != "" {
		return parser.TrimBOM(text), "--text", nil
	}
	if len(args) > 0 && args[0] != "-" {
		out, err := parser.ParseFile(args[0])
		if err != nil {
			return "", "", err
		}
		return out, args[0], nil
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", "", fmt.Errorf("read stdin: %w", err)
	}
	return parser.TrimBOM(string(b)), "stdin", nil
}

func printAdvisory(w io.Writer, set *records.Set) {
	if msg := set.Advisory(); msg != "" {
		warnColor.Fprintf(w, "⚠ %s\n", msg)
	}
}

func printStats(w io.Writer, st records.Stats) {
	fmt.Fprintf(w, "  Records:    %d\n", st.Total)
	fmt.Fprintf(w, "  Valid:      %d\n", st.Valid)
	fmt.Fprintf(w, "  Duplicates: %d\n", st.Duplicate)
	fmt.Fprintf(w, "  Invalid:    %d\n", st.Invalid)
	fmt.Fprintf(w, "  Total:      %s GB (%s MB)\n", formatFloat(st.TotalGB), formatFloat(st.TotalMB))
}

func printSummary(w io.Writer, sum *export.Summary, dest string) {
	okColor.Fprintf(w, "✓ Exported %s\n", dest)
	printStats(w, records.Stats{
		Total:     sum.Total,
		Valid:     sum.Valid,
		Invalid:   sum.Invalid,
		Duplicate: sum.Duplicate,
		TotalGB:   sum.TotalGB,
		TotalMB:   sum.TotalMB,
	})
}

func formatFloat(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}
