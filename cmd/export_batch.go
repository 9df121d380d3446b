package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/bundlesheet-cli/internal/export"
	"github.com/KaramelBytes/bundlesheet-cli/internal/parser"
	"github.com/KaramelBytes/bundlesheet-cli/internal/utils"
)

var (
	ebQuiet     bool
	ebSkipEmpty bool
)

var exportBatchCmd = &cobra.Command{
	Use:   "export-batch <files...>",
	Short: "Export one workbook per input file (txt, md, csv, xlsx, docx)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		payloads, err := parser.ReadAll(cmd.Context(), files)
		if err != nil {
			return err
		}

		c := currentConfig()
		out := cmd.OutOrStdout()
		used := map[string]bool{}
		total := len(payloads)
		exported := 0
		for i, p := range payloads {
			if !ebQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(p.Path))
			}
			sess := export.NewSession(exportOptions(c))
			set := sess.SetInput(p.Text)
			if !ebQuiet {
				printAdvisory(out, set)
			}

			d := &export.DirDeliverer{Dir: c.OutputDir, Prefix: batchPrefix(used, p.Path)}
			sum, err := sess.Export(cmd.Context(), d)
			if errors.Is(err, export.ErrEmptyExport) && ebSkipEmpty {
				if !ebQuiet {
					warnColor.Fprintf(out, "⚠ Skipping %s: no records\n", filepath.Base(p.Path))
				}
				continue
			}
			if err != nil {
				return fmt.Errorf("%s: %w", p.Path, exportErr(err))
			}
			exported++
			if !ebQuiet {
				printSummary(out, sum, d.Path())
			}
		}
		if !ebQuiet {
			okColor.Fprintf(out, "✓ %d of %d file(s) exported\n", exported, total)
		}
		return nil
	},
}

// expandInputs resolves globs, keeps literal paths that exist and drops repeats.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	sort.Strings(files)
	return files, nil
}

// batchPrefix derives a per-file prefix from the input stem. A prefix already
// handed out in this run gets a numeric suffix, so workbooks never overwrite
// each other.
func batchPrefix(used map[string]bool, path string) string {
	base := utils.SafeName(utils.Stem(path))
	prefix := base + "_"
	for n := 2; used[prefix]; n++ {
		prefix = fmt.Sprintf("%s__%d_", base, n)
	}
	used[prefix] = true
	return prefix
}

func init() {
	rootCmd.AddCommand(exportBatchCmd)
	exportBatchCmd.Flags().BoolVar(&ebQuiet, "quiet", false, "suppress progress and non-essential output")
	exportBatchCmd.Flags().BoolVar(&ebSkipEmpty, "skip-empty", false, "skip files without records instead of failing")
}
