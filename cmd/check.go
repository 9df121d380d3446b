package cmd

import (
	"fmt"
	"io"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/bundlesheet-cli/internal/records"
	"github.com/KaramelBytes/bundlesheet-cli/internal/utils"
)

var (
	checkText string
	checkJSON bool
)

var checkCmd = &cobra.Command{
	Use:   "check [file|-]",
	Short: "Parse input and report validity and duplicates without exporting",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, _, err := readInput(cmd, args, checkText)
		if err != nil {
			return err
		}
		set := records.Parse(text)
		out := cmd.OutOrStdout()

		if checkJSON {
			b, err := utils.PrettyJSON(struct {
				Records    []records.Record `json:"records"`
				Duplicates []string         `json:"duplicates"`
				Stats      records.Stats    `json:"stats"`
			}{set.Records, set.Duplicates, set.Stats()})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, string(b))
			return err
		}

		if set.Len() == 0 {
			warnColor.Fprintln(out, "⚠ No records found in input")
			return nil
		}
		printRecordTable(out, set)
		fmt.Fprintln(out)
		printAdvisory(out, set)
		printStats(out, set.Stats())
		return nil
	},
}

func printRecordTable(w io.Writer, set *records.Set) {
	idW := runewidth.StringWidth("Msisdn")
	for _, r := range set.Records {
		if n := runewidth.StringWidth(r.Identifier); n > idW {
			idW = n
		}
	}
	fmt.Fprintf(w, "%s  %s  %s  %s  %s\n",
		runewidth.FillLeft("#", 4), runewidth.FillRight("Msisdn", idW),
		runewidth.FillLeft("GB", 8), runewidth.FillLeft("MB", 10), "Status")
	for i, r := range set.Records {
		status := okColor.Sprint("ok")
		switch {
		case !r.Valid:
			status = failColor.Sprint("invalid")
		case r.Duplicate:
			status = warnColor.Sprint("duplicate")
		}
		fmt.Fprintf(w, "%s  %s  %s  %s  %s\n",
			runewidth.FillLeft(fmt.Sprint(i+1), 4), runewidth.FillRight(r.Identifier, idW),
			runewidth.FillLeft(formatFloat(r.AllocationGB), 8),
			runewidth.FillLeft(formatFloat(r.AllocationMB()), 10), status)
	}
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkText, "text", "", "inline input text instead of a file or stdin")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "print records and stats as JSON")
}
