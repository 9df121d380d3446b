package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/bundlesheet-cli/internal/export"
)

const sample = "0201234567 10GB\n0554739033 20GB\n0201234567 5GB\n12345 1GB\n"

// resetFlags restores every flag to its default so bound variables do not leak
// between invocations of the shared root command.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		_ = fl.Value.Set(fl.DefValue)
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execCmd runs the root command and returns stdout, stderr and the error.
func execCmd(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg = nil
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, _, err := execCmd(t, "", args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestCLI_ExportWritesWorkbook(t *testing.T) {
	home := isolateHome(t)
	outDir := filepath.Join(home, "out")

	out, errOut, err := execCmd(t, "", "export", "--text", sample, "--output-dir", outDir)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.Contains(errOut, "0201234567") {
		t.Fatalf("expected duplicate advisory on stderr, got %q", errOut)
	}
	if !strings.Contains(out, "Exported") || !strings.Contains(out, "36 GB") {
		t.Fatalf("unexpected summary: %q", out)
	}

	path := filepath.Join(outDir, "Bulk_Data_Upload_Template.xlsx")
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Sheet1")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) < 5 || rows[1][0] != "0201234567" || rows[4][0] != "12345" {
		t.Fatalf("unexpected rows: %v", rows)
	}
}

func TestCLI_ExportEmptyFails(t *testing.T) {
	home := isolateHome(t)
	outDir := filepath.Join(home, "out")

	_, _, err := execCmd(t, "", "export", "--text", "no data here", "--output-dir", outDir)
	if !errors.Is(err, export.ErrEmptyExport) {
		t.Fatalf("expected empty export error, got %v", err)
	}
	if _, statErr := os.Stat(outDir); !os.IsNotExist(statErr) {
		t.Fatalf("output dir should not be created for an empty export")
	}
}

func TestCLI_ExportToStdoutFromStdin(t *testing.T) {
	isolateHome(t)
	out, _, err := execCmd(t, sample, "export", "--stdout")
	if err != nil {
		t.Fatalf("export --stdout failed: %v", err)
	}
	f, err := excelize.OpenReader(strings.NewReader(out))
	if err != nil {
		t.Fatalf("stdout is not a workbook: %v", err)
	}
	defer f.Close()
	v, err := f.GetCellValue("Sheet1", "D2")
	if err != nil || v != "10240" {
		t.Fatalf("D2 = %q, %v", v, err)
	}
}

func TestCLI_CheckJSON(t *testing.T) {
	isolateHome(t)
	out := runCmd(t, "check", "--text", sample, "--json")

	var got struct {
		Records []struct {
			Identifier string `json:"identifier"`
			Valid      bool   `json:"valid"`
			Duplicate  bool   `json:"duplicate"`
		} `json:"records"`
		Duplicates []string `json:"duplicates"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(got.Records) != 4 {
		t.Fatalf("want 4 records, got %d", len(got.Records))
	}
	if !got.Records[0].Duplicate || !got.Records[2].Duplicate || got.Records[1].Duplicate {
		t.Fatalf("duplicate flags wrong: %+v", got.Records)
	}
	if got.Records[3].Valid {
		t.Fatalf("12345 must be invalid")
	}
	if len(got.Duplicates) != 1 || got.Duplicates[0] != "0201234567" {
		t.Fatalf("duplicates = %v", got.Duplicates)
	}
}

func TestCLI_CheckTable(t *testing.T) {
	isolateHome(t)
	out := runCmd(t, "check", "--text", sample)
	for _, want := range []string{"Msisdn", "duplicate", "invalid", "Records:    4"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestCLI_BucketsMarkdown(t *testing.T) {
	home := isolateHome(t)
	in := filepath.Join(home, "list.txt")
	if err := os.WriteFile(in, []byte("a 10GB\nb 20GB\nc 10 gb\nd none\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := runCmd(t, "buckets", in, "--format", "markdown")
	for _, want := range []string{"| 10 GB | 2 |", "| 20 GB | 1 |", "| Unknown | 1 |", "Lines: 4"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Index(out, "10 GB") > strings.Index(out, "20 GB") {
		t.Fatalf("buckets must keep first-seen order")
	}

	if _, _, err := execCmd(t, "", "buckets", in, "--format", "yaml"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestCLI_ExportBatchAvoidsCollisions(t *testing.T) {
	home := isolateHome(t)
	d1 := filepath.Join(home, "d1")
	d2 := filepath.Join(home, "d2")
	for _, d := range []string{d1, d2} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(d1, "list.txt"), []byte("0201234567 1GB\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(d2, "list.csv"), []byte("msisdn,gb\n0554739033,2GB\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	outDir := filepath.Join(home, "out")

	out := runCmd(t, "export-batch", filepath.Join(home, "d*", "list.*"), "--output-dir", outDir)
	if !strings.Contains(out, "2 of 2 file(s) exported") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	for _, name := range []string{"list_Bulk_Data_Upload_Template.xlsx", "list__2_Bulk_Data_Upload_Template.xlsx"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
}

func TestBatchPrefixNeverRepeats(t *testing.T) {
	used := map[string]bool{}
	var got []string
	for _, p := range []string{"a.md", "a.txt", "a__2.txt", "A.csv", "x/a.txt"} {
		got = append(got, batchPrefix(used, p))
	}
	seen := map[string]bool{}
	for _, p := range got {
		if seen[p] {
			t.Fatalf("prefix %q handed out twice: %v", p, got)
		}
		seen[p] = true
	}
	if got[0] != "a_" || got[1] != "a__2_" {
		t.Fatalf("unexpected prefixes: %v", got)
	}

	// a generated suffix that is already taken moves on to the next number
	used = map[string]bool{"a_": true, "a__2_": true}
	if p := batchPrefix(used, "a.txt"); p != "a__3_" {
		t.Fatalf("got %q, want a__3_", p)
	}
}

func TestCLI_ExportBatchSameStemThreeFiles(t *testing.T) {
	home := isolateHome(t)
	for _, name := range []string{"a.md", "a.txt", "a__2.txt"} {
		if err := os.WriteFile(filepath.Join(home, name), []byte("0201234567 1GB\n"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	outDir := filepath.Join(home, "out")
	runCmd(t, "export-batch", filepath.Join(home, "a*"), "--output-dir", outDir, "--quiet")

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("read out dir: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("want 3 workbooks, got %d", len(entries))
	}
}

func TestCLI_CheckStripsBOMFromStdin(t *testing.T) {
	isolateHome(t)
	out, _, err := execCmd(t, "\uFEFF0201234567 1GB\n", "check", "--json")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !strings.Contains(out, `"identifier": "0201234567"`) || !strings.Contains(out, `"valid": true`) {
		t.Fatalf("BOM leaked into the identifier:\n%s", out)
	}
}

func TestCLI_ExportBatchSkipEmpty(t *testing.T) {
	home := isolateHome(t)
	good := filepath.Join(home, "good.txt")
	empty := filepath.Join(home, "empty.txt")
	if err := os.WriteFile(good, []byte("0201234567 1GB\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(empty, []byte("\n\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	outDir := filepath.Join(home, "out")

	if _, _, err := execCmd(t, "", "export-batch", empty, good, "--output-dir", outDir, "--quiet"); !errors.Is(err, export.ErrEmptyExport) {
		t.Fatalf("expected empty export error, got %v", err)
	}
	runCmd(t, "export-batch", empty, good, "--output-dir", outDir, "--skip-empty", "--quiet")
	if _, err := os.Stat(filepath.Join(outDir, "good_Bulk_Data_Upload_Template.xlsx")); err != nil {
		t.Fatalf("missing good workbook: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "empty_Bulk_Data_Upload_Template.xlsx")); !os.IsNotExist(err) {
		t.Fatalf("empty input must not produce a workbook")
	}
}

func TestCLI_ConfigSetShow(t *testing.T) {
	isolateHome(t)
	runCmd(t, "config", "set", "totals_offset", "3")
	runCmd(t, "config", "set", "warning_color", "#ffcc00")
	out := runCmd(t, "config", "show")
	if !strings.Contains(out, "totals_offset: 3") || !strings.Contains(out, "warning_color: FFCC00") {
		t.Fatalf("config not persisted:\n%s", out)
	}

	if _, _, err := execCmd(t, "", "config", "set", "warning_color", "FF0000"); err == nil {
		t.Fatalf("expected error when warning color equals alert color")
	}
	if _, _, err := execCmd(t, "", "config", "set", "nope", "1"); err == nil {
		t.Fatalf("expected error for unknown key")
	}
	out = runCmd(t, "config", "show")
	if !strings.Contains(out, "warning_color: FFCC00") {
		t.Fatalf("rejected value must not be saved:\n%s", out)
	}
}
