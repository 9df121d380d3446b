package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/bundlesheet-cli/internal/utils"
)

func TestSafeWriteFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "out.xlsx")
	if err := utils.SafeWriteFile(p, []byte("payload")); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil || string(b) != "payload" {
		t.Fatalf("read back %q, %v", b, err)
	}
	if _, err := os.Stat(p + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file should be gone, stat err=%v", err)
	}
}

func TestSafeWriteFileMissingDir(t *testing.T) {
	p := filepath.Join(t.TempDir(), "missing", "out.xlsx")
	if err := utils.SafeWriteFile(p, []byte("x")); err == nil {
		t.Fatalf("expected error for missing directory")
	}
	if _, err := os.Stat(p); !os.IsNotExist(err) {
		t.Fatalf("no file should surface, stat err=%v", err)
	}
}

func TestStemAndSafeName(t *testing.T) {
	if got := utils.Stem("/tmp/May Batch.csv"); got != "May Batch" {
		t.Fatalf("Stem = %q", got)
	}
	cases := map[string]string{
		"May Batch":   "may-batch",
		"north_v2.1":  "north-v2-1",
		"  ###  ":     "input",
		"Région Est":  "rgion-est",
	}
	for in, want := range cases {
		if got := utils.SafeName(in); got != want {
			t.Errorf("SafeName(%q) = %q, want %q", in, got, want)
		}
	}
}
