package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/bundlesheet-cli/internal/export"
	"github.com/KaramelBytes/bundlesheet-cli/internal/parser"
)

var (
	watchExport   bool
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Re-check (and optionally re-export) a file whenever it changes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("watch target: %w", err)
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		c := currentConfig()
		out := cmd.OutOrStdout()
		sess := export.NewSession(exportOptions(c))
		refresh := func() {
			if err := refreshFromFile(ctx, out, sess, path, c.OutputDir); err != nil {
				failColor.Fprintf(out, "✗ %v\n", err)
			}
		}

		refresh()
		fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", path)
		return watchFile(ctx, path, watchDebounce, refresh)
	},
}

func refreshFromFile(ctx context.Context, out io.Writer, sess *export.Session, path, outDir string) error {
	text, err := parser.ParseFile(path)
	if err != nil {
		return err
	}
	set := sess.SetInput(text)
	fmt.Fprintf(out, "[%s] %s\n", time.Now().Format("15:04:05"), filepath.Base(path))
	printAdvisory(out, set)
	if !watchExport {
		printStats(out, set.Stats())
		return nil
	}
	d := &export.DirDeliverer{Dir: outDir}
	sum, err := sess.Export(ctx, d)
	if errors.Is(err, export.ErrEmptyExport) {
		warnColor.Fprintln(out, "⚠ No records, nothing exported")
		return nil
	}
	if err != nil {
		return err
	}
	printSummary(out, sum, d.Path())
	return nil
}

// watchFile calls onChange after writes to path settle for the debounce period.
// The parent directory is watched so editors that replace the file on save
// are still followed.
func watchFile(ctx context.Context, path string, debounce time.Duration, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	target, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			if _, err := os.Stat(target); err == nil {
				onChange()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			// Log error but continue running
			log.Warn("file watch error", "error", err)
		}
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVar(&watchExport, "export", false, "export a workbook on every change")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 200*time.Millisecond, "wait this long after the last change before reloading")
}
