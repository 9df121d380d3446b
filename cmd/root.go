package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/bundlesheet-cli/internal/config"
	"github.com/KaramelBytes/bundlesheet-cli/internal/logging"
)

var (
	// Global flags
	cfgFile       string
	debug         bool
	flagLogFormat string
	flagOutputDir string
	flagFileName  string

	// Loaded configuration
	cfg *cfgpkg.Global
	log = logging.Discard()
)

var rootCmd = &cobra.Command{
	Use:   "bundlesheet",
	Short: "Turn subscriber/allocation lists into bulk-upload workbooks",
	Long: `bundlesheet reads free-form lines of "<msisdn> <allocation>GB", validates and
deduplicates the subscriber numbers, and writes an .xlsx template ready for bulk upload.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("✗ Error:"), err)
		os.Exit(1)
	}
}

func init() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.bundlesheet/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format: text|json (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagOutputDir, "output-dir", "", "directory for exported workbooks (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagFileName, "file-name", "", "workbook file name (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Defaults()
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("output-dir") && flagOutputDir != "" {
		cfg.OutputDir = flagOutputDir
	}
	if f.Changed("file-name") && flagFileName != "" {
		cfg.FileName = flagFileName
	}
	if f.Changed("log-format") && flagLogFormat != "" {
		cfg.LogFormat = flagLogFormat
	}
	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	log = logging.New(level, cfg.LogFormat, os.Stderr)
	slog.SetDefault(log)
}
