package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/bundlesheet-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set bundlesheet configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "output_dir: %s\n", c.OutputDir)
		fmt.Fprintf(out, "file_name: %s\n", c.FileName)
		fmt.Fprintf(out, "sheet_name: %s\n", c.SheetName)
		fmt.Fprintf(out, "alert_color: %s\n", c.AlertColor)
		fmt.Fprintf(out, "warning_color: %s\n", c.WarningColor)
		fmt.Fprintf(out, "highlight_scope: %s\n", c.HighlightScope)
		fmt.Fprintf(out, "min_column_width: %d\n", c.MinColumnWidth)
		fmt.Fprintf(out, "column_padding: %d\n", c.ColumnPadding)
		fmt.Fprintf(out, "totals_offset: %d\n", c.TotalsOffset)
		fmt.Fprintf(out, "log_level: %s\n", c.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", c.LogFormat)
		fmt.Fprintf(out, "server_addr: %s\n", c.ServerAddr)
		fmt.Fprintf(out, "max_upload_bytes: %d\n", c.MaxUploadBytes)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		// Work on a copy so a rejected value leaves the loaded config intact.
		next := *cfg
		switch key {
		case "output_dir":
			next.OutputDir = val
		case "file_name":
			next.FileName = val
		case "sheet_name":
			next.SheetName = val
		case "alert_color":
			next.AlertColor = normalizeColor(val)
		case "warning_color":
			next.WarningColor = normalizeColor(val)
		case "highlight_scope":
			next.HighlightScope = strings.ToLower(val)
		case "min_column_width", "column_padding", "totals_offset":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for %s: %w", key, err)
			}
			switch key {
			case "min_column_width":
				next.MinColumnWidth = i
			case "column_padding":
				next.ColumnPadding = i
			default:
				next.TotalsOffset = i
			}
		case "log_level":
			next.LogLevel = strings.ToLower(val)
		case "log_format":
			next.LogFormat = strings.ToLower(val)
		case "server_addr":
			next.ServerAddr = val
		case "max_upload_bytes":
			i, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid int for max_upload_bytes: %w", err)
			}
			next.MaxUploadBytes = i
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(&next, cfgFile); err != nil {
			return err
		}
		*cfg = next
		okColor.Fprintln(cmd.OutOrStdout(), "✓ Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func normalizeColor(s string) string {
	return strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(s), "#"))
}
