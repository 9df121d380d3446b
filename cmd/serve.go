package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/bundlesheet-cli/internal/metrics"
	"github.com/KaramelBytes/bundlesheet-cli/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the check/buckets/export pipeline over HTTP",
	Long: `Starts an HTTP server exposing:
  POST /api/records  parse text and return records with flags
  POST /api/buckets  allocation bucket counts
  POST /api/export   return the workbook as an attachment
  GET  /healthz, GET /metrics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		addr := c.ServerAddr
		if serveAddr != "" {
			addr = serveAddr
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(server.Config{
			Addr:           addr,
			MaxUploadBytes: c.MaxUploadBytes,
			Export:         exportOptions(c),
			Logger:         log,
			Metrics:        metrics.New(),
		})
		okColor.Fprintf(cmd.OutOrStdout(), "✓ Listening on http://%s\n", addr)
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config server_addr)")
}
