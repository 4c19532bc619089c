package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/neilberkman/gptwrapped/internal/interface/api"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Start the HTTP API.

Endpoints:
  POST /api/v1/wrapped          body: conversations.json; query: year, name, no_save
  GET  /api/v1/stats/summary    averages across recorded archives
  GET  /health
  GET  /metrics                 Prometheus metrics`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := cfg.HTTPAddr
	if serveAddr != "" {
		addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := newStore()
	return api.NewServer(newService(store), store, logger).Start(ctx, addr)
}
