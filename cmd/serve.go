package cmd

import (
	"github.com/spf13/cobra"

	"ridedash/internal/server"
)

// serveCmd exposes stored rides over HTTP.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve stored rides over a JSON API",
	Long: `Start the HTTP API:

  GET /health
  GET /api/rides?limit=&offset=
  GET /api/rides/:id
  GET /api/rides/:id/export.txt
  GET /api/fitness?days=

The server stops cleanly on interrupt.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		q, cfg, closeDB, err := offlineQuery(cmd)
		if err != nil {
			return err
		}
		defer closeDB()

		addr := flags.addr
		if addr == "" {
			addr = cfg.Server.Addr
		}
		return server.New(q, newLogger(cmd.ErrOrStderr())).ListenAndServe(cmd.Context(), addr)
	},
}
