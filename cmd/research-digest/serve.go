// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-digest/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web form and query API",
	Long: `Serve starts the HTTP server: the form page on /, POST /api/query returning
{query, answer, max_results, bullets}, /health and /metrics. It stops
gracefully on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		serverCfg := cfg.Server
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			serverCfg.Addr = addr
		}

		p, err := newPipeline(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv := server.New(p, serverCfg, logger,
			server.WithVersion(version),
			server.WithDefaults(cfg.Search.DefaultMaxResults, cfg.Summary.Bullets),
		)
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")

	rootCmd.AddCommand(serveCmd)
}
