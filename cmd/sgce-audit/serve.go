// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/sgce-audit/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve evaluation views over HTTP",
	Long: `Serve exposes the catalog and the evaluation views as JSON:

  GET /healthz
  GET /rubric
  GET /sessions/{id}/evaluation

Add ?format=yaml or ?format=table for other renderings. An unavailable
catalog answers 503; other backend failures answer 502.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	offline, _ := cmd.Flags().GetBool("offline")
	cfg := loadConfig()

	auditor, closeFn, err := newAuditor(cfg, offline)
	if err != nil {
		return err
	}
	defer closeFn()

	h := server.NewHandler(auditor)
	return server.ListenAndServe(cmd.Context(), cfg.Server.Addr, h.Router())
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	serveCmd.Flags().Bool("offline", false, "serve from the local archive instead of the backend")
	bindFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	rootCmd.AddCommand(serveCmd)
}
