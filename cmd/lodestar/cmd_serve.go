package main

import (
	"context"

	"github.com/spf13/cobra"

	"lodestar/internal/logging"
	"lodestar/internal/mcpserver"
	"lodestar/internal/wiring"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio for editor integration",
	Long: `Starts an MCP server over stdin/stdout exposing ask, ingest_text, and
get_history tools.

The server monitors for parent process death and self-terminates when the
editor disconnects, so restarts do not accumulate orphaned processes.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	app, err := wiring.Build(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	mcpserver.WatchParent(ctx, cancel)

	srv := mcpserver.NewServer(app.Chat, app.Ingest, version)
	logging.New("mcp").Info("starting lodestar MCP server over stdio")
	return srv.Run(ctx)
}
