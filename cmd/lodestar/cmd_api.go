package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"lodestar/internal/httpapi"
	"lodestar/internal/logging"
	"lodestar/internal/wiring"
)

var apiFlags struct {
	addr string
}

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the HTTP API server",
	Long: `Serves the chat and upload endpoints plus health and Prometheus metrics.
Shuts down gracefully on SIGINT/SIGTERM.`,
	RunE: runAPI,
}

func init() {
	apiCmd.Flags().StringVar(&apiFlags.addr, "addr", "", "Listen address (default from config)")
}

func runAPI(cmd *cobra.Command, _ []string) error {
	if apiFlags.addr != "" {
		cfg.HTTP.Addr = apiFlags.addr
	}

	app, err := wiring.Build(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	log := logging.New("api")
	handler := httpapi.New(app.Chat, app.Ingest, prometheus.DefaultRegisterer)
	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		log.Info("listening", "addr", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
