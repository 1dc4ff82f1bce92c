package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/1broseidon/director/internal/httpserver"
	"github.com/1broseidon/director/internal/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web UI and JSON API",
	Long:  `Start the HTTP server with the single-page UI, the session API, /healthz and /metrics.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntP("port", "p", 0, "Listen port (overrides DIRECTOR_PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		a.cfg.HTTPPort = port
	}

	if a.client.HasCredential() {
		report := a.client.DetectTier(ctx)
		a.log.Infof("Ready on %s with %s tier (%s)", a.cfg.Addr(), report.Tier, report.Model)
	} else {
		a.log.Warn("No API key configured; set one from the UI or GEMINI_API_KEY")
	}

	srv := httpserver.New(a.cfg, logging.Zerolog(a.log), a.client, a.session)
	return srv.Run(ctx)
}
