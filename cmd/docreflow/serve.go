package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tamzidan/docreflow/internal/api"
	"github.com/tamzidan/docreflow/internal/config"
	"github.com/tamzidan/docreflow/internal/pipeline"
	"github.com/tamzidan/docreflow/internal/render"
	"github.com/tamzidan/docreflow/internal/rules"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reflow HTTP service",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	rulesPath := cfg.RulesPath
	if rulesPath == "" {
		rulesPath = defaultRulesPath()
	}
	catalog, err := rules.LoadFile(rulesPath)
	if err != nil {
		log.Error("invalid rule catalog", "path", rulesPath, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients and the pipeline.
	renderer := render.NewClient(cfg.RendererURL, cfg.RendererAPIKey, cfg.RenderTimeout)
	runner := pipeline.NewRunner(catalog, renderer, render.NewPDFExtractor(), log)

	orch := pipeline.NewOrchestrator(cfg, runner, log)
	orch.Start(ctx)

	srv := api.NewServer(orch, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		renderer.Close()
	}()

	log.Info("starting docreflow", "port", cfg.Port, "rules", rulesPath)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	return nil
}
