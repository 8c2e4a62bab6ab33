package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rsinha/backfolio/internal/api"
	"github.com/rsinha/backfolio/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the backfolio server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	a, err := buildApp(log)
	if err != nil {
		return err
	}
	defer a.Close()

	artifact, err := buildArchive(a.cfg)
	if err != nil {
		return fmt.Errorf("creating artifact store: %w", err)
	}

	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
	}

	log.Info("starting backfolio server",
		zap.String("host", a.cfg.Server.Host),
		zap.Int("port", a.cfg.Server.Port),
		zap.Int("universe", len(a.cfg.Universe)),
	)

	server := api.NewServer(api.Config{
		Host:        a.cfg.Server.Host,
		Port:        a.cfg.Server.Port,
		APIKey:      a.cfg.Server.APIKey,
		MaxJobs:     a.cfg.Server.MaxJobs,
		JobTTL:      time.Duration(a.cfg.Server.JobTTLHours) * time.Hour,
		MetricsPath: metricsPath,
	}, a.engine, artifact, a.registry, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Error("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down backfolio server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}
