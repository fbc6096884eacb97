package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/cloudraidfs/cloudraidfs/internal/logger"
	"github.com/cloudraidfs/cloudraidfs/pkg/config"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "generate-config" {
		runGenerateConfig(os.Args[2:])
		return
	}

	configPath := pflag.String("config", "", "Path to configuration file (default: "+config.GetDefaultConfigPath()+")")
	logLevel := pflag.String("log-level", "", "Override the configured log level (DEBUG, INFO, WARN, ERROR)")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	logger.SetLevel(cfg.Logging.Level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("cloudraidfsd starting: mountpoint=%s k=%d m=%d backends=%d", cfg.Mountpoint, cfg.K, cfg.M, len(cfg.Backends))

	built, err := config.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to build filesystem: %v", err)
	}

	if err := config.Bootstrap(ctx, cfg, built); err != nil {
		log.Fatalf("failed to bootstrap filesystem: %v", err)
	}
	logger.Info("spool recovery, metadata load, and backend mapping check complete")

	built.Spool.Start()
	logger.Info("async upload spool started: %d worker(s), queue dir %s", cfg.AsyncUpload.WorkerThreads, cfg.AsyncUpload.CacheDir)

	metricsDone := make(chan error, 1)
	if built.Metrics.Server != nil {
		go func() {
			metricsDone <- built.Metrics.Server.Start(ctx)
		}()
		logger.Info("metrics server listening on :%d", built.Metrics.Server.Port())
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("cloudraidfsd ready")

	select {
	case <-sigChan:
		logger.Info("shutdown signal received, draining async writes and persisting metadata...")
	case err := <-metricsDone:
		if err != nil {
			logger.Error("metrics server stopped unexpectedly: %v", err)
		}
	}

	cancel()
	shutdown(cfg, built)
}

func shutdown(cfg *config.Config, built *config.Built) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := built.FS.Sync(shutdownCtx); err != nil {
		logger.Error("failed to sync filesystem during shutdown: %v", err)
	}
	built.Spool.Stop()

	if built.Metrics.Server != nil {
		if err := built.Metrics.Server.Stop(shutdownCtx); err != nil {
			logger.Error("failed to stop metrics server: %v", err)
		}
	}

	logger.Info("cloudraidfsd stopped")
}

func runGenerateConfig(args []string) {
	fs := pflag.NewFlagSet("generate-config", pflag.ExitOnError)
	outPath := fs.String("output", config.GetDefaultConfigPath(), "Path to write the generated configuration file")
	force := fs.Bool("force", false, "Overwrite the output file if it already exists")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("failed to parse flags: %v", err)
	}

	if err := writeDefaultConfig(*outPath, *force); err != nil {
		log.Fatalf("failed to generate configuration: %v", err)
	}
	fmt.Printf("wrote default configuration to %s\n", *outPath)
}
