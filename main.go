package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"leaderflow/config"
	"leaderflow/logger"
	"leaderflow/pipeline"
	"leaderflow/writer"
)

func main() {
	log := logger.GetLogger()

	// Load environment variables from .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Error loading .env file")
	}

	configPath := flag.String("config", "config/config.yml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(config.ResolveConfigPath(*configPath))
	if err != nil {
		log.WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		log.WithError(err).Error("Failed to configure logger")
		os.Exit(1)
	}

	log.WithFields(logger.Fields{
		"service":     cfg.Leaderflow.Name,
		"version":     cfg.Leaderflow.Version,
		"environment": config.AppEnvironment(),
	}).Info("starting leaderflow")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.WithFields(logger.Fields{"signal": sig.String()}).Info("shutdown signal received")
		cancel()
	}()

	if cfg.Metrics.CloudWatch {
		logger.InitCloudWatch(cfg.Metrics.Region, cfg.Metrics.Namespace, cfg.Metrics.Dashboard)
	}

	if cfg.Logging.Report {
		logger.StartReport(ctx, log, 30*time.Second)
	}

	snaps := writer.NewSnapshotWriter(cfg.Snapshots.Dir, cfg.Snapshots.WriteRaw)

	var mirror pipeline.Mirror
	if cfg.Storage.S3.Enabled {
		m, err := writer.NewS3Mirror(cfg.Storage.S3)
		if err != nil {
			log.WithError(err).Error("failed to create S3 mirror")
			os.Exit(1)
		}
		mirror = m
	} else {
		log.WithComponent("main").Info("S3 mirror disabled; snapshots stay local")
	}

	if err := pipeline.NewPipeline(cfg, snaps, mirror).Run(ctx); err != nil {
		log.WithError(err).Error("leaderboard run failed")
		os.Exit(1)
	}

	log.Info("leaderflow finished")
}
