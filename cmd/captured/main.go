package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/oka-k/Screenshot/internal/agent"
	"github.com/oka-k/Screenshot/internal/config"
	"github.com/oka-k/Screenshot/internal/logger"
	"github.com/oka-k/Screenshot/internal/platform"
	"github.com/oka-k/Screenshot/internal/storage"
	"github.com/oka-k/Screenshot/internal/vault"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	spool := flag.String("spool", "", "directory the screenshot tool writes captures to")
	interval := flag.Duration("interval", 0, "time between upload cycles (default 5m)")
	logFile := flag.String("log-file", "", "rotating log file (10MB, 5 backups by default)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"error": err,
		}).Fatal("main: Failed to load config")
	}
	if *spool != "" {
		cfg.Agent.Spool = *spool
	}
	if *interval > 0 {
		cfg.Agent.Interval = *interval
	}
	if *logFile != "" {
		cfg.Log.File = *logFile
	}

	if err := logger.Init(logger.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	}); err != nil {
		logrus.WithFields(logrus.Fields{
			"error": err,
		}).Fatal("main: Failed to initialize logger")
	}
	defer logger.Close()

	if err := platform.DisableCoreDumps(); err != nil {
		logrus.WithFields(logrus.Fields{
			"error": err,
		}).Warn("main: Failed to disable core dumps")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	containers, uploads, closeStores, err := openStores(ctx, cfg)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"error": err,
		}).Fatal("main: Failed to open storage")
	}
	defer closeStores()

	// A daemon never prompts.
	vc := cfg.VaultConfig()
	vc.Interactive = false
	mgr := vault.New(vc, vault.WithStore(containers), vault.WithLogger(logrus.StandardLogger()))

	d := agent.New(
		agent.Config{Interval: cfg.Agent.Interval},
		mgr,
		agent.NewSpoolCapturer(cfg.Agent.Spool),
		agent.NewBlobUploader(uploads),
		logrus.StandardLogger(),
	)

	logrus.WithFields(logrus.Fields{
		"container": cfg.Vault.Container,
		"spool":     cfg.Agent.Spool,
		"interval":  cfg.Agent.Interval.String(),
	}).Info("main: Starting capture daemon")
	if err := d.Run(ctx); err != nil {
		logrus.WithFields(logrus.Fields{
			"error": err,
		}).Error("main: Upload driver stopped")
	}
}

// openStores returns the container store and the upload target. With a
// Mongo URI both live in the same collection; otherwise containers are
// plain files and uploads go to the upload directory.
func openStores(ctx context.Context, cfg config.File) (storage.BlobStore, storage.BlobStore, func(), error) {
	if cfg.Storage.MongoURI == "" {
		return storage.NewFileStore(""), storage.NewFileStore(cfg.Agent.UploadDir), func() {}, nil
	}
	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	ms, err := storage.NewMongoStore(dialCtx, cfg.Storage.MongoURI, cfg.Storage.Database, cfg.Storage.Collection)
	if err != nil {
		return nil, nil, nil, err
	}
	return ms, ms, func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = ms.Close(closeCtx)
	}, nil
}
