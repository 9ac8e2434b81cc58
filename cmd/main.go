package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arzan03/FileShare/internal/config"
	"github.com/arzan03/FileShare/internal/db"
	"github.com/arzan03/FileShare/internal/handlers"
	"github.com/arzan03/FileShare/internal/logging"
	"github.com/arzan03/FileShare/internal/metrics"
	"github.com/arzan03/FileShare/internal/services"
	"github.com/arzan03/FileShare/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

func main() {
	cfg, envFile, err := config.Load()
	if err != nil {
		stderrLog := zerolog.New(os.Stderr)
		stderrLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	if !envFile {
		log.Info().Msg("no .env file found, using environment variables")
	}

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// run owns every resource it opens, so its defers release them on each
// return path.
func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, err := db.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return fmt.Errorf("MongoDB connection failed: %w", err)
	}
	defer func() {
		if err := db.Disconnect(mongoClient); err != nil {
			log.Error().Err(err).Msg("MongoDB disconnect failed")
		}
	}()
	log.Info().Str("database", cfg.MongoDatabase).Msg("connected to MongoDB")

	database := mongoClient.Database(cfg.MongoDatabase)
	fileStore := db.NewFileStore(database)
	userStore := db.NewUserStore(database)
	if err := fileStore.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("file indexes: %w", err)
	}
	if err := userStore.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}

	backend, err := storage.New(ctx, cfg.Storage.Driver, storage.Options{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		UseSSL:    cfg.Storage.UseSSL,
		PublicURL: cfg.Storage.PublicURL,
		Prefix:    cfg.Storage.Prefix,
	}, log)
	if err != nil {
		return fmt.Errorf("object storage %s unavailable: %w", cfg.Storage.Driver, err)
	}
	log.Info().Str("driver", cfg.Storage.Driver).Str("bucket", cfg.Storage.Bucket).Msg("connected to object storage")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	app := handlers.NewApp(handlers.AppDeps{
		Files: services.NewFileService(fileStore, backend, log,
			services.WithStorageTimeout(cfg.Storage.Timeout),
			services.WithDownloadURLTTL(cfg.Storage.DownloadURLTTL),
			services.WithMetrics(m),
		),
		Stats:     services.NewStatsService(fileStore, userStore),
		Auth:      services.NewAuthService(userStore, cfg.JWTSecret, cfg.TokenTTL),
		JWTSecret: cfg.JWTSecret,
		BodyLimit: cfg.MaxUploadBytes,
		Gatherer:  registry,
		Log:       log,
		AccessLog: true,
	})

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("port", cfg.Port).Msg("server starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}
