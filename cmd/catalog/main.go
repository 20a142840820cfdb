package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"

	"github.com/Skotchmaster/catalog_api/internal/config"
	"github.com/Skotchmaster/catalog_api/internal/db"
	"github.com/Skotchmaster/catalog_api/internal/events"
	"github.com/Skotchmaster/catalog_api/internal/httpserver"
	"github.com/Skotchmaster/catalog_api/internal/logging"
	"github.com/Skotchmaster/catalog_api/internal/repo"
	"github.com/Skotchmaster/catalog_api/internal/service"
	"github.com/Skotchmaster/catalog_api/internal/storage"
	"github.com/Skotchmaster/catalog_api/internal/validate"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("notice: no .env loaded: %v", err)
	}

	cfg := config.MustLoad()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("catalog exited", "error", err)
		os.Exit(1)
	}
}

// run owns every deferred cleanup so a startup failure still flushes Sentry
// and closes what was opened.
func run(cfg config.Config, logger *slog.Logger) error {
	sentryEnabled := cfg.SentryDSN != ""
	if sentryEnabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			ServerName:       cfg.ServiceName,
			AttachStacktrace: true,
		}); err != nil {
			return fmt.Errorf("sentry init: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	cancel()
	if err != nil {
		return fmt.Errorf("db open: %w", err)
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			logger.Error("db close error", "error", err)
		}
	}()
	if err := db.Migrate(gdb); err != nil {
		return fmt.Errorf("db migrate: %w", err)
	}

	store, err := storage.New(storage.Config{
		Driver:    cfg.StorageDriver,
		BasePath:  cfg.StoragePath,
		BaseURL:   storageBaseURL(cfg),
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	})
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	publisher := events.New(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("event publisher close error", "error", err)
		}
	}()

	r := repo.New(gdb)
	authSvc := &service.AuthService{Repo: r, Secret: cfg.JWTSecret, TokenTTL: cfg.TokenTTL, Events: publisher}
	catalogSvc := &service.CatalogService{Repo: r, Storage: store, Events: publisher, Validator: validate.New()}

	deps := &httpserver.Deps{
		AuthHandler:    &httpserver.AuthHTTP{Svc: authSvc},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: catalogSvc},
		Authenticator:  authSvc,
		Ready:          r.Ping,
	}
	if cfg.StorageDriver == "local" {
		deps.StorageDir = cfg.StoragePath
	}

	e := httpserver.New(logger, httpserver.Options{
		CORSOrigins: cfg.CORSOrigins,
		Sentry:      sentryEnabled,
	}, deps)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "db_driver", cfg.DBDriver, "storage_driver", cfg.StorageDriver,
			"events", len(cfg.KafkaBrokers) > 0)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return fmt.Errorf("listen: %w", err)
	case <-stop:
	}

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

func storageBaseURL(cfg config.Config) string {
	if cfg.StorageDriver == "s3" {
		return cfg.S3PublicURL
	}
	return cfg.PublicURL + "/storage"
}
