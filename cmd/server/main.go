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
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/fieldserve/orders-api/internal/config"
	"github.com/fieldserve/orders-api/internal/db"
	"github.com/fieldserve/orders-api/internal/events"
	"github.com/fieldserve/orders-api/internal/httpserver"
	"github.com/fieldserve/orders-api/internal/logging"
	loggingmw "github.com/fieldserve/orders-api/internal/middleware/logging"
	"github.com/fieldserve/orders-api/internal/repo"
	"github.com/fieldserve/orders-api/internal/search"
	"github.com/fieldserve/orders-api/internal/service"
)

func openStore(ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	if cfg.DatabaseURL != "" {
		openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return db.Open(openCtx, cfg.DatabaseURL)
	}
	fmt.Fprintln(os.Stderr, "[WARN] DATABASE_URL is not set, using ephemeral in-memory store")
	return db.OpenEphemeral()
}

func main() {
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	gormDB, err := openStore(context.Background(), cfg)
	if err != nil {
		log.Fatalf("store open: %v", err)
	}

	// Migration failure keeps the process up so /healthz and logs stay reachable.
	if err := db.Migrate(gormDB); err != nil {
		logger.Error("migrate_failed", "error", err)
	}

	svc := &service.OrderService{
		Repo: &repo.GormRepo{DB: gormDB},
	}

	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		svc.Producer = producer
		logger.Info("event export enabled", "topic", cfg.KafkaTopic)
	}

	if cfg.ESURL != "" {
		esClient, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			log.Fatalf("search client: %v", err)
		}
		svc.Search = &search.Index{ES: esClient, Name: search.DefaultIndex}
		logger.Info("search index enabled", "index", search.DefaultIndex)
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		OrderHandler: &httpserver.OrderHTTP{Svc: svc},
		Environment:  cfg.Environment,
		EnableDocs:   cfg.EnableDocs,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("producer close", "error", err)
		}
	}

	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info("stopped")
}
