package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"sweetshop/internal/config"
	"sweetshop/internal/db"
	"sweetshop/internal/events"
	"sweetshop/internal/httpserver"
	"sweetshop/internal/logging"
	authmw "sweetshop/internal/middleware/auth"
	loggingmw "sweetshop/internal/middleware/logging"
	"sweetshop/internal/repo"
	"sweetshop/internal/search"
	"sweetshop/internal/service"
	"sweetshop/internal/tokens"
)

func main() {
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel).With("service", "sweetshop")
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gormDB, err := db.Open(ctx, cfg.DatabaseURL, cfg.SQLitePath)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}

	var producer *events.Producer
	if cfg.KafkaAddress != "" {
		producer = events.NewProducer(cfg.KafkaAddress)
		defer producer.Close()
	}

	var searchSvc *search.Service
	if cfg.ESURL != "" {
		esClient, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			log.Fatalf("elasticsearch: %v", err)
		}
		searchSvc = search.New(esClient, cfg.ESIndex)
	}

	store := &repo.GormRepo{DB: gormDB}
	tokenSvc := tokens.New(cfg.JWTSecret)

	authSvc := &service.AuthService{
		Repo:      store,
		Tokens:    tokenSvc,
		Producer:  producer,
		AccessTTL: cfg.AccessTTL,
	}
	catalogSvc := &service.CatalogService{
		Repo:     store,
		Producer: producer,
		Search:   searchSvc,
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:    &httpserver.AuthHTTP{Svc: authSvc},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: catalogSvc},
		Gate:           &authmw.Gate{Tokens: tokenSvc, Repo: store},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("server stopped")
}
