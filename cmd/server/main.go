package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/ndc-feature-tracker/internal/ai"
	"github.com/iliyamo/ndc-feature-tracker/internal/config"
	"github.com/iliyamo/ndc-feature-tracker/internal/database"
	"github.com/iliyamo/ndc-feature-tracker/internal/handler"
	"github.com/iliyamo/ndc-feature-tracker/internal/logger"
	"github.com/iliyamo/ndc-feature-tracker/internal/middleware"
	"github.com/iliyamo/ndc-feature-tracker/internal/query"
	"github.com/iliyamo/ndc-feature-tracker/internal/queue"
	"github.com/iliyamo/ndc-feature-tracker/internal/repository"
	"github.com/iliyamo/ndc-feature-tracker/internal/router"
	"github.com/iliyamo/ndc-feature-tracker/internal/service"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if err := database.CreateTables(initCtx, db); err != nil {
		log.Fatal("create tables", zap.Error(err))
	}
	if cfg.SeedOnStart {
		if _, err := database.Seed(initCtx, db, log); err != nil {
			log.Fatal("seed database", zap.Error(err))
		}
	}
	cancel()

	rdb := config.NewRedisClient(log)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	var publisher service.EventPublisher = service.NopPublisher{}
	if cfg.EventsEnabled {
		publisher = service.AMQPPublisher{URL: cfg.RabbitURL}
		consumer := queue.NewConsumer(cfg.RabbitURL, cfg.AuditLogPath, log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("audit consumer stopped", zap.Error(err))
			}
		}()
	}
	notifier := service.NewCatalogNotifier(publisher, log)

	aliases, err := query.LoadAliases(cfg.AliasesFile)
	if err != nil {
		log.Fatal("load alias tables", zap.String("path", cfg.AliasesFile), zap.Error(err))
	}

	catalog := repository.NewCatalog(db)
	airlines, features := catalog.Airlines, catalog.Features

	aiClient := ai.NewClient(cfg.AI, log)
	if !aiClient.Enabled() {
		log.Warn("ANTHROPIC_API_KEY not set, chat is disabled")
	}
	chat := service.NewChatService(
		query.NewAnalyzer(aliases),
		query.NewBuilder(catalog, log),
		aiClient,
		cfg.AI.ChatTimeout,
		log,
	)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(echomw.SecureWithConfig(echomw.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
	}))
	e.Use(echomw.BodyLimit("10M"))

	router.RegisterRoutes(e, handler.NewHealthHandler(db))
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db), log), cfg.JWTSecret)
	router.RegisterCatalog(e, router.Catalog{
		Airlines:        handler.NewAirlineHandler(airlines, notifier, log),
		Features:        handler.NewFeatureHandler(features, notifier, log),
		Implementations: handler.NewImplementationHandler(catalog.Implementations, airlines, features, notifier, log),
		Cache:           middleware.NewResponseCache(config.LoadCacheConfig(), rdb, log),
		AuthEnabled:     cfg.AuthEnabled,
		JWTSecret:       cfg.JWTSecret,
	})
	router.RegisterChat(e, handler.NewChatHandler(chat, log), middleware.RateLimit(config.LoadRateLimitConfig(), rdb, log))

	if cfg.FrontendDir != "" {
		e.Use(echomw.StaticWithConfig(echomw.StaticConfig{
			Root:  cfg.FrontendDir,
			HTML5: true,
			Skipper: func(c echo.Context) bool {
				p := c.Request().URL.Path
				return p == "/api" || strings.HasPrefix(p, "/api/") || p == "/metrics" || p == "/healthz"
			},
		}))
	}

	go func() {
		addr := ":" + cfg.Port
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env),
			zap.Bool("auth", cfg.AuthEnabled), zap.Bool("events", cfg.EventsEnabled), zap.Bool("chat", aiClient.Enabled()))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
