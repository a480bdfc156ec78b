// Command server runs the biztime HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/ziflex/lecho/v3"

	"github.com/iliyamo/biztime/internal/config"
	"github.com/iliyamo/biztime/internal/database"
	"github.com/iliyamo/biztime/internal/handler"
	"github.com/iliyamo/biztime/internal/logging"
	"github.com/iliyamo/biztime/internal/middleware"
	"github.com/iliyamo/biztime/internal/queue"
	"github.com/iliyamo/biztime/internal/repository"
	"github.com/iliyamo/biztime/internal/router"
	"github.com/iliyamo/biztime/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log)

	// sentry init needs to happen before the echo middlewares are added
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN, Environment: cfg.Env}); err != nil {
			logger.Errorf("sentry init error: %v", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	db, err := database.Open(cfg.DB)
	if err != nil {
		logger.Fatalf("database: %v", err)
	}
	defer db.Close()

	if cfg.DB.Migrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := database.Migrate(ctx, db)
		cancel()
		if err != nil {
			logger.Fatalf("migrate: %v", err)
		}
		logger.Info("database schema is up to date")
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		logger.Info("redis unavailable: response cache and rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	events := service.NewPublisher(cfg.AMQP, logger)
	defer events.Close()

	e := echo.New()
	e.HideBanner = true
	e.Logger = logger
	e.HTTPErrorHandler = handler.HTTPErrorHandler
	e.Validator = handler.NewValidator()

	e.Use(echomw.Recover())
	e.Use(echomw.BodyLimit(cfg.BodyLimit))
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	if cfg.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{}))
	}
	e.Use(lecho.Middleware(lecho.Config{
		Logger: logger,
		Enricher: func(c echo.Context, logger zerolog.Context) zerolog.Context {
			return logger.Interface("user_id", c.Get(middleware.ContextUserID))
		},
	}))
	e.Use(middleware.Metrics())
	e.Use(middleware.NewTokenBucket(cfg.RateLimit, rdb, cfg.Auth.JWTSecret))

	// Only the API groups are cached; see router.
	cache := middleware.NewRedisCache(cfg.Cache, rdb)

	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg.Auth))
	router.RegisterCompanies(e, handler.NewCompanyHandler(repository.NewCompanyRepo(db), events), cfg.Auth, cache)
	router.RegisterInvoices(e, handler.NewInvoiceHandler(repository.NewInvoiceRepo(db), events), cfg.Auth, cache)
	router.RegisterIndustries(e, handler.NewIndustryHandler(repository.NewIndustryRepo(db)), cfg.Auth, cache)

	var backgroundWg sync.WaitGroup
	backgroundCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.AMQP.URL != "" && cfg.AMQP.ConsumerEnabled {
		backgroundWg.Add(1)
		go func() {
			defer backgroundWg.Done()
			if err := queue.StartEventConsumer(backgroundCtx, cfg.AMQP, logger); err != nil && !errors.Is(err, context.Canceled) {
				sentry.CaptureException(err)
				logger.Error(err)
			}
			logger.Info("event consumer done")
		}()
	}

	addr := fmt.Sprintf(":%s", cfg.Port)
	go func() {
		logger.Infof("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal("shutting down the server")
		}
	}()

	<-backgroundCtx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Error(err)
	}
	backgroundWg.Wait()
	logger.Info("biztime exiting gracefully")
}
