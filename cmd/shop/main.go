package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/shopcore/internal/config"
	"github.com/Skotchmaster/shopcore/internal/events"
	"github.com/Skotchmaster/shopcore/internal/httpserver"
	"github.com/Skotchmaster/shopcore/internal/idempotency"
	"github.com/Skotchmaster/shopcore/internal/repo"
	"github.com/Skotchmaster/shopcore/internal/service"
	"github.com/Skotchmaster/shopcore/pkg/db"
	"github.com/Skotchmaster/shopcore/pkg/logging"
	"github.com/Skotchmaster/shopcore/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/shopcore/pkg/middleware/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	ctx := context.Background()

	gdb, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db init: %v", err)
	}
	if err := repo.Migrate(gdb); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	store := &repo.GormRepo{DB: gdb}

	var publisher events.Publisher = events.Nop{}
	var producer *events.KafkaProducer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewKafkaProducer(cfg.KafkaBrokers)
		publisher = producer
	} else {
		logger.Warn("kafka disabled, events are dropped")
	}

	orders := &service.OrderService{
		Repo:              store,
		Events:            publisher,
		Transitions:       service.PermissiveTransitions,
		LowStockThreshold: cfg.LowStockThreshold,
	}
	if cfg.StrictOrderTransitions {
		orders.Transitions = service.LinearTransitions
	}

	if cfg.RedisAddr != "" {
		rdb, err := idempotency.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			log.Fatalf("redis init: %v", err)
		}
		defer rdb.Close()
		orders.Idempotency = idempotency.NewRedisStore(rdb, cfg.IdempotencyTTL)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		log.Fatalf("db handle: %v", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), middleware.Secure(), loggingmw.RequestLogger(logger))
	e.Use(csrf.Middleware(csrf.Config{Secure: cfg.CookieSecure, SkipPrefixes: []string{"/health/"}}))

	httpserver.Register(e, &httpserver.Deps{
		CatalogHandler: &httpserver.CatalogHTTP{Svc: &service.CatalogService{Repo: store}},
		InventoryHandler: &httpserver.InventoryHTTP{
			Svc:              &service.InventoryService{Repo: store, Events: publisher, LowStockThreshold: cfg.LowStockThreshold},
			DefaultThreshold: cfg.LowStockThreshold,
		},
		CartHandler:  &httpserver.CartHTTP{Svc: &service.CartService{Repo: store}, Orders: orders},
		OrderHandler: &httpserver.OrderHTTP{Svc: orders},
		AnalyticsHandler: &httpserver.AnalyticsHTTP{
			Svc: &service.AnalyticsService{Aggregator: &service.ScanAggregator{Repo: store}},
		},
		JWTSecret: []byte(cfg.JWTSecret),
		Ready: func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			return sqlDB.PingContext(pingCtx)
		},
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka close error", "error", err)
		}
	}
	if err := sqlDB.Close(); err != nil {
		logger.Error("db close error", "error", err)
	}

	logger.Info("shutdown complete")
}
