package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/matcha-storefront/internal/cart"
	"github.com/fjod/matcha-storefront/internal/catalog"
	"github.com/fjod/matcha-storefront/internal/checkout"
	"github.com/fjod/matcha-storefront/internal/config"
	"github.com/fjod/matcha-storefront/internal/events"
	h "github.com/fjod/matcha-storefront/internal/http"
	"github.com/fjod/matcha-storefront/internal/logger"
	"github.com/fjod/matcha-storefront/internal/notify"
	"github.com/fjod/matcha-storefront/internal/orders"
	"github.com/fjod/matcha-storefront/internal/publisher"
	"github.com/fjod/matcha-storefront/internal/service"
	"github.com/fjod/matcha-storefront/internal/store"
	"github.com/fjod/matcha-storefront/internal/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	zap.ReplaceGlobals(zl)

	if err := run(cfg, zl); err != nil {
		zl.Fatal("storefront stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.InitTracing(ctx, telemetry.Config{
		ServiceName: "matcha-storefront",
		Endpoint:    cfg.OTLPEndpoint,
		Probability: 1,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			zl.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	st, closeStore, err := store.Open(ctx, store.Options{
		Driver:      cfg.StoreDriver,
		SQLitePath:  cfg.SQLitePath,
		DatabaseURL: cfg.DatabaseURL,
		RedisAddr:   cfg.RedisAddr,
		MongoURI:    cfg.MongoURI,
		MongoDB:     cfg.MongoDB,
	}, zl)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			zl.Warn("failed to close store", zap.Error(err))
		}
	}()

	provider, closeCatalog, err := openCatalog(ctx, cfg, zl)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer func() { _ = closeCatalog() }()

	bus := events.NewBus(zl)
	feed := notify.NewFeed(notify.DefaultTTL)
	defer feed.Close()
	bus.Subscribe(feed.Handle)

	var orderPublisher *publisher.OrderPublisher
	if len(cfg.KafkaBrokers) > 0 {
		orderPublisher = publisher.NewOrderPublisher(publisher.NewKafkaWriter(cfg.KafkaTopic, cfg.KafkaBrokers...), zl)
		bus.Subscribe(orderPublisher.Handle)
		zl.Info("publishing order events", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	engine := cart.NewEngine(provider, st, bus, zl)
	orderLog := orders.NewLog(st, zl)
	pipeline := checkout.NewPipeline(engine, orderLog, bus, zl)
	dispatcher := service.NewDispatcher(engine, pipeline, orderLog, zl)
	dispatcher.Start(ctx)

	srv := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: h.NewRouter(h.Deps{
			Storefront:    dispatcher,
			Catalog:       provider,
			Notifications: feed,
			Log:           zl,
			Timeout:       cfg.RequestTimeout,
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zl.Info("storefront starting", zap.String("port", cfg.HTTPPort), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	if orderPublisher != nil {
		g.Go(func() error {
			defer func() { _ = orderPublisher.Close() }()
			return orderPublisher.Run(gctx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		zl.Info("shutting down server...")
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	err = g.Wait()
	zl.Info("server exited")
	return err
}

func openCatalog(ctx context.Context, cfg *config.Config, zl *zap.Logger) (catalog.Provider, func() error, error) {
	switch cfg.CatalogSource {
	case "", "memory":
		return catalog.NewDefault(), func() error { return nil }, nil
	case "sqlite":
		c, err := catalog.OpenSQL(cfg.CatalogDBPath)
		if err != nil {
			return nil, nil, err
		}
		if err := c.RunMigrations(); err != nil {
			_ = c.Close()
			return nil, nil, err
		}
		if err := c.SeedIfEmpty(ctx, catalog.SeedCategories(), catalog.SeedProducts()); err != nil {
			_ = c.Close()
			return nil, nil, err
		}
		zl.Info("using sqlite catalog", zap.String("path", cfg.CatalogDBPath))
		return c, c.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown catalog source %q", cfg.CatalogSource)
	}
}
