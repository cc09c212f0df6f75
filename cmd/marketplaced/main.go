// Command marketplaced runs the marketplace lifecycle engine: it wires the
// adapter client, shadow store, and draft sessions, and serves the
// operational HTTP endpoint. Controller routes live elsewhere.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/seda-works/marketplace_layer/internal/app"
	"github.com/seda-works/marketplace_layer/internal/app/metrics"
	"github.com/seda-works/marketplace_layer/internal/app/remote"
	"github.com/seda-works/marketplace_layer/internal/app/services/scopedraft"
	"github.com/seda-works/marketplace_layer/internal/app/storage/postgres"
	"github.com/seda-works/marketplace_layer/internal/config"
	"github.com/seda-works/marketplace_layer/pkg/logger"
)

func main() {
	envFile := flag.String("env", "", "optional .env file to load")
	configFile := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			logger.NewDefault("marketplaced").WithError(err).Error("load env file")
			os.Exit(1)
		}
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.NewDefault("marketplaced").WithError(err).Error("load configuration")
		os.Exit(1)
	}

	log := logger.New("marketplaced", cfg.LogLevel)

	adapter, err := remote.NewClient(remote.Config{
		BaseURL:     cfg.Adapter.BaseURL,
		BearerToken: cfg.Adapter.BearerToken,
		Timeout:     cfg.Adapter.Timeout(),
	}, log.WithField("component", "adapter"))
	if err != nil {
		log.WithError(err).Error("configure adapter client")
		os.Exit(1)
	}

	opts := app.Options{Adapter: adapter, Log: log}

	if cfg.Database.DSN != "" {
		if err := postgres.Migrate(cfg.Database.MigrationsURL, cfg.Database.DSN); err != nil {
			log.WithError(err).Error("migrate shadow store")
			os.Exit(1)
		}
		store, err := postgres.Open(cfg.Database.DSN)
		if err != nil {
			log.WithError(err).Error("open shadow store")
			os.Exit(1)
		}
		opts.Stores = app.Stores{Projects: store, Milestones: store}
	} else {
		log.Warn("no shadow database configured, fallback writes will not survive restarts")
	}

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		opts.Drafts = scopedraft.NewRedisStore(rdb, cfg.Redis.DraftTTL())
	}

	application := app.New(opts)
	application.LogInventory()

	router := chi.NewRouter()
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", metrics.Handler())

	server := &http.Server{
		Addr:              cfg.Ops.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.Ops.ListenAddr).Info("ops endpoint listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("ops endpoint failed")
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("ops endpoint shutdown")
	}
	log.Info("shut down")
}
