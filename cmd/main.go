package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/metro-fleet/internal/auth"
	"github.com/ukydev/metro-fleet/internal/cache"
	"github.com/ukydev/metro-fleet/internal/config"
	"github.com/ukydev/metro-fleet/internal/db"
	"github.com/ukydev/metro-fleet/internal/handlers"
	"github.com/ukydev/metro-fleet/internal/induction"
	"github.com/ukydev/metro-fleet/internal/sensors"
)

const shutdownTimeout = 5 * time.Second

// configureLogging applies LOG_LEVEL and LOG_FORMAT to the standard logger.
func configureLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
	if strings.EqualFold(cfg.LogFormat, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func newPublisher(cfg *config.Config) sensors.Publisher {
	if cfg.MQTTURL == "" {
		return sensors.NoopPublisher{}
	}
	publisher, err := sensors.NewMQTTPublisher(cfg.MQTTURL, cfg.MQTTTopic)
	if err != nil {
		log.WithError(err).Warn("MQTT unavailable, readings will not be published")
		return sensors.NoopPublisher{}
	}
	return publisher
}

// app holds everything that needs closing on shutdown.
type app struct {
	server    *http.Server
	store     db.Store
	cache     *cache.Service
	hub       *sensors.Hub
	feed      *sensors.Feed
	publisher sensors.Publisher
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	store, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	c, err := cache.New(ctx, cfg.RedisURL, cfg.CacheTTL)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, dashboard cache disabled")
	}

	rng := newRand(cfg.Seed)
	publisher := newPublisher(cfg)
	hub := sensors.NewHub()
	feed := sensors.NewFeed(store, store, publisher, hub, rand.New(rand.NewSource(rng.Int63())))
	planner := induction.NewPlanner(store, rng)

	router := handlers.NewRouter(handlers.Deps{
		Config:  cfg,
		Store:   store,
		Cache:   c,
		Planner: planner,
		Feed:    feed,
		Hub:     hub,
		Auth:    auth.NewService(cfg.JWTSecret, cfg.JWTExpiry),
	})

	return &app{
		server: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		store:     store,
		cache:     c,
		hub:       hub,
		feed:      feed,
		publisher: publisher,
	}, nil
}

// close releases the app's resources. The HTTP server must already be stopped.
func (a *app) close(ctx context.Context) {
	a.hub.Close()
	a.publisher.Close()
	if err := a.cache.Close(); err != nil {
		log.WithError(err).Warn("Failed to close cache")
	}
	if err := a.store.Close(ctx); err != nil {
		log.WithError(err).Warn("Failed to close store")
	}
}

// run serves until ctx is cancelled and then shuts down gracefully.
func run(ctx context.Context, cfg *config.Config) error {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}

	feedCtx, stopFeed := context.WithCancel(ctx)
	defer stopFeed()
	go a.feed.Run(feedCtx, cfg.SensorInterval)

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{
			"addr":          a.server.Addr,
			"store":         cfg.StoreDriver,
			"auth_required": cfg.AuthRequired,
		}).Info("HTTP server listening")
		errCh <- a.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		stopFeed()
		a.close(context.Background())
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	stopFeed()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	// websocket connections are hijacked, so Shutdown does not wait for them
	a.hub.Close()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Graceful shutdown failed")
	}
	a.close(shutdownCtx)
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	configureLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.WithError(err).Fatal("Server stopped")
	}
	log.Info("Server stopped")
}
