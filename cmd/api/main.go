package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"dosage-dashboard/internal/config"
	"dosage-dashboard/internal/platform/logger"
	"dosage-dashboard/internal/platform/metrics"
	"dosage-dashboard/internal/router"
)

// @title Dosage Dashboard API
// @version 1.0
// @description Backend del panel de cuidadores: dispositivos, historial de dosis, exportación y notificaciones.
// @BasePath /
func main() {
	cfg, err := config.Load(config.LoadOptions{ConfigFile: os.Getenv("DOSAGE_CONFIG_FILE")})
	if err != nil {
		logger.NewFromEnv().Error("config load failed", map[string]any{"err": err})
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    cfg.Log.App,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server error", map[string]any{"err": err})
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	m := metrics.New()

	store, err := openStorage(ctx, cfg.Storage, log)
	if err != nil {
		return err
	}
	defer store.close()

	feed, closeFeed, err := openFeed(ctx, cfg.Redis, log)
	if err != nil {
		return err
	}
	defer closeFeed()

	verifier, err := newVerifier(cfg.Auth)
	if err != nil {
		return err
	}
	registry, err := newRegistry(cfg.Registry)
	if err != nil {
		return err
	}
	if verifier == nil {
		log.Warn("auth disabled: X-Debug-User-ID header accepted", nil)
	}

	// las suscripciones al feed viven hasta que empieza el shutdown
	subsCtx, cancelSubs := context.WithCancel(context.Background())
	defer cancelSubs()

	handler := router.NewRouter(router.Options{
		AuthVerifier: verifier,
		Logger:       log,
		Metrics:      m,
		Devices:      store.devices,
		Dosages:      store.dosages,
		Profiles:     store.profiles,
		Registry:     registry,
		Feed:         feed,
		History: router.HistoryOptions{
			PageSize:     cfg.History.PageSize,
			DefaultDays:  cfg.History.DefaultDays,
			MaxRangeDays: cfg.History.MaxRangeDays,
		},
		Notifications: router.NotificationOptions{
			Max:              cfg.Notifications.Max,
			TTL:              cfg.Notifications.TTL,
			SubscribeTimeout: cfg.Notifications.SubscribeTimeout,
		},
		Location:    cfg.History.Location(),
		CORSOrigins: cfg.CORS.AllowedOrigins,
		BaseContext: subsCtx,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{
			"addr":    srv.Addr,
			"env":     cfg.Env,
			"storage": cfg.Storage.Backend,
			"feed":    feedKind(cfg.Redis),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	cancelSubs()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func feedKind(r config.RedisConfig) string {
	if r.Enabled() {
		return "redis"
	}
	return "memory"
}
