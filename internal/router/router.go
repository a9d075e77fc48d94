package router

import (
	"context"
	"net/http"
	"time"

	"dosage-dashboard/internal/adapters/feed/memfeed"
	mem "dosage-dashboard/internal/adapters/storage/memory"
	"dosage-dashboard/internal/domain/dashboard"
	"dosage-dashboard/internal/domain/devices"
	"dosage-dashboard/internal/domain/dosages"
	"dosage-dashboard/internal/domain/history"
	"dosage-dashboard/internal/domain/notifications"
	"dosage-dashboard/internal/domain/profiles"
	"dosage-dashboard/internal/middleware"
	"dosage-dashboard/internal/platform/logger"
	"dosage-dashboard/internal/platform/metrics"
	"dosage-dashboard/internal/ports/auth"

	_ "dosage-dashboard/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/handlers"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Feed es el stream de dosis: notificaciones se suscriben, el ingest dev publica.
type Feed interface {
	notifications.Feed
	Publish(ctx context.Context, e dosages.DosageEvent) error
}

type HistoryOptions struct {
	PageSize     int
	DefaultDays  int
	MaxRangeDays int
}

type NotificationOptions struct {
	Max              int
	TTL              time.Duration
	SubscribeTimeout time.Duration
}

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	Logger  logger.Logger
	Metrics *metrics.Metrics // nil = sin /metrics

	// Stores. Si vienen nil, in-memory.
	Devices  devices.Repository
	Dosages  dosages.Repository
	Profiles profiles.Repository
	// Registry remoto opcional: reemplaza las asignaciones de Devices.
	Registry devices.AssignmentLister

	Feed Feed

	History       HistoryOptions
	Notifications NotificationOptions
	Location      *time.Location
	CORSOrigins   []string

	// BaseContext acota las suscripciones al feed; cancelarlo las cierra.
	BaseContext context.Context
	Now         func() time.Time
}

func NewRouter(opts Options) http.Handler {
	opts = withDefaults(opts)
	log := opts.Logger

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.AccessLog(log, opts.Metrics))
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier, log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics.Handler())
	}
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	deviceRepo := devices.WithAssignments(opts.Devices, opts.Registry)
	resolver := devices.NewResolver(deviceRepo)
	paginator := dosages.NewPaginator(opts.Dosages)
	aggregator := dosages.NewAggregator(opts.Dosages)

	// Services por módulo
	devicesSvc := devices.NewService(deviceRepo, opts.Dosages)
	profilesSvc := profiles.NewService(opts.Profiles, opts.Now)
	dashboardSvc := dashboard.NewService(resolver, deviceRepo, opts.Dosages, dashboard.Options{
		Location: opts.Location,
		Now:      opts.Now,
		Profiles: profilesSvc,
	})

	historyLog := log.With(map[string]any{"component": "history"})
	sessions := history.NewSessions(func(userID string) *history.Controller {
		return history.NewController(userID, resolver, paginator, aggregator, history.Options{
			PageSize: opts.History.PageSize,
			Log:      historyLog,
			Observer: observer(opts.Metrics),
		})
	}, gauge(opts.Metrics))

	hub := notifications.NewHub(opts.BaseContext, resolver, opts.Feed, notifications.HubOptions{
		Max:              opts.Notifications.Max,
		TTL:              opts.Notifications.TTL,
		SubscribeTimeout: opts.Notifications.SubscribeTimeout,
		Log: log.With(map[string]any{"component": "notifications"}),
		OnDeliver: func(n notifications.Notification) {
			opts.Metrics.IncNotification(string(n.Type))
		},
		Now: opts.Now,
	})

	// Rutas por módulo
	devices.RegisterRoutes(r, devicesSvc)
	dashboard.RegisterRoutes(r, dashboardSvc)
	profiles.RegisterRoutes(r, profilesSvc)
	history.RegisterRoutes(r, sessions, history.HandlerOptions{
		DefaultDays:  opts.History.DefaultDays,
		MaxRangeDays: opts.History.MaxRangeDays,
		Location:     opts.Location,
		Now:          opts.Now,
	})
	notifications.RegisterRoutes(r, hub)
	r.Delete("/me/session", endSessionHandler(sessions, hub))

	if opts.AuthVerifier == nil {
		if ins, ok := opts.Dosages.(dosageInserter); ok {
			registerDevRoutes(r, ins, opts.Feed, log, opts.Now)
		}
	}

	if len(opts.CORSOrigins) == 0 {
		return r
	}
	return handlers.CORS(
		handlers.AllowedOrigins(opts.CORSOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", middleware.DebugUserIDHeader}),
		handlers.ExposedHeaders([]string{"Content-Disposition"}),
	)(r)
}

func withDefaults(opts Options) Options {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Devices == nil {
		opts.Devices = mem.NewDeviceRepo()
	}
	if opts.Dosages == nil {
		opts.Dosages = mem.NewDosageRepo()
	}
	if opts.Profiles == nil {
		opts.Profiles = mem.NewProfileRepo()
	}
	if opts.Feed == nil {
		opts.Feed = memfeed.NewBroker()
	}
	if opts.History.PageSize <= 0 {
		opts.History.PageSize = dosages.DefaultPageSize
	}
	if opts.History.DefaultDays <= 0 {
		opts.History.DefaultDays = 30
	}
	if opts.Notifications.Max <= 0 {
		opts.Notifications.Max = notifications.DefaultMax
	}
	if opts.Notifications.TTL <= 0 {
		opts.Notifications.TTL = notifications.DefaultTTL
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.BaseContext == nil {
		opts.BaseContext = context.Background()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return opts
}

// observer y gauge evitan guardar un *Metrics nil dentro de una interfaz no-nil.
func observer(m *metrics.Metrics) history.Observer {
	if m == nil {
		return nil
	}
	return m
}

func gauge(m *metrics.Metrics) history.SessionGauge {
	if m == nil {
		return nil
	}
	return m
}

// endSessionHandler godoc
// @Summary Cerrar sesión del cuidador
// @Description Descarta el estado del historial y cierra la suscripción de notificaciones del usuario (logout o cambio de identidad). Las consultas en vuelo quedan descartadas.
// @Tags session
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Success 204 {string} string "closed"
// @Failure 401 {string} string "unauthorized"
// @Router /me/session [delete]
func endSessionHandler(sessions *history.Sessions, hub *notifications.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || claims.UserID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		sessions.Drop(claims.UserID)
		hub.Close(claims.UserID)
		w.WriteHeader(http.StatusNoContent)
	}
}
