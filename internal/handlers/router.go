package handlers

import (
	"net/http"

	"github.com/ukydev/metro-fleet/internal/auth"
	"github.com/ukydev/metro-fleet/internal/cache"
	"github.com/ukydev/metro-fleet/internal/config"
	"github.com/ukydev/metro-fleet/internal/db"
	"github.com/ukydev/metro-fleet/internal/induction"
	"github.com/ukydev/metro-fleet/internal/metrics"
	"github.com/ukydev/metro-fleet/internal/middleware"
	"github.com/ukydev/metro-fleet/internal/sensors"
)

// Deps are the services the router wires into handlers.
type Deps struct {
	Config  *config.Config
	Store   db.Store
	Cache   *cache.Service
	Planner *induction.Planner
	Feed    *sensors.Feed
	Hub     *sensors.Hub
	Auth    *auth.Service
}

// NewRouter registers every route and wraps the mux in the middleware chain.
func NewRouter(d Deps) http.Handler {
	authMiddleware := middleware.NewAuthMiddleware(d.Auth)
	// Mutating routes need a token only when AUTH_REQUIRED is set.
	protect := func(action string, h http.HandlerFunc) http.Handler {
		if d.Config.AuthRequired {
			return authMiddleware.Protect(action, h)
		}
		return h
	}

	health := NewHealthHandler(d.Store)
	trains := NewTrainHandler(d.Store, d.Store, d.Cache)
	dashboard := NewDashboardHandler(d.Store, d.Store, d.Cache)
	plans := NewInductionHandler(d.Store, d.Planner)
	fleet := NewFleetHandler(d.Store)
	sensorsHandler := NewSensorHandler(d.Feed, d.Hub)
	authHandler := NewAuthHandler(d.Auth, d.Store)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", health.Health)
	mux.HandleFunc("GET /api/test", health.Test)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("GET /api/trains", trains.List)
	mux.HandleFunc("GET /api/trains/available", trains.Available)
	mux.HandleFunc("GET /api/trains/maintenance", trains.Maintenance)
	mux.Handle("POST /api/trains", protect("create_train", trains.Create))
	mux.HandleFunc("GET /api/trains/{id}", trains.Get)
	mux.Handle("PUT /api/trains/{id}", protect("update_train", trains.Update))
	mux.Handle("DELETE /api/trains/{id}", protect("delete_train", trains.Delete))
	mux.HandleFunc("GET /api/trains/{id}/maintenance", trains.MaintenanceRecords)
	mux.HandleFunc("GET /api/trains/{id}/sensors", trains.Sensors)

	mux.HandleFunc("GET /api/dashboard", dashboard.Summary)
	mux.HandleFunc("GET /api/induction/dashboard", dashboard.Summary)

	mux.Handle("POST /api/induction/generate-plan", protect("generate_plan", plans.GeneratePlan))
	mux.Handle("GET /api/induction/plan", protect("generate_plan", plans.GeneratePlan))
	mux.HandleFunc("GET /api/induction/history", plans.History)
	mux.HandleFunc("POST /api/induction/simulate", plans.Simulate)

	mux.HandleFunc("GET /api/alerts", fleet.Alerts)
	mux.HandleFunc("GET /api/maintenance", fleet.MaintenanceRecords)
	mux.HandleFunc("GET /api/depots", fleet.Depots)
	mux.HandleFunc("GET /api/analytics", fleet.Analytics)
	mux.HandleFunc("GET /api/notifications", fleet.Notifications)
	mux.HandleFunc("GET /api/notifications/settings", fleet.GetSettings)
	mux.Handle("PUT /api/notifications/settings", protect("update_settings", fleet.UpdateSettings))

	mux.Handle("POST /api/sensors", protect("ingest_sensors", sensorsHandler.Ingest))
	mux.HandleFunc("GET /ws/sensors", sensorsHandler.Stream)

	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/user/check", authHandler.Check)
	mux.Handle("GET /api/auth/me", authMiddleware.Authenticate(http.HandlerFunc(authHandler.GetProfile)))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "not found")
	})

	rateLimiter := middleware.NewRateLimitMiddleware(d.Config.TrustProxyHeaders)
	return middleware.Chain(mux,
		middleware.RequestLogger,
		middleware.Recover,
		middleware.CORS(d.Config.AllowedOrigins()),
		rateLimiter.RateLimit(d.Config.RateLimitRequests, d.Config.RateLimitWindow),
	)
}
