package handlers

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/scmmishra/adpair/internal/analytics"
	"github.com/scmmishra/adpair/internal/cache"
	"github.com/scmmishra/adpair/internal/geo"
	"github.com/scmmishra/adpair/internal/metrics"
	"github.com/scmmishra/adpair/internal/selector"
)

// Deps is everything the router wires into its handlers.
type Deps struct {
	DB             *sql.DB
	Log            *zap.Logger
	Metrics        *metrics.Metrics
	Geo            *geo.Reader
	Limiters       *cache.LimiterCache
	Selector       PairSelector
	Recorder       *analytics.Recorder
	StaticDir      string
	MaxUploadBytes int64
	CORSOrigins    []string
}

func NewRouter(d Deps) *chi.Mux {
	if d.Selector == nil {
		d.Selector = selector.FromDB(d.DB)
	}

	ads := &AdHandler{DB: d.DB, Log: d.Log, StaticDir: d.StaticDir, MaxUploadBytes: d.MaxUploadBytes}
	settings := &SettingsHandler{DB: d.DB, Log: d.Log}
	blacklist := &BlacklistHandler{DB: d.DB, Log: d.Log}
	serve := &ServeHandler{DB: d.DB, Log: d.Log, Selector: d.Selector, Recorder: d.Recorder, Metrics: d.Metrics}
	stats := &StatsHandler{DB: d.DB, Log: d.Log, Geo: d.Geo, Metrics: d.Metrics}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(RequestLogger(d.Log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         86400,
	}))

	r.Get("/health", health(d.DB))
	r.Handle("/metrics", d.Metrics.Handler())
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(d.StaticDir))))

	// Public surface hit by the ad script on every page.
	limited := RateLimit(d.Limiters, d.Metrics)
	r.Route("/events", func(r chi.Router) {
		r.Use(limited)
		r.Post("/page_view", serve.PageView)
		r.Post("/click", serve.Click)
	})

	r.Route("/ads", func(r chi.Router) {
		r.With(limited).Get("/random_pair", serve.RandomPair)
		r.Get("/", ads.List)
		r.Post("/upload", ads.Upload)
		r.Get("/settings", settings.Get)
		r.Patch("/settings", settings.Patch)
		r.Get("/{id}", ads.Get)
		r.Put("/{id}", ads.Update)
		r.Delete("/{id}", ads.Delete)
		r.Patch("/{id}/status", ads.UpdateStatus)
		r.Patch("/{id}/x_redirect", ads.UpdateRedirect)
		r.Get("/{id}/qr", ads.QRCode)
	})
	r.Route("/stats", func(r chi.Router) {
		r.Get("/overview", stats.Overview)
		r.Get("/daily", stats.Daily)
		r.Get("/clicks/by_domain_ip", stats.Clicks)
		r.Get("/clicks/by_domain_ip/export", stats.ExportClicks)
		r.Get("/visitors/by_domain_ip", stats.Visitors)
		r.Get("/visitors/by_domain_ip/export", stats.ExportVisitors)
	})

	r.Route("/domains/blacklist", func(r chi.Router) {
		r.Get("/", blacklist.List)
		r.Post("/", blacklist.Add)
		r.Get("/check", blacklist.Check)
		r.Delete("/{id}", blacklist.Remove)
	})

	return r
}

func health(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			jsonError(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
