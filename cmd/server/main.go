package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/scmmishra/adpair/internal/analytics"
	"github.com/scmmishra/adpair/internal/cache"
	"github.com/scmmishra/adpair/internal/config"
	"github.com/scmmishra/adpair/internal/db"
	"github.com/scmmishra/adpair/internal/geo"
	"github.com/scmmishra/adpair/internal/handlers"
	"github.com/scmmishra/adpair/internal/logging"
	"github.com/scmmishra/adpair/internal/metrics"
	"github.com/scmmishra/adpair/internal/selector"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatal("database", zap.Error(err))
	}
	defer database.Close()

	geoReader, err := geo.Open(cfg.GeoIPPath)
	if err != nil {
		log.Warn("geo lookups disabled", zap.Error(err))
		geoReader, _ = geo.Open("")
	}
	defer geoReader.Close()

	limiters, err := cache.New(cfg.LimiterCache, cfg.RateLimitRPS, cfg.RateLimitBurst)
	if err != nil {
		log.Fatal("limiter cache", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	if err := os.MkdirAll(cfg.StaticDir, 0o755); err != nil {
		log.Fatal("static dir", zap.Error(err))
	}

	router := handlers.NewRouter(handlers.Deps{
		DB:             database,
		Log:            log,
		Metrics:        m,
		Geo:            geoReader,
		Limiters:       limiters,
		Selector:       selector.FromDB(database),
		Recorder:       analytics.NewRecorder(database, m, log, cfg.FilterBots),
		StaticDir:      cfg.StaticDir,
		MaxUploadBytes: cfg.MaxUploadBytes,
		CORSOrigins:    cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("ad server listening",
			zap.String("addr", srv.Addr),
			zap.Bool("tls", cfg.TLSEnabled()),
			zap.Bool("geo", geoReader.Enabled()),
			zap.Bool("filter_bots", cfg.FilterBots),
		)
		var err error
		if cfg.TLSEnabled() {
			err = srv.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server", zap.Error(err))
		}
	}()

	<-stop
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}
	log.Info("goodbye")
}
