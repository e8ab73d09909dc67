package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/meridian-cloud/specdex"
	"github.com/meridian-cloud/specdex/internal/broadcast"
	"github.com/meridian-cloud/specdex/internal/config"
	logpkg "github.com/meridian-cloud/specdex/internal/logger"
	"github.com/meridian-cloud/specdex/internal/metrics"
	catalogrepo "github.com/meridian-cloud/specdex/internal/repository/catalog"
	chiTransport "github.com/meridian-cloud/specdex/internal/transport/chi"
	"github.com/meridian-cloud/specdex/internal/version"
)

const brokerReadinessTimeout = 10 * time.Second

func main() {
	// Optional .env for local development; missing file is fine.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting specdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("catalog_path", cfg.Catalog.Path),
		zap.Bool("sync_enabled", cfg.Sync.Enabled),
	)

	metrics.RegisterEngineMetrics()

	engine := specdex.New(
		specdex.WithFuzzyThreshold(cfg.Search.FuzzyThreshold),
		specdex.WithLogger(logger),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional cross-session filter broadcast
	var broadcaster chiTransport.Broadcaster
	var channel *broadcast.Channel
	if cfg.Sync.Enabled {
		channel, err = broadcast.New(broadcast.Config{
			Addrs:     cfg.Sync.Addrs,
			Password:  cfg.Sync.Password,
			Channel:   cfg.Sync.Channel,
			SessionID: cfg.Sync.SessionID,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to create broadcast channel", zap.Error(err))
		}
		defer channel.Close()

		if err := channel.WaitForReady(ctx, brokerReadinessTimeout); err != nil {
			logger.Fatal("Broadcast broker not ready", zap.Error(err))
		}
		broadcaster = channel
		logger.Info("Connected to broadcast broker",
			zap.Strings("addrs", cfg.Sync.Addrs),
			zap.String("channel", cfg.Sync.Channel),
			zap.String("session_id", cfg.Sync.SessionID),
		)
	}

	server := chiTransport.NewServer(engine, broadcaster, logger)

	// Initial catalog load
	if cfg.Catalog.Path != "" {
		products, err := catalogrepo.New(cfg.Catalog.Path).Load()
		if err != nil {
			logger.Fatal("Failed to load catalog", zap.Error(err))
		}
		engine.Initialize(products)
		server.SetLoaded()
		metrics.IndexedProducts.Set(float64(engine.Count()))
		logger.Info("Catalog indexed",
			zap.Int("received", len(products)),
			zap.Int("indexed", engine.Count()),
		)
	}

	// Observe peer sessions' filter changes
	if channel != nil {
		go func() {
			err := channel.Subscribe(ctx, func(ev broadcast.Event) {
				metrics.SyncEventsTotal.WithLabelValues("received").Inc()
				logger.Info("peer filter state",
					zap.String("session_id", ev.SessionID),
					zap.String("query", ev.Query),
					zap.Int("ranges", len(ev.Ranges)),
					zap.Strings("categories", ev.Categories),
				)
			})
			if err != nil {
				logger.Error("Broadcast subscription ended", zap.Error(err))
			}
		}()
	}

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	r.Mount("/", server.Routes())

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.WithContext(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
