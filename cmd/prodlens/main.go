package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/prodlens/internal/config"
	dbRedis "github.com/kailas-cloud/prodlens/internal/db/redis"
	logpkg "github.com/kailas-cloud/prodlens/internal/logger"
	"github.com/kailas-cloud/prodlens/internal/metrics"
	draftrepo "github.com/kailas-cloud/prodlens/internal/repository/draft"
	flashrepo "github.com/kailas-cloud/prodlens/internal/repository/flash"
	handoffrepo "github.com/kailas-cloud/prodlens/internal/repository/handoff"
	"github.com/kailas-cloud/prodlens/internal/transport/vision"
	"github.com/kailas-cloud/prodlens/internal/transport/web"
	captureuc "github.com/kailas-cloud/prodlens/internal/usecase/capture"
	healthuc "github.com/kailas-cloud/prodlens/internal/usecase/health"
	queryuc "github.com/kailas-cloud/prodlens/internal/usecase/query"
	"github.com/kailas-cloud/prodlens/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting prodlens",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("vision_endpoint", cfg.Vision.Endpoint),
	)

	// Valkey and Redis share the rueidis store; the driver name only shows up in logs.
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create session store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Session store not ready", zap.Error(err))
	}
	logger.Info("Connected to session store")

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	// Repositories
	handoff := handoffrepo.New(store, cfg.Handoff.KeyPrefix,
		time.Duration(cfg.Handoff.TTLSec)*time.Second, metrics.HandoffTotal)
	drafts := draftrepo.New(store, cfg.Handoff.KeyPrefix, time.Duration(cfg.Handoff.DraftTTLSec)*time.Second)
	flash := flashrepo.New(store, cfg.Handoff.KeyPrefix,
		time.Duration(cfg.Handoff.DraftTTLSec)*time.Second, metrics.NotificationsTotal)

	// Product search client
	searcher, err := vision.NewClient(&vision.Config{
		Endpoint:          cfg.Vision.Endpoint,
		APIKey:            cfg.Vision.APIKey,
		ProductSet:        cfg.Vision.ProductSet,
		ProductCategories: cfg.Vision.ProductCategories,
		MaxResults:        cfg.Vision.MaxResults,
		Logger:            logger,
	})
	if err != nil {
		logger.Fatal("Failed to create product search client", zap.Error(err))
	}

	// Use case services
	captureSvc := captureuc.New(drafts, handoff, cfg.Upload.MaxBytes)
	querySvc := queryuc.New(handoff, searcher, cfg.Vision.Timeout())
	healthSvc := healthuc.New(store)

	server, err := web.NewServer(captureSvc, querySvc, flash, healthSvc, web.Config{
		Session:        web.SessionConfig{CookieName: cfg.Session.CookieName, Secure: cfg.Session.Secure},
		APIKeys:        cfg.Auth.APIKeys,
		MaxUploadBytes: cfg.Upload.MaxBytes,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create HTTP server", zap.Error(err))
	}

	r := chi.NewRouter()
	r.Use(recoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// recoverer turns a panic into a 500: JSON under /api, a plain page elsewhere.
func recoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.String("path", r.URL.Path),
						zap.Stack("stacktrace"),
					)
					if strings.HasPrefix(r.URL.Path, "/api/") {
						w.Header().Set("Content-Type", "application/json")
						w.WriteHeader(http.StatusInternalServerError)
						_ = json.NewEncoder(w).Encode(map[string]string{
							"code":    "internal_error",
							"message": "internal error",
						})
						return
					}
					http.Error(w, "Something went wrong. Please go back and try again.", http.StatusInternalServerError)
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
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			}
			if loc := ww.Header().Get("Location"); loc != "" {
				fields = append(fields, zap.String("location", loc))
			}
			reqLogger.Info("http_request", fields...)
		})
	}
}
