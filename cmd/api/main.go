package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/booking-flow/internal/audit"
	"github.com/BruksfildServices01/booking-flow/internal/config"
	dbpkg "github.com/BruksfildServices01/booking-flow/internal/db"
	"github.com/BruksfildServices01/booking-flow/internal/infra/session"
	"github.com/BruksfildServices01/booking-flow/internal/logger"
	"github.com/BruksfildServices01/booking-flow/internal/metrics"
	"github.com/BruksfildServices01/booking-flow/internal/middleware"
	"github.com/BruksfildServices01/booking-flow/internal/routes"
)

func main() {

	cfg := config.Load()
	log := logger.New(cfg.IsProduction())
	defer func() { _ = log.Sync() }()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Env,
			TracesSampleRate: 0.2,
		}); err != nil {
			log.Warn("sentry initialization failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db := dbpkg.NewDB(cfg, log)

	redisClient, err := session.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	storage := session.NewRedisStorage(redisClient, cfg.SessionTTL)

	auditDispatcher := audit.NewDispatcher(audit.New(db), log)
	defer auditDispatcher.Close()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		middleware.RecoveryMiddleware(log),
		middleware.SentryMiddleware(),
		middleware.LoggerMiddleware(log),
		middleware.MetricsMiddleware(),
		middleware.CORSMiddleware(cfg.CORSOrigins),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	routes.RegisterRoutes(r, db, storage, auditDispatcher, cfg, log)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: r,
	}

	go func() {
		log.Info("server running", zap.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}
}
