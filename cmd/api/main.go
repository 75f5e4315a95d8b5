package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"stadtwache/internal/config"
	"stadtwache/internal/database"
	"stadtwache/internal/logger"
	"stadtwache/internal/metrics"
	"stadtwache/internal/services"
	"stadtwache/internal/util"
)

const (
	shutdownTimeout = 30 * time.Second
	readTimeout     = 15 * time.Second
	writeTimeout    = 30 * time.Second
	idleTimeout     = 60 * time.Second
	statsInterval   = 15 * time.Second

	submissionLimit  = 20
	submissionWindow = 10 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.Must(cfg.App.LogLevel, cfg.App.LogJSON).Named("api")
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	if err := validateConfig(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	log.Info("starting",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.Bool("debug", cfg.App.Debug),
		zap.String("addr", cfg.App.Host+":"+cfg.App.Port))

	db, err := database.Open(cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("closing database connections")
		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Warn("error closing database", zap.Error(err))
			}
		}
	}()

	// a nil interface, not a nil *redis.Client, disables cache and denylist
	var rdb redis.Cmdable
	if cfg.Redis.URL != "" {
		client, err := services.NewRedis(cfg.Redis.URL)
		if err != nil {
			return err
		}
		defer client.Close()
		rdb = client
		log.Info("redis enabled", zap.Duration("cache_ttl", cfg.Redis.CacheTTL))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mailer, err := services.NewMailer(ctx, &cfg.Email, log)
	if err != nil {
		return err
	}
	sms, err := services.NewSMSSender(ctx, &cfg.SMS, log)
	if err != nil {
		return err
	}

	srv := services.NewServer(services.Deps{
		DB:       db,
		Log:      log,
		Tokens:   util.NewTokenIssuer(cfg.Auth.SecretKey, cfg.Auth.TokenExpiry()),
		Cache:    services.NewCache(rdb, cfg.Redis.CacheTTL, log),
		Denylist: services.NewDenylist(rdb),
		Notifier: services.NewNotifier(mailer, sms, cfg.Email.DutyEmail, cfg.SMS.DutyPhone, log),
		Limiter:  util.NewRateLimiter(submissionLimit, submissionWindow),
		Uploads:  cfg.Uploads,
		Version:  cfg.App.Version,

		TrustedProxies: cfg.App.TrustedProxies,
	})

	api := srv.Handler()
	root := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			promhttp.Handler().ServeHTTP(w, r)
			return
		}
		api.ServeHTTP(w, r)
	})

	// Prometheus -> Security -> CORS -> Logging -> Handler
	handler := securityHeaders(cors(requestLogging(metrics.PrometheusMiddleware(root), log), cfg), cfg)

	addr := cfg.App.Host + ":" + cfg.App.Port
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
		ErrorLog:     zap.NewStdLog(log.Named("http")),
	}

	go reportDBStats(ctx, db, log)

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		log.Info("shutdown signal received, starting graceful shutdown")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("error during graceful shutdown", zap.Error(err))
		if errors.Is(err, context.DeadlineExceeded) {
			log.Warn("shutdown timeout exceeded, forcing close")
			_ = httpServer.Close()
		}
	}

	log.Info("waiting for pending notifications")
	srv.Wait()
	log.Info("server shutdown complete")
	return nil
}

func reportDBStats(ctx context.Context, db *gorm.DB, log *zap.Logger) {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats, err := database.Stats(db)
			if err != nil {
				log.Debug("database stats unavailable", zap.Error(err))
				continue
			}
			metrics.UpdateDBConnections(stats.InUse, stats.Idle)
		}
	}
}

// validateConfig rejects settings that are only acceptable in development
func validateConfig(cfg *config.Config) error {
	if cfg.App.Debug {
		return nil
	}
	if cfg.Auth.SecretKey == "your-secret-key-change-in-production" {
		return fmt.Errorf("SECRET_KEY must be changed from default value")
	}
	if len(cfg.Auth.SecretKey) < 32 {
		return fmt.Errorf("SECRET_KEY must be at least 32 characters")
	}
	return nil
}
