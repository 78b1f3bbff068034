package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/wingit/backend/internal/auth"
	"github.com/anonto42/wingit/backend/internal/handlers"
	"github.com/anonto42/wingit/backend/internal/notifier"
	"github.com/anonto42/wingit/backend/internal/realtime"
	"github.com/anonto42/wingit/backend/internal/repositories"
	"github.com/anonto42/wingit/backend/internal/router"
	"github.com/anonto42/wingit/backend/internal/scheduler"
	"github.com/anonto42/wingit/backend/pkg/config"
	"github.com/anonto42/wingit/backend/pkg/firebase"
	"github.com/anonto42/wingit/backend/pkg/logger"
	"github.com/anonto42/wingit/backend/pkg/metrics"
	"github.com/anonto42/wingit/backend/pkg/storage"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(cfg, log)
	if err != nil {
		return err
	}
	defer db.CloseDB()

	if err := repositories.Migrate(db.SQL); err != nil {
		return err
	}
	log.Info("database migrations completed")

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	var messages repositories.MessageRepository
	if db.Mongo != nil {
		mongoMessages := repositories.NewMongoMessageRepository(db.Mongo.Database(cfg.Database.MongoDatabase), db.SQL)
		if err := mongoMessages.EnsureIndexes(ctx); err != nil {
			return err
		}
		messages = mongoMessages
		log.Info("chat messages stored in MongoDB", zap.String("database", cfg.Database.MongoDatabase))
	}
	repos := handlers.NewRepositories(db.SQL, messages)

	jobs := scheduler.New(log)

	var blacklist auth.Blacklist
	if db.Redis != nil {
		blacklist = auth.NewRedisBlacklist(db.Redis)
	} else {
		memory := auth.NewMemoryBlacklist()
		if err := jobs.Add("blacklist-purge", scheduler.BlacklistPurgeSpec, scheduler.PurgeBlacklist(memory, log)); err != nil {
			return err
		}
		blacklist = memory
	}
	tokens := auth.NewTokenService(cfg.JWT.Secret, cfg.JWT.Expiration, cfg.JWT.Issuer, blacklist)

	// Firebase login is optional
	var verifier firebase.TokenVerifier
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, log)
	switch {
	case err == nil:
		verifier = firebaseApp.AuthClient
	case errors.Is(err, firebase.ErrNotConfigured):
		log.Warn("firebase login disabled", zap.Error(err))
	default:
		return err
	}

	hub := realtime.NewHub(realtime.Config{AllowedOrigins: cfg.AllowedOrigins()}, log)
	defer hub.Close()
	n := notifier.New(repos.Notifications, repos.Users, hub, log)

	if cfg.NotificationRetention > 0 {
		if err := jobs.Add("notification-retention", scheduler.NotificationRetentionSpec,
			scheduler.PruneNotifications(repos.Notifications, cfg.NotificationRetention, log)); err != nil {
			return err
		}
	}
	jobs.Start()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	router.SetupMiddleware(e, cfg, log)
	router.SetupRoutes(e, router.Deps{
		Config:   cfg,
		Log:      log,
		DB:       db,
		Repos:    repos,
		Tokens:   tokens,
		Firebase: verifier,
		Hub:      hub,
		Notifier: n,
		Storage:  store,
	})

	metricsServer := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           metrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info("metrics listening", zap.String("addr", metricsServer.Addr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		log.Info("server listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		log.Error("listener failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	jobs.Stop(shutdownCtx)
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", zap.Error(err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error("metrics shutdown failed", zap.Error(err))
	}
	log.Info("server stopped")
	return nil
}
