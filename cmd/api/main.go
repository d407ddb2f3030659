package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"acs-call-console/internal/acs"
	"acs-call-console/internal/callconfig"
	"acs-call-console/internal/config"
	"acs-call-console/internal/events"
	"acs-call-console/internal/httpapi"
	"acs-call-console/internal/session"
	"acs-call-console/pkg/logger"
	"acs-call-console/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	repo, closeRepo, err := openConfigRepo(rootCtx, cfg)
	if err != nil {
		log.Error("config store init failed", "driver", cfg.Store.Driver, "err", err)
		os.Exit(1)
	}
	defer closeRepo()

	hub := events.NewHub(log)
	defer hub.Close()

	reflector := events.NewReflector(hub, log)
	defer reflector.Close()

	sess := session.New(acs.NewSimulatedClient(), reflector, log)
	defer func() {
		teardownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		sess.Close(teardownCtx)
	}()

	h := httpapi.Handlers{
		Config:  callconfig.NewService(repo),
		Session: sess,
		Hub:     hub,
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))
	registerRoutes(r, h, hub)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env, "store", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}

// openConfigRepo builds the configuration repository selected by
// STORE_DRIVER and returns its cleanup function.
func openConfigRepo(ctx context.Context, cfg config.Config) (callconfig.Repository, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		db, err := utils.OpenPostgres(ctx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
		if err != nil {
			return nil, nil, err
		}
		repo := callconfig.NewPostgresRepo(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return repo, func() { _ = db.Close() }, nil

	case config.StoreDriverRedis:
		rdb, err := utils.OpenRedis(ctx, utils.RedisConfig{Addr: cfg.RedisAddr()})
		if err != nil {
			return nil, nil, err
		}
		return callconfig.NewRedisRepo(rdb), func() { _ = rdb.Close() }, nil

	default:
		return callconfig.NewMemoryRepo(), func() {}, nil
	}
}
