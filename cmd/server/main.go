package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sunoy2004/yanc-cms-sub001/internal/config"
	"github.com/sunoy2004/yanc-cms-sub001/internal/db"
	"github.com/sunoy2004/yanc-cms-sub001/internal/handler"
	"github.com/sunoy2004/yanc-cms-sub001/internal/logger"
	"github.com/sunoy2004/yanc-cms-sub001/internal/router"
	"github.com/sunoy2004/yanc-cms-sub001/internal/service"
	"github.com/sunoy2004/yanc-cms-sub001/internal/storage"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.Setup(cfg.Env)
	if err := cfg.Validate(); err != nil {
		return err
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 初始化数据库
	if err := db.Init(db.Options{Driver: cfg.Database.Driver, Path: cfg.Database.Path, URL: cfg.Database.URL}); err != nil {
		return err
	}
	if err := db.EnsureUser(db.DB, cfg.Auth.SuperRootUserName, cfg.Auth.SuperRootPassword); err != nil {
		return err
	}

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	api := handler.NewAPI(db.DB, store, handler.Options{
		Auth:  service.AuthOptions{Secret: cfg.Auth.JWTSecret, TTL: cfg.Auth.JWTTTL, Issuer: cfg.AppName},
		Media: service.MediaOptions{MaxBytes: cfg.Storage.MaxBytes, Timeout: cfg.Storage.Timeout},
	})

	routerOpts := router.Options{Logger: log, AllowedOrigins: cfg.CORSAllowedOrigins}
	if local, ok := store.(*storage.Local); ok {
		routerOpts.UploadDir = local.Root()
		routerOpts.UploadURLPath = local.URLPath()
	}

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router.SetupRouter(api, routerOpts),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.ListenAddr, "env", cfg.Env, "storage", store.Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
