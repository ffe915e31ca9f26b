// README: Entry point; loads config, wires the fare engine and serves the HTTP API until signalled.
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

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"farecalc/internal/config"
	httptransport "farecalc/internal/http"
	"farecalc/internal/infra"
	"farecalc/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := infra.NewLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := service.NewEngine(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("engine init", zap.Error(err))
	}
	defer engine.Close()

	handler := httptransport.NewServer(httptransport.ServerDeps{
		Fare:           engine.Fare,
		Profiles:       engine.Profiles,
		History:        engine.History,
		Log:            logger,
		AppName:        cfg.App.Name,
		APIKey:         cfg.HTTP.APIKey,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		TrustedProxies: cfg.HTTP.TrustedProxies,
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       time.Minute,
	}

	go func() {
		logger.Info("starting server",
			zap.String("addr", cfg.HTTP.Addr),
			zap.String("store", cfg.Store.Backend),
			zap.String("maps", cfg.Maps.Provider),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exiting")
}
