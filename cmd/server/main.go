package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/boopathydreams/capnpay-upi/internal/config"
	httpd "github.com/boopathydreams/capnpay-upi/internal/delivery/http"
	"github.com/boopathydreams/capnpay-upi/internal/launch"
	"github.com/boopathydreams/capnpay-upi/internal/usecase"
)

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	registry, err := launch.LoadRegistry(cfg.LaunchRegistryPath)
	if err != nil {
		logger.Fatal("failed to load launch registry", zap.Error(err))
	}

	flow := usecase.NewScanWorkflow(registry, cfg.ScanDebounce, logger)
	h := httpd.NewHandler(flow, logger)

	r := h.Routes(httpd.RouterConfig{
		Sig: httpd.SigConfig{
			Secret:        cfg.HMACSecret,
			MaxAgeSeconds: cfg.SigMaxAgeSeconds,
		},
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.Int("launch_apps", len(registry.Apps)),
			zap.Duration("scan_debounce", cfg.ScanDebounce))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
