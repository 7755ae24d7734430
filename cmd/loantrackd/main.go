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

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"machine-loan-backend/config"
	"machine-loan-backend/internal/api"
	"machine-loan-backend/internal/auth"
	"machine-loan-backend/internal/export"
	"machine-loan-backend/internal/logger"
	"machine-loan-backend/internal/qr"
	"machine-loan-backend/internal/refresh"
	"machine-loan-backend/internal/service"
	"machine-loan-backend/internal/store"
)

func main() {
	log := logger.New()
	defer log.Sync()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatal("load configuration", zap.String("path", configPath), zap.Error(err))
		}
		log.Warn("no configuration file found, using defaults", zap.String("path", configPath))
		cfg = config.Default()
	} else {
		log.Info("configuration loaded", zap.String("path", configPath))
	}

	st, err := store.Open(cfg.Storage.DataDir, log)
	if err != nil {
		log.Fatal("open data store", zap.String("dir", cfg.Storage.DataDir), zap.Error(err))
	}
	log.Info("data store ready", zap.String("dir", cfg.Storage.DataDir))

	authSvc := auth.New(st, cfg, log)
	if err := authSvc.Bootstrap(); err != nil {
		log.Fatal("bootstrap admin account", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	qrPool := qr.NewWorkerPool(cfg.QR, log)
	qrPool.Start(ctx)

	inventory := service.NewInventory(st, cfg, qrPool, log)
	loans := service.NewLoans(st, cfg, log)
	supervisors := service.NewSupervisors(st, log)
	reports := service.NewReports(st, cfg, loans)
	exporter := export.New(cfg.Export, log)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)

	go refresh.New(cfg, reports, cacheStore, log).Run(ctx)

	handler := api.NewHandler(cfg, inventory, loans, supervisors, reports, authSvc, exporter, cacheStore, log)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: api.NewRouter(handler),
	}

	go func() {
		log.Info("http server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("shutdown signal received, stopping services")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal("http server shutdown", zap.Error(err))
	}

	log.Info("server gracefully stopped")
}
