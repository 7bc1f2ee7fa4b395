package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/noah-isme/school-fee-api/api/swagger"
	"github.com/noah-isme/school-fee-api/internal/handler"
	"github.com/noah-isme/school-fee-api/internal/repository"
	"github.com/noah-isme/school-fee-api/internal/router"
	"github.com/noah-isme/school-fee-api/internal/service"
	"github.com/noah-isme/school-fee-api/pkg/cache"
	"github.com/noah-isme/school-fee-api/pkg/config"
	"github.com/noah-isme/school-fee-api/pkg/database"
	"github.com/noah-isme/school-fee-api/pkg/logger"
	"github.com/noah-isme/school-fee-api/pkg/validator"
)

const (
	cacheKeyPrefix  = "school-fee:"
	shutdownTimeout = 10 * time.Second
)

// @title School Fee API
// @version 1.0.0
// @description Student roster and monthly fee records per class
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx := context.Background()

	db, err := database.Open(cfg.Database)
	if err != nil {
		logr.Fatal("failed to open fee store", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	defer db.Close()

	if err := database.EnsureSchema(ctx, db); err != nil {
		logr.Fatal("failed to prepare schema", zap.Error(err))
	}

	metrics := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, serving without cache", zap.Error(err))
		} else {
			cacheRepo := repository.NewCacheRepository(client, cacheKeyPrefix)
			defer cacheRepo.Close()
			cacheSvc = service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, true)
		}
	}

	validate, err := validator.New()
	if err != nil {
		logr.Fatal("failed to init validator", zap.Error(err))
	}

	fees := service.NewStudentFeeService(service.StudentFeeServiceParams{
		Repo:      repository.NewStudentFeeRepository(db),
		Validator: validate,
		Cache:     cacheSvc,
		Metrics:   metrics,
		CacheTTL:  cfg.Cache.TTL,
		Logger:    logr,
	})
	exports := service.NewExportService(fees, logr)

	r, err := router.New(cfg, router.Handlers{
		Students: handler.NewStudentHandler(fees),
		Fees:     handler.NewFeeHandler(fees),
		Reports:  handler.NewReportHandler(exports),
		Metrics:  handler.NewMetricsHandler(metrics, fees),
	}, metrics, logr)
	if err != nil {
		logr.Fatal("failed to build router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.String("driver", cfg.Database.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logr.Info("shutting down", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("server shutdown failed", zap.Error(err))
	}
}
