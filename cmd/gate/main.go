package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xela07ax/dentops-gate-prototype/internal/autofix"
	"github.com/xela07ax/dentops-gate-prototype/internal/clinicapi"
	"github.com/xela07ax/dentops-gate-prototype/internal/engine"
	"github.com/xela07ax/dentops-gate-prototype/internal/handler"
	"github.com/xela07ax/dentops-gate-prototype/internal/infra"
	"github.com/xela07ax/dentops-gate-prototype/internal/infra/auth"
	"github.com/xela07ax/dentops-gate-prototype/internal/repository/postgres"
	"github.com/xela07ax/dentops-gate-prototype/internal/server"
	"github.com/xela07ax/dentops-gate-prototype/internal/telemetry"
	"github.com/xela07ax/dentops-gate-prototype/internal/validators"
)

func main() {
	// 1. Конфигурация и логгер
	cfg, err := infra.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := infra.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	if cfg.ClinicAPI.BaseURL == "" {
		logger.Fatal("clinic_api.base_url is required (CLINIC_API_BASE_URL)")
	}

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Метрики
	reg := prometheus.NewRegistry()
	metrics := engine.NewMetrics(reg)

	// 3. Хранилище телеметрии (Postgres) и асинхронный рекордер
	if cfg.Database.URL == "" {
		logger.Fatal("database.url is required (DATABASE_URL)")
	}
	telemetryRepo := postgres.NewTelemetryRepo(cfg.Database.URL)
	pingCtx, pingCancel := context.WithTimeout(appCtx, 5*time.Second)
	if err := telemetryRepo.Ping(pingCtx); err != nil {
		logger.Fatal("postgres unreachable", zap.Error(err))
	}
	pingCancel()

	recorder := telemetry.NewRecorder(telemetryRepo, logger, telemetry.Options{
		BufferSize:    cfg.Telemetry.BufferSize,
		BatchSize:     cfg.Telemetry.BatchSize,
		FlushInterval: cfg.Telemetry.FlushInterval,
		Gauge:         metrics,
	})
	recorder.Start()
	defer recorder.Stop()

	// 4. Redis — шина событий ремедиации для UI
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(appCtx).Err(); err != nil {
		logger.Fatal("redis unreachable", zap.Error(err))
	}

	// 5. Клиент CRUD-коллабораторов (read-only) и набор валидаторов
	apiClient := clinicapi.NewClient(clinicapi.Config{
		BaseURL:       cfg.ClinicAPI.BaseURL,
		FetchTimeout:  cfg.ClinicAPI.FetchTimeout,
		CacheTTL:      cfg.ClinicAPI.CacheTTL,
		CacheCapacity: cfg.ClinicAPI.CacheCapacity,
		RateLimit:     cfg.ClinicAPI.RateLimit,
		RateBurst:     cfg.ClinicAPI.RateBurst,
		RetryAttempts: cfg.ClinicAPI.RetryAttempts,
		CBMaxRequests: cfg.ClinicAPI.CBMaxRequests,
		CBInterval:    cfg.ClinicAPI.CBInterval,
		CBTimeout:     cfg.ClinicAPI.CBTimeout,
	}, logger, metrics)

	validatorSet := validators.NewSet(apiClient, logger)
	uiBus := autofix.NewRedisBus(rdb, logger)
	autofixSet := autofix.NewSet(uiBus, cfg.Gate.AutofixThrottle, logger)

	// 6. Ядро гейта. Шина решений та же, что и у ремедиаций
	evaluator := engine.NewEvaluator(validatorSet, autofixSet, metrics, logger)
	guard := engine.NewGuard(evaluator, recorder, uiBus, metrics, logger)

	// 7. Auth-периметр: без публичного ключа работаем открыто (dev)
	var validator auth.TokenValidator
	if len(cfg.Auth.PublicKey) > 0 {
		pubKey, err := auth.ParseRSAPublicKey(cfg.Auth.PublicKey)
		if err != nil {
			logger.Fatal("bad auth public key", zap.Error(err))
		}
		validator = auth.NewBaseValidator(pubKey)
	} else {
		logger.Warn("auth public key is not configured: API runs unprotected")
	}

	// 8. HTTP Server
	guardHandler := handler.NewGuardHandler(guard, logger)
	gateServer := server.NewGateServer(cfg, logger, validator, guardHandler, reg)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      gateServer,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("requirements gate started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	<-stop
	logger.Info("requirements gate stopping...")

	// Даем 5 секунд на завершение запросов
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	if err := rdb.Close(); err != nil {
		logger.Warn("redis close", zap.Error(err))
	}
	logger.Info("requirements gate exited properly")
}
