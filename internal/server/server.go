package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/xela07ax/dentops-gate-prototype/internal/engine"
	"github.com/xela07ax/dentops-gate-prototype/internal/handler"
	"github.com/xela07ax/dentops-gate-prototype/internal/infra"
	"github.com/xela07ax/dentops-gate-prototype/internal/infra/auth"
)

// GateServer — HTTP-периметр гейта: три читающие ручки плюс observability.
type GateServer struct {
	router *chi.Mux
	logger *zap.Logger
	cfg    *infra.Config

	// Проверка RS256 токенов; nil — периметр открыт (dev-режим)
	authValidator auth.TokenValidator

	guardHandler *handler.GuardHandler
	metricsReg   *prometheus.Registry
}

func NewGateServer(
	cfg *infra.Config,
	logger *zap.Logger,
	validator auth.TokenValidator,
	guardH *handler.GuardHandler,
	reg *prometheus.Registry,
) *GateServer {
	s := &GateServer{
		router:        chi.NewRouter(),
		logger:        logger.Named("gate-api"),
		cfg:           cfg,
		authValidator: validator,
		guardHandler:  guardH,
		metricsReg:    reg,
	}

	s.routes()
	return s
}

func (s *GateServer) routes() {
	r := s.router

	// --- 1. Глобальные инфраструктурные Middleware (для всех) ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(engine.TracingMiddleware)

	// --- 2. ПУБЛИЧНЫЕ РОУТЫ ---
	r.Group(func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		if s.metricsReg != nil {
			r.Handle("/metrics", promhttp.HandlerFor(s.metricsReg, promhttp.HandlerOpts{}))
		}
	})

	// --- 3. ЗАЩИЩЕННЫЙ ПЕРИМЕТР ---
	r.Group(func(r chi.Router) {
		if s.authValidator != nil {
			r.Use(auth.NewMiddleware(s.authValidator, s.logger))
		}

		// Главная ручка: проверка готовности перед бизнес-действием
		r.Post("/v1/guard/{action}/check", s.guardHandler.Check)

		// Статус узлов без side effects (для отрисовки чеклиста)
		r.Get("/v1/requirements/status", s.guardHandler.Status)

		// Прогресс мастера онбординга (шаги 3-4)
		r.Get("/v1/onboarding/progress", s.guardHandler.Progress)
	})
}

// ServeHTTP позволяет использовать GateServer как стандартный http.Handler
func (s *GateServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
