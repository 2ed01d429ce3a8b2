package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xela07ax/dentops-gate-prototype/internal/domain"
	"github.com/xela07ax/dentops-gate-prototype/internal/engine"
	"github.com/xela07ax/dentops-gate-prototype/internal/graph"
)

// GateService — что HTTP-слою нужно от ядра гейта.
type GateService interface {
	EnsureReady(ctx context.Context, actionID domain.ActionID, g domain.GuardContext) (*domain.GateDecision, error)
	Inspect(ctx context.Context, actionID domain.ActionID, g domain.GuardContext) (*engine.EvalResult, error)
	Progress(ctx context.Context, g domain.GuardContext) (*domain.OnboardingProgress, error)
}

type GuardHandler struct {
	gate   GateService
	logger *zap.Logger
}

func NewGuardHandler(gate GateService, logger *zap.Logger) *GuardHandler {
	return &GuardHandler{gate: gate, logger: logger.Named("handler")}
}

type checkRequest struct {
	ClinicID  string `json:"clinic_id"`
	ServiceID string `json:"service_id"`
}

// Check — главная ручка гейта.
// POST /v1/guard/{action}/check
// Тело опционально: клиника может приехать и в cookie.
func (h *GuardHandler) Check(w http.ResponseWriter, r *http.Request) {
	actionID := domain.ActionID(chi.URLParam(r, "action"))

	var req checkRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	g := guardContext(r, req.ClinicID, req.ServiceID)
	if g.ClinicID == "" {
		http.Error(w, "clinic_id is required (body, query or cookie)", http.StatusBadRequest)
		return
	}

	decision, err := h.gate.EnsureReady(r.Context(), actionID, g)
	if err != nil {
		h.writeGateError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, decision)
}

// Status — сухая проверка без ремедиаций и телеметрии.
// GET /v1/requirements/status?action=create_tariff&clinicId=...&serviceId=...
func (h *GuardHandler) Status(w http.ResponseWriter, r *http.Request) {
	actionID := domain.ActionID(r.URL.Query().Get("action"))
	if actionID == "" {
		http.Error(w, "action query param is required", http.StatusBadRequest)
		return
	}

	g := guardContext(r, r.URL.Query().Get("clinicId"), r.URL.Query().Get("serviceId"))
	if g.ClinicID == "" {
		http.Error(w, "clinicId is required (query or cookie)", http.StatusBadRequest)
		return
	}

	res, err := h.gate.Inspect(r.Context(), actionID, g)
	if err != nil {
		h.writeGateError(w, err)
		return
	}

	nodes := make([]domain.NodeStatus, 0, len(res.Ordered))
	for _, id := range res.Ordered {
		node, nerr := graph.GetNode(id)
		if nerr != nil {
			h.writeGateError(w, nerr)
			return
		}
		nodes = append(nodes, domain.NodeStatus{ID: id, Level: node.Level, Status: res.Statuses[id]})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"action":    actionID,
		"clinic_id": g.ClinicID,
		"ready":     res.AllSatisfied(),
		"nodes":     nodes,
		"missing":   res.Missing,
	})
}

// Progress — сводка онбординга для мастера настройки.
// GET /v1/onboarding/progress?clinicId=...
func (h *GuardHandler) Progress(w http.ResponseWriter, r *http.Request) {
	g := guardContext(r, r.URL.Query().Get("clinicId"), "")
	if g.ClinicID == "" {
		http.Error(w, "clinicId is required (query or cookie)", http.StatusBadRequest)
		return
	}

	p, err := h.gate.Progress(r.Context(), g)
	if err != nil {
		h.writeGateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// writeGateError разводит конфигурационные ошибки (клиент прислал мусор)
// и внутренние.
func (h *GuardHandler) writeGateError(w http.ResponseWriter, err error) {
	if errors.Is(err, graph.ErrUnknownAction) || errors.Is(err, graph.ErrUnknownNode) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.logger.Error("gate check failed", zap.Error(err))
	http.Error(w, "Internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
