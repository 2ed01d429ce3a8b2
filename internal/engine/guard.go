package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xela07ax/dentops-gate-prototype/internal/domain"
	"github.com/xela07ax/dentops-gate-prototype/internal/graph"
	"github.com/xela07ax/dentops-gate-prototype/internal/telemetry"
)

// DecisionPublisher транслирует итоговые решения для живых дашбордов.
type DecisionPublisher interface {
	PublishDecision(ctx context.Context, decision any) error
}

// Guard — точка принятия решения. Один вызов EnsureReady на каждую попытку
// бизнес-действия: прямо перед мутацией, после валидации формы.
//
// Протокол:
//  1. Разворачиваем minRequirements действия в топологический порядок.
//  2. Прогоняем валидаторы, собираем ПОЛНЫЙ missing-набор.
//  3. Фиксируем guard.open с missing-набором (пустым в том числе): аналитике
//     нужны ВСЕ проверки, не только заблокированные.
//  4. Все выполнено — allowed, выходим.
//  5. Иначе поднимаем не более одной ремедиации. Повторная проверка:
//     ремедиация могла закрыть узел (например, импортер уже досыпал склад).
//     Прошла — unblocked и allowed.
//  6. Не прошла — blocked с missing-набором. Исключений наружу нет,
//     кроме конфигурационных (неизвестное действие/узел).
type Guard struct {
	eval      *Evaluator
	sink      telemetry.Sink
	broadcast DecisionPublisher // nil — трансляция выключена
	mx        *Metrics
	logger    *zap.Logger
}

func NewGuard(eval *Evaluator, sink telemetry.Sink, broadcast DecisionPublisher, mx *Metrics, logger *zap.Logger) *Guard {
	return &Guard{eval: eval, sink: sink, broadcast: broadcast, mx: mx, logger: logger.Named("guard")}
}

func (gd *Guard) EnsureReady(ctx context.Context, actionID domain.ActionID, g domain.GuardContext) (*domain.GateDecision, error) {
	start := time.Now()
	gd.mx.ChecksTotal.WithLabelValues(string(actionID)).Inc()

	action, err := graph.GetAction(actionID)
	if err != nil {
		return nil, err
	}

	decision := &domain.GateDecision{
		Action:                     action.ID,
		SnapshotRequired:           action.SnapshotRequired,
		AllowClinicalWithoutTariff: action.AllowClinicalWithoutTariff,
		Defaults:                   action.Defaults,
	}

	result := "blocked"
	defer func() {
		gd.mx.CheckDuration.WithLabelValues(string(actionID), result).Observe(time.Since(start).Seconds())
	}()

	res, err := gd.eval.Evaluate(ctx, g, action.MinRequirements)
	if err != nil {
		return nil, err
	}

	// Каждая проверка оставляет след, разрешенная тоже (missing тогда пустой)
	gd.record(ctx, telemetry.TypeGuardOpen, action.ID, g, res.MissingStrings(), start)

	if res.AllSatisfied() {
		decision.Allowed = true
		result = "allowed"
		gd.publish(ctx, decision)
		return decision, nil
	}

	gd.logger.Info("gate open",
		zap.String("action", string(action.ID)),
		zap.String("clinic_id", g.ClinicID),
		zap.Strings("missing", res.MissingStrings()),
	)

	rem := gd.eval.TryAutofix(ctx, g, res.Missing)
	if rem != nil {
		decision.Remediation = rem
		gd.record(ctx, telemetry.TypeAutofixTriggered, action.ID, g,
			[]string{string(rem.Requirement)}, start)
	}

	// Повторная проверка после ремедиации. Кэш 30с делает ее почти бесплатной
	// для узлов, которые ремедиация не трогала.
	res, err = gd.eval.Evaluate(ctx, g, action.MinRequirements)
	if err != nil {
		return nil, err
	}

	if res.AllSatisfied() {
		decision.Allowed = true
		decision.Missing = nil
		result = "allowed"
		gd.record(ctx, telemetry.TypeUnblocked, action.ID, g, nil, start)
		gd.publish(ctx, decision)
		return decision, nil
	}

	decision.Missing = res.Missing
	gd.publish(ctx, decision)
	return decision, nil
}

// publish — best-effort трансляция решения в канал дашбордов.
func (gd *Guard) publish(ctx context.Context, decision *domain.GateDecision) {
	if gd.broadcast == nil {
		return
	}
	if err := gd.broadcast.PublishDecision(ctx, decision); err != nil {
		gd.logger.Warn("decision broadcast failed", zap.Error(err))
	}
}

// Inspect — сухая проверка действия: те же валидаторы, но без ремедиаций
// и без событий gate open. Используется статусной ручкой UI.
func (gd *Guard) Inspect(ctx context.Context, actionID domain.ActionID, g domain.GuardContext) (*EvalResult, error) {
	action, err := graph.GetAction(actionID)
	if err != nil {
		return nil, err
	}
	return gd.eval.Evaluate(ctx, g, action.MinRequirements)
}

// Progress — сводка готовности клиники для мастера онбординга:
// финансовая база (шаг 3) и каталог (шаг 4), с процентом по всем узлам.
func (gd *Guard) Progress(ctx context.Context, g domain.GuardContext) (*domain.OnboardingProgress, error) {
	phases := []struct {
		name string
		ids  []domain.RequirementID
	}{
		{"financial", graph.FinancialPhase},
		{"catalog", graph.CatalogPhase},
	}

	out := &domain.OnboardingProgress{ClinicID: g.ClinicID}
	var satisfied, total int

	for _, ph := range phases {
		res, err := gd.eval.Evaluate(ctx, g, ph.ids)
		if err != nil {
			return nil, err
		}

		pp := domain.PhaseProgress{Name: ph.name}
		// Отдаем только запрошенные узлы фазы, без транзитивных зависимостей
		for _, id := range ph.ids {
			node, err := graph.GetNode(id)
			if err != nil {
				return nil, err
			}
			st := res.Statuses[id]
			pp.Nodes = append(pp.Nodes, domain.NodeStatus{ID: id, Level: node.Level, Status: st})
			pp.Total++
			if st.Satisfied() {
				pp.Satisfied++
			}
		}
		pp.Complete = pp.Satisfied == pp.Total
		satisfied += pp.Satisfied
		total += pp.Total
		out.Phases = append(out.Phases, pp)
	}

	if total > 0 {
		out.Percent = satisfied * 100 / total
	}
	return out, nil
}

func (gd *Guard) record(ctx context.Context, evType string, actionID domain.ActionID, g domain.GuardContext, missing []string, start time.Time) {
	gd.sink.Record(telemetry.Event{
		ID:          uuid.New().String(),
		TraceID:     ExtractTraceID(ctx),
		Type:        evType,
		ActionID:    string(actionID),
		ClinicID:    g.ClinicID,
		WorkspaceID: g.WorkspaceID,
		ServiceID:   g.ServiceID,
		Missing:     missing,
		DurationMs:  time.Since(start).Milliseconds(),
	})
}
