package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/xela07ax/dentops-gate-prototype/internal/domain"
	"github.com/xela07ax/dentops-gate-prototype/internal/graph"
)

// ValidatorSet — что движку нужно от валидаторов (интерфейс на стороне потребителя).
type ValidatorSet interface {
	Check(ctx context.Context, id domain.RequirementID, g domain.GuardContext) domain.Status
}

// AutofixSet — что движку нужно от ремедиаций.
type AutofixSet interface {
	CanFix(id domain.RequirementID) bool
	Fix(ctx context.Context, id domain.RequirementID, g domain.GuardContext) *domain.Remediation
}

// EvalResult — развернутый итог обхода графа для набора требований.
type EvalResult struct {
	// Полный порядок обхода: зависимости раньше зависимых
	Ordered []domain.RequirementID

	// Невыполненные узлы в том же порядке (unknown тоже считается невыполненным)
	Missing []domain.RequirementID

	// Вердикт каждого узла
	Statuses map[domain.RequirementID]domain.Status
}

func (r *EvalResult) AllSatisfied() bool { return len(r.Missing) == 0 }

// MissingStrings — для логов и телеметрии.
func (r *EvalResult) MissingStrings() []string {
	out := make([]string, len(r.Missing))
	for i, id := range r.Missing {
		out[i] = string(id)
	}
	return out
}

// Evaluator обходит граф требований и собирает missing-набор.
// Сам он решений не принимает — это делает Guard поверх.
type Evaluator struct {
	validators ValidatorSet
	autofixes  AutofixSet
	metrics    *Metrics
	logger     *zap.Logger
}

func NewEvaluator(v ValidatorSet, a AutofixSet, metrics *Metrics, logger *zap.Logger) *Evaluator {
	return &Evaluator{
		validators: v,
		autofixes:  a,
		metrics:    metrics,
		logger:     logger.Named("evaluator"),
	}
}

// Evaluate разворачивает ids в топологический порядок и прогоняет валидатор
// каждого узла. Обход не прерывается на первом провале: вызывающему нужен
// ПОЛНЫЙ missing-список, чтобы UI показал весь чеклист сразу.
// Ошибка возможна только конфигурационная (неизвестный узел в ids).
func (e *Evaluator) Evaluate(ctx context.Context, g domain.GuardContext, ids []domain.RequirementID) (*EvalResult, error) {
	ordered, err := graph.TopoOrder(ids)
	if err != nil {
		return nil, err
	}

	res := &EvalResult{
		Ordered:  ordered,
		Statuses: make(map[domain.RequirementID]domain.Status, len(ordered)),
	}

	for _, id := range ordered {
		st := e.validators.Check(ctx, id, g)
		res.Statuses[id] = st
		e.metrics.ValidatorResults.WithLabelValues(string(id), string(st)).Inc()

		if !st.Satisfied() {
			res.Missing = append(res.Missing, id)
		}
	}
	return res, nil
}

// TryAutofix поднимает не более ОДНОЙ ремедиации за проверку: первый
// невыполненный узел (в топологическом порядке), у которого она есть.
// Один мастер за раз — иначе UI получит каскад всплывающих окон.
func (e *Evaluator) TryAutofix(ctx context.Context, g domain.GuardContext, missing []domain.RequirementID) *domain.Remediation {
	for _, id := range missing {
		if !e.autofixes.CanFix(id) {
			continue
		}
		rem := e.autofixes.Fix(ctx, id, g)
		if rem != nil {
			e.metrics.AutofixTotal.WithLabelValues(string(id)).Inc()
		}
		// Даже если троттл подавил эмиссию — второй узел не трогаем
		return rem
	}
	return nil
}
