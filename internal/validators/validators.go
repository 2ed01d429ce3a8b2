package validators

import (
	"context"

	"go.uber.org/zap"

	"github.com/xela07ax/dentops-gate-prototype/internal/clinicapi"
	"github.com/xela07ax/dentops-gate-prototype/internal/domain"
)

// Пределы выборки: existsLimit для проверок "хотя бы одна строка",
// sumLimit для fixed-costs и services — там нужны суммы и поиск по id.
const (
	existsLimit = 1
	sumLimit    = 200
)

// Set — набор предикатов-валидаторов, по одному на узел графа.
// Контракт: Check никогда не возвращает ошибку — транспортный сбой
// деградирует в StatusUnknown, который гейт трактует как "не готово"
// (fail-closed: недоступная проверка блокирует действие, а не пропускает).
type Set struct {
	api    *clinicapi.Client
	logger *zap.Logger
}

func NewSet(api *clinicapi.Client, logger *zap.Logger) *Set {
	return &Set{api: api, logger: logger.Named("validators")}
}

// Check — статическая диспетчеризация по RequirementID. Исходный прототип
// искал валидатор по строковому ключу в exports модуля; здесь неизвестный id
// не доживает до Check — его отсекают тотальные lookup-ы графа.
func (s *Set) Check(ctx context.Context, id domain.RequirementID, g domain.GuardContext) domain.Status {
	switch id {
	case domain.ReqDepreciation:
		return s.hasMonthlyDepreciation(ctx, g)
	case domain.ReqFixedCosts:
		return s.hasFixedCosts(ctx, g)
	case domain.ReqCostPerMin:
		return s.hasCostPerMinute(ctx, g)
	case domain.ReqBreakEven:
		return s.hasBreakEven(ctx, g)
	case domain.ReqSupplies:
		return s.hasAnySupply(ctx, g)
	case domain.ReqServiceRecipe:
		return s.hasAnyServiceRecipe(ctx, g)
	case domain.ReqTariffs:
		return s.hasAnyTariff(ctx, g)
	}
	// Недостижимо при корректных таблицах графа
	s.logger.Error("validator dispatch miss", zap.String("requirement", string(id)))
	return domain.StatusUnknown
}

func boolStatus(ok bool) domain.Status {
	if ok {
		return domain.StatusSatisfied
	}
	return domain.StatusUnsatisfied
}

// unknown логирует причину и деградирует в "не смогли проверить".
func (s *Set) unknown(id domain.RequirementID, err error) domain.Status {
	s.logger.Warn("validator probe failed",
		zap.String("requirement", string(id)), zap.Error(err))
	return domain.StatusUnknown
}

// hasMonthlyDepreciation: месячная амортизация строго больше нуля.
func (s *Set) hasMonthlyDepreciation(ctx context.Context, g domain.GuardContext) domain.Status {
	sum, err := s.api.AssetsSummary(ctx, g.ClinicID)
	if err != nil {
		return s.unknown(domain.ReqDepreciation, err)
	}
	return boolStatus(sum.MonthlyDepreciationCents > 0)
}

// hasFixedCosts: сумма ручных строк фиксированных затрат строго больше нуля.
// Амортизация сюда не входит — у нее свой узел.
func (s *Set) hasFixedCosts(ctx context.Context, g domain.GuardContext) domain.Status {
	rows, err := s.api.FixedCosts(ctx, g.ClinicID, sumLimit)
	if err != nil {
		return s.unknown(domain.ReqFixedCosts, err)
	}
	return boolStatus(SumFixedCents(rows) > 0)
}

// hasCostPerMinute: производная стоимость минуты строго больше нуля.
// Если коллаборатор уже посчитал fixed_per_minute_cents — верим ему,
// иначе выводим сами: (fixedSum + depreciation) / effectiveMinutes.
func (s *Set) hasCostPerMinute(ctx context.Context, g domain.GuardContext) domain.Status {
	ts, err := s.api.TimeSettings(ctx, g.ClinicID)
	if err != nil {
		return s.unknown(domain.ReqCostPerMin, err)
	}
	if ts.FixedPerMinuteCents > 0 {
		return domain.StatusSatisfied
	}

	rows, err := s.api.FixedCosts(ctx, g.ClinicID, sumLimit)
	if err != nil {
		return s.unknown(domain.ReqCostPerMin, err)
	}
	assets, err := s.api.AssetsSummary(ctx, g.ClinicID)
	if err != nil {
		return s.unknown(domain.ReqCostPerMin, err)
	}

	totalFixed := SumFixedCents(rows) + assets.MonthlyDepreciationCents
	minutes := EffectiveMinutes(ts.WorkDays, ts.HoursPerDay, ts.RealPct)
	cpm := CostPerMinuteCents(totalFixed, minutes)
	return boolStatus(cpm > 0)
}

// hasBreakEven: точка безубыточности строго больше нуля.
func (s *Set) hasBreakEven(ctx context.Context, g domain.GuardContext) domain.Status {
	eq, err := s.api.Equilibrium(ctx, g.ClinicID)
	if err != nil {
		return s.unknown(domain.ReqBreakEven, err)
	}
	return boolStatus(eq.BreakEvenRevenueCents > 0)
}

// hasAnySupply: на складе клиники есть хотя бы одна строка.
func (s *Set) hasAnySupply(ctx context.Context, g domain.GuardContext) domain.Status {
	rows, err := s.api.Supplies(ctx, g.ClinicID, existsLimit)
	if err != nil {
		return s.unknown(domain.ReqSupplies, err)
	}
	return boolStatus(len(rows) > 0)
}

// hasAnyServiceRecipe: при заданной услуге — у НЕЕ есть хотя бы одна строка
// рецепта; иначе — у любой услуги клиники есть рецепт или положительная
// переменная себестоимость.
func (s *Set) hasAnyServiceRecipe(ctx context.Context, g domain.GuardContext) domain.Status {
	services, err := s.api.Services(ctx, g.ClinicID, sumLimit)
	if err != nil {
		return s.unknown(domain.ReqServiceRecipe, err)
	}

	if g.ServiceID != "" {
		for _, svc := range services {
			if svc.ID == g.ServiceID {
				return boolStatus(len(svc.ServiceSupplies) > 0)
			}
		}
		// Услуга не нашлась — рецепта у нее точно нет
		return domain.StatusUnsatisfied
	}

	for _, svc := range services {
		if len(svc.ServiceSupplies) > 0 || svc.VariableCostCents > 0 {
			return domain.StatusSatisfied
		}
	}
	return domain.StatusUnsatisfied
}

// hasAnyTariff — композитный узел: сперва требует CPM и рецепт. Он намеренно
// перепроверяет свои предпосылки сам, не полагаясь на порядок обхода графа —
// страховка от багов порядка вычисления (повторные чтения дешевые: кэш).
func (s *Set) hasAnyTariff(ctx context.Context, g domain.GuardContext) domain.Status {
	cpm := s.hasCostPerMinute(ctx, g)
	recipe := s.hasAnyServiceRecipe(ctx, g)
	if !cpm.Satisfied() || !recipe.Satisfied() {
		if cpm == domain.StatusUnknown || recipe == domain.StatusUnknown {
			return domain.StatusUnknown
		}
		return domain.StatusUnsatisfied
	}

	if g.ServiceID != "" {
		cost, err := s.api.ServiceCost(ctx, g.ServiceID)
		if err != nil {
			return s.unknown(domain.ReqTariffs, err)
		}
		return boolStatus(cost.TotalCostCents > 0)
	}

	services, err := s.api.Services(ctx, g.ClinicID, existsLimit)
	if err != nil {
		return s.unknown(domain.ReqTariffs, err)
	}
	return boolStatus(len(services) > 0)
}
