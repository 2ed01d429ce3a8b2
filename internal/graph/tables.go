package graph

import "github.com/xela07ax/dentops-gate-prototype/internal/domain"

// Статические таблицы узлов и действий. Это конфигурация, а не данные:
// загружается один раз, в рантайме только читается.
//
// Уровни информационные. Авторитетный порядок задает DependsOn:
//
//	depreciation ─┐
//	fixed_costs  ─┴→ cost_per_min ─┬→ break_even
//	supplies ──→ service_recipe ───┴→ tariffs
var nodes = map[domain.RequirementID]domain.RequirementNode{
	domain.ReqDepreciation: {ID: domain.ReqDepreciation, Level: 1},
	domain.ReqFixedCosts:   {ID: domain.ReqFixedCosts, Level: 1},
	domain.ReqCostPerMin: {
		ID:        domain.ReqCostPerMin,
		Level:     2,
		DependsOn: []domain.RequirementID{domain.ReqDepreciation, domain.ReqFixedCosts},
	},
	domain.ReqBreakEven: {
		ID:        domain.ReqBreakEven,
		Level:     3,
		DependsOn: []domain.RequirementID{domain.ReqCostPerMin},
	},
	domain.ReqSupplies: {ID: domain.ReqSupplies, Level: 1, HasAutofix: true},
	domain.ReqServiceRecipe: {
		ID:         domain.ReqServiceRecipe,
		Level:      2,
		DependsOn:  []domain.RequirementID{domain.ReqSupplies},
		HasAutofix: true,
	},
	domain.ReqTariffs: {
		ID:        domain.ReqTariffs,
		Level:     3,
		DependsOn: []domain.RequirementID{domain.ReqCostPerMin, domain.ReqServiceRecipe},
	},
}

var actions = map[domain.ActionID]domain.ActionDefinition{
	domain.ActionCreateService: {
		ID: domain.ActionCreateService,
		MinRequirements: []domain.RequirementID{
			domain.ReqDepreciation, domain.ReqFixedCosts, domain.ReqCostPerMin,
		},
		SnapshotRequired: false,
		Defaults:         map[string]any{"duration_minutes": 30},
	},
	domain.ActionCreateTariff: {
		ID: domain.ActionCreateTariff,
		MinRequirements: []domain.RequirementID{
			domain.ReqCostPerMin, domain.ReqSupplies, domain.ReqServiceRecipe,
		},
		SnapshotRequired: true,
	},
	domain.ActionCreateTreatment: {
		ID: domain.ActionCreateTreatment,
		MinRequirements: []domain.RequirementID{
			domain.ReqCostPerMin, domain.ReqSupplies, domain.ReqServiceRecipe, domain.ReqTariffs,
		},
		SnapshotRequired:           true,
		AllowClinicalWithoutTariff: true,
	},
}

// FinancialPhase и CatalogPhase — фазы онбординга (шаги 3 и 4 мастера настройки).
var (
	FinancialPhase = []domain.RequirementID{
		domain.ReqDepreciation, domain.ReqFixedCosts, domain.ReqCostPerMin,
	}
	CatalogPhase = []domain.RequirementID{
		domain.ReqSupplies, domain.ReqServiceRecipe, domain.ReqTariffs,
	}
)
