package clinicapi

import "encoding/json"

// Контракты read-only ручек CRUD-коллабораторов. Все суммы — в центах.

// envelope — стандартная обертка ответов коллабораторов: {"data": ...}
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// AssetsSummary — GET /assets/summary: амортизация посчитана на стороне сервера.
type AssetsSummary struct {
	MonthlyDepreciationCents int64 `json:"monthly_depreciation_cents"`
	AssetCount               int   `json:"asset_count"`
	TotalInvestmentCents     int64 `json:"total_investment_cents"`
}

// FixedCost — строка ручных фиксированных затрат (без амортизации).
type FixedCost struct {
	AmountCents int64 `json:"amount_cents"`
}

// TimeSettings — GET /settings/time: рабочее время клиники.
// RealPct может прийти и как доля (0.8), и как процент (80) —
// нормализация на стороне калькулятора.
type TimeSettings struct {
	WorkDays            float64 `json:"work_days"`
	HoursPerDay         float64 `json:"hours_per_day"`
	RealPct             float64 `json:"real_pct"`
	FixedPerMinuteCents int64   `json:"fixed_per_minute_cents,omitempty"`
}

// Equilibrium — GET /equilibrium: точка безубыточности.
type Equilibrium struct {
	BreakEvenRevenueCents int64 `json:"break_even_revenue_cents"`
}

// Supply — строка складского расходника. Состав строки гейту не важен,
// важен сам факт наличия.
type Supply struct {
	ID string `json:"id"`
}

// ServiceSupply — строка рецепта (связка услуга-расходник).
type ServiceSupply struct {
	SupplyID string  `json:"supply_id"`
	Quantity float64 `json:"quantity,omitempty"`
}

// Service — GET /services: услуга с опциональным рецептом.
// Этот эндпоинт отдает голый массив без envelope.
type Service struct {
	ID                string          `json:"id"`
	ServiceSupplies   []ServiceSupply `json:"service_supplies,omitempty"`
	VariableCostCents int64           `json:"variable_cost_cents,omitempty"`
}

// ServiceCost — GET /services/{id}/cost: итоговая себестоимость услуги.
type ServiceCost struct {
	TotalCostCents int64 `json:"total_cost_cents"`
}
