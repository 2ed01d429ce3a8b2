package domain

// RequirementID — фиксированное перечисление узлов графа требований.
// Неизвестный id — это баг конфигурации, а не состояние рантайма.
type RequirementID string

const (
	ReqDepreciation  RequirementID = "depreciation"   // Месячная амортизация активов
	ReqFixedCosts    RequirementID = "fixed_costs"    // Ручные фиксированные затраты
	ReqCostPerMin    RequirementID = "cost_per_min"   // Производная стоимость минуты (CPM)
	ReqBreakEven     RequirementID = "break_even"     // Точка безубыточности
	ReqSupplies      RequirementID = "supplies"       // Хотя бы один расходник на складе
	ReqServiceRecipe RequirementID = "service_recipe" // Рецепт услуги (связка услуга-расходники)
	ReqTariffs       RequirementID = "tariffs"        // Тарифы рассчитаны
)

// AllRequirements — порядок соответствует фазам онбординга: сначала финансовая база,
// потом каталог. Используется прогрессом и для проверки полноты таблиц.
var AllRequirements = []RequirementID{
	ReqDepreciation, ReqFixedCosts, ReqCostPerMin, ReqBreakEven,
	ReqSupplies, ReqServiceRecipe, ReqTariffs,
}

// RequirementNode — статическое определение узла графа. Таблицы загружаются
// один раз при старте и никогда не мутируют.
type RequirementNode struct {
	ID    RequirementID `json:"id"`
	Level int           `json:"level"` // Информационная подсказка; реальный порядок задает DependsOn

	// DependsOn — узлы, которые должны быть проверены (и в идеале выполнены)
	// раньше этого. Граф ациклический.
	DependsOn []RequirementID `json:"depends_on,omitempty"`

	// HasAutofix — есть ли у узла best-effort ремедиация (мастер импорта и т.п.)
	HasAutofix bool `json:"has_autofix"`
}
