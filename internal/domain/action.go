package domain

// ActionID — бизнес-операция, которую шлюз ворот разрешает или блокирует.
type ActionID string

const (
	ActionCreateService   ActionID = "create_service"
	ActionCreateTariff    ActionID = "create_tariff"
	ActionCreateTreatment ActionID = "create_treatment"
)

// ActionDefinition — статическое определение операции.
// MinRequirements — минимальный набор узлов, которые должны быть выполнены.
// Остальные поля — политика для вызывающего UI, сам evaluator их не читает.
type ActionDefinition struct {
	ID              ActionID        `json:"id"`
	MinRequirements []RequirementID `json:"min_requirements"`

	SnapshotRequired           bool           `json:"snapshot_required"`
	AllowClinicalWithoutTariff bool           `json:"allow_clinical_without_tariff"`
	Defaults                   map[string]any `json:"defaults,omitempty"`
}
