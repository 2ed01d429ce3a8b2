package telemetry

import "time"

// Типы событий гейта, потребляемые внешним аналитическим коллаборатором.
const (
	TypeGuardOpen        = "guard.open"        // Гейт открыт, зафиксирован missing-набор
	TypeAutofixTriggered = "autofix.triggered" // Поднята ровно одна ремедиация
	TypeUnblocked        = "unblocked"         // Повторная проверка прошла, действие разрешено
)

type Event struct {
	ID      string `json:"id"`       // UUID события
	TraceID string `json:"trace_id"` // Сквозной ID запроса
	Type    string `json:"type"`     // guard.open / autofix.triggered / unblocked

	ActionID    string `json:"action_id"`
	ClinicID    string `json:"clinic_id"`
	WorkspaceID string `json:"workspace_id,omitempty"`
	ServiceID   string `json:"service_id,omitempty"`

	Missing []string `json:"missing,omitempty"` // Невыполненные узлы на момент события

	Timestamp  time.Time `json:"timestamp"`
	DurationMs int64     `json:"duration_ms"` // Время проверки
}
