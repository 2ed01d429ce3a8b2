package domain

// Status — трехзначный результат проверки требования.
// Unknown означает "не смогли проверить" (сеть, таймаут, битый JSON).
// Для самого гейта Unknown равносилен Unsatisfied (fail-closed, Zero Trust),
// но прогресс онбординга отдает его отдельно, чтобы UI мог предложить повтор.
type Status string

const (
	StatusSatisfied   Status = "satisfied"
	StatusUnsatisfied Status = "unsatisfied"
	StatusUnknown     Status = "unknown"
)

// Satisfied — единственная ветка, открывающая действие.
func (s Status) Satisfied() bool { return s == StatusSatisfied }

// Remediation — типизированный запрос ремедиации, который гейт возвращает
// вызывающему вместо глобального диспатча событий. Событие дублируется
// в шину (namespaced + legacy имя) для старых слушателей UI.
type Remediation struct {
	Requirement RequirementID `json:"requirement"`
	Event       string        `json:"event"`        // например "onboarding:open-supplies-importer"
	LegacyEvent string        `json:"legacy_event"` // например "open-supplies-importer"
	ClinicID    string        `json:"clinic_id"`
	ServiceID   string        `json:"service_id,omitempty"`
}

// GateDecision — итог EnsureReady. Либо allowed, либо явный список unmet.
// Исключений наружу нет: сбой проверки = блокировка (fail-closed).
type GateDecision struct {
	Action  ActionID        `json:"action"`
	Allowed bool            `json:"allowed"`
	Missing []RequirementID `json:"missing"` // В топологическом порядке: чини сверху вниз

	// Remediation != nil, если гейт поднял ровно один мастер/импортер
	Remediation *Remediation `json:"remediation,omitempty"`

	// Эхо политики действия для UI
	SnapshotRequired           bool           `json:"snapshot_required"`
	AllowClinicalWithoutTariff bool           `json:"allow_clinical_without_tariff"`
	Defaults                   map[string]any `json:"defaults,omitempty"`
}

// NodeStatus — результат одного узла для статусных/прогрессных ручек.
type NodeStatus struct {
	ID     RequirementID `json:"id"`
	Level  int           `json:"level"`
	Status Status        `json:"status"`
}

// PhaseProgress — агрегат по фазе онбординга (финансовая база / каталог).
type PhaseProgress struct {
	Name      string       `json:"name"`
	Nodes     []NodeStatus `json:"nodes"`
	Satisfied int          `json:"satisfied"`
	Total     int          `json:"total"`
	Complete  bool         `json:"complete"`
}

// OnboardingProgress — сводка готовности клиники по всем узлам графа.
type OnboardingProgress struct {
	ClinicID string          `json:"clinic_id"`
	Phases   []PhaseProgress `json:"phases"`
	Percent  int             `json:"percent"`
}
