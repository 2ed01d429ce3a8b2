package domain

// GuardContext — значение уровня запроса. Собирается заново на каждый вызов
// ворот из идентификаторов арендатора и живет только в стеке вызова.
type GuardContext struct {
	WorkspaceID string `json:"workspace_id,omitempty"`
	ClinicID    string `json:"clinic_id"` // Обязательный: граница изоляции данных
	ServiceID   string `json:"service_id,omitempty"`
}

// WithService возвращает копию контекста с переопределенной услугой
// (для сервис-специфичных проверок вроде "есть ли рецепт у ЭТОЙ услуги").
func (g GuardContext) WithService(serviceID string) GuardContext {
	g.ServiceID = serviceID
	return g
}
