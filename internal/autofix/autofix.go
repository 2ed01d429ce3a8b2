package autofix

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xela07ax/dentops-gate-prototype/internal/domain"
)

// Имена событий ремедиации. На каждый автофикс эмитятся два имени:
// namespaced и legacy — обратная совместимость со старыми слушателями UI.
const (
	EventOpenSuppliesImporter       = "onboarding:open-supplies-importer"
	EventOpenSuppliesImporterLegacy = "open-supplies-importer"
	EventOpenRecipeWizard           = "onboarding:open-recipe-wizard"
	EventOpenRecipeWizardLegacy     = "open-recipe-wizard"
)

// Set — набор best-effort ремедиаций, по одной на исправимый узел.
// Автофикс никогда не выполняет запись сам: он только поднимает
// remediation UI (мастер импорта, визард рецептов) и всегда отвечает
// "требование напрямую не закрыто".
type Set struct {
	bus      Publisher
	throttle *Throttle
	logger   *zap.Logger
}

func NewSet(bus Publisher, throttleWindow time.Duration, logger *zap.Logger) *Set {
	return &Set{
		bus:      bus,
		throttle: NewThrottle(throttleWindow),
		logger:   logger.Named("autofix"),
	}
}

// CanFix: есть ли у узла ремедиация вообще.
func (s *Set) CanFix(id domain.RequirementID) bool {
	_, _, ok := eventNames(id)
	return ok
}

func eventNames(id domain.RequirementID) (event, legacy string, ok bool) {
	switch id {
	case domain.ReqSupplies:
		return EventOpenSuppliesImporter, EventOpenSuppliesImporterLegacy, true
	case domain.ReqServiceRecipe:
		return EventOpenRecipeWizard, EventOpenRecipeWizardLegacy, true
	default:
		return "", "", false
	}
}

// Fix пытается поднять remediation UI для одного узла. Возвращает типизированный
// Remediation для ответа гейта; nil — если у узла нет автофикса или эмиссия
// подавлена троттлом. Сбой публикации глотается: ремедиация best-effort,
// блокировать решение гейта из-за недоступной шины нельзя.
func (s *Set) Fix(ctx context.Context, id domain.RequirementID, g domain.GuardContext) *domain.Remediation {
	event, legacy, ok := eventNames(id)
	if !ok {
		return nil
	}

	key := event + "|" + g.ClinicID + "|" + g.ServiceID
	if !s.throttle.Allow(key) {
		s.logger.Debug("remediation suppressed by throttle",
			zap.String("event", event), zap.String("clinic_id", g.ClinicID))
		return nil
	}

	payload := EventPayload{ClinicID: g.ClinicID, ServiceID: g.ServiceID}
	for _, name := range []string{event, legacy} {
		if err := s.bus.Publish(ctx, name, payload); err != nil {
			s.logger.Warn("remediation publish failed",
				zap.String("event", name), zap.Error(err))
		}
	}

	return &domain.Remediation{
		Requirement: id,
		Event:       event,
		LegacyEvent: legacy,
		ClinicID:    g.ClinicID,
		ServiceID:   g.ServiceID,
	}
}
