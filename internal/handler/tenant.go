package handler

import (
	"net/http"

	"github.com/xela07ax/dentops-gate-prototype/internal/domain"
	"github.com/xela07ax/dentops-gate-prototype/internal/infra/auth"
)

// resolveClinicID — каскад определения клиники-арендатора:
// явный параметр -> cookie clinicId -> cookie selectedClinicId.
// Куки пришли из общего фронта: старый UI хранит выбор клиники по-разному.
func resolveClinicID(r *http.Request, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if c, err := r.Cookie("clinicId"); err == nil && c.Value != "" {
		return c.Value
	}
	if c, err := r.Cookie("selectedClinicId"); err == nil && c.Value != "" {
		return c.Value
	}
	return ""
}

// guardContext собирает контекст проверки из запроса и claims токена.
func guardContext(r *http.Request, clinicID, serviceID string) domain.GuardContext {
	g := domain.GuardContext{
		ClinicID:  resolveClinicID(r, clinicID),
		ServiceID: serviceID,
	}
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		g.WorkspaceID = claims.WorkspaceID
	}
	return g
}
