package domain

import (
	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims — полезная нагрузка RS256 токена, выписанного внешним
// auth-коллаборатором. Гейт токены только проверяет, никогда не выписывает.
type CustomClaims struct {
	UserID      string          `json:"user_id"`
	WorkspaceID string          `json:"workspace_id,omitempty"`
	Clinics     map[string]bool `json:"clinics,omitempty"` // Клиники, доступные пользователю
	Scopes      map[string]bool `json:"scopes,omitempty"`  // "gate.check": true и т.п.
	jwt.RegisteredClaims
}
