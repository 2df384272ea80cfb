package handler

import (
	"net/http"

	"github.com/sitebook/sitebook-api/internal/auth"
	"github.com/sitebook/sitebook-api/internal/domain"
)

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// Me godoc
// @Summary Get current caller
// @Description Returns the authenticated caller with roles and effective permissions
// @Tags Auth
// @Produce json
// @Success 200 {object} domain.AuthUserDTO
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	// Authenticate always runs before this route
	userCtx := auth.MustFromContext(r.Context())

	permissions := make([]string, 0, len(domain.AllPermissions()))
	for _, p := range userCtx.Permissions() {
		permissions = append(permissions, string(p))
	}

	respondJSON(w, http.StatusOK, domain.AuthUserDTO{
		Subject:     userCtx.Subject,
		Name:        userCtx.DisplayName,
		Email:       userCtx.Email,
		Roles:       userCtx.RolesAsStrings(),
		Permissions: permissions,
		Method:      userCtx.Method,
	})
}
