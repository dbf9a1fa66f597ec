package handlers

import (
	"net/http"

	"twinflame-backend/internal/middleware"
	"twinflame-backend/internal/models"
	"twinflame-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// AuthHandler handles identity exchange and session endpoints.
type AuthHandler struct {
	users *services.UserService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(users *services.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

// Exchange handles POST /api/auth/firebase. The verified identity is
// exchanged for the application user record, created on first use.
func (h *AuthHandler) Exchange(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity := middleware.IdentityFromContext(ctx)
	if identity == nil {
		respondError(w, models.NewUnauthenticated("No token provided"))
		return
	}

	user, err := h.users.GetOrCreate(ctx, identity)
	if err != nil {
		log.Error().Err(err).Str("uid", identity.Subject).Msg("Failed to exchange identity")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "User verified successfully",
		"user":    user,
	})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity := middleware.IdentityFromContext(ctx)
	if identity == nil {
		respondError(w, models.NewUnauthenticated("No token provided"))
		return
	}

	user, err := h.users.GetOrCreate(ctx, identity)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// Logout handles POST /api/auth/logout. Sessions live client-side; this is
// a confirmation endpoint only.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	respondMessage(w, http.StatusOK, "Logged out successfully")
}
