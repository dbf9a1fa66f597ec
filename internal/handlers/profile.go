package handlers

import (
	"encoding/json"
	"net/http"

	"twinflame-backend/internal/middleware"
	"twinflame-backend/internal/models"
	"twinflame-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// ProfileHandler handles profile endpoints.
type ProfileHandler struct {
	users *services.UserService
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(users *services.UserService) *ProfileHandler {
	return &ProfileHandler{users: users}
}

type profileResponse struct {
	Name            string `json:"name"`
	Gender          string `json:"gender"`
	Age             *int   `json:"age"`
	PhotoURL        string `json:"photoURL"`
	ProfileComplete bool   `json:"profileComplete"`
	Email           string `json:"email"`
}

func toProfileResponse(user *models.User) profileResponse {
	return profileResponse{
		Name:            user.Name,
		Gender:          user.Gender,
		Age:             user.Age,
		PhotoURL:        user.PhotoURL,
		ProfileComplete: user.ProfileComplete,
		Email:           user.Email,
	}
}

// Get handles GET /api/profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := userFromRequest(r.Context(), h.users)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toProfileResponse(user))
}

// Update handles PUT /api/profile, creating the user when missing.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity := middleware.IdentityFromContext(ctx)
	if identity == nil {
		respondError(w, models.NewUnauthenticated("No token provided"))
		return
	}

	var update services.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondError(w, models.NewValidation("Invalid request body"))
		return
	}

	user, err := h.users.UpdateProfile(ctx, identity, update)
	if err != nil {
		log.Error().Err(err).Str("uid", identity.Subject).Msg("Failed to update profile")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Profile updated successfully",
		"user":    toProfileResponse(user),
	})
}

// UpdatePushToken handles PUT /api/profile/push-token.
func (h *ProfileHandler) UpdatePushToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity := middleware.IdentityFromContext(ctx)
	if identity == nil {
		respondError(w, models.NewUnauthenticated("No token provided"))
		return
	}

	var req struct {
		PushToken *string `json:"pushToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, models.NewValidation("Invalid request body"))
		return
	}

	if err := h.users.UpdatePushToken(ctx, identity.Subject, req.PushToken); err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Push token updated")
}
