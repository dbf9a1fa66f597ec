package handlers

import (
	"encoding/json"
	"net/http"

	"twinflame-backend/internal/models"
	"twinflame-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// PhotoHandler handles photo upload and record endpoints.
type PhotoHandler struct {
	media *services.MediaService
	users *services.UserService
}

// NewPhotoHandler creates a new photo handler.
func NewPhotoHandler(media *services.MediaService, users *services.UserService) *PhotoHandler {
	return &PhotoHandler{media: media, users: users}
}

// UploadURL handles POST /api/photos/upload-url.
func (h *PhotoHandler) UploadURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := userFromRequest(ctx, h.users)
	if err != nil {
		respondError(w, err)
		return
	}

	var req services.UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, models.NewValidation("Invalid request body"))
		return
	}
	if req.Filename == "" {
		respondError(w, models.NewValidation("Filename is required"))
		return
	}

	resp, err := h.media.UploadURL(ctx, user, req.Filename, req.ContentType)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate upload URL")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Create handles POST /api/photos.
func (h *PhotoHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := userFromRequest(ctx, h.users)
	if err != nil {
		respondError(w, err)
		return
	}

	var req services.CreatePhotoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, models.NewValidation("Invalid request body"))
		return
	}

	photo, err := h.media.CreatePhoto(ctx, user, req)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Photo saved successfully",
		"photo":   photo,
	})
}

// List handles GET /api/photos.
func (h *PhotoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := userFromRequest(ctx, h.users)
	if err != nil {
		respondError(w, err)
		return
	}

	page, limit := parsePageQuery(r, 20)
	q := r.URL.Query()

	photos, total, err := h.media.ListPhotos(ctx, user, allFilter(q.Get("category")), allFilter(q.Get("type")), page, limit)
	if err != nil {
		respondError(w, err)
		return
	}
	if photos == nil {
		photos = []*models.Photo{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"photos":     photos,
		"pagination": newPagination(total, page, limit),
	})
}

// Delete handles DELETE /api/photos/{id}.
func (h *PhotoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := userFromRequest(ctx, h.users)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.media.DeletePhoto(ctx, user, chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Photo deleted successfully")
}
