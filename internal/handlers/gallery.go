package handlers

import (
	"net/http"

	"twinflame-backend/internal/models"
	"twinflame-backend/internal/services"
)

// GalleryHandler serves the unified media feed.
type GalleryHandler struct {
	media *services.MediaService
	users *services.UserService
}

// NewGalleryHandler creates a new gallery handler.
func NewGalleryHandler(media *services.MediaService, users *services.UserService) *GalleryHandler {
	return &GalleryHandler{media: media, users: users}
}

// Media handles GET /api/gallery/media. The feed merges task submissions and
// uploaded photos for the couple, newest first.
func (h *GalleryHandler) Media(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := userFromRequest(ctx, h.users)
	if err != nil {
		respondError(w, err)
		return
	}

	page, limit := parsePageQuery(r, 20)
	q := r.URL.Query()

	items, total, err := h.media.Feed(ctx, user, allFilter(q.Get("type")), allFilter(q.Get("category")), page, limit)
	if err != nil {
		respondError(w, err)
		return
	}
	if items == nil {
		items = []*models.MediaItem{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"media":      items,
		"pagination": newPagination(total, page, limit),
	})
}
