package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"twinflame-backend/internal/middleware"
	"twinflame-backend/internal/models"
	"twinflame-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

func newPagination(total, page, limit int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{Total: total, Page: page, Limit: limit, TotalPages: totalPages}
}

func respondJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// respondError maps an application error to its HTTP status; anything else
// becomes a 500 with a generic body.
func respondError(w http.ResponseWriter, err error) {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		respondJSON(w, appErr.Status, ErrorResponse{Message: appErr.Message, Code: appErr.Code})
		return
	}
	log.Error().Err(err).Msg("Unhandled error")
	respondJSON(w, http.StatusInternalServerError, ErrorResponse{Message: "Server error", Code: "INTERNAL"})
}

func respondMessage(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, map[string]string{"message": message})
}

// userFromRequest resolves the acting application user from the verified
// identity in the request context.
func userFromRequest(ctx context.Context, users *services.UserService) (*models.User, error) {
	identity := middleware.IdentityFromContext(ctx)
	if identity == nil {
		return nil, models.NewUnauthenticated("No token provided")
	}
	return users.GetByUID(ctx, identity.Subject)
}

// parsePageQuery reads page and limit query parameters with defaults.
func parsePageQuery(r *http.Request, defaultLimit int) (int, int) {
	page := 1
	limit := defaultLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	return page, limit
}

// parseDate accepts RFC 3339 timestamps or plain dates.
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t
	}
	return nil
}

// allFilter treats "all" and "" as no filter.
func allFilter(s string) string {
	if s == "all" {
		return ""
	}
	return s
}
