package handlers

import (
	"encoding/json"
	"net/http"

	"twinflame-backend/internal/metrics"
	"twinflame-backend/internal/models"
	"twinflame-backend/internal/repository"
	"twinflame-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// TruthDareHandler handles truth-or-dare prompt and turn endpoints.
type TruthDareHandler struct {
	truthDare *services.TruthDareService
	users     *services.UserService
	hub       *services.Hub
	push      *services.PushService
	collector *metrics.Collector
}

// NewTruthDareHandler creates a new truth-or-dare handler.
func NewTruthDareHandler(truthDare *services.TruthDareService, users *services.UserService, hub *services.Hub, push *services.PushService, collector *metrics.Collector) *TruthDareHandler {
	return &TruthDareHandler{truthDare: truthDare, users: users, hub: hub, push: push, collector: collector}
}

// Random handles GET /api/truthdare/random?type=truth|dare.
func (h *TruthDareHandler) Random(w http.ResponseWriter, r *http.Request) {
	question, err := h.truthDare.Random(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, question)
}

// Status handles GET /api/truthdare/status.
func (h *TruthDareHandler) Status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := userFromRequest(ctx, h.users)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{
		"isTurn": h.truthDare.Status(ctx, user),
	})
}

// CompleteTurn handles POST /api/truthdare/complete.
func (h *TruthDareHandler) CompleteTurn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := userFromRequest(ctx, h.users)
	if err != nil {
		respondError(w, err)
		return
	}

	partner, err := h.truthDare.CompleteTurn(ctx, user)
	if err != nil {
		respondError(w, err)
		return
	}

	h.collector.RecordTurnPassed()
	if partner != nil {
		h.hub.NotifyTurnPassed(&partner.ID)
		h.push.Notify(partner.PushToken, "Your turn!", "It's your turn in truth or dare 🎲")
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Turn completed",
		"isTurn":  false,
	})
}

// Questions handles GET /api/truthdare/questions.
func (h *TruthDareHandler) Questions(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePageQuery(r, 10)
	q := r.URL.Query()

	filter := repository.QuestionFilter{
		Type:     allFilter(q.Get("type")),
		Category: allFilter(q.Get("category")),
		Search:   q.Get("search"),
		Limit:    limit,
		Offset:   (page - 1) * limit,
	}

	questions, total, err := h.truthDare.ListQuestions(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}
	if questions == nil {
		questions = []*models.Question{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"questions":  questions,
		"pagination": newPagination(total, page, limit),
	})
}

// UpdateQuestion handles PUT /api/truthdare/questions/{id}.
func (h *TruthDareHandler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text     string `json:"text"`
		Type     string `json:"type"`
		Category string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, models.NewValidation("Invalid request body"))
		return
	}

	question, err := h.truthDare.UpdateQuestion(r.Context(), chi.URLParam(r, "id"), req.Text, req.Type, req.Category)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Question updated successfully",
		"question": question,
	})
}

// DeleteQuestion handles DELETE /api/truthdare/questions/{id}.
func (h *TruthDareHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	if err := h.truthDare.DeleteQuestion(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Question deleted successfully")
}

// Seed handles POST /api/truthdare/seed.
func (h *TruthDareHandler) Seed(w http.ResponseWriter, r *http.Request) {
	count, err := h.truthDare.SeedQuestions(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Questions seeded successfully",
		"count":   count,
	})
}
