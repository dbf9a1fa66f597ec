package handlers

import (
	"encoding/json"
	"net/http"

	"twinflame-backend/internal/metrics"
	"twinflame-backend/internal/models"
	"twinflame-backend/internal/repository"
	"twinflame-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// TaskHandler handles daily task endpoints.
type TaskHandler struct {
	tasks     *services.TaskService
	users     *services.UserService
	hub       *services.Hub
	push      *services.PushService
	collector *metrics.Collector
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(tasks *services.TaskService, users *services.UserService, hub *services.Hub, push *services.PushService, collector *metrics.Collector) *TaskHandler {
	return &TaskHandler{tasks: tasks, users: users, hub: hub, push: push, collector: collector}
}

// Today handles GET /api/tasks/today.
func (h *TaskHandler) Today(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := userFromRequest(ctx, h.users)
	if err != nil {
		respondError(w, err)
		return
	}

	result, err := h.tasks.Today(ctx, user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to get today's task")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"task":                  result.Task,
		"currentUserCompleted":  result.CurrentUserCompleted,
		"partnerCompleted":      result.PartnerCompleted,
		"currentUserSubmission": result.CurrentUserSubmission,
		"partnerSubmission":     result.PartnerSubmission,
	})
}

// Complete handles POST /api/tasks/complete.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := userFromRequest(ctx, h.users)
	if err != nil {
		respondError(w, err)
		return
	}

	var req services.CompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, models.NewValidation("Invalid request body"))
		return
	}
	if req.TaskID == "" {
		respondError(w, models.NewValidation("Task ID is required"))
		return
	}

	result, err := h.tasks.Complete(ctx, user, req)
	if err != nil {
		respondError(w, err)
		return
	}

	h.collector.RecordTaskCompleted()
	h.hub.NotifyTaskCompleted(user.PartnerID, req.TaskID, result.BothCompleted)
	if user.PartnerID != nil {
		if partner, err := h.users.GetByID(ctx, *user.PartnerID); err == nil {
			h.push.Notify(partner.PushToken, "Task completed", "Your partner finished today's task ✨")
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":       "Task marked as complete",
		"completion":    result.Completion,
		"bothCompleted": result.BothCompleted,
	})
}

// Seed handles POST /api/tasks/seed.
func (h *TaskHandler) Seed(w http.ResponseWriter, r *http.Request) {
	count, err := h.tasks.Seed(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Tasks seeded successfully",
		"count":   count,
	})
}

// History handles GET /api/tasks/history.
func (h *TaskHandler) History(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePageQuery(r, 10)
	q := r.URL.Query()

	filter := repository.TaskFilter{
		StartDate: parseDate(q.Get("startDate")),
		EndDate:   parseDate(q.Get("endDate")),
		SortBy:    q.Get("sortBy"),
		SortAsc:   q.Get("sortOrder") == "asc",
		Limit:     limit,
		Offset:    (page - 1) * limit,
	}

	tasks, total, err := h.tasks.History(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}
	if tasks == nil {
		tasks = []*models.DailyTask{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"tasks":      tasks,
		"pagination": newPagination(total, page, limit),
	})
}

// Update handles PUT /api/tasks/{id}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description    string `json:"description"`
		SubmissionType string `json:"submissionType"`
		Category       string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, models.NewValidation("Invalid request body"))
		return
	}
	if req.Description == "" {
		respondError(w, models.NewValidation("Description is required"))
		return
	}

	task, err := h.tasks.Update(r.Context(), chi.URLParam(r, "id"), req.Description, req.SubmissionType, req.Category)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Task updated successfully",
		"task":    task,
	})
}

// Delete handles DELETE /api/tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	task, err := h.tasks.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Task and associated completions deleted successfully",
		"task":    task,
	})
}

// Completions handles GET /api/tasks/completions.
func (h *TaskHandler) Completions(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePageQuery(r, 10)
	q := r.URL.Query()

	filter := repository.CompletionFilter{
		UserID:    q.Get("userId"),
		TaskID:    q.Get("taskId"),
		StartDate: parseDate(q.Get("startDate")),
		EndDate:   parseDate(q.Get("endDate")),
		Limit:     limit,
		Offset:    (page - 1) * limit,
	}

	completions, total, err := h.tasks.ListCompletions(r.Context(), filter)
	if err != nil {
		respondError(w, err)
		return
	}
	if completions == nil {
		completions = []*models.TaskCompletion{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"completions": completions,
		"pagination":  newPagination(total, page, limit),
	})
}

// DeleteCompletion handles DELETE /api/tasks/completions/{id}.
func (h *TaskHandler) DeleteCompletion(w http.ResponseWriter, r *http.Request) {
	if err := h.tasks.DeleteCompletion(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "Completion deleted successfully")
}
