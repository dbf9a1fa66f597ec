package handlers

import (
	"encoding/json"
	"net/http"

	"twinflame-backend/internal/metrics"
	"twinflame-backend/internal/middleware"
	"twinflame-backend/internal/models"
	"twinflame-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// PairHandler handles partner code and linking endpoints.
type PairHandler struct {
	pairs     *services.PairService
	users     *services.UserService
	hub       *services.Hub
	push      *services.PushService
	collector *metrics.Collector
}

// NewPairHandler creates a new pair handler.
func NewPairHandler(pairs *services.PairService, users *services.UserService, hub *services.Hub, push *services.PushService, collector *metrics.Collector) *PairHandler {
	return &PairHandler{pairs: pairs, users: users, hub: hub, push: push, collector: collector}
}

// GetCode handles GET /api/user/code.
func (h *PairHandler) GetCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity := middleware.IdentityFromContext(ctx)
	if identity == nil {
		respondError(w, models.NewUnauthenticated("No token provided"))
		return
	}

	code, err := h.pairs.GetOrCreateCode(ctx, identity.Subject)
	if err != nil {
		log.Error().Err(err).Str("uid", identity.Subject).Msg("Failed to get partner code")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"code": code})
}

// Link handles POST /api/user/link.
func (h *PairHandler) Link(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity := middleware.IdentityFromContext(ctx)
	if identity == nil {
		respondError(w, models.NewUnauthenticated("No token provided"))
		return
	}

	var req struct {
		PartnerCode string `json:"partnerCode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PartnerCode == "" {
		respondError(w, models.NewValidation("Partner code is required"))
		return
	}

	currentUser, err := h.users.GetByUID(ctx, identity.Subject)
	if err != nil {
		respondError(w, err)
		return
	}

	partner, err := h.pairs.LinkPartner(ctx, identity.Subject, req.PartnerCode)
	if err != nil {
		respondError(w, err)
		return
	}

	h.collector.RecordPairLinked()
	h.hub.NotifyPartnerLinked(partner.ID, currentUser.DisplayName, currentUser.Email)
	h.push.Notify(partner.PushToken, "You're linked!", "Your partner just connected your accounts 💞")

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Successfully linked!",
		"partner": map[string]string{
			"name":  partner.DisplayName,
			"email": partner.Email,
		},
	})
}
