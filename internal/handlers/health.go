package handlers

import (
	"net/http"
	"time"

	"twinflame-backend/internal/cache"

	"github.com/jackc/pgx/v5/pgxpool"
)

// HealthHandler reports liveness of the service and its backing stores.
type HealthHandler struct {
	pool      *pgxpool.Pool
	userCache *cache.UserCache
	startedAt time.Time
}

// NewHealthHandler creates a new health handler. userCache may be nil.
func NewHealthHandler(pool *pgxpool.Pool, userCache *cache.UserCache) *HealthHandler {
	return &HealthHandler{pool: pool, userCache: userCache, startedAt: time.Now()}
}

// Check handles GET /api/health. Each dependency is pinged live on every
// request rather than reporting a flag captured at startup.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := http.StatusOK
	dbStatus := "ok"
	if err := h.pool.Ping(ctx); err != nil {
		dbStatus = "unavailable"
		status = http.StatusServiceUnavailable
	}

	cacheStatus := "disabled"
	if h.userCache != nil {
		cacheStatus = "ok"
		if err := h.userCache.Ping(ctx); err != nil {
			cacheStatus = "unavailable"
			status = http.StatusServiceUnavailable
		}
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}

	respondJSON(w, status, map[string]interface{}{
		"status":   overall,
		"database": dbStatus,
		"cache":    cacheStatus,
		"uptime":   time.Since(h.startedAt).Round(time.Second).String(),
	})
}
