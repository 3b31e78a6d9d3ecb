package api

import (
	"net/http"
	"time"

	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/http/response"
)

// handleHealthCheck reports server health with per-component round trips
// against the database and the cache.
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	components := map[string]string{
		"database": "ok",
		"cache":    "ok",
	}
	healthy := true

	count, err := s.store.CountBooks(ctx)
	if err != nil {
		s.logger.Error("store health check failed", "error", err)
		components["database"] = "unreachable"
		healthy = false
	}

	if err := s.cache.Set(ctx, "health:ping", []byte("ok"), time.Minute); err != nil {
		s.logger.Error("cache health check failed", "error", err)
		components["cache"] = "unreachable"
		healthy = false
	}

	if !healthy {
		response.JSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":     "degraded",
			"components": components,
		}, s.logger)
		return
	}

	response.Success(w, map[string]any{
		"status":      "healthy",
		"components":  components,
		"books_count": count,
	}, s.logger)
}
