package api

import (
	"context"
	"net/http"
)

type SystemHandler struct {
	// Ping checks the storage backend; nil skips the check.
	Ping func(ctx context.Context) error
	// Completion checks the model backend; nil when the provider has no health check.
	Completion func(ctx context.Context) error
}

func (h *SystemHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if h.Ping != nil {
		if err := h.Ping(r.Context()); err != nil {
			logger.Error("health check failed", "err", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "service": "citizenhub"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "citizenhub"})
}

// ReadyHandler reports each dependency. Storage failure makes the service
// unready; a missing model only degrades it since checks fall back to local rules.
func (h *SystemHandler) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"database": "ok"}
	status, code := "ok", http.StatusOK

	if h.Ping != nil {
		if err := h.Ping(r.Context()); err != nil {
			logger.Error("readiness: database", "err", err)
			checks["database"] = "unavailable"
			status, code = "unavailable", http.StatusServiceUnavailable
		}
	}
	if h.Completion != nil {
		checks["completion"] = "ok"
		if err := h.Completion(r.Context()); err != nil {
			logger.Warn("readiness: completion backend", "err", err)
			checks["completion"] = "unavailable"
			if code == http.StatusOK {
				status = "degraded"
			}
		}
	}
	writeJSON(w, code, map[string]any{"status": status, "service": "citizenhub", "checks": checks})
}

func (h *SystemHandler) VersionHandler(version, buildTime string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"version": version, "buildTime": buildTime})
	}
}
