package handler

import (
	"context"
	"net/http"

	"github.com/Rrens/profilesync/internal/api/response"
)

// Pinger is a storage backend that can report its connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "ok",
	})
}

// ReadyCheck reports whether the credential storage is reachable. A nil
// pinger (in-process backends) is always ready.
func ReadyCheck(pinger Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pinger != nil {
			if err := pinger.Ping(r.Context()); err != nil {
				response.Error(w, http.StatusServiceUnavailable, "storage not ready")
				return
			}
		}

		response.OK(w, map[string]string{
			"status": "ready",
		})
	}
}
