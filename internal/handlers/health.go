package handlers

import (
	"net/http"
	"time"

	"github.com/ukydev/metro-fleet/internal/db"
)

// HealthHandler reports liveness.
type HealthHandler struct {
	trains db.TrainCollection
}

func NewHealthHandler(trains db.TrainCollection) *HealthHandler {
	return &HealthHandler{trains: trains}
}

// Health reports status and fleet size.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	n, err := h.trains.CountTrains(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":    "unhealthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"message":   err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "healthy",
		"timestamp":    time.Now().Format(time.RFC3339),
		"trains_count": n,
		"message":      "Backend is running with sample data",
	})
}

func (h *HealthHandler) Test(w http.ResponseWriter, r *http.Request) {
	n, err := h.trains.CountTrains(r.Context())
	if err != nil {
		respondErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Backend is working", "trains": n})
}
