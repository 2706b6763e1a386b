package handlers

import (
	"net/http"

	"github.com/ukydev/metro-fleet/internal/models"
	"github.com/ukydev/metro-fleet/internal/sensors"
)

// SensorHandler ingests readings and streams them over websocket.
type SensorHandler struct {
	feed *sensors.Feed
	hub  *sensors.Hub
}

func NewSensorHandler(feed *sensors.Feed, hub *sensors.Hub) *SensorHandler {
	return &SensorHandler{feed: feed, hub: hub}
}

// Ingest stores one reading posted by an on-board unit.
func (h *SensorHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var reading models.SensorReading
	if !decodeJSON(w, r, &reading, false) {
		return
	}
	if reading.TrainID <= 0 {
		respondError(w, http.StatusBadRequest, "train_id is required")
		return
	}
	stored, err := h.feed.Ingest(r.Context(), reading, "api")
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusCreated, stored, "Reading stored")
}

// Stream upgrades to a websocket that receives every new reading.
func (h *SensorHandler) Stream(w http.ResponseWriter, r *http.Request) {
	h.hub.ServeWS(w, r)
}
