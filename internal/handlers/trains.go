package handlers

import (
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/metro-fleet/internal/cache"
	"github.com/ukydev/metro-fleet/internal/db"
	"github.com/ukydev/metro-fleet/internal/models"
)

const trainSensorLimit = 50

// TrainHandler serves the train endpoints.
type TrainHandler struct {
	trains   db.TrainCollection
	readings db.SensorCollection
	cache    *cache.Service
	now      func() time.Time
}

// NewTrainHandler creates a new train handler
func NewTrainHandler(trains db.TrainCollection, readings db.SensorCollection, c *cache.Service) *TrainHandler {
	return &TrainHandler{trains: trains, readings: readings, cache: c, now: time.Now}
}

func (h *TrainHandler) list(w http.ResponseWriter, r *http.Request, status string) {
	trains, err := h.trains.FindTrains(r.Context(), models.TrainFilter{Status: status})
	if err != nil {
		respondErr(w, err)
		return
	}
	for i := range trains {
		trains[i].Decorate()
	}
	total := len(trains)
	writeJSON(w, http.StatusOK, Response{Success: true, Data: trains, Total: &total})
}

// List returns all trains, optionally filtered by ?status=.
func (h *TrainHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	log.WithFields(log.Fields{"status": status}).Debug("Listing trains")
	h.list(w, r, status)
}

func (h *TrainHandler) Available(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, string(models.StatusAvailable))
}

func (h *TrainHandler) Maintenance(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, string(models.StatusMaintenance))
}

// Create adds a train. New trains start Available with full health.
func (h *TrainHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTrainRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	req.TrainNumber = strings.TrimSpace(req.TrainNumber)
	req.Model = strings.TrimSpace(req.Model)
	switch {
	case req.TrainNumber == "":
		respondError(w, http.StatusBadRequest, "train_number is required")
		return
	case req.Model == "":
		respondError(w, http.StatusBadRequest, "model is required")
		return
	case req.CurrentMileage < 0:
		respondError(w, http.StatusBadRequest, "current_mileage must not be negative")
		return
	}

	now := h.now()
	train, err := h.trains.InsertTrain(r.Context(), models.Train{
		TrainNumber:     req.TrainNumber,
		Model:           req.Model,
		Status:          models.StatusAvailable,
		Mileage:         req.CurrentMileage,
		CurrentDepot:    db.DepotName(req.DepotID),
		HealthScore:     100,
		LastMaintenance: now.Format("2006-01-02"),
		NextMaintenance: now.AddDate(0, 0, 30).Format("2006-01-02"),
	})
	if err != nil {
		respondErr(w, err)
		return
	}
	if err := h.cache.Delete(r.Context(), cache.KeyDashboard); err != nil {
		log.WithError(err).Warn("Failed to invalidate dashboard cache")
	}

	log.WithFields(log.Fields{
		"train_id":     train.ID,
		"train_number": train.TrainNumber,
		"depot":        train.CurrentDepot,
	}).Info("Train created")
	train.Decorate()
	respond(w, http.StatusCreated, train, "Train created successfully")
}

func (h *TrainHandler) find(w http.ResponseWriter, r *http.Request) (*models.Train, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return nil, false
	}
	train, err := h.trains.FindTrainByID(r.Context(), id)
	if err != nil {
		respondErr(w, err)
		return nil, false
	}
	return train, true
}

// Get returns one train.
func (h *TrainHandler) Get(w http.ResponseWriter, r *http.Request) {
	train, ok := h.find(w, r)
	if !ok {
		return
	}
	train.Decorate()
	respond(w, http.StatusOK, train, "")
}

// Update acknowledges an update without applying it.
func (h *TrainHandler) Update(w http.ResponseWriter, r *http.Request) {
	train, ok := h.find(w, r)
	if !ok {
		return
	}
	var body map[string]any
	if !decodeJSON(w, r, &body, true) {
		return
	}
	log.WithFields(log.Fields{"train_id": train.ID, "fields": len(body)}).Info("Train update requested")
	train.Decorate()
	respond(w, http.StatusOK, train, "Train updated successfully")
}

// Delete acknowledges a delete without applying it.
func (h *TrainHandler) Delete(w http.ResponseWriter, r *http.Request) {
	train, ok := h.find(w, r)
	if !ok {
		return
	}
	log.WithField("train_id", train.ID).Info("Train delete requested")
	respond(w, http.StatusOK, nil, "Train deleted successfully")
}

// MaintenanceRecords returns the maintenance jobs of one train.
func (h *TrainHandler) MaintenanceRecords(w http.ResponseWriter, r *http.Request) {
	train, ok := h.find(w, r)
	if !ok {
		return
	}
	records := []models.MaintenanceRecord{}
	for _, rec := range db.SeedMaintenance() {
		if rec.TrainID == train.ID {
			records = append(records, rec)
		}
	}
	respond(w, http.StatusOK, records, "")
}

// Sensors returns the most recent readings of one train.
func (h *TrainHandler) Sensors(w http.ResponseWriter, r *http.Request) {
	train, ok := h.find(w, r)
	if !ok {
		return
	}
	readings, err := h.readings.RecentReadings(r.Context(), train.ID, trainSensorLimit)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, readings, "")
}
