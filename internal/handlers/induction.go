package handlers

import (
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/metro-fleet/internal/db"
	"github.com/ukydev/metro-fleet/internal/induction"
	"github.com/ukydev/metro-fleet/internal/metrics"
	"github.com/ukydev/metro-fleet/internal/middleware"
	"github.com/ukydev/metro-fleet/internal/models"
)

// InductionHandler serves plan generation, history and scenario simulation.
type InductionHandler struct {
	trains  db.TrainCollection
	planner *induction.Planner
}

func NewInductionHandler(trains db.TrainCollection, planner *induction.Planner) *InductionHandler {
	return &InductionHandler{trains: trains, planner: planner}
}

// GeneratePlan ranks the fleet and returns the plan entries.
func (h *InductionHandler) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	trains, err := h.trains.FindTrains(r.Context(), models.TrainFilter{})
	if err != nil {
		respondErr(w, err)
		return
	}

	generatedBy := "Dashboard"
	if claims, ok := middleware.GetUserFromContext(r.Context()); ok {
		generatedBy = claims.Email
	}
	run, err := h.planner.Generate(r.Context(), trains, generatedBy)
	if err != nil {
		respondErr(w, err)
		return
	}
	metrics.PlansGenerated.Inc()
	respond(w, http.StatusOK, run.Entries, "")
}

// History returns past plan runs, newest first.
func (h *InductionHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := induction.DefaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		} else {
			log.WithField("limit", v).Debug("Ignoring malformed history limit")
		}
	}
	runs, err := h.planner.History(r.Context(), limit)
	if err != nil {
		respondErr(w, err)
		return
	}
	respond(w, http.StatusOK, runs, "")
}

// Simulate evaluates a what-if scenario. An empty body runs the default scenario.
func (h *InductionHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	var req models.ScenarioRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	trains, err := h.trains.FindTrains(r.Context(), models.TrainFilter{})
	if err != nil {
		respondErr(w, err)
		return
	}
	result := induction.Simulate(req, trains)
	log.WithField("scenario", result.ScenarioType).Info("Scenario simulated")
	respond(w, http.StatusOK, result, "")
}
