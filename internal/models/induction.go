package models

import "time"

// InductionPlanEntry is one train selected for induction.
type InductionPlanEntry struct {
	TrainID       int     `json:"train_id" bson:"train_id"`
	TrainNumber   string  `json:"train_number" bson:"train_number"`
	PriorityScore float64 `json:"priority_score" bson:"priority_score"`
	ScheduledDate string  `json:"scheduled_date" bson:"scheduled_date"`
	DepotID       int     `json:"depot_id" bson:"depot_id"`
	Reasoning     string  `json:"reasoning" bson:"reasoning"`
}

// InductionRun is a generated plan as kept in history.
type InductionRun struct {
	ID              int                  `json:"id" bson:"_id"`
	GeneratedAt     time.Time            `json:"generated_at" bson:"generated_at"`
	Entries         []InductionPlanEntry `json:"entries,omitempty" bson:"entries"`
	TrainsScheduled int                  `json:"trains_scheduled" bson:"trains_scheduled"`
	HighPriority    int                  `json:"high_priority" bson:"high_priority"`
	AvgScore        float64              `json:"avg_score" bson:"avg_score"`
	GeneratedBy     string               `json:"generated_by" bson:"generated_by"`
	Status          string               `json:"status" bson:"status"`
}

// ScenarioRequest is the body of a what-if simulation.
type ScenarioRequest struct {
	ScenarioType       string `json:"scenario_type"`
	TrainID            *int   `json:"train_id"`
	ReplacementTrainID *int   `json:"replacement_train_id"`
}

// ScenarioResult is the outcome of a what-if simulation.
type ScenarioResult struct {
	ScenarioType       string         `json:"scenario_type"`
	BaseMetrics        map[string]any `json:"base_metrics"`
	SimulationMetrics  map[string]any `json:"simulation_metrics"`
	Impact             map[string]any `json:"impact"`
	ReplacementDetails map[string]any `json:"replacement_details,omitempty"`
}
