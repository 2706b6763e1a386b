package induction

import (
	"fmt"

	"github.com/ukydev/metro-fleet/internal/models"
)

// Scenario types accepted by Simulate. Unknown types fall back to ScenarioShuntingCost.
const (
	ScenarioTrainReplacement = "train_replacement"
	ScenarioBrandingPriority = "branding_priority"
	ScenarioMileageBalancing = "mileage_balancing"
	ScenarioShuntingCost     = "shunting_cost"
)

func trainLabel(id int) string {
	return fmt.Sprintf("KMRL-%03d", id)
}

// Simulate evaluates a what-if scenario against the current fleet.
func Simulate(req models.ScenarioRequest, trains []models.Train) models.ScenarioResult {
	scenario := req.ScenarioType
	if scenario == "" {
		scenario = ScenarioTrainReplacement
	}

	total, available := len(trains), 0
	for _, t := range trains {
		if t.Status == models.StatusAvailable {
			available++
		}
	}
	if total == 0 {
		total, available = 20, 16
	}

	switch scenario {
	case ScenarioTrainReplacement:
		replaced := req.ReplacementTrainID != nil && *req.ReplacementTrainID != 0
		result := models.ScenarioResult{
			ScenarioType: scenario,
			BaseMetrics: map[string]any{
				"total_trains":     total,
				"available_trains": available,
				"scheduled_trains": 4,
			},
		}
		if replaced {
			result.SimulationMetrics = map[string]any{
				"total_trains":     total,
				"available_trains": available - 1,
				"scheduled_trains": 5,
			}
			result.Impact = map[string]any{
				"service_disruption": "Minimal",
				"replacement_found":  true,
				"estimated_delay":    "15 minutes",
			}
			original := "KMRL-001"
			if req.TrainID != nil && *req.TrainID != 0 {
				original = trainLabel(*req.TrainID)
			}
			result.ReplacementDetails = map[string]any{
				"original_train":      original,
				"replacement_train":   trainLabel(*req.ReplacementTrainID),
				"depot_transfer_time": "30 minutes",
				"service_resumption":  "Next scheduled departure",
			}
			return result
		}
		result.SimulationMetrics = map[string]any{
			"total_trains":     total,
			"available_trains": available - 2,
			"scheduled_trains": 3,
		}
		result.Impact = map[string]any{
			"service_disruption": "Moderate",
			"replacement_found":  false,
			"estimated_delay":    "45 minutes",
		}
		return result

	case ScenarioBrandingPriority:
		// train_id doubles as the priority level here
		level := 1
		if req.TrainID != nil && *req.TrainID != 0 {
			level = *req.TrainID
		}
		revenue := "Low"
		switch level {
		case 1:
			revenue = "High"
		case 2:
			revenue = "Medium"
		}
		return models.ScenarioResult{
			ScenarioType:      scenario,
			BaseMetrics:       map[string]any{"total_trains": total, "branded_trains": 8},
			SimulationMetrics: map[string]any{"total_trains": total, "branded_trains": 10},
			Impact: map[string]any{
				"revenue_impact":      revenue,
				"visibility_increase": fmt.Sprintf("%d%%", 15+(4-level)*5),
			},
		}

	case ScenarioMileageBalancing:
		return models.ScenarioResult{
			ScenarioType:      scenario,
			BaseMetrics:       map[string]any{"avg_mileage": 35000, "mileage_variance": 15000},
			SimulationMetrics: map[string]any{"avg_mileage": 37000, "mileage_variance": 8000},
			Impact: map[string]any{
				"fleet_efficiency":           "Improved",
				"maintenance_cost_reduction": "12%",
			},
		}

	default:
		return models.ScenarioResult{
			ScenarioType:      scenario,
			BaseMetrics:       map[string]any{"daily_movements": 45, "cross_depot_moves": 12},
			SimulationMetrics: map[string]any{"daily_movements": 38, "cross_depot_moves": 6},
			Impact: map[string]any{
				"cost_savings":    "₹25,000/month",
				"efficiency_gain": "18%",
			},
		}
	}
}
