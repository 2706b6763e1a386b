package db

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/metro-fleet/internal/models"
)

type seedTrain struct {
	number  string
	model   string
	status  models.TrainStatus
	mileage int
	depot   string
	health  int
	last    string
	next    string
}

var seedTrains = []seedTrain{
	{"KMRL-001", "Metro-A1", models.StatusAvailable, 45000, "Aluva Depot", 75, "2024-01-10", "2024-02-10"},
	{"KMRL-002", "Metro-B2", models.StatusAvailable, 38000, "Pettah Depot", 85, "2024-01-15", "2024-02-15"},
	{"KMRL-003", "Metro-A1", models.StatusMaintenance, 52000, "Kalamassery Depot", 65, "2024-01-05", "2024-02-05"},
	{"KMRL-004", "Metro-C3", models.StatusAvailable, 29000, "Aluva Depot", 92, "2024-01-20", "2024-02-20"},
	{"KMRL-005", "Metro-B2", models.StatusInService, 41000, "Pettah Depot", 78, "2024-01-12", "2024-02-12"},
	{"KMRL-006", "Metro-A1", models.StatusAvailable, 33000, "Kalamassery Depot", 88, "2024-01-18", "2024-02-18"},
	{"KMRL-007", "Metro-C3", models.StatusAvailable, 47000, "Aluva Depot", 72, "2024-01-08", "2024-02-08"},
	{"KMRL-008", "Metro-B2", models.StatusAvailable, 35000, "Pettah Depot", 90, "2024-01-22", "2024-02-22"},
	{"KMRL-009", "Metro-A1", models.StatusMaintenance, 49000, "Kalamassery Depot", 68, "2024-01-03", "2024-02-03"},
	{"KMRL-010", "Metro-C3", models.StatusAvailable, 31000, "Aluva Depot", 86, "2024-01-25", "2024-02-25"},
	{"KMRL-011", "Metro-B2", models.StatusAvailable, 43000, "Pettah Depot", 80, "2024-01-14", "2024-02-14"},
	{"KMRL-012", "Metro-A1", models.StatusAvailable, 36000, "Kalamassery Depot", 84, "2024-01-19", "2024-02-19"},
	{"KMRL-013", "Metro-C3", models.StatusInService, 40000, "Aluva Depot", 76, "2024-01-11", "2024-02-11"},
	{"KMRL-014", "Metro-B2", models.StatusAvailable, 28000, "Pettah Depot", 94, "2024-01-26", "2024-02-26"},
	{"KMRL-015", "Metro-A1", models.StatusAvailable, 44000, "Kalamassery Depot", 82, "2024-01-16", "2024-02-16"},
	{"KMRL-016", "Metro-C3", models.StatusMaintenance, 51000, "Aluva Depot", 63, "2024-01-02", "2024-02-02"},
	{"KMRL-017", "Metro-B2", models.StatusAvailable, 32000, "Pettah Depot", 89, "2024-01-23", "2024-02-23"},
	{"KMRL-018", "Metro-A1", models.StatusAvailable, 37000, "Kalamassery Depot", 87, "2024-01-17", "2024-02-17"},
	{"KMRL-019", "Metro-C3", models.StatusAvailable, 39000, "Aluva Depot", 81, "2024-01-13", "2024-02-13"},
	{"KMRL-020", "Metro-B2", models.StatusMaintenance, 48000, "Pettah Depot", 70, "2024-01-06", "2024-02-06"},
}

// SeedTrains returns the initial fleet.
func SeedTrains() []models.Train {
	trains := make([]models.Train, 0, len(seedTrains))
	for i, s := range seedTrains {
		trains = append(trains, models.Train{
			ID:              i + 1,
			TrainNumber:     s.number,
			Model:           s.model,
			Status:          s.status,
			Mileage:         s.mileage,
			CurrentDepot:    s.depot,
			HealthScore:     s.health,
			LastMaintenance: s.last,
			NextMaintenance: s.next,
		})
	}
	return trains
}

// SeedDepots returns the depot catalog.
func SeedDepots() []models.Depot {
	return []models.Depot{
		{ID: 1, Name: "Aluva Depot", Location: "Aluva", Capacity: 15, CurrentOccupancy: 12},
		{ID: 2, Name: "Pettah Depot", Location: "Pettah", Capacity: 10, CurrentOccupancy: 8},
		{ID: 3, Name: "Kalamassery Depot", Location: "Kalamassery", Capacity: 12, CurrentOccupancy: 9},
	}
}

// DepotName resolves a depot id, defaulting to Kalamassery like the intake form does.
func DepotName(id int) string {
	for _, d := range SeedDepots() {
		if d.ID == id {
			return d.Name
		}
	}
	return "Kalamassery Depot"
}

func strPtr(s string) *string { return &s }

// SeedAlerts returns the alert catalog.
func SeedAlerts() []models.Alert {
	at := func(day, hour, minute int) time.Time {
		return time.Date(2024, time.February, day, hour, minute, 0, 0, time.UTC)
	}
	return []models.Alert{
		{ID: 1, Type: "critical", Title: "Train KMRL-003 Temperature Anomaly", Description: "Engine temperature exceeded 95°C threshold", Timestamp: at(10, 14, 30), Status: "active", TrainID: strPtr("KMRL-003")},
		{ID: 2, Type: "warning", Title: "Maintenance Due - KMRL-001", Description: "Scheduled maintenance due in 2 days", Timestamp: at(10, 9, 15), Status: "active", TrainID: strPtr("KMRL-001")},
		{ID: 3, Type: "info", Title: "Depot Capacity Alert", Description: "Aluva depot approaching 90% capacity", Timestamp: at(10, 8, 0), Status: "acknowledged"},
		{ID: 4, Type: "success", Title: "Maintenance Completed", Description: "KMRL-007 preventive maintenance completed successfully", Timestamp: at(9, 16, 45), Status: "resolved", TrainID: strPtr("KMRL-007")},
	}
}

// SeedMaintenance returns the maintenance record catalog.
func SeedMaintenance() []models.MaintenanceRecord {
	return []models.MaintenanceRecord{
		{ID: 1, TrainID: 1, TrainNumber: "KMRL-001", Type: "Preventive", Status: "Scheduled", ScheduledDate: "2024-02-15", EstimatedHours: 8, Priority: "High", Technician: "Ravi Kumar", Cost: 45000, Description: "Bogie and brake inspection"},
		{ID: 2, TrainID: 3, TrainNumber: "KMRL-003", Type: "Corrective", Status: "In Progress", ScheduledDate: "2024-02-10", EstimatedHours: 4, Priority: "Medium", Technician: "Suresh Nair", Cost: 28000, Description: "Traction motor cooling fault"},
		{ID: 3, TrainID: 7, TrainNumber: "KMRL-007", Type: "Emergency", Status: "Completed", ScheduledDate: "2024-02-08", EstimatedHours: 12, Priority: "Critical", Technician: "Anil Jose", Cost: 96000, Description: "Door system actuator replacement"},
	}
}

// Seed inserts the initial fleet when the train collection is empty.
func Seed(ctx context.Context, trains TrainCollection) error {
	n, err := trains.CountTrains(ctx)
	if err != nil {
		return fmt.Errorf("count trains: %w", err)
	}
	if n > 0 {
		log.WithField("trains", n).Debug("Store already seeded")
		return nil
	}
	for _, t := range SeedTrains() {
		if _, err := trains.InsertTrain(ctx, t); err != nil {
			return fmt.Errorf("seed train %s: %w", t.TrainNumber, err)
		}
	}
	log.WithField("trains", len(seedTrains)).Info("Seeded train fleet")
	return nil
}
