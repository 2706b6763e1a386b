package models

// MaintenanceRecord represents a scheduled or completed maintenance job on a train.
type MaintenanceRecord struct {
	ID             int     `json:"id" bson:"_id"`
	TrainID        int     `json:"train_id" bson:"train_id"`
	TrainNumber    string  `json:"trainId" bson:"train_number"`
	Type           string  `json:"type" bson:"type"`     // "Preventive", "Corrective", "Emergency"
	Status         string  `json:"status" bson:"status"` // "Scheduled", "In Progress", "Completed"
	ScheduledDate  string  `json:"scheduledDate" bson:"scheduled_date"`
	EstimatedHours int     `json:"estimatedHours" bson:"estimated_hours"`
	Priority       string  `json:"priority" bson:"priority"` // "Low", "Medium", "High", "Critical"
	Technician     string  `json:"technician" bson:"technician"`
	Cost           float64 `json:"cost" bson:"cost"` // in INR
	Description    string  `json:"description" bson:"description"`
}
