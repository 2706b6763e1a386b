package models

import "time"

// Depot represents a maintenance and stabling yard.
type Depot struct {
	ID               int    `json:"id" bson:"_id"`
	Name             string `json:"name" bson:"name"`
	Location         string `json:"location" bson:"location"`
	Capacity         int    `json:"capacity" bson:"capacity"`
	CurrentOccupancy int    `json:"currentOccupancy" bson:"current_occupancy"`
}

// Utilization returns occupancy as a whole percentage of capacity.
func (d Depot) Utilization() int {
	if d.Capacity <= 0 {
		return 0
	}
	return d.CurrentOccupancy * 100 / d.Capacity
}

// AvailableSlots is the number of free stabling lines.
func (d Depot) AvailableSlots() int {
	if d.CurrentOccupancy >= d.Capacity {
		return 0
	}
	return d.Capacity - d.CurrentOccupancy
}

// DepotUtilization is the dashboard view of a depot.
type DepotUtilization struct {
	Name           string `json:"name"`
	Utilization    int    `json:"utilization"`
	AvailableSlots int    `json:"available_slots"`
}

// Alert is an operational alert raised against a train or depot.
type Alert struct {
	ID          int       `json:"id"`
	Type        string    `json:"type"` // "critical", "warning", "info", "success"
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	Status      string    `json:"status"` // "active", "acknowledged", "resolved"
	TrainID     *string   `json:"trainId"`
}

// Notification is a user-facing message derived from an active alert.
type Notification struct {
	ID        int       `json:"id"`
	AlertID   int       `json:"alert_id"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	Read      bool      `json:"read"`
}

// NotificationSettings toggles which alert categories produce notifications.
type NotificationSettings struct {
	Maintenance bool `json:"maintenance"`
	Anomalies   bool `json:"anomalies"`
	Capacity    bool `json:"capacity"`
	Performance bool `json:"performance"`
}
