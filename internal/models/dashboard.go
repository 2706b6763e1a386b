package models

// FleetMetrics summarises train counts by status.
type FleetMetrics struct {
	TotalTrains            int     `json:"total_trains"`
	AvailableTrains        int     `json:"available_trains"`
	MaintenanceDue         int     `json:"maintenance_due"`
	InService              int     `json:"in_service"`
	AvailabilityPercentage float64 `json:"availability_percentage"`
}

// NewFleetMetrics counts trains by status.
func NewFleetMetrics(trains []Train) FleetMetrics {
	m := FleetMetrics{TotalTrains: len(trains)}
	for _, t := range trains {
		switch t.Status {
		case StatusAvailable:
			m.AvailableTrains++
		case StatusMaintenance:
			m.MaintenanceDue++
		case StatusInService:
			m.InService++
		}
	}
	if m.TotalTrains > 0 {
		m.AvailabilityPercentage = float64(m.AvailableTrains) * 100 / float64(m.TotalTrains)
	}
	return m
}

type AnomalyMetrics struct {
	TotalAnomalies      int `json:"total_anomalies"`
	TrainsWithAnomalies int `json:"trains_with_anomalies"`
}

// Dashboard is the payload of the dashboard summary endpoints.
type Dashboard struct {
	FleetMetrics     FleetMetrics       `json:"fleet_metrics"`
	AnomalyMetrics   AnomalyMetrics     `json:"anomaly_metrics"`
	DepotUtilization []DepotUtilization `json:"depot_utilization"`
	RecentSensorData []SensorReading    `json:"recent_sensor_data"`
}

// PerformancePoint is one month of the performance trend.
type PerformancePoint struct {
	Month        string `json:"month"`
	Efficiency   int    `json:"efficiency"`
	Availability int    `json:"availability"`
	OnTime       int    `json:"onTime"`
}

// MaintenanceBreakdown counts jobs of one maintenance type; cost in lakh INR.
type MaintenanceBreakdown struct {
	Type  string  `json:"type"`
	Count int     `json:"count"`
	Cost  float64 `json:"cost"`
}

type Analytics struct {
	Performance      []PerformancePoint     `json:"performance"`
	Maintenance      []MaintenanceBreakdown `json:"maintenance"`
	DepotUtilization []DepotUtilization     `json:"depot_utilization"`
	KPIs             map[string]float64     `json:"kpis"`
	Fleet            FleetMetrics           `json:"fleet"`
}
