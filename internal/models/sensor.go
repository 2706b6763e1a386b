package models

import "time"

// Sensor types reported by on-board monitoring.
const (
	SensorTemperature   = "temperature"
	SensorVibration     = "vibration"
	SensorBrakePressure = "brake_pressure"
)

// SensorReading is a single on-board sensor sample.
type SensorReading struct {
	ID         int64     `bson:"_id" json:"id"`
	TrainID    int       `bson:"train_id" json:"train_id"`
	SensorType string    `bson:"sensor_type" json:"sensor_type"`
	Value      float64   `bson:"value" json:"value"`
	Unit       string    `bson:"unit" json:"unit"`
	Timestamp  time.Time `bson:"timestamp" json:"timestamp"`
	IsAnomaly  bool      `bson:"is_anomaly" json:"is_anomaly"`
}

// UnitFor returns the display unit of a sensor type.
func UnitFor(sensorType string) string {
	switch sensorType {
	case SensorTemperature:
		return "°C"
	case SensorVibration:
		return "mm/s"
	case SensorBrakePressure:
		return "bar"
	default:
		return ""
	}
}

// IsAnomalous applies the alarm thresholds for a sensor type.
func IsAnomalous(sensorType string, value float64) bool {
	switch sensorType {
	case SensorTemperature:
		return value > 90
	case SensorVibration:
		return value > 4
	case SensorBrakePressure:
		return value < 6 || value > 10
	default:
		return false
	}
}

// IsKnownSensor reports whether sensorType is one the feed understands.
func IsKnownSensor(sensorType string) bool {
	return UnitFor(sensorType) != ""
}
