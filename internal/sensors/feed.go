// Package sensors produces synthetic on-board readings and streams them to
// websocket clients and an optional MQTT broker.
package sensors

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/metro-fleet/internal/db"
	"github.com/ukydev/metro-fleet/internal/metrics"
	"github.com/ukydev/metro-fleet/internal/models"
)

// ErrUnknownSensor is returned when ingesting a reading of an unsupported type.
var ErrUnknownSensor = errors.New("unknown sensor type")

type valueRange struct{ min, max float64 }

// Nominal ranges of the generator. The upper end of temperature and
// vibration crosses the anomaly threshold.
var ranges = map[string]valueRange{
	models.SensorTemperature:   {75, 95},
	models.SensorVibration:     {1, 5},
	models.SensorBrakePressure: {7, 10},
}

var sensorOrder = []string{models.SensorTemperature, models.SensorVibration, models.SensorBrakePressure}

// Feed stores readings, forwards them to the broker and broadcasts them to the hub.
type Feed struct {
	trains    db.TrainCollection
	readings  db.SensorCollection
	publisher Publisher
	hub       *Hub

	mu  sync.Mutex
	rng *rand.Rand
}

// NewFeed wires a feed. A nil publisher discards readings; a nil rng is seeded from the clock.
func NewFeed(trains db.TrainCollection, readings db.SensorCollection, publisher Publisher, hub *Hub, rng *rand.Rand) *Feed {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Feed{trains: trains, readings: readings, publisher: publisher, hub: hub, rng: rng}
}

// Generate returns one synthetic reading per sensor type for trainID.
func (f *Feed) Generate(trainID int, now time.Time) []models.SensorReading {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]models.SensorReading, 0, len(sensorOrder))
	for _, sensorType := range sensorOrder {
		r := ranges[sensorType]
		value := math.Round((r.min+f.rng.Float64()*(r.max-r.min))*10) / 10
		out = append(out, models.SensorReading{
			TrainID:    trainID,
			SensorType: sensorType,
			Value:      value,
			Unit:       models.UnitFor(sensorType),
			Timestamp:  now.UTC(),
			IsAnomaly:  models.IsAnomalous(sensorType, value),
		})
	}
	return out
}

func (f *Feed) pick(n int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rng.Intn(n)
}

// Ingest validates and stores a reading, then publishes and broadcasts it.
// Unit and anomaly flag are derived from the sensor type and value.
func (f *Feed) Ingest(ctx context.Context, reading models.SensorReading, source string) (models.SensorReading, error) {
	if !models.IsKnownSensor(reading.SensorType) {
		return models.SensorReading{}, fmt.Errorf("%w: %q", ErrUnknownSensor, reading.SensorType)
	}
	if _, err := f.trains.FindTrainByID(ctx, reading.TrainID); err != nil {
		return models.SensorReading{}, err
	}
	reading.Unit = models.UnitFor(reading.SensorType)
	reading.IsAnomaly = models.IsAnomalous(reading.SensorType, reading.Value)

	stored, err := f.readings.InsertReading(ctx, reading)
	if err != nil {
		return models.SensorReading{}, fmt.Errorf("store sensor reading: %w", err)
	}
	metrics.SensorReadings.WithLabelValues(stored.SensorType, source).Inc()
	if stored.IsAnomaly {
		metrics.SensorAnomalies.Inc()
		log.WithFields(log.Fields{
			"train_id":    stored.TrainID,
			"sensor_type": stored.SensorType,
			"value":       stored.Value,
		}).Warn("Sensor anomaly")
	}

	if err := f.publisher.Publish(ctx, stored); err != nil {
		metrics.MQTTPublishFailures.Inc()
		log.WithError(err).Debug("MQTT publish failed")
	}
	if f.hub != nil {
		f.hub.Broadcast(stored)
	}
	return stored, nil
}

// Tick generates and ingests readings for one random train.
func (f *Feed) Tick(ctx context.Context) error {
	trains, err := f.trains.FindTrains(ctx, models.TrainFilter{})
	if err != nil {
		return fmt.Errorf("list trains: %w", err)
	}
	if len(trains) == 0 {
		return nil
	}
	train := trains[f.pick(len(trains))]
	for _, reading := range f.Generate(train.ID, time.Now()) {
		if _, err := f.Ingest(ctx, reading, "generator"); err != nil {
			return err
		}
	}
	return nil
}

// Run ticks every interval until ctx is cancelled.
func (f *Feed) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.WithField("interval", interval).Info("Sensor feed started")
	for {
		select {
		case <-ctx.Done():
			log.Info("Sensor feed stopped")
			return
		case <-ticker.C:
			if err := f.Tick(ctx); err != nil && ctx.Err() == nil {
				log.WithError(err).Warn("Sensor tick failed")
			}
		}
	}
}
