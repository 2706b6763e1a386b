package sensors

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/metro-fleet/internal/db"
	"github.com/ukydev/metro-fleet/internal/models"
)

// MockPublisher is a mock implementation of Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, reading models.SensorReading) error {
	args := m.Called(ctx, reading)
	return args.Error(0)
}

func (m *MockPublisher) Close() {
	m.Called()
}

func seededStore(t *testing.T) *db.MemoryStore {
	t.Helper()
	store := db.NewMemoryStore()
	require.NoError(t, db.Seed(context.Background(), store))
	return store
}

func TestFeed_GenerateStaysInRange(t *testing.T) {
	feed := NewFeed(nil, nil, nil, nil, rand.New(rand.NewSource(1)))
	now := time.Now()

	for i := 0; i < 200; i++ {
		readings := feed.Generate(4, now)
		require.Len(t, readings, 3)
		for _, r := range readings {
			rg := ranges[r.SensorType]
			assert.GreaterOrEqual(t, r.Value, rg.min)
			assert.LessOrEqual(t, r.Value, rg.max)
			assert.Equal(t, 4, r.TrainID)
			assert.Equal(t, models.UnitFor(r.SensorType), r.Unit)
			assert.Equal(t, models.IsAnomalous(r.SensorType, r.Value), r.IsAnomaly)
		}
	}
}

func TestFeed_IngestStoresAndPublishes(t *testing.T) {
	store := seededStore(t)
	pub := new(MockPublisher)
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(r models.SensorReading) bool {
		return r.TrainID == 3 && r.IsAnomaly
	})).Return(nil)

	feed := NewFeed(store, store, pub, NewHub(), nil)
	stored, err := feed.Ingest(context.Background(), models.SensorReading{
		TrainID:    3,
		SensorType: models.SensorTemperature,
		Value:      95.2,
	}, "api")
	require.NoError(t, err)
	assert.NotZero(t, stored.ID)
	assert.Equal(t, "°C", stored.Unit)
	assert.True(t, stored.IsAnomaly)
	pub.AssertExpectations(t)

	readings, err := store.RecentReadings(context.Background(), 3, 5)
	require.NoError(t, err)
	assert.Len(t, readings, 1)
}

func TestFeed_IngestRejectsBadInput(t *testing.T) {
	store := seededStore(t)
	feed := NewFeed(store, store, nil, nil, nil)

	_, err := feed.Ingest(context.Background(), models.SensorReading{TrainID: 3, SensorType: "humidity"}, "api")
	assert.ErrorIs(t, err, ErrUnknownSensor)

	_, err = feed.Ingest(context.Background(), models.SensorReading{TrainID: 404, SensorType: models.SensorVibration}, "api")
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestFeed_PublishFailureDoesNotFailIngest(t *testing.T) {
	store := seededStore(t)
	pub := new(MockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	feed := NewFeed(store, store, pub, nil, nil)
	_, err := feed.Ingest(context.Background(), models.SensorReading{TrainID: 1, SensorType: models.SensorBrakePressure, Value: 8}, "api")
	assert.NoError(t, err)
}

func TestFeed_TickWritesOneReadingPerSensor(t *testing.T) {
	store := seededStore(t)
	feed := NewFeed(store, store, nil, nil, rand.New(rand.NewSource(5)))

	require.NoError(t, feed.Tick(context.Background()))
	readings, err := store.RecentReadings(context.Background(), 0, 10)
	require.NoError(t, err)
	require.Len(t, readings, 3)
	assert.Equal(t, readings[0].TrainID, readings[2].TrainID)
}

func TestFeed_RunStopsOnCancel(t *testing.T) {
	store := seededStore(t)
	feed := NewFeed(store, store, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		feed.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool {
		readings, _ := store.RecentReadings(context.Background(), 0, 1)
		return len(readings) == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("feed did not stop after cancel")
	}
}

func TestTopicFor(t *testing.T) {
	assert.Equal(t, "metro/sensors/12", TopicFor("metro/sensors", 12))
}
