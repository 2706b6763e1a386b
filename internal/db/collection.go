package db

import (
	"context"
	"errors"

	"github.com/ukydev/metro-fleet/internal/models"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

// TrainCollection defines the interface for train data operations.
type TrainCollection interface {
	InsertTrain(ctx context.Context, train models.Train) (models.Train, error)
	FindTrains(ctx context.Context, filter models.TrainFilter) ([]models.Train, error)
	FindTrainByID(ctx context.Context, id int) (*models.Train, error)
	CountTrains(ctx context.Context) (int, error)
}

// SensorCollection defines the interface for sensor reading operations.
type SensorCollection interface {
	InsertReading(ctx context.Context, reading models.SensorReading) (models.SensorReading, error)
	// RecentReadings returns readings newest first. A zero trainID matches every train.
	RecentReadings(ctx context.Context, trainID int, limit int) ([]models.SensorReading, error)
}

// InductionCollection defines the interface for induction plan history.
type InductionCollection interface {
	InsertRun(ctx context.Context, run models.InductionRun) (models.InductionRun, error)
	// FindRuns returns stored runs newest first.
	FindRuns(ctx context.Context, limit int) ([]models.InductionRun, error)
}

// UserCollection defines the interface for user database operations
type UserCollection interface {
	InsertUser(ctx context.Context, user models.User) error
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id string) error
}

// Store is the full persistence contract served by every backend.
type Store interface {
	TrainCollection
	SensorCollection
	InductionCollection
	UserCollection
	Close(ctx context.Context) error
}
