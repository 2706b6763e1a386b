package db

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ukydev/metro-fleet/internal/models"
)

// maxMemoryReadings bounds the in-memory sensor history.
const maxMemoryReadings = 1000

// MemoryStore keeps everything in process memory. State is lost on restart.
type MemoryStore struct {
	mu        sync.RWMutex
	trains    []models.Train
	readings  []models.SensorReading
	readingID int64
	runs      []models.InductionRun
	users     map[string]models.User
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]models.User)}
}

// InsertTrain appends a train, assigning the next id when ID is zero.
// Train numbers may repeat; only ids are unique.
func (s *MemoryStore) InsertTrain(ctx context.Context, train models.Train) (models.Train, error) {
	if err := ctx.Err(); err != nil {
		return models.Train{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	maxID := 0
	for _, t := range s.trains {
		if t.ID == train.ID && train.ID != 0 {
			return models.Train{}, ErrAlreadyExists
		}
		if t.ID > maxID {
			maxID = t.ID
		}
	}
	if train.ID == 0 {
		train.ID = maxID + 1
	}
	s.trains = append(s.trains, train)
	return train, nil
}

// FindTrains returns trains matching filter in insertion order.
func (s *MemoryStore) FindTrains(ctx context.Context, filter models.TrainFilter) ([]models.Train, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Train, 0, len(s.trains))
	for _, t := range s.trains {
		if filter.Matches(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

// FindTrainByID finds a train by its ID.
func (s *MemoryStore) FindTrainByID(ctx context.Context, id int) (*models.Train, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.trains {
		if t.ID == id {
			found := t
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

// CountTrains returns the fleet size.
func (s *MemoryStore) CountTrains(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.trains), nil
}

// InsertReading stores a reading, dropping the oldest once the history is full.
func (s *MemoryStore) InsertReading(ctx context.Context, reading models.SensorReading) (models.SensorReading, error) {
	if err := ctx.Err(); err != nil {
		return models.SensorReading{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.readingID++
	reading.ID = s.readingID
	if reading.Timestamp.IsZero() {
		reading.Timestamp = time.Now().UTC()
	}
	s.readings = append(s.readings, reading)
	if len(s.readings) > maxMemoryReadings {
		s.readings = s.readings[len(s.readings)-maxMemoryReadings:]
	}
	return reading, nil
}

// RecentReadings returns up to limit readings, newest first.
func (s *MemoryStore) RecentReadings(ctx context.Context, trainID int, limit int) ([]models.SensorReading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.SensorReading{}
	for i := len(s.readings) - 1; i >= 0 && len(out) < limit; i-- {
		if trainID == 0 || s.readings[i].TrainID == trainID {
			out = append(out, s.readings[i])
		}
	}
	return out, nil
}

// InsertRun records a generated induction plan.
func (s *MemoryStore) InsertRun(ctx context.Context, run models.InductionRun) (models.InductionRun, error) {
	if err := ctx.Err(); err != nil {
		return models.InductionRun{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	run.ID = len(s.runs) + 1
	s.runs = append(s.runs, run)
	return run, nil
}

// FindRuns returns up to limit runs, newest first.
func (s *MemoryStore) FindRuns(ctx context.Context, limit int) ([]models.InductionRun, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.InductionRun{}
	for i := len(s.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.runs[i])
	}
	return out, nil
}

// InsertUser inserts a new user
func (s *MemoryStore) InsertUser(ctx context.Context, user models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return ErrAlreadyExists
		}
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	s.users[user.ID] = user
	return nil
}

// FindUserByID finds a user by their ID
func (s *MemoryStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

// FindUserByEmail finds a user by their email
func (s *MemoryStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			found := u
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

// UpdateLastLogin updates the last login time for a user
func (s *MemoryStore) UpdateLastLogin(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	now := time.Now().UTC()
	u.LastLogin = &now
	s.users[id] = u
	return nil
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}
