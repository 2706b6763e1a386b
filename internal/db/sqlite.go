package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ukydev/metro-fleet/internal/db/migrations"
	"github.com/ukydev/metro-fleet/internal/models"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// SQLiteStore persists fleet state in a SQLite file.
type SQLiteStore struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// OpenSQLite opens a SQLite store at path and applies embedded migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLiteStore{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *SQLiteStore) Close(ctx context.Context) error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *SQLiteStore) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

const trainColumns = `id, train_number, model, status, mileage, current_depot, health_score, last_maintenance, next_maintenance`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrain(row rowScanner) (models.Train, error) {
	var t models.Train
	var status string
	err := row.Scan(&t.ID, &t.TrainNumber, &t.Model, &status, &t.Mileage, &t.CurrentDepot,
		&t.HealthScore, &t.LastMaintenance, &t.NextMaintenance)
	t.Status = models.TrainStatus(status)
	return t, err
}

// InsertTrain inserts a train; a zero ID lets SQLite assign the next rowid.
func (s *SQLiteStore) InsertTrain(ctx context.Context, train models.Train) (models.Train, error) {
	if err := s.ready(ctx); err != nil {
		return models.Train{}, err
	}
	var id any
	if train.ID != 0 {
		id = train.ID
	}
	res, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO trains (`+trainColumns+`, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, train.TrainNumber, train.Model, string(train.Status), train.Mileage, train.CurrentDepot,
		train.HealthScore, train.LastMaintenance, train.NextMaintenance, toMillis(time.Now()),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Train{}, ErrAlreadyExists
		}
		return models.Train{}, fmt.Errorf("insert train: %w", err)
	}
	if train.ID == 0 {
		newID, err := res.LastInsertId()
		if err != nil {
			return models.Train{}, fmt.Errorf("train id: %w", err)
		}
		train.ID = int(newID)
	}
	return train, nil
}

// FindTrains returns trains matching filter ordered by id.
func (s *SQLiteStore) FindTrains(ctx context.Context, filter models.TrainFilter) ([]models.Train, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	query := `SELECT ` + trainColumns + ` FROM trains`
	var args []any
	if status := strings.TrimSpace(filter.Status); status != "" {
		query += ` WHERE status = ? COLLATE NOCASE`
		args = append(args, status)
	}
	query += ` ORDER BY id`

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query trains: %w", err)
	}
	defer rows.Close()

	trains := []models.Train{}
	for rows.Next() {
		t, err := scanTrain(rows)
		if err != nil {
			return nil, fmt.Errorf("scan train: %w", err)
		}
		trains = append(trains, t)
	}
	return trains, rows.Err()
}

// FindTrainByID finds a train by its ID.
func (s *SQLiteStore) FindTrainByID(ctx context.Context, id int) (*models.Train, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+trainColumns+` FROM trains WHERE id = ?`, id)
	t, err := scanTrain(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get train: %w", err)
	}
	return &t, nil
}

// CountTrains returns the fleet size.
func (s *SQLiteStore) CountTrains(ctx context.Context) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	var n int
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM trains`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count trains: %w", err)
	}
	return n, nil
}

// InsertReading stores one sensor reading.
func (s *SQLiteStore) InsertReading(ctx context.Context, reading models.SensorReading) (models.SensorReading, error) {
	if err := s.ready(ctx); err != nil {
		return models.SensorReading{}, err
	}
	if reading.Timestamp.IsZero() {
		reading.Timestamp = time.Now().UTC()
	}
	res, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO sensor_data (train_id, sensor_type, value, unit, timestamp, is_anomaly) VALUES (?, ?, ?, ?, ?, ?)`,
		reading.TrainID, reading.SensorType, reading.Value, reading.Unit, toMillis(reading.Timestamp), reading.IsAnomaly,
	)
	if err != nil {
		return models.SensorReading{}, fmt.Errorf("insert sensor reading: %w", err)
	}
	if reading.ID, err = res.LastInsertId(); err != nil {
		return models.SensorReading{}, fmt.Errorf("sensor reading id: %w", err)
	}
	return reading, nil
}

// RecentReadings returns up to limit readings, newest first.
func (s *SQLiteStore) RecentReadings(ctx context.Context, trainID int, limit int) ([]models.SensorReading, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	query := `SELECT id, train_id, sensor_type, value, unit, timestamp, is_anomaly FROM sensor_data`
	var args []any
	if trainID != 0 {
		query += ` WHERE train_id = ?`
		args = append(args, trainID)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sensor readings: %w", err)
	}
	defer rows.Close()

	readings := []models.SensorReading{}
	for rows.Next() {
		var r models.SensorReading
		var ts int64
		if err := rows.Scan(&r.ID, &r.TrainID, &r.SensorType, &r.Value, &r.Unit, &ts, &r.IsAnomaly); err != nil {
			return nil, fmt.Errorf("scan sensor reading: %w", err)
		}
		r.Timestamp = fromMillis(ts)
		readings = append(readings, r)
	}
	return readings, rows.Err()
}

// InsertRun records a generated induction plan.
func (s *SQLiteStore) InsertRun(ctx context.Context, run models.InductionRun) (models.InductionRun, error) {
	if err := s.ready(ctx); err != nil {
		return models.InductionRun{}, err
	}
	entries, err := json.Marshal(run.Entries)
	if err != nil {
		return models.InductionRun{}, fmt.Errorf("encode plan entries: %w", err)
	}
	res, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO induction_runs (generated_at, entries, trains_scheduled, high_priority, avg_score, generated_by, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		toMillis(run.GeneratedAt), string(entries), run.TrainsScheduled, run.HighPriority, run.AvgScore, run.GeneratedBy, run.Status,
	)
	if err != nil {
		return models.InductionRun{}, fmt.Errorf("insert induction run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.InductionRun{}, fmt.Errorf("induction run id: %w", err)
	}
	run.ID = int(id)
	return run, nil
}

// FindRuns returns up to limit runs, newest first.
func (s *SQLiteStore) FindRuns(ctx context.Context, limit int) ([]models.InductionRun, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, generated_at, entries, trains_scheduled, high_priority, avg_score, generated_by, status
		   FROM induction_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query induction runs: %w", err)
	}
	defer rows.Close()

	runs := []models.InductionRun{}
	for rows.Next() {
		var run models.InductionRun
		var generatedAt int64
		var entries string
		if err := rows.Scan(&run.ID, &generatedAt, &entries, &run.TrainsScheduled, &run.HighPriority,
			&run.AvgScore, &run.GeneratedBy, &run.Status); err != nil {
			return nil, fmt.Errorf("scan induction run: %w", err)
		}
		if err := json.Unmarshal([]byte(entries), &run.Entries); err != nil {
			return nil, fmt.Errorf("decode plan entries: %w", err)
		}
		run.GeneratedAt = fromMillis(generatedAt)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// InsertUser inserts a new user
func (s *SQLiteStore) InsertUser(ctx context.Context, user models.User) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO users (id, email, name, password_hash, role, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.Name, user.PasswordHash, string(user.Role), toMillis(user.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) findUser(ctx context.Context, where string, arg any) (*models.User, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, email, name, password_hash, role, last_login, created_at FROM users WHERE `+where, arg)

	var u models.User
	var role string
	var lastLogin sql.NullInt64
	var createdAt int64
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &role, &lastLogin, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.Role = models.Role(role)
	u.CreatedAt = fromMillis(createdAt)
	if lastLogin.Valid {
		t := fromMillis(lastLogin.Int64)
		u.LastLogin = &t
	}
	return &u, nil
}

// FindUserByID finds a user by their ID
func (s *SQLiteStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.findUser(ctx, "id = ?", id)
}

// FindUserByEmail finds a user by their email
func (s *SQLiteStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, "email = ? COLLATE NOCASE", email)
}

// UpdateLastLogin updates the last login time for a user
func (s *SQLiteStore) UpdateLastLogin(ctx context.Context, id string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	res, err := s.sqlDB.ExecContext(ctx, `UPDATE users SET last_login = ? WHERE id = ?`, toMillis(time.Now()), id)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
