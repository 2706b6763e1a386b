package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
)

// Train mirrors the create request of the fleet API.
type Train struct {
	TrainNumber    string `json:"train_number"`
	Model          string `json:"model"`
	DepotID        int    `json:"depot_id"`
	CurrentMileage int    `json:"current_mileage"`
}

// Reading is one sensor sample posted to /sensors.
type Reading struct {
	TrainID    int       `json:"train_id"`
	SensorType string    `json:"sensor_type"`
	Value      float64   `json:"value"`
	Timestamp  time.Time `json:"timestamp"`
}

// envelope is the response wrapper of the fleet API.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

var trainModels = []string{"Metro-A1", "Metro-B2", "Metro-C3"}

// sensorBand is the normal operating band of a sensor.
type sensorBand struct {
	min, max, step float64
}

var bands = map[string]sensorBand{
	"temperature":    {min: 75, max: 95, step: 1.5},
	"vibration":      {min: 1, max: 5, step: 0.4},
	"brake_pressure": {min: 7, max: 10, step: 0.3},
}

// sensorOrder fixes the posting order so runs are reproducible.
var sensorOrder = []string{"temperature", "vibration", "brake_pressure"}

type client struct {
	baseURL string
	token   string
	http    *http.Client
}

func newClient(baseURL, token string) *client {
	return &client{baseURL: baseURL, token: token, http: &http.Client{Timeout: 10 * time.Second}}
}

func (c *client) post(ctx context.Context, path string, v any) (*envelope, int, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(data))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return &env, resp.StatusCode, nil
}

// login exchanges credentials for a bearer token.
func (c *client) login(ctx context.Context, email, password string) error {
	env, status, err := c.post(ctx, "/auth/login", map[string]string{"email": email, "password": password})
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("login failed with status %d: %s", status, env.Error)
	}
	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return fmt.Errorf("decode login: %w", err)
	}
	c.token = data.Token
	return nil
}

func (c *client) createTrain(ctx context.Context, train Train) (int, error) {
	env, status, err := c.post(ctx, "/trains", train)
	if err != nil {
		return 0, fmt.Errorf("failed to create train: %w", err)
	}
	if status != http.StatusCreated {
		return 0, fmt.Errorf("train creation failed with status %d: %s", status, env.Error)
	}
	var created struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil || created.ID == 0 {
		return 0, fmt.Errorf("invalid train ID in response")
	}

	log.WithFields(log.Fields{
		"train_id":     created.ID,
		"train_number": train.TrainNumber,
		"model":        train.Model,
	}).Info("Created train")
	return created.ID, nil
}

func (c *client) sendReading(ctx context.Context, r Reading) error {
	env, status, err := c.post(ctx, "/sensors", r)
	if err != nil {
		return err
	}
	if status != http.StatusCreated {
		return fmt.Errorf("reading rejected with status %d: %s", status, env.Error)
	}
	return nil
}

// TrainState is the drifting sensor state of one simulated train.
type TrainState struct {
	TrainID int
	Values  map[string]float64
}

func newTrainState(trainID int, rng *rand.Rand) *TrainState {
	s := &TrainState{TrainID: trainID, Values: make(map[string]float64, len(bands))}
	for _, name := range sensorOrder {
		b := bands[name]
		s.Values[name] = b.min + rng.Float64()*(b.max-b.min)
	}
	return s
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// step random-walks every sensor inside its band. With probability
// spikeChance a sensor jumps outside the band for one sample.
func (s *TrainState) step(rng *rand.Rand, spikeChance float64, now time.Time) []Reading {
	readings := make([]Reading, 0, len(sensorOrder))
	for _, name := range sensorOrder {
		b := bands[name]
		v := s.Values[name] + (rng.Float64()*2-1)*b.step
		v = math.Max(b.min, math.Min(b.max, v))
		s.Values[name] = v

		sample := v
		if rng.Float64() < spikeChance {
			sample = b.max + b.step*2
		}
		readings = append(readings, Reading{
			TrainID:    s.TrainID,
			SensorType: name,
			Value:      round1(sample),
			Timestamp:  now,
		})
	}
	return readings
}

func simulateTrain(ctx context.Context, c *client, s *TrainState, rng *rand.Rand, interval time.Duration, spikeChance float64) {
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-tick.C:
			for _, r := range s.step(rng, spikeChance, now.UTC()) {
				if err := c.sendReading(ctx, r); err != nil {
					if ctx.Err() != nil {
						return
					}
					log.WithError(err).WithField("train_id", r.TrainID).Error("Failed to send reading")
					continue
				}
				log.WithFields(log.Fields{"train_id": r.TrainID, "sensor": r.SensorType, "value": r.Value}).Debug("Sent reading")
			}
		}
	}
}

func envInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return def
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fleetSize := envInt("FLEET_SIZE", 5)
	apiURL := envString("API_BASE_URL", "http://localhost:8001/api")
	interval := 2 * time.Second
	if n := envInt("SIM_TICK_SECONDS", 2); n >= 1 {
		interval = time.Duration(n) * time.Second
	}
	spikeChance := 0.05
	if v, err := strconv.ParseFloat(os.Getenv("SIM_SPIKE_CHANCE"), 64); err == nil && v >= 0 && v <= 1 {
		spikeChance = v
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	c := newClient(apiURL, os.Getenv("SIM_AUTH_TOKEN"))
	if email := os.Getenv("SIM_EMAIL"); email != "" && c.token == "" {
		if err := c.login(ctx, email, os.Getenv("SIM_PASSWORD")); err != nil {
			log.WithError(err).Fatal("Simulator login failed")
		}
	}

	log.WithFields(log.Fields{
		"fleet_size": fleetSize,
		"api_url":    apiURL,
		"interval":   interval,
	}).Info("Starting train simulation")

	prefix := envString("SIM_TRAIN_PREFIX", "SIM")
	states := make([]*TrainState, 0, fleetSize)
	for i := 0; i < fleetSize; i++ {
		id, err := c.createTrain(ctx, Train{
			TrainNumber:    fmt.Sprintf("%s-%03d", prefix, i+1),
			Model:          trainModels[rng.Intn(len(trainModels))],
			DepotID:        1 + rng.Intn(3),
			CurrentMileage: 20000 + rng.Intn(30000),
		})
		if err != nil {
			log.WithError(err).Error("Failed to create train")
			continue
		}
		states = append(states, newTrainState(id, rng))
	}

	log.WithField("created_trains", len(states)).Info("Train creation completed")
	if len(states) == 0 {
		log.Error("No trains created. Ensure the API is reachable and the token is valid. Exiting.")
		return
	}

	var wg sync.WaitGroup
	for _, s := range states {
		wg.Add(1)
		// each train gets its own source; rand.Rand is not safe for concurrent use
		go func(s *TrainState, seed int64) {
			defer wg.Done()
			simulateTrain(ctx, c, s, rand.New(rand.NewSource(seed)), interval, spikeChance)
		}(s, rng.Int63())
	}

	log.Info("Sensor simulation started")
	wg.Wait()
	log.Info("Sensor simulation stopped")
}
