// Package induction ranks trains for maintenance induction and simulates
// what-if scenarios against the current fleet.
package induction

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/metro-fleet/internal/db"
	"github.com/ukydev/metro-fleet/internal/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// PlanSize is the maximum number of trains in one plan.
	PlanSize = 10
	// HighPriorityScore is the score at which an entry counts as high priority.
	HighPriorityScore = 70.0

	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200
)

var printer = message.NewPrinter(language.English)

// SortKey is the ranking weight of a train. Higher goes first.
func SortKey(t models.Train) float64 {
	return float64(t.Mileage)*0.7 + float64(100-t.HealthScore)*0.3
}

// Rank orders trains by SortKey, highest first, and keeps the top PlanSize.
// Ties keep their input order.
func Rank(trains []models.Train) []models.Train {
	ranked := make([]models.Train, len(trains))
	copy(ranked, trains)
	sort.SliceStable(ranked, func(i, j int) bool {
		return SortKey(ranked[i]) > SortKey(ranked[j])
	})
	if len(ranked) > PlanSize {
		ranked = ranked[:PlanSize]
	}
	return ranked
}

// Score is the displayed priority of a train given an urgency in [10,30].
func Score(t models.Train, urgency float64) float64 {
	mileageFactor := math.Min(float64(t.Mileage)/50000, 1) * 40
	healthFactor := float64(100-t.HealthScore) / 100 * 30
	return math.Round((mileageFactor+healthFactor+urgency)*10) / 10
}

// Reasoning explains why a train was selected.
func Reasoning(t models.Train) string {
	var reasons []string
	if t.Mileage > 40000 {
		reasons = append(reasons, printer.Sprintf("High mileage (%d km)", t.Mileage))
	}
	if t.HealthScore < 80 {
		reasons = append(reasons, fmt.Sprintf("Health score below optimal (%d%%)", t.HealthScore))
	}
	if t.Mileage > 50000 {
		reasons = append(reasons, "Approaching maintenance limit")
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "Scheduled maintenance due")
	}
	return strings.Join(reasons, "; ")
}

// Planner generates induction plans and keeps their history.
type Planner struct {
	runs db.InductionCollection
	now  func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// NewPlanner returns a planner recording runs in runs. A nil rng is seeded from the clock.
func NewPlanner(runs db.InductionCollection, rng *rand.Rand) *Planner {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Planner{runs: runs, rng: rng, now: time.Now}
}

func (p *Planner) urgency() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return 10 + p.rng.Float64()*20
}

// Generate builds a plan from trains and records it as a run.
func (p *Planner) Generate(ctx context.Context, trains []models.Train, generatedBy string) (models.InductionRun, error) {
	now := p.now()
	ranked := Rank(trains)

	run := models.InductionRun{
		GeneratedAt: now.UTC(),
		Entries:     make([]models.InductionPlanEntry, 0, len(ranked)),
		GeneratedBy: generatedBy,
		Status:      "Generated",
	}
	var total float64
	for i, t := range ranked {
		entry := models.InductionPlanEntry{
			TrainID:       t.ID,
			TrainNumber:   t.TrainNumber,
			PriorityScore: Score(t, p.urgency()),
			ScheduledDate: now.Add(time.Duration(i+1)*24*time.Hour + 6*time.Hour).Format(time.RFC3339),
			DepotID:       i%3 + 1,
			Reasoning:     Reasoning(t),
		}
		if entry.PriorityScore >= HighPriorityScore {
			run.HighPriority++
		}
		total += entry.PriorityScore
		run.Entries = append(run.Entries, entry)
	}
	run.TrainsScheduled = len(run.Entries)
	if run.TrainsScheduled > 0 {
		run.AvgScore = math.Round(total/float64(run.TrainsScheduled)*10) / 10
	}

	stored, err := p.runs.InsertRun(ctx, run)
	if err != nil {
		return models.InductionRun{}, fmt.Errorf("record induction run: %w", err)
	}

	log.WithFields(log.Fields{
		"run_id":        stored.ID,
		"scheduled":     stored.TrainsScheduled,
		"high_priority": stored.HighPriority,
		"avg_score":     stored.AvgScore,
	}).Info("Generated induction plan")
	return stored, nil
}

// ClampHistoryLimit maps a requested history size onto [1, MaxHistoryLimit].
func ClampHistoryLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		return MaxHistoryLimit
	}
	return limit
}

// cannedRuns are the archived runs that precede any recorded history.
func (p *Planner) cannedRuns() []models.InductionRun {
	now := p.now().UTC()
	return []models.InductionRun{
		{ID: -1, GeneratedAt: now.Add(-24 * time.Hour), TrainsScheduled: 5, HighPriority: 2, AvgScore: 67.8, GeneratedBy: "System Auto", Status: "Completed"},
		{ID: -2, GeneratedAt: now.Add(-48 * time.Hour), TrainsScheduled: 3, HighPriority: 1, AvgScore: 54.2, GeneratedBy: "Manual Override", Status: "Partially Completed"},
	}
}

// History returns recorded runs newest first followed by the archived runs,
// truncated to the clamped limit.
func (p *Planner) History(ctx context.Context, limit int) ([]models.InductionRun, error) {
	limit = ClampHistoryLimit(limit)
	runs, err := p.runs.FindRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("find induction runs: %w", err)
	}
	runs = append(runs, p.cannedRuns()...)
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
