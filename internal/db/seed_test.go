package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ukydev/metro-fleet/internal/models"
)

func TestSeedTrains(t *testing.T) {
	trains := SeedTrains()
	assert.Len(t, trains, 20)

	counts := map[models.TrainStatus]int{}
	seen := map[string]bool{}
	for i, tr := range trains {
		assert.Equal(t, i+1, tr.ID)
		assert.False(t, seen[tr.TrainNumber], "duplicate %s", tr.TrainNumber)
		seen[tr.TrainNumber] = true
		counts[tr.Status]++
	}
	assert.Equal(t, 14, counts[models.StatusAvailable])
	assert.Equal(t, 2, counts[models.StatusInService])
	assert.Equal(t, 4, counts[models.StatusMaintenance])
}

func TestDepotName(t *testing.T) {
	assert.Equal(t, "Aluva Depot", DepotName(1))
	assert.Equal(t, "Pettah Depot", DepotName(2))
	assert.Equal(t, "Kalamassery Depot", DepotName(3))
	assert.Equal(t, "Kalamassery Depot", DepotName(42))
}

func TestSeedCatalogs(t *testing.T) {
	assert.Len(t, SeedDepots(), 3)
	alerts := SeedAlerts()
	assert.Len(t, alerts, 4)
	assert.Nil(t, alerts[2].TrainID)
	assert.Len(t, SeedMaintenance(), 3)
}
