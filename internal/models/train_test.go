package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTrainStatus(t *testing.T) {
	tests := []struct {
		in   string
		want TrainStatus
		ok   bool
	}{
		{"available", StatusAvailable, true},
		{"IN SERVICE", StatusInService, true},
		{" Maintenance ", StatusMaintenance, true},
		{"retired", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseTrainStatus(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTrainFilter_Matches(t *testing.T) {
	train := Train{Status: StatusInService}

	assert.True(t, TrainFilter{}.Matches(train))
	assert.True(t, TrainFilter{Status: "in service"}.Matches(train))
	assert.False(t, TrainFilter{Status: "Available"}.Matches(train))
}

func TestTrain_Decorate(t *testing.T) {
	train := Train{
		ID:              6,
		Model:           "Metro-A1",
		Mileage:         33000,
		HealthScore:     88,
		LastMaintenance: "2024-01-18",
		NextMaintenance: "2024-02-18",
	}
	train.Decorate()

	assert.Equal(t, "Alstom", train.Manufacturer)
	assert.Equal(t, 2022, train.YearOfManufacture)
	assert.Equal(t, 66000, train.TotalServiceHours)
	if assert.NotNil(t, train.FitnessCert) {
		assert.Equal(t, "FC-KMRL-006-2024", train.FitnessCert.CertificateNumber)
		assert.Equal(t, "Valid", train.FitnessCert.Status)
		assert.Equal(t, "2024-02-18", train.FitnessCert.NextInspectionDue)
	}
	if assert.NotNil(t, train.Branding) {
		assert.Equal(t, "Samsung", train.Branding.CompanyName)
		assert.Equal(t, 1650, train.Branding.UsedHours)
		assert.Equal(t, "Full Wrap", train.Branding.BrandingType)
	}
}

func TestTrain_DecorateUnderReview(t *testing.T) {
	train := Train{ID: 3, Model: "Metro-C3", HealthScore: 65}
	train.Decorate()

	assert.Equal(t, "Siemens", train.Manufacturer)
	assert.Equal(t, "Under Review", train.FitnessCert.Status)
	assert.Equal(t, "Partial Wrap", train.Branding.BrandingType)
}

func TestManufacturerForModel(t *testing.T) {
	assert.Equal(t, "Alstom", ManufacturerForModel("Metro-A1"))
	assert.Equal(t, "BEML", ManufacturerForModel("Metro-B2"))
	assert.Equal(t, "Siemens", ManufacturerForModel("Metro-C3"))
}
