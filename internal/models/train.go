package models

import (
	"fmt"
	"strings"
)

// TrainStatus is the operational state of a train.
type TrainStatus string

const (
	StatusAvailable   TrainStatus = "Available"
	StatusInService   TrainStatus = "In Service"
	StatusMaintenance TrainStatus = "Maintenance"
)

// ParseTrainStatus matches a status case-insensitively.
func ParseTrainStatus(s string) (TrainStatus, bool) {
	for _, st := range []TrainStatus{StatusAvailable, StatusInService, StatusMaintenance} {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, true
		}
	}
	return "", false
}

// Train represents a metro trainset.
type Train struct {
	ID                int                 `bson:"_id" json:"id"`
	TrainNumber       string              `bson:"train_number" json:"trainNumber"`
	Model             string              `bson:"model" json:"model"`
	Status            TrainStatus         `bson:"status" json:"status"`
	Mileage           int                 `bson:"mileage" json:"mileage"` // in kilometers
	CurrentDepot      string              `bson:"current_depot" json:"currentDepot"`
	HealthScore       int                 `bson:"health_score" json:"healthScore"` // 0-100
	LastMaintenance   string              `bson:"last_maintenance" json:"lastMaintenance"`
	NextMaintenance   string              `bson:"next_maintenance" json:"nextMaintenance"`
	Manufacturer      string              `bson:"-" json:"manufacturer"`
	YearOfManufacture int                 `bson:"-" json:"yearOfManufacture"`
	Capacity          int                 `bson:"-" json:"capacity"`
	MaxSpeed          int                 `bson:"-" json:"maxSpeed"`
	PowerType         string              `bson:"-" json:"powerType"`
	AirConditioning   string              `bson:"-" json:"airConditioning"`
	WifiEnabled       bool                `bson:"-" json:"wifiEnabled"`
	CCTV              int                 `bson:"-" json:"cctv"`
	EmergencyBrakes   string              `bson:"-" json:"emergencyBrakes"`
	DoorSystem        string              `bson:"-" json:"doorSystem"`
	TotalServiceHours int                 `bson:"-" json:"totalServiceHours"`
	FitnessCert       *FitnessCertificate `bson:"-" json:"fitnessCertificate,omitempty"`
	Branding          *BrandingContract   `bson:"-" json:"brandingContract,omitempty"`
}

// FitnessCertificate is the safety certificate shown alongside a train.
type FitnessCertificate struct {
	CertificateNumber   string `json:"certificateNumber"`
	IssuedDate          string `json:"issuedDate"`
	ExpiryDate          string `json:"expiryDate"`
	CertifyingAuthority string `json:"certifyingAuthority"`
	Status              string `json:"status"`
	LastInspectionDate  string `json:"lastInspectionDate"`
	NextInspectionDue   string `json:"nextInspectionDue"`
}

// BrandingContract is the advertising wrap contract attached to a train.
type BrandingContract struct {
	CompanyName       string `json:"companyName"`
	ContractedHours   int    `json:"contractedHours"`
	UsedHours         int    `json:"usedHours"`
	ContractStartDate string `json:"contractStartDate"`
	ContractEndDate   string `json:"contractEndDate"`
	BrandingType      string `json:"brandingType"`
}

var brandingCompanies = []string{"Kerala Tourism", "Coca-Cola", "Samsung", "LuLu Group"}

// ManufacturerForModel maps a model tag to its builder.
func ManufacturerForModel(model string) string {
	switch {
	case strings.Contains(model, "A1"):
		return "Alstom"
	case strings.Contains(model, "B2"):
		return "BEML"
	default:
		return "Siemens"
	}
}

// Decorate fills the display-only fields derived from the stored ones.
// The certificate and branding records are a pure function of ID, mileage and health.
func (t *Train) Decorate() {
	t.Manufacturer = ManufacturerForModel(t.Model)
	t.YearOfManufacture = 2020 + t.ID%4
	t.Capacity = 1200
	t.MaxSpeed = 80
	t.PowerType = "Electric"
	t.AirConditioning = "Yes"
	t.WifiEnabled = true
	t.CCTV = 8
	t.EmergencyBrakes = "Functional"
	t.DoorSystem = "Automatic"
	t.TotalServiceHours = t.Mileage * 2

	certStatus := "Under Review"
	if t.HealthScore > 70 {
		certStatus = "Valid"
	}
	t.FitnessCert = &FitnessCertificate{
		CertificateNumber:   fmt.Sprintf("FC-KMRL-%03d-2024", t.ID),
		IssuedDate:          "2024-01-01",
		ExpiryDate:          "2025-01-01",
		CertifyingAuthority: "Commissioner of Railway Safety (CRS)",
		Status:              certStatus,
		LastInspectionDate:  t.LastMaintenance,
		NextInspectionDue:   t.NextMaintenance,
	}

	wrap := "Partial Wrap"
	if t.ID%2 == 0 {
		wrap = "Full Wrap"
	}
	idx := t.ID % len(brandingCompanies)
	if idx < 0 {
		idx = -idx
	}
	t.Branding = &BrandingContract{
		CompanyName:       brandingCompanies[idx],
		ContractedHours:   2400,
		UsedHours:         t.Mileage / 20,
		ContractStartDate: "2024-01-01",
		ContractEndDate:   "2024-12-31",
		BrandingType:      wrap,
	}
}

// CreateTrainRequest is the body accepted by the train creation endpoint.
type CreateTrainRequest struct {
	TrainNumber    string `json:"train_number"`
	Model          string `json:"model"`
	DepotID        int    `json:"depot_id"`
	CurrentMileage int    `json:"current_mileage"`
}

// TrainFilter narrows a train listing. An empty Status matches every train.
type TrainFilter struct {
	Status string
}

// Matches reports whether t passes the filter.
func (f TrainFilter) Matches(t Train) bool {
	if f.Status == "" {
		return true
	}
	return strings.EqualFold(string(t.Status), strings.TrimSpace(f.Status))
}
