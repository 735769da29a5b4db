// Package insight extracts and summarizes health data with a generative model.
//
// Results are suggestions. Callers apply them to user state explicitly and a
// failure never touches stored data.
package insight

import (
	"context"
	"errors"

	"github.com/roach88/renalcare/internal/domain"
)

var (
	// ErrMalformedResponse means the model replied with something other than
	// the requested JSON shape.
	ErrMalformedResponse = errors.New("malformed model response")

	// ErrEmptyResponse means the model returned no candidates.
	ErrEmptyResponse = errors.New("empty model response")
)

// RecentVitals is how many of the latest vital records HealthInsights sends.
const RecentVitals = 5

// LabReport holds indicators read from a lab report. Zero means not found.
type LabReport struct {
	BloodPressureSys float64  `json:"bloodPressureSys,omitempty"`
	BloodPressureDia float64  `json:"bloodPressureDia,omitempty"`
	Weight           float64  `json:"weight,omitempty"`
	UrineProtein     string   `json:"urineProtein,omitempty"`
	Creatinine       *float64 `json:"creatinine,omitempty"`
	UricAcid         *float64 `json:"uricAcid,omitempty"`
	EGFR             *float64 `json:"eGFR,omitempty"`
	ReportDate       string   `json:"reportDate,omitempty"` // YYYY-MM-DD
}

// IsEmpty reports whether nothing was extracted.
func (r LabReport) IsEmpty() bool {
	return r == LabReport{}
}

// ScannedMedication is one line read from a prescription.
type ScannedMedication struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
}

// PrescriptionScan is the structured content of a prescription document.
type PrescriptionScan struct {
	PrescriptionDate string              `json:"prescriptionDate,omitempty"`
	Type             string              `json:"type,omitempty"`
	Medications      []ScannedMedication `json:"medications"`
}

// Recommendation is a suggested kidney-friendly dish.
type Recommendation struct {
	Name   string   `json:"name"`
	Reason string   `json:"reason"`
	Recipe string   `json:"recipe"`
	Tags   []string `json:"tags"`
}

// Service is the model-backed analysis surface.
type Service interface {
	// HealthInsights writes a report from the latest RecentVitals vitals,
	// the given meals and the active medications.
	HealthInsights(ctx context.Context, vitals []domain.VitalRecord, meals []domain.Meal, meds []domain.Medication) (string, error)
	// AnalyzeLabReport reads kidney indicators from an image or PDF.
	AnalyzeLabReport(ctx context.Context, data []byte, mimeType string) (*LabReport, error)
	// AnalyzePrescription reads medication lines from an image or PDF.
	AnalyzePrescription(ctx context.Context, data []byte, mimeType string) (*PrescriptionScan, error)
	// DietaryRecommendations suggests three dishes for today.
	DietaryRecommendations(ctx context.Context) ([]Recommendation, error)
}

// FallbackRecommendations is shown when DietaryRecommendations fails.
func FallbackRecommendations() []Recommendation {
	return []Recommendation{
		{
			Name:   "Steamed sea bass",
			Reason: "High-quality protein with moderate phosphorus, easy to digest.",
			Recipe: "Lay on ginger and scallion, steam on high heat for 8 minutes, finish with a little low-sodium soy sauce.",
			Tags:   []string{"quality protein", "low fat"},
		},
		{
			Name:   "Zucchini and egg stir-fry",
			Reason: "Low-potassium vegetable that adds essential amino acids.",
			Recipe: "Slice the zucchini, stir-fry quickly in little oil, fold in scrambled egg at the end.",
			Tags:   []string{"low potassium", "light"},
		},
		{
			Name:   "Winter melon and rib soup",
			Reason: "Mild diuretic; drink sparingly to keep sodium down.",
			Recipe: "Blanch the ribs, simmer with peeled winter melon on low heat, salt very lightly.",
			Tags:   []string{"diuretic", "sodium control"},
		},
	}
}

// lastVitals returns at most n of the newest vitals, oldest first.
func lastVitals(vitals []domain.VitalRecord, n int) []domain.VitalRecord {
	if len(vitals) <= n {
		return vitals
	}
	return vitals[len(vitals)-n:]
}
