package tracker

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/roach88/renalcare/internal/domain"
	"github.com/roach88/renalcare/internal/insight"
)

// Document is an uploaded scan.
type Document struct {
	FileName string
	MimeType string
	Data     []byte
}

// Insights asks the model for a report on the active user's records.
func (s *Service) Insights(ctx context.Context) (string, error) {
	if s.insight == nil {
		return "", ErrInsightUnavailable
	}
	state, err := s.State(ctx)
	if err != nil {
		return "", err
	}
	if len(state.Vitals) == 0 {
		return "", ErrNoVitals
	}
	return s.insight.HealthInsights(ctx, state.Vitals, state.Meals, state.Medications)
}

// Recommendations returns today's suggested dishes. A model failure is logged
// and the built-in suggestions are returned with fallback=true.
func (s *Service) Recommendations(ctx context.Context) (recs []insight.Recommendation, fallback bool) {
	if s.insight != nil {
		recs, err := s.insight.DietaryRecommendations(ctx)
		if err == nil && len(recs) > 0 {
			return recs, false
		}
		s.logger.Warn("dietary recommendations unavailable, using built-in list", "error", err)
	}
	return insight.FallbackRecommendations(), true
}

// ScanLabReport reads a lab report without saving anything.
func (s *Service) ScanLabReport(ctx context.Context, doc Document) (*insight.LabReport, error) {
	if s.insight == nil {
		return nil, ErrInsightUnavailable
	}
	report, err := s.insight.AnalyzeLabReport(ctx, doc.Data, doc.MimeType)
	if err != nil {
		return nil, err
	}
	if report == nil || report.IsEmpty() {
		return nil, ErrNothingExtracted
	}
	return report, nil
}

// ApplyLabReport records a confirmed lab report as a vital record.
// Missing readings stay zero, urine protein defaults to negative and the
// timestamp is the report date when one was read.
func (s *Service) ApplyLabReport(ctx context.Context, report insight.LabReport) (domain.VitalRecord, error) {
	if report.IsEmpty() {
		return domain.VitalRecord{}, ErrNothingExtracted
	}
	v := domain.VitalRecord{
		BloodPressureSys: report.BloodPressureSys,
		BloodPressureDia: report.BloodPressureDia,
		Weight:           report.Weight,
		UrineProtein:     domain.UrineProtein(report.UrineProtein),
		Creatinine:       report.Creatinine,
		UricAcid:         report.UricAcid,
		EGFR:             report.EGFR,
	}
	if v.UrineProtein == "" {
		v.UrineProtein = domain.ProteinNegative
	}
	if t, err := time.Parse(time.DateOnly, report.ReportDate); err == nil {
		v.Timestamp = t.UTC().Format(time.RFC3339)
	}
	return s.AddVital(ctx, v)
}

// ScanPrescription reads a prescription without saving anything.
func (s *Service) ScanPrescription(ctx context.Context, doc Document) (*insight.PrescriptionScan, error) {
	if s.insight == nil {
		return nil, ErrInsightUnavailable
	}
	scan, err := s.insight.AnalyzePrescription(ctx, doc.Data, doc.MimeType)
	if err != nil {
		return nil, err
	}
	if scan == nil || len(scan.Medications) == 0 {
		return nil, ErrNothingExtracted
	}
	return scan, nil
}

// ApplyPrescriptionScan archives doc with the scanned medications and adds
// them to the active list. Unknown prescription types are stored as western.
func (s *Service) ApplyPrescriptionScan(ctx context.Context, scan insight.PrescriptionScan, doc Document) (domain.Prescription, error) {
	if len(scan.Medications) == 0 {
		return domain.Prescription{}, ErrNothingExtracted
	}
	rx := domain.Prescription{
		Date:     scan.PrescriptionDate,
		Type:     domain.PrescriptionType(scan.Type),
		FileName: doc.FileName,
		FileData: base64.StdEncoding.EncodeToString(doc.Data),
		MimeType: doc.MimeType,
	}
	switch rx.Type {
	case domain.PrescriptionHerbal, domain.PrescriptionWestern, domain.PrescriptionIntegrated:
	default:
		rx.Type = domain.PrescriptionWestern
	}

	meds := make([]domain.Medication, len(scan.Medications))
	for i, m := range scan.Medications {
		meds[i] = domain.Medication{Name: m.Name, Dosage: m.Dosage, Frequency: m.Frequency}
	}
	return s.ImportPrescription(ctx, rx, meds)
}
