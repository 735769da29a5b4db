package tracker

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/renalcare/internal/domain"
	"github.com/roach88/renalcare/internal/projector"
	"github.com/roach88/renalcare/internal/schema"
)

// AddVital appends a vital record. ID and timestamp are filled when empty.
func (s *Service) AddVital(ctx context.Context, v domain.VitalRecord) (domain.VitalRecord, error) {
	if v.ID == "" {
		v.ID = s.ids.Generate()
	}
	if v.Timestamp == "" {
		v.Timestamp = s.timestamp()
	}
	if err := s.validator.Validate(schema.KindVitalRecord, v); err != nil {
		return domain.VitalRecord{}, err
	}

	err := s.modify(ctx, func(st domain.AppState) (projector.Update, error) {
		vitals := append(st.Vitals, v)
		return projector.Update{Vitals: &vitals}, nil
	})
	if err != nil {
		return domain.VitalRecord{}, err
	}
	return v, nil
}

// AddMedication appends a medication, defaulting its reminders to
// DefaultReminder when none are given.
func (s *Service) AddMedication(ctx context.Context, m domain.Medication) (domain.Medication, error) {
	m = s.prepareMedication(m)
	if err := s.validator.Validate(schema.KindMedication, m); err != nil {
		return domain.Medication{}, err
	}

	err := s.modify(ctx, func(st domain.AppState) (projector.Update, error) {
		meds := append(st.Medications, m)
		return projector.Update{Medications: &meds}, nil
	})
	if err != nil {
		return domain.Medication{}, err
	}
	return m, nil
}

// DeleteMedication removes a medication. Archived prescriptions keep their
// extracted copy.
func (s *Service) DeleteMedication(ctx context.Context, id string) error {
	return s.modify(ctx, func(st domain.AppState) (projector.Update, error) {
		i := slices.IndexFunc(st.Medications, func(m domain.Medication) bool { return m.ID == id })
		if i < 0 {
			return projector.Update{}, fmt.Errorf("medication %s: %w", id, domain.ErrNotFound)
		}
		meds := slices.Delete(st.Medications, i, i+1)
		return projector.Update{Medications: &meds}, nil
	})
}

// MarkTaken records when a medication was last taken.
func (s *Service) MarkTaken(ctx context.Context, id string) (domain.Medication, error) {
	var taken domain.Medication
	err := s.modify(ctx, func(st domain.AppState) (projector.Update, error) {
		i := slices.IndexFunc(st.Medications, func(m domain.Medication) bool { return m.ID == id })
		if i < 0 {
			return projector.Update{}, fmt.Errorf("medication %s: %w", id, domain.ErrNotFound)
		}
		st.Medications[i].LastTaken = s.timestamp()
		taken = st.Medications[i]
		return projector.Update{Medications: &st.Medications}, nil
	})
	if err != nil {
		return domain.Medication{}, err
	}
	return taken, nil
}

// AddMeal appends a meal. ID and timestamp are filled when empty.
func (s *Service) AddMeal(ctx context.Context, m domain.Meal) (domain.Meal, error) {
	if m.ID == "" {
		m.ID = s.ids.Generate()
	}
	if m.Timestamp == "" {
		m.Timestamp = s.timestamp()
	}
	if err := s.validator.Validate(schema.KindMeal, m); err != nil {
		return domain.Meal{}, err
	}

	err := s.modify(ctx, func(st domain.AppState) (projector.Update, error) {
		meals := append(st.Meals, m)
		return projector.Update{Meals: &meals}, nil
	})
	if err != nil {
		return domain.Meal{}, err
	}
	return m, nil
}

// ImportPrescription archives rx and adds meds to the active medication list.
//
// Each medication gets a new ID, a back-reference to the prescription and the
// default reminder when it has none. The prescription stores an independent
// copy, so later medication edits or deletions leave the archive unchanged.
func (s *Service) ImportPrescription(ctx context.Context, rx domain.Prescription, meds []domain.Medication) (domain.Prescription, error) {
	if rx.ID == "" {
		rx.ID = s.ids.Generate()
	}
	if rx.Date == "" {
		rx.Date = s.timestamp()
	}
	if rx.Type == "" {
		rx.Type = domain.PrescriptionWestern
	}

	added := make([]domain.Medication, len(meds))
	for i, m := range meds {
		m.ID = ""
		m = s.prepareMedication(m)
		m.SourcePrescriptionID = rx.ID
		added[i] = m
	}
	rx.ExtractedMeds = domain.CloneMedications(added)

	if err := s.validator.Validate(schema.KindPrescription, rx); err != nil {
		return domain.Prescription{}, err
	}

	err := s.modify(ctx, func(st domain.AppState) (projector.Update, error) {
		prescriptions := append(st.Prescriptions, rx)
		medications := append(st.Medications, added...)
		return projector.Update{Prescriptions: &prescriptions, Medications: &medications}, nil
	})
	if err != nil {
		return domain.Prescription{}, err
	}
	return rx, nil
}

// DeletePrescription removes an archived prescription. Medications imported
// from it stay active.
func (s *Service) DeletePrescription(ctx context.Context, id string) error {
	return s.modify(ctx, func(st domain.AppState) (projector.Update, error) {
		i := slices.IndexFunc(st.Prescriptions, func(p domain.Prescription) bool { return p.ID == id })
		if i < 0 {
			return projector.Update{}, fmt.Errorf("prescription %s: %w", id, domain.ErrNotFound)
		}
		prescriptions := slices.Delete(st.Prescriptions, i, i+1)
		return projector.Update{Prescriptions: &prescriptions}, nil
	})
}

func (s *Service) prepareMedication(m domain.Medication) domain.Medication {
	if m.ID == "" {
		m.ID = s.ids.Generate()
	}
	if len(m.Reminders) == 0 {
		m.Reminders = []string{DefaultReminder}
	} else {
		m.Reminders = slices.Clone(m.Reminders)
	}
	return m
}
