package tracker

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/roach88/renalcare/internal/domain"
)

// BloodPressure is a systolic/diastolic pair in mmHg.
type BloodPressure struct {
	Sys float64 `json:"sys"`
	Dia float64 `json:"dia"`
}

func (bp BloodPressure) String() string {
	return fmt.Sprintf("%g/%g", bp.Sys, bp.Dia)
}

// NutrientTotals sums the meals logged on one day.
type NutrientTotals struct {
	Meals       int     `json:"meals"`
	ProteinG    float64 `json:"proteinG"`
	SodiumMg    float64 `json:"sodiumMg"`
	PotassiumMg float64 `json:"potassiumMg"`
	Calories    float64 `json:"calories"`
}

// Dashboard summarizes the active user's latest readings.
// Nil readings were never recorded.
type Dashboard struct {
	User         *domain.User        `json:"user"`
	DiagnosedFor string              `json:"diagnosedFor,omitempty"`
	BP           *BloodPressure      `json:"bloodPressure,omitempty"`
	EGFR         *float64            `json:"eGFR,omitempty"`
	Creatinine   *float64            `json:"creatinine,omitempty"`
	UricAcid     *float64            `json:"uricAcid,omitempty"`
	Weight       *float64            `json:"weight,omitempty"`
	UrineProtein domain.UrineProtein `json:"urineProtein,omitempty"`
	Today        NutrientTotals      `json:"today"`
	Medications  []domain.Medication `json:"medications"`
	Vitals       int                 `json:"vitalCount"`
}

// Dashboard builds the summary as of now.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	state, err := s.State(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	return Summarize(state, s.now()), nil
}

// Summarize builds a dashboard for state as of now.
//
// Each reading is the newest record where that measurement is non-zero, so a
// weight-only entry does not hide an earlier blood pressure.
func Summarize(state domain.AppState, now time.Time) Dashboard {
	d := Dashboard{
		User:        state.User.Clone(),
		Medications: domain.CloneMedications(state.Medications),
		Vitals:      len(state.Vitals),
		Today:       todayTotals(state.Meals, now),
	}
	if state.User != nil {
		d.DiagnosedFor = DiagnosedFor(state.User.DiagnosedDate, now)
	}

	for i := len(state.Vitals) - 1; i >= 0; i-- {
		v := state.Vitals[i]
		if d.BP == nil && v.BloodPressureSys != 0 {
			d.BP = &BloodPressure{Sys: v.BloodPressureSys, Dia: v.BloodPressureDia}
		}
		if d.Weight == nil && v.Weight != 0 {
			w := v.Weight
			d.Weight = &w
		}
		if d.UrineProtein == "" && v.UrineProtein != "" {
			d.UrineProtein = v.UrineProtein
		}
		d.EGFR = latest(d.EGFR, v.EGFR)
		d.Creatinine = latest(d.Creatinine, v.Creatinine)
		d.UricAcid = latest(d.UricAcid, v.UricAcid)
	}
	return d
}

// latest keeps found if already set, otherwise takes candidate when non-zero.
func latest(found, candidate *float64) *float64 {
	if found != nil || candidate == nil || *candidate == 0 {
		return found
	}
	v := *candidate
	return &v
}

func todayTotals(meals []domain.Meal, now time.Time) NutrientTotals {
	var t NutrientTotals
	y, m, d := now.Date()
	for _, meal := range meals {
		ts, err := time.Parse(time.RFC3339, meal.Timestamp)
		if err != nil {
			continue
		}
		my, mm, md := ts.In(now.Location()).Date()
		if my != y || mm != m || md != d {
			continue
		}
		t.Meals++
		t.ProteinG += meal.ProteinG
		t.SodiumMg += meal.SodiumMg
		t.PotassiumMg += meal.PotassiumMg
		t.Calories += meal.Calories
	}
	return t
}

// DiagnosedFor renders the time since diagnosis: "N days" under 30 days,
// "N months" under a year, else "Y years M months". Months are 30 days and
// partial days round up. Empty or unparseable dates render as "".
func DiagnosedFor(diagnosed string, now time.Time) string {
	start, ok := parseDate(diagnosed)
	if !ok {
		return ""
	}
	elapsed := now.Sub(start)
	if elapsed < 0 {
		elapsed = -elapsed
	}
	days := int(math.Ceil(elapsed.Hours() / 24))
	if days < 30 {
		return fmt.Sprintf("%d days", days)
	}
	months := days / 30
	if months < 12 {
		return fmt.Sprintf("%d months", months)
	}
	return fmt.Sprintf("%d years %d months", months/12, months%12)
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
