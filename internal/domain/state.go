package domain

import "slices"

// Storage keys shared by the registry and session stores.
const (
	RegistryKey = "renal_care_users_registry"
	SessionKey  = "renal_care_active_session"

	// RegistryCorruptKey holds the last registry value that failed to decode.
	RegistryCorruptKey = RegistryKey + ".corrupt"
)

// AppState is everything stored for one user.
// User is nil only for the ephemeral state projected when nobody is logged in.
type AppState struct {
	User          *User          `json:"user"`
	Vitals        []VitalRecord  `json:"vitals"`
	Medications   []Medication   `json:"medications"`
	Meals         []Meal         `json:"meals"`
	Prescriptions []Prescription `json:"prescriptions"`
}

// Registry maps a normalized email to that user's state.
type Registry map[string]AppState

// NewAppState returns a fresh state for user with empty, non-nil lists.
func NewAppState(user *User) AppState {
	s := AppState{User: user}
	s.Normalize()
	return s
}

// EmptyState is the state shown when no user is active.
func EmptyState() AppState {
	return NewAppState(nil)
}

// Normalize replaces nil lists with empty ones so encoded state always carries
// all four lists. Older registries may lack prescriptions entirely.
func (s *AppState) Normalize() {
	if s.Vitals == nil {
		s.Vitals = []VitalRecord{}
	}
	if s.Medications == nil {
		s.Medications = []Medication{}
	}
	if s.Meals == nil {
		s.Meals = []Meal{}
	}
	if s.Prescriptions == nil {
		s.Prescriptions = []Prescription{}
	}
}

// Clone returns a deep copy of s.
func (s AppState) Clone() AppState {
	out := AppState{
		User:          s.User.Clone(),
		Vitals:        make([]VitalRecord, len(s.Vitals)),
		Medications:   CloneMedications(s.Medications),
		Meals:         slices.Clone(s.Meals),
		Prescriptions: make([]Prescription, len(s.Prescriptions)),
	}
	if out.Meals == nil {
		out.Meals = []Meal{}
	}
	for i, v := range s.Vitals {
		out.Vitals[i] = v.Clone()
	}
	for i, p := range s.Prescriptions {
		p.ExtractedMeds = CloneMedications(p.ExtractedMeds)
		out.Prescriptions[i] = p
	}
	return out
}

// Clone returns a deep copy of u. A nil user clones to nil.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Age = clonePtr(u.Age)
	c.BaselineWeight = clonePtr(u.BaselineWeight)
	return &c
}

// Clone returns a deep copy of v.
func (v VitalRecord) Clone() VitalRecord {
	v.Creatinine = clonePtr(v.Creatinine)
	v.UricAcid = clonePtr(v.UricAcid)
	v.EGFR = clonePtr(v.EGFR)
	v.Symptoms = slices.Clone(v.Symptoms)
	return v
}

// CloneMedications deep-copies a medication list, never returning nil.
func CloneMedications(meds []Medication) []Medication {
	out := make([]Medication, len(meds))
	for i, m := range meds {
		m.Reminders = slices.Clone(m.Reminders)
		out[i] = m
	}
	return out
}

// Clone returns a deep copy of r.
func (r Registry) Clone() Registry {
	out := make(Registry, len(r))
	for k, v := range r {
		out[k] = v.Clone()
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
