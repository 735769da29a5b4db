package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFieldNaming(t *testing.T) {
	state := NewAppState(&User{ID: "u1", Name: "Ann", Email: "ann@example.com", CKDStage: Stage3a})
	state.Medications = []Medication{{ID: "m1", Name: "Losartan", Reminders: []string{"08:00"}, SourcePrescriptionID: "p1"}}

	data, err := json.Marshal(state)
	require.NoError(t, err)

	// Stored registries keep the camelCase shape
	assert.Contains(t, string(data), `"ckdStage"`)
	assert.Contains(t, string(data), `"sourcePrescriptionId"`)
	assert.Contains(t, string(data), `"prescriptions":[]`)
	assert.NotContains(t, string(data), `"ckd_stage"`)
}

func TestEmptyStateEncodesAllLists(t *testing.T) {
	data, err := json.Marshal(EmptyState())
	require.NoError(t, err)
	assert.JSONEq(t, `{"user":null,"vitals":[],"medications":[],"meals":[],"prescriptions":[]}`, string(data))
}

func TestNormalize_FillsMissingLists(t *testing.T) {
	var s AppState
	require.NoError(t, json.Unmarshal([]byte(`{"user":{"id":"u","name":"n","email":"e"},"vitals":[]}`), &s))
	assert.Nil(t, s.Prescriptions)

	s.Normalize()
	assert.NotNil(t, s.Prescriptions)
	assert.NotNil(t, s.Meals)
	assert.NotNil(t, s.Medications)
}

func TestClone_IsDeep(t *testing.T) {
	age := 50
	cr := 120.0
	orig := NewAppState(&User{Email: "a@x", Age: &age})
	orig.Vitals = []VitalRecord{{ID: "v1", Creatinine: &cr, Symptoms: []string{"fatigue"}}}
	orig.Medications = []Medication{{ID: "m1", Reminders: []string{"08:00"}}}
	orig.Prescriptions = []Prescription{{ID: "p1", ExtractedMeds: []Medication{{ID: "m1", Reminders: []string{"08:00"}}}}}

	c := orig.Clone()
	*c.User.Age = 60
	*c.Vitals[0].Creatinine = 1
	c.Vitals[0].Symptoms[0] = "nausea"
	c.Medications[0].Reminders[0] = "09:00"
	c.Prescriptions[0].ExtractedMeds[0].Reminders[0] = "10:00"

	assert.Equal(t, 50, *orig.User.Age)
	assert.Equal(t, 120.0, *orig.Vitals[0].Creatinine)
	assert.Equal(t, "fatigue", orig.Vitals[0].Symptoms[0])
	assert.Equal(t, "08:00", orig.Medications[0].Reminders[0])
	assert.Equal(t, "08:00", orig.Prescriptions[0].ExtractedMeds[0].Reminders[0])
}

func TestClone_NilUser(t *testing.T) {
	c := EmptyState().Clone()
	assert.Nil(t, c.User)
	assert.NotNil(t, c.Meals)
}

func TestMedication_HasReminder(t *testing.T) {
	m := Medication{Reminders: []string{"08:00", "20:00"}}
	assert.True(t, m.HasReminder("08:00"))
	assert.True(t, m.HasReminder("20:00"))
	assert.False(t, m.HasReminder("8:00"))
	assert.False(t, m.HasReminder("08:01"))
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trims whitespace", "  ann@example.com\n", "ann@example.com"},
		{"preserves case", "Ann@Example.com", "Ann@Example.com"},
		{"composes NFD", "jose\u0301@example.com", "jos\u00e9@example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeEmail(tt.in))
		})
	}
}

func TestLocalPart(t *testing.T) {
	assert.Equal(t, "ann", LocalPart("ann@example.com"))
	assert.Equal(t, "noat", LocalPart("noat"))
	assert.Equal(t, "@lead", LocalPart("@lead"))
}
