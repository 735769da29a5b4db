package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/renalcare/internal/domain"
)

func sampleResult() *Result {
	age := 61
	r := NewResult()
	r.addStep(ActionLogin, OutcomeOK, "08:00:00")
	r.addNotification("Time to take Losartan (50mg)", "08:00:00")
	r.addNotification("Time to take Calcitriol (0.25mcg)", "08:00:00")
	r.ActiveUser = "ann@example.com"
	r.State = domain.Registry{
		"ann@example.com": {
			User:        &domain.User{ID: "id-1", Name: "Ann", Email: "ann@example.com", Age: &age, CKDStage: domain.Stage3b},
			Medications: []domain.Medication{{ID: "id-2", Name: "Losartan"}},
		},
	}
	return r
}

func TestEvaluateAssertions(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		wantErr   string
	}{
		{"count matches", Assertion{Type: AssertNotificationCount, Count: 2}, ""},
		{"count differs", Assertion{Type: AssertNotificationCount, Count: 1}, "Expected: 1 notification(s)"},
		{"contains", Assertion{Type: AssertNotificationContains, Body: "Time to take Losartan (50mg)"}, ""},
		{"contains missing", Assertion{Type: AssertNotificationContains, Body: "Time to take Aspirin ()"}, "not delivered"},
		{"order", Assertion{Type: AssertNotificationOrder, Bodies: []string{
			"Time to take Losartan (50mg)", "Time to take Calcitriol (0.25mcg)",
		}}, ""},
		{"order reversed", Assertion{Type: AssertNotificationOrder, Bodies: []string{
			"Time to take Calcitriol (0.25mcg)", "Time to take Losartan (50mg)",
		}}, "missing or out of order"},
		{"active user", Assertion{Type: AssertActiveUser, Email: " ann@example.com "}, ""},
		{"active user differs", Assertion{Type: AssertActiveUser}, "Expected: nobody logged in"},
		{"final state", Assertion{Type: AssertFinalState, User: "ann@example.com", Expect: map[string]any{
			"registered": true, "name": "Ann", "age": 61, "ckdStage": "3b", "medications": 1, "vitals": 0,
		}}, ""},
		{"final state differs", Assertion{Type: AssertFinalState, User: "ann@example.com", Expect: map[string]any{
			"medications": 2,
		}}, "medications: want 2, got 1"},
		{"final state unregistered", Assertion{Type: AssertFinalState, User: "bob@example.com", Expect: map[string]any{
			"registered": false, "vitals": 0,
		}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(sampleResult(), []Assertion{tt.assertion})
			if tt.wantErr == "" {
				assert.Empty(t, errs)
				return
			}
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], tt.wantErr)
		})
	}
}

func TestAssertionError_IncludesTrace(t *testing.T) {
	err := &AssertionError{
		Type:     AssertNotificationCount,
		Expected: "1 notification(s)",
		Actual:   "2 notification(s)",
		Trace:    sampleResult().Trace,
	}

	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: notification_count")
	assert.Contains(t, msg, "[1] 08:00:00 login -> ok")
	assert.Contains(t, msg, `[2] 08:00:00 notify "Time to take Losartan (50mg)"`)
}

func TestResult_AddError(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Pass)

	r.AddError("boom")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"boom"}, r.Errors)
}
