package harness

import "github.com/roach88/renalcare/internal/domain"

// Trace event types.
const (
	EventStep         = "step"
	EventNotification = "notification"
)

// TraceEvent is one entry in a scenario trace: a step the scenario ran or a
// reminder the scheduler delivered.
type TraceEvent struct {
	Seq     int    `json:"seq"`
	Type    string `json:"type"`
	Action  string `json:"action,omitempty"`
	Outcome string `json:"outcome,omitempty"`
	At      string `json:"at"`
	Body    string `json:"body,omitempty"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is false when a step outcome or an assertion did not match.
	Pass bool `json:"pass"`

	// Trace lists steps and notifications in the order they happened.
	Trace []TraceEvent `json:"trace"`

	// Errors describes every mismatch. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// State is the registry as persisted after the last step.
	State domain.Registry `json:"state,omitempty"`

	// ActiveUser is the session's resolved email after the last step, or ""
	// when nobody is logged in.
	ActiveUser string `json:"activeUser,omitempty"`
}

// NewResult creates a passing result with an empty trace.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a mismatch and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Notifications returns the notification bodies in delivery order.
func (r *Result) Notifications() []string {
	var bodies []string
	for _, e := range r.Trace {
		if e.Type == EventNotification {
			bodies = append(bodies, e.Body)
		}
	}
	return bodies
}

func (r *Result) addStep(action, outcome, at string) {
	r.Trace = append(r.Trace, TraceEvent{
		Seq:     len(r.Trace) + 1,
		Type:    EventStep,
		Action:  action,
		Outcome: outcome,
		At:      at,
	})
}

func (r *Result) addNotification(body, at string) {
	r.Trace = append(r.Trace, TraceEvent{
		Seq:  len(r.Trace) + 1,
		Type: EventNotification,
		At:   at,
		Body: body,
	})
}
