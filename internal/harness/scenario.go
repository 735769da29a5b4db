package harness

import (
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// Step actions.
const (
	ActionLogin              = "login"
	ActionLogout             = "logout"
	ActionAddVital           = "add_vital"
	ActionAddMedication      = "add_medication"
	ActionDeleteMedication   = "delete_medication"
	ActionMarkTaken          = "mark_taken"
	ActionAddMeal            = "add_meal"
	ActionImportPrescription = "import_prescription"
	ActionDeletePrescription = "delete_prescription"
	ActionUpdateProfile      = "update_profile"
	ActionSetSession         = "set_session"
	ActionRestart            = "restart"
	ActionSetClock           = "set_clock"
	ActionTick               = "tick"
)

var knownActions = []string{
	ActionLogin, ActionLogout, ActionAddVital, ActionAddMedication,
	ActionDeleteMedication, ActionMarkTaken, ActionAddMeal,
	ActionImportPrescription, ActionDeletePrescription, ActionUpdateProfile,
	ActionSetSession, ActionRestart, ActionSetClock, ActionTick,
}

// Step outcomes. A step with no expect clause must end in OutcomeOK.
const (
	OutcomeOK            = "ok"
	OutcomeNoActiveUser  = "no_active_user"
	OutcomeNotFound      = "not_found"
	OutcomeInvalid       = "invalid"
	OutcomeEmailRequired = "email_required"
	OutcomeError         = "error"
)

var knownOutcomes = []string{
	OutcomeOK, OutcomeNoActiveUser, OutcomeNotFound, OutcomeInvalid,
	OutcomeEmailRequired, OutcomeError,
}

// DefaultStart is the clock reading for scenarios without a start time.
var DefaultStart = time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC)

// Scenario is a scripted run against a fresh tracker.
type Scenario struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Start       string      `yaml:"start,omitempty"` // RFC 3339
	Steps       []Step      `yaml:"steps"`
	Assertions  []Assertion `yaml:"assertions"`
}

// Step runs one action. Args are decoded into the action's input through
// their JSON field names, so a medication step takes the same keys a stored
// medication has.
type Step struct {
	Do     string         `yaml:"do"`
	Args   map[string]any `yaml:"args,omitempty"`
	Expect string         `yaml:"expect,omitempty"`
}

// expected returns the outcome the step must end in.
func (s Step) expected() string {
	if s.Expect == "" {
		return OutcomeOK
	}
	return s.Expect
}

// Assertion types.
const (
	AssertNotificationCount    = "notification_count"
	AssertNotificationContains = "notification_contains"
	AssertNotificationOrder    = "notification_order"
	AssertActiveUser           = "active_user"
	AssertFinalState           = "final_state"
)

// Assertion checks the result once every step has run.
//
//   - notification_count: exactly Count notifications were delivered
//   - notification_contains: some notification body equals Body
//   - notification_order: Bodies were delivered in this relative order
//   - active_user: the resolved active user is Email ("" for nobody)
//   - final_state: User's stored state matches Expect
//
// final_state keys "vitals", "medications", "meals" and "prescriptions"
// compare list lengths, "registered" compares whether User exists at all,
// and any other key compares the user field with that JSON name.
type Assertion struct {
	Type   string         `yaml:"type"`
	Count  int            `yaml:"count,omitempty"`
	Body   string         `yaml:"body,omitempty"`
	Bodies []string       `yaml:"bodies,omitempty"`
	Email  string         `yaml:"email,omitempty"`
	User   string         `yaml:"user,omitempty"`
	Expect map[string]any `yaml:"expect,omitempty"`
}

// LoadScenario reads and validates a scenario file. Unknown YAML fields are
// rejected so a misspelled key fails loudly instead of being ignored.
func LoadScenario(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &s, nil
}

// startTime returns the parsed start time or DefaultStart.
func (s *Scenario) startTime() (time.Time, error) {
	if s.Start == "" {
		return DefaultStart, nil
	}
	t, err := time.Parse(time.RFC3339, s.Start)
	if err != nil {
		return time.Time{}, fmt.Errorf("start: %w", err)
	}
	return t, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if _, err := s.startTime(); err != nil {
		return err
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.Do == "" {
			return fmt.Errorf("steps[%d]: do is required", i)
		}
		if !slices.Contains(knownActions, step.Do) {
			return fmt.Errorf("steps[%d]: unknown action %q", i, step.Do)
		}
		if !slices.Contains(knownOutcomes, step.expected()) {
			return fmt.Errorf("steps[%d]: unknown expect %q", i, step.Expect)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertNotificationCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for notification_count", index)
		}
	case AssertNotificationContains:
		if a.Body == "" {
			return fmt.Errorf("assertions[%d]: body is required for notification_contains", index)
		}
	case AssertNotificationOrder:
		if len(a.Bodies) == 0 {
			return fmt.Errorf("assertions[%d]: bodies list is required for notification_order", index)
		}
	case AssertActiveUser:
	case AssertFinalState:
		if a.User == "" {
			return fmt.Errorf("assertions[%d]: user is required for final_state", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
