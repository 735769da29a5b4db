package harness

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/roach88/renalcare/internal/domain"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		switch event.Type {
		case EventStep:
			fmt.Fprintf(&buf, "  [%d] %s %s -> %s\n", event.Seq, event.At, event.Action, event.Outcome)
		case EventNotification:
			fmt.Fprintf(&buf, "  [%d] %s notify %q\n", event.Seq, event.At, event.Body)
		}
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against result and returns one
// message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion) error {
	switch a.Type {
	case AssertNotificationCount:
		return assertNotificationCount(result, a)
	case AssertNotificationContains:
		return assertNotificationContains(result, a)
	case AssertNotificationOrder:
		return assertNotificationOrder(result, a)
	case AssertActiveUser:
		return assertActiveUser(result, a)
	case AssertFinalState:
		return assertFinalState(result, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertNotificationCount(result *Result, a Assertion) error {
	got := len(result.Notifications())
	if got == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertNotificationCount,
		Expected: fmt.Sprintf("%d notification(s)", a.Count),
		Actual:   fmt.Sprintf("%d notification(s)", got),
		Trace:    result.Trace,
	}
}

func assertNotificationContains(result *Result, a Assertion) error {
	if slices.Contains(result.Notifications(), a.Body) {
		return nil
	}
	return &AssertionError{
		Type:     AssertNotificationContains,
		Expected: fmt.Sprintf("notification %q", a.Body),
		Actual:   "not delivered",
		Trace:    result.Trace,
	}
}

// assertNotificationOrder checks that bodies were delivered in the given
// relative order. Other notifications may appear in between.
func assertNotificationOrder(result *Result, a Assertion) error {
	next := 0
	for _, body := range result.Notifications() {
		if next < len(a.Bodies) && body == a.Bodies[next] {
			next++
		}
	}
	if next == len(a.Bodies) {
		return nil
	}
	return &AssertionError{
		Type:     AssertNotificationOrder,
		Expected: fmt.Sprintf("notifications in order %q", a.Bodies),
		Actual:   fmt.Sprintf("%q missing or out of order", a.Bodies[next]),
		Trace:    result.Trace,
	}
}

func assertActiveUser(result *Result, a Assertion) error {
	want := domain.NormalizeEmail(a.Email)
	if result.ActiveUser == want {
		return nil
	}
	return &AssertionError{
		Type:     AssertActiveUser,
		Expected: describeUser(want),
		Actual:   describeUser(result.ActiveUser),
		Trace:    result.Trace,
	}
}

func describeUser(email string) string {
	if email == "" {
		return "nobody logged in"
	}
	return email
}

// assertFinalState compares the stored state of one user with the expected
// values. Values are compared by their printed form, so 3 and 3.0 match.
func assertFinalState(result *Result, a Assertion) error {
	state, registered := result.State[domain.NormalizeEmail(a.User)]

	var user map[string]any
	if registered && state.User != nil {
		data, err := json.Marshal(state.User)
		if err != nil {
			return fmt.Errorf("encode user %s: %w", a.User, err)
		}
		if err := json.Unmarshal(data, &user); err != nil {
			return fmt.Errorf("decode user %s: %w", a.User, err)
		}
	}

	keys := make([]string, 0, len(a.Expect))
	for k := range a.Expect {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var mismatches []string
	for _, key := range keys {
		var got any
		switch key {
		case "registered":
			got = registered
		case "vitals":
			got = len(state.Vitals)
		case "medications":
			got = len(state.Medications)
		case "meals":
			got = len(state.Meals)
		case "prescriptions":
			got = len(state.Prescriptions)
		default:
			got = user[key]
		}
		if want := a.Expect[key]; fmt.Sprint(want) != fmt.Sprint(got) {
			mismatches = append(mismatches, fmt.Sprintf("%s: want %v, got %v", key, want, got))
		}
	}
	if len(mismatches) == 0 {
		return nil
	}

	return &AssertionError{
		Type:     AssertFinalState,
		Expected: fmt.Sprintf("%s state %v", a.User, a.Expect),
		Actual:   strings.Join(mismatches, "; "),
		Trace:    result.Trace,
	}
}
