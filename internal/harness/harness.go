package harness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/renalcare/internal/auth"
	"github.com/roach88/renalcare/internal/domain"
	"github.com/roach88/renalcare/internal/projector"
	"github.com/roach88/renalcare/internal/registry"
	"github.com/roach88/renalcare/internal/scheduler"
	"github.com/roach88/renalcare/internal/schema"
	"github.com/roach88/renalcare/internal/session"
	"github.com/roach88/renalcare/internal/store"
	"github.com/roach88/renalcare/internal/testutil"
	"github.com/roach88/renalcare/internal/tracker"
)

// Harness is the scenario execution engine.
//
// The backend, clock, ID sequence and notifier live for the whole run. The
// tracker object graph on top of them is rebuilt by a restart step, the way a
// second process would open the same store.
type Harness struct {
	backend   *store.MemoryStore
	clock     *testutil.FakeClock
	ids       *testutil.Sequence
	notifier  *testutil.RecordingNotifier
	validator *schema.Validator
	logger    *slog.Logger

	registry  *registry.Registry
	session   *session.Store
	projector *projector.Projector
	gate      *auth.Gate
	tracker   *tracker.Service
	scheduler *scheduler.Scheduler
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory backend. A step whose outcome
// differs from its expect clause, or a failed assertion, marks the result as
// failed. An error is returned only when the scenario itself cannot run, for
// example args that do not decode.
func Run(scenario *Scenario) (*Result, error) {
	start, err := scenario.startTime()
	if err != nil {
		return nil, err
	}
	validator, err := schema.New()
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}

	h := &Harness{
		backend:   store.NewMemoryStore(),
		clock:     testutil.NewFakeClock(start),
		ids:       testutil.NewSequence("id"),
		notifier:  &testutil.RecordingNotifier{},
		validator: validator,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	ctx := context.Background()
	if err := h.open(ctx); err != nil {
		return nil, fmt.Errorf("failed to open tracker: %w", err)
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.execute(ctx, step, result); err != nil {
			return nil, fmt.Errorf("steps[%d] %s: %w", i, step.Do, err)
		}
	}

	state, err := h.registry.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read final state: %w", err)
	}
	result.State = state
	result.ActiveUser, _ = h.projector.ActiveEmail(ctx)

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// open builds the tracker object graph over the shared backend.
func (h *Harness) open(ctx context.Context) error {
	reg, err := registry.Open(ctx, h.backend, h.logger)
	if err != nil {
		return err
	}
	h.registry = reg
	h.session = session.New(h.backend, h.logger)
	h.projector = projector.New(h.registry, h.session, h.logger)
	h.gate = auth.New(h.registry, h.session, h.ids, h.logger)
	h.tracker = tracker.New(h.projector, h.registry, h.validator,
		tracker.WithIDs(h.ids),
		tracker.WithNow(h.clock.Now),
		tracker.WithLogger(h.logger),
	)

	sched, err := scheduler.New(h.projector, h.notifier,
		scheduler.WithClock(h.clock),
		scheduler.WithLogger(h.logger),
	)
	if err != nil {
		return err
	}
	h.scheduler = sched
	return nil
}

func (h *Harness) execute(ctx context.Context, step Step, result *Result) error {
	if step.Do == ActionTick {
		return h.tick(ctx, step, result)
	}

	at := h.stamp()
	stepErr, err := h.apply(ctx, step)
	if err != nil {
		return err
	}

	outcome := outcomeOf(stepErr)
	result.addStep(step.Do, outcome, at)
	if want := step.expected(); outcome != want {
		msg := fmt.Sprintf("step %d (%s): expected %s, got %s", len(result.Trace), step.Do, want, outcome)
		if stepErr != nil {
			msg += ": " + stepErr.Error()
		}
		result.AddError(msg)
	}
	return nil
}

// apply runs one non-tick step. stepErr is the tracker's answer and becomes
// the step outcome; err means the step could not be run at all.
func (h *Harness) apply(ctx context.Context, step Step) (stepErr, err error) {
	switch step.Do {
	case ActionLogin:
		var u domain.User
		if err := decodeArgs(step.Args, &u); err != nil {
			return nil, err
		}
		_, stepErr = h.gate.Login(ctx, u)

	case ActionLogout:
		stepErr = h.gate.Logout(ctx)

	case ActionAddVital:
		var v domain.VitalRecord
		if err := decodeArgs(step.Args, &v); err != nil {
			return nil, err
		}
		_, stepErr = h.tracker.AddVital(ctx, v)

	case ActionAddMedication:
		var m domain.Medication
		if err := decodeArgs(step.Args, &m); err != nil {
			return nil, err
		}
		_, stepErr = h.tracker.AddMedication(ctx, m)

	case ActionDeleteMedication:
		var a idArgs
		if err := decodeArgs(step.Args, &a); err != nil {
			return nil, err
		}
		stepErr = h.tracker.DeleteMedication(ctx, a.ID)

	case ActionMarkTaken:
		var a idArgs
		if err := decodeArgs(step.Args, &a); err != nil {
			return nil, err
		}
		_, stepErr = h.tracker.MarkTaken(ctx, a.ID)

	case ActionAddMeal:
		var m domain.Meal
		if err := decodeArgs(step.Args, &m); err != nil {
			return nil, err
		}
		_, stepErr = h.tracker.AddMeal(ctx, m)

	case ActionImportPrescription:
		var a prescriptionArgs
		if err := decodeArgs(step.Args, &a); err != nil {
			return nil, err
		}
		_, stepErr = h.tracker.ImportPrescription(ctx, a.Prescription, a.Medications)

	case ActionDeletePrescription:
		var a idArgs
		if err := decodeArgs(step.Args, &a); err != nil {
			return nil, err
		}
		stepErr = h.tracker.DeletePrescription(ctx, a.ID)

	case ActionUpdateProfile:
		var p tracker.ProfilePatch
		if err := decodeArgs(step.Args, &p); err != nil {
			return nil, err
		}
		_, stepErr = h.tracker.UpdateProfile(ctx, p)

	case ActionSetSession:
		var a struct {
			Email string `json:"email"`
		}
		if err := decodeArgs(step.Args, &a); err != nil {
			return nil, err
		}
		stepErr = h.session.SetActive(ctx, a.Email)

	case ActionRestart:
		return nil, h.open(ctx)

	case ActionSetClock:
		var a struct {
			At string `json:"at"`
		}
		if err := decodeArgs(step.Args, &a); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339, a.At)
		if err != nil {
			return nil, fmt.Errorf("at: %w", err)
		}
		h.clock.Set(t)

	default:
		return nil, fmt.Errorf("unknown action %q", step.Do)
	}
	return stepErr, nil
}

// tick polls the scheduler once, or repeatedly while advancing the clock by
// every until it reaches until.
func (h *Harness) tick(ctx context.Context, step Step, result *Result) error {
	var a struct {
		Every string `json:"every"`
		Until string `json:"until"`
	}
	if err := decodeArgs(step.Args, &a); err != nil {
		return err
	}

	until := h.clock.Now()
	every := scheduler.DefaultInterval
	if a.Until != "" {
		t, err := time.Parse(time.RFC3339, a.Until)
		if err != nil {
			return fmt.Errorf("until: %w", err)
		}
		until = t
	}
	if a.Every != "" {
		d, err := time.ParseDuration(a.Every)
		if err != nil {
			return fmt.Errorf("every: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("every must be positive, got %s", d)
		}
		every = d
	}

	result.addStep(ActionTick, OutcomeOK, h.stamp())
	if want := step.expected(); want != OutcomeOK {
		result.AddError(fmt.Sprintf("step %d (tick): expected %s, got ok", len(result.Trace), want))
	}

	for {
		h.poll(ctx, result)
		if !h.clock.Now().Before(until) {
			return nil
		}
		h.clock.Advance(every)
	}
}

// poll runs one scheduler check and traces what it delivered.
func (h *Harness) poll(ctx context.Context, result *Result) {
	before := len(h.notifier.Sent())
	h.scheduler.Once(ctx)
	at := h.stamp()
	for _, n := range h.notifier.Sent()[before:] {
		result.addNotification(n.Body, at)
	}
}

func (h *Harness) stamp() string {
	return h.clock.Now().Format(time.TimeOnly)
}

type idArgs struct {
	ID string `json:"id"`
}

type prescriptionArgs struct {
	Prescription domain.Prescription `json:"prescription"`
	Medications  []domain.Medication `json:"medications"`
}

// decodeArgs fills v from step args through JSON, so args use the same field
// names as stored records.
func decodeArgs(args map[string]any, v any) error {
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode args: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode args: %w", err)
	}
	return nil
}

// outcomeOf maps a tracker error to a step outcome.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, domain.ErrNoActiveUser):
		return OutcomeNoActiveUser
	case errors.Is(err, domain.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, domain.ErrEmailRequired):
		return OutcomeEmailRequired
	case errors.Is(err, schema.ErrInvalid):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}
