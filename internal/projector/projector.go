// Package projector derives the visible application state from the registry
// and the session pointer, and is the single entry point for mutating it.
package projector

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/renalcare/internal/domain"
	"github.com/roach88/renalcare/internal/registry"
	"github.com/roach88/renalcare/internal/session"
)

// Update names the AppState fields a mutation replaces.
// A nil field is left untouched. Lists are replaced wholesale with the slice
// given, never merged element by element; pass the full new list.
type Update struct {
	User          *domain.User
	Vitals        *[]domain.VitalRecord
	Medications   *[]domain.Medication
	Meals         *[]domain.Meal
	Prescriptions *[]domain.Prescription
}

// IsEmpty reports whether u replaces nothing.
func (u Update) IsEmpty() bool {
	return u.User == nil && u.Vitals == nil && u.Medications == nil &&
		u.Meals == nil && u.Prescriptions == nil
}

// apply replaces the fields set in u on s.
func (u Update) apply(s *domain.AppState) error {
	if u.User != nil {
		s.User = u.User.Clone()
	}
	if u.Vitals != nil {
		s.Vitals = cloneVitals(*u.Vitals)
	}
	if u.Medications != nil {
		s.Medications = domain.CloneMedications(*u.Medications)
	}
	if u.Meals != nil {
		s.Meals = append([]domain.Meal{}, *u.Meals...)
	}
	if u.Prescriptions != nil {
		s.Prescriptions = clonePrescriptions(*u.Prescriptions)
	}
	return nil
}

// Projector resolves the active user's state.
type Projector struct {
	registry *registry.Registry
	session  *session.Store
	logger   *slog.Logger
}

// New creates a projector over reg and sess.
func New(reg *registry.Registry, sess *session.Store, logger *slog.Logger) *Projector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Projector{registry: reg, session: sess, logger: logger}
}

// ActiveEmail returns the session pointer if it references a registered user.
// A dangling pointer reports ok=false.
func (p *Projector) ActiveEmail(ctx context.Context) (string, bool) {
	email, ok := p.session.Active(ctx)
	if !ok {
		return "", false
	}
	if _, registered := p.registry.Get(email); !registered {
		p.logger.Debug("session points at unregistered user", "email", email)
		return "", false
	}
	return email, true
}

// CurrentState returns the active user's state, or an empty state with a nil
// User when nobody is logged in or the session pointer dangles. The empty
// state is never written to the registry.
func (p *Projector) CurrentState(ctx context.Context) domain.AppState {
	email, ok := p.session.Active(ctx)
	if !ok {
		return domain.EmptyState()
	}
	state, ok := p.registry.Get(email)
	if !ok {
		return domain.EmptyState()
	}
	return state
}

// Mutate replaces the fields set in u on the active user's state and persists
// the registry. It is a no-op, returning applied=false, when there is no
// active user or the session pointer dangles.
//
// The merge runs against the registry's latest state under its lock, so
// sequential mutations always observe each other. An empty update writes
// nothing and only reports whether there is an active user.
func (p *Projector) Mutate(ctx context.Context, u Update) (applied bool, err error) {
	if u.IsEmpty() {
		_, ok := p.ActiveEmail(ctx)
		return ok, nil
	}

	email, ok := p.session.Active(ctx)
	if !ok {
		p.logger.Debug("mutate without active user ignored")
		return false, nil
	}

	_, found, err := p.registry.Update(ctx, email, u.apply)
	if err != nil {
		return false, fmt.Errorf("mutate %s: %w", email, err)
	}
	if !found {
		p.logger.Debug("mutate with dangling session ignored", "email", email)
		return false, nil
	}
	return true, nil
}

// Modify is Mutate for updates that depend on the current state. fn reads the
// latest state and returns the update to apply; both happen under the
// registry lock, so concurrent modifications cannot lose each other's work.
// An error from fn aborts the modification and is returned unwrapped.
func (p *Projector) Modify(ctx context.Context, fn func(domain.AppState) (Update, error)) (bool, error) {
	email, ok := p.session.Active(ctx)
	if !ok {
		return false, nil
	}

	var fnErr error
	_, found, err := p.registry.Update(ctx, email, func(s *domain.AppState) error {
		u, err := fn(s.Clone())
		if err != nil {
			fnErr = err
			return err
		}
		return u.apply(s)
	})
	if fnErr != nil {
		return false, fnErr
	}
	if err != nil {
		return false, fmt.Errorf("modify %s: %w", email, err)
	}
	return found, nil
}

func cloneVitals(vs []domain.VitalRecord) []domain.VitalRecord {
	out := make([]domain.VitalRecord, len(vs))
	for i, v := range vs {
		out[i] = v.Clone()
	}
	return out
}

func clonePrescriptions(ps []domain.Prescription) []domain.Prescription {
	out := make([]domain.Prescription, len(ps))
	for i, p := range ps {
		p.ExtractedMeds = domain.CloneMedications(p.ExtractedMeds)
		out[i] = p
	}
	return out
}
