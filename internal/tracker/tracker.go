// Package tracker implements the health-tracking operations on the active
// user's state: vitals, medications, meals, prescriptions and profile.
//
// Every write validates the new record against the schema, then merges it
// through the projector under the registry lock. Writes fail with
// domain.ErrNoActiveUser when nobody is logged in.
package tracker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/roach88/renalcare/internal/domain"
	"github.com/roach88/renalcare/internal/insight"
	"github.com/roach88/renalcare/internal/projector"
	"github.com/roach88/renalcare/internal/registry"
	"github.com/roach88/renalcare/internal/schema"
)

// DefaultReminder is given to medications added without reminder times.
const DefaultReminder = "08:00"

var (
	// ErrInsightUnavailable means no insight service is configured.
	ErrInsightUnavailable = errors.New("insight service not configured")

	// ErrNoVitals means insights were requested before any vitals were recorded.
	ErrNoVitals = errors.New("record some vitals first")

	// ErrNothingExtracted means a scanned document yielded no usable data.
	ErrNothingExtracted = errors.New("nothing could be read from the document")
)

// Service runs tracker operations for whoever is logged in.
type Service struct {
	proj      *projector.Projector
	reg       *registry.Registry
	validator *schema.Validator
	insight   insight.Service
	ids       domain.IDGenerator
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithIDs sets the record ID generator.
func WithIDs(g domain.IDGenerator) Option {
	return func(s *Service) { s.ids = g }
}

// WithNow sets the time source for default timestamps and the dashboard.
func WithNow(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithInsight enables the model-backed operations.
func WithInsight(svc insight.Service) Option {
	return func(s *Service) { s.insight = svc }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New creates a tracker service.
func New(proj *projector.Projector, reg *registry.Registry, validator *schema.Validator, opts ...Option) *Service {
	s := &Service{
		proj:      proj,
		reg:       reg,
		validator: validator,
		ids:       domain.UUIDv7Generator{},
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the active user's state.
func (s *Service) State(ctx context.Context) (domain.AppState, error) {
	state := s.proj.CurrentState(ctx)
	if state.User == nil {
		return state, domain.ErrNoActiveUser
	}
	return state, nil
}

// SavedUsers lists every registered user for quick switching.
func (s *Service) SavedUsers() []domain.User {
	return s.reg.Users()
}

// modify applies fn through the projector, mapping "nobody logged in" to
// ErrNoActiveUser.
func (s *Service) modify(ctx context.Context, fn func(domain.AppState) (projector.Update, error)) error {
	applied, err := s.proj.Modify(ctx, fn)
	if err != nil {
		return err
	}
	if !applied {
		return domain.ErrNoActiveUser
	}
	return nil
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}
