// Package auth switches the active user.
//
// Login is by email only. A password may be collected and stored with a new
// user, but it is never checked: this is a single-device tracker and the
// account list exists for switching profiles, not for access control.
package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/renalcare/internal/domain"
	"github.com/roach88/renalcare/internal/registry"
	"github.com/roach88/renalcare/internal/session"
)

// Gate logs users in and out.
type Gate struct {
	reg    *registry.Registry
	sess   *session.Store
	ids    domain.IDGenerator
	logger *slog.Logger
}

// New creates a gate. ids assigns identifiers to first-time users.
func New(reg *registry.Registry, sess *session.Store, ids domain.IDGenerator, logger *slog.Logger) *Gate {
	if ids == nil {
		ids = domain.UUIDv7Generator{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{reg: reg, sess: sess, ids: ids, logger: logger}
}

// Login makes candidate.Email the active user and returns the stored user.
//
// If the email is already registered, the stored user wins and every other
// candidate field is discarded. Otherwise candidate is registered with a new
// ID and, when Name is blank, the local part of the email as its name.
func (g *Gate) Login(ctx context.Context, candidate domain.User) (*domain.User, error) {
	key := domain.NormalizeEmail(candidate.Email)
	if key == "" {
		return nil, domain.ErrEmailRequired
	}

	state, ok := g.reg.Get(key)
	if !ok {
		candidate.Email = key
		candidate.ID = g.ids.Generate()
		if candidate.Name == "" {
			candidate.Name = domain.LocalPart(key)
		}
		var err error
		state, err = g.reg.EnsureUser(ctx, candidate)
		if err != nil {
			return nil, fmt.Errorf("register %s: %w", key, err)
		}
	}

	if err := g.sess.SetActive(ctx, key); err != nil {
		return nil, err
	}
	g.logger.Info("logged in", "email", key, "new", !ok)
	return state.User, nil
}

// Logout clears the active pointer. Registry data is untouched.
func (g *Gate) Logout(ctx context.Context) error {
	if err := g.sess.Clear(ctx); err != nil {
		return err
	}
	g.logger.Info("logged out")
	return nil
}
