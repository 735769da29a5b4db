// Package session persists the pointer to the active user.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/renalcare/internal/domain"
	"github.com/roach88/renalcare/internal/store"
)

// Store persists which user is currently active under domain.SessionKey.
// The value is the plain email string; absence means logged out.
type Store struct {
	backend store.Backend
	logger  *slog.Logger
}

// New creates a session store over backend.
func New(backend store.Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{backend: backend, logger: logger}
}

// Active returns the active identifier. Unreadable or empty values count as
// logged out; the error is logged, not returned.
func (s *Store) Active(ctx context.Context) (string, bool) {
	val, found, err := s.backend.Read(ctx, domain.SessionKey)
	if err != nil {
		s.logger.Warn("session pointer unreadable, treating as logged out", "error", err)
		return "", false
	}
	id := strings.TrimSpace(string(val))
	if !found || id == "" {
		return "", false
	}
	return id, true
}

// SetActive persists id as the active session.
func (s *Store) SetActive(ctx context.Context, id string) error {
	if err := s.backend.Write(ctx, domain.SessionKey, []byte(id)); err != nil {
		return fmt.Errorf("set active session: %w", err)
	}
	return nil
}

// Clear removes the pointer. Clearing an already clear session is a no-op.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.backend.Delete(ctx, domain.SessionKey); err != nil {
		return fmt.Errorf("clear active session: %w", err)
	}
	return nil
}
