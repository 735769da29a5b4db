package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/roach88/renalcare/internal/domain"
	"github.com/roach88/renalcare/internal/store"
)

// Registry maps user emails to their application state.
type Registry struct {
	mu      sync.Mutex
	backend store.Backend
	logger  *slog.Logger
	entries domain.Registry
}

// New creates an empty registry over backend without reading storage.
func New(backend store.Backend, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		backend: backend,
		logger:  logger,
		entries: domain.Registry{},
	}
}

// Open creates a registry and loads it from storage. A storage read error is
// returned rather than treated as an empty registry, so a later write cannot
// overwrite users that were merely unreadable.
func Open(ctx context.Context, backend store.Backend, logger *slog.Logger) (*Registry, error) {
	r := New(backend, logger)
	if _, err := r.Load(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// Load reconstructs the mapping from storage, replacing what is in memory,
// and returns a copy of it. Missing or corrupt storage yields an empty
// mapping; corrupt bytes are first copied to CorruptKey. On a read error the
// in-memory mapping is left as it was and the error is returned.
func (r *Registry) Load(ctx context.Context) (domain.Registry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, err := r.read(ctx)
	if err != nil {
		return nil, err
	}
	r.entries = reg
	return r.entries.Clone(), nil
}

// Len returns the number of registered users.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) read(ctx context.Context) (domain.Registry, error) {
	data, found, err := r.backend.Read(ctx, domain.RegistryKey)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	if !found {
		return domain.Registry{}, nil
	}

	reg, err := Decode(data)
	if err != nil {
		if err := r.backend.Write(ctx, domain.RegistryCorruptKey, data); err != nil {
			return nil, fmt.Errorf("keep corrupt registry: %w", err)
		}
		r.logger.Warn("registry corrupt, starting empty",
			"error", err, "bytes", len(data), "savedTo", domain.RegistryCorruptKey)
		return domain.Registry{}, nil
	}

	for key, state := range reg {
		if state.User == nil {
			r.logger.Warn("dropping registry entry without user", "key", key)
			delete(reg, key)
			continue
		}
		if state.User.Email != key {
			r.logger.Warn("registry entry email differs from key, using key",
				"key", key, "email", state.User.Email)
			state.User.Email = key
		}
		state.Normalize()
		reg[key] = state
	}
	return reg, nil
}

// Save replaces the whole mapping, in memory and in storage.
// On failure the previous mapping is kept.
func (r *Registry) Save(ctx context.Context, reg domain.Registry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := reg.Clone()
	if err := r.persist(ctx, next); err != nil {
		return err
	}
	r.entries = next
	return nil
}

// EnsureUser returns the state stored for user.Email, inserting a fresh state
// for user if there is none. An existing entry is returned unchanged.
func (r *Registry) EnsureUser(ctx context.Context, user domain.User) (domain.AppState, error) {
	key := domain.NormalizeEmail(user.Email)
	if key == "" {
		return domain.AppState{}, domain.ErrEmailRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.entries[key]; ok {
		return existing.Clone(), nil
	}

	user.Email = key
	state := domain.NewAppState(user.Clone())
	r.entries[key] = state
	if err := r.persist(ctx, r.entries); err != nil {
		delete(r.entries, key)
		return domain.AppState{}, err
	}

	r.logger.Info("registered user", "email", key)
	return state.Clone(), nil
}

// Get returns a copy of the state stored for email.
func (r *Registry) Get(email string) (domain.AppState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.entries[domain.NormalizeEmail(email)]
	if !ok {
		return domain.AppState{}, false
	}
	return state.Clone(), true
}

// Update applies fn to the state stored for email and persists the registry.
//
// fn receives a private copy; the change becomes visible only after it is
// persisted. If fn returns an error nothing is written and the error is
// returned as is. Returns found=false without calling fn if email is not
// registered. The key cannot be changed through fn: User.Email is reset to the key.
func (r *Registry) Update(ctx context.Context, email string, fn func(*domain.AppState) error) (domain.AppState, bool, error) {
	key := domain.NormalizeEmail(email)

	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.entries[key]
	if !ok {
		return domain.AppState{}, false, nil
	}

	next := prev.Clone()
	if err := fn(&next); err != nil {
		return domain.AppState{}, true, err
	}
	if next.User == nil {
		next.User = prev.User.Clone()
	}
	next.User.Email = key
	next.Normalize()

	// fn may have kept a pointer into next; store a copy it cannot reach
	committed := next.Clone()
	r.entries[key] = committed
	if err := r.persist(ctx, r.entries); err != nil {
		r.entries[key] = prev
		return domain.AppState{}, true, err
	}
	return committed.Clone(), true, nil
}

// Users returns every registered user sorted by email.
func (r *Registry) Users() []domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	users := make([]domain.User, 0, len(keys))
	for _, k := range keys {
		users = append(users, *r.entries[k].User.Clone())
	}
	return users
}

// Snapshot returns a deep copy of the whole mapping.
func (r *Registry) Snapshot() domain.Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries.Clone()
}

// persist writes reg to storage. Caller holds r.mu.
func (r *Registry) persist(ctx context.Context, reg domain.Registry) error {
	data, err := Encode(reg)
	if err != nil {
		return err
	}
	if err := r.backend.Write(ctx, domain.RegistryKey, data); err != nil {
		return fmt.Errorf("save registry: %w", err)
	}
	r.logger.Debug("registry saved", "users", len(reg), "bytes", len(data))
	return nil
}
