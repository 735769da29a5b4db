// Package registry holds every registered user's AppState and persists the
// whole mapping under domain.RegistryKey on each change.
//
// # Invariants
//
//   - Each key has exactly one AppState and AppState.User.Email equals the key
//   - Keys are never removed; the registry only grows
//   - EnsureUser never modifies an existing entry (first login wins)
//   - A write that fails to persist is rolled back in memory, so memory and
//     storage never disagree
//
// Loading never fails: missing or corrupt storage yields an empty registry.
// All methods are safe for concurrent use; the reminder scheduler reads from
// its own goroutine.
package registry
