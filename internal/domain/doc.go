// Package domain provides the record types persisted by renalcare.
//
// This package contains type definitions and small pure helpers only. All
// other internal packages import domain; domain imports nothing internal.
//
// Key design constraints:
//   - JSON tags use camelCase so stored registries keep their original shape
//   - Lists on AppState are value objects: replaced wholesale, never patched
//   - Registry keys are normalized emails (see NormalizeEmail)
//   - Reminder times are "HH:MM" wall-clock strings, no date, no zone
package domain
