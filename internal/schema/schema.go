// Package schema validates records against the embedded CUE definitions.
//
// Values are JSON-encoded with their wire tags and unified with the matching
// definition, so the schema constrains exactly what gets persisted.
package schema

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed renalcare.cue
var source []byte

// Kind names a definition in the schema.
type Kind string

const (
	KindUser         Kind = "#User"
	KindVitalRecord  Kind = "#VitalRecord"
	KindMedication   Kind = "#Medication"
	KindMeal         Kind = "#Meal"
	KindPrescription Kind = "#Prescription"
	KindAppState     Kind = "#AppState"
	KindRegistry     Kind = "#Registry"
)

// ErrInvalid matches every validation failure via errors.Is.
var ErrInvalid = errors.New("invalid record")

// FieldError is one violated constraint.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

// ValidationError lists every violation found in one value.
type ValidationError struct {
	Kind   Kind         `json:"kind"`
	Fields []FieldError `json:"fields"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return fmt.Sprintf("invalid %s: %s", strings.TrimPrefix(string(e.Kind), "#"), strings.Join(parts, "; "))
}

// Is reports ErrInvalid.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

// Validator holds the compiled schema.
//
// Thread-safety: a cue.Context is not safe for concurrent use, so every
// method serializes on an internal mutex.
type Validator struct {
	mu     sync.Mutex
	ctx    *cue.Context
	schema cue.Value
}

// New compiles the embedded schema.
func New() (*Validator, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(source, cue.Filename("renalcare.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{ctx: ctx, schema: v}, nil
}

// Must is New that panics. For package-level defaults and tests.
func Must() *Validator {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

// Validate checks value, encoded as JSON, against the kind definition.
// Returns a *ValidationError on violation.
func (v *Validator) Validate(kind Kind, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}
	return v.validateJSON(kind, data)
}

// ValidateRegistry checks a whole registry document.
func (v *Validator) ValidateRegistry(data []byte) error {
	return v.validateJSON(KindRegistry, data)
}

func (v *Validator) validateJSON(kind Kind, data []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	def := v.schema.LookupPath(cue.ParsePath(string(kind)))
	if !def.Exists() {
		return fmt.Errorf("unknown schema kind %q", kind)
	}

	doc := v.ctx.CompileBytes(data, cue.Filename("input.json"))
	if err := doc.Err(); err != nil {
		return &ValidationError{Kind: kind, Fields: []FieldError{{Message: "not valid JSON: " + err.Error()}}}
	}

	if err := def.Unify(doc).Validate(cue.Concrete(true)); err != nil {
		return &ValidationError{Kind: kind, Fields: fieldErrors(err)}
	}
	return nil
}

// fieldErrors flattens a CUE error list into path/message pairs.
func fieldErrors(err error) []FieldError {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return []FieldError{{Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(errs))
	seen := make(map[FieldError]bool, len(errs))
	for _, e := range errs {
		format, args := e.Msg()
		fe := FieldError{
			Path:    strings.Join(e.Path(), "."),
			Message: fmt.Sprintf(format, args...),
		}
		if seen[fe] {
			continue
		}
		seen[fe] = true
		out = append(out, fe)
	}
	return out
}
