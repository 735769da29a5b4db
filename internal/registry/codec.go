package registry

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/renalcare/internal/domain"
)

// Encode serializes a registry for storage.
// Map keys are sorted by encoding/json, so equal registries encode to equal bytes.
func Encode(reg domain.Registry) ([]byte, error) {
	if reg == nil {
		reg = domain.Registry{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(reg); err != nil {
		return nil, fmt.Errorf("encode registry: %w", err)
	}
	// Encoder adds a trailing newline
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Decode parses a stored registry.
func Decode(data []byte) (domain.Registry, error) {
	var reg domain.Registry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("decode registry: %w", err)
	}
	if reg == nil {
		reg = domain.Registry{}
	}
	return reg, nil
}
