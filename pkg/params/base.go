// Package params routes raw program parameter payloads to the schema model
// that accepts them.
//
// A Registry maps a program name and a schema version ("v0.2") to a decoder
// and an embedded JSON Schema. Decode checks the payload size, peeks at the
// schema version, runs the structural JSON Schema check and then the typed
// decoder, which applies every construction-time validator of the model.
package params

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/validation"
)

// Base holds the fields shared by the parameters of every program.
type Base struct {
	SchemaVersion string `json:"schema_version" validate:"omitempty,schemaversion"`
	// Version is the optional program version the parameters target.
	Version *int `json:"version,omitempty"`
}

// Peek decodes only the shared fields of a parameter payload.
func Peek(b []byte) (Base, error) {
	raw, err := validation.Object(b)
	if err != nil {
		return Base{}, err
	}
	var out Base
	if _, err := validation.Field(raw, "schema_version", &out.SchemaVersion, false); err != nil {
		return Base{}, err
	}
	if _, err := validation.Field(raw, "version", &out.Version, false); err != nil {
		return Base{}, err
	}
	if err := validation.Struct(&out); err != nil {
		return Base{}, err
	}
	return out, nil
}

// ParseSchemaVersion parses "v<major>.<minor>" into a semantic version.
func ParseSchemaVersion(v string) (*semver.Version, error) {
	if err := validation.CheckSchemaVersion("schema_version", v); err != nil {
		return nil, err
	}
	sv, err := semver.NewVersion(v)
	if err != nil {
		return nil, fmt.Errorf("parse schema version %q: %w", v, err)
	}
	return sv, nil
}
