// Package v02 is version 0.2 of the executor program schema. Compared to
// v01 it accepts QPY versions up to 17, lets items pick their chunk size
// automatically and reports chunk timing in the result metadata.
package v02

import (
	"context"
	"encoding/json"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/validation"
)

// SchemaVersion is the schema_version literal of this package.
const SchemaVersion = "v0.2"

// Params are the inner parameters of an executor job.
type Params struct {
	SchemaVersion  string         `json:"schema_version"`
	Version        *int           `json:"version,omitempty"`
	QuantumProgram QuantumProgram `json:"quantum_program"`
	Options        Options        `json:"options"`
}

// Options are the runtime options.
type Options struct {
	// InitQubits resets qubits to the ground state before each shot.
	InitQubits bool `json:"init_qubits"`
	// RepDelay is the delay between a measurement and the next circuit, in
	// seconds. Nil uses the backend default.
	RepDelay *float64 `json:"rep_delay"`
}

// DefaultOptions returns Options with their defaults.
func DefaultOptions() Options {
	return Options{InitQubits: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Options) UnmarshalJSON(b []byte) error {
	raw, err := validation.Object(b)
	if err != nil {
		return err
	}
	out := DefaultOptions()
	if _, err := validation.Field(raw, "init_qubits", &out.InitQubits, false); err != nil {
		return err
	}
	if _, err := validation.Field(raw, "rep_delay", &out.RepDelay, false); err != nil {
		return err
	}
	*o = out
	return nil
}

// Decode parses and validates executor v0.2 parameters. Program items are
// validated concurrently under ctx.
func Decode(ctx context.Context, b []byte) (*Params, error) {
	raw, err := validation.Object(b)
	if err != nil {
		return nil, err
	}
	p := Params{SchemaVersion: SchemaVersion}
	if _, err := validation.Field(raw, "schema_version", &p.SchemaVersion, false); err != nil {
		return nil, err
	}
	if err := validation.CheckLiteral("schema_version", p.SchemaVersion, SchemaVersion); err != nil {
		return nil, err
	}
	if _, err := validation.Field(raw, "version", &p.Version, false); err != nil {
		return nil, err
	}
	qp, ok := raw["quantum_program"]
	if !ok {
		return nil, validation.Errorf(validation.ErrInvalidField, "quantum_program", "field required")
	}
	if err := p.QuantumProgram.decode(ctx, qp); err != nil {
		return nil, validation.At("quantum_program", err)
	}
	if _, err := validation.Field(raw, "options", &p.Options, true); err != nil {
		return nil, err
	}
	return &p, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Params) UnmarshalJSON(b []byte) error {
	out, err := Decode(context.Background(), b)
	if err != nil {
		return err
	}
	*p = *out
	return nil
}

// MarshalJSON implements json.Marshaler, filling in the schema version.
func (p Params) MarshalJSON() ([]byte, error) {
	type plain Params
	if p.SchemaVersion == "" {
		p.SchemaVersion = SchemaVersion
	}
	return json.Marshal(plain(p))
}
