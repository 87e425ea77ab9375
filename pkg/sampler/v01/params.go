// Package v01 is version 0.1 of the SamplerV2 primitive schema: PUBs,
// runtime options and the bit-array results returned per PUB.
package v01

import (
	"context"
	"encoding/json"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/program"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/qpy"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/tensor"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/validation"
)

// SchemaVersion is the schema_version literal of this package.
const SchemaVersion = "v0.1"

// Pub is a primitive unified bloc: a circuit, the parameter values to bind
// to it and an optional shot count. On the wire it is the tuple
// [circuit, parameter_values, shots].
type Pub struct {
	Circuit         qpy.ModelV13ToV16
	ParameterValues tensor.F64
	// Shots is nil to use Options.DefaultShots.
	Shots *int
}

// Validate checks that the parameter values match the circuit.
func (p *Pub) Validate() error {
	circ, err := p.Circuit.ToCircuit(true)
	if err != nil {
		return validation.At("0", err)
	}
	return program.CheckArgumentCount("1", circ, p.ParameterValues)
}

// ShotsOr returns the PUB's shot count, or def when it has none.
func (p *Pub) ShotsOr(def int) int {
	if p.Shots == nil {
		return def
	}
	return *p.Shots
}

// MarshalJSON implements json.Marshaler.
func (p Pub) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{p.Circuit, p.ParameterValues, p.Shots})
}

// UnmarshalJSON implements json.Unmarshaler and validates the PUB.
func (p *Pub) UnmarshalJSON(b []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(b, &parts); err != nil {
		return validation.Errorf(validation.ErrInvalidField, "", "a PUB must be a [circuit, parameter_values, shots] tuple")
	}
	if len(parts) != 3 {
		return validation.Errorf(validation.ErrInvalidField, "",
			"a PUB must have exactly 3 entries, got %d", len(parts))
	}
	var out Pub
	if err := json.Unmarshal(parts[0], &out.Circuit); err != nil {
		return validation.At("0", err)
	}
	if err := json.Unmarshal(parts[1], &out.ParameterValues); err != nil {
		return validation.At("1", err)
	}
	if err := json.Unmarshal(parts[2], &out.Shots); err != nil {
		return validation.Errorf(validation.ErrInvalidField, "2", "shots must be an integer or null")
	}
	if err := out.Validate(); err != nil {
		return err
	}
	*p = out
	return nil
}

// Params are the inner parameters of a SamplerV2 job.
type Params struct {
	SchemaVersion string  `json:"schema_version"`
	Version       *int    `json:"version,omitempty"`
	Pubs          []Pub   `json:"pubs"`
	Options       Options `json:"options"`
}

// Decode parses and validates SamplerV2 v0.1 parameters. PUBs are validated
// concurrently under ctx.
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
	var pubs []json.RawMessage
	if _, err := validation.Field(raw, "pubs", &pubs, true); err != nil {
		return nil, err
	}
	p.Pubs = make([]Pub, len(pubs))
	err = program.ValidateEach(ctx, "pubs", len(pubs), func(_ context.Context, i int) error {
		return json.Unmarshal(pubs[i], &p.Pubs[i])
	})
	if err != nil {
		return nil, err
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

// MarshalJSON implements json.Marshaler.
func (p Params) MarshalJSON() ([]byte, error) {
	type plain Params
	if p.SchemaVersion == "" {
		p.SchemaVersion = SchemaVersion
	}
	if p.Pubs == nil {
		p.Pubs = []Pub{}
	}
	return json.Marshal(plain(p))
}
