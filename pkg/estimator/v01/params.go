// Package v01 is version 0.1 of the EstimatorV2 primitive schema: PUBs of
// a typed QPY circuit, observables and parameter values, and the runtime
// options that select error mitigation.
package v01

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/ndarray"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/program"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/qpy"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/validation"
)

// SchemaVersion is the schema_version literal of this package.
const SchemaVersion = "v0.1"

// Version is the only accepted value of the version member.
const Version = 2

// Pub is an estimator primitive unified bloc. On the wire it is the tuple
// [circuit, observables, parameter_values?, precision?].
type Pub struct {
	Circuit     qpy.TypedCircuitV13To17
	Observables Observables
	// ParameterValues defaults to an empty float64 array.
	ParameterValues ndarray.Wrapper
	// Precision is nil to use Options.DefaultPrecision.
	Precision *float64
}

// Validate checks the precision and that the parameter values match the
// circuit.
func (p *Pub) Validate() error {
	if p.Precision != nil && *p.Precision <= 0 {
		return validation.Errorf(validation.ErrInvalidField, "3", "input should be greater than 0, got %v", *p.Precision)
	}
	if err := validation.At("1", p.Observables.Validate()); err != nil {
		return err
	}
	circ, err := p.Circuit.ToCircuit(true)
	if err != nil {
		return validation.At("0", err)
	}
	values := p.ParameterValues.Array()
	if values == nil {
		values = ndarray.EmptyFloat64().Array()
	}
	return program.CheckArgumentCount("2", circ, values)
}

// PrecisionOr returns the PUB's precision, or def when it has none.
func (p *Pub) PrecisionOr(def float64) float64 {
	if p.Precision == nil {
		return def
	}
	return *p.Precision
}

// MarshalJSON implements json.Marshaler.
func (p Pub) MarshalJSON() ([]byte, error) {
	values := p.ParameterValues
	if values.Array() == nil {
		values = *ndarray.EmptyFloat64()
	}
	return json.Marshal([]any{&p.Circuit, p.Observables, values, p.Precision})
}

// UnmarshalJSON implements json.Unmarshaler and validates the PUB.
func (p *Pub) UnmarshalJSON(b []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(b, &parts); err != nil {
		return validation.Errorf(validation.ErrInvalidField, "",
			"a PUB must be a [circuit, observables, parameter_values, precision] tuple")
	}
	if len(parts) < 2 || len(parts) > 4 {
		return validation.Errorf(validation.ErrInvalidField, "",
			"a PUB must have between 2 and 4 entries, got %d", len(parts))
	}
	var out Pub
	if err := json.Unmarshal(parts[0], &out.Circuit); err != nil {
		return validation.At("0", err)
	}
	if err := json.Unmarshal(parts[1], &out.Observables); err != nil {
		return validation.At("1", err)
	}
	if len(parts) > 2 {
		if err := json.Unmarshal(parts[2], &out.ParameterValues); err != nil {
			return validation.At("2", err)
		}
	} else {
		out.ParameterValues = *ndarray.EmptyFloat64()
	}
	if len(parts) > 3 {
		if err := json.Unmarshal(parts[3], &out.Precision); err != nil {
			return validation.Errorf(validation.ErrInvalidField, "3", "precision must be a number or null")
		}
	}
	if err := out.Validate(); err != nil {
		return err
	}
	*p = out
	return nil
}

// Params are the inner parameters of an EstimatorV2 job.
type Params struct {
	SchemaVersion   string  `json:"schema_version"`
	Pubs            []Pub   `json:"pubs"`
	SupportQiskit   bool    `json:"support_qiskit"`
	Version         int     `json:"version"`
	Options         Options `json:"options"`
	ResilienceLevel int     `json:"resilience_level" validate:"min=0,max=2"`
}

var paramsMembers = map[string]bool{
	"schema_version":   true,
	"pubs":             true,
	"support_qiskit":   true,
	"version":          true,
	"options":          true,
	"resilience_level": true,
}

// Decode parses and validates EstimatorV2 v0.1 parameters. Unknown members
// are rejected. PUBs are validated concurrently under ctx.
func Decode(ctx context.Context, b []byte) (*Params, error) {
	raw, err := validation.Object(b)
	if err != nil {
		return nil, err
	}
	if err := checkMembers(raw); err != nil {
		return nil, err
	}
	p := Params{
		SchemaVersion:   SchemaVersion,
		SupportQiskit:   true,
		Version:         Version,
		Options:         DefaultOptions(),
		ResilienceLevel: 1,
	}
	if _, err := validation.Field(raw, "schema_version", &p.SchemaVersion, false); err != nil {
		return nil, err
	}
	if err := validation.CheckLiteral("schema_version", p.SchemaVersion, SchemaVersion); err != nil {
		return nil, err
	}
	if _, err := validation.Field(raw, "version", &p.Version, false); err != nil {
		return nil, err
	}
	if p.Version != Version {
		return nil, validation.Errorf(validation.ErrInvalidField, "version", "input should be %d, got %d", Version, p.Version)
	}
	if _, err := validation.Field(raw, "support_qiskit", &p.SupportQiskit, false); err != nil {
		return nil, err
	}
	if _, err := validation.Field(raw, "resilience_level", &p.ResilienceLevel, false); err != nil {
		return nil, err
	}
	if err := validation.Struct(&p); err != nil {
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
	if _, err := validation.Field(raw, "options", &p.Options, false); err != nil {
		return nil, err
	}
	return &p, nil
}

func checkMembers(raw map[string]json.RawMessage) error {
	var extra []string
	for name := range raw {
		if !paramsMembers[name] {
			extra = append(extra, name)
		}
	}
	if len(extra) == 0 {
		return nil
	}
	sort.Strings(extra)
	return validation.Errorf(validation.ErrInvalidField, extra[0],
		"extra inputs are not permitted: %s", strings.Join(extra, ", "))
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
	if p.Version == 0 {
		p.Version = Version
	}
	if p.Pubs == nil {
		p.Pubs = []Pub{}
	}
	return json.Marshal(plain(p))
}
