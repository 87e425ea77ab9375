// Package v01 is version 0.1 of the NoiseLearnerV2 program schema. Circuits
// arrive in the runtime encoder's {"__type__", "__value__"} form and are not
// restricted to a QPY version range.
package v01

import (
	"context"
	"encoding/json"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/program"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/qpy"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/validation"
)

// SchemaVersion is the schema_version literal of this package.
const SchemaVersion = "v0.1"

// Options are the noise learner runtime options.
type Options struct {
	// MaxLayersToLearn is nil for no limit.
	MaxLayersToLearn      *int  `json:"max_layers_to_learn"`
	ShotsPerRandomization int   `json:"shots_per_randomization"`
	NumRandomizations     int   `json:"num_randomizations"`
	LayerPairDepths       []int `json:"layer_pair_depths"`
	// TwirlingStrategy selects the qubits twirled in each layer of
	// two-qubit gates.
	TwirlingStrategy string         `json:"twirling_strategy" validate:"oneof=active active-circuit active-accum all"`
	SupportQiskit    bool           `json:"support_qiskit"`
	Experimental     map[string]any `json:"experimental"`
}

// DefaultOptions returns Options with every default filled in.
func DefaultOptions() Options {
	maxLayers := 4
	return Options{
		MaxLayersToLearn:      &maxLayers,
		ShotsPerRandomization: 128,
		NumRandomizations:     32,
		LayerPairDepths:       []int{0, 1, 2, 4, 16, 32},
		TwirlingStrategy:      "active-accum",
		SupportQiskit:         true,
	}
}

// UnmarshalJSON decodes on top of DefaultOptions and validates the result.
func (o *Options) UnmarshalJSON(b []byte) error {
	type plain Options
	p := plain(DefaultOptions())
	if err := validation.Decode(b, &p); err != nil {
		return err
	}
	out := Options(p)
	if err := validation.Struct(&out); err != nil {
		return err
	}
	*o = out
	return nil
}

// Params are the inner parameters of a NoiseLearnerV2 job.
type Params struct {
	SchemaVersion string                `json:"schema_version"`
	Version       *int                  `json:"version,omitempty"`
	Circuits      []qpy.TypedCircuitAny `json:"circuits"`
	Options       Options               `json:"options"`
}

// DecodeCircuits decodes every circuit through the registered codec.
func (p *Params) DecodeCircuits() ([]qpy.Circuit, error) {
	out := make([]qpy.Circuit, len(p.Circuits))
	for i := range p.Circuits {
		c, err := p.Circuits[i].ToCircuit(true)
		if err != nil {
			return nil, validation.AtIndex("circuits", i, err)
		}
		out[i] = c
	}
	return out, nil
}

// Decode parses and validates NoiseLearnerV2 v0.1 parameters. Circuits are
// decoded concurrently under ctx.
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
	var circuits []json.RawMessage
	if _, err := validation.Field(raw, "circuits", &circuits, true); err != nil {
		return nil, err
	}
	p.Circuits = make([]qpy.TypedCircuitAny, len(circuits))
	err = program.ValidateEach(ctx, "circuits", len(circuits), func(_ context.Context, i int) error {
		return json.Unmarshal(circuits[i], &p.Circuits[i])
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
	if p.Circuits == nil {
		p.Circuits = []qpy.TypedCircuitAny{}
	}
	return json.Marshal(plain(p))
}
