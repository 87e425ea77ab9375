// Package v02 is version 0.2 of the NoiseLearnerV3 program schema.
package v02

import (
	"encoding/json"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/qpy"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/validation"
)

// SchemaVersion is the schema_version literal of this package.
const SchemaVersion = "v0.2"

// Params are the inner parameters of a noise learner job.
type Params struct {
	SchemaVersion string `json:"schema_version"`
	Version       *int   `json:"version,omitempty"`
	// Instructions are the layers to learn, embedded in a circuit before QPY
	// encoding.
	Instructions qpy.ModelV13ToV16 `json:"instructions"`
	Options      Options           `json:"options"`
}

// PostSelectionOptions configure post selection of learning circuits. When
// Enable is false the other fields are ignored.
type PostSelectionOptions struct {
	Enable     bool   `json:"enable"`
	XPulseType string `json:"x_pulse_type" validate:"oneof=xslow rx"`
	Strategy   string `json:"strategy" validate:"oneof=node edge"`
}

// Options are the noise learner runtime options.
type Options struct {
	ShotsPerRandomization int `json:"shots_per_randomization"`
	NumRandomizations     int `json:"num_randomizations"`
	// LayerPairDepths are the circuit depths, in layer pairs, of the
	// Pauli-Lindblad experiments.
	LayerPairDepths []int                `json:"layer_pair_depths"`
	PostSelection   PostSelectionOptions `json:"post_selection"`
}

// DefaultOptions returns Options with every default filled in.
func DefaultOptions() Options {
	return Options{
		ShotsPerRandomization: 128,
		NumRandomizations:     32,
		LayerPairDepths:       []int{0, 1, 2, 4, 16, 32},
		PostSelection: PostSelectionOptions{
			XPulseType: "xslow",
			Strategy:   "node",
		},
	}
}

// UnmarshalJSON decodes on top of DefaultOptions and validates the result.
func (o *Options) UnmarshalJSON(b []byte) error {
	type plain Options
	p := plain(DefaultOptions())
	// A present layer_pair_depths replaces the default list rather than
	// overwriting a prefix of it.
	p.LayerPairDepths = nil
	if err := validation.Decode(b, &p); err != nil {
		return err
	}
	out := Options(p)
	if out.LayerPairDepths == nil {
		out.LayerPairDepths = DefaultOptions().LayerPairDepths
	}
	if err := validation.Struct(&out); err != nil {
		return err
	}
	*o = out
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Params) UnmarshalJSON(b []byte) error {
	raw, err := validation.Object(b)
	if err != nil {
		return err
	}
	out := Params{SchemaVersion: SchemaVersion}
	if _, err := validation.Field(raw, "schema_version", &out.SchemaVersion, false); err != nil {
		return err
	}
	if err := validation.CheckLiteral("schema_version", out.SchemaVersion, SchemaVersion); err != nil {
		return err
	}
	if _, err := validation.Field(raw, "version", &out.Version, false); err != nil {
		return err
	}
	if _, err := validation.Field(raw, "instructions", &out.Instructions, true); err != nil {
		return err
	}
	if _, err := validation.Field(raw, "options", &out.Options, true); err != nil {
		return err
	}
	*p = out
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p Params) MarshalJSON() ([]byte, error) {
	type plain Params
	if p.SchemaVersion == "" {
		p.SchemaVersion = SchemaVersion
	}
	return json.Marshal(plain(p))
}
