// Package samplextest provides a stand-in samplex codec for tests.
package samplextest

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/samplex"
)

// Samplex is a samplex reduced to its output specifications.
type Samplex struct {
	Specs []samplex.TensorSpec `json:"outputs"`
}

// Outputs implements samplex.Samplex.
func (s *Samplex) Outputs() []samplex.TensorSpec { return s.Specs }

// Codec implements samplex.Codec for *Samplex. The JSON it writes carries the
// serialization version as a top-level "ssv" member.
type Codec struct{}

type document struct {
	SSV     int                  `json:"ssv"`
	Outputs []samplex.TensorSpec `json:"outputs"`
}

// ToJSON implements samplex.Codec.
func (Codec) ToJSON(s samplex.Samplex, ssv int) (string, error) {
	b, err := json.Marshal(document{SSV: ssv, Outputs: s.Outputs()})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// FromJSON implements samplex.Codec.
func (Codec) FromJSON(text string) (samplex.Samplex, error) {
	var d document
	if err := json.Unmarshal([]byte(text), &d); err != nil {
		return nil, fmt.Errorf("samplextest: %w", err)
	}
	return &Samplex{Specs: d.Outputs}, nil
}

// Install registers Codec for the duration of t.
func Install(t testing.TB) {
	t.Helper()
	prev := samplex.Register(Codec{})
	t.Cleanup(func() { samplex.Register(prev) })
}

// WithParameterValues returns a samplex whose "parameter_values" output has
// the given shape.
func WithParameterValues(shape ...int) *Samplex {
	return &Samplex{Specs: []samplex.TensorSpec{
		{Name: "parameter_values", Shape: shape},
		{Name: "measurement_flips.meas", Shape: []int{1, 3}},
	}}
}

// WithoutParameterValues returns a samplex with no "parameter_values"
// output.
func WithoutParameterValues() *Samplex {
	return &Samplex{Specs: []samplex.TensorSpec{{Name: "measurement_flips.meas", Shape: []int{1, 3}}}}
}
