package program

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/pauli"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/tensor"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/validation"
)

// SamplexArgument is one value passed to a samplex: a boolean, an integer,
// a Pauli-Lindblad map or a tensor. Exactly one field is set.
type SamplexArgument struct {
	Bool     *bool
	Int      *int
	Lindblad *pauli.LindbladMap
	Tensor   *tensor.Record
}

// BoolArgument wraps a boolean.
func BoolArgument(v bool) SamplexArgument { return SamplexArgument{Bool: &v} }

// IntArgument wraps an integer.
func IntArgument(v int) SamplexArgument { return SamplexArgument{Int: &v} }

// LindbladArgument wraps a Pauli-Lindblad map.
func LindbladArgument(m *pauli.LindbladMap) SamplexArgument { return SamplexArgument{Lindblad: m} }

// TensorArgument wraps a tensor.
func TensorArgument(r *tensor.Record) SamplexArgument { return SamplexArgument{Tensor: r} }

// Kind names the populated variant.
func (a SamplexArgument) Kind() string {
	switch {
	case a.Bool != nil:
		return "bool"
	case a.Int != nil:
		return "int"
	case a.Lindblad != nil:
		return "pauli_lindblad_map"
	case a.Tensor != nil:
		return "tensor"
	default:
		return ""
	}
}

// MarshalJSON implements json.Marshaler.
func (a SamplexArgument) MarshalJSON() ([]byte, error) {
	switch {
	case a.Bool != nil:
		return json.Marshal(*a.Bool)
	case a.Int != nil:
		return json.Marshal(*a.Int)
	case a.Lindblad != nil:
		return json.Marshal(a.Lindblad)
	case a.Tensor != nil:
		return json.Marshal(a.Tensor)
	default:
		return nil, fmt.Errorf("program: empty samplex argument")
	}
}

// UnmarshalJSON picks the variant from the JSON value: booleans, integral
// numbers, objects with "sparse_terms" (Pauli-Lindblad maps) and any other
// object (tensors).
func (a *SamplexArgument) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*a = SamplexArgument{}
	if len(b) == 0 {
		return validation.Errorf(validation.ErrInvalidField, "", "empty samplex argument")
	}
	switch b[0] {
	case 't', 'f':
		var v bool
		if err := json.Unmarshal(b, &v); err != nil {
			return validation.Errorf(validation.ErrInvalidField, "", "invalid boolean argument")
		}
		a.Bool = &v
	case '{':
		var members map[string]json.RawMessage
		if err := json.Unmarshal(b, &members); err != nil {
			return validation.Errorf(validation.ErrInvalidField, "", "invalid samplex argument object")
		}
		if _, ok := members["sparse_terms"]; ok {
			var m pauli.LindbladMap
			if err := json.Unmarshal(b, &m); err != nil {
				return err
			}
			a.Lindblad = &m
			return nil
		}
		var r tensor.Record
		if err := json.Unmarshal(b, &r); err != nil {
			return err
		}
		a.Tensor = &r
	default:
		var v int
		if err := json.Unmarshal(b, &v); err != nil {
			return validation.Errorf(validation.ErrInvalidField, "",
				"samplex argument must be a boolean, an integer, a Pauli-Lindblad map or a tensor")
		}
		a.Int = &v
	}
	return nil
}

// SamplexArguments maps samplex input names to their values.
type SamplexArguments map[string]SamplexArgument

// UnmarshalJSON decodes every argument and locates failures by name.
func (m *SamplexArguments) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return validation.Errorf(validation.ErrInvalidField, "", "samplex arguments must be an object")
	}
	if raw == nil {
		return validation.Errorf(validation.ErrInvalidField, "", "field required")
	}
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make(SamplexArguments, len(raw))
	for _, name := range names {
		var arg SamplexArgument
		if err := json.Unmarshal(raw[name], &arg); err != nil {
			return validation.At(name, err)
		}
		out[name] = arg
	}
	*m = out
	return nil
}
