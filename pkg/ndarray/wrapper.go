package ndarray

import (
	"encoding/json"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/validation"
)

// WrapperType is the __type__ tag of an encoded array.
const WrapperType = "ndarray"

// Wrapper is an array as the runtime encoder writes it. The array is decoded
// and validated when the wrapper is unmarshaled.
type Wrapper struct {
	value string
	array *Array
}

// Wrap encodes a.
func Wrap(a *Array) (*Wrapper, error) {
	s, err := a.EncodeString()
	if err != nil {
		return nil, err
	}
	return &Wrapper{value: s, array: a}, nil
}

// EmptyFloat64 is the wrapper of a float64 array of shape (0,), the value
// NumPy gives np.array([]).
func EmptyFloat64() *Wrapper {
	a := &Array{kind: Float64, shape: []int{0}}
	w, err := Wrap(a)
	if err != nil {
		panic(err)
	}
	return w
}

// Array returns the decoded array.
func (w *Wrapper) Array() *Array { return w.array }

// Value returns the encoded payload.
func (w *Wrapper) Value() string { return w.value }

// MarshalJSON implements json.Marshaler.
func (w Wrapper) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string `json:"__type__"`
		Value string `json:"__value__"`
	}{WrapperType, w.value})
}

// UnmarshalJSON implements json.Unmarshaler.
func (w *Wrapper) UnmarshalJSON(b []byte) error {
	raw, err := validation.Object(b)
	if err != nil {
		return err
	}
	var kind, value string
	if _, err := validation.Field(raw, "__type__", &kind, true); err != nil {
		return err
	}
	if err := validation.CheckLiteral("__type__", kind, WrapperType); err != nil {
		return err
	}
	if _, err := validation.Field(raw, "__value__", &value, true); err != nil {
		return err
	}
	a, err := DecodeString(value)
	if err != nil {
		return validation.At("__value__", err)
	}
	*w = Wrapper{value: value, array: a}
	return nil
}
