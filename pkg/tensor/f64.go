package tensor

import (
	"encoding/json"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/validation"
)

// F64 is a Record restricted to float64 elements. On the wire its dtype
// defaults to "f64" when omitted.
type F64 struct {
	Record
}

// EncodeF64 builds an F64 from a flat C-ordered slice.
func EncodeF64(values []float64, shape []int) (*F64, error) {
	rec, err := Encode(values, shape)
	if err != nil {
		return nil, err
	}
	return &F64{Record: *rec}, nil
}

// MarshalJSON implements json.Marshaler.
func (f F64) MarshalJSON() ([]byte, error) {
	return f.Record.MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *F64) UnmarshalJSON(b []byte) error {
	var rec Record
	if err := rec.unmarshal(b, Float64); err != nil {
		return err
	}
	if rec.dtype != Float64 {
		return validation.Errorf(validation.ErrInvalidField, "dtype", "input should be 'f64', got %q", rec.dtype)
	}
	f.Record = rec
	return nil
}

var (
	_ json.Marshaler   = Record{}
	_ json.Unmarshaler = (*Record)(nil)
	_ json.Marshaler   = F64{}
	_ json.Unmarshaler = (*F64)(nil)
)
