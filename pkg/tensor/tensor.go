// Package tensor implements the compact wire form used for n-dimensional
// numeric arrays: base64 of raw little-endian bytes in C order, with boolean
// arrays bit-packed least-significant-bit first.
//
// A Record is validated whenever it is constructed, whether from native
// values, from its fields, or from JSON: the decoded byte length must equal
// ceil(prod(shape) * bytes_per_element). This is the only defence against
// truncated or corrupted payloads, so it is never skipped.
package tensor

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/validation"
)

// DType is the wire name of an element type.
type DType string

const (
	Float64 DType = "f64"
	Uint8   DType = "u8"
	Bool    DType = "bool"
)

// byteLen returns the number of payload bytes for n elements of d.
func (d DType) byteLen(n int) (int, bool) {
	switch d {
	case Float64:
		if n > math.MaxInt/8 {
			return 0, false
		}
		return n * 8, true
	case Uint8:
		return n, true
	case Bool:
		return n/8 + (n%8+7)/8, true
	default:
		return 0, false
	}
}

// Valid reports whether d is one of the supported element types.
func (d DType) Valid() bool {
	_, ok := d.byteLen(0)
	return ok
}

// Record is an immutable tensor in wire form.
type Record struct {
	data  string
	shape []int
	dtype DType
	raw   []byte
}

// New validates and builds a Record from its wire fields.
func New(data string, shape []int, dtype DType) (*Record, error) {
	if !dtype.Valid() {
		return nil, validation.Errorf(validation.ErrInvalidField, "dtype",
			"input should be 'f64', 'bool' or 'u8', got %q", dtype)
	}
	n, err := NumElements(shape)
	if err != nil {
		return nil, err
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, validation.Errorf(validation.ErrMalformedTensor, "data", "invalid base64: %v", err)
	}
	want, ok := dtype.byteLen(n)
	if !ok {
		return nil, validation.Errorf(validation.ErrMalformedTensor, "shape",
			"shape %v packed as %s overflows the addressable byte length", shape, dtype)
	}
	if len(raw) != want {
		return nil, validation.Errorf(validation.ErrMalformedTensor, "data",
			"data length %d is inconsistent with shape %v packed as %s", len(raw), shape, dtype)
	}
	return &Record{data: data, shape: append([]int(nil), shape...), dtype: dtype, raw: raw}, nil
}

// Encode builds a Record from a flat C-ordered slice. The element type
// selects the dtype: []float64, []uint8 and []bool are supported.
func Encode(values any, shape []int) (*Record, error) {
	n, err := NumElements(shape)
	if err != nil {
		return nil, err
	}
	var (
		raw   []byte
		dtype DType
		count int
	)
	switch v := values.(type) {
	case []float64:
		dtype, count = Float64, len(v)
		raw = make([]byte, 8*len(v))
		for i, f := range v {
			binary.LittleEndian.PutUint64(raw[8*i:], math.Float64bits(f))
		}
	case []uint8:
		dtype, count = Uint8, len(v)
		raw = append([]byte(nil), v...)
	case []bool:
		dtype, count = Bool, len(v)
		raw = packBits(v)
	default:
		return nil, validation.Errorf(validation.ErrUnsupportedDtype, "dtype",
			"unexpected element type %T, one of []float64, []uint8 or []bool expected", values)
	}
	if count != n {
		return nil, validation.Errorf(validation.ErrMalformedTensor, "shape",
			"%d values cannot fill shape %v", count, shape)
	}
	return &Record{
		data:  base64.StdEncoding.EncodeToString(raw),
		shape: append([]int(nil), shape...),
		dtype: dtype,
		raw:   raw,
	}, nil
}

// Data returns the base64 payload.
func (r Record) Data() string { return r.data }

// DType returns the element type.
func (r Record) DType() DType { return r.dtype }

// Shape returns a copy of the dimensions.
func (r Record) Shape() []int { return append([]int(nil), r.shape...) }

// Rank returns the number of dimensions.
func (r Record) Rank() int { return len(r.shape) }

// Size returns the number of elements.
func (r Record) Size() int {
	n, _ := NumElements(r.shape)
	return n
}

// LastDim returns the size of the trailing axis, or 0 for a rank-0 record.
func (r Record) LastDim() int {
	if len(r.shape) == 0 {
		return 0
	}
	return r.shape[len(r.shape)-1]
}

// Float64s decodes an f64 record.
func (r Record) Float64s() ([]float64, error) {
	if r.dtype != Float64 {
		return nil, fmt.Errorf("tensor: dtype is %s, not %s", r.dtype, Float64)
	}
	out := make([]float64, len(r.raw)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(r.raw[8*i:]))
	}
	return out, nil
}

// Uint8s decodes a u8 record.
func (r Record) Uint8s() ([]uint8, error) {
	if r.dtype != Uint8 {
		return nil, fmt.Errorf("tensor: dtype is %s, not %s", r.dtype, Uint8)
	}
	return append([]uint8(nil), r.raw...), nil
}

// Bools decodes a bool record. Padding bits past the element count are
// dropped without inspection.
func (r Record) Bools() ([]bool, error) {
	if r.dtype != Bool {
		return nil, fmt.Errorf("tensor: dtype is %s, not %s", r.dtype, Bool)
	}
	return unpackBits(r.raw, r.Size()), nil
}

// Decode returns the flat values as []float64, []uint8 or []bool.
func (r Record) Decode() (any, error) {
	switch r.dtype {
	case Float64:
		return r.Float64s()
	case Uint8:
		return r.Uint8s()
	case Bool:
		return r.Bools()
	}
	return nil, fmt.Errorf("tensor: dtype %s not understood", r.dtype)
}

type wireRecord struct {
	Data  string `json:"data"`
	Shape []int  `json:"shape"`
	DType DType  `json:"dtype"`
}

// MarshalJSON implements json.Marshaler.
func (r Record) MarshalJSON() ([]byte, error) {
	shape := r.shape
	if shape == nil {
		shape = []int{}
	}
	return json.Marshal(wireRecord{Data: r.data, Shape: shape, DType: r.dtype})
}

// UnmarshalJSON implements json.Unmarshaler and validates the record.
func (r *Record) UnmarshalJSON(b []byte) error {
	return r.unmarshal(b, "")
}

func (r *Record) unmarshal(b []byte, defaultDType DType) error {
	var w struct {
		Data  *string `json:"data"`
		Shape []int   `json:"shape"`
		DType *DType  `json:"dtype"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return validation.Errorf(validation.ErrInvalidField, "", "invalid tensor: %v", err)
	}
	if w.Data == nil {
		return validation.Errorf(validation.ErrInvalidField, "data", "field required")
	}
	if w.Shape == nil {
		return validation.Errorf(validation.ErrInvalidField, "shape", "field required")
	}
	dtype := defaultDType
	if w.DType != nil {
		dtype = *w.DType
	}
	if dtype == "" {
		return validation.Errorf(validation.ErrInvalidField, "dtype", "field required")
	}
	rec, err := New(*w.Data, w.Shape, dtype)
	if err != nil {
		return err
	}
	*r = *rec
	return nil
}

// NumElements returns prod(shape). Negative dimensions and products that
// overflow int are ErrMalformedTensor failures; any zero axis makes the
// product zero.
func NumElements(shape []int) (int, error) {
	empty := false
	for i, d := range shape {
		if d < 0 {
			return 0, validation.Errorf(validation.ErrMalformedTensor, fmt.Sprintf("shape.%d", i),
				"dimension %d is negative", d)
		}
		empty = empty || d == 0
	}
	if empty {
		return 0, nil
	}
	n := 1
	for _, d := range shape {
		if n > math.MaxInt/d {
			return 0, validation.Errorf(validation.ErrMalformedTensor, "shape",
				"shape %v has more elements than can be addressed", shape)
		}
		n *= d
	}
	return n, nil
}
