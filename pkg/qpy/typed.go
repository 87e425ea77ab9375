package qpy

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/compress"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/validation"
)

// CircuitType is the only type tag a TypedCircuit may carry.
const CircuitType = "QuantumCircuit"

// TypedCircuit is a circuit stored as base64 of zlib-compressed QPY next to a
// redundant type tag. It has no version field; ranged variants check the
// version recorded in the QPY header instead.
//
// Wire form: {"__type__": "QuantumCircuit", "__value__": "<base64>"}.
type TypedCircuit[R VersionRange] struct {
	value string

	circuit Circuit
}

// Variants used by the primitive schemas.
type (
	TypedCircuitAny     = TypedCircuit[Unchecked]
	TypedCircuitV13To17 = TypedCircuit[V13ToV17]
)

// NewTypedCircuit validates value and builds a TypedCircuit.
func NewTypedCircuit[R VersionRange](value string) (*TypedCircuit[R], error) {
	t := &TypedCircuit[R]{value: value}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// TypedFromCircuit serializes, compresses and caches c.
func TypedFromCircuit[R VersionRange](c Circuit, qpyVersion int) (*TypedCircuit[R], error) {
	lo, hi := bounds[R]()
	if lo != 0 || hi != 0 {
		if err := validation.CheckVersionRange("__value__", qpyVersion, lo, hi); err != nil {
			return nil, err
		}
	}
	codec, err := Registered()
	if err != nil {
		return nil, err
	}
	raw, err := codec.Dump(c, qpyVersion)
	if err != nil {
		return nil, fmt.Errorf("qpy: dump circuit at version %d: %w", qpyVersion, err)
	}
	compressed, err := compress.Deflate(raw)
	if err != nil {
		return nil, err
	}
	t, err := NewTypedCircuit[R](base64.StdEncoding.EncodeToString(compressed))
	if err != nil {
		return nil, err
	}
	t.circuit = c
	return t, nil
}

// Value returns the base64 compressed payload.
func (t *TypedCircuit[R]) Value() string { return t.value }

// Header inflates and parses only the QPY file header.
func (t *TypedCircuit[R]) Header() (Header, error) {
	compressed, err := base64.StdEncoding.DecodeString(t.value)
	if err != nil {
		return Header{}, validation.Errorf(validation.ErrMalformedPayload, "__value__", "invalid base64: %v", err)
	}
	h, err := sniffCompressedHeader(compressed)
	if err != nil {
		return Header{}, validation.At("__value__", err)
	}
	return h, nil
}

// ToCircuit behaves like Model.ToCircuit.
func (t *TypedCircuit[R]) ToCircuit(useCache bool) (Circuit, error) {
	if useCache && t.circuit != nil {
		return t.circuit, nil
	}
	codec, err := Registered()
	if err != nil {
		return nil, err
	}
	compressed, err := base64.StdEncoding.DecodeString(t.value)
	if err != nil {
		return nil, validation.Errorf(validation.ErrMalformedPayload, "__value__", "invalid base64: %v", err)
	}
	raw, err := compress.Inflate(compressed)
	if err != nil {
		return nil, validation.At("__value__", err)
	}
	c, err := codec.Load(raw)
	if err != nil {
		return nil, fmt.Errorf("qpy: load circuit: %w", err)
	}
	t.circuit = c
	return c, nil
}

func (t *TypedCircuit[R]) validate() error {
	lo, hi := bounds[R]()
	if lo == 0 && hi == 0 {
		return nil
	}
	h, err := t.Header()
	if err != nil {
		return err
	}
	if err := validation.CheckVersionRange("__value__", int(h.QPYVersion), lo, hi); err != nil {
		return err
	}
	return h.checkPrograms("__value__")
}

// MarshalJSON implements json.Marshaler.
func (t TypedCircuit[R]) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string `json:"__type__"`
		Value string `json:"__value__"`
	}{CircuitType, t.value})
}

// UnmarshalJSON implements json.Unmarshaler and validates the envelope.
func (t *TypedCircuit[R]) UnmarshalJSON(b []byte) error {
	var w struct {
		Type  *string `json:"__type__"`
		Value *string `json:"__value__"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return validation.Errorf(validation.ErrInvalidField, "", "invalid typed circuit: %v", err)
	}
	if w.Type != nil {
		if err := validation.CheckLiteral("__type__", *w.Type, CircuitType); err != nil {
			return err
		}
	}
	if w.Value == nil {
		return validation.Errorf(validation.ErrInvalidField, "__value__", "field required")
	}
	parsed, err := NewTypedCircuit[R](*w.Value)
	if err != nil {
		return err
	}
	*t = *parsed
	return nil
}
