package qpy

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/validation"
)

// Model is a QPY-encoded circuit with an explicit version field. The payload
// is base64 of the raw (uncompressed) QPY file.
//
// Wire form: {"circuit_b64": "<base64>", "qpy_version": <int>}.
type Model[R VersionRange] struct {
	circuitB64 string
	qpyVersion int

	// circuit is the cached decode; nil until first decoded.
	circuit Circuit
}

// Variants used by the primitive schemas.
type (
	ModelAny      = Model[AnyVersion]
	ModelV13ToV16 = Model[V13ToV16]
	ModelV13ToV17 = Model[V13ToV17]
)

// NewModel validates the wire fields and builds a Model.
func NewModel[R VersionRange](circuitB64 string, qpyVersion int) (*Model[R], error) {
	m := &Model[R]{circuitB64: circuitB64, qpyVersion: qpyVersion}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// FromCircuit serializes c at the given QPY version with the registered
// codec. The returned model caches c, so ToCircuit(true) hands back the very
// same instance.
func FromCircuit[R VersionRange](c Circuit, qpyVersion int) (*Model[R], error) {
	lo, hi := bounds[R]()
	if err := validation.CheckVersionRange("qpy_version", qpyVersion, lo, hi); err != nil {
		return nil, err
	}
	codec, err := Registered()
	if err != nil {
		return nil, err
	}
	raw, err := codec.Dump(c, qpyVersion)
	if err != nil {
		return nil, fmt.Errorf("qpy: dump circuit at version %d: %w", qpyVersion, err)
	}
	m, err := NewModel[R](base64.StdEncoding.EncodeToString(raw), qpyVersion)
	if err != nil {
		return nil, err
	}
	m.circuit = c
	return m, nil
}

// CircuitB64 returns the base64 QPY payload.
func (m *Model[R]) CircuitB64() string { return m.circuitB64 }

// QPYVersion returns the declared QPY version.
func (m *Model[R]) QPYVersion() int { return m.qpyVersion }

// Header sniffs the QPY file header without decoding the circuit.
func (m *Model[R]) Header() (Header, error) {
	raw, err := base64.StdEncoding.DecodeString(m.circuitB64)
	if err != nil {
		return Header{}, validation.Errorf(validation.ErrMalformedPayload, "circuit_b64", "invalid base64: %v", err)
	}
	h, err := ParseHeader(raw)
	if err != nil {
		return Header{}, validation.At("circuit_b64", err)
	}
	return h, nil
}

// ToCircuit returns the decoded circuit. With useCache set and a cached
// circuit present, that instance is returned as is; otherwise the payload is
// decoded into a new instance, which then replaces the cache. Callers that
// mutate a cached circuit own the consequences.
func (m *Model[R]) ToCircuit(useCache bool) (Circuit, error) {
	if useCache && m.circuit != nil {
		return m.circuit, nil
	}
	codec, err := Registered()
	if err != nil {
		return nil, err
	}
	raw, err := base64.StdEncoding.DecodeString(m.circuitB64)
	if err != nil {
		return nil, validation.Errorf(validation.ErrMalformedPayload, "circuit_b64", "invalid base64: %v", err)
	}
	c, err := codec.Load(raw)
	if err != nil {
		return nil, fmt.Errorf("qpy: load circuit: %w", err)
	}
	m.circuit = c
	return c, nil
}

func (m *Model[R]) validate() error {
	lo, hi := bounds[R]()
	if err := validation.CheckVersionRange("qpy_version", m.qpyVersion, lo, hi); err != nil {
		return err
	}
	h, err := m.Header()
	if err != nil {
		return err
	}
	if int(h.QPYVersion) != m.qpyVersion {
		return validation.Errorf(validation.ErrVersionMismatch, "qpy_version",
			"the qpy_version is %d but the encoded QPY version is %d", m.qpyVersion, h.QPYVersion)
	}
	return h.checkPrograms("circuit_b64")
}

type wireModel struct {
	CircuitB64 *string `json:"circuit_b64"`
	QPYVersion *int    `json:"qpy_version"`
}

// MarshalJSON implements json.Marshaler.
func (m Model[R]) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		CircuitB64 string `json:"circuit_b64"`
		QPYVersion int    `json:"qpy_version"`
	}{m.circuitB64, m.qpyVersion})
}

// UnmarshalJSON implements json.Unmarshaler and validates the envelope.
func (m *Model[R]) UnmarshalJSON(b []byte) error {
	var w wireModel
	if err := json.Unmarshal(b, &w); err != nil {
		return validation.Errorf(validation.ErrInvalidField, "", "invalid QPY model: %v", err)
	}
	if w.CircuitB64 == nil {
		return validation.Errorf(validation.ErrInvalidField, "circuit_b64", "field required")
	}
	if w.QPYVersion == nil {
		return validation.Errorf(validation.ErrInvalidField, "qpy_version", "field required")
	}
	parsed, err := NewModel[R](*w.CircuitB64, *w.QPYVersion)
	if err != nil {
		return err
	}
	*m = *parsed
	return nil
}
