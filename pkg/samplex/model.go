package samplex

import (
	"encoding/json"
	"fmt"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/validation"
)

// VersionRange fixes the inclusive SSVs an envelope variant accepts.
type VersionRange interface {
	Bounds() (lo, hi int)
}

// SSV1 accepts only serialization version 1.
type SSV1 struct{}

func (SSV1) Bounds() (int, int) { return 1, 1 }

// SSV1ToSSV2 accepts serialization versions 1 and 2.
type SSV1ToSSV2 struct{}

func (SSV1ToSSV2) Bounds() (int, int) { return 1, 2 }

// Model is a JSON-encoded samplex and the SSV it was written with.
//
// Wire form: {"samplex_json": "<json text>", "ssv": <int>}.
type Model[R VersionRange] struct {
	text string
	ssv  int

	samplex Samplex
}

// Variants used by the primitive schemas.
type (
	ModelSSV1       = Model[SSV1]
	ModelSSV1ToSSV2 = Model[SSV1ToSSV2]
)

// NewModel validates the wire fields and builds a Model. The range check on
// ssv runs before the embedded token is looked at.
func NewModel[R VersionRange](text string, ssv int) (*Model[R], error) {
	var r R
	lo, hi := r.Bounds()
	if err := validation.CheckVersionRange("ssv", ssv, lo, hi); err != nil {
		return nil, err
	}
	found, ok := FindSSV(text)
	if !ok {
		return nil, validation.Errorf(validation.ErrVersionTokenMissing, "samplex_json",
			"no serialization version token found in the samplex JSON")
	}
	if found != ssv {
		return nil, validation.Errorf(validation.ErrVersionMismatch, "ssv",
			"the ssv is %d but the samplex JSON was serialized with version %d", ssv, found)
	}
	return &Model[R]{text: text, ssv: ssv}, nil
}

// FromSamplex serializes s at the requested SSV and caches it.
func FromSamplex[R VersionRange](s Samplex, ssv int) (*Model[R], error) {
	var r R
	lo, hi := r.Bounds()
	if err := validation.CheckVersionRange("ssv", ssv, lo, hi); err != nil {
		return nil, err
	}
	codec, err := Registered()
	if err != nil {
		return nil, err
	}
	text, err := codec.ToJSON(s, ssv)
	if err != nil {
		return nil, fmt.Errorf("samplex: serialize at ssv %d: %w", ssv, err)
	}
	m, err := NewModel[R](text, ssv)
	if err != nil {
		return nil, err
	}
	m.samplex = s
	return m, nil
}

// JSON returns the samplex JSON text.
func (m *Model[R]) JSON() string { return m.text }

// SSV returns the declared serialization version.
func (m *Model[R]) SSV() int { return m.ssv }

// ToSamplex returns the decoded samplex, reusing the cached instance when
// useCache is set. A fresh decode replaces the cache.
func (m *Model[R]) ToSamplex(useCache bool) (Samplex, error) {
	if useCache && m.samplex != nil {
		return m.samplex, nil
	}
	codec, err := Registered()
	if err != nil {
		return nil, err
	}
	s, err := codec.FromJSON(m.text)
	if err != nil {
		return nil, fmt.Errorf("samplex: deserialize: %w", err)
	}
	m.samplex = s
	return s, nil
}

// MarshalJSON implements json.Marshaler.
func (m Model[R]) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		JSON string `json:"samplex_json"`
		SSV  int    `json:"ssv"`
	}{m.text, m.ssv})
}

// UnmarshalJSON implements json.Unmarshaler and validates the envelope.
func (m *Model[R]) UnmarshalJSON(b []byte) error {
	var w struct {
		JSON *string `json:"samplex_json"`
		SSV  *int    `json:"ssv"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return validation.Errorf(validation.ErrInvalidField, "", "invalid samplex model: %v", err)
	}
	if w.JSON == nil {
		return validation.Errorf(validation.ErrInvalidField, "samplex_json", "field required")
	}
	if w.SSV == nil {
		return validation.Errorf(validation.ErrInvalidField, "ssv", "field required")
	}
	parsed, err := NewModel[R](*w.JSON, *w.SSV)
	if err != nil {
		return err
	}
	*m = *parsed
	return nil
}
