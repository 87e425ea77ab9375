package v02

import (
	"encoding/json"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/pauli"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/tensor"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/validation"
)

// Learning protocols.
const (
	ProtocolTREX     = "trex"
	ProtocolLindblad = "lindblad"
)

// PostSelectionMetadata reports how post selection treated the shots of a
// learning experiment.
type PostSelectionMetadata struct {
	FractionKept float64 `json:"fraction_kept" validate:"min=0,max=1"`
	// SuccessRates is the fraction of shots in which post selection flipped
	// each qubit, keyed by qubit index.
	SuccessRates map[int]float64 `json:"success_rates" validate:"required,dive,min=0,max=1"`
}

// Metadata is the per-result metadata: *TREXMetadata or *LindbladMetadata.
type Metadata interface {
	LearningProtocol() string
}

// TREXMetadata is the metadata of a TREX result.
type TREXMetadata struct {
	PostSelection PostSelectionMetadata `json:"post_selection"`
}

// LearningProtocol implements Metadata.
func (*TREXMetadata) LearningProtocol() string { return ProtocolTREX }

// LindbladMetadata is the metadata of a Pauli-Lindblad result, with post
// selection reported per layer pair depth.
type LindbladMetadata struct {
	PostSelection map[int]PostSelectionMetadata `json:"post_selection" validate:"required,dive"`
}

// LearningProtocol implements Metadata.
func (*LindbladMetadata) LearningProtocol() string { return ProtocolLindblad }

// Result is the outcome of learning one layer.
type Result struct {
	// GeneratorsSparse lists every generator as sparse Pauli terms.
	GeneratorsSparse [][]pauli.Term `json:"generators_sparse"`
	NumQubits        int            `json:"num_qubits"`
	Rates            tensor.F64     `json:"rates"`
	RatesStd         tensor.F64     `json:"rates_std"`
	Metadata         Metadata       `json:"metadata"`
}

// Generators returns every generator as a validated sparse Pauli list on
// NumQubits qubits.
func (r *Result) Generators() ([]pauli.SparseList, error) {
	out := make([]pauli.SparseList, len(r.GeneratorsSparse))
	for i, terms := range r.GeneratorsSparse {
		out[i] = pauli.SparseList{SparseTerms: terms, NumQubits: r.NumQubits}
		if err := out[i].Validate(); err != nil {
			return nil, validation.AtIndex("generators_sparse", i, err)
		}
	}
	return out, nil
}

// MarshalJSON implements json.Marshaler.
func (r Result) MarshalJSON() ([]byte, error) {
	type plain Result
	var md any
	if r.Metadata != nil {
		b, err := json.Marshal(r.Metadata)
		if err != nil {
			return nil, err
		}
		var m map[string]any
		if err := json.Unmarshal(b, &m); err != nil {
			return nil, err
		}
		m["learning_protocol"] = r.Metadata.LearningProtocol()
		md = m
	}
	gens := r.GeneratorsSparse
	if gens == nil {
		gens = [][]pauli.Term{}
	}
	return json.Marshal(struct {
		GeneratorsSparse [][]pauli.Term `json:"generators_sparse"`
		NumQubits        int            `json:"num_qubits"`
		Rates            tensor.F64     `json:"rates"`
		RatesStd         tensor.F64     `json:"rates_std"`
		Metadata         any            `json:"metadata"`
	}{gens, r.NumQubits, r.Rates, r.RatesStd, md})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Result) UnmarshalJSON(b []byte) error {
	raw, err := validation.Object(b)
	if err != nil {
		return err
	}
	var out Result
	if _, err := validation.Field(raw, "generators_sparse", &out.GeneratorsSparse, true); err != nil {
		return err
	}
	if _, err := validation.Field(raw, "num_qubits", &out.NumQubits, true); err != nil {
		return err
	}
	if _, err := validation.Field(raw, "rates", &out.Rates, true); err != nil {
		return err
	}
	if _, err := validation.Field(raw, "rates_std", &out.RatesStd, true); err != nil {
		return err
	}
	md, ok := raw["metadata"]
	if !ok {
		return validation.Errorf(validation.ErrInvalidField, "metadata", "field required")
	}
	out.Metadata, err = decodeMetadata(md)
	if err != nil {
		return validation.At("metadata", err)
	}
	*r = out
	return nil
}

func decodeMetadata(b []byte) (Metadata, error) {
	raw, err := validation.Object(b)
	if err != nil {
		return nil, err
	}
	var protocol string
	if _, err := validation.Field(raw, "learning_protocol", &protocol, true); err != nil {
		return nil, err
	}
	var md Metadata
	switch protocol {
	case ProtocolTREX:
		md = &TREXMetadata{}
	case ProtocolLindblad:
		md = &LindbladMetadata{}
	default:
		return nil, validation.Errorf(validation.ErrInvalidField, "learning_protocol",
			"input tag %q does not match any of the expected tags: 'trex', 'lindblad'", protocol)
	}
	if _, ok := raw["post_selection"]; !ok {
		return nil, validation.Errorf(validation.ErrInvalidField, "post_selection", "field required")
	}
	if err := validation.Decode(b, md); err != nil {
		return nil, err
	}
	if err := validation.Struct(md); err != nil {
		return nil, err
	}
	return md, nil
}

// Results is the result of a noise learner job, one entry per learned
// layer.
type Results struct {
	SchemaVersion string   `json:"schema_version"`
	Data          []Result `json:"data"`
}

// MarshalJSON implements json.Marshaler.
func (r Results) MarshalJSON() ([]byte, error) {
	type plain Results
	if r.SchemaVersion == "" {
		r.SchemaVersion = SchemaVersion
	}
	if r.Data == nil {
		r.Data = []Result{}
	}
	return json.Marshal(plain(r))
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Results) UnmarshalJSON(b []byte) error {
	raw, err := validation.Object(b)
	if err != nil {
		return err
	}
	out := Results{SchemaVersion: SchemaVersion}
	if _, err := validation.Field(raw, "schema_version", &out.SchemaVersion, false); err != nil {
		return err
	}
	if err := validation.CheckLiteral("schema_version", out.SchemaVersion, SchemaVersion); err != nil {
		return err
	}
	var data []json.RawMessage
	if _, err := validation.Field(raw, "data", &data, true); err != nil {
		return err
	}
	out.Data = make([]Result, len(data))
	for i, d := range data {
		if err := json.Unmarshal(d, &out.Data[i]); err != nil {
			return validation.AtIndex("data", i, err)
		}
	}
	*r = out
	return nil
}
