package v01

import (
	"encoding/json"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/tensor"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/validation"
)

// ResultItem holds the named output tensors of one program item. Item
// metadata is always null in this version.
type ResultItem struct {
	Results map[string]tensor.Record `json:"results"`
}

// MarshalJSON implements json.Marshaler.
func (r ResultItem) MarshalJSON() ([]byte, error) {
	results := r.Results
	if results == nil {
		results = map[string]tensor.Record{}
	}
	return json.Marshal(struct {
		Results  map[string]tensor.Record `json:"results"`
		Metadata any                      `json:"metadata"`
	}{results, nil})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *ResultItem) UnmarshalJSON(b []byte) error {
	raw, err := validation.Object(b)
	if err != nil {
		return err
	}
	var out ResultItem
	if _, err := validation.Field(raw, "results", &out.Results, true); err != nil {
		return err
	}
	if out.Results == nil {
		return validation.Errorf(validation.ErrInvalidField, "results", "input should be a valid dictionary")
	}
	if err := validation.Null(raw, "metadata"); err != nil {
		return err
	}
	*r = out
	return nil
}

// QuantumProgramResult is the result of executing a quantum program: one
// entry per item, in program order. Job metadata is always null in this
// version.
type QuantumProgramResult struct {
	SchemaVersion string       `json:"schema_version"`
	Data          []ResultItem `json:"data"`
}

// MarshalJSON implements json.Marshaler.
func (r QuantumProgramResult) MarshalJSON() ([]byte, error) {
	version := r.SchemaVersion
	if version == "" {
		version = SchemaVersion
	}
	data := r.Data
	if data == nil {
		data = []ResultItem{}
	}
	return json.Marshal(struct {
		SchemaVersion string       `json:"schema_version"`
		Data          []ResultItem `json:"data"`
		Metadata      any          `json:"metadata"`
	}{version, data, nil})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *QuantumProgramResult) UnmarshalJSON(b []byte) error {
	raw, err := validation.Object(b)
	if err != nil {
		return err
	}
	out := QuantumProgramResult{SchemaVersion: SchemaVersion}
	if _, err := validation.Field(raw, "schema_version", &out.SchemaVersion, false); err != nil {
		return err
	}
	if err := validation.CheckLiteral("schema_version", out.SchemaVersion, SchemaVersion); err != nil {
		return err
	}
	if _, err := validation.Field(raw, "data", &out.Data, true); err != nil {
		return err
	}
	if err := validation.Null(raw, "metadata"); err != nil {
		return err
	}
	*r = out
	return nil
}
