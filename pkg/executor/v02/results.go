package v02

import (
	"encoding/json"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/program"
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

// Metadata is the job-level execution metadata.
type Metadata struct {
	// ChunkTiming covers every executed chunk of the program.
	ChunkTiming []program.ChunkSpan `json:"chunk_timing"`
}

// MarshalJSON implements json.Marshaler.
func (m Metadata) MarshalJSON() ([]byte, error) {
	timing := m.ChunkTiming
	if timing == nil {
		timing = []program.ChunkSpan{}
	}
	return json.Marshal(struct {
		ChunkTiming []program.ChunkSpan `json:"chunk_timing"`
	}{timing})
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Metadata) UnmarshalJSON(b []byte) error {
	raw, err := validation.Object(b)
	if err != nil {
		return err
	}
	var out Metadata
	if _, err := validation.Field(raw, "chunk_timing", &out.ChunkTiming, true); err != nil {
		return err
	}
	if out.ChunkTiming == nil {
		return validation.Errorf(validation.ErrInvalidField, "chunk_timing", "input should be a valid list")
	}
	*m = out
	return nil
}

// QuantumProgramResult is the result of executing a quantum program: one
// entry per item, in program order.
type QuantumProgramResult struct {
	SchemaVersion string       `json:"schema_version"`
	Data          []ResultItem `json:"data"`
	Metadata      Metadata     `json:"metadata"`
}

// MarshalJSON implements json.Marshaler.
func (r QuantumProgramResult) MarshalJSON() ([]byte, error) {
	type plain QuantumProgramResult
	if r.SchemaVersion == "" {
		r.SchemaVersion = SchemaVersion
	}
	if r.Data == nil {
		r.Data = []ResultItem{}
	}
	return json.Marshal(plain(r))
}

// UnmarshalJSON implements json.Unmarshaler. A null metadata, written by
// producers that predate chunk timing, becomes empty metadata.
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
	md, ok := raw["metadata"]
	switch {
	case !ok:
		return validation.Errorf(validation.ErrInvalidField, "metadata", "field required")
	case validation.IsNull(md):
		out.Metadata = Metadata{ChunkTiming: []program.ChunkSpan{}}
	default:
		if _, err := validation.Field(raw, "metadata", &out.Metadata, true); err != nil {
			return err
		}
	}
	*r = out
	return nil
}
