package v01

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/ndarray"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/program"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/validation"
)

// BitArray holds measurement outcomes for one classical register as a
// bit-packed uint8 array of shape (*pub_shape, num_shots, ceil(num_bits/8)),
// stored as base64 of a zlib-compressed .npy file.
type BitArray struct {
	Array   string `json:"array"`
	NumBits int    `json:"num_bits"`
}

// NewBitArray packs data, a C-ordered uint8 array of the given shape.
func NewBitArray(data []uint8, shape []int, numBits int) (*BitArray, error) {
	arr, err := ndarray.FromUint8(data, shape)
	if err != nil {
		return nil, validation.At("array", err)
	}
	s, err := arr.EncodeString()
	if err != nil {
		return nil, err
	}
	return &BitArray{Array: s, NumBits: numBits}, nil
}

// Decode returns the uint8 data in C order and its shape.
func (a BitArray) Decode() ([]uint8, []int, error) {
	arr, err := ndarray.DecodeString(a.Array)
	if err != nil {
		return nil, nil, validation.At("array", err)
	}
	if arr.Kind() != ndarray.Uint8 {
		return nil, nil, validation.Errorf(validation.ErrMalformedPayload, "array",
			"BitArray must contain uint8 data, got %s", arr.Kind())
	}
	data, err := arr.Uint8s()
	if err != nil {
		return nil, nil, validation.At("array", err)
	}
	return data, arr.Shape(), nil
}

// Counts tallies the outcomes of every shot as bitstrings of NumBits bits,
// most significant bit first. Each shot occupies the array's last axis,
// big-endian.
func (a BitArray) Counts() (map[string]int, error) {
	data, shape, err := a.Decode()
	if err != nil {
		return nil, err
	}
	width := 0
	if len(shape) > 0 {
		width = shape[len(shape)-1]
	}
	if a.NumBits < 0 || width*8 < a.NumBits {
		return nil, validation.Errorf(validation.ErrMalformedTensor, "num_bits",
			"%d bytes per shot cannot hold %d bits", width, a.NumBits)
	}
	counts := make(map[string]int)
	if width == 0 {
		return counts, nil
	}
	var sb strings.Builder
	for off := 0; off+width <= len(data); off += width {
		sb.Reset()
		for _, b := range data[off : off+width] {
			for k := 7; k >= 0; k-- {
				if b&(1<<k) != 0 {
					sb.WriteByte('1')
				} else {
					sb.WriteByte('0')
				}
			}
		}
		full := sb.String()
		counts[full[len(full)-a.NumBits:]]++
	}
	return counts, nil
}

// DataBin holds the measurement results of one PUB, keyed by classical
// register name.
type DataBin struct {
	Shape []int `json:"shape"`
	// FieldNames repeats the keys of Fields, in register order.
	FieldNames []string            `json:"field_names"`
	Fields     map[string]BitArray `json:"fields"`
}

// Validate checks that FieldNames and Fields agree.
func (d *DataBin) Validate() error {
	if len(d.FieldNames) != len(d.Fields) {
		return validation.Errorf(validation.ErrInvalidField, "field_names",
			"%d field names for %d fields", len(d.FieldNames), len(d.Fields))
	}
	for i, name := range d.FieldNames {
		if _, ok := d.Fields[name]; !ok {
			return validation.Errorf(validation.ErrInvalidField, "field_names."+strconv.Itoa(i), "no field named %q", name)
		}
	}
	return nil
}

// PubResult is the result of one PUB.
type PubResult struct {
	Data     DataBin        `json:"data"`
	Metadata map[string]any `json:"metadata"`
}

// Result is the top-level result of a sampler job. Metadata is free-form;
// ChunkTiming decodes the chunk_timing entry when present.
type Result struct {
	PubResults []PubResult    `json:"pub_results"`
	Metadata   map[string]any `json:"metadata"`
}

// SchemaVersion returns the schema version of the result, which is
// implicit on the wire.
func (r *Result) SchemaVersion() string { return SchemaVersion }

// ChunkTiming decodes the chunk_timing entry of the job metadata. It returns
// nil when the entry is absent.
func (r *Result) ChunkTiming() ([]program.ChunkSpan, error) {
	v, ok := r.Metadata["chunk_timing"]
	if !ok {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var spans []program.ChunkSpan
	if err := validation.Decode(b, &spans); err != nil {
		return nil, validation.At("metadata.chunk_timing", err)
	}
	return spans, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Result) UnmarshalJSON(b []byte) error {
	raw, err := validation.Object(b)
	if err != nil {
		return err
	}
	var out Result
	if _, err := validation.Field(raw, "pub_results", &out.PubResults, true); err != nil {
		return err
	}
	if _, err := validation.Field(raw, "metadata", &out.Metadata, true); err != nil {
		return err
	}
	if out.Metadata == nil {
		return validation.Errorf(validation.ErrInvalidField, "metadata", "input should be a valid dictionary")
	}
	for i := range out.PubResults {
		if err := out.PubResults[i].Data.Validate(); err != nil {
			return validation.At("pub_results."+strconv.Itoa(i)+".data", err)
		}
	}
	*r = out
	return nil
}
