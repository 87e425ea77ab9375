package v02

import (
	"encoding/json"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/program"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/qpy"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/samplex"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/tensor"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/validation"
)

// Item types.
const (
	CircuitItemType = "circuit"
	SamplexItemType = "samplex"
)

// Item is one entry of a quantum program: *CircuitItem or *SamplexItem.
type Item interface {
	ItemType() string
	// Chunking returns the item's chunk size.
	Chunking() program.ChunkSize
	// Validate runs the cross-field checks of the item, decoding its
	// circuit (and samplex) through the registered codecs.
	Validate() error
}

// CircuitItem binds a single circuit to an array of parameter values.
type CircuitItem struct {
	Circuit qpy.ModelV13ToV17 `json:"circuit"`
	// CircuitArguments has the circuit parameters on its last axis; the
	// leading axes are broadcast over.
	CircuitArguments tensor.F64 `json:"circuit_arguments"`
	// ChunkSize defaults to program.Auto. Explicit sizes are only honored in
	// session execution mode.
	ChunkSize program.ChunkSize `json:"chunk_size"`
}

// ItemType implements Item.
func (*CircuitItem) ItemType() string { return CircuitItemType }

// Chunking implements Item.
func (it *CircuitItem) Chunking() program.ChunkSize { return it.ChunkSize }

// Validate implements Item.
func (it *CircuitItem) Validate() error {
	if err := validation.At("chunk_size", it.ChunkSize.Validate()); err != nil {
		return err
	}
	circ, err := it.Circuit.ToCircuit(true)
	if err != nil {
		return validation.At("circuit", err)
	}
	return program.CheckCircuitArguments(circ, it.CircuitArguments)
}

// MarshalJSON implements json.Marshaler.
func (it CircuitItem) MarshalJSON() ([]byte, error) {
	type plain CircuitItem
	return json.Marshal(struct {
		ItemType string `json:"item_type"`
		plain
	}{CircuitItemType, plain(it)})
}

// UnmarshalJSON implements json.Unmarshaler and validates the item.
func (it *CircuitItem) UnmarshalJSON(b []byte) error {
	raw, err := validation.Object(b)
	if err != nil {
		return err
	}
	var out CircuitItem
	if err := checkItemType(raw, CircuitItemType); err != nil {
		return err
	}
	if _, err := validation.Field(raw, "circuit", &out.Circuit, true); err != nil {
		return err
	}
	if _, err := validation.Field(raw, "circuit_arguments", &out.CircuitArguments, true); err != nil {
		return err
	}
	if _, err := validation.Field(raw, "chunk_size", &out.ChunkSize, false); err != nil {
		return err
	}
	if err := out.Validate(); err != nil {
		return err
	}
	*it = out
	return nil
}

// SamplexItem pairs a circuit with the samplex that generates its
// parameter values.
type SamplexItem struct {
	Circuit          qpy.ModelV13ToV17        `json:"circuit"`
	Samplex          samplex.ModelSSV1        `json:"samplex"`
	SamplexArguments program.SamplexArguments `json:"samplex_arguments"`
	// Shape extends the implicit shape of the samplex arguments; the axes
	// it adds enumerate randomizations.
	Shape     []int             `json:"shape"`
	ChunkSize program.ChunkSize `json:"chunk_size"`
}

// ItemType implements Item.
func (*SamplexItem) ItemType() string { return SamplexItemType }

// Chunking implements Item.
func (it *SamplexItem) Chunking() program.ChunkSize { return it.ChunkSize }

// Validate implements Item.
func (it *SamplexItem) Validate() error {
	if err := validation.At("chunk_size", it.ChunkSize.Validate()); err != nil {
		return err
	}
	circ, err := it.Circuit.ToCircuit(true)
	if err != nil {
		return validation.At("circuit", err)
	}
	sx, err := it.Samplex.ToSamplex(true)
	if err != nil {
		return validation.At("samplex", err)
	}
	return program.CheckSamplexOutputs(circ, sx)
}

// MarshalJSON implements json.Marshaler.
func (it SamplexItem) MarshalJSON() ([]byte, error) {
	type plain SamplexItem
	if it.Shape == nil {
		it.Shape = []int{}
	}
	if it.SamplexArguments == nil {
		it.SamplexArguments = program.SamplexArguments{}
	}
	return json.Marshal(struct {
		ItemType string `json:"item_type"`
		plain
	}{SamplexItemType, plain(it)})
}

// UnmarshalJSON implements json.Unmarshaler and validates the item.
func (it *SamplexItem) UnmarshalJSON(b []byte) error {
	raw, err := validation.Object(b)
	if err != nil {
		return err
	}
	var out SamplexItem
	if err := checkItemType(raw, SamplexItemType); err != nil {
		return err
	}
	if _, err := validation.Field(raw, "circuit", &out.Circuit, true); err != nil {
		return err
	}
	if _, err := validation.Field(raw, "samplex", &out.Samplex, true); err != nil {
		return err
	}
	if _, err := validation.Field(raw, "samplex_arguments", &out.SamplexArguments, true); err != nil {
		return err
	}
	if _, err := validation.Field(raw, "shape", &out.Shape, true); err != nil {
		return err
	}
	if _, err := validation.Field(raw, "chunk_size", &out.ChunkSize, false); err != nil {
		return err
	}
	if err := out.Validate(); err != nil {
		return err
	}
	*it = out
	return nil
}

func checkItemType(raw map[string]json.RawMessage, want string) error {
	got := want
	if _, err := validation.Field(raw, "item_type", &got, false); err != nil {
		return err
	}
	return validation.CheckLiteral("item_type", got, want)
}

// decodeItem dispatches on the item_type discriminator.
func decodeItem(b []byte) (Item, error) {
	raw, err := validation.Object(b)
	if err != nil {
		return nil, err
	}
	var kind string
	if _, err := validation.Field(raw, "item_type", &kind, true); err != nil {
		return nil, err
	}
	switch kind {
	case CircuitItemType:
		var it CircuitItem
		if err := it.UnmarshalJSON(b); err != nil {
			return nil, err
		}
		return &it, nil
	case SamplexItemType:
		var it SamplexItem
		if err := it.UnmarshalJSON(b); err != nil {
			return nil, err
		}
		return &it, nil
	default:
		return nil, validation.Errorf(validation.ErrInvalidField, "item_type",
			"input tag %q does not match any of the expected tags: 'circuit', 'samplex'", kind)
	}
}
