package v02

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/qpy"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/qpy/qpytest"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/validation"
)

func instructions(t *testing.T, version int) *qpy.Model[qpy.AnyVersion] {
	t.Helper()
	m, err := qpy.FromCircuit[qpy.AnyVersion](qpytest.New("layer", 0), version)
	require.NoError(t, err)
	return m
}

func TestParamsDefaults(t *testing.T) {
	qpytest.Install(t)

	b, err := json.Marshal(map[string]any{"instructions": instructions(t, 15), "options": map[string]any{}})
	require.NoError(t, err)
	var p Params
	require.NoError(t, json.Unmarshal(b, &p))
	assert.Equal(t, SchemaVersion, p.SchemaVersion)
	if diff := cmp.Diff(DefaultOptions(), p.Options); diff != "" {
		t.Errorf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestParamsOverrides(t *testing.T) {
	qpytest.Install(t)

	b, err := json.Marshal(map[string]any{
		"schema_version": "v0.2",
		"instructions":   instructions(t, 13),
		"options": map[string]any{
			"num_randomizations": 8,
			"layer_pair_depths":  []int{1},
			"post_selection":     map[string]any{"enable": true, "x_pulse_type": "rx"},
		},
	})
	require.NoError(t, err)
	var p Params
	require.NoError(t, json.Unmarshal(b, &p))
	assert.Equal(t, 8, p.Options.NumRandomizations)
	assert.Equal(t, 128, p.Options.ShotsPerRandomization)
	assert.Equal(t, []int{1}, p.Options.LayerPairDepths)
	assert.True(t, p.Options.PostSelection.Enable)
	assert.Equal(t, "rx", p.Options.PostSelection.XPulseType)
	assert.Equal(t, "node", p.Options.PostSelection.Strategy)

	out, err := json.Marshal(p)
	require.NoError(t, err)
	var again Params
	require.NoError(t, json.Unmarshal(out, &again))
	assert.Equal(t, p.Options, again.Options)
}

func TestParamsRejects(t *testing.T) {
	qpytest.Install(t)

	tests := []struct {
		name  string
		body  map[string]any
		kind  error
		field string
	}{
		{"pulse type", map[string]any{"instructions": instructions(t, 13), "options": map[string]any{"post_selection": map[string]any{"x_pulse_type": "ry"}}}, validation.ErrInvalidField, "options.post_selection.x_pulse_type"},
		{"strategy", map[string]any{"instructions": instructions(t, 13), "options": map[string]any{"post_selection": map[string]any{"strategy": "face"}}}, validation.ErrInvalidField, "options.post_selection.strategy"},
		{"qpy 17", map[string]any{"instructions": instructions(t, 17), "options": map[string]any{}}, validation.ErrVersionOutOfRange, "instructions.qpy_version"},
		{"missing options", map[string]any{"instructions": instructions(t, 13)}, validation.ErrInvalidField, "options"},
		{"schema version", map[string]any{"schema_version": "v0.1", "instructions": instructions(t, 13), "options": map[string]any{}}, validation.ErrInvalidField, "schema_version"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.body)
			require.NoError(t, err)
			var p Params
			err = json.Unmarshal(b, &p)
			require.ErrorIs(t, err, tt.kind)
			var fe *validation.FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}

const trexResult = `{
	"schema_version": "v0.2",
	"data": [{
		"generators_sparse": [[["X", [0]]], [["ZZ", [0, 1]]]],
		"num_qubits": 2,
		"rates": {"data": "AAAAAAAAAAAAAAAAAAAAAA==", "shape": [2], "dtype": "f64"},
		"rates_std": {"data": "AAAAAAAAAAAAAAAAAAAAAA==", "shape": [2], "dtype": "f64"},
		"metadata": {
			"learning_protocol": "trex",
			"post_selection": {"fraction_kept": 0.9, "success_rates": {"0": 0.99, "1": 0.97}}
		}
	}]
}`

func TestTREXResults(t *testing.T) {
	var r Results
	require.NoError(t, json.Unmarshal([]byte(trexResult), &r))
	require.Len(t, r.Data, 1)
	md, ok := r.Data[0].Metadata.(*TREXMetadata)
	require.True(t, ok)
	assert.InDelta(t, 0.9, md.PostSelection.FractionKept, 1e-12)
	assert.InDelta(t, 0.97, md.PostSelection.SuccessRates[1], 1e-12)

	gens, err := r.Data[0].Generators()
	require.NoError(t, err)
	require.Len(t, gens, 2)
	assert.Equal(t, "ZZ", gens[1].SparseTerms[0].Pauli)

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, trexResult, string(out))
}

func TestLindbladResults(t *testing.T) {
	in := `{
		"data": [{
			"generators_sparse": [],
			"num_qubits": 1,
			"rates": {"data": "", "shape": [0]},
			"rates_std": {"data": "", "shape": [0]},
			"metadata": {
				"learning_protocol": "lindblad",
				"post_selection": {
					"0": {"fraction_kept": 1, "success_rates": {}},
					"2": {"fraction_kept": 0.5, "success_rates": {"0": 0.8}}
				}
			}
		}]
	}`
	var r Results
	require.NoError(t, json.Unmarshal([]byte(in), &r))
	md, ok := r.Data[0].Metadata.(*LindbladMetadata)
	require.True(t, ok)
	assert.Len(t, md.PostSelection, 2)
	assert.Equal(t, ProtocolLindblad, md.LearningProtocol())
}

func TestResultMetadataRejects(t *testing.T) {
	tests := []struct {
		name     string
		metadata string
		field    string
	}{
		{"unknown protocol", `{"learning_protocol": "pec", "post_selection": {}}`, "data.0.metadata.learning_protocol"},
		{"missing protocol", `{"post_selection": {}}`, "data.0.metadata.learning_protocol"},
		{"fraction above one", `{"learning_protocol": "trex", "post_selection": {"fraction_kept": 1.5, "success_rates": {}}}`, "data.0.metadata.post_selection.fraction_kept"},
		{"negative rate", `{"learning_protocol": "lindblad", "post_selection": {"4": {"fraction_kept": 0.5, "success_rates": {"3": -0.1}}}}`, "data.0.metadata.post_selection.4.success_rates.3"},
		{"missing post selection", `{"learning_protocol": "trex"}`, "data.0.metadata.post_selection"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := `{"data": [{"generators_sparse": [], "num_qubits": 0,
				"rates": {"data": "", "shape": [0]}, "rates_std": {"data": "", "shape": [0]},
				"metadata": ` + tt.metadata + `}]}`
			var r Results
			err := json.Unmarshal([]byte(in), &r)
			require.ErrorIs(t, err, validation.ErrInvalidField)
			var fe *validation.FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}

func TestGeneratorsOutOfRange(t *testing.T) {
	in := `{"generators_sparse": [[["X", [3]]]], "num_qubits": 2,
		"rates": {"data": "AAAAAAAAAAA=", "shape": [1]}, "rates_std": {"data": "AAAAAAAAAAA=", "shape": [1]},
		"metadata": {"learning_protocol": "trex", "post_selection": {"fraction_kept": 1, "success_rates": {}}}}`
	var r Result
	require.NoError(t, json.Unmarshal([]byte(in), &r))
	_, err := r.Generators()
	require.ErrorIs(t, err, validation.ErrInvalidField)
}
