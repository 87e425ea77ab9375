package v01_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v01 "github.com/Qiskit/ibm-quantum-schemas/pkg/executor/v01"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/qpy"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/qpy/qpytest"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/samplex"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/samplex/samplextest"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/tensor"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/validation"
)

func setup(t *testing.T) {
	t.Helper()
	qpytest.Install(t)
	samplextest.Install(t)
}

func circuitEnvelope(t *testing.T, params, version int) any {
	t.Helper()
	m, err := qpy.FromCircuit[qpy.AnyVersion](qpytest.New("c", params), version)
	require.NoError(t, err)
	return m
}

func samplexEnvelope(t *testing.T, params int) any {
	t.Helper()
	m, err := samplex.FromSamplex[samplex.SSV1](samplextest.WithParameterValues(16, params), 1)
	require.NoError(t, err)
	return m
}

func arguments(t *testing.T, shape ...int) any {
	t.Helper()
	n := 1
	for _, d := range shape {
		n *= d
	}
	r, err := tensor.EncodeF64(make([]float64, n), shape)
	require.NoError(t, err)
	return r
}

func circuitItem(t *testing.T, params int, argShape ...int) map[string]any {
	return map[string]any{
		"item_type":         "circuit",
		"circuit":           circuitEnvelope(t, params, 13),
		"circuit_arguments": arguments(t, argShape...),
		"chunk_size":        4,
	}
}

func samplexItem(t *testing.T, circuitParams, samplexParams int) map[string]any {
	return map[string]any{
		"item_type":         "samplex",
		"circuit":           circuitEnvelope(t, circuitParams, 16),
		"samplex":           samplexEnvelope(t, samplexParams),
		"samplex_arguments": map[string]any{"pauli_lindblad_maps.0": map[string]any{"sparse_terms": []any{[]any{"X", []int{0}, 0.01}}, "num_qubits": 2}},
		"shape":             []int{16},
		"chunk_size":        2,
	}
}

func payload(t *testing.T, items ...map[string]any) map[string]any {
	t.Helper()
	return map[string]any{
		"quantum_program": map[string]any{"shots": 100, "items": items},
		"options":         map[string]any{},
	}
}

func decode(t *testing.T, v any) (*v01.Params, error) {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return v01.Decode(context.Background(), b)
}

func fieldOf(t *testing.T, err error) string {
	t.Helper()
	var fe *validation.FieldError
	require.ErrorAs(t, err, &fe)
	return fe.Field
}

func TestDecodeValidProgram(t *testing.T) {
	setup(t)

	p, err := decode(t, payload(t, circuitItem(t, 3, 5, 3), samplexItem(t, 2, 2)))
	require.NoError(t, err)

	assert.Equal(t, v01.SchemaVersion, p.SchemaVersion)
	assert.Nil(t, p.Version)
	assert.True(t, p.Options.InitQubits)
	assert.Nil(t, p.Options.RepDelay)
	assert.Equal(t, 100, p.QuantumProgram.Shots)
	require.Len(t, p.QuantumProgram.Items, 2)

	ci, ok := p.QuantumProgram.Items[0].(*v01.CircuitItem)
	require.True(t, ok)
	assert.Equal(t, []int{5, 3}, ci.CircuitArguments.Shape())
	assert.Equal(t, 13, ci.Circuit.QPYVersion())

	si, ok := p.QuantumProgram.Items[1].(*v01.SamplexItem)
	require.True(t, ok)
	assert.Equal(t, "pauli_lindblad_map", si.SamplexArguments["pauli_lindblad_maps.0"].Kind())
	assert.Equal(t, []int{16}, si.Shape)

	require.NoError(t, p.QuantumProgram.Validate(context.Background()))
}

func TestRoundTrip(t *testing.T) {
	setup(t)

	p, err := decode(t, payload(t, circuitItem(t, 1, 4, 1), samplexItem(t, 0, 0)))
	require.NoError(t, err)

	out, err := json.Marshal(p)
	require.NoError(t, err)

	var again v01.Params
	require.NoError(t, json.Unmarshal(out, &again))
	out2, err := json.Marshal(again)
	require.NoError(t, err)
	assert.JSONEq(t, string(out), string(out2))
	assert.Contains(t, string(out), `"item_type":"circuit"`)
	assert.Contains(t, string(out), `"item_type":"samplex"`)
}

func TestParameterCountMismatch(t *testing.T) {
	setup(t)

	_, err := decode(t, payload(t, circuitItem(t, 3, 5, 3), circuitItem(t, 3, 5, 2)))
	require.ErrorIs(t, err, validation.ErrParameterCountMismatch)
	assert.Equal(t, "quantum_program.items.1.circuit_arguments", fieldOf(t, err))

	_, err = decode(t, payload(t, samplexItem(t, 3, 4)))
	require.ErrorIs(t, err, validation.ErrParameterCountMismatch)
	assert.Equal(t, "quantum_program.items.0.samplex", fieldOf(t, err))
}

func TestRankZeroArguments(t *testing.T) {
	setup(t)

	_, err := decode(t, payload(t, circuitItem(t, 0)))
	require.NoError(t, err)

	_, err = decode(t, payload(t, circuitItem(t, 2)))
	require.ErrorIs(t, err, validation.ErrParameterCountMismatch)
}

func TestCircuitVersionGate(t *testing.T) {
	setup(t)

	item := circuitItem(t, 1, 1)
	item["circuit"] = circuitEnvelope(t, 1, 17)
	_, err := decode(t, payload(t, item))
	require.ErrorIs(t, err, validation.ErrVersionOutOfRange)
	assert.Equal(t, "quantum_program.items.0.circuit.qpy_version", fieldOf(t, err))
}

func TestFieldConstraints(t *testing.T) {
	setup(t)

	tests := []struct {
		name   string
		mutate func(map[string]any)
		field  string
	}{
		{"zero shots", func(p map[string]any) { p["quantum_program"].(map[string]any)["shots"] = 0 }, "quantum_program.shots"},
		{"missing options", func(p map[string]any) { delete(p, "options") }, "options"},
		{"wrong schema version", func(p map[string]any) { p["schema_version"] = "v0.2" }, "schema_version"},
		{"missing program", func(p map[string]any) { delete(p, "quantum_program") }, "quantum_program"},
		{"zero chunk size", func(p map[string]any) { item(p)["chunk_size"] = 0 }, "quantum_program.items.0.chunk_size"},
		{"auto chunk size", func(p map[string]any) { item(p)["chunk_size"] = "auto" }, "quantum_program.items.0.chunk_size"},
		{"missing item type", func(p map[string]any) { delete(item(p), "item_type") }, "quantum_program.items.0.item_type"},
		{"unknown item type", func(p map[string]any) { item(p)["item_type"] = "pulse" }, "quantum_program.items.0.item_type"},
		{"missing arguments", func(p map[string]any) { delete(item(p), "circuit_arguments") }, "quantum_program.items.0.circuit_arguments"},
		{"bad init_qubits", func(p map[string]any) { p["options"] = map[string]any{"init_qubits": "yes"} }, "options.init_qubits"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := payload(t, circuitItem(t, 1, 2, 1))
			tt.mutate(p)
			_, err := decode(t, p)
			require.ErrorIs(t, err, validation.ErrInvalidField)
			assert.Equal(t, tt.field, fieldOf(t, err))
		})
	}
}

func item(p map[string]any) map[string]any {
	return p["quantum_program"].(map[string]any)["items"].([]map[string]any)[0]
}

func TestVersionAndOptions(t *testing.T) {
	setup(t)

	p := payload(t, circuitItem(t, 1, 1))
	p["version"] = 2
	p["options"] = map[string]any{"init_qubits": false, "rep_delay": 0.0005}
	out, err := decode(t, p)
	require.NoError(t, err)
	require.NotNil(t, out.Version)
	assert.Equal(t, 2, *out.Version)
	assert.False(t, out.Options.InitQubits)
	assert.InDelta(t, 0.0005, *out.Options.RepDelay, 1e-12)
}

func TestNoCodecInstalled(t *testing.T) {
	prev := qpy.Register(nil)
	t.Cleanup(func() { qpy.Register(prev) })

	_, err := decode(t, payload(t, circuitItem(t, 1, 1)))
	require.ErrorIs(t, err, validation.ErrCodecUnavailable)
}

func TestResults(t *testing.T) {
	in := `{
		"schema_version": "v0.1",
		"data": [{"results": {"meas": {"data": "AQI=", "shape": [2], "dtype": "u8"}}, "metadata": null}],
		"metadata": null
	}`
	var r v01.QuantumProgramResult
	require.NoError(t, json.Unmarshal([]byte(in), &r))
	require.Len(t, r.Data, 1)
	vals, err := r.Data[0].Results["meas"].Uint8s()
	require.NoError(t, err)
	assert.Equal(t, []uint8{1, 2}, vals)

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))

	err = json.Unmarshal([]byte(`{"data": [], "metadata": {"x": 1}}`), &r)
	require.ErrorIs(t, err, validation.ErrInvalidField)
	err = json.Unmarshal([]byte(`{"data": []}`), &r)
	require.ErrorIs(t, err, validation.ErrInvalidField)
}
