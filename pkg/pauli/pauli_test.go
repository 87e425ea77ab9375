package pauli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/validation"
)

func TestSparseList_Unmarshal(t *testing.T) {
	var l SparseList
	require.NoError(t, json.Unmarshal([]byte(`{"sparse_terms": [["XZ", [0, 2]], ["Y", [1]]], "num_qubits": 3}`), &l))
	require.Len(t, l.SparseTerms, 2)
	assert.Equal(t, "XZ", l.SparseTerms[0].Pauli)
	assert.Equal(t, []int{0, 2}, l.SparseTerms[0].Qubits)
	assert.Equal(t, 3, l.NumQubits)

	out, err := json.Marshal(l)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sparse_terms": [["XZ", [0, 2]], ["Y", [1]]], "num_qubits": 3}`, string(out))
}

func TestSparseList_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
		field string
	}{
		{"bad letter", `{"sparse_terms": [["XA", [0, 1]]], "num_qubits": 2}`, "sparse_terms.0.0"},
		{"length mismatch", `{"sparse_terms": [["XX", [0]]], "num_qubits": 2}`, "sparse_terms.0.1"},
		{"short term", `{"sparse_terms": [["I"], ["X", [2]]], "num_qubits": 2}`, "sparse_terms.0"},
		{"out of range", `{"sparse_terms": [["X", [2]]], "num_qubits": 2}`, "sparse_terms.0.1.0"},
		{"repeated qubit", `{"sparse_terms": [["XY", [1, 1]]], "num_qubits": 2}`, "sparse_terms.0.1.1"},
		{"negative qubits", `{"sparse_terms": [], "num_qubits": -1}`, "num_qubits"},
		{"missing terms", `{"num_qubits": 1}`, "sparse_terms"},
		{"missing num_qubits", `{"sparse_terms": []}`, "num_qubits"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l SparseList
			err := json.Unmarshal([]byte(tt.input), &l)
			require.ErrorIs(t, err, validation.ErrInvalidField)
			var fe *validation.FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}

func TestLindbladMap(t *testing.T) {
	var m LindbladMap
	require.NoError(t, json.Unmarshal([]byte(`{"sparse_terms": [["X", [0], 0.01], ["ZZ", [0, 1], 0.002]], "num_qubits": 2}`), &m))
	assert.Equal(t, []float64{0.01, 0.002}, m.Rates())
	assert.Equal(t, "ZZ", m.SparseTerms[1].Pauli)

	out, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sparse_terms": [["X", [0], 0.01], ["ZZ", [0, 1], 0.002]], "num_qubits": 2}`, string(out))

	err = json.Unmarshal([]byte(`{"sparse_terms": [["X", [0]]], "num_qubits": 1}`), &m)
	require.ErrorIs(t, err, validation.ErrInvalidField)

	err = json.Unmarshal([]byte(`{"sparse_terms": [["X", [0], "fast"]], "num_qubits": 1}`), &m)
	var fe *validation.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "sparse_terms.0.2", fe.Field)
}

func TestEmptyTermQubits(t *testing.T) {
	l := SparseList{SparseTerms: []Term{{Pauli: ""}}, NumQubits: 0}
	require.NoError(t, l.Validate())
	out, err := json.Marshal(l)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sparse_terms": [["", []]], "num_qubits": 0}`, string(out))
}
