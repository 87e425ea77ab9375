// Package pauli holds the sparse Pauli records that appear as samplex
// arguments and noise-learner results.
package pauli

import (
	"encoding/json"
	"fmt"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/validation"
)

// Term is one sparse Pauli: a string over IXYZ applied to the listed qubits.
// On the wire it is the pair [pauli, qubits].
type Term struct {
	Pauli  string
	Qubits []int
}

// MarshalJSON implements json.Marshaler.
func (t Term) MarshalJSON() ([]byte, error) {
	qubits := t.Qubits
	if qubits == nil {
		qubits = []int{}
	}
	return json.Marshal([]any{t.Pauli, qubits})
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Term) UnmarshalJSON(b []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(b, &pair); err != nil || len(pair) != 2 {
		return validation.Errorf(validation.ErrInvalidField, "", "sparse term must be a [pauli, qubits] pair")
	}
	if err := json.Unmarshal(pair[0], &t.Pauli); err != nil {
		return validation.Errorf(validation.ErrInvalidField, "0", "pauli must be a string")
	}
	if err := json.Unmarshal(pair[1], &t.Qubits); err != nil {
		return validation.Errorf(validation.ErrInvalidField, "1", "qubits must be a list of integers")
	}
	return nil
}

func (t Term) check(numQubits int) error {
	if !validation.IsPauliString(t.Pauli) {
		return validation.Errorf(validation.ErrInvalidField, "0", "%q is not a Pauli string", t.Pauli)
	}
	if len(t.Pauli) != len(t.Qubits) {
		return validation.Errorf(validation.ErrInvalidField, "1",
			"%d qubits given for Pauli string of length %d", len(t.Qubits), len(t.Pauli))
	}
	seen := make(map[int]struct{}, len(t.Qubits))
	for i, q := range t.Qubits {
		if q < 0 || q >= numQubits {
			return validation.Errorf(validation.ErrInvalidField, fmt.Sprintf("1.%d", i),
				"qubit %d is out of range for %d qubits", q, numQubits)
		}
		if _, dup := seen[q]; dup {
			return validation.Errorf(validation.ErrInvalidField, fmt.Sprintf("1.%d", i), "qubit %d is repeated", q)
		}
		seen[q] = struct{}{}
	}
	return nil
}

// SparseList is a list of sparse Pauli terms on NumQubits qubits.
type SparseList struct {
	SparseTerms []Term `json:"sparse_terms"`
	NumQubits   int    `json:"num_qubits"`
}

// Validate checks every term against the qubit count.
func (l *SparseList) Validate() error {
	if l.NumQubits < 0 {
		return validation.Errorf(validation.ErrInvalidField, "num_qubits", "input should be greater than or equal to 0")
	}
	for i, term := range l.SparseTerms {
		if err := term.check(l.NumQubits); err != nil {
			return validation.AtIndex("sparse_terms", i, err)
		}
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler and validates the list.
func (l *SparseList) UnmarshalJSON(b []byte) error {
	var out SparseList
	numQubits, err := decodeTerms(b, &out.SparseTerms)
	if err != nil {
		return err
	}
	out.NumQubits = numQubits
	if err := out.Validate(); err != nil {
		return err
	}
	*l = out
	return nil
}

// RatedTerm is a Pauli-Lindblad generator with its rate. On the wire it is
// the triple [pauli, qubits, rate].
type RatedTerm struct {
	Term
	Rate float64
}

// MarshalJSON implements json.Marshaler.
func (t RatedTerm) MarshalJSON() ([]byte, error) {
	qubits := t.Qubits
	if qubits == nil {
		qubits = []int{}
	}
	return json.Marshal([]any{t.Pauli, qubits, t.Rate})
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *RatedTerm) UnmarshalJSON(b []byte) error {
	var triple []json.RawMessage
	if err := json.Unmarshal(b, &triple); err != nil || len(triple) != 3 {
		return validation.Errorf(validation.ErrInvalidField, "", "generator must be a [pauli, qubits, rate] triple")
	}
	pair, _ := json.Marshal(triple[:2])
	if err := t.Term.UnmarshalJSON(pair); err != nil {
		return err
	}
	if err := json.Unmarshal(triple[2], &t.Rate); err != nil {
		return validation.Errorf(validation.ErrInvalidField, "2", "rate must be a number")
	}
	return nil
}

// LindbladMap is a Pauli-Lindblad map: generators with rates on NumQubits
// qubits.
type LindbladMap struct {
	SparseTerms []RatedTerm `json:"sparse_terms"`
	NumQubits   int         `json:"num_qubits"`
}

// Validate checks every generator against the qubit count.
func (m *LindbladMap) Validate() error {
	if m.NumQubits < 0 {
		return validation.Errorf(validation.ErrInvalidField, "num_qubits", "input should be greater than or equal to 0")
	}
	for i, term := range m.SparseTerms {
		if err := term.check(m.NumQubits); err != nil {
			return validation.AtIndex("sparse_terms", i, err)
		}
	}
	return nil
}

// Rates returns the generator rates in order.
func (m *LindbladMap) Rates() []float64 {
	out := make([]float64, len(m.SparseTerms))
	for i, t := range m.SparseTerms {
		out[i] = t.Rate
	}
	return out
}

// UnmarshalJSON implements json.Unmarshaler and validates the map.
func (m *LindbladMap) UnmarshalJSON(b []byte) error {
	var out LindbladMap
	numQubits, err := decodeTerms(b, &out.SparseTerms)
	if err != nil {
		return err
	}
	out.NumQubits = numQubits
	if err := out.Validate(); err != nil {
		return err
	}
	*m = out
	return nil
}

// decodeTerms reads the shared {"sparse_terms", "num_qubits"} layout,
// decoding each term into dst so failures carry the term index.
func decodeTerms[T any](b []byte, dst *[]T) (int, error) {
	var raw struct {
		SparseTerms []json.RawMessage `json:"sparse_terms"`
		NumQubits   *int              `json:"num_qubits"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return 0, validation.Errorf(validation.ErrInvalidField, "", "invalid sparse Pauli record: %v", err)
	}
	if raw.SparseTerms == nil {
		return 0, validation.Errorf(validation.ErrInvalidField, "sparse_terms", "field required")
	}
	if raw.NumQubits == nil {
		return 0, validation.Errorf(validation.ErrInvalidField, "num_qubits", "field required")
	}
	terms := make([]T, len(raw.SparseTerms))
	for i, r := range raw.SparseTerms {
		if err := json.Unmarshal(r, &terms[i]); err != nil {
			return 0, validation.AtIndex("sparse_terms", i, err)
		}
	}
	*dst = terms
	return *raw.NumQubits, nil
}
