package v01

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/validation"
)

// Observable maps Pauli strings to real coefficients. Every string of one
// observable has the same length; the empty observable is allowed.
type Observable map[string]float64

// NumQubits returns the common length of the Pauli strings, or 0 for the
// empty observable.
func (o Observable) NumQubits() int {
	for p := range o {
		return len(p)
	}
	return 0
}

// Validate checks the letters and lengths of the Pauli strings.
func (o Observable) Validate() error {
	keys := make([]string, 0, len(o))
	for p := range o {
		keys = append(keys, p)
	}
	sort.Strings(keys)
	for _, p := range keys {
		if !validation.IsPauliString(p) {
			return validation.Errorf(validation.ErrInvalidField, p,
				"Pauli string contains invalid characters; only I, X, Y and Z are allowed")
		}
	}
	sizes := make([]int, len(keys))
	for i, p := range keys {
		sizes[i] = len(p)
	}
	if n := distinct(sizes); len(n) > 1 {
		return validation.Errorf(validation.ErrInvalidField, "",
			"all Pauli strings of an observable must have the same length, got %v", n)
	}
	return nil
}

// Observables is a single observable or a list of them. All non-empty
// observables act on the same number of qubits.
type Observables struct {
	List []Observable
	// Single is set when the wire form is one object rather than a list.
	Single bool
}

// Validate checks every observable and their common length.
func (a Observables) Validate() error {
	var sizes []int
	for i, o := range a.List {
		if err := o.Validate(); err != nil {
			if a.Single {
				return err
			}
			return validation.At(strconv.Itoa(i), err)
		}
		if len(o) > 0 {
			sizes = append(sizes, o.NumQubits())
		}
	}
	if n := distinct(sizes); len(n) > 1 {
		return validation.Errorf(validation.ErrInvalidField, "",
			"all observables must have the same length, got %v", n)
	}
	return nil
}

// NumQubits returns the common length of the observables' Pauli strings.
func (a Observables) NumQubits() int {
	for _, o := range a.List {
		if len(o) > 0 {
			return o.NumQubits()
		}
	}
	return 0
}

// MarshalJSON implements json.Marshaler.
func (a Observables) MarshalJSON() ([]byte, error) {
	if a.Single && len(a.List) == 1 {
		return json.Marshal(a.List[0])
	}
	if a.List == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a.List)
}

// UnmarshalJSON implements json.Unmarshaler and validates the observables.
func (a *Observables) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	var out Observables
	switch {
	case len(b) > 0 && b[0] == '{':
		var o Observable
		if err := validation.Decode(b, &o); err != nil {
			return err
		}
		out = Observables{List: []Observable{o}, Single: true}
	case len(b) > 0 && b[0] == '[':
		if err := validation.Decode(b, &out.List); err != nil {
			return err
		}
	default:
		return validation.Errorf(validation.ErrInvalidField, "",
			"observables should be an object or a list of objects")
	}
	if err := out.Validate(); err != nil {
		return err
	}
	*a = out
	return nil
}

// distinct returns the sorted distinct values of ns.
func distinct(ns []int) []int {
	seen := map[int]bool{}
	out := []int{}
	for _, n := range ns {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Ints(out)
	return out
}
