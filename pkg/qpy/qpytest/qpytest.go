// Package qpytest provides a stand-in QPY codec for tests. It writes a real
// QPY v10+ file header followed by a JSON body describing the circuit, which
// is enough for envelope validation and parameter-count checks.
package qpytest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/qpy"
)

// Circuit is a minimal circuit with a name and a parameter count.
type Circuit struct {
	Name       string `json:"name"`
	Parameters int    `json:"num_parameters"`
}

// NumParameters implements qpy.Circuit.
func (c *Circuit) NumParameters() int { return c.Parameters }

// Codec implements qpy.Codec for *Circuit.
type Codec struct{}

// Dump implements qpy.Codec.
func (Codec) Dump(c qpy.Circuit, version int) ([]byte, error) {
	circ, ok := c.(*Circuit)
	if !ok {
		return nil, fmt.Errorf("qpytest: cannot dump %T", c)
	}
	body, err := json.Marshal(circ)
	if err != nil {
		return nil, err
	}
	return File(version, 1, body), nil
}

// Load implements qpy.Codec.
func (Codec) Load(data []byte) (qpy.Circuit, error) {
	h, err := qpy.ParseHeader(data)
	if err != nil {
		return nil, err
	}
	if h.NumPrograms != 1 {
		return nil, fmt.Errorf("qpytest: %d programs", h.NumPrograms)
	}
	var c Circuit
	if err := json.Unmarshal(data[qpy.HeaderSize:], &c); err != nil {
		return nil, fmt.Errorf("qpytest: decode body: %w", err)
	}
	return &c, nil
}

// File builds a QPY file with an arbitrary header.
func File(version int, programs uint64, body []byte) []byte {
	h := qpy.Header{
		Preface:          [6]byte{'Q', 'I', 'S', 'K', 'I', 'T'},
		QPYVersion:       uint8(version),
		MajorVersion:     2,
		MinorVersion:     1,
		PatchVersion:     0,
		NumPrograms:      programs,
		SymbolicEncoding: 'e',
	}
	var buf bytes.Buffer
	buf.Write(h.Bytes())
	buf.Write(body)
	return buf.Bytes()
}

// Install registers Codec for the duration of t.
func Install(t testing.TB) {
	t.Helper()
	prev := qpy.Register(Codec{})
	t.Cleanup(func() { qpy.Register(prev) })
}

// New returns a circuit with n parameters.
func New(name string, n int) *Circuit {
	return &Circuit{Name: name, Parameters: n}
}
