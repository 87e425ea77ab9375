// Package qpy wraps externally serialized QPY circuits in the two envelope
// shapes found in primitive payloads and validates them without invoking the
// circuit library.
//
// Model carries an explicit qpy_version next to base64 QPY bytes and requires
// the two to agree. TypedCircuit carries a redundant "QuantumCircuit" type tag
// next to base64 zlib-compressed QPY bytes and trusts the embedded header.
// Both reject payloads holding anything other than exactly one program, and
// both sniff only the fixed-size file header to do so.
//
// Decoding a circuit is delegated to the Codec installed with Register. The
// decoded circuit is cached on the envelope; envelopes are single-owner and
// must not be shared between goroutines that decode concurrently.
package qpy

import (
	"sync"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/validation"
)

// Circuit is the view of a decoded quantum circuit this module relies on.
type Circuit interface {
	NumParameters() int
}

// Codec serializes circuits to QPY and back. It is owned by the host
// circuit library.
type Codec interface {
	// Dump serializes c as a single-program QPY file of the given version.
	Dump(c Circuit, version int) ([]byte, error)
	// Load decodes the single circuit held in a QPY file.
	Load(data []byte) (Circuit, error)
}

var (
	codecMu sync.RWMutex
	codec   Codec
)

// Register installs the process-wide QPY codec and returns the previous one.
func Register(c Codec) Codec {
	codecMu.Lock()
	defer codecMu.Unlock()
	prev := codec
	codec = c
	return prev
}

// Registered returns the installed codec.
func Registered() (Codec, error) {
	codecMu.RLock()
	defer codecMu.RUnlock()
	if codec == nil {
		return nil, validation.Errorf(validation.ErrCodecUnavailable, "", "no QPY codec registered")
	}
	return codec, nil
}
