// Package samplex wraps JSON-serialized samplex programs. The envelope
// records the samplex serialization version (SSV) it was written with, and
// that field must agree with the version token embedded in the JSON text.
package samplex

import (
	"sync"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/validation"
)

// TensorSpec describes one named input or output of a samplex.
type TensorSpec struct {
	Name  string `json:"name"`
	Shape []int  `json:"shape"`
}

// Samplex is the view of a decoded samplex this module relies on.
type Samplex interface {
	// Outputs lists the output specifications of the samplex.
	Outputs() []TensorSpec
}

// Codec converts samplex programs to JSON text and back. It is owned by the
// samplex library.
type Codec interface {
	ToJSON(s Samplex, ssv int) (string, error)
	FromJSON(text string) (Samplex, error)
}

var (
	codecMu sync.RWMutex
	codec   Codec
)

// Register installs the process-wide samplex codec and returns the previous
// one.
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
		return nil, validation.Errorf(validation.ErrCodecUnavailable, "", "no samplex codec registered")
	}
	return codec, nil
}

// Output returns the named output spec, if present.
func Output(s Samplex, name string) (TensorSpec, bool) {
	for _, spec := range s.Outputs() {
		if spec.Name == name {
			return spec, true
		}
	}
	return TensorSpec{}, false
}
