//go:build property
// +build property

package tensor_test

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/tensor"
)

// TestFloat64RoundTrip verifies Decode(Encode(x)) == x bit for bit.
func TestFloat64RoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("f64 round trip is lossless", prop.ForAll(
		func(vals []float64) bool {
			rec, err := tensor.Encode(vals, []int{len(vals)})
			if err != nil {
				return false
			}
			out, err := rec.Float64s()
			if err != nil {
				return false
			}
			return reflect.DeepEqual(vals, out) || (len(vals) == 0 && len(out) == 0)
		},
		gen.SliceOf(gen.Float64()),
	))

	properties.TestingRun(t)
}

// TestBoolRoundTrip covers element counts that are not multiples of eight.
func TestBoolRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("bool round trip drops padding", prop.ForAll(
		func(vals []bool) bool {
			rec, err := tensor.Encode(vals, []int{len(vals)})
			if err != nil {
				return false
			}
			out, err := rec.Bools()
			if err != nil {
				return false
			}
			return len(out) == len(vals) && (len(vals) == 0 || reflect.DeepEqual(vals, out))
		},
		gen.SliceOf(gen.Bool()),
	))

	properties.TestingRun(t)
}

// TestUint8TruncationDetected verifies that dropping the last encoded
// character of any non-empty payload is rejected.
func TestUint8TruncationDetected(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("truncation is detected", prop.ForAll(
		func(vals []uint8) bool {
			if len(vals) == 0 {
				return true
			}
			rec, err := tensor.Encode(vals, []int{len(vals)})
			if err != nil {
				return false
			}
			data := rec.Data()
			_, err = tensor.New(data[:len(data)-1], []int{len(vals)}, tensor.Uint8)
			return err != nil
		},
		gen.SliceOf(gen.UInt8()),
	))

	properties.TestingRun(t)
}
