//go:build property
// +build property

package program_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/program"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/validation"
)

// TestChunkSizesConsistency checks that a list is rejected exactly when it
// mixes Auto with explicit sizes.
func TestChunkSizesConsistency(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	properties.Property("mixed lists are inconsistent", prop.ForAll(
		func(raw []int) bool {
			sizes := make([]program.ChunkSize, len(raw))
			var auto, explicit bool
			for i, n := range raw {
				sizes[i] = program.ChunkSize(n)
				if n == 0 {
					auto = true
				} else {
					explicit = true
				}
			}
			err := program.CheckChunkSizes(sizes)
			if auto && explicit {
				return errors.Is(err, validation.ErrInconsistentChunking)
			}
			return err == nil
		},
		gen.SliceOf(gen.IntRange(0, 3)),
	))

	properties.Property("wire form round trips", prop.ForAll(
		func(n int) bool {
			b, err := json.Marshal(program.ChunkSize(n))
			if err != nil {
				return false
			}
			var back program.ChunkSize
			if err := json.Unmarshal(b, &back); err != nil {
				return false
			}
			return back == program.ChunkSize(n) && (n != 0 || string(b) == `"auto"`)
		},
		gen.IntRange(0, 1<<20),
	))

	properties.TestingRun(t)
}
