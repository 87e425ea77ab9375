// Package program holds the checks and records shared by the quantum
// program schemas: parameter-count agreement between circuits and their
// arguments, chunk-size consistency, chunk timing spans and the concurrent
// validation of program items.
package program

import (
	"github.com/Qiskit/ibm-quantum-schemas/pkg/qpy"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/samplex"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/validation"
)

// ParameterValuesOutput is the samplex output that feeds circuit parameters.
const ParameterValuesOutput = "parameter_values"

// Shaped is anything with a trailing axis, such as a tensor record.
type Shaped interface {
	LastDim() int
}

// CheckCircuitArguments reports whether the trailing axis of args matches
// the circuit's parameter count. A rank-0 argument counts as zero
// parameters.
func CheckCircuitArguments(c qpy.Circuit, args Shaped) error {
	return CheckArgumentCount("circuit_arguments", c, args)
}

// CheckArgumentCount is CheckCircuitArguments for arguments stored under
// another field name.
func CheckArgumentCount(field string, c qpy.Circuit, args Shaped) error {
	got, want := args.LastDim(), c.NumParameters()
	if got != want {
		return validation.Errorf(validation.ErrParameterCountMismatch, field,
			"the size of the last axis of circuit arguments, %d, does not match the number of parameters of the circuit, %d",
			got, want)
	}
	return nil
}

// SamplexParameterCount returns the trailing dimension of the samplex's
// parameter_values output, or 0 when the samplex has no such output.
func SamplexParameterCount(s samplex.Samplex) int {
	spec, ok := samplex.Output(s, ParameterValuesOutput)
	if !ok || len(spec.Shape) == 0 {
		return 0
	}
	return spec.Shape[len(spec.Shape)-1]
}

// CheckSamplexOutputs reports whether the samplex produces exactly as many
// parameter values as the circuit has parameters.
func CheckSamplexOutputs(c qpy.Circuit, s samplex.Samplex) error {
	got, want := SamplexParameterCount(s), c.NumParameters()
	if got != want {
		return validation.Errorf(validation.ErrParameterCountMismatch, "samplex",
			"the number of samplex output parameters, %d, does not match the number of parameters of the circuit, %d",
			got, want)
	}
	return nil
}
