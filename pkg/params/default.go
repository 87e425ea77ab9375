package params

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"

	estimatorv01 "github.com/Qiskit/ibm-quantum-schemas/pkg/estimator/v01"
	executorv01 "github.com/Qiskit/ibm-quantum-schemas/pkg/executor/v01"
	executorv02 "github.com/Qiskit/ibm-quantum-schemas/pkg/executor/v02"
	noiselearnerv02 "github.com/Qiskit/ibm-quantum-schemas/pkg/noiselearner/v02"
	noiselearnerv2v01 "github.com/Qiskit/ibm-quantum-schemas/pkg/noiselearnerv2/v01"
	samplerv01 "github.com/Qiskit/ibm-quantum-schemas/pkg/sampler/v01"
)

// Program names.
const (
	Executor       = "executor"
	Sampler        = "sampler"
	Estimator      = "estimator"
	NoiseLearnerV2 = "noise-learner"
	NoiseLearnerV3 = "noise-learner-v3"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// SchemaDocument returns the embedded JSON Schema of program at
// schemaVersion.
func SchemaDocument(program, schemaVersion string) ([]byte, error) {
	b, err := schemaFS.ReadFile(fmt.Sprintf("schemas/%s_%s.json", program, schemaVersion))
	if err != nil {
		return nil, fmt.Errorf("params: no embedded schema for %s %s: %w", program, schemaVersion, err)
	}
	return b, nil
}

// unmarshalInto adapts a type whose UnmarshalJSON validates to a DecodeFunc.
func unmarshalInto[T any]() DecodeFunc {
	return func(_ context.Context, b []byte) (any, error) {
		v := new(T)
		if err := json.Unmarshal(b, v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

func decodeWith[T any](fn func(context.Context, []byte) (*T, error)) DecodeFunc {
	return func(ctx context.Context, b []byte) (any, error) {
		return fn(ctx, b)
	}
}

// Builtin lists the program schemas shipped with this module.
func Builtin() []Schema {
	return []Schema{
		{
			Program:       Executor,
			SchemaVersion: executorv01.SchemaVersion,
			DecodeParams:  decodeWith(executorv01.Decode),
			DecodeResults: unmarshalInto[executorv01.QuantumProgramResult](),
		},
		{
			Program:       Executor,
			SchemaVersion: executorv02.SchemaVersion,
			DecodeParams:  decodeWith(executorv02.Decode),
			DecodeResults: unmarshalInto[executorv02.QuantumProgramResult](),
		},
		{
			Program:       Sampler,
			SchemaVersion: samplerv01.SchemaVersion,
			DecodeParams:  decodeWith(samplerv01.Decode),
			DecodeResults: unmarshalInto[samplerv01.Result](),
		},
		{
			Program:       Estimator,
			SchemaVersion: estimatorv01.SchemaVersion,
			DecodeParams:  decodeWith(estimatorv01.Decode),
		},
		{
			Program:       NoiseLearnerV2,
			SchemaVersion: noiselearnerv2v01.SchemaVersion,
			DecodeParams:  decodeWith(noiselearnerv2v01.Decode),
		},
		{
			Program:       NoiseLearnerV3,
			SchemaVersion: noiselearnerv02.SchemaVersion,
			DecodeParams:  unmarshalInto[noiselearnerv02.Params](),
			DecodeResults: unmarshalInto[noiselearnerv02.Results](),
		},
	}
}

// Default returns a registry holding every builtin schema together with its
// embedded JSON Schema.
func Default(opts ...Option) (*Registry, error) {
	r := NewRegistry(opts...)
	for _, s := range Builtin() {
		doc, err := SchemaDocument(s.Program, s.SchemaVersion)
		if err != nil {
			return nil, err
		}
		s.JSONSchema = doc
		if err := r.Register(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}
