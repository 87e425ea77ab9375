package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/canonicalize"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/validation"
)

// runFingerprintCmd implements `qschema fingerprint`. The accepted model is
// re-serialized, so defaults filled in during decoding are part of the
// fingerprint. Without a circuit codec the structurally checked payload is
// fingerprinted as is.
func runFingerprintCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("fingerprint", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var program, file string
	cmd.StringVar(&program, "program", "", "Program name (REQUIRED)")
	cmd.StringVar(&file, "file", "", "Params file, or - for stdin (REQUIRED)")

	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if program == "" || file == "" {
		_, _ = fmt.Fprintln(stderr, "Error: --program and --file are required")
		return 2
	}
	payload, err := readPayload(file)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	ctx := context.Background()
	e, err := newEnv(ctx, stderr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	defer e.close()

	var subject any
	d, err := e.registry.Decode(ctx, program, payload)
	switch {
	case err == nil:
		subject = d.Value
	case errors.Is(err, validation.ErrCodecUnavailable):
		if _, err := e.registry.Check(ctx, program, payload); err != nil {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		subject = json.RawMessage(payload)
	default:
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	fp, err := canonicalize.Fingerprint(subject)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	_, _ = fmt.Fprintln(stdout, fp)
	return 0
}
