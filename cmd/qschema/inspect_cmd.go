package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/qpy"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/validation"
)

type headerReport struct {
	Envelope         string `json:"envelope"`
	QPYVersion       int    `json:"qpy_version"`
	QiskitVersion    string `json:"qiskit_version"`
	NumPrograms      uint64 `json:"num_programs"`
	SymbolicEncoding string `json:"symbolic_encoding"`
}

// runInspectCmd implements `qschema inspect`: it sniffs the QPY header of an
// explicit ({circuit_b64, qpy_version}) or typed ({__type__, __value__})
// circuit envelope without decoding the circuit.
func runInspectCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("inspect", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		file       string
		jsonOutput bool
	)
	cmd.StringVar(&file, "file", "", "Circuit envelope file, or - for stdin (REQUIRED)")
	cmd.BoolVar(&jsonOutput, "json", false, "Output as JSON")

	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if file == "" {
		_, _ = fmt.Fprintln(stderr, "Error: --file is required")
		return 2
	}
	payload, err := readPayload(file)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	rep, err := inspectEnvelope(payload)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if jsonOutput {
		data, _ := json.MarshalIndent(rep, "", "  ")
		_, _ = fmt.Fprintln(stdout, string(data))
		return 0
	}
	_, _ = fmt.Fprintf(stdout, "envelope: %s\n", rep.Envelope)
	_, _ = fmt.Fprintf(stdout, "qpy_version: %d\n", rep.QPYVersion)
	_, _ = fmt.Fprintf(stdout, "qiskit_version: %s\n", rep.QiskitVersion)
	_, _ = fmt.Fprintf(stdout, "num_programs: %d\n", rep.NumPrograms)
	_, _ = fmt.Fprintf(stdout, "symbolic_encoding: %s\n", rep.SymbolicEncoding)
	return 0
}

func inspectEnvelope(payload []byte) (*headerReport, error) {
	raw, err := validation.Object(payload)
	if err != nil {
		return nil, err
	}
	var (
		h    qpy.Header
		kind string
	)
	if _, typed := raw["__type__"]; typed {
		var t qpy.TypedCircuitAny
		if err := json.Unmarshal(payload, &t); err != nil {
			return nil, err
		}
		if h, err = t.Header(); err != nil {
			return nil, err
		}
		kind = "typed"
	} else {
		var m qpy.ModelAny
		if err := json.Unmarshal(payload, &m); err != nil {
			return nil, err
		}
		if h, err = m.Header(); err != nil {
			return nil, err
		}
		kind = "explicit"
	}
	return &headerReport{
		Envelope:         kind,
		QPYVersion:       int(h.QPYVersion),
		QiskitVersion:    h.QiskitVersion(),
		NumPrograms:      h.NumPrograms,
		SymbolicEncoding: string(rune(h.SymbolicEncoding)),
	}, nil
}
