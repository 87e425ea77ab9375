package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/params"
)

// runSchemaCmd prints the embedded JSON Schema of a program. The latest
// schema version is used when --schema-version is omitted.
func runSchemaCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("schema", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var program, schemaVersion string
	cmd.StringVar(&program, "program", "", "Program name (REQUIRED)")
	cmd.StringVar(&schemaVersion, "schema-version", "", "Schema version, e.g. v0.2")

	if err := cmd.Parse(args); err != nil {
		return 2
	}
	if program == "" {
		_, _ = fmt.Fprintln(stderr, "Error: --program is required")
		return 2
	}

	reg, err := params.Default()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	s, err := reg.Lookup(program, schemaVersion)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	_, _ = stdout.Write(s.JSONSchema)
	return 0
}

func runProgramsCmd(stdout, stderr io.Writer) int {
	reg, err := params.Default()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	for _, p := range reg.Programs() {
		_, _ = fmt.Fprintf(stdout, "%-18s %s\n", p, strings.Join(reg.Versions(p), ", "))
	}
	return 0
}
