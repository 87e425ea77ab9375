package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/validation"
)

// Cross-field check outcomes reported by validate.
const (
	crossFieldChecked = "checked"
	// crossFieldSkipped means the payload passed its structural checks but
	// decoding it needs a circuit or samplex codec this binary lacks.
	crossFieldSkipped = "skipped"
)

type validationReport struct {
	ID            string        `json:"report_id"`
	Program       string        `json:"program"`
	SchemaVersion string        `json:"schema_version,omitempty"`
	Kind          string        `json:"kind"`
	Valid         bool          `json:"valid"`
	CrossField    string        `json:"cross_field,omitempty"`
	Errors        []reportError `json:"errors,omitempty"`
}

type reportError struct {
	Field   string `json:"field,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// runValidateCmd implements `qschema validate`.
//
// Exit codes:
//
//	0 = payload accepted
//	1 = payload rejected
//	2 = usage or runtime error
func runValidateCmd(args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("validate", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var (
		program    string
		file       string
		results    bool
		jsonOutput bool
	)
	cmd.StringVar(&program, "program", "", "Program name, e.g. executor (REQUIRED)")
	cmd.StringVar(&file, "file", "", "Payload file, or - for stdin (REQUIRED)")
	cmd.BoolVar(&results, "results", false, "Validate a results payload instead of params")
	cmd.BoolVar(&jsonOutput, "json", false, "Output the report as JSON")

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

	rep := validationReport{ID: uuid.NewString(), Program: program, Kind: "params"}
	if results {
		rep.Kind = "results"
	}
	rep.SchemaVersion, rep.CrossField, err = validate(ctx, e, program, payload, results)
	if err != nil && !isValidationFailure(err) {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	rep.Valid = err == nil
	rep.Errors = toReportErrors(err)
	e.logger.Debug("validation finished", "report_id", rep.ID, "valid", rep.Valid)

	if jsonOutput {
		data, _ := json.MarshalIndent(rep, "", "  ")
		_, _ = fmt.Fprintln(stdout, string(data))
	} else {
		printReport(stdout, rep)
	}
	if !rep.Valid {
		return 1
	}
	return 0
}

func validate(ctx context.Context, e *env, program string, payload []byte, results bool) (string, string, error) {
	decode := e.registry.Decode
	if results {
		decode = e.registry.DecodeResults
	}
	d, err := decode(ctx, program, payload)
	switch {
	case err == nil:
		return d.SchemaVersion, crossFieldChecked, nil
	case errors.Is(err, validation.ErrCodecUnavailable) && !results:
		e.logger.Info("no circuit codec linked, running structural checks only", "program", program)
		v, err := e.registry.Check(ctx, program, payload)
		if err != nil {
			return v, "", err
		}
		return v, crossFieldSkipped, nil
	default:
		return "", "", err
	}
}

func isValidationFailure(err error) bool {
	var fe *validation.FieldError
	return errors.As(err, &fe)
}

// toReportErrors flattens joined validation failures.
func toReportErrors(err error) []reportError {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []reportError
		for _, e := range joined.Unwrap() {
			out = append(out, toReportErrors(e)...)
		}
		return out
	}
	var fe *validation.FieldError
	if errors.As(err, &fe) {
		return []reportError{{Field: fe.Field, Code: fe.Code(), Message: fe.Message}}
	}
	return []reportError{{Code: "internal", Message: err.Error()}}
}

func printReport(w io.Writer, rep validationReport) {
	status := "VALID"
	if !rep.Valid {
		status = "INVALID"
	}
	_, _ = fmt.Fprintf(w, "%s %s %s %s\n", status, rep.Program, rep.Kind, rep.SchemaVersion)
	if rep.CrossField == crossFieldSkipped {
		_, _ = fmt.Fprintln(w, "  cross-field checks skipped: no circuit codec")
	}
	for _, e := range rep.Errors {
		field := e.Field
		if field == "" {
			field = "(root)"
		}
		_, _ = fmt.Fprintf(w, "  - %s [%s]: %s\n", field, e.Code, e.Message)
	}
	_, _ = fmt.Fprintf(w, "report: %s\n", rep.ID)
}
