// Command qschema validates IBM Quantum Runtime program payloads against the
// schemas of this module.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/compress"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/config"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/observability"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/params"
)

const version = "0.1.0"

func main() {
	os.Exit(Run(os.Args, os.Stdout, os.Stderr))
}

// Run is the entrypoint for testing.
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		printUsage(stderr)
		return 2
	}

	switch args[1] {
	case "validate":
		return runValidateCmd(args[2:], stdout, stderr)
	case "inspect":
		return runInspectCmd(args[2:], stdout, stderr)
	case "fingerprint":
		return runFingerprintCmd(args[2:], stdout, stderr)
	case "schema":
		return runSchemaCmd(args[2:], stdout, stderr)
	case "programs":
		return runProgramsCmd(stdout, stderr)
	case "version":
		_, _ = fmt.Fprintf(stdout, "qschema %s\n", version)
		return 0
	case "help", "--help", "-h":
		printUsage(stdout)
		return 0
	default:
		_, _ = fmt.Fprintf(stderr, "Unknown command: %s\n", args[1])
		printUsage(stderr)
		return 2
	}
}

func printUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "USAGE:")
	_, _ = fmt.Fprintln(w, "  qschema <command> [flags]")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "COMMANDS:")
	printCommand(w, "validate", "Validate a params or results payload (--program, --file, --results, --json)")
	printCommand(w, "inspect", "Show the QPY header of a circuit envelope (--file, --json)")
	printCommand(w, "fingerprint", "Canonical SHA-256 fingerprint of a payload (--program, --file)")
	printCommand(w, "schema", "Print the JSON Schema of a program (--program, --schema-version)")
	printCommand(w, "programs", "List programs and schema versions")
	printCommand(w, "version", "Show version information")
	printCommand(w, "help", "Show this help")
}

func printCommand(w io.Writer, name, desc string) {
	_, _ = fmt.Fprintf(w, "  %-12s %s\n", name, desc)
}

// env is the per-invocation runtime: logger, telemetry and the program
// registry, all built from config.Load.
type env struct {
	cfg      *config.Config
	logger   *slog.Logger
	obs      *observability.Provider
	registry *params.Registry
}

func newEnv(ctx context.Context, stderr io.Writer) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)
	compress.SetMaxInflatedBytes(cfg.MaxPayloadBytes)

	obs, err := observability.New(ctx, observability.FromTelemetry(cfg.Telemetry))
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}
	reg, err := params.Default(
		params.WithObservability(obs),
		params.WithMaxPayloadBytes(cfg.MaxPayloadBytes),
		params.WithLogger(logger.With("component", "params")),
	)
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, obs: obs, registry: reg}, nil
}

func (e *env) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.obs.Shutdown(ctx); err != nil {
		e.logger.Warn("telemetry shutdown failed", "error", err)
	}
}

// readPayload reads path, or stdin for "-".
func readPayload(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
