package params

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.opentelemetry.io/otel/trace"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/config"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/observability"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/validation"
)

// DecodeFunc builds and validates a typed model from a raw payload.
type DecodeFunc func(ctx context.Context, payload []byte) (any, error)

// Schema describes one registered (program, schema version) pair.
type Schema struct {
	Program       string
	SchemaVersion string
	// JSONSchema is the Draft 2020-12 document checked before DecodeParams.
	// It may be nil.
	JSONSchema   []byte
	DecodeParams DecodeFunc
	// DecodeResults is optional.
	DecodeResults DecodeFunc
}

type entry struct {
	Schema
	version  *semver.Version
	compiled *jsonschema.Schema
}

// Decoded is an accepted payload.
type Decoded struct {
	Program       string
	SchemaVersion string
	Version       *int
	Value         any
}

// Registry maps programs and schema versions to decoders. It is safe for
// concurrent use.
type Registry struct {
	mu       sync.RWMutex
	programs map[string]map[string]*entry

	obs        *observability.Provider
	maxPayload int64
	logger     *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithObservability records decode metrics and spans on p.
func WithObservability(p *observability.Provider) Option {
	return func(r *Registry) { r.obs = p }
}

// WithMaxPayloadBytes rejects larger payloads. Zero or less disables the
// limit.
func WithMaxPayloadBytes(n int64) Option {
	return func(r *Registry) { r.maxPayload = n }
}

// WithLogger replaces the registry logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		programs:   make(map[string]map[string]*entry),
		maxPayload: config.DefaultMaxPayloadBytes,
		logger:     slog.Default().With("component", "params"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds s. Registering the same pair twice is an error.
func (r *Registry) Register(s Schema) error {
	if s.Program == "" {
		return errors.New("params: program name required")
	}
	if s.DecodeParams == nil {
		return fmt.Errorf("params: %s %s: params decoder required", s.Program, s.SchemaVersion)
	}
	v, err := ParseSchemaVersion(s.SchemaVersion)
	if err != nil {
		return fmt.Errorf("params: %s: %w", s.Program, err)
	}
	e := &entry{Schema: s, version: v}
	if len(s.JSONSchema) > 0 {
		if e.compiled, err = compileSchema(s.Program, s.SchemaVersion, s.JSONSchema); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	versions, ok := r.programs[s.Program]
	if !ok {
		versions = make(map[string]*entry)
		r.programs[s.Program] = versions
	}
	if _, dup := versions[s.SchemaVersion]; dup {
		return fmt.Errorf("params: %s %s already registered", s.Program, s.SchemaVersion)
	}
	versions[s.SchemaVersion] = e
	return nil
}

func compileSchema(program, version string, doc []byte) (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	url := fmt.Sprintf("https://schemas.quantum.ibm.com/%s/%s.json", program, version)
	if err := c.AddResource(url, bytes.NewReader(doc)); err != nil {
		return nil, fmt.Errorf("params: load schema %s %s: %w", program, version, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("params: compile schema %s %s: %w", program, version, err)
	}
	return compiled, nil
}

// Programs lists the registered program names in order.
func (r *Registry) Programs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.programs))
	for p := range r.programs {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Versions lists the schema versions of program, oldest first.
func (r *Registry) Versions(program string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := make([]*entry, 0, len(r.programs[program]))
	for _, e := range r.programs[program] {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].version.LessThan(entries[j].version) })
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.SchemaVersion
	}
	return out
}

// Latest returns the newest schema version registered for program.
func (r *Registry) Latest(program string) (string, error) {
	vs := r.Versions(program)
	if len(vs) == 0 {
		return "", validation.Errorf(validation.ErrUnknownProgram, "", "unknown program %q", program)
	}
	return vs[len(vs)-1], nil
}

// Lookup returns the registration for program at schemaVersion, or at its
// latest version when schemaVersion is empty.
func (r *Registry) Lookup(program, schemaVersion string) (Schema, error) {
	e, err := r.lookup(program, schemaVersion)
	if err != nil {
		return Schema{}, err
	}
	return e.Schema, nil
}

func (r *Registry) lookup(program, schemaVersion string) (*entry, error) {
	if schemaVersion == "" {
		latest, err := r.Latest(program)
		if err != nil {
			return nil, err
		}
		schemaVersion = latest
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	versions, ok := r.programs[program]
	if !ok {
		return nil, validation.Errorf(validation.ErrUnknownProgram, "", "unknown program %q", program)
	}
	e, ok := versions[schemaVersion]
	if !ok {
		return nil, validation.Errorf(validation.ErrUnknownProgram, "schema_version",
			"program %q has no schema version %q", program, schemaVersion)
	}
	return e, nil
}

// Decode validates a parameter payload for program. The schema version is
// read from the payload; when absent the latest registered version is used.
func (r *Registry) Decode(ctx context.Context, program string, payload []byte) (_ *Decoded, err error) {
	attrs := observability.AttrProgram.String(program)
	ctx, done := r.obs.TrackDecode(ctx, "params.Decode", attrs)
	defer func() { done(err) }()

	e, base, err := r.structural(ctx, program, payload)
	if err != nil {
		return nil, err
	}
	v, err := e.DecodeParams(ctx, payload)
	if err != nil {
		r.logger.DebugContext(ctx, "payload rejected",
			"program", program, "schema_version", e.SchemaVersion, "error", err)
		return nil, err
	}
	return &Decoded{Program: program, SchemaVersion: e.SchemaVersion, Version: base.Version, Value: v}, nil
}

// Check runs the size limit and the structural JSON Schema check without
// building the typed model, so no circuit or samplex codec is needed. It
// returns the schema version the payload was checked against.
func (r *Registry) Check(ctx context.Context, program string, payload []byte) (string, error) {
	e, _, err := r.structural(ctx, program, payload)
	if err != nil {
		return "", err
	}
	return e.SchemaVersion, nil
}

func (r *Registry) structural(ctx context.Context, program string, payload []byte) (*entry, Base, error) {
	if err := r.checkSize(payload); err != nil {
		return nil, Base{}, err
	}
	r.obs.RecordPayload(ctx, len(payload), observability.AttrProgram.String(program))

	base, err := Peek(payload)
	if err != nil {
		return nil, Base{}, err
	}
	e, err := r.lookup(program, base.SchemaVersion)
	if err != nil {
		return nil, Base{}, err
	}
	trace.SpanFromContext(ctx).SetAttributes(observability.AttrSchemaVersion.String(e.SchemaVersion))
	if e.compiled != nil {
		if err := checkSchema(e.compiled, payload); err != nil {
			r.logger.DebugContext(ctx, "payload failed structural check",
				"program", program, "schema_version", e.SchemaVersion, "error", err)
			return nil, Base{}, err
		}
	}
	return e, base, nil
}

// DecodeResults validates a result payload for program.
func (r *Registry) DecodeResults(ctx context.Context, program string, payload []byte) (_ *Decoded, err error) {
	attrs := observability.AttrProgram.String(program)
	ctx, done := r.obs.TrackDecode(ctx, "params.DecodeResults", attrs)
	defer func() { done(err) }()

	if err := r.checkSize(payload); err != nil {
		return nil, err
	}
	r.obs.RecordPayload(ctx, len(payload), attrs)

	base, err := Peek(payload)
	if err != nil {
		return nil, err
	}
	e, err := r.lookup(program, base.SchemaVersion)
	if err != nil {
		return nil, err
	}
	if e.DecodeResults == nil {
		return nil, validation.Errorf(validation.ErrUnknownProgram, "",
			"program %q %s has no result schema", program, e.SchemaVersion)
	}
	v, err := e.DecodeResults(ctx, payload)
	if err != nil {
		r.logger.DebugContext(ctx, "result rejected", "program", program, "schema_version", e.SchemaVersion, "error", err)
		return nil, err
	}
	return &Decoded{Program: program, SchemaVersion: e.SchemaVersion, Value: v}, nil
}

func (r *Registry) checkSize(payload []byte) error {
	if r.maxPayload > 0 && int64(len(payload)) > r.maxPayload {
		return validation.Errorf(validation.ErrMalformedPayload, "",
			"payload of %d bytes exceeds the %d byte limit", len(payload), r.maxPayload)
	}
	return nil
}

// checkSchema runs the structural JSON Schema check and reports the deepest
// violation as a *validation.FieldError.
func checkSchema(s *jsonschema.Schema, payload []byte) error {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var inst any
	if err := dec.Decode(&inst); err != nil {
		return validation.Errorf(validation.ErrInvalidField, "", "invalid JSON: %v", err)
	}
	err := s.Validate(inst)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("params: schema check: %w", err)
	}
	leaf := ve
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	return &validation.FieldError{
		Field:   pointerToField(leaf.InstanceLocation),
		Kind:    validation.ErrInvalidField,
		Message: leaf.Message,
	}
}

// pointerToField turns a JSON pointer ("/pubs/0/1") into a dotted path.
func pointerToField(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}
	parts := strings.Split(ptr, "/")
	for i, p := range parts {
		p = strings.ReplaceAll(p, "~1", "/")
		parts[i] = strings.ReplaceAll(p, "~0", "~")
	}
	return strings.Join(parts, ".")
}
