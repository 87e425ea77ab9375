// Package observability records OpenTelemetry traces and RED metrics (rate,
// errors, duration) for parameter decoding.
package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/config"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/validation"
)

const instrumentationName = "github.com/Qiskit/ibm-quantum-schemas"

// Attribute keys attached to decode metrics and spans.
const (
	AttrProgram       = attribute.Key("qschema.program")
	AttrSchemaVersion = attribute.Key("qschema.schema_version")
	AttrErrorKind     = attribute.Key("error.kind")
)

// Config configures the OpenTelemetry providers.
type Config struct {
	ServiceName    string
	ServiceVersion string
	OTLPEndpoint   string // host:port, gRPC
	SampleRate     float64
	BatchTimeout   time.Duration
	ExportInterval time.Duration
	Enabled        bool
	Insecure       bool
}

// DefaultConfig returns the defaults used by the CLI.
func DefaultConfig() *Config {
	return &Config{
		ServiceName:    "qschema",
		ServiceVersion: "0.1.0",
		OTLPEndpoint:   "localhost:4317",
		SampleRate:     1.0,
		BatchTimeout:   5 * time.Second,
		ExportInterval: 15 * time.Second,
	}
}

// FromTelemetry maps the tool configuration onto a provider Config.
func FromTelemetry(t config.TelemetryConfig) *Config {
	c := DefaultConfig()
	c.Enabled = t.Enabled
	c.Insecure = t.Insecure
	if t.OTLPEndpoint != "" {
		c.OTLPEndpoint = t.OTLPEndpoint
	}
	if t.ServiceName != "" {
		c.ServiceName = t.ServiceName
	}
	return c
}

// Option overrides how a Provider obtains its SDK providers.
type Option func(*Provider)

// WithMeterProvider records metrics on mp instead of an OTLP exporter.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(p *Provider) { p.mp = mp }
}

// WithTracerProvider records spans on tp instead of an OTLP exporter.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(p *Provider) { p.tp = tp }
}

// Provider owns the trace and metric pipelines. The zero value and a nil
// *Provider are usable and record nothing.
type Provider struct {
	config *Config
	logger *slog.Logger

	tp             trace.TracerProvider
	mp             metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	tracer         trace.Tracer
	meter          metric.Meter

	decodeCounter  metric.Int64Counter
	errorCounter   metric.Int64Counter
	durationHist   metric.Float64Histogram
	payloadHist    metric.Int64Histogram
	activeDecoding metric.Int64UpDownCounter
}

// New creates a provider. With Enabled unset and no injected providers it
// records nothing.
func New(ctx context.Context, cfg *Config, opts ...Option) (*Provider, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	p := &Provider{
		config: cfg,
		logger: slog.Default().With("component", "observability"),
	}
	for _, opt := range opts {
		opt(p)
	}

	if cfg.Enabled && (p.tp == nil || p.mp == nil) {
		res, err := resource.Merge(
			resource.Default(),
			resource.NewWithAttributes(
				semconv.SchemaURL,
				semconv.ServiceName(cfg.ServiceName),
				semconv.ServiceVersion(cfg.ServiceVersion),
			),
		)
		if err != nil {
			return nil, fmt.Errorf("create resource: %w", err)
		}
		if p.tp == nil {
			if err := p.initTraceProvider(ctx, res); err != nil {
				return nil, fmt.Errorf("init trace provider: %w", err)
			}
		}
		if p.mp == nil {
			if err := p.initMetricProvider(ctx, res); err != nil {
				return nil, fmt.Errorf("init metric provider: %w", err)
			}
		}
		p.logger.InfoContext(ctx, "observability initialized",
			"service", cfg.ServiceName,
			"endpoint", cfg.OTLPEndpoint,
			"sample_rate", cfg.SampleRate,
			"insecure", cfg.Insecure,
		)
	}

	if p.tp == nil && p.mp == nil {
		p.logger.DebugContext(ctx, "observability disabled")
		return p, nil
	}
	if p.tp == nil {
		p.tp = otel.GetTracerProvider()
	}
	if p.mp == nil {
		p.mp = otel.GetMeterProvider()
	}
	p.tracer = p.tp.Tracer(instrumentationName, trace.WithInstrumentationVersion(cfg.ServiceVersion))
	p.meter = p.mp.Meter(instrumentationName, metric.WithInstrumentationVersion(cfg.ServiceVersion))
	if err := p.initREDMetrics(); err != nil {
		return nil, fmt.Errorf("init RED metrics: %w", err)
	}
	return p, nil
}

func (p *Provider) initTraceProvider(ctx context.Context, res *resource.Resource) error {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(p.config.OTLPEndpoint)}
	if p.config.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("create trace exporter: %w", err)
	}

	var sampler sdktrace.Sampler
	switch {
	case p.config.SampleRate >= 1.0:
		sampler = sdktrace.AlwaysSample()
	case p.config.SampleRate <= 0.0:
		sampler = sdktrace.NeverSample()
	default:
		sampler = sdktrace.TraceIDRatioBased(p.config.SampleRate)
	}

	p.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(p.config.BatchTimeout)),
		sdktrace.WithSampler(sampler),
	)
	p.tp = p.tracerProvider
	otel.SetTracerProvider(p.tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return nil
}

func (p *Provider) initMetricProvider(ctx context.Context, res *resource.Resource) error {
	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(p.config.OTLPEndpoint)}
	if p.config.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("create metric exporter: %w", err)
	}
	p.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(p.config.ExportInterval),
		)),
	)
	p.mp = p.meterProvider
	otel.SetMeterProvider(p.meterProvider)
	return nil
}

func (p *Provider) initREDMetrics() error {
	var err error

	p.decodeCounter, err = p.meter.Int64Counter("qschema.decode.total",
		metric.WithDescription("Parameter payloads decoded"),
		metric.WithUnit("{payload}"),
	)
	if err != nil {
		return err
	}

	p.errorCounter, err = p.meter.Int64Counter("qschema.decode.errors",
		metric.WithDescription("Parameter payloads rejected, by failure kind"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return err
	}

	p.durationHist, err = p.meter.Float64Histogram("qschema.decode.duration",
		metric.WithDescription("Decode and validation latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5),
	)
	if err != nil {
		return err
	}

	p.payloadHist, err = p.meter.Int64Histogram("qschema.decode.payload_size",
		metric.WithDescription("Size of decoded payloads"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return err
	}

	p.activeDecoding, err = p.meter.Int64UpDownCounter("qschema.decode.active",
		metric.WithDescription("Decodes in progress"),
		metric.WithUnit("{payload}"),
	)
	return err
}

// Shutdown flushes and stops the providers created by New. Injected
// providers are left to their owner.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	var errs []error
	if p.tracerProvider != nil {
		if err := p.tracerProvider.Shutdown(ctx); err != nil {
			p.logger.ErrorContext(ctx, "failed to shutdown trace provider", "error", err)
			errs = append(errs, err)
		}
	}
	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(ctx); err != nil {
			p.logger.ErrorContext(ctx, "failed to shutdown metric provider", "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Tracer returns the configured tracer, or the global one.
func (p *Provider) Tracer() trace.Tracer {
	if p == nil || p.tracer == nil {
		return otel.Tracer(instrumentationName)
	}
	return p.tracer
}

// Meter returns the configured meter, or the global one.
func (p *Provider) Meter() metric.Meter {
	if p == nil || p.meter == nil {
		return otel.Meter(instrumentationName)
	}
	return p.meter
}

// RecordPayload records the size of a payload about to be decoded.
func (p *Provider) RecordPayload(ctx context.Context, size int, attrs ...attribute.KeyValue) {
	if p != nil && p.payloadHist != nil {
		p.payloadHist.Record(ctx, int64(size), metric.WithAttributes(attrs...))
	}
}

// RecordError counts a rejected payload under the kind of err.
func (p *Provider) RecordError(ctx context.Context, err error, attrs ...attribute.KeyValue) {
	if p != nil && p.errorCounter != nil {
		all := append(append([]attribute.KeyValue(nil), attrs...), AttrErrorKind.String(ErrorKind(err)))
		p.errorCounter.Add(ctx, 1, metric.WithAttributes(all...))
	}
}

// TrackDecode brackets one decode. The returned function must be called
// with the decode's outcome.
func (p *Provider) TrackDecode(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := p.Tracer().Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	if p == nil {
		return ctx, func(err error) {
			if err != nil {
				span.RecordError(err)
			}
			span.End()
		}
	}

	opt := metric.WithAttributes(attrs...)
	if p.activeDecoding != nil {
		p.activeDecoding.Add(ctx, 1, opt)
	}
	if p.decodeCounter != nil {
		p.decodeCounter.Add(ctx, 1, opt)
	}

	return ctx, func(err error) {
		if p.activeDecoding != nil {
			p.activeDecoding.Add(ctx, -1, opt)
		}
		if p.durationHist != nil {
			p.durationHist.Record(ctx, time.Since(start).Seconds(), opt)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, ErrorKind(err))
			p.RecordError(ctx, err, attrs...)
		}
		span.End()
	}
}

// ErrorKind names the failure kind of err for metric attributes.
func ErrorKind(err error) string {
	var fe *validation.FieldError
	if errors.As(err, &fe) && fe.Code() != "" {
		return fe.Code()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "canceled"
	}
	return "internal"
}
