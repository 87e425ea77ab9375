package observability

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Qiskit/ibm-quantum-schemas/pkg/config"
	"github.com/Qiskit/ibm-quantum-schemas/pkg/validation"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, "qschema", cfg.ServiceName)
	require.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
	require.Equal(t, 1.0, cfg.SampleRate)
	require.False(t, cfg.Enabled)
}

func TestFromTelemetry(t *testing.T) {
	cfg := FromTelemetry(config.TelemetryConfig{Enabled: true, OTLPEndpoint: "otel:4317", Insecure: true})
	assert.True(t, cfg.Enabled)
	assert.True(t, cfg.Insecure)
	assert.Equal(t, "otel:4317", cfg.OTLPEndpoint)
	assert.Equal(t, "qschema", cfg.ServiceName)
}

func TestNewProviderDisabled(t *testing.T) {
	p, err := New(context.Background(), &Config{})
	require.NoError(t, err)
	require.NotNil(t, p.Tracer())
	require.NotNil(t, p.Meter())

	_, done := p.TrackDecode(context.Background(), "decode")
	done(errors.New("boom"))
	require.NoError(t, p.Shutdown(context.Background()))
}

func TestNilProvider(t *testing.T) {
	var p *Provider
	_, done := p.TrackDecode(context.Background(), "decode")
	done(nil)
	p.RecordError(context.Background(), errors.New("x"))
	p.RecordPayload(context.Background(), 10)
	require.NoError(t, p.Shutdown(context.Background()))
}

func newTestProvider(t *testing.T) (*Provider, *sdkmetric.ManualReader, *tracetest.SpanRecorder) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() {
		_ = mp.Shutdown(context.Background())
		_ = tp.Shutdown(context.Background())
	})

	p, err := New(context.Background(), DefaultConfig(), WithMeterProvider(mp), WithTracerProvider(tp))
	require.NoError(t, err)
	return p, reader, rec
}

func collect(t *testing.T, r *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, r.Collect(context.Background(), &rm))
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func TestTrackDecode_RecordsRED(t *testing.T) {
	p, reader, rec := newTestProvider(t)
	ctx := context.Background()
	attrs := []attribute.KeyValue{AttrProgram.String("executor"), AttrSchemaVersion.String("v0.2")}

	_, done := p.TrackDecode(ctx, "params.decode", attrs...)
	done(nil)
	p.RecordPayload(ctx, 512, attrs...)

	_, done = p.TrackDecode(ctx, "params.decode", attrs...)
	done(validation.Errorf(validation.ErrInconsistentChunking, "quantum_program.items", "mixed"))

	metrics := collect(t, reader)

	total, ok := metrics["qschema.decode.total"].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, total.DataPoints, 1)
	assert.EqualValues(t, 2, total.DataPoints[0].Value)

	errs, ok := metrics["qschema.decode.errors"].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, errs.DataPoints, 1)
	assert.EqualValues(t, 1, errs.DataPoints[0].Value)
	kind, ok := errs.DataPoints[0].Attributes.Value(AttrErrorKind)
	require.True(t, ok)
	assert.Equal(t, "inconsistent_chunking", kind.AsString())

	dur, ok := metrics["qschema.decode.duration"].(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, dur.DataPoints, 1)
	assert.EqualValues(t, 2, dur.DataPoints[0].Count)

	active, ok := metrics["qschema.decode.active"].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, active.DataPoints, 1)
	assert.EqualValues(t, 0, active.DataPoints[0].Value)

	size, ok := metrics["qschema.decode.payload_size"].(metricdata.Histogram[int64])
	require.True(t, ok)
	require.Len(t, size.DataPoints, 1)
	assert.EqualValues(t, 512, size.DataPoints[0].Sum)

	spans := rec.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "params.decode", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "inconsistent_chunking", spans[1].Status().Description)
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{validation.Errorf(validation.ErrVersionMismatch, "circuit", "x"), "version_mismatch"},
		{fmt.Errorf("wrapped: %w", validation.Errorf(validation.ErrMalformedTensor, "data", "x")), "malformed_tensor"},
		{context.DeadlineExceeded, "canceled"},
		{errors.New("other"), "internal"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorKind(tt.err))
	}
}
